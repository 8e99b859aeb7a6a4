package gencache

import "time"

// Tier is one of the fixed cache lifetimes. Operations pick a tier by how
// volatile their generated output is; raw durations are not accepted.
type Tier int

const (
	// Short suits personalised or fast-changing output.
	Short Tier = iota
	// Medium suits content-derived output that may be edited during the day.
	Medium
	// Long suits output tied to stable published content.
	Long
	// VeryLong suits market or industry analyses.
	VeryLong
)

// Duration returns the lifetime of the tier.
func (t Tier) Duration() time.Duration {
	switch t {
	case Short:
		return 10 * time.Minute
	case Medium:
		return time.Hour
	case Long:
		return 24 * time.Hour
	case VeryLong:
		return 7 * 24 * time.Hour
	default:
		return 10 * time.Minute
	}
}

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	case VeryLong:
		return "very_long"
	default:
		return "unknown"
	}
}
