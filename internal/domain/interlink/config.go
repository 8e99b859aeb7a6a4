package interlink

// Config holds runtime knobs for the interlinking service.
type Config struct {
	Temperature             float32
	MaxTokens               int
	ExcerptLength           int
	DefaultLimit            int
	BidirectionalMaxPerItem int
	LegacyLimit             int
}

const (
	defaultLimit       = 3
	defaultMaxPerItem  = 3
	defaultLegacyLimit = 5
	defaultMaxTokens   = 2000
	minExcerptLength   = 150
	maxExcerptLength   = 250
)

func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultLimit
	}
	if c.BidirectionalMaxPerItem <= 0 {
		c.BidirectionalMaxPerItem = defaultMaxPerItem
	}
	if c.LegacyLimit <= 0 {
		c.LegacyLimit = defaultLegacyLimit
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	switch {
	case c.ExcerptLength <= 0:
		c.ExcerptLength = DefaultExcerptLength
	case c.ExcerptLength < minExcerptLength:
		c.ExcerptLength = minExcerptLength
	case c.ExcerptLength > maxExcerptLength:
		c.ExcerptLength = maxExcerptLength
	}
	return c
}
