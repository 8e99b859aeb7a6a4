package util

import "time"

// Clock returns the current time. Components hold one so tests can freeze time.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a Clock pinned to ts; advance it by reassigning the pointed value.
func FixedClock(ts *time.Time) Clock {
	return func() time.Time { return *ts }
}
