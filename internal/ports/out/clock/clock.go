package clock

import "time"

// Clock is the time source for onboarding timestamps, token checks and
// record retention.
type Clock interface {
	Now() time.Time
}

// Cutoff is the instant before which records kept for retention are stale.
func Cutoff(c Clock, retention time.Duration) time.Time {
	return c.Now().Add(-retention)
}
