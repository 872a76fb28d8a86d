package clock

import "time"

// SystemClock reads the wall clock in UTC, truncated to microseconds so values
// round-trip through Postgres timestamptz unchanged.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
