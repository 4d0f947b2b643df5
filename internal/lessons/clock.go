package lessons

import "time"

// Clock provides the current time. The engine never calls time.Now directly
// so tests can pin the clock and cross day boundaries deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// NewClock returns a Clock in the given location. Day boundaries for the
// credit ledger follow this location.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayKey maps a timestamp to its calendar-day key, e.g. "2025-03-14".
// Credit records carry this key; a record whose key differs from today's
// is stale and gets re-initialized on next read.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
