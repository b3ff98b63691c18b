package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock reporting times in the process-local zone
func New() *RealClock {
	return &RealClock{loc: time.Local}
}

// NewInLocation creates a RealClock reporting times in loc.
// Calendar-day boundaries (daily logins, daily leaderboards) follow loc.
func NewInLocation(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.Local
	}
	return &RealClock{loc: loc}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the zone used for calendar days
func (c *RealClock) Location() *time.Location {
	return c.loc
}
