package monitor

import "time"

// Refresh cadence defaults.
const (
	LocalInterval  = 2 * time.Second
	RemoteInterval = 5 * time.Second

	// IdleQuantum is the longest the loop sleeps between key checks.
	IdleQuantum = 10 * time.Millisecond
)

// RefreshClock decides when the next sample is due. It starts expired so
// the first loop pass refreshes immediately.
type RefreshClock struct {
	interval time.Duration
	last     time.Time
	expired  bool
	now      func() time.Time
}

// NewRefreshClock creates an expired clock with the given interval.
func NewRefreshClock(interval time.Duration) *RefreshClock {
	return &RefreshClock{interval: interval, expired: true, now: time.Now}
}

// Due reports whether a refresh should happen now.
func (c *RefreshClock) Due() bool {
	return c.expired || c.now().Sub(c.last) >= c.interval
}

// Remaining returns how long until the clock is due, zero if it already is.
func (c *RefreshClock) Remaining() time.Duration {
	if c.expired {
		return 0
	}
	d := c.interval - c.now().Sub(c.last)
	if d < 0 {
		return 0
	}
	return d
}

// Expire makes the next Due return true regardless of elapsed time.
func (c *RefreshClock) Expire() {
	c.expired = true
}

// Mark records that a refresh just happened.
func (c *RefreshClock) Mark() {
	c.last = c.now()
	c.expired = false
}

// Interval returns the refresh interval.
func (c *RefreshClock) Interval() time.Duration {
	return c.interval
}
