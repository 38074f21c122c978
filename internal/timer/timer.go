// Package timer implements the tick-driven session countdown. The host
// delivers one Tick per real-time second; the countdown itself never touches
// the wall clock, which keeps it deterministic under test.
package timer

import "fmt"

// Countdown counts remaining seconds down to a floor of zero. It is not
// safe for concurrent use; the session engine serializes access.
type Countdown struct {
	remaining int
	running   bool
	expired   bool
	notified  bool
}

// New returns a stopped countdown with zero remaining.
func New() *Countdown {
	return &Countdown{}
}

// Start arms the countdown with initialSeconds. Starting an armed countdown
// restarts it.
func (c *Countdown) Start(initialSeconds int) {
	c.Reset(initialSeconds)
	c.running = true
}

// Reset disarms the countdown and loads a fresh value.
func (c *Countdown) Reset(initialSeconds int) {
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	c.remaining = initialSeconds
	c.running = false
	c.expired = false
	c.notified = false
}

// Tick consumes one second. It returns true exactly once: on the tick that
// reaches zero. Ticks before Start and after expiry are no-ops.
func (c *Countdown) Tick() bool {
	if !c.running || c.expired {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.expired = true
		if !c.notified {
			c.notified = true
			return true
		}
	}
	return false
}

// Remaining returns the seconds left. Never negative.
func (c *Countdown) Remaining() int { return c.remaining }

// Expired reports whether the countdown has reached zero while running.
func (c *Countdown) Expired() bool { return c.expired }

// Running reports whether Start has been called without a later Reset.
func (c *Countdown) Running() bool { return c.running }

// Format renders seconds as zero-padded MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
