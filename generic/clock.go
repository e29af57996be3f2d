package generic

import (
	"sync"
	"time"
)

// =============================================================================
// CLOCK - injected time source so due-date and SLA logic are testable
// =============================================================================

// Clock supplies the current time. The engine never calls time.Now directly;
// every timestamp flows through the injected Clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a test clock that only moves when told to.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Set jumps the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// =============================================================================
// TIME UTILITIES - calendar windows for stats aggregation
// =============================================================================

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// WithinWindow reports whether t falls in [from, to], inclusive on both ends.
func WithinWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
