package testutil

import (
	"sync"
	"time"
)

// Clock is the time source seam used where elapsed time matters.
type Clock interface {
	Now() time.Time
}

// FakeClock is a Clock whose time only moves when a test says so,
// keeping block and run timestamps deterministic.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now reports the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the frozen time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
