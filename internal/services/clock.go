package services

import (
	"sync"
	"time"
)

// Clock holds the dashboard's notion of "now". It advances only on an
// explicit Tick (periodic or page load), so every cutoff computation uses
// the last ticked value rather than continuous wall-clock time. Tests fix
// the value with Set and assert deterministic boundaries.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock returns a clock initialized to the current wall-clock time.
func NewClock() *Clock {
	return &Clock{now: time.Now().UTC()}
}

// Tick advances the clock to the current wall-clock time.
func (c *Clock) Tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Now().UTC()
	return c.now
}

// Set pins the clock to a fixed instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Now returns the last ticked value.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}
