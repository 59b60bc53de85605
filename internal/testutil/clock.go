package testutil

import (
	"sync"
	"time"
)

// Epoch is the fixed start time of every StepClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic replacement for time.Now.
//
// Every call to Now advances the clock by a fixed step, so a handler timed
// with one Now at entry and one at exit always measures exactly one step.
// This makes h-lines in the stats sink reproducible for golden comparison.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	step time.Duration
	now  time.Time
}

// NewStepClock creates a clock at Epoch that advances by step per reading.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{step: step, now: Epoch}
}

// Now returns the current time and advances the clock by one step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the current time without advancing.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset moves the clock back to Epoch.
//
// Used for test reuse. After Reset(), the next call to Now() returns Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
