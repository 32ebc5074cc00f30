package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall-clock instant tests start from.
var Epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// StepClock is a deterministic wall clock. Each call to Now returns the
// current instant and then advances it by a fixed step.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepClock creates a clock starting at start. A zero step freezes it.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Fixed returns a clock function that always reports t.
func Fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
