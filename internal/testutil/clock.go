package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for timing tests.
//
// Every call to Now returns the previous instant advanced by Step, so a run
// that reads the clock twice (start and finish) always measures exactly one
// Step.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepClock creates a clock starting at a fixed instant.
//
// The first call to Now() returns the start instant.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{
		now:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		step: step,
	}
}

// Now returns the current instant and advances the clock by one step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Calls returns how far the clock has advanced, in steps.
func (c *StepClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if c.step == 0 {
		return 0
	}
	return int(c.now.Sub(start) / c.step)
}
