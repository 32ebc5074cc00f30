package engine

import "sync/atomic"

// Clock issues revision numbers. Each applied operation takes the next
// revision, and journal entries are ordered by it rather than wall time.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	rev atomic.Int64
}

// NewClock creates a clock whose next Tick returns start+1. Pass the last
// journaled revision to resume after a restart.
func NewClock(start int64) *Clock {
	c := &Clock{}
	c.rev.Store(start)
	return c
}

// Tick advances the clock and returns the new revision.
func (c *Clock) Tick() int64 {
	return c.rev.Add(1)
}

// Revision returns the latest issued revision without advancing.
func (c *Clock) Revision() int64 {
	return c.rev.Load()
}
