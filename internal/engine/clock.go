package engine

import "sync/atomic"

// Clock is the monotonic logical clock stamping processed actions.
//
// Every action the bus processes gets a strictly increasing seq number.
// This gives the journal a deterministic order free of wall-clock races and
// makes the ordering invariants of the pipelines assertable after the fact.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// bus's single-writer design means only the loop goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when resuming a journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
