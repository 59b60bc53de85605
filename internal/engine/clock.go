package engine

// Clock counts applied events. Sequence numbers start at 1 and never
// repeat within a run; sampling and cross-checks key off them.
type Clock struct {
	seq int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the number of events applied so far.
func (c *Clock) Current() int64 {
	return c.seq
}
