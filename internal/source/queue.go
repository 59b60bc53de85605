package source

import (
	"io"

	"github.com/roach88/naiveq22/internal/tuple"
)

// Queue is an in-memory FIFO of events.
//
// The queue is unbounded. It is not safe for concurrent use; the engine
// drains it from its single loop.
type Queue struct {
	events []tuple.Event
}

// NewQueue creates a queue holding events in order.
func NewQueue(events ...tuple.Event) *Queue {
	q := &Queue{events: make([]tuple.Event, 0, max(len(events), 64))}
	q.events = append(q.events, events...)
	return q
}

// Push adds events to the back of the queue.
func (q *Queue) Push(events ...tuple.Event) {
	q.events = append(q.events, events...)
}

// Next removes and returns the front event, or io.EOF when empty.
func (q *Queue) Next() (tuple.Event, error) {
	if len(q.events) == 0 {
		return nil, io.EOF
	}

	ev := q.events[0]

	// Nil out the slot so the backing array does not retain the event.
	q.events[0] = nil

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, nil
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}
