package events

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO shared by exactly one producer goroutine and the
// UI loop. Put never blocks; Next suspends the caller until an event arrives.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	wake   chan struct{}
}

// NewQueue returns an empty, open queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Put appends ev. It reports false when ev is nil or the queue is closed, in
// which case the event is dropped.
func (q *Queue) Put(ev Event) bool {
	if ev == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
	return true
}

// Next removes and returns the oldest event. It returns false once the queue
// is closed and drained, or when ctx is done.
func (q *Queue) Next(ctx context.Context) (Event, bool) {
	for {
		if ev, ok, closed := q.pop(); ok {
			return ev, true
		} else if closed {
			return nil, false
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// TryNext is Next without waiting.
func (q *Queue) TryNext() (Event, bool) {
	ev, ok, _ := q.pop()
	return ev, ok
}

// Purge discards every queued event and returns how many were dropped.
func (q *Queue) Purge() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	return n
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting events. Queued events can still be drained.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) pop() (ev Event, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false, q.closed
	}
	ev = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return ev, true, q.closed
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
