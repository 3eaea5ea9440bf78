package app

import "sync"

// updateQueue hands closures from the engine's reader goroutine to the
// event loop. push never blocks: the reader may emit an unbounded burst of
// stream records while the event loop is itself waiting inside Execute for
// the result record that follows them, so a bounded channel would wedge
// both goroutines.
type updateQueue struct {
	mu     sync.Mutex
	items  []func()
	notify chan struct{}
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{notify: make(chan struct{}, 1)}
}

// push enqueues a closure and wakes the event loop.
func (q *updateQueue) push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
	q.nudge()
}

// nudge wakes the event loop for a redraw without queueing work. Pending
// nudges coalesce into one.
func (q *updateQueue) nudge() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// drain removes and returns all pending closures.
func (q *updateQueue) drain() []func() {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}
