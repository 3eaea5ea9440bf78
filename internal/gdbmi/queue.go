package gdbmi

import "sync"

// resultQueue is the hand-off between the reader goroutine and the command
// executor: an unbounded blocking FIFO with close semantics. Closing wakes
// every blocked and future pop with ok=false after the queue drains.
type resultQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []ResultRecord
	head   int
	closed bool
}

func newResultQueue() *resultQueue {
	q := &resultQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *resultQueue) push(record ResultRecord) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, record)
	q.cond.Signal()
	return true
}

func (q *resultQueue) pop() (ResultRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.head >= len(q.items) {
		q.cond.Wait()
	}
	if q.head >= len(q.items) {
		return ResultRecord{}, false
	}

	record := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return record, true
}

func (q *resultQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
