package adapter

import (
	"sync"
)

// workItem pairs a deferred action with an optional resource release
// that runs right after it on the same thread.
type workItem struct {
	run     func()
	release func()
}

// workQueue is the cross-thread work channel of the run loop: any
// goroutine appends, only the UI thread drains, in FIFO order.
type workQueue struct {
	mu    sync.Mutex
	items []workItem
	ready chan struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{ready: make(chan struct{}, 1)}
}

func (q *workQueue) push(item workItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *workQueue) pop() (workItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return workItem{}, false
	}
	item := q.items[0]
	q.items[0] = workItem{}
	q.items = q.items[1:]
	return item, true
}

func (q *workQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wake returns the arrival signal channel. One signal can cover several
// pushes; the consumer drains with pop until it reports empty.
func (q *workQueue) wake() <-chan struct{} {
	return q.ready
}
