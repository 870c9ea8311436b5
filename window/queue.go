package window

import (
	"errors"
	"sync"
)

var (
	ErrQueueFull = errors.New("message queue at capacity")
)

// DefaultQueueLimit is the posted-message capacity of a queue, matching
// the platform default for native message queues.
const DefaultQueueLimit = 10000

// Queue is the UI message queue. Messages are posted from any goroutine
// and consumed by the single thread pumping the loop.
//
// A quit request is not an ordinary message: it is recorded as a flag and
// surfaces as a KindQuit message only once every pending message has been
// consumed, so work posted before the quit is never lost.
type Queue struct {
	mu         sync.Mutex
	items      []Message
	quitPosted bool
	limit      int
	ready      chan struct{}
}

// NewQueue creates a queue with the given posted-message capacity.
// A non-positive limit selects DefaultQueueLimit.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &Queue{
		items: make([]Message, 0, 16),
		limit: limit,
		ready: make(chan struct{}, 1),
	}
}

// Post appends a message. It fails with ErrQueueFull when the queue is at
// capacity.
func (q *Queue) Post(msg Message) error {
	q.mu.Lock()
	if len(q.items) >= q.limit {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	q.wake()
	return nil
}

// PostQuit records a quit request. It always succeeds and does not count
// against the queue capacity.
func (q *Queue) PostQuit() {
	q.mu.Lock()
	q.quitPosted = true
	q.mu.Unlock()

	q.wake()
}

// TryNext removes and returns the next message without blocking. The quit
// message is synthesized only after the queue has drained.
func (q *Queue) TryNext() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		msg := q.items[0]
		q.items[0] = Message{}
		q.items = q.items[1:]
		return msg, true
	}

	if q.quitPosted {
		q.quitPosted = false
		return Message{Kind: KindQuit}, true
	}

	return Message{}, false
}

// Ready returns a channel that receives a signal when the queue may have
// work. A single signal can cover multiple posts; consumers drain with
// TryNext until it reports empty.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of pending posted messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Limit returns the posted-message capacity.
func (q *Queue) Limit() int {
	return q.limit
}

func (q *Queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
