package engine

import (
	"sync"

	"github.com/tesler-ui/datasync/internal/action"
)

// actionQueue is a thread-safe FIFO queue of actions.
//
// The queue is unbounded so cascading pipelines can enqueue arbitrarily many
// follow-up actions without blocking the loop that is draining it.
//
// Thread-safety covers external dispatch (UI handlers, request goroutines)
// racing the bus loop's dequeue. A channel signals availability so the loop
// can wait with context awareness.
type actionQueue struct {
	mu      sync.Mutex
	actions []action.Action
	closed  bool
	signal  chan struct{} // buffered size 1; coalesces availability signals
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]action.Action, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds one action to the back of the queue.
// Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a action.Action) bool {
	return q.EnqueueAll(a)
}

// EnqueueAll adds a batch of actions atomically, preserving their order and
// admitting no interleaving from concurrent dispatchers. Pipelines rely on
// this for their emission-ordering invariants: a success batch
// [cursor-change, fetch-success, row-meta-request, cascade...] reaches the
// store in exactly that order.
//
// Returns false (and enqueues nothing) if the queue is closed.
func (q *actionQueue) EnqueueAll(actions ...action.Action) bool {
	if len(actions) == 0 {
		return true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.actions = append(q.actions, actions...)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (nil, false) if the queue is empty.
func (q *actionQueue) TryDequeue() (action.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return nil, false
	}

	a := q.actions[0]

	// Nil out the slot so the backing array doesn't retain the payload.
	q.actions[0] = nil

	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}

	return a, true
}

// Wait returns a channel that signals when actions may be available.
// The channel closes when the queue is closed, waking all waiters.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close marks the queue closed and wakes any blocked waiters.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
