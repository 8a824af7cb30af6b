package scheduler

import (
	"errors"
	"sync"
)

var (
	ErrQueueClosed = errors.New("queue is closed")
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // don't compact below this capacity
	compactShrinkFactor = 4  // compact when len < cap/4
)

// FIFOQueue is an unbounded first-in first-out queue shared by producers and workers.
//
// Every operation takes the same mutex, and a single condition variable wakes consumers
// blocked in PopFront. The queue also carries the closed flag: once Close is called no
// item is accepted or handed out again, which is what lets PushBack reject late producers
// atomically with respect to shutdown.
//
// The queue exerts no backpressure; a producer faster than its consumers grows it without limit.
type FIFOQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// NewFIFOQueue creates an empty, open queue.
func NewFIFOQueue[T any]() *FIFOQueue[T] {
	q := &FIFOQueue[T]{
		items: make([]T, 0, defaultQueueCap),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// PushBack appends item and wakes one waiting consumer.
// Returns ErrQueueClosed if the queue has been closed; the item is not stored in that case.
func (q *FIFOQueue[T]) PushBack(item T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// PushBackFunc is PushBack for an item built under the queue lock: build is called only if
// the queue is open, so nothing it allocates is spent on a rejected push. Items built this
// way are ordered as their build calls were. build must not call back into the queue.
func (q *FIFOQueue[T]) PushBackFunc(build func() T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, build())
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// PopFront removes and returns the oldest item, blocking until one is available.
// It returns false once the queue is closed, even if items are still stored: a closed
// queue hands nothing out, remaining items belong to whoever called Close.
func (q *FIFOQueue[T]) PopFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && len(q.items) == 0 {
		q.cond.Wait()
	}
	if q.closed {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

// TryPopFront is the non-blocking PopFront: it returns false immediately when the queue
// is empty or closed.
func (q *FIFOQueue[T]) TryPopFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.popLocked(), true
}

func (q *FIFOQueue[T]) popLocked() T {
	var zero T
	item := q.items[0]
	q.items[0] = zero // release the reference held by the backing array
	q.items = q.items[1:]
	q.maybeCompactLocked()
	return item
}

func (q *FIFOQueue[T]) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]T, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	compacted := make([]T, n, max(c/2, defaultQueueCap, n))
	copy(compacted, q.items)
	q.items = compacted
}

// Close marks the queue closed, wakes every blocked consumer, and returns the items that
// were still queued, oldest first. Only the first call returns items; later calls return nil.
func (q *FIFOQueue[T]) Close() []T {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	remaining := q.items
	q.items = nil
	q.mu.Unlock()

	q.cond.Broadcast()
	return remaining
}

// IsClosed reports whether Close has been called.
func (q *FIFOQueue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued items.
func (q *FIFOQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
