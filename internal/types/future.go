package types

import (
	"context"
	"sync/atomic"
)

// Resolver publishes the outcome of a task into its paired Future.
// It reports false if the future had already been resolved; the value is dropped in that case.
type Resolver[R any] func(value R, err error) bool

// Future is a one-shot, write-once/read-once handle on the result of a submitted task.
// It is safe to use from any goroutine.
//
// States: pending -> ready(value | error) -> consumed. Readiness can be polled with IsReady
// or Done without consuming the value; Get and GetWithContext consume it.
type Future[R any] struct {
	id       int64
	done     chan struct{}
	value    R
	err      error
	resolved atomic.Bool
	consumed atomic.Bool
}

// NewFuture creates a pending future and the resolver that completes it.
//
// Example:
//
//	future, resolve := NewFuture[int](1)
//	go func() { resolve(42, nil) }()
//	v, err := future.Get()
func NewFuture[R any](id int64) (*Future[R], Resolver[R]) {
	f := &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
	return f, f.resolve
}

func (f *Future[R]) resolve(value R, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.value = value
	f.err = err
	close(f.done)
	return true
}

// ID returns the id of the task this future is paired with.
func (f *Future[R]) ID() int64 {
	return f.id
}

// Done returns a channel that is closed once the future is ready.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports, without blocking and without consuming, whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the result is available and returns it.
// The result can be consumed once; later calls return ErrFutureConsumed.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.consume()
}

// GetWithContext is like Get but gives up when ctx is done.
// Giving up does not consume the result, so the future can still be read later.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.consume()
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (f *Future[R]) consume() (R, error) {
	var zero R
	if !f.consumed.CompareAndSwap(false, true) {
		return zero, ErrFutureConsumed
	}
	value := f.value
	f.value = zero
	return value, f.err
}
