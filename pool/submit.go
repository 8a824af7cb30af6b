package pool

import (
	"context"
	"time"

	"github.com/utkarsh5026/assistpool/internal/types"
)

// Submit enqueues fn and returns a future for its result.
//
// fn runs exactly once, on a worker or on a goroutine inside Assist, unless the pool shuts
// down first, in which case the future resolves with ErrPoolShutDown. If fn returns an error
// or panics, the future resolves with a *TaskError and the worker keeps going.
//
// Submit never blocks on the queue. It fails with ErrNilTask for a nil fn and with
// ErrSubmitAfterShutdown once shutdown has begun; fn is not stored and no task id is used up
// in either case. Task ids follow queue order.
//
// Submit is a function rather than a method because Go methods cannot declare type parameters.
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	var future *Future[R]
	err := p.enqueue(func(id int64) types.Task {
		var task types.Task
		task, future = types.NewTask(id, fn)
		return task
	})
	if err != nil {
		return nil, err
	}
	return future, nil
}

// Run enqueues a function with no result. Its future resolves with the function's error, if any.
func Run(p *Pool, fn func() error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// Await waits for f and returns its result, running queued tasks of p while it waits.
//
// This is the wait to use from inside a task: the waiter helps drain the queue, so a task
// waiting on the sub-tasks it submitted cannot deadlock the pool, not even with one worker.
func Await[R any](p *Pool, f *Future[R]) (R, error) {
	return AwaitContext(context.Background(), p, f)
}

// AwaitContext is Await bounded by ctx. When ctx ends first it returns ctx's error and the
// future stays unconsumed, so it can be awaited again.
//
// The wait runs queued tasks while there are any. Once the queue has been empty for a number
// of consecutive rounds the waiter parks on the future with a growing delay between checks;
// resolution of the future always ends the park at once.
func AwaitContext[R any](ctx context.Context, p *Pool, f *Future[R]) (R, error) {
	idle := 0
	for !f.IsReady() {
		if err := ctx.Err(); err != nil {
			var zero R
			return zero, err
		}

		if p.Assist() {
			idle = 0
			continue
		}

		idle++
		if idle <= p.conf.awaitSpins {
			continue
		}

		if !park(ctx, f.Done(), p.conf.awaitBackoff.NextDelay(idle-p.conf.awaitSpins-1)) {
			var zero R
			return zero, ctx.Err()
		}
	}

	return f.Get()
}

// park blocks until done is closed, delay elapses, or ctx ends. It returns false only when ctx ended.
func park(ctx context.Context, done <-chan struct{}, delay time.Duration) bool {
	if delay <= 0 {
		select {
		case <-done:
			return true
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// AwaitAll awaits every future in order and returns their values.
// Every future is consumed, even after a failure; the first error encountered is returned
// alongside the values of the others (a failed slot holds R's zero value).
func AwaitAll[R any](p *Pool, futures []*Future[R]) ([]R, error) {
	results := make([]R, len(futures))
	var firstErr error

	for i, f := range futures {
		v, err := Await(p, f)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[i] = v
	}

	return results, firstErr
}
