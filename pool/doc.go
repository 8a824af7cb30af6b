// Package pool provides a fixed-size worker pool with futures and assisted waiting.
//
// A Pool owns a fixed number of long-lived workers that pull type-erased tasks from a single
// FIFO queue. Submitting a function returns a Future immediately; the result (or the error the
// function returned, or the panic it raised) is delivered through the future exactly once.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	f, err := pool.Submit(p, func() (int, error) {
//	    return 6 * 7, nil
//	})
//	if err != nil {
//	    return err
//	}
//	v, err := f.Get() // 42, nil
//
// # Assisted Waiting
//
// A task that submits sub-tasks and then blocks on their futures can starve the pool: with N
// workers, N such tasks waiting at once leave nobody to run the sub-tasks. Await avoids this by
// running queued tasks on the waiting goroutine until the awaited future is ready:
//
//	outer, _ := pool.Submit(p, func() (int, error) {
//	    inner, err := pool.Submit(p, func() (int, error) { return 1, nil })
//	    if err != nil {
//	        return 0, err
//	    }
//	    return pool.Await(p, inner) // safe even on a one-worker pool
//	})
//
// Assist is the building block: it runs at most one queued task and never blocks.
//
// # Partitioning Work
//
// ThreadCount reports the number of workers. Data-parallel callers conventionally split their
// work into 2 × ThreadCount() ranges, submit all but the last, run the last inline, and Await
// the rest. See internal/imaging for a complete example.
//
// # Shutdown
//
// Shutdown (or Close) stops accepting work, resolves every still-queued future with
// ErrPoolShutDown, lets running tasks finish, and joins the workers. Submitting afterwards
// fails with ErrSubmitAfterShutdown.
//
// # Observability
//
// WithLogger attaches a zap logger for worker lifecycle, recovered panics and shutdown.
// WithMetrics attaches a Metrics sink; observability/prometheus provides one.
// WithBeforeTaskStart and WithOnTaskEnd register per-task hooks.
package pool
