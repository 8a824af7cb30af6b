package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/assistpool/internal/cpu"
	"github.com/utkarsh5026/assistpool/internal/scheduler"
	"github.com/utkarsh5026/assistpool/internal/types"
)

// Pool is a fixed-size pool of persistent workers fed from one shared FIFO queue.
//
// Tasks are submitted with Submit or Run, which return a Future immediately. Any goroutine,
// including a task running on the pool, may wait on a future with Await instead of a
// blocking Get: Await runs queued tasks itself while it waits, so work that recursively
// submits and waits on sub-tasks keeps making progress even when every worker is busy
// waiting. Waiting with Get from inside a task is the caller's risk; with one worker it
// deadlocks as soon as the task waits on its own child.
//
// Lifecycle: New starts the workers; Shutdown (or Close) marks the pool done, resolves every
// still-queued future with ErrPoolShutDown, and joins the workers. Tasks already running
// finish first. A pool cannot be restarted.
type Pool struct {
	conf        *poolConfig
	logger      *zap.Logger
	threadCount int

	// queue's closed flag is the pool's done flag.
	queue *scheduler.FIFOQueue[types.Task]

	// ctx is cancelled when shutdown begins; it releases rate limiter waits.
	ctx    context.Context
	cancel context.CancelFunc

	workers  errgroup.Group
	joined   chan struct{} // closed once every worker has returned
	shutdown atomic.Bool

	nextID atomic.Int64
	stats  counters
}

type counters struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	abandoned atomic.Int64
	rejected  atomic.Int64
	assisted  atomic.Int64
}

// New creates a pool and starts its workers.
//
// Parameters:
//   - threadCountHint: number of workers; 0 means max(number of CPUs, 2)
//   - opts: functional options (logger, OS thread locking, CPU affinity, worker init, hooks...)
//
// Workers are started one at a time and each finishes its setup before the next one is
// started. If a worker fails setup the pool marks itself done, joins the workers already
// running, and New returns an error matching ErrConstructionFailure.
//
// Example:
//
//	p, err := pool.New(0, pool.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
func New(threadCountHint int, opts ...PoolOption) (*Pool, error) {
	conf := newPoolConfig(opts...)

	n, err := resolveThreadCount(threadCountHint)
	if err != nil {
		conf.logger.Error("invalid thread count", zap.Int("hint", threadCountHint), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConstructionFailure, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		conf:        conf,
		logger:      conf.logger,
		threadCount: n,
		queue:       scheduler.NewFIFOQueue[types.Task](),
		ctx:         ctx,
		cancel:      cancel,
		joined:      make(chan struct{}),
	}

	for i := range n {
		ready := make(chan error, 1)
		p.workers.Go(func() error {
			return p.worker(i, ready)
		})

		if err := <-ready; err != nil {
			p.abortStart()
			p.logger.Error("worker failed to start, pool torn down",
				zap.Int("worker", i), zap.Int("started", i), zap.Error(err))
			return nil, fmt.Errorf("%w: worker %d: %w", ErrConstructionFailure, i, err)
		}
	}

	go func() {
		_ = p.workers.Wait()
		close(p.joined)
	}()

	p.logger.Debug("pool started", zap.Int("threads", n))
	return p, nil
}

// abortStart tears down a partially started pool: the workers that did start observe the
// closed queue and exit, and are joined before returning.
func (p *Pool) abortStart() {
	p.shutdown.Store(true)
	p.queue.Close()
	p.cancel()
	_ = p.workers.Wait()
}

// worker runs one worker's loop: set up its thread, report readiness, then pop and run
// tasks until the queue is closed.
func (p *Pool) worker(id int, ready chan<- error) error {
	release, err := p.setupWorker(id)
	defer release()

	ready <- err
	if err != nil {
		return err
	}

	p.logger.Debug("worker started", zap.Int("worker", id))
	defer p.logger.Debug("worker stopped", zap.Int("worker", id))

	for {
		task, ok := p.queue.PopFront()
		if !ok {
			return nil
		}

		if m := p.conf.metrics; m != nil {
			m.RecordQueueDepth(p.queue.Len())
		}
		p.throttle()
		p.execute(task, false)
	}
}

func (p *Pool) setupWorker(id int) (func(), error) {
	release := func() {}

	if p.conf.lockOSThread {
		var err error
		release, err = cpu.LockWorker(id, p.conf.pinCPU)
		if err != nil {
			if p.conf.strictAffinity {
				return release, err
			}
			p.logger.Warn("cpu pinning failed, worker runs unpinned", zap.Int("worker", id), zap.Error(err))
		}
	}

	if p.conf.workerInit != nil {
		if err := p.conf.workerInit(id); err != nil {
			return release, fmt.Errorf("worker init: %w", err)
		}
	}

	return release, nil
}

// throttle waits for the rate limiter, if any. The wait ends early once shutdown begins:
// a dequeued task always runs.
func (p *Pool) throttle() {
	if p.conf.rateLimiter != nil {
		_ = p.conf.rateLimiter.Wait(p.ctx)
	}
}

// execute runs a dequeued task outside any lock and accounts for it.
// Task failures, panics included, end up in the task's future; they never unwind into the caller.
func (p *Pool) execute(task types.Task, assisted bool) {
	id := task.ID()
	if p.conf.beforeTaskStart != nil {
		p.conf.beforeTaskStart(id)
	}

	start := time.Now()
	err := task.Run()
	elapsed := time.Since(start)

	p.stats.completed.Add(1)
	if assisted {
		p.stats.assisted.Add(1)
	}

	panicked := false
	if err != nil {
		p.stats.failed.Add(1)

		var taskErr *types.TaskError
		if errors.As(err, &taskErr) && taskErr.Panicked() {
			panicked = true
			p.logger.Warn("recovered task panic",
				zap.Int64("task_id", id), zap.Error(err), zap.ByteString("stack", taskErr.Stack))
		}
	}

	if p.conf.onTaskEnd != nil {
		p.conf.onTaskEnd(id, err, elapsed)
	}

	if m := p.conf.metrics; m != nil {
		m.RecordTaskDuration(elapsed, assisted)
		if err != nil {
			m.RecordTaskFailed(panicked)
		}
	}
}

// enqueue hands a task to the workers, or rejects it once shutdown has begun.
// The done check, the task id allocation and the push happen under the queue lock, so a task
// is either queued before shutdown (and later run or abandoned) or rejected without consuming
// an id; it is never silently dropped.
func (p *Pool) enqueue(build func(id int64) types.Task) error {
	p.stats.submitted.Add(1)
	err := p.queue.PushBackFunc(func() types.Task {
		return build(p.nextID.Add(1))
	})
	if err != nil {
		p.stats.submitted.Add(-1)
		p.stats.rejected.Add(1)
		if m := p.conf.metrics; m != nil {
			m.RecordTaskRejected()
		}
		return ErrSubmitAfterShutdown
	}
	return nil
}

// Assist runs at most one queued task on the calling goroutine and reports whether it did.
//
// It never blocks: if the queue is empty or the pool is shut down it yields the processor
// and returns false. Calling it in a loop while polling a future is what lets a waiter make
// progress on other ready work instead of idling; Await does exactly that.
func (p *Pool) Assist() bool {
	task, ok := p.queue.TryPopFront()
	if !ok {
		runtime.Gosched()
		return false
	}

	if m := p.conf.metrics; m != nil {
		m.RecordQueueDepth(p.queue.Len())
	}
	p.execute(task, true)
	return true
}

// ThreadCount returns the fixed number of workers. Callers use it to size their own
// partitioning of work, conventionally 2 × ThreadCount() pieces.
func (p *Pool) ThreadCount() int {
	return p.threadCount
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted:  p.stats.submitted.Load(),
		Completed:  p.stats.completed.Load(),
		Failed:     p.stats.failed.Load(),
		Abandoned:  p.stats.abandoned.Load(),
		Rejected:   p.stats.rejected.Load(),
		Assisted:   p.stats.assisted.Load(),
		QueueDepth: p.queue.Len(),
	}
}

// IsShutDown reports whether shutdown has begun.
func (p *Pool) IsShutDown() bool {
	return p.shutdown.Load()
}

// Shutdown marks the pool done, wakes every idle worker, and waits for all workers to exit.
//
// Tasks that are running finish; tasks still queued are discarded without running and their
// futures resolve with ErrPoolShutDown. Submissions from this point on fail with
// ErrSubmitAfterShutdown.
//
// Parameters:
//   - timeout: maximum time to wait for workers to exit (0 = wait forever)
//
// Returns:
//   - error: ErrShutdownTimeout if workers are still running after timeout (they keep
//     exiting in the background), otherwise nil on the first call and ErrAlreadyShutDown on
//     later ones
//
// A later call waits for the workers again, up to its own timeout, so a Shutdown that timed
// out can be followed by another to finish the join.
//
// Shutdown must not be called from inside a task: the worker running it would wait on itself.
func (p *Pool) Shutdown(timeout time.Duration) error {
	if !p.shutdown.CompareAndSwap(false, true) {
		if err := waitUntil(p.joined, timeout); err != nil {
			return err
		}
		return ErrAlreadyShutDown
	}

	abandoned := p.queue.Close()
	p.cancel()

	count := 0
	for _, task := range abandoned {
		if task.Abandon(ErrPoolShutDown) {
			count++
		}
	}
	p.stats.abandoned.Add(int64(count))

	if count > 0 {
		p.logger.Info("abandoned queued tasks at shutdown", zap.Int("count", count))
		if m := p.conf.metrics; m != nil {
			m.RecordTasksAbandoned(count)
		}
	}

	if err := waitUntil(p.joined, timeout); err != nil {
		p.logger.Warn("workers still running after shutdown timeout", zap.Duration("timeout", timeout))
		return err
	}

	p.logger.Debug("pool shut down", zap.Int("threads", p.threadCount))
	return nil
}

// Close shuts the pool down and waits for every worker to exit.
func (p *Pool) Close() error {
	return p.Shutdown(0)
}
