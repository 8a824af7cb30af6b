package pool

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/assistpool/internal/algorithms"
)

// BackoffType selects how an assisted waiter parks when it finds nothing to run.
type BackoffType = algorithms.BackoffType

const (
	BackoffExponential = algorithms.BackoffExponential
	BackoffJittered    = algorithms.BackoffJittered
	BackoffNone        = algorithms.BackoffNone
)

// PoolOption is a functional option for configuring the pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	logger *zap.Logger

	lockOSThread   bool
	pinCPU         bool
	strictAffinity bool
	workerInit     func(workerID int) error

	rateLimiter *rate.Limiter

	beforeTaskStart func(taskID int64)
	onTaskEnd       func(taskID int64, err error, elapsed time.Duration)
	metrics         Metrics

	awaitSpins        int
	awaitBackoffType  BackoffType
	awaitInitialDelay time.Duration
	awaitMaxDelay     time.Duration
	awaitJitterFactor float64
	awaitBackoff      algorithms.BackoffStrategy
}

func newPoolConfig(opts ...PoolOption) *poolConfig {
	cfg := &poolConfig{
		logger:            zap.NewNop(),
		awaitSpins:        64,
		awaitBackoffType:  BackoffExponential,
		awaitInitialDelay: 10 * time.Microsecond,
		awaitMaxDelay:     time.Millisecond,
		awaitJitterFactor: 0.1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.awaitBackoff = algorithms.NewBackoffStrategy(
		cfg.awaitBackoffType,
		cfg.awaitInitialDelay,
		cfg.awaitMaxDelay,
		cfg.awaitJitterFactor,
	)
	return cfg
}

// WithLogger sets the logger used for worker lifecycle, recovered panics and shutdown.
// The default discards everything.
func WithLogger(logger *zap.Logger) PoolOption {
	return func(cfg *poolConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithLockOSThread dedicates one OS thread to each worker for the pool's lifetime.
func WithLockOSThread() PoolOption {
	return func(cfg *poolConfig) {
		cfg.lockOSThread = true
	}
}

// WithCPUAffinity locks each worker to an OS thread and pins worker i to core i mod NumCPU.
// Pinning is best effort: a worker whose thread cannot be pinned logs a warning and runs unpinned.
func WithCPUAffinity() PoolOption {
	return func(cfg *poolConfig) {
		cfg.lockOSThread = true
		cfg.pinCPU = true
	}
}

// WithStrictCPUAffinity is WithCPUAffinity where a pinning failure fails New with
// ErrConstructionFailure instead of being tolerated.
func WithStrictCPUAffinity() PoolOption {
	return func(cfg *poolConfig) {
		cfg.lockOSThread = true
		cfg.pinCPU = true
		cfg.strictAffinity = true
	}
}

// WithWorkerInit runs fn on every worker goroutine before it accepts tasks, e.g. to set up
// per-thread state. Workers are started one at a time; if fn fails for any worker, New
// shuts down the workers already started and returns ErrConstructionFailure wrapping the error.
func WithWorkerInit(fn func(workerID int) error) PoolOption {
	return func(cfg *poolConfig) {
		cfg.workerInit = fn
	}
}

// WithRateLimit caps how fast workers pick up tasks.
// tasksPerSecond specifies the sustained rate, burst the number of tasks that may start back to back.
// Tasks run through Assist are not limited, and the limit is lifted once shutdown begins so
// that tasks already dequeued finish promptly.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) PoolOption {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithBeforeTaskStart registers a hook called right before each task runs, on the goroutine that runs it.
func WithBeforeTaskStart(fn func(taskID int64)) PoolOption {
	return func(cfg *poolConfig) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook called after each task ran, with the error its future
// resolved with (nil on success) and how long it took.
func WithOnTaskEnd(fn func(taskID int64, err error, elapsed time.Duration)) PoolOption {
	return func(cfg *poolConfig) {
		cfg.onTaskEnd = fn
	}
}

// WithMetrics reports task and queue metrics to m.
func WithMetrics(m Metrics) PoolOption {
	return func(cfg *poolConfig) {
		cfg.metrics = m
	}
}

// WithAwaitBackoff tunes the assisted wait in Await: after spins consecutive rounds without
// anything to run, the waiter parks on its future for a delay chosen by backoffType, starting
// at initialDelay and capped at maxDelay. A ready future always wakes a parked waiter at once.
func WithAwaitBackoff(spins int, backoffType BackoffType, initialDelay, maxDelay time.Duration) PoolOption {
	return func(cfg *poolConfig) {
		if spins >= 0 {
			cfg.awaitSpins = spins
		}
		cfg.awaitBackoffType = backoffType
		if initialDelay > 0 {
			cfg.awaitInitialDelay = initialDelay
		}
		if maxDelay >= cfg.awaitInitialDelay {
			cfg.awaitMaxDelay = maxDelay
		}
	}
}
