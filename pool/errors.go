package pool

import (
	"errors"

	"github.com/utkarsh5026/assistpool/internal/types"
)

var (
	// ErrConstructionFailure is returned by New when the pool could not start all of its
	// workers. The pool is fully torn down when New returns it.
	ErrConstructionFailure = errors.New("pool construction failed")

	// ErrInvalidThreadCount is the cause of a construction failure for a negative thread count hint.
	ErrInvalidThreadCount = errors.New("thread count hint must not be negative")

	// ErrSubmitAfterShutdown is returned by Submit and Run once shutdown has begun.
	ErrSubmitAfterShutdown = errors.New("submit after shutdown")

	// ErrNilTask is returned when a nil function is submitted.
	ErrNilTask = errors.New("nil task submitted")

	// ErrPoolShutDown resolves the future of every task still queued when shutdown begins.
	ErrPoolShutDown = errors.New("pool shut down before the task ran")

	ErrAlreadyShutDown = errors.New("pool already shut down")
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrTaskFailed matches, through errors.Is, every error a future resolves with because
	// its task returned an error or panicked.
	ErrTaskFailed = types.ErrTaskFailed

	// ErrTaskPanicked is the cause recorded in a TaskError when the task panicked.
	ErrTaskPanicked = types.ErrTaskPanicked

	// ErrFutureConsumed is returned when a future's result is read a second time.
	ErrFutureConsumed = types.ErrFutureConsumed
)
