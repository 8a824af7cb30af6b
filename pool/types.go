package pool

import "github.com/utkarsh5026/assistpool/internal/types"

// Future is the one-shot result handle returned by Submit and Run.
//
// Get blocks until the task has run and returns its value once; IsReady and Done report
// readiness without consuming it. A future whose task was still queued when the pool shut
// down resolves with ErrPoolShutDown.
type Future[R any] = types.Future[R]

// TaskError is the error a future resolves with when its task returned an error or panicked.
// errors.Is(err, ErrTaskFailed) holds for it and errors.Unwrap yields the cause.
type TaskError = types.TaskError

// Stats is a point-in-time snapshot of pool counters.
//
// Once Shutdown has returned and no caller is still inside Assist,
// Submitted == Completed + Abandoned.
type Stats struct {
	Submitted  int64 // tasks accepted into the queue
	Completed  int64 // tasks that ran, successfully or not, on a worker or through Assist
	Failed     int64 // completed tasks whose future resolved with a TaskError
	Abandoned  int64 // tasks discarded at shutdown; their futures hold ErrPoolShutDown
	Rejected   int64 // submissions refused after shutdown
	Assisted   int64 // completed tasks that were run by Assist rather than a worker
	QueueDepth int   // tasks waiting in the queue right now
}
