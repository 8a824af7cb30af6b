package pool

import "time"

// Metrics receives task and queue measurements from a pool.
// Implementations must be safe for concurrent use; see observability/prometheus for one.
type Metrics interface {
	// RecordTaskDuration is called after every task ran. assisted is true when the task was
	// run through Assist rather than by a worker.
	RecordTaskDuration(elapsed time.Duration, assisted bool)

	// RecordTaskFailed is called for every task whose future resolved with a TaskError.
	RecordTaskFailed(panicked bool)

	// RecordTaskRejected is called for every submission refused after shutdown.
	RecordTaskRejected()

	// RecordTasksAbandoned is called once at shutdown with the number of discarded tasks.
	RecordTasksAbandoned(count int)

	// RecordQueueDepth is called whenever a worker or Assist dequeues a task.
	RecordQueueDepth(depth int)
}
