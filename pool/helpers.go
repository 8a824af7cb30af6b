package pool

import (
	"time"

	"github.com/utkarsh5026/assistpool/internal/cpu"
)

const minAutoThreads = 2

// detectParallelism is swapped out in tests.
var detectParallelism = cpu.NumCPU

// resolveThreadCount turns the constructor hint into a worker count: a positive hint is
// used as is, zero means max(detected parallelism, 2).
func resolveThreadCount(hint int) (int, error) {
	switch {
	case hint < 0:
		return 0, ErrInvalidThreadCount
	case hint > 0:
		return hint, nil
	default:
		return max(detectParallelism(), minAutoThreads), nil
	}
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
// It is used during shutdown to wait for workers to exit.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
