// Package cpu ties pool workers to operating system threads and, optionally, to CPU cores.
package cpu

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrAffinityUnsupported is returned by pinning on platforms without a thread affinity API.
var ErrAffinityUnsupported = errors.New("cpu affinity is not supported on " + runtime.GOOS)

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// LockWorker locks the calling goroutine to its OS thread and, if pin is set, pins that
// thread to the core workerID maps to. The returned release func must be called by the same
// goroutine when it is done; it is valid even when err is non-nil.
//
// A pinned thread is never unlocked: release is a no-op, so the thread is torn down with the
// goroutine instead of going back to the scheduler with a narrowed affinity mask.
func LockWorker(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if !pin {
		return runtime.UnlockOSThread, nil
	}

	release = func() {}
	if _, err := pinToCore(workerID); err != nil {
		return release, fmt.Errorf("pin worker %d: %w", workerID, err)
	}
	return release, nil
}

// coreFor maps any worker id onto [0, NumCPU()).
func coreFor(workerID int) int {
	n := runtime.NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
