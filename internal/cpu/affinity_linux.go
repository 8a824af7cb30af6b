//go:build linux

package cpu

import (
	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to the core workerID maps to.
// Must be called after runtime.LockOSThread().
func pinToCore(workerID int) (uintptr, error) {
	cpuID := coreFor(workerID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}

	return uintptr(cpuID), nil
}
