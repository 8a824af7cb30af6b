package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskFailed matches every *TaskError through errors.Is.
	ErrTaskFailed = errors.New("task failed")

	// ErrTaskPanicked is the cause recorded when a task body panics.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrFutureConsumed is returned by a second Get on the same future.
	ErrFutureConsumed = errors.New("future already consumed")

	// ErrTaskNotRunnable is returned when a task that already ran, or was abandoned, is run again.
	ErrTaskNotRunnable = errors.New("task already ran or was abandoned")
)

// TaskError is the error a future resolves with when its task returned an error or panicked.
type TaskError struct {
	TaskID int64
	Cause  error
	Stack  []byte // set only for panics
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d failed: %v", e.TaskID, e.Cause)
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrTaskFailed, so callers can test for task failure
// without unwrapping to the concrete cause.
func (e *TaskError) Is(target error) bool {
	return target == ErrTaskFailed
}

// Panicked reports whether the task failed by panicking rather than returning an error.
func (e *TaskError) Panicked() bool {
	return errors.Is(e.Cause, ErrTaskPanicked)
}
