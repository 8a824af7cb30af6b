package types

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// Task is the type-erased unit of work stored in the pool's queue. Tasks of any result
// type share this one interface, so a single queue holds heterogeneous work.
//
// A task is invoked at most once: either Run executes it, or Abandon resolves its future
// with a cause and discards it. Whichever comes first wins; the other is a no-op.
type Task interface {
	ID() int64

	// Run executes the task and resolves its future. Failures of the task body, panics
	// included, are captured into the future and also returned so the caller can account
	// for them; Run itself never panics because of the task body.
	Run() error

	// Abandon resolves the future with cause without running the task.
	// It reports false if the task had already started or was already abandoned.
	Abandon(cause error) bool
}

const (
	stateQueued int32 = iota
	stateRunning
	stateCompleted
)

const panicStackSize = 4096

type futureTask[R any] struct {
	id      int64
	fn      func() (R, error)
	resolve Resolver[R]
	state   atomic.Int32
}

// NewTask wraps fn into a Task paired with the Future that will carry its result.
func NewTask[R any](id int64, fn func() (R, error)) (Task, *Future[R]) {
	future, resolve := NewFuture[R](id)
	return &futureTask[R]{
		id:      id,
		fn:      fn,
		resolve: resolve,
	}, future
}

func (t *futureTask[R]) ID() int64 {
	return t.id
}

func (t *futureTask[R]) Run() error {
	if !t.state.CompareAndSwap(stateQueued, stateRunning) {
		return ErrTaskNotRunnable
	}
	defer t.state.Store(stateCompleted)

	value, err := t.invoke()
	t.resolve(value, err)
	t.fn = nil
	return err
}

// invoke calls the task body, converting a returned error or a panic into a *TaskError.
func (t *futureTask[R]) invoke() (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, panicStackSize)
			n := runtime.Stack(buf, false)
			var zero R
			value = zero
			err = &TaskError{
				TaskID: t.id,
				Cause:  fmt.Errorf("%w: %v", ErrTaskPanicked, r),
				Stack:  buf[:n],
			}
		}
	}()

	value, err = t.fn()
	if err != nil {
		err = &TaskError{TaskID: t.id, Cause: err}
	}
	return value, err
}

func (t *futureTask[R]) Abandon(cause error) bool {
	if !t.state.CompareAndSwap(stateQueued, stateCompleted) {
		return false
	}
	var zero R
	t.resolve(zero, cause)
	t.fn = nil
	return true
}
