package sched

import "errors"

// Namespace prefixes every sentinel error this package defines.
const Namespace = "sched"

var (
	// ErrNotRunning is returned by operations that require a currently
	// running managed coroutine (Suspend, PollerWait, Sleep) when called
	// from outside one.
	ErrNotRunning = errors.New(Namespace + ": not called from within a running coroutine")

	// ErrNotStarted is returned by PollerWait/Sleep when the scheduler's
	// run loop has not been entered yet (or has already torn down).
	ErrNotStarted = errors.New(Namespace + ": scheduler is not started")

	// ErrInvalidObjectKind is returned by PollerWait when obj is not a
	// Sock or Pipe object.
	ErrInvalidObjectKind = errors.New(Namespace + ": poller_wait requires a SOCK or PIPE object")

	// ErrEventsError is the error surfaced when a sticky ERROR event is
	// delivered for the object a coroutine is waiting on.
	ErrEventsError = errors.New(Namespace + ": events error")

	// ErrStopped is the synthetic error a suspended task observes when
	// Stop tears down the scheduler while the task was still suspended.
	ErrStopped = errors.New(Namespace + ": scheduler stopped while task was suspended")

	// ErrCoroutineFailed is returned, wrapped in a TaskError naming the task,
	// when a task body panics. The panic value itself is logged, not returned.
	ErrCoroutineFailed = errors.New(Namespace + ": task body failed")
)

// TaskError associates a scheduler error with the task (and, where
// relevant, the pollable object) that produced it, so a runloop failure
// can be traced back to its origin instead of surfacing as a bare
// sentinel.
type TaskError struct {
	err     error
	task    string
	objHint string
}

func newTaskError(err error, task string, objHint string) error {
	if err == nil {
		return nil
	}
	return &TaskError{err: err, task: task, objHint: objHint}
}

func (e *TaskError) Error() string {
	switch {
	case e.task != "" && e.objHint != "":
		return e.task + " (object " + e.objHint + "): " + e.err.Error()
	case e.task != "":
		return e.task + ": " + e.err.Error()
	default:
		return e.err.Error()
	}
}

func (e *TaskError) Unwrap() error { return e.err }
