package sched

import (
	"github.com/corosched/sched/coroutine"
	"github.com/corosched/sched/timer"
)

// Status mirrors the underlying coroutine's lifecycle state.
type Status = coroutine.Status

const (
	Running   = coroutine.Running
	Suspended = coroutine.Suspended
	Dead      = coroutine.Dead
)

// Handle is a thin wrapper over a coroutine.Thread carrying a name and a
// pointer to a pending timer task. It never resumes the underlying thread
// itself — only the Scheduler does that.
//
// Two Handles over the same underlying thread must never exist; newHandle is
// unexported and only ever called once, from Scheduler.spawn, at the same
// time the thread itself is created.
type Handle struct {
	name      string
	thread    *coroutine.Thread
	timerTask *timer.Task
}

func newHandle(name string, thread *coroutine.Thread) *Handle {
	return &Handle{name: name, thread: thread}
}

// Name returns the handle's label: whatever was passed to SpawnNamed, or an
// auto-generated uuid when the task was spawned anonymously via Spawn.
func (h *Handle) Name() string { return h.name }

// Status reflects the underlying coroutine state at call time.
func (h *Handle) Status() Status { return h.thread.Status() }

// IsRunning reports whether the underlying coroutine is currently executing.
func (h *Handle) IsRunning() bool { return h.thread.IsRunning() }

// IsSuspended reports whether the underlying coroutine has yielded and is
// awaiting resume.
func (h *Handle) IsSuspended() bool { return h.thread.IsSuspended() }

// IsDead reports whether the underlying coroutine's body has returned or
// panicked.
func (h *Handle) IsDead() bool { return h.thread.IsDead() }
