package sched

import (
	"github.com/google/uuid"

	"github.com/corosched/sched/coroutine"
)

// TaskFunc is the body of a task spawned with Spawn/SpawnNamed. It receives
// the Scheduler (so it can call PollerWait/Sleep/Suspend) and the
// arguments passed at spawn time. Its return values are discarded: neither
// Spawn nor Resume reports them.
type TaskFunc func(s *Scheduler, args ...any) []any

// Spawn creates a new task running fn(args...) and returns its Handle. If
// the scheduler is Started, the task is resumed immediately; otherwise it
// is appended to the ready queue for the next Run.
func (s *Scheduler) Spawn(fn TaskFunc, args ...any) (*Handle, error) {
	return s.spawn("", fn, args...)
}

// SpawnNamed is Spawn with an explicit, human-readable name attached to
// the resulting Handle.
func (s *Scheduler) SpawnNamed(name string, fn TaskFunc, args ...any) (*Handle, error) {
	return s.spawn(name, fn, args...)
}

func (s *Scheduler) spawn(name string, fn TaskFunc, args ...any) (*Handle, error) {
	if name == "" {
		name = uuid.NewString()
	}

	var h *Handle

	thread := coroutine.Create(func(yield coroutine.Yield, coargs ...any) []any {
		unpacked := make([]any, len(coargs))
		copy(unpacked, coargs)
		result := fn(s, unpacked...)
		s.terminate(h)
		return result
	})

	h = newHandle(name, thread)
	s.tasks[thread] = h
	s.m.tasksSpawned.Add(1)
	s.m.tasksLive.Add(1)
	s.log.Debug().Str("task", name).Msg("task spawned")

	if s.started {
		if _, _, err := s.resume(h, args...); err != nil {
			return h, err
		}
		return h, nil
	}

	s.ready = append(s.ready, readyTask{handle: h, args: args})
	return h, nil
}

// terminate removes h from the task table once its body has returned. The
// task count decrements by exactly one and never goes below zero, which
// holds here because each Handle's thread can only reach this path once
// (coroutine.Thread.Resume refuses to re-run a dead thread).
func (s *Scheduler) terminate(h *Handle) {
	if _, ok := s.tasks[h.thread]; !ok {
		return
	}
	delete(s.tasks, h.thread)
	s.m.tasksLive.Add(-1)
	s.log.Debug().Str("task", h.name).Msg("task terminated")
}

// Resume resumes h with the given values, which become the return of the
// matching Suspend call inside h's body.
func (s *Scheduler) Resume(h *Handle, values ...any) (ok bool, err error) {
	ok, _, err = s.resume(h, values...)
	return ok, err
}

func (s *Scheduler) resume(h *Handle, values ...any) (ok bool, result []any, err error) {
	if _, wasSuspended := s.suspended[h]; wasSuspended {
		delete(s.suspended, h)
		s.m.tasksSuspended.Add(-1)
	}

	prevRunning := runningHandle
	runningHandle = h
	ok, result, err = h.thread.Resume(values...)
	runningHandle = prevRunning

	if !ok && err != nil {
		s.log.Warn().Str("task", h.name).Err(err).Msg("task body failed")
		return false, result, newTaskError(ErrCoroutineFailed, h.name, "")
	}
	return ok, result, nil
}

// runningHandle tracks the Handle of the task currently executing, so
// Running can report it. It mirrors coroutine.Running() but at the
// Handle level; set only for the duration of a resume call made by the
// single owner goroutine driving the scheduler.
var runningHandle *Handle

// Running returns the handle of the currently running task, or nil when
// called outside any managed coroutine.
func (s *Scheduler) Running() *Handle {
	if runningHandle == nil {
		return nil
	}
	if _, live := s.tasks[runningHandle.thread]; !live {
		return nil
	}
	return runningHandle
}

// Suspend yields the current coroutine; the values delivered by the
// matching Resume are returned. Must only be called from within a
// scheduler-managed coroutine.
func (s *Scheduler) Suspend(values ...any) ([]any, error) {
	h := s.Running()
	if h == nil {
		return nil, ErrNotRunning
	}

	s.suspended[h] = struct{}{}
	s.m.tasksSuspended.Add(1)

	return coroutine.Yield(values...), nil
}
