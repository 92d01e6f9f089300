package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corosched/sched/poller/testpoller"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(testpoller.New())
	require.NoError(t, err)
	return s
}

func TestSpawnBeforeStartQueuesReady(t *testing.T) {
	s := newTestScheduler(t)
	ran := false
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, ran, "task body must not run until the loop drains ready")
	assert.Len(t, s.ready, 1)
	assert.Equal(t, 1, s.Count())
	assert.False(t, h.IsDead())
}

func TestSpawnAfterStartRunsImmediately(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	ran := false
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ran = true
		return []any{"done"}
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, h.IsDead())
	assert.Equal(t, 0, s.Count(), "task table drops terminated tasks")
}

func TestSpawnPassesArgsThrough(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	var got []any
	_, err := s.Spawn(func(s *Scheduler, args ...any) []any {
		got = args
		return nil
	}, 1, "two", 3.0)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two", 3.0}, got)
}

func TestSpawnNamedSetsHandleName(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.SpawnNamed("worker-1", func(s *Scheduler, _ ...any) []any { return nil })
	require.NoError(t, err)
	assert.Equal(t, "worker-1", h.Name())
}

func TestSpawnAnonymousGetsGeneratedName(t *testing.T) {
	s := newTestScheduler(t)
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any { return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, h.Name())
}

func TestRunningReportsCurrentTask(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	var sawSelf bool
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		sawSelf = s.Running() != nil
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawSelf)
	assert.Nil(t, s.Running(), "no task is running once the loop is idle")
	_ = h
}

func TestRunningIsNilOutsideACoroutine(t *testing.T) {
	s := newTestScheduler(t)
	assert.Nil(t, s.Running())
}

func TestSuspendOutsideCoroutineReturnsError(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.Suspend()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSuspendAndResumeRoundTrip(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	var resumedWith []any
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		values, _ := s.Suspend()
		resumedWith = values
		return values
	})
	require.NoError(t, err)
	assert.True(t, h.IsSuspended())
	assert.Contains(t, s.suspended, h)

	ok, err := s.Resume(h, "payload")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []any{"payload"}, resumedWith)
	assert.True(t, h.IsDead())
	assert.NotContains(t, s.suspended, h)
}

func TestResumeOfDeadTaskReturnsFalseWithoutError(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any { return nil })
	require.NoError(t, err)
	require.True(t, h.IsDead())

	ok, err := s.Resume(h)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestCoroutinePanicSurfacesAsTaskError(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	_, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		panic("boom")
	})
	require.Error(t, err)
	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.ErrorIs(t, err, ErrCoroutineFailed)
}

func TestTasksAndCountReflectLiveSet(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	h1, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, _ = s.Suspend()
		return nil
	})
	require.NoError(t, err)
	h2, err := s.Spawn(func(s *Scheduler, _ ...any) []any { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1, s.Count(), "h2 already terminated")
	handles := s.Tasks()
	assert.Len(t, handles, 1)
	assert.Equal(t, h1, handles[0])
	assert.NotEqual(t, h1, h2)
}
