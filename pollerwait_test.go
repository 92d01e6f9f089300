package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corosched/sched/object"
	"github.com/corosched/sched/poller"
	"github.com/corosched/sched/poller/testpoller"
)

// countingPoller wraps testpoller.Poller and counts registration calls, so
// tests can assert a cache hit served a PollerWait without touching the
// underlying poller again.
type countingPoller struct {
	*testpoller.Poller
	inserts  int
	modifies int
}

func newCountingPoller(edgeClearSupport ...poller.ObjectKind) *countingPoller {
	return &countingPoller{Poller: testpoller.New(edgeClearSupport...)}
}

func (c *countingPoller) Insert(obj poller.Object, events poller.EventSet, h poller.EventHandler) error {
	c.inserts++
	return c.Poller.Insert(obj, events, h)
}

func (c *countingPoller) Modify(obj poller.Object, events poller.EventSet, h poller.EventHandler) error {
	c.modifies++
	return c.Poller.Modify(obj, events, h)
}

func TestPollerWaitOutsideCoroutineReturnsError(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.PollerWait(object.NewSock(1), poller.Recv, 0)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestPollerWaitRejectsNonSocketPipeObjects(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	var gotErr error
	_, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, gotErr = s.PollerWait(object.NewProc(1), poller.Recv, 0)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, gotErr, ErrInvalidObjectKind)
}

// TestPollerWaitCacheHitAvoidsReregistration covers the leftover-readiness
// cache: a second waiter on an object the poller already reported ready for,
// with nobody registered to consume it, is served from entry.eventsSave
// without another Insert/Modify round trip.
func TestPollerWaitCacheHitAvoidsReregistration(t *testing.T) {
	cp := newCountingPoller()
	s, err := New(cp)
	require.NoError(t, err)
	s.started = true

	sock := object.NewSock(1)

	var evA poller.EventSet
	hA, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ev, _ := s.PollerWait(sock, poller.Recv, 0)
		evA = ev
		return nil
	})
	require.NoError(t, err)
	require.True(t, hA.IsSuspended())
	assert.Equal(t, 1, cp.inserts)

	require.NoError(t, s.handlePollerEvent(sock, poller.Recv))
	assert.Equal(t, poller.Recv, evA)
	assert.True(t, hA.IsDead())

	// Nobody is waiting now; this delivery is stashed as leftover readiness.
	require.NoError(t, s.handlePollerEvent(sock, poller.Recv))

	var evB poller.EventSet
	hB, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ev, _ := s.PollerWait(sock, poller.Recv, 0)
		evB = ev
		return nil
	})
	require.NoError(t, err)
	assert.True(t, hB.IsDead())
	assert.Equal(t, poller.Recv, evB)
	assert.Equal(t, 0, cp.modifies, "cache hit must not re-register with the poller")
}

// TestPollerWaitMergedRecvSendResumesOnce covers a single waiter registered
// for both directions on the same object: one delivery carrying both bits
// resumes it exactly once with the full set.
func TestPollerWaitMergedRecvSendResumesOnce(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	pipe := object.NewPipe(2)
	var got poller.EventSet
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ev, _ := s.PollerWait(pipe, poller.Recv|poller.Send, 0)
		got = ev
		return nil
	})
	require.NoError(t, err)
	require.True(t, h.IsSuspended())

	require.NoError(t, s.handlePollerEvent(pipe, poller.Recv|poller.Send))
	assert.Equal(t, poller.Recv|poller.Send, got)
	assert.True(t, h.IsDead())
}

// TestPollerWaitSplitRecvSendResumesEachWaiter covers two different waiters
// on the same object, one per direction: a single delivery carrying both
// bits resumes each with only its own direction.
func TestPollerWaitSplitRecvSendResumesEachWaiter(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	sock := object.NewSock(3)
	var evRecv, evSend poller.EventSet

	hRecv, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ev, _ := s.PollerWait(sock, poller.Recv, 0)
		evRecv = ev
		return nil
	})
	require.NoError(t, err)
	hSend, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		ev, _ := s.PollerWait(sock, poller.Send, 0)
		evSend = ev
		return nil
	})
	require.NoError(t, err)
	require.True(t, hRecv.IsSuspended())
	require.True(t, hSend.IsSuspended())

	require.NoError(t, s.handlePollerEvent(sock, poller.Recv|poller.Send))
	assert.Equal(t, poller.Recv, evRecv)
	assert.Equal(t, poller.Send, evSend)
	assert.True(t, hRecv.IsDead())
	assert.True(t, hSend.IsDead())

	entry, ok := s.pollers[sock]
	if ok {
		assert.Nil(t, entry.coRecv)
		assert.Nil(t, entry.coSend)
	}
}

func TestPollerWaitTimesOutWithZeroEventSet(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	sock := object.NewSock(4)
	var ev poller.EventSet
	var waitErr error
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		v, e := s.PollerWait(sock, poller.Recv, 10)
		ev, waitErr = v, e
		return nil
	})
	require.NoError(t, err)
	require.True(t, h.IsSuspended())

	time.Sleep(20 * time.Millisecond)
	s.timer.Next()

	assert.NoError(t, waitErr)
	assert.Equal(t, poller.EventSet(0), ev)
	assert.True(t, h.IsDead())
	assert.NotContains(t, s.suspended, h)
}

func TestPollerWaitErrorEventSurfacesAsErrEventsError(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	sock := object.NewSock(5)
	var waitErr error
	h, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, e := s.PollerWait(sock, poller.Recv, 0)
		waitErr = e
		return nil
	})
	require.NoError(t, err)
	require.True(t, h.IsSuspended())

	require.NoError(t, s.handlePollerEvent(sock, poller.Error))
	assert.ErrorIs(t, waitErr, ErrEventsError)
	assert.True(t, h.IsDead())
}

// TestStopDuringPollerWaitResumesWithErrStopped covers teardown: tasks still
// suspended in PollerWait when the loop tears down observe ErrStopped and
// unwind normally rather than leaving the scheduler stuck.
func TestStopDuringPollerWaitResumesWithErrStopped(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	sockF := object.NewSock(6)
	pipeG := object.NewPipe(7)
	var errF, errG error

	hF, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, e := s.PollerWait(sockF, poller.Recv, 0)
		errF = e
		return nil
	})
	require.NoError(t, err)
	hG, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, e := s.PollerWait(pipeG, poller.Send, 0)
		errG = e
		return nil
	})
	require.NoError(t, err)
	require.True(t, hF.IsSuspended())
	require.True(t, hG.IsSuspended())

	s.Stop()
	assert.False(t, s.started)

	teardownErr := s.teardown(nil)
	assert.NoError(t, teardownErr)
	assert.ErrorIs(t, errF, ErrStopped)
	assert.ErrorIs(t, errG, ErrStopped)
	assert.True(t, hF.IsDead())
	assert.True(t, hG.IsDead())
	assert.Equal(t, 0, s.Count())
}

func TestPollerCancelIsIdempotentOnUnknownObject(t *testing.T) {
	s := newTestScheduler(t)
	assert.NoError(t, s.PollerCancel(object.NewSock(99)))
}

func TestPollerCancelRemovesRegisteredObject(t *testing.T) {
	s := newTestScheduler(t)
	s.started = true

	sock := object.NewSock(8)
	_, err := s.Spawn(func(s *Scheduler, _ ...any) []any {
		_, _ = s.PollerWait(sock, poller.Recv, 0)
		return nil
	})
	require.NoError(t, err)
	require.Contains(t, s.pollers, sock)

	require.NoError(t, s.PollerCancel(sock))
	assert.NotContains(t, s.pollers, sock)

	assert.NoError(t, s.PollerCancel(sock))
}
