package sched

import (
	"fmt"

	"github.com/corosched/sched/poller"
)

// PollerWait suspends the running task until obj reports any of events, a
// pending timeout expires, or the object errors out. The returned EventSet
// is the subset of events that became ready; a zero EventSet with a nil
// error means the wait timed out.
//
// Must be called from inside a managed coroutine while the scheduler is
// started, and obj must be a socket or pipe.
func (s *Scheduler) PollerWait(obj poller.Object, events poller.EventSet, timeoutMS int) (poller.EventSet, error) {
	h := s.Running()
	if h == nil {
		return 0, ErrNotRunning
	}
	if !s.started {
		return 0, ErrNotStarted
	}
	kind := obj.Otype()
	if kind != poller.Sock && kind != poller.Pipe {
		return 0, ErrInvalidObjectKind
	}

	entry, existed := s.pollers[obj]
	if !existed {
		entry = &pollerEntry{}
		s.pollers[obj] = entry
	}

	// Edge-trigger request: sockets on a poller that supports clearing ask
	// for it on every (re)registration. supportsEdgeClear is a cached probe
	// taken once by Run before the loop starts, not re-queried per call.
	registerEvents := events
	if kind == poller.Sock && s.supportsEdgeClear {
		registerEvents |= poller.Clear
	}

	// Readiness cache shortcut: another waiter's leftover readiness, or our
	// own from a prior wait on this object, can satisfy the call without a
	// syscall.
	if entry.eventsWait != 0 && entry.eventsSave.Any(events) {
		if entry.eventsSave.Has(poller.Error) {
			entry.eventsSave = 0
			s.m.pollerCacheHit.Add(1)
			return 0, ErrEventsError
		}
		result := entry.eventsSave & events
		entry.eventsSave &^= result
		s.m.pollerCacheHit.Add(1)
		return result, nil
	}

	// Registration reconciliation: drop RECV/SEND interest nobody is
	// actually waiting on anymore, then OR in what the caller now wants.
	newWait := entry.eventsWait
	if entry.coRecv == nil {
		newWait &^= poller.Recv
	}
	if entry.coSend == nil {
		newWait &^= poller.Send
	}
	newWait |= registerEvents

	added := newWait &^ entry.eventsWait
	var regErr error
	switch {
	case !existed:
		regErr = s.poller.Insert(obj, newWait, s.dispatchHandler)
	case added != 0:
		regErr = s.poller.Modify(obj, newWait, s.dispatchHandler)
	}
	if regErr != nil {
		s.log.Warn().Err(regErr).Msg("poller registration failed")
		return 0, regErr
	}
	entry.eventsWait = newWait

	if timeoutMS > 0 {
		waiter := h
		task := s.timer.Post(func(cancelled bool) {
			if cancelled {
				return
			}
			if _, stillSuspended := s.suspended[waiter]; !stillSuspended {
				return
			}
			waiter.timerTask = nil
			if entry.coRecv == waiter {
				entry.coRecv = nil
			}
			if entry.coSend == waiter {
				entry.coSend = nil
			}
			s.m.timerFires.Add(1)
			s.resume(waiter, poller.EventSet(0))
		}, timeoutMS)
		h.timerTask = task
	}

	if events.Has(poller.Recv) {
		entry.coRecv = h
	}
	if events.Has(poller.Send) {
		entry.coSend = h
	}
	entry.eventsSave = 0

	vals, err := s.Suspend()
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, ErrStopped
	}
	switch v := vals[0].(type) {
	case poller.EventSet:
		return v, nil
	case error:
		return 0, v
	default:
		return 0, fmt.Errorf("%s: unexpected poller resume value %T", Namespace, vals[0])
	}
}

// PollerCancel forgets obj's registration and bookkeeping. Safe to call on
// an object with no entry, or on one already cancelled. Any coroutine still
// recorded as a waiter on a cancelled entry is resumed later, either by a
// still-pending timeout or by the run loop's stop-teardown path.
func (s *Scheduler) PollerCancel(obj poller.Object) error {
	entry, ok := s.pollers[obj]
	if !ok || entry.eventsWait == 0 {
		return nil
	}
	delete(s.pollers, obj)
	return s.poller.Remove(obj)
}
