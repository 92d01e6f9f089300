package sched

import "github.com/corosched/sched/poller"

// handlePollerEvent is installed as the EventHandler for every object the
// scheduler registers with its Poller. It decodes a raw readiness
// notification, resolves it against whichever coroutines are waiting on
// obj, and resumes them.
func (s *Scheduler) handlePollerEvent(obj poller.Object, events poller.EventSet) error {
	entry, ok := s.pollers[obj]
	if !ok {
		// Stale notification for an object the scheduler no longer tracks.
		return nil
	}

	// Sticky EOF: fold whatever directions were registered into the cache
	// so the next poller_wait for this object is satisfied without a
	// syscall, even if no one is waiting right now.
	if events.Has(poller.EOF) {
		events &^= poller.EOF
		entry.eventsSave |= entry.eventsWait
	}

	var coRecv, coSend *Handle
	if events.Has(poller.Recv) {
		coRecv = entry.coRecv
	}
	if events.Has(poller.Send) {
		coSend = entry.coSend
	}
	// An error wakes whoever is waiting on obj, in either direction, so the
	// waiter observes ErrEventsError instead of staying parked.
	if events.Has(poller.Error) {
		coRecv, coSend = entry.coRecv, entry.coSend
	}

	remaining := events

	switch {
	case coRecv != nil && coRecv == coSend:
		// One coroutine waiting on both directions: resume it once with
		// everything that came in.
		entry.coRecv = nil
		entry.coSend = nil
		if err := s.resumeWaiter(coRecv, remaining); err != nil {
			return err
		}
		remaining &^= poller.Recv | poller.Send
	default:
		if coRecv != nil {
			entry.coRecv = nil
			if err := s.resumeWaiter(coRecv, remaining&^poller.Send); err != nil {
				return err
			}
			remaining &^= poller.Recv
		}
		if coSend != nil {
			entry.coSend = nil
			if err := s.resumeWaiter(coSend, remaining&^poller.Recv); err != nil {
				return err
			}
			remaining &^= poller.Send
		}
	}

	// Whatever wasn't handed to a waiter becomes cached readiness for the
	// next poller_wait on this object.
	entry.eventsSave |= remaining

	if entry.idle() {
		delete(s.pollers, obj)
	}
	return nil
}

// resumeWaiter cancels h's pending timeout (if any) and resumes it with
// either the delivered events or the synthetic error sentinel, depending on
// whether events carries an error bit or the scheduler has stopped.
func (s *Scheduler) resumeWaiter(h *Handle, events poller.EventSet) error {
	if h.timerTask != nil {
		h.timerTask.Cancel = true
		h.timerTask = nil
	}
	if _, stillSuspended := s.suspended[h]; !stillSuspended {
		return nil
	}

	if !s.started {
		_, _, err := s.resume(h, ErrStopped)
		return err
	}
	if events.Has(poller.Error) {
		_, _, err := s.resume(h, ErrEventsError)
		return err
	}

	_, _, err := s.resume(h, events)
	return err
}
