package sched

import "github.com/corosched/sched/poller"

// pollerEntry is the scheduler's per-pollable-object bookkeeping: who is
// waiting on it, what is currently registered with the poller, and what
// readiness has been observed but not yet handed to a waiter.
type pollerEntry struct {
	coRecv *Handle
	coSend *Handle

	eventsWait poller.EventSet // bitset currently registered with the poller
	eventsSave poller.EventSet // readiness observed but not yet consumed
}

// idle reports whether this entry carries no registration, no cached
// readiness, and no waiters, meaning it can be dropped from the scheduler's
// poller table.
func (e *pollerEntry) idle() bool {
	return e.eventsWait == 0 && e.eventsSave == 0 && e.coRecv == nil && e.coSend == nil
}
