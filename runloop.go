package sched

import (
	"time"

	"github.com/corosched/sched/poller"
)

// Run drains the ready queue and then blocks, multiplexing poller readiness
// and timer fires until every task has terminated, Stop is called, or the
// poller reports a fatal error. It returns the first error encountered,
// preferring a failure from the main loop over one from teardown.
func (s *Scheduler) Run() error {
	s.started = true
	// Probed once here and cached for PollerWait to consult on every call
	// rather than re-querying the poller per registration.
	s.supportsEdgeClear = s.poller.Support(poller.Sock, poller.Clear)

	for _, rt := range s.ready {
		if _, _, err := s.resume(rt.handle, rt.args...); err != nil {
			return s.teardown(err)
		}
	}
	s.ready = nil

	var loopErr error
loop:
	for s.started && len(s.tasks) > 0 {
		timeoutMS := s.cfg.IdleWaitMS
		if ms, ok := s.timer.Delay(); ok {
			// Wait treats 0 as "forever"; a due timer still needs a bounded wait.
			if ms < 1 {
				ms = 1
			}
			timeoutMS = ms
		}

		iterStart := time.Now()

		deliveries, err := s.poller.Wait(timeoutMS)
		s.m.pollerSyscall.Add(1)
		if err != nil {
			loopErr = err
			break loop
		}

		for _, d := range deliveries {
			if d.Handler == nil {
				continue
			}
			if err := d.Handler.HandleEvent(d.Object, d.Events); err != nil {
				loopErr = err
				break loop
			}
		}

		s.timer.Next()
		s.m.runloopIterSecs.Record(time.Since(iterStart).Seconds())
	}

	return s.teardown(loopErr)
}

// Stop asks the run loop to exit after its current iteration. It wakes an
// in-flight poller.Wait via Spank so the loop re-evaluates its predicate
// promptly. Idempotent.
func (s *Scheduler) Stop() {
	s.started = false
	s.poller.Spank()
}

// teardown runs once the main loop exits for any reason: it forces every
// still-suspended task to resume with an error, removes every registered
// object from the poller and drops its bookkeeping, discards the timer, and
// reports whichever error should be surfaced to the caller of Run.
func (s *Scheduler) teardown(loopErr error) error {
	s.started = false

	teardownErr := s.resumeAllSuspendedWithStop()
	for obj := range s.pollers {
		if err := s.poller.Remove(obj); err != nil && teardownErr == nil {
			teardownErr = err
		}
		delete(s.pollers, obj)
	}
	s.timer.Kill()

	if loopErr != nil {
		return loopErr
	}
	return teardownErr
}

// resumeAllSuspendedWithStop forces every task still in the suspended set to
// resume with ErrStopped, so whatever suspending primitive it was parked in
// returns an error and the task unwinds. Returns the first such error.
func (s *Scheduler) resumeAllSuspendedWithStop() error {
	waiters := make([]*Handle, 0, len(s.suspended))
	for h := range s.suspended {
		waiters = append(waiters, h)
	}

	var firstErr error
	for _, h := range waiters {
		if _, stillSuspended := s.suspended[h]; !stillSuspended {
			continue
		}
		if h.timerTask != nil {
			h.timerTask.Cancel = true
			h.timerTask = nil
		}
		if _, _, err := s.resume(h, ErrStopped); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
