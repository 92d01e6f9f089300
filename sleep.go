package sched

// Sleep suspends the running task for ms milliseconds. Sleep(0) returns
// immediately. Must be called from inside a managed coroutine while the
// scheduler is started.
func (s *Scheduler) Sleep(ms int) error {
	h := s.Running()
	if h == nil {
		return ErrNotRunning
	}
	if !s.started {
		return ErrNotStarted
	}
	if ms == 0 {
		return nil
	}

	waiter := h
	task := s.timer.Post(func(cancelled bool) {
		if cancelled {
			return
		}
		if _, stillSuspended := s.suspended[waiter]; !stillSuspended {
			return
		}
		waiter.timerTask = nil
		s.m.timerFires.Add(1)
		s.resume(waiter)
	}, ms)
	h.timerTask = task

	vals, err := s.Suspend()
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if resumeErr, ok := vals[0].(error); ok {
			return resumeErr
		}
	}
	return nil
}
