package sched

import "github.com/corosched/sched/metrics"

// schedMetrics holds the instruments the Scheduler records through,
// created once at construction from the configured metrics.Provider.
type schedMetrics struct {
	tasksSpawned    metrics.Counter
	tasksLive       metrics.UpDownCounter
	tasksSuspended  metrics.UpDownCounter
	pollerCacheHit  metrics.Counter
	pollerSyscall   metrics.Counter
	timerFires      metrics.Counter
	runloopIterSecs metrics.Histogram
}

func newSchedMetrics(p metrics.Provider) schedMetrics {
	return schedMetrics{
		tasksSpawned:    p.Counter("sched_tasks_spawned_total"),
		tasksLive:       p.UpDownCounter("sched_tasks_live"),
		tasksSuspended:  p.UpDownCounter("sched_tasks_suspended"),
		pollerCacheHit:  p.Counter("sched_poller_wait_cache_hits_total"),
		pollerSyscall:   p.Counter("sched_poller_wait_syscalls_total"),
		timerFires:      p.Counter("sched_timer_fires_total"),
		runloopIterSecs: p.Histogram("sched_runloop_iteration_seconds"),
	}
}
