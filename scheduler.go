// Package sched implements the core of a cooperative coroutine scheduler:
// one coroutine handle per task, a single run loop multiplexing readiness
// over one injected Poller and one internal Timer, and the suspend/resume
// protocol tying the two together.
package sched

import (
	"github.com/rs/zerolog"

	"github.com/corosched/sched/coroutine"
	"github.com/corosched/sched/poller"
	"github.com/corosched/sched/timer"
)

// readyTask is a task queued before the run loop has started: an ordered
// (handle, argv) pair consumed exactly once at loop start.
type readyTask struct {
	handle *Handle
	args   []any
}

// Scheduler owns the task table, the ready queue, the suspended-task set,
// the per-object poller bookkeeping, and a reference to one timer and one
// poller. It is an explicit instance (constructor + methods), never a
// package-level singleton. The record of which task is currently running is
// package-level state (here and in package coroutine) shared by every
// Scheduler in the process, so Schedulers must not be driven from different
// goroutines at the same time.
//
// Every exported method on Scheduler must be called from the single owner
// goroutine driving it, except Stop, which is documented safe to call from
// another goroutine to the extent the injected Poller's Spank is.
type Scheduler struct {
	cfg Config

	poller          poller.Poller
	timer           *timer.Timer
	dispatchHandler poller.EventHandler

	tasks     map[*coroutine.Thread]*Handle
	ready     []readyTask
	suspended map[*Handle]struct{}
	pollers   map[poller.Object]*pollerEntry

	started bool
	// supportsEdgeClear caches the poller's edge-trigger-clear capability
	// for sockets, probed once by Run; only meaningful once started is true.
	supportsEdgeClear bool

	log zerolog.Logger
	m   schedMetrics
}

// New constructs a Scheduler over the given Poller collaborator.
func New(p poller.Poller, opts ...Option) (*Scheduler, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:       cfg,
		poller:    p,
		timer:     timer.New(),
		tasks:     make(map[*coroutine.Thread]*Handle),
		suspended: make(map[*Handle]struct{}),
		pollers:   make(map[poller.Object]*pollerEntry),
		log:       cfg.Logger,
		m:         newSchedMetrics(cfg.Metrics),
	}
	s.dispatchHandler = poller.EventHandlerFunc(s.handlePollerEvent)
	return s, nil
}

// Count returns the number of live tasks, equal to len(Tasks()).
func (s *Scheduler) Count() int { return len(s.tasks) }

// Tasks returns the handles of every currently live task (spawned but not
// yet terminated), in no particular order.
func (s *Scheduler) Tasks() []*Handle {
	out := make([]*Handle, 0, len(s.tasks))
	for _, h := range s.tasks {
		out = append(out, h)
	}
	return out
}

// Started reports whether Run has been entered and has not yet torn down.
func (s *Scheduler) Started() bool { return s.started }
