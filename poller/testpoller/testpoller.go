// Package testpoller is an in-memory Poller used by the scheduler's own
// tests and by callers who want to drive the scheduler without real file
// descriptors: a manually-driven reference implementation alongside the
// real unix poller.
package testpoller

import (
	"sync"
	"time"

	"github.com/corosched/sched/poller"
)

// boundedWait turns the scheduler's millisecond timeout into a duration,
// defaulting to a generous ceiling when the caller passes 0 ("forever")
// so tests don't hang indefinitely if Fire/FailNext is never called.
func boundedWait(timeoutMS int) time.Duration {
	if timeoutMS <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(timeoutMS) * time.Millisecond
}

type registration struct {
	events  poller.EventSet
	handler poller.EventHandler
}

// Poller is a single-goroutine-safe, manually-driven poller. Tests (or a
// host simulating I/O) call Fire to enqueue a readiness delivery and Wait
// to retrieve pending deliveries, exactly like a real OS poller would
// after a readiness-notifying syscall returns.
type Poller struct {
	mu       sync.Mutex
	regs     map[poller.Object]*registration
	pending  []poller.Delivery
	wake     chan struct{}
	support  map[poller.ObjectKind]poller.EventSet
	closeErr error
}

// New returns a Poller that advertises edge-trigger-clear support for the
// given object kinds (typically poller.Sock, mirroring a real epoll/kqueue
// backend), and none for the rest.
func New(edgeClearSupport ...poller.ObjectKind) *Poller {
	support := make(map[poller.ObjectKind]poller.EventSet, len(edgeClearSupport))
	for _, k := range edgeClearSupport {
		support[k] = poller.Clear
	}
	return &Poller{
		regs:    make(map[poller.Object]*registration),
		wake:    make(chan struct{}, 1),
		support: support,
	}
}

func (p *Poller) Support(kind poller.ObjectKind, event poller.EventSet) bool {
	return p.support[kind].Has(event)
}

func (p *Poller) Insert(obj poller.Object, events poller.EventSet, handler poller.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[obj] = &registration{events: events, handler: handler}
	return nil
}

func (p *Poller) Modify(obj poller.Object, events poller.EventSet, handler poller.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.regs[obj]
	if !ok {
		p.regs[obj] = &registration{events: events, handler: handler}
		return nil
	}
	r.events = events
	r.handler = handler
	return nil
}

func (p *Poller) Remove(obj poller.Object) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.regs, obj)
	return nil
}

// Fire injects a readiness delivery for obj as if the OS poller had
// reported it. It is only meaningful for objects currently registered via
// Insert/Modify; the handler passed at registration time is used.
func (p *Poller) Fire(obj poller.Object, events poller.EventSet) {
	p.mu.Lock()
	r, ok := p.regs[obj]
	if !ok {
		p.mu.Unlock()
		return
	}
	p.pending = append(p.pending, poller.Delivery{Object: obj, Events: events, Handler: r.handler})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// FailNext makes the next (or current) Wait call return err as a fatal
// poller error, simulating a syscall failure.
func (p *Poller) FailNext(err error) {
	p.mu.Lock()
	p.closeErr = err
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) Wait(timeoutMS int) ([]poller.Delivery, error) {
	p.mu.Lock()
	if p.closeErr != nil {
		err := p.closeErr
		p.closeErr = nil
		p.mu.Unlock()
		return nil, &poller.ErrFatal{Err: err}
	}
	if len(p.pending) > 0 {
		out := p.pending
		p.pending = nil
		p.mu.Unlock()
		return out, nil
	}
	p.mu.Unlock()

	timer := time.NewTimer(boundedWait(timeoutMS))
	defer timer.Stop()

	select {
	case <-p.wake:
	case <-timer.C:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closeErr != nil {
		err := p.closeErr
		p.closeErr = nil
		return nil, &poller.ErrFatal{Err: err}
	}
	out := p.pending
	p.pending = nil
	return out, nil
}

func (p *Poller) Spank() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
