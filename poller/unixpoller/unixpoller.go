//go:build unix

// Package unixpoller is a Poller backed by poll(2) via golang.org/x/sys/unix.
// It is deliberately the simplest real OS mechanism that satisfies the
// facade, rather than an edge-triggered epoll/kqueue backend: the scheduler
// core only asks Support(poller.Sock, poller.Clear) to decide whether to
// request edge-trigger-clear mode. unixpoller always answers false: its
// registrations are level-triggered and persist until Remove, so readiness
// is reported on every Wait for as long as it holds.
package unixpoller

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/corosched/sched/poller"
)

// Fder is satisfied by pollable objects that additionally expose a raw
// file descriptor, which poll(2) needs and the abstract poller.Object
// contract deliberately omits.
type Fder interface {
	poller.Object
	Fd() int
}

type registration struct {
	obj     Fder
	events  poller.EventSet
	handler poller.EventHandler
}

// Poller multiplexes Fder objects with a single poll(2) call per Wait.
type Poller struct {
	mu    sync.Mutex
	regs  map[int]*registration
	wakeR int
	wakeW int
}

// New constructs a Poller. It opens a self-pipe used to implement Spank.
func New() (*Poller, error) {
	fds, err := unixSocketpair()
	if err != nil {
		return nil, fmt.Errorf("unixpoller: create wake pipe: %w", err)
	}
	return &Poller{
		regs:  make(map[int]*registration),
		wakeR: fds[0],
		wakeW: fds[1],
	}, nil
}

func unixSocketpair() ([2]int, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return [2]int{}, err
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		return [2]int{}, err
	}
	return [2]int{fds[0], fds[1]}, nil
}

func (p *Poller) Support(kind poller.ObjectKind, event poller.EventSet) bool {
	// poll(2) has no edge-trigger-clear mode; a registration stays in
	// place until Remove and is polled again on every Wait.
	return false
}

func (p *Poller) Insert(obj poller.Object, events poller.EventSet, handler poller.EventHandler) error {
	fo, ok := obj.(Fder)
	if !ok {
		return fmt.Errorf("unixpoller: object does not expose a file descriptor")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[fo.Fd()] = &registration{obj: fo, events: events, handler: handler}
	return nil
}

func (p *Poller) Modify(obj poller.Object, events poller.EventSet, handler poller.EventHandler) error {
	return p.Insert(obj, events, handler)
}

func (p *Poller) Remove(obj poller.Object) error {
	fo, ok := obj.(Fder)
	if !ok {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.regs, fo.Fd())
	return nil
}

func toPollEvents(e poller.EventSet) int16 {
	var ev int16
	if e.Has(poller.Recv) {
		ev |= unix.POLLIN
	}
	if e.Has(poller.Send) {
		ev |= unix.POLLOUT
	}
	return ev
}

func fromPollEvents(revents int16) poller.EventSet {
	var e poller.EventSet
	if revents&unix.POLLIN != 0 {
		e |= poller.Recv
	}
	if revents&unix.POLLOUT != 0 {
		e |= poller.Send
	}
	if revents&unix.POLLHUP != 0 {
		e |= poller.EOF
	}
	if revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
		e |= poller.Error
	}
	return e
}

func (p *Poller) Wait(timeoutMS int) ([]poller.Delivery, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, 0, len(p.regs)+1)
	order := make([]*registration, 0, len(p.regs))
	fds = append(fds, unix.PollFd{Fd: int32(p.wakeR), Events: unix.POLLIN})
	order = append(order, nil)
	for fd, reg := range p.regs {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: toPollEvents(reg.events)})
		order = append(order, reg)
	}
	p.mu.Unlock()

	if timeoutMS <= 0 {
		timeoutMS = -1
	}

	n, err := unix.Poll(fds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, &poller.ErrFatal{Err: err}
	}
	if n == 0 {
		return nil, nil
	}

	var out []poller.Delivery
	for i, pf := range fds {
		if pf.Revents == 0 {
			continue
		}
		if i == 0 {
			drainWake(p.wakeR)
			continue
		}
		reg := order[i]
		if events := fromPollEvents(pf.Revents); events != 0 {
			out = append(out, poller.Delivery{Object: reg.obj, Events: events, Handler: reg.handler})
		}
	}
	return out, nil
}

func drainWake(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (p *Poller) Spank() {
	_, _ = unix.Write(p.wakeW, []byte{0})
}
