// Package coroutine implements cooperative coroutines on top of goroutines.
//
// Go has no first-class stackful coroutine; this package supplies the
// substitution described for the scheduler core: one OS thread (goroutine)
// per coroutine, synchronized through an unbuffered channel so that control
// never overlaps between the resuming goroutine and the coroutine body.
// Exactly one side runs at a time — the scheduler built on top of this
// package remains single-threaded cooperative even though each coroutine
// has its own goroutine underneath.
package coroutine

import (
	"fmt"
)

// Status reflects where a Thread currently is in its lifecycle.
type Status int

const (
	// Running means the thread's body is currently executing (it is the
	// caller of Resume, or is itself the running coroutine during Yield).
	Running Status = iota
	// Suspended means the thread has yielded and is waiting for Resume.
	Suspended
	// Dead means the thread's function has returned or panicked.
	Dead
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Func is the body of a coroutine. It receives a Yield function bound to
// its own thread and the arguments passed to the first Resume.
type Func func(yield Yield, args ...any) []any

// Yield suspends the calling coroutine, handing values back to whichever
// goroutine is blocked in Resume, and returns the values passed to the next
// Resume call.
type Yield func(values ...any) []any

// Thread is a single cooperatively-scheduled coroutine. It must be created
// with Create and is never shared: Resume/Yield/Status/Running all operate
// on the calling goroutine's identity, so a Thread must be driven from one
// owner goroutine at a time (enforced by the scheduler above this package,
// not by Thread itself).
type Thread struct {
	resumeCh chan []any
	yieldCh  chan yieldMsg
	status   Status
	done     bool

	// release, when set, is invoked exactly once as the thread transitions
	// to Dead. Runtime uses it to return a recycled carrier to its pool.
	release func()
}

type yieldMsg struct {
	values []any
	err    error
	dead   bool
}

// Create constructs a new Thread whose body will run fn. The coroutine does
// not start executing until the first call to Resume.
func Create(fn Func) *Thread {
	t := &Thread{
		resumeCh: make(chan []any),
		yieldCh:  make(chan yieldMsg),
		status:   Suspended,
	}

	go t.run(fn)

	return t
}

func (t *Thread) run(fn Func) {
	args := <-t.resumeCh

	defer func() {
		currentYield = nil
		if r := recover(); r != nil {
			t.yieldCh <- yieldMsg{err: fmt.Errorf("coroutine panicked: %v", r), dead: true}
		}
	}()

	yield := func(values ...any) []any {
		t.yieldCh <- yieldMsg{values: values}
		return <-t.resumeCh
	}

	// currentYield lets callers several frames below fn (the scheduler's
	// own Suspend/PollerWait/Sleep helpers) yield without fn having to
	// thread the Yield value through every call, relying on the same
	// one-goroutine-runs-at-a-time property that makes `current` safe.
	currentYield = yield
	result := fn(yield, args...)
	currentYield = nil

	t.yieldCh <- yieldMsg{values: result, dead: true}
}

// Resume transfers control to t, blocking the caller until t either yields
// or its body returns/panics. ok is false once t is Dead; err carries a
// panic recovered from the coroutine body, if any.
func (t *Thread) Resume(values ...any) (ok bool, result []any, err error) {
	if t.done {
		return false, nil, nil
	}

	current = t
	t.status = Running
	t.resumeCh <- values
	msg := <-t.yieldCh
	current = nil

	if msg.dead {
		t.status = Dead
		t.done = true
		if t.release != nil {
			t.release()
			t.release = nil
		}
		return msg.err == nil, msg.values, msg.err
	}

	t.status = Suspended
	return true, msg.values, nil
}

// Status reports the thread's current lifecycle state.
func (t *Thread) Status() Status {
	return t.status
}

// IsRunning reports whether the thread is currently executing.
func (t *Thread) IsRunning() bool { return t.status == Running }

// IsSuspended reports whether the thread is parked on a Yield.
func (t *Thread) IsSuspended() bool { return t.status == Suspended }

// IsDead reports whether the thread's body has returned or panicked.
func (t *Thread) IsDead() bool { return t.status == Dead }

// current tracks the Thread running on this goroutine tree, so Running can
// report it without the caller threading a reference through every frame.
// This mirrors the coroutine primitive contract's `running()` which is
// implicitly goroutine-local in spirit (only one coroutine runs at a time
// under the scheduler's cooperative model, so a single package-level
// pointer suffices — it is only ever set for the duration of a Resume call
// made by the single owner goroutine driving the scheduler).
var current *Thread

// currentYield is the Yield closure of whichever Thread is currently
// executing, set for the duration of its fn call. It lets scheduler code
// several call frames below a task body yield without fn itself having to
// pass the Yield value down by hand.
var currentYield Yield

// Running returns the Thread currently executing under Resume, or nil when
// called from outside any coroutine body.
func Running() *Thread {
	return current
}

// Yield suspends the currently running coroutine exactly like calling the
// Yield value passed to its Func body would, for code that does not have
// that value in scope. It panics if called outside any coroutine body.
func Yield(values ...any) []any {
	if currentYield == nil {
		panic("coroutine: Yield called outside a running coroutine")
	}
	return currentYield(values...)
}
