package coroutine

import (
	"fmt"

	"github.com/corosched/sched/coroutine/fiberpool"
)

// fiber is a carrier goroutine recycled by a Runtime: it parks on assign
// between coroutine bodies instead of exiting, so that creating many
// short-lived coroutines in sequence does not pay for a fresh goroutine
// stack each time.
type fiber struct {
	assign chan Func
	t      *Thread
}

// Runtime creates Threads backed by a recycled pool of carrier goroutines.
// Its zero value is not usable; construct with NewRuntime.
type Runtime struct {
	pool fiberpool.Pool
}

// NewRuntime returns a Runtime whose carriers are recycled via pool. Pass
// fiberpool.NewDynamic for an unbounded pool or fiberpool.NewFixed(n, ...)
// to cap the number of live carrier goroutines.
func NewRuntime(pool fiberpool.Pool) *Runtime {
	return &Runtime{pool: pool}
}

// NewDynamicRuntime is a convenience constructor for the common case: an
// unbounded, sync.Pool-backed carrier pool.
func NewDynamicRuntime() *Runtime {
	r := &Runtime{}
	r.pool = fiberpool.NewDynamic(func() interface{} { return newFiber(r) })
	return r
}

// NewRuntimeFixed returns a Runtime capped at capacity live carriers.
func NewRuntimeFixed(capacity uint) *Runtime {
	r := &Runtime{}
	r.pool = fiberpool.NewFixed(capacity, func() interface{} { return newFiber(r) })
	return r
}

func newFiber(r *Runtime) *fiber {
	f := &fiber{assign: make(chan Func)}
	f.t = &Thread{
		resumeCh: make(chan []any),
		yieldCh:  make(chan yieldMsg),
		status:   Suspended,
		release:  func() { r.pool.Put(f) },
	}

	go f.loop()

	return f
}

// loop runs forever, executing one coroutine body per assignment and then
// re-parking so the carrier can be reused by the next Create call.
func (f *fiber) loop() {
	for fn := range f.assign {
		args := <-f.t.resumeCh
		f.runOnce(fn, args)
	}
}

func (f *fiber) runOnce(fn Func, args []any) {
	defer func() {
		currentYield = nil
		if r := recover(); r != nil {
			f.t.yieldCh <- yieldMsg{err: fmt.Errorf("coroutine panicked: %v", r), dead: true}
		}
	}()

	yield := func(values ...any) []any {
		f.t.yieldCh <- yieldMsg{values: values}
		return <-f.t.resumeCh
	}

	currentYield = yield
	result := fn(yield, args...)
	currentYield = nil

	f.t.yieldCh <- yieldMsg{values: result, dead: true}
}

// Create constructs a new Thread whose body runs fn, drawing a recycled
// carrier goroutine from the runtime's pool instead of spawning a fresh
// one. The returned Thread behaves identically to one built with the
// package-level Create.
func (r *Runtime) Create(fn Func) *Thread {
	f := r.pool.Get().(*fiber)

	// A carrier's Thread shell is reused across occupants: reset the
	// bookkeeping the previous occupant left in Dead state, but keep the
	// channels (and the release closure bound to this *fiber) intact.
	f.t.status = Suspended
	f.t.done = false

	f.assign <- fn

	return f.t
}
