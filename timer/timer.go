// Package timer implements the min-heap timer facade the scheduler core
// consumes for poller_wait timeouts and sleep(). It is kept deliberately
// simple: a container/heap priority queue ordered by deadline, in the
// style of the per-object deadline heaps used elsewhere in the retrieved
// pack's scheduler-shaped code.
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Func is invoked when a Task fires. cancel is true when the task was
// cancelled (via the Task.Cancel sentinel) rather than genuinely expiring,
// letting callers skip work they no longer need to do.
type Func func(cancel bool)

// Task is a single pending timer entry. Cancel is a plain exported field,
// not a method, because the scheduler sets it from the outside and the
// timer only consults it lazily at fire time: a cancellation sentinel
// rather than an eager removal from the heap.
type Task struct {
	Cancel   bool
	deadline time.Time
	fn       Func
	index    int // heap.Interface bookkeeping
}

// Timer is a min-heap of pending Tasks ordered by deadline.
type Timer struct {
	mu sync.Mutex
	pq taskHeap
}

// New returns an empty Timer.
func New() *Timer {
	return &Timer{}
}

// Post schedules fn to run after timeoutMS milliseconds and returns the
// Task handle so the caller can set Cancel later.
func (t *Timer) Post(fn Func, timeoutMS int) *Task {
	task := &Task{fn: fn, deadline: time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)}

	t.mu.Lock()
	heap.Push(&t.pq, task)
	t.mu.Unlock()

	return task
}

// Delay returns the number of milliseconds until the next pending task
// fires, or (0, false) if the timer is idle. A task already past its
// deadline returns 0.
func (t *Timer) Delay() (ms int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pq) == 0 {
		return 0, false
	}

	d := time.Until(t.pq[0].deadline)
	if d < 0 {
		d = 0
	}
	return int(d / time.Millisecond), true
}

// Next fires every task whose deadline has passed, in deadline order.
// Tasks whose Cancel sentinel was set are still popped and invoked with
// cancel=true, so the caller's fn can perform any cleanup it needs, but
// the scheduler's own Task.fn callbacks treat that as a no-op.
func (t *Timer) Next() {
	now := time.Now()

	for {
		t.mu.Lock()
		if len(t.pq) == 0 || t.pq[0].deadline.After(now) {
			t.mu.Unlock()
			return
		}
		task := heap.Pop(&t.pq).(*Task)
		t.mu.Unlock()

		task.fn(task.Cancel)
	}
}

// Kill fires every remaining task immediately with cancel=true, then
// empties the timer. Used during scheduler teardown.
func (t *Timer) Kill() {
	t.mu.Lock()
	pending := make([]*Task, len(t.pq))
	copy(pending, t.pq)
	t.pq = nil
	t.mu.Unlock()

	for _, task := range pending {
		task.fn(true)
	}
}

type taskHeap []*Task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x interface{}) {
	task := x.(*Task)
	task.index = len(*h)
	*h = append(*h, task)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*h = old[:n-1]
	return task
}
