package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAndNextFiresDueTasks(t *testing.T) {
	tm := New()
	var fired int32
	tm.Post(func(cancel bool) {
		if !cancel {
			atomic.AddInt32(&fired, 1)
		}
	}, 1)

	time.Sleep(5 * time.Millisecond)
	tm.Next()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestNextIgnoresNotYetDueTasks(t *testing.T) {
	tm := New()
	var fired int32
	tm.Post(func(cancel bool) { atomic.AddInt32(&fired, 1) }, 10000)

	tm.Next()

	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestCancelSentinelHonoredLazily(t *testing.T) {
	tm := New()
	var cancelled bool
	task := tm.Post(func(cancel bool) { cancelled = cancel }, 1)
	task.Cancel = true

	time.Sleep(5 * time.Millisecond)
	tm.Next()

	assert.True(t, cancelled)
}

func TestDelayReflectsNearestDeadline(t *testing.T) {
	tm := New()
	_, ok := tm.Delay()
	assert.False(t, ok, "idle timer reports no delay")

	tm.Post(func(bool) {}, 50)
	ms, ok := tm.Delay()
	require.True(t, ok)
	assert.LessOrEqual(t, ms, 50)
	assert.GreaterOrEqual(t, ms, 0)
}

func TestKillFiresRemainingTasksAsCancelled(t *testing.T) {
	tm := New()
	var a, b bool
	tm.Post(func(cancel bool) { a = cancel }, 10000)
	tm.Post(func(cancel bool) { b = cancel }, 20000)

	tm.Kill()

	assert.True(t, a)
	assert.True(t, b)
	_, ok := tm.Delay()
	assert.False(t, ok, "timer is empty after Kill")
}

func TestHeapOrdersByDeadline(t *testing.T) {
	tm := New()
	var order []int

	tm.Post(func(bool) { order = append(order, 3) }, 30)
	tm.Post(func(bool) { order = append(order, 1) }, 5)
	tm.Post(func(bool) { order = append(order, 2) }, 15)

	time.Sleep(40 * time.Millisecond)
	tm.Next()

	assert.Equal(t, []int{1, 2, 3}, order)
}
