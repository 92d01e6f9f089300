package coroutine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuntimeRecyclesCarriers(t *testing.T) {
	r := NewDynamicRuntime()

	th1 := r.Create(func(yield Yield, args ...any) []any { return []any{1} })
	ok, vals, err := th1.Resume()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, []any{1}, vals)
	require.True(t, th1.IsDead())

	// A second coroutine created after the first finished should reuse the
	// recycled carrier and behave like any other fresh Thread.
	th2 := r.Create(func(yield Yield, args ...any) []any { return []any{2} })
	require.True(t, th2.IsSuspended())
	ok, vals, err = th2.Resume()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, []any{2}, vals)
}

func TestRuntimeFixedPool(t *testing.T) {
	r := NewRuntimeFixed(2)

	th := r.Create(func(yield Yield, args ...any) []any {
		yield()
		return nil
	})

	ok, _, err := th.Resume()
	require.True(t, ok)
	require.NoError(t, err)
	require.True(t, th.IsSuspended())

	ok, _, err = th.Resume()
	require.True(t, ok)
	require.NoError(t, err)
	require.True(t, th.IsDead())
}
