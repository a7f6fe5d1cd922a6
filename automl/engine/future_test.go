package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureCompletes(t *testing.T) {
	f := newFuture()
	assert.False(t, f.Done())

	require.True(t, f.start())
	assert.False(t, f.Done(), "running is not terminal")

	f.complete("result", nil)
	assert.True(t, f.Done())
	assert.False(t, f.IsCancelled())

	require.NoError(t, f.Wait(context.Background()))
	value, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, "result", value)
}

func TestFutureCarriesError(t *testing.T) {
	f := newFuture()
	require.True(t, f.start())
	f.complete(nil, assert.AnError)

	require.NoError(t, f.Wait(context.Background()))
	value, err := f.Value()
	assert.Nil(t, value)
	assert.Same(t, assert.AnError, err)
}

func TestFutureCancel(t *testing.T) {
	t.Run("wins before start", func(t *testing.T) {
		f := newFuture()
		require.True(t, f.Cancel())
		assert.True(t, f.IsCancelled())
		assert.True(t, f.Done())
		assert.False(t, f.start(), "a worker must skip a cancelled future")

		// Cancellation wakes waiters without a value.
		require.NoError(t, f.Wait(context.Background()))
		value, err := f.Value()
		assert.Nil(t, value)
		assert.NoError(t, err)
	})

	t.Run("loses after start", func(t *testing.T) {
		f := newFuture()
		require.True(t, f.start())
		assert.False(t, f.Cancel())
		assert.False(t, f.IsCancelled())
	})

	t.Run("second cancel is a no-op", func(t *testing.T) {
		f := newFuture()
		require.True(t, f.Cancel())
		assert.False(t, f.Cancel())
	})
}

func TestFutureWaitContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.Done(), "an abandoned wait leaves the future untouched")

	// The same future can still complete and be waited on again.
	require.True(t, f.start())
	f.complete(42, nil)
	require.NoError(t, f.Wait(context.Background()))
	value, err := f.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestFutureConcurrentWaiters(t *testing.T) {
	f := newFuture()

	const waiters = 8
	var wg sync.WaitGroup
	values := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := f.Wait(context.Background()); err != nil {
				return
			}
			values[i], _ = f.Value()
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	require.True(t, f.start())
	f.complete("shared", nil)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		assert.Equal(t, "shared", values[i])
	}
}
