package engine

import (
	"context"
	"sync/atomic"
)

// Future states. The only legal transitions are pending → running → done
// (worker side) and pending → cancelled (caller side), each guarded by a
// compare-and-swap so exactly one side wins.
const (
	futurePending int32 = iota
	futureRunning
	futureCancelled
	futureDone
)

// Future is the handle a worker pool returns for a submitted task. The
// value/error pair is written exactly once, before the done channel closes,
// so readers that entered through Wait observe it safely.
type Future struct {
	state atomic.Int32
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// start moves the future to running. It returns false when the future was
// cancelled first, in which case the worker must skip the task.
func (f *Future) start() bool {
	return f.state.CompareAndSwap(futurePending, futureRunning)
}

// complete records the task outcome and wakes every waiter.
func (f *Future) complete(value any, err error) {
	f.value = value
	f.err = err
	f.state.Store(futureDone)
	close(f.done)
}

// Cancel attempts to cancel the task before it starts. Work that a worker
// already picked up runs to completion; cancelling a terminal future is a
// no-op. Returns true only when the cancellation won.
func (f *Future) Cancel() bool {
	if f.state.CompareAndSwap(futurePending, futureCancelled) {
		close(f.done)
		return true
	}
	return false
}

// Done reports whether the future is terminal (done or cancelled).
func (f *Future) Done() bool {
	s := f.state.Load()
	return s == futureDone || s == futureCancelled
}

// IsCancelled reports whether Cancel won before the task started.
func (f *Future) IsCancelled() bool {
	return f.state.Load() == futureCancelled
}

// Wait blocks until the future is terminal or ctx is cancelled. It returns
// ctx.Err() when the wait was abandoned; the task itself is unaffected.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		return nil
	}
}

// Value returns the task outcome. Valid only after the future completed;
// a cancelled future has no value.
func (f *Future) Value() (any, error) {
	return f.value, f.err
}
