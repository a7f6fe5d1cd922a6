package engine

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// Boundary identifies how job payloads travel between caller and workers.
type Boundary string

const (
	// SharedBoundary hands Go values to worker goroutines directly.
	SharedBoundary Boundary = "shared"
	// EncodedBoundary pushes every payload and result through gob, so
	// workers only ever operate on decoded copies.
	EncodedBoundary Boundary = "encoded"
)

// Pool runs submitted tasks on a fixed set of workers.
type Pool interface {
	// Submit queues a task and returns its future. It fails once the pool
	// has shut down.
	Submit(task func() (any, error)) (*Future, error)
	// Boundary reports the transport mode between caller and workers.
	Boundary() Boundary
	// Shutdown stops intake, lets queued work drain and waits for the
	// workers to exit. Idempotent.
	Shutdown()
}

const taskQueueCapacity = 256

type poolTask struct {
	run    func() (any, error)
	future *Future
}

// WorkerPool is a fixed-size goroutine pool over a buffered task queue.
// Tasks run in submission order per worker pickup; completion order across
// tasks is unordered.
type WorkerPool struct {
	boundary Boundary
	workers  int
	tasks    chan poolTask
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts a shared-memory pool. workers <= 0 selects
// runtime.NumCPU().
func NewWorkerPool(workers int) *WorkerPool {
	return newWorkerPool(workers, SharedBoundary)
}

// NewEncodedWorkerPool starts a pool whose submissions cross an encoded
// boundary. The pool itself only differs in the reported Boundary; the
// engine does the encoding on both sides.
func NewEncodedWorkerPool(workers int) *WorkerPool {
	return newWorkerPool(workers, EncodedBoundary)
}

func newWorkerPool(workers int, boundary Boundary) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	wp := &WorkerPool{
		boundary: boundary,
		workers:  workers,
		tasks:    make(chan poolTask, taskQueueCapacity),
	}
	wp.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		// A future cancelled while queued never runs.
		if !task.future.start() {
			continue
		}
		value, err := errors.SafeCall("WorkerPool.worker", task.run)
		task.future.complete(value, err)
	}
}

// Submit queues the task. It may block when the queue is full.
func (wp *WorkerPool) Submit(task func() (any, error)) (*Future, error) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return nil, errors.NewValueError("WorkerPool.Submit", "pool has been shut down")
	}
	future := newFuture()
	wp.tasks <- poolTask{run: task, future: future}
	return future, nil
}

// Boundary reports the pool's transport mode.
func (wp *WorkerPool) Boundary() Boundary {
	return wp.boundary
}

// Workers returns the fixed worker count.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Shutdown stops intake, drains the queue and waits for the workers.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()
	wp.wg.Wait()
}
