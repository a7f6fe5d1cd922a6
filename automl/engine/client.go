package engine

import (
	"sync"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// PoolClient is the scoped resource a PoolEngine submits through: it
// acquires a pool at construction and releases it exactly once via Close.
type PoolClient struct {
	pool Pool

	mu     sync.Mutex
	closed bool
}

// NewPoolClient wraps a pool for engine use. A nil argument builds a default
// shared-memory WorkerPool sized to runtime.NumCPU(); a Pool implementation
// is used as-is; anything else fails synchronously with a
// TypeMismatchError.
func NewPoolClient(pool any) (*PoolClient, error) {
	switch v := pool.(type) {
	case nil:
		return &PoolClient{pool: NewWorkerPool(0)}, nil
	case Pool:
		return &PoolClient{pool: v}, nil
	default:
		return nil, errors.NewTypeMismatchError("NewPoolClient", "engine.Pool", pool)
	}
}

// Submit queues a task on the underlying pool.
func (c *PoolClient) Submit(task func() (any, error)) (*Future, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.NewValueError("PoolClient.Submit", "client is closed")
	}
	return c.pool.Submit(task)
}

// Boundary reports the transport mode of the underlying pool.
func (c *PoolClient) Boundary() Boundary {
	return c.pool.Boundary()
}

// Close shuts the pool down. Idempotent.
func (c *PoolClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.pool.Shutdown()
	return nil
}

// IsClosed reports whether Close was called.
func (c *PoolClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
