package engine

import (
	"context"

	"github.com/google/uuid"
)

// Computation is the handle an engine returns for a submitted job. A
// computation moves pending → running → exactly one of done, cancelled or
// failed; once terminal it never changes again.
type Computation[T any] interface {
	// ID returns the submission identity assigned by the engine. It is
	// stable for the lifetime of the computation and tags every log record
	// attributed to the job.
	ID() uuid.UUID

	// Done reports whether the computation reached a terminal state. It
	// never blocks.
	Done() bool

	// Result blocks until the computation is terminal and returns the
	// job's value or error. Once terminal, repeated calls return the same
	// pair. Job failures come back wrapped in a PipelineError naming the
	// pipeline and operation; a cancelled computation yields a
	// PipelineError with CancelledErrorCode. Cancelling ctx abandons the
	// wait with ctx.Err() but leaves the job running.
	Result(ctx context.Context) (T, error)

	// Cancel requests cancellation and reports whether it took effect.
	// Only work that has not started can be cancelled; in-flight work runs
	// to completion and cancelling a terminal computation is a no-op.
	Cancel() bool

	// IsCancelled reports whether the computation was cancelled before it
	// started.
	IsCancelled() bool
}
