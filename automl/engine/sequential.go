package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// SequentialEngine runs every job on the goroutine that asks for its result.
// Submission only captures the work; nothing executes until the first Result
// call. It is the default engine and the reference behavior the pool
// backends are measured against.
type SequentialEngine struct {
	mu     sync.Mutex
	closed bool
}

// NewSequentialEngine returns an open sequential engine.
func NewSequentialEngine() *SequentialEngine {
	return &SequentialEngine{}
}

// SubmitTrainingJob queues a training job for the pipeline.
func (e *SequentialEngine) SubmitTrainingJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline) (Computation[*pipeline.Pipeline], error) {
	if err := e.checkOpen("SubmitTrainingJob"); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewValueError("SequentialEngine.SubmitTrainingJob", "pipeline must not be nil")
	}
	return newSequentialComputation(p.Name, "train", errors.TrainErrorCode, func() (*pipeline.Pipeline, error) {
		return TrainPipeline(p, X, y, cfg, NewJobLogger())
	}), nil
}

// SubmitEvaluationJob queues a cross-validation job for the pipeline.
func (e *SequentialEngine) SubmitEvaluationJob(cfg Config, p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series) (Computation[*EvaluationResult], error) {
	if err := e.checkOpen("SubmitEvaluationJob"); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewValueError("SequentialEngine.SubmitEvaluationJob", "pipeline must not be nil")
	}
	return newSequentialComputation(p.Name, "evaluate", errors.ScoreErrorCode, func() (*EvaluationResult, error) {
		return EvaluatePipeline(p, cfg, X, y, NewJobLogger())
	}), nil
}

// SubmitScoringJob queues a holdout scoring job for the fitted pipeline.
func (e *SequentialEngine) SubmitScoringJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline, objectiveNames []string) (Computation[pipeline.Scores], error) {
	if err := e.checkOpen("SubmitScoringJob"); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewValueError("SequentialEngine.SubmitScoringJob", "pipeline must not be nil")
	}
	return newSequentialComputation(p.Name, "score", errors.ScoreErrorCode, func() (pipeline.Scores, error) {
		return ScorePipeline(p, X, y, objectiveNames, cfg, NewJobLogger())
	}), nil
}

// Close flips the engine to closed. There are no resources to release, so
// closing only rejects further submissions. Idempotent.
func (e *SequentialEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (e *SequentialEngine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *SequentialEngine) checkOpen(op string) error {
	if e.IsClosed() {
		return errors.NewValueError("SequentialEngine."+op, "engine is closed")
	}
	return nil
}

// sequentialComputation defers the job until the first Result call and runs
// it on the calling goroutine. It is born done: the work is guaranteed to
// complete during Result, so there is never a pending phase to cancel.
type sequentialComputation[T any] struct {
	id           uuid.UUID
	pipelineName string
	op           string
	code         errors.PipelineErrorCode

	once  sync.Once
	job   func() (T, error)
	value T
	err   error
}

func newSequentialComputation[T any](pipelineName, op string, code errors.PipelineErrorCode, job func() (T, error)) *sequentialComputation[T] {
	return &sequentialComputation[T]{
		id:           uuid.New(),
		pipelineName: pipelineName,
		op:           op,
		code:         code,
		job:          job,
	}
}

// ID returns the submission identity.
func (c *sequentialComputation[T]) ID() uuid.UUID { return c.id }

// Done always reports true: the result is available to whoever asks for it.
func (c *sequentialComputation[T]) Done() bool { return true }

// Result runs the job on the first call and replays the outcome afterwards.
func (c *sequentialComputation[T]) Result(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	c.once.Do(func() {
		c.value, c.err = c.job()
		if c.err != nil {
			c.err = errors.NewPipelineError(c.pipelineName, c.op, c.code, c.err)
		}
		c.job = nil
	})
	return c.value, c.err
}

// Cancel is the documented no-op: sequential work cannot be unscheduled.
func (c *sequentialComputation[T]) Cancel() bool { return false }

// IsCancelled always reports false.
func (c *sequentialComputation[T]) IsCancelled() bool { return false }
