package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// PoolEngine runs jobs concurrently on the worker pool held by a PoolClient.
//
// On a shared-boundary client, closures capture the caller's pipeline and
// data directly; jobs fit clones, so the captured values are never mutated.
// On an encoded-boundary client, the payload is gob-encoded at submission
// time and the worker decodes it into fresh values, which surfaces any state
// that would not survive transport to an external pool.
type PoolEngine struct {
	client *PoolClient
	closed atomic.Bool
}

// NewPoolEngine builds an engine around client. Passing nil creates an owned
// PoolClient backed by a shared-boundary pool sized to the machine; passing
// an existing *PoolClient uses it as-is. Any other value is rejected with a
// TypeMismatchError.
func NewPoolEngine(client any) (*PoolEngine, error) {
	switch v := client.(type) {
	case nil:
		owned, err := NewPoolClient(nil)
		if err != nil {
			return nil, err
		}
		return &PoolEngine{client: owned}, nil
	case *PoolClient:
		if v == nil {
			return NewPoolEngine(nil)
		}
		return &PoolEngine{client: v}, nil
	default:
		return nil, errors.NewTypeMismatchError("NewPoolEngine", "*engine.PoolClient", client)
	}
}

// Client returns the pool client the engine dispatches to.
func (e *PoolEngine) Client() *PoolClient { return e.client }

// SubmitTrainingJob schedules TrainPipeline on the pool.
func (e *PoolEngine) SubmitTrainingJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline) (Computation[*pipeline.Pipeline], error) {
	if err := e.checkOpen("PoolEngine.SubmitTrainingJob", p); err != nil {
		return nil, err
	}
	run, decode, err := e.trainingTask(X, y, cfg, p)
	if err != nil {
		return nil, err
	}
	return submitComputation(e.client, p.Name, "train", errors.TrainErrorCode, run, decode)
}

// SubmitEvaluationJob schedules EvaluatePipeline on the pool.
func (e *PoolEngine) SubmitEvaluationJob(cfg Config, p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series) (Computation[*EvaluationResult], error) {
	if err := e.checkOpen("PoolEngine.SubmitEvaluationJob", p); err != nil {
		return nil, err
	}
	run, decode, err := e.evaluationTask(cfg, p, X, y)
	if err != nil {
		return nil, err
	}
	return submitComputation(e.client, p.Name, "evaluate", errors.ScoreErrorCode, run, decode)
}

// SubmitScoringJob schedules ScorePipeline on the pool.
func (e *PoolEngine) SubmitScoringJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline, objectiveNames []string) (Computation[pipeline.Scores], error) {
	if err := e.checkOpen("PoolEngine.SubmitScoringJob", p); err != nil {
		return nil, err
	}
	run, decode, err := e.scoringTask(X, y, cfg, p, objectiveNames)
	if err != nil {
		return nil, err
	}
	return submitComputation(e.client, p.Name, "score", errors.ScoreErrorCode, run, decode)
}

// Close shuts down the pool client. The first call wins; later calls are
// no-ops. The client is closed even when it was supplied by the caller, so a
// client must not be shared between engines.
func (e *PoolEngine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		return e.client.Close()
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (e *PoolEngine) IsClosed() bool { return e.closed.Load() }

func (e *PoolEngine) checkOpen(op string, p *pipeline.Pipeline) error {
	if e.IsClosed() {
		return errors.NewValueError(op, "engine is closed")
	}
	if p == nil {
		return errors.NewValueError(op, "pipeline must not be nil")
	}
	return nil
}

func (e *PoolEngine) trainingTask(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline) (func() (any, error), func(any) (*pipeline.Pipeline, error), error) {
	if e.client.Boundary() == EncodedBoundary {
		raw, err := encodeValue(trainPayload{Pipeline: p, X: X, Y: y, Config: cfg})
		if err != nil {
			return nil, nil, err
		}
		run := func() (any, error) {
			var payload trainPayload
			if err := decodeValue(raw, &payload); err != nil {
				return nil, flattenError(err)
			}
			fitted, err := TrainPipeline(payload.Pipeline, payload.X, payload.Y, payload.Config, NewJobLogger())
			if err != nil {
				return nil, flattenError(err)
			}
			out, err := encodeValue(fitted)
			if err != nil {
				return nil, flattenError(err)
			}
			return out, nil
		}
		return run, decodeResult[*pipeline.Pipeline], nil
	}
	run := func() (any, error) {
		return TrainPipeline(p, X, y, cfg, NewJobLogger())
	}
	return run, assertResult[*pipeline.Pipeline], nil
}

func (e *PoolEngine) evaluationTask(cfg Config, p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series) (func() (any, error), func(any) (*EvaluationResult, error), error) {
	if e.client.Boundary() == EncodedBoundary {
		raw, err := encodeValue(evaluatePayload{Pipeline: p, Config: cfg, X: X, Y: y})
		if err != nil {
			return nil, nil, err
		}
		run := func() (any, error) {
			var payload evaluatePayload
			if err := decodeValue(raw, &payload); err != nil {
				return nil, flattenError(err)
			}
			result, err := EvaluatePipeline(payload.Pipeline, payload.Config, payload.X, payload.Y, NewJobLogger())
			if err != nil {
				return nil, flattenError(err)
			}
			out, err := encodeValue(result)
			if err != nil {
				return nil, flattenError(err)
			}
			return out, nil
		}
		return run, decodeResult[*EvaluationResult], nil
	}
	run := func() (any, error) {
		return EvaluatePipeline(p, cfg, X, y, NewJobLogger())
	}
	return run, assertResult[*EvaluationResult], nil
}

func (e *PoolEngine) scoringTask(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline, objectiveNames []string) (func() (any, error), func(any) (pipeline.Scores, error), error) {
	if e.client.Boundary() == EncodedBoundary {
		raw, err := encodeValue(scorePayload{Pipeline: p, X: X, Y: y, Objectives: objectiveNames, Config: cfg})
		if err != nil {
			return nil, nil, err
		}
		run := func() (any, error) {
			var payload scorePayload
			if err := decodeValue(raw, &payload); err != nil {
				return nil, flattenError(err)
			}
			scores, err := ScorePipeline(payload.Pipeline, payload.X, payload.Y, payload.Objectives, payload.Config, NewJobLogger())
			if err != nil {
				return nil, flattenError(err)
			}
			out, err := encodeValue(scores)
			if err != nil {
				return nil, flattenError(err)
			}
			return out, nil
		}
		return run, decodeResult[pipeline.Scores], nil
	}
	run := func() (any, error) {
		return ScorePipeline(p, X, y, objectiveNames, cfg, NewJobLogger())
	}
	return run, assertResult[pipeline.Scores], nil
}

// submitComputation hands run to the pool and wraps the resulting future.
// Methods cannot carry type parameters, so the submit paths converge here.
func submitComputation[T any](client *PoolClient, pipelineName, op string, code errors.PipelineErrorCode, run func() (any, error), decode func(any) (T, error)) (Computation[T], error) {
	future, err := client.Submit(run)
	if err != nil {
		return nil, err
	}
	return &poolComputation[T]{
		id:           uuid.New(),
		pipelineName: pipelineName,
		op:           op,
		code:         code,
		future:       future,
		decode:       decode,
	}, nil
}

func assertResult[T any](v any) (T, error) {
	result, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.Newf("unexpected job result type %T", v)
	}
	return result, nil
}

func decodeResult[T any](v any) (T, error) {
	var result T
	raw, ok := v.([]byte)
	if !ok {
		return result, errors.Newf("unexpected encoded job result type %T", v)
	}
	if err := decodeValue(raw, &result); err != nil {
		return result, err
	}
	return result, nil
}

// poolComputation adapts a pool Future to the Computation contract, wrapping
// job failures into PipelineErrors exactly once.
type poolComputation[T any] struct {
	id           uuid.UUID
	pipelineName string
	op           string
	code         errors.PipelineErrorCode
	future       *Future
	decode       func(any) (T, error)

	once   sync.Once
	result T
	err    error
}

func (c *poolComputation[T]) ID() uuid.UUID { return c.id }

func (c *poolComputation[T]) Done() bool { return c.future.Done() }

func (c *poolComputation[T]) Result(ctx context.Context) (T, error) {
	if err := c.future.Wait(ctx); err != nil {
		// Abandoned wait. The job keeps running and a later Result call
		// can still collect it.
		var zero T
		return zero, err
	}
	c.once.Do(c.resolve)
	return c.result, c.err
}

func (c *poolComputation[T]) Cancel() bool { return c.future.Cancel() }

func (c *poolComputation[T]) IsCancelled() bool { return c.future.IsCancelled() }

func (c *poolComputation[T]) resolve() {
	defer func() { c.decode = nil }()
	if c.future.IsCancelled() {
		c.err = errors.NewPipelineError(c.pipelineName, c.op, errors.CancelledErrorCode, nil)
		return
	}
	value, err := c.future.Value()
	if err != nil {
		c.err = errors.NewPipelineError(c.pipelineName, c.op, c.code, err)
		return
	}
	result, err := c.decode(value)
	if err != nil {
		c.err = errors.NewPipelineError(c.pipelineName, c.op, c.code, err)
		return
	}
	c.result = result
}
