package engine

import (
	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Engine submits pipeline jobs and hands back computation handles. Engines
// are interchangeable: for the same data, pipelines and config every
// implementation must produce equal fitted pipelines and scores, differing
// only in where and when the work runs.
//
// Submission errors (closed engine, nil pipeline) are synchronous; job
// execution errors surface only through the returned computation's Result.
type Engine interface {
	SubmitTrainingJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline) (Computation[*pipeline.Pipeline], error)
	SubmitEvaluationJob(cfg Config, p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series) (Computation[*EvaluationResult], error)
	SubmitScoringJob(X *tabular.Table, y *tabular.Series, cfg Config, p *pipeline.Pipeline, objectiveNames []string) (Computation[pipeline.Scores], error)

	// Close releases whatever the engine owns and rejects further
	// submissions. Idempotent.
	Close() error
	// IsClosed reports whether Close was called.
	IsClosed() bool
}

var (
	_ Engine = (*SequentialEngine)(nil)
	_ Engine = (*PoolEngine)(nil)
)
