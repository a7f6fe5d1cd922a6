package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/pkg/log"
)

func TestSequentialEngineTrainAndScore(t *testing.T) {
	eng := NewSequentialEngine()
	defer func() { require.NoError(t, eng.Close()) }()
	X, y := binaryDataset(t)
	cfg := binaryConfig()
	p := binaryPipeline(t, "seq-train")

	comp, err := eng.SubmitTrainingJob(X, y, cfg, p)
	require.NoError(t, err)
	assert.True(t, comp.Done(), "sequential computations are born done")
	assert.False(t, comp.IsCancelled())
	assert.False(t, comp.Cancel(), "sequential work cannot be unscheduled")

	fitted, err := comp.Result(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fitted)
	assert.True(t, fitted.Fitted)
	assert.False(t, p.Fitted)

	scoring, err := eng.SubmitScoringJob(X, y, cfg, fitted, []string{"F1", "AUC"})
	require.NoError(t, err)
	scores, err := scoring.Result(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["F1"], 1e-12)
	assert.InDelta(t, 1.0, scores["AUC"], 1e-12)
}

func TestSequentialEngineEvaluate(t *testing.T) {
	eng := NewSequentialEngine()
	X, y := binaryDataset(t)
	p := binaryPipeline(t, "seq-eval")

	comp, err := eng.SubmitEvaluationJob(binaryConfig(), p, X, y)
	require.NoError(t, err)
	result, err := comp.Result(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Scores.CVData, 3)
	assert.Same(t, p, result.Pipeline)
	assert.NotNil(t, result.Logger)

	// The job log replays into the caller's structured logger afterwards.
	target, _ := log.NewTestLogger(log.LevelDebug)
	result.Logger.WriteToLogger(target)
	assert.True(t, target.ContainsMessage("starting evaluation over 3 folds"))
}

func TestSequentialComputationResult(t *testing.T) {
	eng := NewSequentialEngine()
	X, y := binaryDataset(t)
	cfg := binaryConfig()

	t.Run("idempotent across calls", func(t *testing.T) {
		comp, err := eng.SubmitTrainingJob(X, y, cfg, binaryPipeline(t, "idempotent"))
		require.NoError(t, err)

		first, err := comp.Result(context.Background())
		require.NoError(t, err)
		second, err := comp.Result(context.Background())
		require.NoError(t, err)
		assert.Same(t, first, second, "the job ran exactly once")
	})

	t.Run("cancelled context defers the job", func(t *testing.T) {
		comp, err := eng.SubmitTrainingJob(X, y, cfg, binaryPipeline(t, "deferred"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = comp.Result(ctx)
		require.ErrorIs(t, err, context.Canceled)

		// Abandoning never consumes the computation.
		fitted, err := comp.Result(context.Background())
		require.NoError(t, err)
		assert.True(t, fitted.Fitted)
	})

	t.Run("job failure surfaces as a pipeline error", func(t *testing.T) {
		comp, err := eng.SubmitTrainingJob(nil, y, cfg, binaryPipeline(t, "lazy-failure"))
		require.NoError(t, err, "submission captures the work without validating the data")

		_, err = comp.Result(context.Background())
		require.Error(t, err)
		var pipeErr *errors.PipelineError
		require.ErrorAs(t, err, &pipeErr)
		assert.Equal(t, "lazy-failure", pipeErr.PipelineName)
		assert.Equal(t, "train", pipeErr.Op)
		assert.Equal(t, errors.TrainErrorCode, pipeErr.Code)
	})

	t.Run("distinct submissions get distinct ids", func(t *testing.T) {
		a, err := eng.SubmitTrainingJob(X, y, cfg, binaryPipeline(t, "a"))
		require.NoError(t, err)
		b, err := eng.SubmitTrainingJob(X, y, cfg, binaryPipeline(t, "b"))
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
	})
}

func TestSequentialEngineClose(t *testing.T) {
	eng := NewSequentialEngine()
	X, y := binaryDataset(t)
	cfg := binaryConfig()

	assert.False(t, eng.IsClosed())
	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close(), "close is idempotent")
	assert.True(t, eng.IsClosed())

	_, err := eng.SubmitTrainingJob(X, y, cfg, binaryPipeline(t, "p"))
	require.ErrorContains(t, err, "engine is closed")
	_, err = eng.SubmitEvaluationJob(cfg, binaryPipeline(t, "p"), X, y)
	require.ErrorContains(t, err, "engine is closed")
	_, err = eng.SubmitScoringJob(X, y, cfg, binaryPipeline(t, "p"), []string{"F1"})
	require.ErrorContains(t, err, "engine is closed")
}

func TestSequentialEngineRejectsNilPipeline(t *testing.T) {
	eng := NewSequentialEngine()
	X, y := binaryDataset(t)
	cfg := binaryConfig()

	_, err := eng.SubmitTrainingJob(X, y, cfg, nil)
	require.ErrorContains(t, err, "pipeline must not be nil")
	_, err = eng.SubmitEvaluationJob(cfg, nil, X, y)
	require.ErrorContains(t, err, "pipeline must not be nil")
	_, err = eng.SubmitScoringJob(X, y, cfg, nil, []string{"F1"})
	require.ErrorContains(t, err, "pipeline must not be nil")
}
