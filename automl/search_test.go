package automl

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/evalgo/automl/engine"
	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/pkg/log"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

func searchData(t *testing.T) (*tabular.Table, *tabular.Series) {
	t.Helper()
	rows := make([][]float64, 0, 30)
	labels := make([]float64, 0, 30)
	for i := 0; i < 15; i++ {
		off := float64(i) * 0.1
		rows = append(rows, []float64{off, 0.5 + off})
		labels = append(labels, 0)
		rows = append(rows, []float64{4 + off, 4.5 + off})
		labels = append(labels, 1)
	}
	X, err := tabular.NewTableFromRows(rows, nil)
	require.NoError(t, err)
	y := tabular.NewSeries(labels, tabular.NewColumnSchema("target", tabular.Integer, "target"))
	return X, y
}

func candidate(t *testing.T, name string, componentNames ...string) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(problem_types.Binary, componentNames,
		pipeline.WithName(name), pipeline.WithRandomSeed(7))
	require.NoError(t, err)
	return p
}

// searchCandidates returns two real models and a baseline that is reliably
// worse on separable data.
func searchCandidates(t *testing.T) []*pipeline.Pipeline {
	t.Helper()
	return []*pipeline.Pipeline{
		candidate(t, "logit-scaled", "Standard Scaler", "Logistic Regression Classifier"),
		candidate(t, "logit-raw", "Logistic Regression Classifier"),
		candidate(t, "baseline", "Baseline Classifier"),
	}
}

// faultyEngine fails the evaluation job of one named pipeline by handing the
// job nil data, and delegates everything else.
type faultyEngine struct {
	*engine.SequentialEngine
	failName string
}

func (e *faultyEngine) SubmitEvaluationJob(cfg Config, p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series) (engine.Computation[*engine.EvaluationResult], error) {
	if p.Name == e.failName {
		return e.SequentialEngine.SubmitEvaluationJob(cfg, p, nil, nil)
	}
	return e.SequentialEngine.SubmitEvaluationJob(cfg, p, X, y)
}

func TestNewSearchValidation(t *testing.T) {
	cfg := NewDefaultConfig(problem_types.Binary, 11)

	t.Run("requires candidates", func(t *testing.T) {
		_, err := NewSearch(cfg, nil)
		require.ErrorContains(t, err, "at least one allowed pipeline is required")
	})

	t.Run("rejects nil candidates", func(t *testing.T) {
		_, err := NewSearch(cfg, []*pipeline.Pipeline{nil})
		require.ErrorContains(t, err, "allowed pipelines must not be nil")
	})

	t.Run("rejects problem type mismatches", func(t *testing.T) {
		regression, err := pipeline.New(problem_types.Regression, []string{"Linear Regressor"},
			pipeline.WithName("wrong-kind"))
		require.NoError(t, err)

		_, err = NewSearch(cfg, []*pipeline.Pipeline{regression})
		require.ErrorContains(t, err, "wrong-kind targets problem type regression, config expects binary")
	})

	t.Run("validates the config", func(t *testing.T) {
		broken := cfg
		broken.DataSplitter = nil
		_, err := NewSearch(broken, searchCandidates(t))
		require.ErrorContains(t, err, "data splitter is required")
	})
}

func TestSearchRun(t *testing.T) {
	X, y := searchData(t)
	cfg := NewDefaultConfig(problem_types.Binary, 11)
	logger, _ := log.NewTestLogger(log.LevelDebug)

	search, err := NewSearch(cfg, searchCandidates(t), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, search.Run(context.Background(), X, y))

	rankings := search.Rankings()
	require.Len(t, rankings, 3)

	// Log Loss minimizes, so the leaderboard is ascending in raw score.
	for i := 1; i < len(rankings); i++ {
		assert.LessOrEqual(t, rankings[i-1].MeanCVScore, rankings[i].MeanCVScore)
	}
	assert.Equal(t, "baseline", rankings[2].Pipeline.Name, "the coin-flip baseline ranks last")

	for _, r := range rankings {
		assert.False(t, math.IsNaN(r.MeanCVScore))
		assert.False(t, math.IsNaN(r.StdCVScore))
		assert.NoError(t, r.Err)
		require.NotNil(t, r.Result)
		assert.Equal(t, r.Result.Scores.CVScoreStd, r.StdCVScore)
		assert.Equal(t, r.Pipeline.Name, r.Result.Pipeline.Name, "results stay attributable")
		assert.False(t, r.Pipeline.Fitted, "candidates come back untrained")
		require.Len(t, r.Result.Scores.CVData, 3)
	}

	best, err := search.BestPipeline()
	require.NoError(t, err)
	assert.Same(t, rankings[0].Pipeline, best)
	assert.NotEqual(t, "baseline", best.Name)

	assert.True(t, logger.ContainsMessage("starting search"))
	assert.True(t, logger.ContainsMessage("pipeline evaluated"))
	assert.True(t, logger.ContainsMessage("search finished"))
	// Job logs replay into the search logger, tagged with their pipeline.
	assert.True(t, logger.ContainsMessage("starting evaluation over 3 folds"))
	assert.True(t, logger.ContainsField(log.PipelineNameKey, "logit-scaled"))

	t.Run("run is one-shot", func(t *testing.T) {
		err := search.Run(context.Background(), X, y)
		require.ErrorContains(t, err, "search has already run")
	})

	t.Run("rankings hands out a copy", func(t *testing.T) {
		got := search.Rankings()
		got[0].Pipeline = nil
		assert.NotNil(t, search.Rankings()[0].Pipeline)
	})
}

func TestSearchRunOnPoolEngine(t *testing.T) {
	X, y := searchData(t)
	cfg := NewDefaultConfig(problem_types.Binary, 11)
	candidates := searchCandidates(t)

	sequential, err := NewSearch(cfg, candidates)
	require.NoError(t, err)
	require.NoError(t, sequential.Run(context.Background(), X, y))

	poolEng, err := engine.NewPoolEngine(nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, poolEng.Close()) }()

	pooled, err := NewSearch(cfg, candidates, WithEngine(poolEng))
	require.NoError(t, err)
	require.NoError(t, pooled.Run(context.Background(), X, y))
	assert.False(t, poolEng.IsClosed(), "a supplied engine stays with its owner")

	want := sequential.Rankings()
	got := pooled.Rankings()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Pipeline.Name, got[i].Pipeline.Name)
		assert.InDelta(t, want[i].MeanCVScore, got[i].MeanCVScore, 1e-10)
	}
}

func TestSearchAbsorbsJobFailures(t *testing.T) {
	X, y := searchData(t)
	candidates := []*pipeline.Pipeline{
		candidate(t, "healthy", "Standard Scaler", "Logistic Regression Classifier"),
		candidate(t, "doomed", "Logistic Regression Classifier"),
	}

	t.Run("log callback keeps searching", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Binary, 11)
		logger, _ := log.NewTestLogger(log.LevelDebug)
		eng := &faultyEngine{SequentialEngine: engine.NewSequentialEngine(), failName: "doomed"}

		search, err := NewSearch(cfg, candidates, WithEngine(eng), WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, search.Run(context.Background(), X, y))

		rankings := search.Rankings()
		require.Len(t, rankings, 2)
		assert.Equal(t, "healthy", rankings[0].Pipeline.Name)
		assert.Equal(t, "doomed", rankings[1].Pipeline.Name, "failed jobs rank last")
		assert.True(t, math.IsNaN(rankings[1].MeanCVScore))
		assert.Nil(t, rankings[1].Result)

		require.Error(t, rankings[1].Err)
		var pipeErr *errors.PipelineError
		require.ErrorAs(t, rankings[1].Err, &pipeErr)
		assert.Equal(t, "doomed", pipeErr.PipelineName)

		best, err := search.BestPipeline()
		require.NoError(t, err)
		assert.Equal(t, "healthy", best.Name)

		assert.True(t, logger.ContainsMessage("pipeline evaluation failed"))
	})

	t.Run("raise callback aborts the run", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Binary, 11)
		cfg.ErrorCallback = RaiseErrorCallback
		eng := &faultyEngine{SequentialEngine: engine.NewSequentialEngine(), failName: "doomed"}

		search, err := NewSearch(cfg, candidates, WithEngine(eng))
		require.NoError(t, err)

		err = search.Run(context.Background(), X, y)
		require.Error(t, err)
		var pipeErr *errors.PipelineError
		require.ErrorAs(t, err, &pipeErr)
		assert.Equal(t, "doomed", pipeErr.PipelineName)
	})

	t.Run("silent callback absorbs without logging", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Binary, 11)
		cfg.ErrorCallback = SilentErrorCallback
		logger, _ := log.NewTestLogger(log.LevelDebug)
		eng := &faultyEngine{SequentialEngine: engine.NewSequentialEngine(), failName: "doomed"}

		search, err := NewSearch(cfg, candidates, WithEngine(eng), WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, search.Run(context.Background(), X, y))

		assert.False(t, logger.ContainsMessage("pipeline evaluation failed"))
		assert.True(t, math.IsNaN(search.Rankings()[1].MeanCVScore))
	})

	t.Run("no survivors means no best pipeline", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Binary, 11)
		eng := &faultyEngine{SequentialEngine: engine.NewSequentialEngine(), failName: "lonely"}

		search, err := NewSearch(cfg, []*pipeline.Pipeline{
			candidate(t, "lonely", "Logistic Regression Classifier"),
		}, WithEngine(eng))
		require.NoError(t, err)
		require.NoError(t, search.Run(context.Background(), X, y))

		_, err = search.BestPipeline()
		require.ErrorContains(t, err, "no pipeline evaluated successfully")
	})
}

func TestSearchRunValidation(t *testing.T) {
	X, y := searchData(t)
	cfg := NewDefaultConfig(problem_types.Binary, 11)

	t.Run("requires data", func(t *testing.T) {
		search, err := NewSearch(cfg, searchCandidates(t))
		require.NoError(t, err)
		require.ErrorContains(t, search.Run(context.Background(), nil, y), "X and y must not be nil")
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		search, err := NewSearch(cfg, searchCandidates(t))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, search.Run(ctx, X, y), context.Canceled)
	})
}

func TestBestPipelineBeforeRun(t *testing.T) {
	cfg := NewDefaultConfig(problem_types.Binary, 11)
	search, err := NewSearch(cfg, searchCandidates(t))
	require.NoError(t, err)

	_, err = search.BestPipeline()
	require.ErrorContains(t, err, "search has not been run")
}
