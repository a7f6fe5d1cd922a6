package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/evalgo/model_selection"
	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/log"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// binaryDataset builds 30 linearly separable samples, 15 per class, with
// enough rows that a stratified 3-fold split plus the threshold-tuning
// holdout still sees both classes everywhere.
func binaryDataset(t *testing.T) (*tabular.Table, *tabular.Series) {
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

func regressionDataset(t *testing.T) (*tabular.Table, *tabular.Series) {
	t.Helper()
	rows := make([][]float64, 0, 24)
	labels := make([]float64, 0, 24)
	for i := 0; i < 24; i++ {
		x := float64(i)
		rows = append(rows, []float64{x, x / 2})
		labels = append(labels, 2*x+1)
	}
	X, err := tabular.NewTableFromRows(rows, nil)
	require.NoError(t, err)
	y := tabular.NewSeries(labels, tabular.NewColumnSchema("target", tabular.Double, "target"))
	return X, y
}

func binaryPipeline(t *testing.T, name string) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(problem_types.Binary,
		[]string{"Simple Imputer", "Standard Scaler", "Logistic Regression Classifier"},
		pipeline.WithName(name), pipeline.WithRandomSeed(7))
	require.NoError(t, err)
	return p
}

func regressionPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(problem_types.Regression,
		[]string{"Standard Scaler", "Linear Regressor"},
		pipeline.WithRandomSeed(7))
	require.NoError(t, err)
	return p
}

func binaryConfig() Config {
	return Config{
		DataSplitter:                   model_selection.StratifiedKFold{Splits: 3, Shuffle: true, Seed: 11},
		ProblemType:                    problem_types.Binary,
		Objective:                      "Log Loss Binary",
		AlternateThresholdingObjective: "F1",
		AdditionalObjectives:           []string{"AUC", "F1", "Accuracy Binary"},
		OptimizeThresholds:             true,
		RandomSeed:                     11,
	}
}

func regressionConfig() Config {
	return Config{
		DataSplitter:         model_selection.KFold{Splits: 3, Shuffle: true, Seed: 11},
		ProblemType:          problem_types.Regression,
		Objective:            "R2",
		AdditionalObjectives: []string{"MSE"},
		RandomSeed:           11,
	}
}

func TestTrainPipeline(t *testing.T) {
	X, y := binaryDataset(t)

	t.Run("fits a clone and tunes the threshold", func(t *testing.T) {
		p := binaryPipeline(t, "train-target")
		logger := NewJobLogger()

		fitted, err := TrainPipeline(p, X, y, binaryConfig(), logger)
		require.NoError(t, err)
		require.NotSame(t, p, fitted)
		assert.False(t, p.Fitted, "submitted pipeline must stay untouched")
		assert.True(t, fitted.Fitted)

		// Log Loss Binary scores on probabilities, so the alternate
		// objective F1 tunes the threshold on the 20% holdout.
		require.NotNil(t, fitted.Threshold)
		assert.GreaterOrEqual(t, *fitted.Threshold, 0.0)
		assert.Less(t, *fitted.Threshold, 1.0)

		records := logger.Records()
		require.NotEmpty(t, records)
		assert.Contains(t, records[0].Message, "fitting on 24 samples")
		assert.Contains(t, records[1].Message, "tuning decision threshold with F1 on 6 samples")
	})

	t.Run("skips tuning when disabled", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.OptimizeThresholds = false

		fitted, err := TrainPipeline(binaryPipeline(t, "no-tuning"), X, y, cfg, NewJobLogger())
		require.NoError(t, err)
		assert.Nil(t, fitted.Threshold)
	})

	t.Run("skips tuning without a usable objective", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.AlternateThresholdingObjective = ""

		logger := NewJobLogger()
		fitted, err := TrainPipeline(binaryPipeline(t, "no-alternate"), X, y, cfg, logger)
		require.NoError(t, err)
		assert.Nil(t, fitted.Threshold)
		// Without a holdout, the whole dataset trains.
		assert.Contains(t, logger.Records()[0].Message, "fitting on 30 samples")
	})

	t.Run("regression never tunes", func(t *testing.T) {
		rX, ry := regressionDataset(t)
		cfg := regressionConfig()
		cfg.OptimizeThresholds = true

		fitted, err := TrainPipeline(regressionPipeline(t), rX, ry, cfg, NewJobLogger())
		require.NoError(t, err)
		assert.True(t, fitted.Fitted)
		assert.Nil(t, fitted.Threshold)
	})

	t.Run("validates inputs", func(t *testing.T) {
		_, err := TrainPipeline(nil, X, y, binaryConfig(), nil)
		require.ErrorContains(t, err, "pipeline must not be nil")

		_, err = TrainPipeline(binaryPipeline(t, "p"), nil, y, binaryConfig(), nil)
		require.ErrorContains(t, err, "X and y must not be nil")
	})

	t.Run("rejects a mismatched feature schema", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.XSchema = tabular.NewSchema(tabular.NewColumnSchema("only", tabular.Double))

		_, err := TrainPipeline(binaryPipeline(t, "p"), X, y, cfg, nil)
		require.ErrorContains(t, err, "applying feature schema")
	})
}

func TestEvaluatePipelineBinary(t *testing.T) {
	X, y := binaryDataset(t)
	p := binaryPipeline(t, "eval-target")
	cfg := binaryConfig()
	logger := NewJobLogger()

	result, err := EvaluatePipeline(p, cfg, X, y, logger)
	require.NoError(t, err)
	require.Same(t, p, result.Pipeline)
	assert.False(t, p.Fitted, "evaluation must not mutate the submitted pipeline")
	assert.Empty(t, result.Errors)
	assert.Same(t, logger, result.Logger)

	require.Len(t, result.Scores.CVData, 3)
	require.Len(t, result.Scores.CVScores, 3)
	for i, fold := range result.Scores.CVData {
		assert.Equal(t, i, fold.Fold)
		assert.Equal(t, 30, fold.TrainingSize+fold.ValidationSize)
		assert.Equal(t, fold.Score, result.Scores.CVScores[i])
		assert.Equal(t, fold.Score, fold.AllObjectiveScores["Log Loss Binary"])
		require.NotNil(t, fold.BinaryClassificationThreshold)
		for _, name := range cfg.AllObjectives() {
			assert.Contains(t, fold.AllObjectiveScores, name)
		}
		// Separable clusters classify perfectly on every fold.
		assert.InDelta(t, 1.0, fold.AllObjectiveScores["F1"], 1e-12)
		assert.InDelta(t, 1.0, fold.AllObjectiveScores["AUC"], 1e-12)
	}

	var sum float64
	for _, s := range result.Scores.CVScores {
		sum += s
	}
	assert.InDelta(t, sum/3, result.Scores.CVScoreMean, 1e-12)

	var varsum float64
	for _, s := range result.Scores.CVScores {
		varsum += (s - result.Scores.CVScoreMean) * (s - result.Scores.CVScoreMean)
	}
	assert.InDelta(t, math.Sqrt(varsum/2), result.Scores.CVScoreStd, 1e-12)
	assert.Greater(t, result.Scores.TrainingTime, 0.0)

	records := logger.Records()
	require.NotEmpty(t, records)
	assert.Contains(t, records[0].Message, "starting evaluation over 3 folds")
	assert.Contains(t, records[len(records)-1].Message, "finished evaluation")
}

func TestEvaluatePipelineRegression(t *testing.T) {
	X, y := regressionDataset(t)

	result, err := EvaluatePipeline(regressionPipeline(t), regressionConfig(), X, y, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Logger, "a nil logger is replaced, not dereferenced")

	require.Len(t, result.Scores.CVData, 3)
	assert.InDelta(t, 1.0, result.Scores.CVScoreMean, 1e-6)
	for _, fold := range result.Scores.CVData {
		assert.Nil(t, fold.BinaryClassificationThreshold)
		assert.InDelta(t, 0.0, fold.AllObjectiveScores["MSE"], 1e-6)
	}
}

func TestEvaluatePipelineFoldFailures(t *testing.T) {
	// A three-class target makes every fold's binary fit fail.
	X, _ := binaryDataset(t)
	labels := make([]float64, 30)
	for i := range labels {
		labels[i] = float64(i % 3)
	}
	y := tabular.NewSeries(labels, tabular.NewColumnSchema("target", tabular.Integer, "target"))

	t.Run("log callback absorbs failures as NaN", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.ErrorCallback = LogErrorCallback
		logger := NewJobLogger()

		result, err := EvaluatePipeline(binaryPipeline(t, "failing"), cfg, X, y, logger)
		require.NoError(t, err)
		require.Len(t, result.Errors, 3)
		for i, foldErr := range result.Errors {
			assert.Equal(t, i, foldErr.Fold)
			assert.Contains(t, foldErr.Message, "2 unique classes")
		}
		for _, score := range result.Scores.CVScores {
			assert.True(t, math.IsNaN(score))
		}
		assert.True(t, math.IsNaN(result.Scores.CVScoreMean))

		var warned int
		for _, record := range logger.Records() {
			if record.Level == log.LevelWarn {
				assert.Contains(t, record.Message, "fold failed, scores set to NaN")
				warned++
			}
		}
		assert.Equal(t, 3, warned, "one WARN record per failed fold")
	})

	t.Run("raise callback aborts the job", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.ErrorCallback = RaiseErrorCallback

		_, err := EvaluatePipeline(binaryPipeline(t, "failing"), cfg, X, y, nil)
		require.ErrorContains(t, err, "2 unique classes")
	})

	t.Run("silent callback absorbs without logging", func(t *testing.T) {
		cfg := binaryConfig()
		cfg.ErrorCallback = SilentErrorCallback
		logger := NewJobLogger()

		result, err := EvaluatePipeline(binaryPipeline(t, "failing"), cfg, X, y, logger)
		require.NoError(t, err)
		require.Len(t, result.Errors, 3)
		for _, record := range logger.Records() {
			assert.NotContains(t, record.Message, "fold failed")
		}
	})
}

func TestEvaluatePipelineValidation(t *testing.T) {
	X, y := binaryDataset(t)

	_, err := EvaluatePipeline(nil, binaryConfig(), X, y, nil)
	require.ErrorContains(t, err, "pipeline must not be nil")

	cfg := binaryConfig()
	cfg.DataSplitter = nil
	_, err = EvaluatePipeline(binaryPipeline(t, "p"), cfg, X, y, nil)
	require.ErrorContains(t, err, "data splitter is required")
}

func TestScorePipeline(t *testing.T) {
	X, y := binaryDataset(t)
	cfg := binaryConfig()

	fitted, err := TrainPipeline(binaryPipeline(t, "score-target"), X, y, cfg, nil)
	require.NoError(t, err)

	logger := NewJobLogger()
	scores, err := ScorePipeline(fitted, X, y, []string{"Accuracy Binary", "F1"}, cfg, logger)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["Accuracy Binary"], 1e-12)
	assert.InDelta(t, 1.0, scores["F1"], 1e-12)
	assert.Contains(t, logger.Records()[0].Message, "scoring 30 samples")

	t.Run("unfitted pipeline aborts", func(t *testing.T) {
		_, err := ScorePipeline(binaryPipeline(t, "unfitted"), X, y, []string{"F1"}, cfg, nil)
		require.Error(t, err)
	})

	t.Run("validates inputs", func(t *testing.T) {
		_, err := ScorePipeline(nil, X, y, []string{"F1"}, cfg, nil)
		require.ErrorContains(t, err, "pipeline must not be nil")
	})
}

func TestNaNMean(t *testing.T) {
	assert.InDelta(t, 2.0, nanMean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 2.0, nanMean([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(nanMean([]float64{math.NaN(), math.NaN()})))
	assert.True(t, math.IsNaN(nanMean(nil)))
}

func TestNaNStd(t *testing.T) {
	assert.InDelta(t, 1.0, nanStd([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, math.Sqrt2, nanStd([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(nanStd([]float64{5})))
	assert.True(t, math.IsNaN(nanStd([]float64{math.NaN(), math.NaN()})))
	assert.True(t, math.IsNaN(nanStd(nil)))
}
