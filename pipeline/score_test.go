package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/components"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

func TestScoreBinary(t *testing.T) {
	X, y := binaryData(t)
	p := binaryPipeline(t, WithRandomSeed(42))
	require.NoError(t, p.Fit(X, y))

	scores, err := p.Score(X, y, []string{"Accuracy Binary", "F1", "AUC", "Log Loss Binary"})
	require.NoError(t, err)
	require.Len(t, scores, 4)

	assert.InDelta(t, 1.0, scores["Accuracy Binary"], 1e-12)
	assert.InDelta(t, 1.0, scores["F1"], 1e-12)
	assert.InDelta(t, 1.0, scores["AUC"], 1e-12)
	assert.False(t, math.IsNaN(scores["Log Loss Binary"]))
	assert.Less(t, scores["Log Loss Binary"], 0.7)
}

func TestScoreRemapsClassLabels(t *testing.T) {
	// Labels 3 and 7 must be scored exactly like 0 and 1: F1 treats the
	// larger label as positive and log loss indexes probability columns by
	// class position, neither of which works on the raw values.
	X, _ := binaryData(t)
	y := tabular.NewSeries([]float64{3, 3, 3, 3, 7, 7, 7, 7}, tabular.ColumnSchema{})
	p := binaryPipeline(t, WithRandomSeed(42))
	require.NoError(t, p.Fit(X, y))

	scores, err := p.Score(X, y, []string{"Accuracy Binary", "F1", "Log Loss Binary"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["Accuracy Binary"], 1e-12)
	assert.InDelta(t, 1.0, scores["F1"], 1e-12)
	assert.False(t, math.IsNaN(scores["Log Loss Binary"]))
}

func TestScoreRegression(t *testing.T) {
	X, y := regressionData(t)
	p, err := New(problem_types.Regression, []string{components.LinearRegressorName})
	require.NoError(t, err)
	require.NoError(t, p.Fit(X, y))

	scores, err := p.Score(X, y, []string{"R2", "MSE", "Root Mean Squared Error"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["R2"], 1e-8)
	assert.InDelta(t, 0.0, scores["MSE"], 1e-8)
	assert.InDelta(t, 0.0, scores["Root Mean Squared Error"], 1e-8)
}

func TestScoreFailedObjectiveIsNaN(t *testing.T) {
	// A target containing zero breaks MAPE but nothing else; the other
	// objectives must still come back with real values.
	X, err := tabular.NewTable(mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}), nil)
	require.NoError(t, err)
	y := tabular.NewSeries([]float64{0, 2, 4, 6, 8}, tabular.ColumnSchema{})

	p, err := New(problem_types.Regression, []string{components.LinearRegressorName})
	require.NoError(t, err)
	require.NoError(t, p.Fit(X, y))

	scores, err := p.Score(X, y, []string{"R2", "Mean Absolute Percentage Error"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["R2"], 1e-8)
	assert.True(t, math.IsNaN(scores["Mean Absolute Percentage Error"]))
}

func TestScoreProbaObjectiveWithoutProba(t *testing.T) {
	X, y := regressionData(t)
	p, err := New(problem_types.Regression, []string{components.LinearRegressorName})
	require.NoError(t, err)
	require.NoError(t, p.Fit(X, y))

	scores, err := p.Score(X, y, []string{"R2", "Log Loss Binary"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores["R2"], 1e-8)
	assert.True(t, math.IsNaN(scores["Log Loss Binary"]))
}

func TestScoreAborts(t *testing.T) {
	X, y := binaryData(t)
	p := binaryPipeline(t, WithRandomSeed(42))

	t.Run("not fitted", func(t *testing.T) {
		_, err := p.Score(X, y, []string{"F1"})
		assert.Error(t, err)
	})

	require.NoError(t, p.Fit(X, y))

	t.Run("unknown objective", func(t *testing.T) {
		_, err := p.Score(X, y, []string{"F1", "Lift"})
		assert.Error(t, err)
	})

	t.Run("unseen label", func(t *testing.T) {
		bad := tabular.NewSeries([]float64{0, 0, 0, 0, 1, 1, 1, 2}, tabular.ColumnSchema{})
		_, err := p.Score(X, bad, []string{"F1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not seen during training")
	})
}

func TestScoreHonorsThreshold(t *testing.T) {
	X, y := binaryData(t)
	p := binaryPipeline(t, WithRandomSeed(42))
	require.NoError(t, p.Fit(X, y))

	// With an impossible threshold every sample is predicted negative, so
	// accuracy collapses to the negative-class share.
	high := 1.0
	p.Threshold = &high
	scores, err := p.Score(X, y, []string{"Accuracy Binary"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scores["Accuracy Binary"], 1e-12)
}
