package automl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/evalgo/model_selection"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Run("binary", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Binary, 42)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "Log Loss Binary", cfg.Objective)
		assert.Equal(t, "F1", cfg.AlternateThresholdingObjective)
		assert.Equal(t,
			[]string{"AUC", "F1", "Accuracy Binary", "Balanced Accuracy Binary", "Precision", "Recall"},
			cfg.AdditionalObjectives)
		assert.True(t, cfg.OptimizeThresholds)
		assert.Equal(t, LogErrorCallback, cfg.ErrorCallback)
		assert.Equal(t, int64(42), cfg.RandomSeed)
		assert.IsType(t, model_selection.StratifiedKFold{}, cfg.DataSplitter)
		assert.Equal(t, 3, cfg.DataSplitter.NSplits())
	})

	t.Run("multiclass", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Multiclass, 42)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "Log Loss Multiclass", cfg.Objective)
		assert.Empty(t, cfg.AlternateThresholdingObjective)
		assert.Equal(t, []string{"Accuracy Multiclass", "F1 Macro"}, cfg.AdditionalObjectives)
		assert.False(t, cfg.OptimizeThresholds)
		assert.IsType(t, model_selection.StratifiedKFold{}, cfg.DataSplitter)
	})

	t.Run("regression", func(t *testing.T) {
		cfg := NewDefaultConfig(problem_types.Regression, 42)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "R2", cfg.Objective)
		assert.Empty(t, cfg.AlternateThresholdingObjective)
		assert.Equal(t, []string{"MSE", "Root Mean Squared Error", "MAE"}, cfg.AdditionalObjectives)
		assert.False(t, cfg.OptimizeThresholds)
		assert.IsType(t, model_selection.KFold{}, cfg.DataSplitter)
		assert.Equal(t, 3, cfg.DataSplitter.NSplits())
	})
}

func TestDefaultSplitter(t *testing.T) {
	assert.IsType(t, model_selection.StratifiedKFold{}, DefaultSplitter(problem_types.Binary, 1))
	assert.IsType(t, model_selection.StratifiedKFold{}, DefaultSplitter(problem_types.Multiclass, 1))
	assert.IsType(t, model_selection.KFold{}, DefaultSplitter(problem_types.Regression, 1))

	stratified := DefaultSplitter(problem_types.Binary, 9).(model_selection.StratifiedKFold)
	assert.Equal(t, int64(9), stratified.Seed)
	assert.True(t, stratified.Shuffle)
}
