// Package automl evaluates a batch of candidate pipelines through an
// execution engine and ranks them by cross-validated score.
//
// The search itself is deliberately small: callers name the candidates, a
// Config says how to evaluate them, and an engine decides where the work
// runs. Everything stochastic is seeded, so the leaderboard is reproducible
// run to run and engine to engine.
package automl

import (
	"github.com/YuminosukeSato/evalgo/automl/engine"
	"github.com/YuminosukeSato/evalgo/model_selection"
	"github.com/YuminosukeSato/evalgo/objectives"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// Config is the evaluation configuration carried into every job. It lives
// next to the engines that consume it; the alias keeps construction in this
// package.
type Config = engine.Config

// ErrorCallback selects how evaluation jobs react to fold failures.
type ErrorCallback = engine.ErrorCallback

// The callback policies, re-exported so callers configure a search without
// importing the engine package.
const (
	LogErrorCallback    = engine.LogErrorCallback
	RaiseErrorCallback  = engine.RaiseErrorCallback
	SilentErrorCallback = engine.SilentErrorCallback
)

const defaultCVFolds = 3

// DefaultSplitter returns the default 3-fold cross-validation splitter for
// the problem type, stratified for classification.
func DefaultSplitter(problemType problem_types.ProblemType, seed int64) model_selection.Splitter {
	if problemType.IsClassification() {
		return model_selection.StratifiedKFold{Splits: defaultCVFolds, Shuffle: true, Seed: seed}
	}
	return model_selection.KFold{Splits: defaultCVFolds, Shuffle: true, Seed: seed}
}

// NewDefaultConfig builds the stock configuration for a problem type: the
// default splitter and primary objective, the core additional objectives,
// the log error callback, and for binary problems threshold optimization
// with F1 as the alternate tuning objective.
func NewDefaultConfig(problemType problem_types.ProblemType, seed int64) Config {
	cfg := Config{
		DataSplitter:         DefaultSplitter(problemType, seed),
		ProblemType:          problemType,
		Objective:            objectives.Default(problemType).Name(),
		AdditionalObjectives: defaultAdditionalObjectives(problemType),
		ErrorCallback:        LogErrorCallback,
		RandomSeed:           seed,
	}
	if problemType.IsBinary() {
		cfg.AlternateThresholdingObjective = "F1"
		cfg.OptimizeThresholds = true
	}
	return cfg
}

func defaultAdditionalObjectives(problemType problem_types.ProblemType) []string {
	switch problemType {
	case problem_types.Binary:
		return []string{"AUC", "F1", "Accuracy Binary", "Balanced Accuracy Binary", "Precision", "Recall"}
	case problem_types.Multiclass:
		return []string{"Accuracy Multiclass", "F1 Macro"}
	default:
		return []string{"MSE", "Root Mean Squared Error", "MAE"}
	}
}
