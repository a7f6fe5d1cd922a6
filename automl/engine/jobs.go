package engine

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/evalgo/model_selection"
	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// thresholdTuningFraction は閾値調整用に取り分ける検証データの割合
const thresholdTuningFraction = 0.2

// FoldData captures the outcome of one cross-validation fold.
type FoldData struct {
	Fold               int
	Score              float64
	AllObjectiveScores map[string]float64
	// BinaryClassificationThreshold is the tuned decision threshold of the
	// fold's fitted pipeline, nil when no tuning happened.
	BinaryClassificationThreshold *float64
	TrainingSize                  int
	ValidationSize                int
}

// CVScores aggregates the per-fold results of an evaluation job.
type CVScores struct {
	CVData []FoldData
	// CVScores holds the primary objective score of each fold in order.
	CVScores []float64
	// CVScoreMean is the mean over non-NaN fold scores, NaN when every
	// fold failed.
	CVScoreMean float64
	// CVScoreStd is the sample standard deviation over non-NaN fold
	// scores, NaN with fewer than two of them.
	CVScoreStd float64
	// TrainingTime is the wall-clock duration of the evaluation in seconds.
	TrainingTime float64
}

// FoldError records a fold failure that the error-callback policy absorbed.
// The cause crosses engine boundaries as a message, not a live error value.
type FoldError struct {
	Fold    int
	Message string
}

// EvaluationResult is the bundle an evaluation job returns: the scores, the
// original (never mutated) pipeline for attribution, the job's log and any
// absorbed fold errors.
type EvaluationResult struct {
	Scores   CVScores
	Pipeline *pipeline.Pipeline
	Logger   *JobLogger
	Errors   []FoldError
}

// TrainPipeline fits a clone of the pipeline and returns it. For binary
// pipelines with threshold optimization enabled, a stratified holdout is
// split off first and the decision threshold is tuned on it after fitting;
// the tuning objective is the config's alternate when the primary objective
// scores on probabilities.
func TrainPipeline(p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series, cfg Config, logger *JobLogger) (*pipeline.Pipeline, error) {
	if p == nil {
		return nil, errors.NewValueError("TrainPipeline", "pipeline must not be nil")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("TrainPipeline", "X and y must not be nil")
	}
	X, y, err := cfg.applySchemas(X, y)
	if err != nil {
		return nil, err
	}

	trainX, trainY := X, y
	var tuneX *tabular.Table
	var tuneY *tabular.Series
	tuningObjective := ""
	if cfg.OptimizeThresholds && p.ProblemType == problem_types.Binary {
		if name, ok := cfg.thresholdTuningObjective(); ok {
			fold, err := model_selection.TrainValidationSplit(X, y, thresholdTuningFraction, true, cfg.RandomSeed)
			if err != nil {
				return nil, errors.Wrapf(err, "splitting threshold tuning data for %s", p.Name)
			}
			trainX, trainY = X.SubsetRows(fold.Train), y.SubsetRows(fold.Train)
			tuneX, tuneY = X.SubsetRows(fold.Test), y.SubsetRows(fold.Test)
			tuningObjective = name
		}
	}

	fitted := p.Clone()
	if logger != nil {
		logger.Debug(fmt.Sprintf("%s: fitting on %d samples", fitted.Name, trainX.NumRows()))
	}
	if err := fitted.Fit(trainX, trainY); err != nil {
		return nil, err
	}

	if tuneX != nil {
		if logger != nil {
			logger.Debug(fmt.Sprintf("%s: tuning decision threshold with %s on %d samples", fitted.Name, tuningObjective, tuneX.NumRows()))
		}
		if err := fitted.OptimizeThreshold(tuneX, tuneY, tuningObjective); err != nil {
			return nil, errors.Wrapf(err, "tuning threshold for %s", p.Name)
		}
	}
	return fitted, nil
}

// EvaluatePipeline cross-validates the pipeline under the config's splitter.
// Each fold trains through TrainPipeline and scores the primary and
// additional objectives on the validation split. Fold failures go through
// the config's error-callback policy: absorbed failures score NaN and are
// recorded in the result's Errors, a raising policy aborts the whole job.
func EvaluatePipeline(p *pipeline.Pipeline, cfg Config, X *tabular.Table, y *tabular.Series, logger *JobLogger) (*EvaluationResult, error) {
	start := time.Now()
	if p == nil {
		return nil, errors.NewValueError("EvaluatePipeline", "pipeline must not be nil")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("EvaluatePipeline", "X and y must not be nil")
	}
	if cfg.DataSplitter == nil {
		return nil, errors.NewValueError("EvaluatePipeline", "a data splitter is required")
	}
	if logger == nil {
		logger = NewJobLogger()
	}
	X, y, err := cfg.applySchemas(X, y)
	if err != nil {
		return nil, err
	}

	folds, err := cfg.DataSplitter.Split(X, y)
	if err != nil {
		return nil, errors.Wrapf(err, "splitting data for %s", p.Name)
	}

	objectiveNames := cfg.AllObjectives()
	logger.Info(fmt.Sprintf("%s: starting evaluation over %d folds", p.Name, len(folds)))

	result := &EvaluationResult{Pipeline: p, Logger: logger}
	for i, fold := range folds {
		trainX, trainY := X.SubsetRows(fold.Train), y.SubsetRows(fold.Train)
		validX, validY := X.SubsetRows(fold.Test), y.SubsetRows(fold.Test)

		logger.Debug(fmt.Sprintf("%s: training and scoring fold %d", p.Name, i))
		fitted, foldErr := TrainPipeline(p, trainX, trainY, cfg, logger)

		var scores pipeline.Scores
		if foldErr == nil {
			scores, foldErr = fitted.Score(validX, validY, objectiveNames)
		}
		if foldErr != nil {
			result.Errors = append(result.Errors, FoldError{Fold: i, Message: foldErr.Error()})
			if abort := cfg.ErrorCallback.Apply(foldErr, p.Name, logger); abort != nil {
				return nil, abort
			}
			scores = nanScores(objectiveNames)
		}

		score := scores[cfg.Objective]
		var threshold *float64
		if fitted != nil && fitted.Threshold != nil {
			v := *fitted.Threshold
			threshold = &v
		}
		result.Scores.CVData = append(result.Scores.CVData, FoldData{
			Fold:                          i,
			Score:                         score,
			AllObjectiveScores:            scores,
			BinaryClassificationThreshold: threshold,
			TrainingSize:                  len(fold.Train),
			ValidationSize:                len(fold.Test),
		})
		result.Scores.CVScores = append(result.Scores.CVScores, score)
	}

	result.Scores.CVScoreMean = nanMean(result.Scores.CVScores)
	result.Scores.CVScoreStd = nanStd(result.Scores.CVScores)
	result.Scores.TrainingTime = time.Since(start).Seconds()
	logger.Info(fmt.Sprintf("%s: finished evaluation, mean %s %f", p.Name, cfg.Objective, result.Scores.CVScoreMean))
	return result, nil
}

// ScorePipeline scores an already fitted pipeline on holdout data. Individual
// objective failures come back as NaN entries, mirroring Pipeline.Score.
func ScorePipeline(p *pipeline.Pipeline, X *tabular.Table, y *tabular.Series, objectiveNames []string, cfg Config, logger *JobLogger) (pipeline.Scores, error) {
	if p == nil {
		return nil, errors.NewValueError("ScorePipeline", "pipeline must not be nil")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("ScorePipeline", "X and y must not be nil")
	}
	X, y, err := cfg.applySchemas(X, y)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug(fmt.Sprintf("%s: scoring %d samples", p.Name, X.NumRows()))
	}
	return p.Score(X, y, objectiveNames)
}

func nanScores(names []string) pipeline.Scores {
	scores := make(pipeline.Scores, len(names))
	for _, name := range names {
		scores[name] = math.NaN()
	}
	return scores
}

// nanMean averages the non-NaN entries; all-NaN input yields NaN.
func nanMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanStd is the sample standard deviation of the non-NaN entries. Fewer
// than two valid entries yield NaN.
func nanStd(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return math.NaN()
	}
	return stat.StdDev(valid, nil)
}
