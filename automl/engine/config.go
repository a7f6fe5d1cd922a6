// Package engine schedules pipeline training, evaluation and scoring jobs.
//
// Engines share one contract: jobs receive exact arguments, return exact
// results through a Computation handle, and never mutate the submitted
// pipeline (job functions fit clones). SequentialEngine runs jobs lazily on
// the calling goroutine; PoolEngine dispatches to a fixed worker pool, either
// sharing memory with the workers or pushing every payload through a gob
// serialization boundary. For a fixed dataset, pipeline set and config all
// backends produce the same fitted pipelines and scores.
package engine

import (
	"github.com/YuminosukeSato/evalgo/model_selection"
	"github.com/YuminosukeSato/evalgo/objectives"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Config is the immutable bundle of search settings carried into every job.
// Jobs read it and never write it, so one Config can back any number of
// concurrent submissions. Objectives are referenced by registry name and the
// splitter is a gob-registered value type, which keeps a Config intact across
// the encoded worker boundary.
type Config struct {
	// DataSplitter produces the cross-validation folds for evaluation jobs.
	DataSplitter model_selection.Splitter

	// ProblemType every submitted pipeline must target.
	ProblemType problem_types.ProblemType

	// Objective is the primary objective name driving fold scores and
	// rankings.
	Objective string

	// AlternateThresholdingObjective is the label-based objective used to
	// tune binary decision thresholds when the primary objective scores on
	// probabilities.
	AlternateThresholdingObjective string

	// AdditionalObjectives are scored on every validation fold alongside
	// the primary objective.
	AdditionalObjectives []string

	// OptimizeThresholds enables the 20% threshold-tuning holdout for
	// binary pipelines.
	OptimizeThresholds bool

	// ErrorCallback selects how evaluation jobs react to fold failures.
	ErrorCallback ErrorCallback

	// RandomSeed controls holdout splitting inside training jobs.
	RandomSeed int64

	// XSchema, when set, replaces the feature schema before a job touches
	// the data. YSchema does the same for the target.
	XSchema *tabular.Schema
	YSchema *tabular.ColumnSchema
}

// Validate checks that the config can drive a job: the splitter is present,
// every objective name resolves, and every objective is defined for the
// problem type. The alternate thresholding objective must additionally be
// able to tune a threshold.
func (c Config) Validate() error {
	if c.DataSplitter == nil {
		return errors.NewValueError("Config.Validate", "a data splitter is required")
	}
	if c.Objective == "" {
		return errors.NewValueError("Config.Validate", "a primary objective is required")
	}
	if err := objectives.ValidateObjectives(c.AllObjectives(), c.ProblemType); err != nil {
		return err
	}
	if c.AlternateThresholdingObjective != "" {
		alt, err := objectives.Get(c.AlternateThresholdingObjective)
		if err != nil {
			return err
		}
		if !objectives.CanOptimizeThreshold(alt) {
			return errors.NewValueError("Config.Validate",
				alt.Name()+" cannot be used as an alternate thresholding objective")
		}
	}
	return nil
}

// AllObjectives returns the primary objective followed by the additional
// objectives, with duplicates removed.
func (c Config) AllObjectives() []string {
	names := make([]string, 0, 1+len(c.AdditionalObjectives))
	seen := make(map[string]bool, 1+len(c.AdditionalObjectives))
	for _, name := range append([]string{c.Objective}, c.AdditionalObjectives...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// thresholdTuningObjective returns the objective name used to tune a binary
// decision threshold under this config, or false when tuning does not apply.
func (c Config) thresholdTuningObjective() (string, bool) {
	obj, err := objectives.Get(c.Objective)
	if err != nil || !obj.IsDefinedForProblemType(problem_types.Binary) {
		return "", false
	}
	if objectives.CanOptimizeThreshold(obj) {
		return obj.Name(), true
	}
	if c.AlternateThresholdingObjective == "" {
		return "", false
	}
	alt, err := objectives.Get(c.AlternateThresholdingObjective)
	if err != nil || !objectives.CanOptimizeThreshold(alt) {
		return "", false
	}
	return alt.Name(), true
}

// applySchemas overlays the config's schemas onto the data when present.
// The returned table and series share the underlying values.
func (c Config) applySchemas(X *tabular.Table, y *tabular.Series) (*tabular.Table, *tabular.Series, error) {
	if c.XSchema != nil {
		withSchema, err := X.WithSchema(c.XSchema)
		if err != nil {
			return nil, nil, errors.Wrap(err, "applying feature schema")
		}
		X = withSchema
	}
	if c.YSchema != nil {
		y = y.WithSchema(*c.YSchema)
	}
	return X, y, nil
}
