// Package log defines standard attribute keys for AutoML operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in EvalGo. Using these standard keys enables better
// log analysis, monitoring, and debugging of AutoML search runs.
//
// The attributes are organized into categories:
//   - Pipeline and Operation Context
//   - Engine and Job Context
//   - Data Shape and Cross Validation
//   - Performance and Scores
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "pipeline.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Pipeline and Operation Context
// These attributes identify the pipeline, its components, and the operation
// being performed on them.
const (
	// PipelineNameKey identifies the pipeline a record refers to.
	// Examples: "Logistic Regression Pipeline", "Baseline Pipeline"
	PipelineNameKey = "pipeline.name"

	// ComponentKey identifies the pipeline component being executed.
	// Examples: "Simple Imputer", "One Hot Encoder", "Logistic Regression Classifier"
	ComponentKey = "component.name"

	// OperationKey specifies the operation being performed.
	// Use the Operation* constants below for consistency.
	OperationKey = "ml.operation"

	// ProblemTypeKey records the problem type a search or pipeline targets.
	// Examples: "binary", "multiclass", "regression"
	ProblemTypeKey = "problem.type"

	// ObjectiveKey names the objective a score refers to.
	// Examples: "Log Loss Binary", "F1", "R2"
	ObjectiveKey = "objective.name"
)

// Engine and Job Context
// These attributes identify which engine ran a job and which job a record
// belongs to. Job IDs are UUIDs assigned at submission.
const (
	// JobIDKey carries the UUID of a submitted computation.
	JobIDKey = "job.id"

	// EngineBackendKey names the engine backend a job ran on.
	// Examples: "sequential", "pool", "pool-encoded"
	EngineBackendKey = "engine.backend"

	// WorkersKey records the worker count of a pool.
	WorkersKey = "engine.workers"

	// BatchKey carries the one-based batch number of an AutoML search.
	BatchKey = "search.batch"
)

// Data Shape and Cross Validation
// These attributes describe the data and the cross-validation structure
// involved in an operation.
const (
	// SamplesKey indicates the number of rows in the data.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns in the data.
	FeaturesKey = "data.features"

	// FoldKey carries the zero-based cross-validation fold index.
	FoldKey = "cv.fold"

	// NSplitsKey records how many folds a splitter produces.
	NSplitsKey = "cv.n_splits"
)

// Performance and Scores
// These attributes capture timing and evaluation results.
const (
	// DurationMsKey records elapsed time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ScoreKey carries a single objective score.
	ScoreKey = "metrics.score"

	// CVScoreMeanKey carries the mean of per-fold validation scores.
	CVScoreMeanKey = "metrics.cv_score_mean"
)

// Configuration Context
const (
	// RandomSeedKey records the seed controlling stochastic operations.
	RandomSeedKey = "config.random_seed"
)

// Error Context
// These attributes provide structured error information. ErrAttrKey and
// StacktraceAttrKey in logger.go complete this set.
const (
	// ErrorTypeKey categorizes the type of error that occurred.
	// Examples: "PipelineError", "ValueError", "TypeMismatchError"
	ErrorTypeKey = "error.type"

	// ErrorCodeKey carries a machine-readable failure code.
	// Examples: "train_error", "score_error", "cancelled"
	ErrorCodeKey = "error.code"
)

// Standard operation values for OperationKey.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationEvaluate  = "evaluate"
	OperationSearch    = "search"
	OperationSubmit    = "submit"
	OperationCancel    = "cancel"
)

// Standard engine backend values for EngineBackendKey.
const (
	BackendSequential  = "sequential"
	BackendPool        = "pool"
	BackendPoolEncoded = "pool-encoded"
)
