// Package evalgo provides an automated machine learning (AutoML) toolkit for
// Go, built around a backend-agnostic parallel execution engine.
//
// EvalGo searches over candidate modeling pipelines (preprocessing steps plus
// an estimator), fits and cross-validates them, and scores them against one
// or more objectives. Jobs are dispatched through an execution engine that
// guarantees identical results whether pipelines are evaluated sequentially
// or on a pool of workers.
//
// # Features
//
//   - Execution engines: sequential and pooled backends behind one interface
//   - Deterministic: fixed seeds give bit-identical results on every backend
//   - Cancellation: best-effort cancel of not-yet-started jobs
//   - Schema-aware data: logical types and semantic tags travel with the data,
//     including across the encoded worker boundary
//   - Robust error handling: typed errors with stack traces, panic-safe workers
//
// # Quick Start
//
// Evaluate a pipeline with cross-validation on a pooled engine:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/evalgo/automl"
//	    "github.com/YuminosukeSato/evalgo/automl/engine"
//	    "github.com/YuminosukeSato/evalgo/pipeline"
//	    "github.com/YuminosukeSato/evalgo/problem_types"
//	)
//
//	func main() {
//	    X, y := loadData() // tabular.Table, tabular.Series
//
//	    cfg := automl.NewDefaultConfig(problem_types.Binary, 42)
//
//	    p, err := pipeline.New(problem_types.Binary,
//	        []string{"Standard Scaler", "Logistic Regression Classifier"},
//	        pipeline.WithRandomSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    eng, err := engine.NewPoolEngine(nil) // default pooled client
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer eng.Close()
//
//	    comp, err := eng.SubmitEvaluationJob(cfg, p, X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    result, err := comp.Result(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("mean CV score:", result.Scores.CVScoreMean)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - automl: search configuration, error-callback policies, batch search
//   - automl/engine: job functions, computation handles, engines, worker pool
//   - pipeline: component-graph pipelines with fit/predict/score
//   - components: transformer and estimator catalog
//   - objectives: scoring objectives (log loss, F1, AUC, R2, ...)
//   - model_selection: KFold and stratified cross-validation splitters
//   - model_understanding: ROC/PR curves, confusion matrices, charts
//   - tabular: schema-carrying tables and series over gonum matrices
//   - problem_types: binary / multiclass / regression problem kinds
//   - pkg/errors, pkg/log, core/parallel: shared infrastructure
//
// # Engine interchangeability
//
// The central correctness property: for a fixed dataset, pipeline set, and
// configuration, every engine produces equal fitted pipelines and
// cross-validation scores that agree within a relative tolerance of 1e-10.
// Search results must never depend on the execution backend chosen for
// performance reasons.
package evalgo
