// Package components implements the building blocks pipelines are assembled
// from: transformers that reshape feature tables and estimators that learn a
// mapping from features to a target.
//
// Components are referenced by registry name (for example "Simple Imputer")
// and constructed through NewComponent, so pipelines can be assembled from
// declarative parameter maps. Every concrete component is registered with
// encoding/gob and keeps its learned state in exported fields, which lets a
// fitted pipeline cross process boundaries intact.
package components

import (
	"encoding/gob"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Registry names of the built-in components.
const (
	OneHotEncoderName      = "One Hot Encoder"
	SimpleImputerName      = "Simple Imputer"
	StandardScalerName     = "Standard Scaler"
	LogisticRegressionName = "Logistic Regression Classifier"
	BaselineClassifierName = "Baseline Classifier"
	SVMClassifierName      = "SVM Classifier"
	LinearRegressorName    = "Linear Regressor"
	BaselineRegressorName  = "Baseline Regressor"
)

// 予測経路の並列化閾値。これ以下の行数では逐次処理を使用
const parallelThreshold = 1000

// Component is the least common denominator of every pipeline step.
type Component interface {
	// Name returns the registry name of the component.
	Name() string

	// Parameters returns the hyperparameters the component was built with,
	// keyed by their snake_case registry names.
	Parameters() map[string]any

	// Clone returns a fresh unfitted component with the same hyperparameters.
	Clone() Component
}

// Transformer is a component that learns from a feature table and reshapes it.
type Transformer interface {
	Component

	Fit(X *tabular.Table) error
	Transform(X *tabular.Table) (*tabular.Table, error)
	FitTransform(X *tabular.Table) (*tabular.Table, error)
}

// Estimator is a component that learns a mapping from features to a target.
type Estimator interface {
	Component

	Fit(X *tabular.Table, y *tabular.Series) error
	Predict(X *tabular.Table) (*mat.VecDense, error)
	SupportedProblemTypes() []problem_types.ProblemType
}

// ProbaEstimator is an Estimator that can also produce per-class probability
// estimates. Each row of the returned matrix sums to one; columns follow the
// sorted class order learned during Fit.
type ProbaEstimator interface {
	Estimator

	PredictProba(X *tabular.Table) (*mat.Dense, error)
}

// Classifier is an Estimator that predicts discrete class labels.
// ClassLabels returns the sorted labels learned during Fit; probability
// columns follow this order.
type Classifier interface {
	Estimator

	ClassLabels() []float64
}

func init() {
	gob.Register(&OneHotEncoder{})
	gob.Register(&SimpleImputer{})
	gob.Register(&StandardScaler{})
	gob.Register(&LogisticRegressionClassifier{})
	gob.Register(&BaselineClassifier{})
	gob.Register(&SVMClassifier{})
	gob.Register(&LinearRegressor{})
	gob.Register(&BaselineRegressor{})
}

// builder constructs a component from a parameter map and a random seed.
type builder func(params map[string]any, seed int64) (Component, error)

var builders = map[string]builder{
	strings.ToLower(OneHotEncoderName):      buildOneHotEncoder,
	strings.ToLower(SimpleImputerName):      buildSimpleImputer,
	strings.ToLower(StandardScalerName):     buildStandardScaler,
	strings.ToLower(LogisticRegressionName): buildLogisticRegression,
	strings.ToLower(BaselineClassifierName): buildBaselineClassifier,
	strings.ToLower(SVMClassifierName):      buildSVMClassifier,
	strings.ToLower(LinearRegressorName):    buildLinearRegressor,
	strings.ToLower(BaselineRegressorName):  buildBaselineRegressor,
}

// NewComponent builds a component by registry name. Matching ignores case.
// params may be nil; unknown names and malformed parameters fail with an
// error rather than a partially configured component.
func NewComponent(name string, params map[string]any, seed int64) (Component, error) {
	build, ok := builders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewValueError("NewComponent", name+" is not a registered component name")
	}
	return build(params, seed)
}

// Names returns every registered component name, sorted.
func Names() []string {
	names := []string{
		OneHotEncoderName,
		SimpleImputerName,
		StandardScalerName,
		LogisticRegressionName,
		BaselineClassifierName,
		SVMClassifierName,
		LinearRegressorName,
		BaselineRegressorName,
	}
	sort.Strings(names)
	return names
}

// checkKeys rejects parameter names the component does not define.
func checkKeys(component string, params map[string]any, allowed ...string) error {
	for key := range params {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return errors.NewValueError(component, "unknown parameter: "+key)
		}
	}
	return nil
}

// intParam reads an integer hyperparameter, accepting float64 spellings since
// parameter maps often come from generic decoders.
func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, errors.NewValidationError(key, "must be an integer", v)
}

// floatParam reads a floating point hyperparameter.
func floatParam(params map[string]any, key string, def float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, errors.NewValidationError(key, "must be a number", v)
}

// stringParam reads a string hyperparameter.
func stringParam(params map[string]any, key, def string) (string, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(key, "must be a string", v)
	}
	return s, nil
}

// boolParam reads a boolean hyperparameter.
func boolParam(params map[string]any, key string, def bool) (bool, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewValidationError(key, "must be a boolean", v)
	}
	return b, nil
}
