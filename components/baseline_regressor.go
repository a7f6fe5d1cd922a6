package components

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// BaselineRegressor predicts a constant learned from the training target:
// its mean (default) or median. Like the Baseline Classifier it ignores the
// features and exists as a floor for searches to beat.
type BaselineRegressor struct {
	Strategy string // "mean" or "median"

	// Learned state.
	Value  float64
	Fitted bool
}

// NewBaselineRegressor creates a Baseline Regressor with the given strategy.
func NewBaselineRegressor(strategy string) (*BaselineRegressor, error) {
	switch strategy {
	case "mean", "median":
		return &BaselineRegressor{Strategy: strategy}, nil
	}
	return nil, errors.NewValueError(BaselineRegressorName,
		"strategy must be mean or median, got "+strategy)
}

func buildBaselineRegressor(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(BaselineRegressorName, params, "strategy"); err != nil {
		return nil, err
	}
	strategy, err := stringParam(params, "strategy", "mean")
	if err != nil {
		return nil, err
	}
	return NewBaselineRegressor(strategy)
}

// Name returns the registry name of the component.
func (b *BaselineRegressor) Name() string { return BaselineRegressorName }

// Parameters returns the hyperparameters the regressor was built with.
func (b *BaselineRegressor) Parameters() map[string]any {
	return map[string]any{"strategy": b.Strategy}
}

// Clone returns a fresh unfitted regressor with the same strategy.
func (b *BaselineRegressor) Clone() Component {
	return &BaselineRegressor{Strategy: b.Strategy}
}

// SupportedProblemTypes reports the problem types the regressor handles.
func (b *BaselineRegressor) SupportedProblemTypes() []problem_types.ProblemType {
	return []problem_types.ProblemType{problem_types.Regression}
}

// Fit records the target mean or median.
func (b *BaselineRegressor) Fit(X *tabular.Table, y *tabular.Series) error {
	if y == nil || y.Len() == 0 {
		return errors.NewValueError("BaselineRegressor.Fit", "empty target")
	}

	if b.Strategy == "median" {
		values := y.Values()
		sort.Float64s(values)
		mid := len(values) / 2
		if len(values)%2 == 0 {
			b.Value = (values[mid-1] + values[mid]) / 2.0
		} else {
			b.Value = values[mid]
		}
	} else {
		sum := 0.0
		for i := 0; i < y.Len(); i++ {
			sum += y.At(i)
		}
		b.Value = sum / float64(y.Len())
	}

	b.Fitted = true
	return nil
}

// Predict returns the learned constant for every row.
func (b *BaselineRegressor) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !b.Fitted {
		return nil, errors.NewNotFittedError("BaselineRegressor", "Predict")
	}

	rows, _ := X.Dims()
	predictions := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		predictions.SetVec(i, b.Value)
	}
	return predictions, nil
}
