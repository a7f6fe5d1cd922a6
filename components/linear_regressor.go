package components

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/core/parallel"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// LinearRegressor fits ordinary least squares via QR decomposition of the
// design matrix, which is numerically safer than forming the normal
// equations directly.
type LinearRegressor struct {
	FitIntercept bool

	// Learned state.
	Coef      []float64
	Intercept float64
	NFeatures int
	Fitted    bool
}

// NewLinearRegressor creates a Linear Regressor.
func NewLinearRegressor(fitIntercept bool) *LinearRegressor {
	return &LinearRegressor{FitIntercept: fitIntercept}
}

func buildLinearRegressor(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(LinearRegressorName, params, "fit_intercept"); err != nil {
		return nil, err
	}
	fitIntercept, err := boolParam(params, "fit_intercept", true)
	if err != nil {
		return nil, err
	}
	return NewLinearRegressor(fitIntercept), nil
}

// Name returns the registry name of the component.
func (lr *LinearRegressor) Name() string { return LinearRegressorName }

// Parameters returns the hyperparameters the regressor was built with.
func (lr *LinearRegressor) Parameters() map[string]any {
	return map[string]any{"fit_intercept": lr.FitIntercept}
}

// Clone returns a fresh unfitted regressor with the same hyperparameters.
func (lr *LinearRegressor) Clone() Component { return NewLinearRegressor(lr.FitIntercept) }

// SupportedProblemTypes reports the problem types the regressor handles.
func (lr *LinearRegressor) SupportedProblemTypes() []problem_types.ProblemType {
	return []problem_types.ProblemType{problem_types.Regression}
}

// Fit solves the least squares problem with a QR factorization.
func (lr *LinearRegressor) Fit(X *tabular.Table, y *tabular.Series) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("LinearRegressor.Fit", "empty feature table")
	}
	if y == nil || y.Len() != rows {
		yLen := 0
		if y != nil {
			yLen = y.Len()
		}
		return errors.NewDimensionError("LinearRegressor.Fit", rows, yLen, 0)
	}

	lr.NFeatures = cols

	// 切片項のために先頭に1の列を追加した計画行列を組み立てる
	width := cols
	if lr.FitIntercept {
		width++
	}
	design := mat.NewDense(rows, width, nil)
	for i := 0; i < rows; i++ {
		offset := 0
		if lr.FitIntercept {
			design.Set(i, 0, 1.0)
			offset = 1
		}
		for j := 0; j < cols; j++ {
			design.Set(i, j+offset, X.At(i, j))
		}
	}

	target := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		target.Set(i, 0, y.At(i))
	}

	var qr mat.QR
	qr.Factorize(design)

	coefficients := mat.NewDense(width, 1, nil)
	if err := qr.SolveTo(coefficients, false, target); err != nil {
		return errors.Wrap(err, "LinearRegressor.Fit: failed to solve linear system")
	}

	lr.Coef = make([]float64, cols)
	if lr.FitIntercept {
		lr.Intercept = coefficients.At(0, 0)
		for j := 0; j < cols; j++ {
			lr.Coef[j] = coefficients.At(j+1, 0)
		}
	} else {
		lr.Intercept = 0.0
		for j := 0; j < cols; j++ {
			lr.Coef[j] = coefficients.At(j, 0)
		}
	}

	lr.Fitted = true
	return nil
}

// Predict computes y = X*coef + intercept for every row.
func (lr *LinearRegressor) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !lr.Fitted {
		return nil, errors.NewNotFittedError("LinearRegressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegressor.Predict", lr.NFeatures, cols, 1)
	}

	predictions := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.Intercept
			for j := 0; j < cols; j++ {
				pred += X.At(i, j) * lr.Coef[j]
			}
			predictions.SetVec(i, pred)
		}
	})

	return predictions, nil
}
