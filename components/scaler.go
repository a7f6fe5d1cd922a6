package components

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/core/parallel"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// StandardScaler standardizes numeric columns to zero mean and unit variance.
// Non-numeric columns pass through unchanged. Columns whose standard
// deviation is below 1e-8 keep a scale of 1 to avoid division by zero.
type StandardScaler struct {
	// Learned state.
	Mean      []float64
	Scale     []float64
	NFeatures int
	Fitted    bool
}

// NewStandardScaler creates a Standard Scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

func buildStandardScaler(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(StandardScalerName, params); err != nil {
		return nil, err
	}
	return NewStandardScaler(), nil
}

// Name returns the registry name of the component.
func (s *StandardScaler) Name() string { return StandardScalerName }

// Parameters returns the hyperparameters the scaler was built with.
func (s *StandardScaler) Parameters() map[string]any { return map[string]any{} }

// Clone returns a fresh unfitted scaler.
func (s *StandardScaler) Clone() Component { return NewStandardScaler() }

// Fit computes the per-column mean and standard deviation of the numeric
// columns. Non-numeric columns record an identity transform.
func (s *StandardScaler) Fit(X *tabular.Table) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("StandardScaler.Fit", "empty feature table")
	}

	s.NFeatures = cols
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)

	schema := X.Schema()
	for j := 0; j < cols; j++ {
		if !schema.Columns[j].LogicalType.IsNumeric() {
			s.Mean[j] = 0.0
			s.Scale[j] = 1.0
			continue
		}

		// 平均を計算
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += X.At(i, j)
		}
		s.Mean[j] = sum / float64(rows)

		// 標準偏差を計算
		sumSquares := 0.0
		for i := 0; i < rows; i++ {
			diff := X.At(i, j) - s.Mean[j]
			sumSquares += diff * diff
		}
		variance := sumSquares / float64(rows)
		s.Scale[j] = math.Sqrt(variance)

		// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
		if math.Abs(s.Scale[j]) < 1e-8 {
			s.Scale[j] = 1.0
		}
	}

	s.Fitted = true
	return nil
}

// Transform standardizes the table using the learned statistics.
// The schema is preserved.
func (s *StandardScaler) Transform(X *tabular.Table) (*tabular.Table, error) {
	if !s.Fitted {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, cols, 1)
	}

	data := mat.NewDense(rows, cols, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				data.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
			}
		}
	})

	return tabular.NewTable(data, X.Schema().Clone())
}

// FitTransform fits the scaler and transforms the same table.
func (s *StandardScaler) FitTransform(X *tabular.Table) (*tabular.Table, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
