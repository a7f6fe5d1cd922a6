package components

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/core/parallel"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Imputation strategies accepted by the Simple Imputer.
const (
	ImputeMean         = "mean"
	ImputeMedian       = "median"
	ImputeMostFrequent = "most_frequent"
)

// SimpleImputer replaces missing values (NaN) with a per-column statistic
// learned during Fit. Columns with no observed values fill with zero.
type SimpleImputer struct {
	Strategy string

	// Learned state.
	FillValues []float64
	NFeatures  int
	Fitted     bool
}

// NewSimpleImputer creates a Simple Imputer with the given strategy: one of
// "mean", "median" or "most_frequent".
func NewSimpleImputer(strategy string) (*SimpleImputer, error) {
	switch strategy {
	case ImputeMean, ImputeMedian, ImputeMostFrequent:
		return &SimpleImputer{Strategy: strategy}, nil
	}
	return nil, errors.NewValueError("SimpleImputer",
		"impute_strategy must be one of mean, median, most_frequent, got "+strategy)
}

func buildSimpleImputer(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(SimpleImputerName, params, "impute_strategy"); err != nil {
		return nil, err
	}
	strategy, err := stringParam(params, "impute_strategy", ImputeMean)
	if err != nil {
		return nil, err
	}
	return NewSimpleImputer(strategy)
}

// Name returns the registry name of the component.
func (s *SimpleImputer) Name() string { return SimpleImputerName }

// Parameters returns the hyperparameters the imputer was built with.
func (s *SimpleImputer) Parameters() map[string]any {
	return map[string]any{"impute_strategy": s.Strategy}
}

// Clone returns a fresh unfitted imputer with the same strategy.
func (s *SimpleImputer) Clone() Component {
	return &SimpleImputer{Strategy: s.Strategy}
}

// Fit learns one fill value per column from the observed (non-NaN) entries.
func (s *SimpleImputer) Fit(X *tabular.Table) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("SimpleImputer.Fit", "empty feature table")
	}

	s.NFeatures = cols
	s.FillValues = make([]float64, cols)

	for j := 0; j < cols; j++ {
		observed := make([]float64, 0, rows)
		for i := 0; i < rows; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		s.FillValues[j] = fillValue(s.Strategy, observed)
	}

	s.Fitted = true
	return nil
}

// Transform replaces every NaN with the fill value learned for its column.
// The schema is preserved.
func (s *SimpleImputer) Transform(X *tabular.Table) (*tabular.Table, error) {
	if !s.Fitted {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}

	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", s.NFeatures, cols, 1)
	}

	data := mat.NewDense(rows, cols, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				v := X.At(i, j)
				if math.IsNaN(v) {
					v = s.FillValues[j]
				}
				data.Set(i, j, v)
			}
		}
	})

	return tabular.NewTable(data, X.Schema().Clone())
}

// FitTransform fits the imputer and transforms the same table.
func (s *SimpleImputer) FitTransform(X *tabular.Table) (*tabular.Table, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// fillValue computes the imputation statistic for one column's observed values.
func fillValue(strategy string, observed []float64) float64 {
	if len(observed) == 0 {
		return 0.0
	}

	switch strategy {
	case ImputeMedian:
		sorted := make([]float64, len(observed))
		copy(sorted, observed)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2.0
		}
		return sorted[mid]

	case ImputeMostFrequent:
		counts := make(map[float64]int)
		for _, v := range observed {
			counts[v]++
		}
		// 最頻値が同数の場合は小さい値を選ぶ
		best := observed[0]
		bestCount := 0
		for v, n := range counts {
			if n > bestCount || (n == bestCount && v < best) {
				best = v
				bestCount = n
			}
		}
		return best

	default: // ImputeMean
		sum := 0.0
		for _, v := range observed {
			sum += v
		}
		return sum / float64(len(observed))
	}
}
