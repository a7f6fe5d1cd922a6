package components

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// BaselineClassifier predicts the most frequent training class for every row
// and reports the observed class frequencies as probabilities. It ignores the
// features entirely and exists to give searches a floor to beat.
type BaselineClassifier struct {
	Strategy string // only "mode" is supported

	// Learned state. Frequencies aligns with Classes.
	Mode        float64
	Classes     []float64
	Frequencies []float64
	Fitted      bool
}

// NewBaselineClassifier creates a Baseline Classifier with the mode strategy.
func NewBaselineClassifier() *BaselineClassifier {
	return &BaselineClassifier{Strategy: "mode"}
}

func buildBaselineClassifier(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(BaselineClassifierName, params, "strategy"); err != nil {
		return nil, err
	}
	strategy, err := stringParam(params, "strategy", "mode")
	if err != nil {
		return nil, err
	}
	if strategy != "mode" {
		return nil, errors.NewValueError(BaselineClassifierName,
			"strategy must be mode, got "+strategy)
	}
	return NewBaselineClassifier(), nil
}

// Name returns the registry name of the component.
func (b *BaselineClassifier) Name() string { return BaselineClassifierName }

// Parameters returns the hyperparameters the classifier was built with.
func (b *BaselineClassifier) Parameters() map[string]any {
	return map[string]any{"strategy": b.Strategy}
}

// Clone returns a fresh unfitted classifier.
func (b *BaselineClassifier) Clone() Component { return NewBaselineClassifier() }

// SupportedProblemTypes reports the problem types the classifier handles.
func (b *BaselineClassifier) SupportedProblemTypes() []problem_types.ProblemType {
	return []problem_types.ProblemType{problem_types.Binary, problem_types.Multiclass}
}

// ClassLabels returns the sorted labels learned during Fit.
func (b *BaselineClassifier) ClassLabels() []float64 { return b.Classes }

// Fit records the class frequencies and the most frequent class. Frequency
// ties resolve to the smallest label.
func (b *BaselineClassifier) Fit(X *tabular.Table, y *tabular.Series) error {
	if y == nil || y.Len() == 0 {
		return errors.NewValueError("BaselineClassifier.Fit", "empty target")
	}

	b.Classes = y.Unique()
	if len(b.Classes) < 2 {
		return errors.NewValueError("BaselineClassifier.Fit",
			"less than 2 classes detected in target")
	}

	counts := make([]int, len(b.Classes))
	for i := 0; i < y.Len(); i++ {
		for k, class := range b.Classes {
			if y.At(i) == class {
				counts[k]++
				break
			}
		}
	}

	b.Frequencies = make([]float64, len(b.Classes))
	best := 0
	for k, n := range counts {
		b.Frequencies[k] = float64(n) / float64(y.Len())
		if n > counts[best] {
			best = k
		}
	}
	b.Mode = b.Classes[best]

	b.Fitted = true
	return nil
}

// Predict returns the mode class for every row.
func (b *BaselineClassifier) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !b.Fitted {
		return nil, errors.NewNotFittedError("BaselineClassifier", "Predict")
	}

	rows, _ := X.Dims()
	predictions := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		predictions.SetVec(i, b.Mode)
	}
	return predictions, nil
}

// PredictProba returns the observed training class frequencies for every row.
func (b *BaselineClassifier) PredictProba(X *tabular.Table) (*mat.Dense, error) {
	if !b.Fitted {
		return nil, errors.NewNotFittedError("BaselineClassifier", "PredictProba")
	}

	rows, _ := X.Dims()
	probas := mat.NewDense(rows, len(b.Classes), nil)
	for i := 0; i < rows; i++ {
		for k, f := range b.Frequencies {
			probas.Set(i, k, f)
		}
	}
	return probas, nil
}
