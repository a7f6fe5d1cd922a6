package model_understanding

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// NormalizeMethod selects how confusion matrix counts are normalized.
type NormalizeMethod string

const (
	// NormalizeNone keeps raw counts.
	NormalizeNone NormalizeMethod = "none"
	// NormalizeTrue divides each row by the number of samples with that
	// true label.
	NormalizeTrue NormalizeMethod = "true"
	// NormalizePred divides each column by the number of samples predicted
	// with that label.
	NormalizePred NormalizeMethod = "pred"
	// NormalizeAll divides every cell by the total sample count.
	NormalizeAll NormalizeMethod = "all"
)

// ConfusionMatrixData is a confusion matrix over the sorted union of labels
// seen in the targets and the predictions. Matrix rows follow the true
// label, columns the predicted label, both in Labels order.
type ConfusionMatrixData struct {
	Labels []float64
	Matrix *mat.Dense
}

// ConfusionMatrix tabulates predictions against true labels. Normalizing an
// empty row or column yields NaN cells.
func ConfusionMatrix(yTrue, yPred *mat.VecDense, normalize NormalizeMethod) (*ConfusionMatrixData, error) {
	const op = "ConfusionMatrix"
	if yTrue == nil || yPred == nil {
		return nil, errors.NewValueError(op, "y_true and y_predicted must not be nil")
	}
	if yTrue.Len() == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != yTrue.Len() {
		return nil, errors.NewDimensionError(op, yTrue.Len(), yPred.Len(), 0)
	}
	switch normalize {
	case NormalizeNone, NormalizeTrue, NormalizePred, NormalizeAll:
	default:
		return nil, errors.NewValueError(op, fmt.Sprintf("normalize method must be one of none, true, pred, all, got %q", string(normalize)))
	}

	n := yTrue.Len()
	index := make(map[float64]int)
	var labels []float64
	for i := 0; i < n; i++ {
		for _, v := range []float64{yTrue.AtVec(i), yPred.AtVec(i)} {
			if math.IsNaN(v) {
				return nil, errors.NewValueError(op, "labels must not contain NaN")
			}
			if _, ok := index[v]; !ok {
				index[v] = 0
				labels = append(labels, v)
			}
		}
	}
	sort.Float64s(labels)
	for i, v := range labels {
		index[v] = i
	}

	k := len(labels)
	counts := mat.NewDense(k, k, nil)
	for i := 0; i < n; i++ {
		row := index[yTrue.AtVec(i)]
		col := index[yPred.AtVec(i)]
		counts.Set(row, col, counts.At(row, col)+1)
	}

	switch normalize {
	case NormalizeTrue:
		for i := 0; i < k; i++ {
			var sum float64
			for j := 0; j < k; j++ {
				sum += counts.At(i, j)
			}
			for j := 0; j < k; j++ {
				counts.Set(i, j, divide(counts.At(i, j), sum))
			}
		}
	case NormalizePred:
		for j := 0; j < k; j++ {
			var sum float64
			for i := 0; i < k; i++ {
				sum += counts.At(i, j)
			}
			for i := 0; i < k; i++ {
				counts.Set(i, j, divide(counts.At(i, j), sum))
			}
		}
	case NormalizeAll:
		total := float64(n)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				counts.Set(i, j, counts.At(i, j)/total)
			}
		}
	}

	return &ConfusionMatrixData{Labels: labels, Matrix: counts}, nil
}

func divide(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
