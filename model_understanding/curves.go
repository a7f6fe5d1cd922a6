// Package model_understanding computes diagnostic curves and charts for
// fitted classifiers.
//
// The curve functions operate on class-index targets (0 or 1 for binary) and
// positive-class probability estimates, mirroring the inputs the scoring path
// hands to probability objectives. Graph* variants render the curves as PNG
// charts through gonum/plot.
package model_understanding

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// ROCData holds one receiver operating characteristic curve. Point i is the
// rate pair obtained by predicting positive whenever the score reaches
// Thresholds[i]; the leading point is the all-negative classifier at
// threshold +Inf.
type ROCData struct {
	Thresholds []float64
	FPR        []float64
	TPR        []float64
	AUC        float64
}

// PrecisionRecallData holds one precision-recall curve. The trailing
// precision/recall pair is the conventional (1, 0) endpoint and has no
// threshold, so Thresholds is one element shorter.
type PrecisionRecallData struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
	AUC        float64
}

// ROCCurve computes the ROC curve of positive-class scores against binary
// targets. One curve point is emitted per distinct score, in descending
// score order. When only one class is present the undefined rate axis is
// NaN and an UndefinedMetricWarning is raised.
func ROCCurve(yTrue *mat.VecDense, proba mat.Matrix) (*ROCData, error) {
	scores, nPos, nNeg, err := binaryScores("ROCCurve", yTrue, proba)
	if err != nil {
		return nil, err
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("ROCCurve", "only one class present in y_true", math.NaN()))
	}

	order := scoreOrder(scores)
	n := len(order)

	data := &ROCData{
		Thresholds: []float64{math.Inf(1)},
		FPR:        []float64{0},
		TPR:        []float64{0},
	}

	var tp, fp int
	for i := 0; i < n; {
		threshold := scores[order[i]]
		// 同点スコアは1つの閾値としてまとめる
		for i < n && scores[order[i]] == threshold {
			if yTrue.AtVec(order[i]) == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		data.Thresholds = append(data.Thresholds, threshold)
		data.FPR = append(data.FPR, rate(fp, nNeg))
		data.TPR = append(data.TPR, rate(tp, nPos))
	}

	// AUC = Σ ΔFPR · (TPRᵢ + TPRᵢ₋₁)/2
	for i := 1; i < len(data.FPR); i++ {
		data.AUC += (data.FPR[i] - data.FPR[i-1]) * (data.TPR[i] + data.TPR[i-1]) / 2
	}
	return data, nil
}

// PrecisionRecallCurve computes the precision-recall curve of positive-class
// scores against binary targets. Thresholds ascend, recall descends, and the
// curve stops at the lowest threshold reaching full recall.
func PrecisionRecallCurve(yTrue *mat.VecDense, proba mat.Matrix) (*PrecisionRecallData, error) {
	scores, nPos, _, err := binaryScores("PrecisionRecallCurve", yTrue, proba)
	if err != nil {
		return nil, err
	}
	if nPos == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("PrecisionRecallCurve", "no positive class present in y_true", math.NaN()))
	}

	order := scoreOrder(scores)
	n := len(order)

	// 閾値降順に累積しながら各閾値の precision/recall を求める
	var thresholds, precision, recall []float64
	var tp, fp int
	for i := 0; i < n; {
		threshold := scores[order[i]]
		for i < n && scores[order[i]] == threshold {
			if yTrue.AtVec(order[i]) == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		thresholds = append(thresholds, threshold)
		precision = append(precision, rate(tp, tp+fp))
		recall = append(recall, rate(tp, nPos))
		if tp == nPos {
			// 以降の閾値は recall を増やさない
			break
		}
	}

	data := &PrecisionRecallData{}
	for i := len(thresholds) - 1; i >= 0; i-- {
		data.Thresholds = append(data.Thresholds, thresholds[i])
		data.Precision = append(data.Precision, precision[i])
		data.Recall = append(data.Recall, recall[i])
	}
	data.Precision = append(data.Precision, 1)
	data.Recall = append(data.Recall, 0)

	// AUC = Σ ΔRecall · (Pᵢ + Pᵢ₋₁)/2 over recall ascending
	for i := len(data.Recall) - 1; i > 0; i-- {
		data.AUC += (data.Recall[i-1] - data.Recall[i]) * (data.Precision[i] + data.Precision[i-1]) / 2
	}
	return data, nil
}

// binaryScores validates curve inputs and extracts positive-class scores
// together with the class counts.
func binaryScores(op string, yTrue *mat.VecDense, proba mat.Matrix) ([]float64, int, int, error) {
	if yTrue == nil || proba == nil {
		return nil, 0, 0, errors.NewValueError(op, "y_true and probabilities must not be nil")
	}
	n := yTrue.Len()
	if n == 0 {
		return nil, 0, 0, errors.NewValueError(op, "empty vector")
	}
	rows, cols := proba.Dims()
	if rows != n {
		return nil, 0, 0, errors.NewDimensionError(op, n, rows, 0)
	}

	col := 0
	if cols >= 2 {
		col = 1
	}
	scores := make([]float64, n)
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		v := yTrue.AtVec(i)
		switch v {
		case 1:
			nPos++
		case 0:
			nNeg++
		default:
			return nil, 0, 0, errors.NewValueError(op, "y_true must contain only 0 and 1")
		}
		s := proba.At(i, col)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, 0, 0, errors.NewValueError(op, "y_predicted contains NaN or infinity")
		}
		scores[i] = s
	}
	return scores, nPos, nNeg, nil
}

// scoreOrder returns sample indices sorted by score descending.
func scoreOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

func rate(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}
