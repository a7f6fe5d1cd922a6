// Package objectives provides the evaluation objectives used to score and
// rank pipelines.
//
// Objectives are referenced by name throughout EvalGo so that search
// configurations stay serializable; Get resolves names against the registry
// in registry.go. Probability-based objectives receive an n×k class
// probability matrix, label-based objectives an n×1 prediction column.
package objectives

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// Objective scores predictions against true targets.
type Objective interface {
	// Name returns the display name used in registries, scores and rankings.
	Name() string
	// GreaterIsBetter reports whether larger scores indicate better models.
	GreaterIsBetter() bool
	// ScoreNeedsProba reports whether Score expects class probabilities
	// rather than predicted labels.
	ScoreNeedsProba() bool
	// Perfect returns the score of a perfect model.
	Perfect() float64
	// IsDefinedForProblemType reports whether the objective applies to the
	// given problem type.
	IsDefinedForProblemType(pt problem_types.ProblemType) bool
	// Score computes the objective value. yPred is an n×1 label column or an
	// n×k probability matrix depending on ScoreNeedsProba.
	Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error)
}

// RankingValue converts a score into a sort key where larger is always
// better, negating objectives that minimize.
func RankingValue(obj Objective, score float64) float64 {
	if obj.GreaterIsBetter() {
		return score
	}
	return -score
}

// validateInputs は長さと有限性を検証する
func validateInputs(op string, yTrue *mat.VecDense, yPred mat.Matrix) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	rows, _ := yPred.Dims()
	if rows != n {
		return errors.NewDimensionError(op, n, rows, 0)
	}
	for i := 0; i < n; i++ {
		if !isFinite(yTrue.AtVec(i)) {
			return errors.NewValueError(op, "y_true contains NaN or infinity")
		}
	}
	rows, cols := yPred.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !isFinite(yPred.At(i, j)) {
				return errors.NewValueError(op, "y_predicted contains NaN or infinity")
			}
		}
	}
	return nil
}

// validateProba は確率行列が[0,1]に収まることを検証する
func validateProba(op string, proba mat.Matrix) error {
	rows, cols := proba.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := proba.At(i, j)
			if v < 0 || v > 1 {
				return errors.NewValueError(op, "y_predicted contains probability estimates not within [0, 1]")
			}
		}
	}
	return nil
}

// predictionColumn は n×1 または n×k 行列から列ベクトルを取り出す
func predictionColumn(yPred mat.Matrix, col int) *mat.VecDense {
	rows, _ := yPred.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, yPred.At(i, col))
	}
	return out
}

// positiveColumn returns the positive-class probability column. For an n×1
// matrix that is column 0; for an n×2 proba matrix it is column 1.
func positiveColumn(proba mat.Matrix) *mat.VecDense {
	_, cols := proba.Dims()
	if cols >= 2 {
		return predictionColumn(proba, 1)
	}
	return predictionColumn(proba, 0)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// binaryCounts は2値分類の混同行列の要素を数える
// 正例は1、負例は0として扱う
func binaryCounts(yTrue, yPred *mat.VecDense) (tp, fp, tn, fn int) {
	for i := 0; i < yTrue.Len(); i++ {
		actual := yTrue.AtVec(i) == 1
		predicted := yPred.AtVec(i) == 1
		switch {
		case actual && predicted:
			tp++
		case !actual && predicted:
			fp++
		case !actual && !predicted:
			tn++
		default:
			fn++
		}
	}
	return tp, fp, tn, fn
}
