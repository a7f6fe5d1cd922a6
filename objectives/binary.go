package objectives

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// logLossEps は対数損失の確率クリップ値
const logLossEps = 1e-15

// LogLossBinary is the cross-entropy of predicted positive-class
// probabilities. It is the default objective for binary problems.
type LogLossBinary struct{}

func (LogLossBinary) Name() string          { return "Log Loss Binary" }
func (LogLossBinary) GreaterIsBetter() bool { return false }
func (LogLossBinary) ScoreNeedsProba() bool { return true }
func (LogLossBinary) Perfect() float64      { return 0 }
func (LogLossBinary) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o LogLossBinary) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateProba(o.Name(), yPred); err != nil {
		return 0, err
	}
	proba := positiveColumn(yPred)

	// LogLoss = -(1/n) * Σ[y*ln(p) + (1-y)*ln(1-p)]
	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		p := errors.ClipValue(proba.AtVec(i), logLossEps, 1-logLossEps)
		if yTrue.AtVec(i) == 1 {
			sum += math.Log(p)
		} else {
			sum += math.Log(1 - p)
		}
	}
	return -sum / float64(n), nil
}

// AUC is the area under the ROC curve, computed from the rank statistic of
// positive-class probabilities.
type AUC struct{}

func (AUC) Name() string          { return "AUC" }
func (AUC) GreaterIsBetter() bool { return true }
func (AUC) ScoreNeedsProba() bool { return true }
func (AUC) Perfect() float64      { return 1 }
func (AUC) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o AUC) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	proba := positiveColumn(yPred)

	n := yTrue.Len()
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "only one class present in y_true", 0.5))
		return 0.5, nil
	}

	// スコア昇順の平均順位から Mann-Whitney U 統計量を計算する
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return proba.AtVec(idx[a]) < proba.AtVec(idx[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && proba.AtVec(idx[j+1]) == proba.AtVec(idx[i]) {
			j++
		}
		// 同順位は平均順位を割り当てる
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSum += ranks[i]
		}
	}

	// AUC = (Σranks⁺ - n⁺(n⁺+1)/2) / (n⁺ * n⁻)
	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// F1 is the harmonic mean of precision and recall for the positive class.
type F1 struct{}

func (F1) Name() string          { return "F1" }
func (F1) GreaterIsBetter() bool { return true }
func (F1) ScoreNeedsProba() bool { return false }
func (F1) Perfect() float64      { return 1 }
func (F1) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o F1) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	tp, fp, _, fn := binaryCounts(yTrue, predictionColumn(yPred, 0))

	// F1 = 2TP / (2TP + FP + FN)
	denom := 2*tp + fp + fn
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "no true or predicted samples for the positive class", 0))
		return 0, nil
	}
	return 2 * float64(tp) / float64(denom), nil
}

// AccuracyBinary is the fraction of correctly predicted labels.
type AccuracyBinary struct{}

func (AccuracyBinary) Name() string          { return "Accuracy Binary" }
func (AccuracyBinary) GreaterIsBetter() bool { return true }
func (AccuracyBinary) ScoreNeedsProba() bool { return false }
func (AccuracyBinary) Perfect() float64      { return 1 }
func (AccuracyBinary) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o AccuracyBinary) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == pred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// BalancedAccuracyBinary averages recall over both classes, compensating for
// class imbalance.
type BalancedAccuracyBinary struct{}

func (BalancedAccuracyBinary) Name() string          { return "Balanced Accuracy Binary" }
func (BalancedAccuracyBinary) GreaterIsBetter() bool { return true }
func (BalancedAccuracyBinary) ScoreNeedsProba() bool { return false }
func (BalancedAccuracyBinary) Perfect() float64      { return 1 }
func (BalancedAccuracyBinary) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o BalancedAccuracyBinary) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	tp, fp, tn, fn := binaryCounts(yTrue, predictionColumn(yPred, 0))

	if tp+fn == 0 || tn+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "only one class present in y_true", 0))
		return 0, nil
	}

	// BalancedAccuracy = (TPR + TNR) / 2
	tpr := float64(tp) / float64(tp+fn)
	tnr := float64(tn) / float64(tn+fp)
	return (tpr + tnr) / 2, nil
}

// Precision is the fraction of positive predictions that are correct.
type Precision struct{}

func (Precision) Name() string          { return "Precision" }
func (Precision) GreaterIsBetter() bool { return true }
func (Precision) ScoreNeedsProba() bool { return false }
func (Precision) Perfect() float64      { return 1 }
func (Precision) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o Precision) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	tp, fp, _, _ := binaryCounts(yTrue, predictionColumn(yPred, 0))

	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "no predicted samples for the positive class", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fp), nil
}

// Recall is the fraction of actual positives that are predicted positive.
type Recall struct{}

func (Recall) Name() string          { return "Recall" }
func (Recall) GreaterIsBetter() bool { return true }
func (Recall) ScoreNeedsProba() bool { return false }
func (Recall) Perfect() float64      { return 1 }
func (Recall) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Binary
}

func (o Recall) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	tp, _, _, fn := binaryCounts(yTrue, predictionColumn(yPred, 0))

	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "no true samples for the positive class", 0))
		return 0, nil
	}
	return float64(tp) / float64(tp+fn), nil
}

// CanOptimizeThreshold reports whether tuning a decision threshold can move
// the objective. Probability-based binary objectives are invariant to the
// threshold, so only label-based binary objectives qualify.
func CanOptimizeThreshold(obj Objective) bool {
	return obj.IsDefinedForProblemType(problem_types.Binary) && !obj.ScoreNeedsProba()
}

// thresholdGridSteps は閾値探索の分割数
const thresholdGridSteps = 100

// OptimizeThreshold searches the probability threshold that optimizes a
// label-based binary objective on the given positive-class probabilities.
func OptimizeThreshold(obj Objective, yTrue *mat.VecDense, proba mat.Matrix) (float64, error) {
	if !CanOptimizeThreshold(obj) {
		return 0, errors.NewValueError("OptimizeThreshold", "objective "+obj.Name()+" cannot be used to optimize a decision threshold")
	}
	if err := validateProba("OptimizeThreshold", proba); err != nil {
		return 0, err
	}
	positive := positiveColumn(proba)

	n := positive.Len()
	bestThreshold := 0.5
	bestRank := math.Inf(-1)
	labels := mat.NewVecDense(n, nil)

	for step := 0; step <= thresholdGridSteps; step++ {
		threshold := float64(step) / thresholdGridSteps
		for i := 0; i < n; i++ {
			if positive.AtVec(i) > threshold {
				labels.SetVec(i, 1)
			} else {
				labels.SetVec(i, 0)
			}
		}
		score, err := obj.Score(yTrue, labels)
		if err != nil {
			return 0, err
		}
		if rank := RankingValue(obj, score); rank > bestRank {
			bestRank = rank
			bestThreshold = threshold
		}
	}
	return bestThreshold, nil
}
