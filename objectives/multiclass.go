package objectives

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// LogLossMulticlass is the cross-entropy of predicted class probabilities.
// It is the default objective for multiclass problems. Class labels index
// the probability matrix columns, so they must be integers in [0, k).
type LogLossMulticlass struct{}

func (LogLossMulticlass) Name() string          { return "Log Loss Multiclass" }
func (LogLossMulticlass) GreaterIsBetter() bool { return false }
func (LogLossMulticlass) ScoreNeedsProba() bool { return true }
func (LogLossMulticlass) Perfect() float64      { return 0 }
func (LogLossMulticlass) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Multiclass
}

func (o LogLossMulticlass) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	if err := validateProba(o.Name(), yPred); err != nil {
		return 0, err
	}

	n, classes := yPred.Dims()
	// LogLoss = -(1/n) * Σ ln(p[i][y[i]])
	var sum float64
	for i := 0; i < n; i++ {
		label := int(yTrue.AtVec(i))
		if float64(label) != yTrue.AtVec(i) || label < 0 || label >= classes {
			return 0, errors.NewValueError(o.Name(), "y_true labels must be integers indexing the probability columns")
		}
		p := errors.ClipValue(yPred.At(i, label), logLossEps, 1-logLossEps)
		sum += math.Log(p)
	}
	return -sum / float64(n), nil
}

// AccuracyMulticlass is the fraction of correctly predicted labels.
type AccuracyMulticlass struct{}

func (AccuracyMulticlass) Name() string          { return "Accuracy Multiclass" }
func (AccuracyMulticlass) GreaterIsBetter() bool { return true }
func (AccuracyMulticlass) ScoreNeedsProba() bool { return false }
func (AccuracyMulticlass) Perfect() float64      { return 1 }
func (AccuracyMulticlass) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Multiclass
}

func (o AccuracyMulticlass) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
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

// F1Macro averages the one-vs-rest F1 score over all classes, weighting
// every class equally regardless of its size.
type F1Macro struct{}

func (F1Macro) Name() string          { return "F1 Macro" }
func (F1Macro) GreaterIsBetter() bool { return true }
func (F1Macro) ScoreNeedsProba() bool { return false }
func (F1Macro) Perfect() float64      { return 1 }
func (F1Macro) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Multiclass
}

func (o F1Macro) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()

	// 真値と予測値に現れるクラスの和集合ごとに one-vs-rest の F1 を計算する
	classSet := make(map[float64]struct{})
	for i := 0; i < n; i++ {
		classSet[yTrue.AtVec(i)] = struct{}{}
		classSet[pred.AtVec(i)] = struct{}{}
	}

	var sum float64
	for class := range classSet {
		var tp, fp, fn int
		for i := 0; i < n; i++ {
			actual := yTrue.AtVec(i) == class
			predicted := pred.AtVec(i) == class
			switch {
			case actual && predicted:
				tp++
			case !actual && predicted:
				fp++
			case actual && !predicted:
				fn++
			}
		}
		denom := 2*tp + fp + fn
		if denom == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "no true or predicted samples for a class", 0))
			continue
		}
		sum += 2 * float64(tp) / float64(denom)
	}
	return sum / float64(len(classSet)), nil
}
