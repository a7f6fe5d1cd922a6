package objectives

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// R2 is the coefficient of determination. It is the default objective for
// regression problems.
type R2 struct{}

func (R2) Name() string          { return "R2" }
func (R2) GreaterIsBetter() bool { return true }
func (R2) ScoreNeedsProba() bool { return false }
func (R2) Perfect() float64      { return 1 }
func (R2) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Regression
}

func (o R2) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()

	// yTrueの平均を計算
	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := pred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		errors.Warn(errors.NewUndefinedMetricWarning(o.Name(), "no variance in y_true", 0))
		return 0, nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// MSE is the mean squared error.
type MSE struct{}

func (MSE) Name() string          { return "MSE" }
func (MSE) GreaterIsBetter() bool { return false }
func (MSE) ScoreNeedsProba() bool { return false }
func (MSE) Perfect() float64      { return 0 }
func (MSE) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Regression
}

func (o MSE) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - pred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RootMeanSquaredError is the square root of the mean squared error,
// expressed in the target's units.
type RootMeanSquaredError struct{}

func (RootMeanSquaredError) Name() string          { return "Root Mean Squared Error" }
func (RootMeanSquaredError) GreaterIsBetter() bool { return false }
func (RootMeanSquaredError) ScoreNeedsProba() bool { return false }
func (RootMeanSquaredError) Perfect() float64      { return 0 }
func (RootMeanSquaredError) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Regression
}

func (o RootMeanSquaredError) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	mse, err := MSE{}.Score(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error.
type MAE struct{}

func (MAE) Name() string          { return "MAE" }
func (MAE) GreaterIsBetter() bool { return false }
func (MAE) ScoreNeedsProba() bool { return false }
func (MAE) Perfect() float64      { return 0 }
func (MAE) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Regression
}

func (o MAE) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - pred.AtVec(i))
	}
	return sum / float64(n), nil
}

// MAPE is the mean absolute percentage error. Targets containing zero are
// rejected since the percentage error is undefined there.
type MAPE struct{}

func (MAPE) Name() string          { return "Mean Absolute Percentage Error" }
func (MAPE) GreaterIsBetter() bool { return false }
func (MAPE) ScoreNeedsProba() bool { return false }
func (MAPE) Perfect() float64      { return 0 }
func (MAPE) IsDefinedForProblemType(pt problem_types.ProblemType) bool {
	return pt == problem_types.Regression
}

func (o MAPE) Score(yTrue *mat.VecDense, yPred mat.Matrix) (float64, error) {
	if err := validateInputs(o.Name(), yTrue, yPred); err != nil {
		return 0, err
	}
	pred := predictionColumn(yPred, 0)
	n := yTrue.Len()

	// MAPE = (100/n) * Σ|yTrue - yPred| / |yTrue|
	var sum float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		if yTrueVal == 0 {
			return 0, errors.NewValueError(o.Name(), "Mean Absolute Percentage Error cannot be used when targets contain the value 0")
		}
		sum += math.Abs(yTrueVal-pred.AtVec(i)) / math.Abs(yTrueVal)
	}
	return sum / float64(n) * 100, nil
}
