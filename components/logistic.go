package components

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/core/parallel"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// LogisticRegressionClassifier is an L2-regularized logistic regression
// trained with gradient descent. Binary problems fit a single weight vector;
// multiclass problems fit one weight vector per class (one-vs-rest).
type LogisticRegressionClassifier struct {
	// Hyperparameters
	C       float64 // Inverse regularization strength (1/lambda)
	MaxIter int     // Maximum gradient descent iterations
	Tol     float64 // Gradient infinity-norm stopping tolerance
	Seed    int64

	// Learned state. Coef holds one row per fitted weight vector: a single
	// row for binary problems, one row per class for one-vs-rest.
	Coef      [][]float64
	Intercept []float64
	Classes   []float64
	NFeatures int
	Fitted    bool
}

// NewLogisticRegressionClassifier creates a classifier with the given
// hyperparameters. Non-positive values fall back to the defaults
// (C=1, 100 iterations, tol 1e-4).
func NewLogisticRegressionClassifier(c float64, maxIter int, tol float64, seed int64) *LogisticRegressionClassifier {
	if c <= 0 {
		c = 1.0
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	if tol <= 0 {
		tol = 1e-4
	}
	return &LogisticRegressionClassifier{C: c, MaxIter: maxIter, Tol: tol, Seed: seed}
}

func buildLogisticRegression(params map[string]any, seed int64) (Component, error) {
	if err := checkKeys(LogisticRegressionName, params, "C", "max_iter", "tol"); err != nil {
		return nil, err
	}
	c, err := floatParam(params, "C", 1.0)
	if err != nil {
		return nil, err
	}
	maxIter, err := intParam(params, "max_iter", 100)
	if err != nil {
		return nil, err
	}
	tol, err := floatParam(params, "tol", 1e-4)
	if err != nil {
		return nil, err
	}
	return NewLogisticRegressionClassifier(c, maxIter, tol, seed), nil
}

// Name returns the registry name of the component.
func (lr *LogisticRegressionClassifier) Name() string { return LogisticRegressionName }

// Parameters returns the hyperparameters the classifier was built with.
func (lr *LogisticRegressionClassifier) Parameters() map[string]any {
	return map[string]any{"C": lr.C, "max_iter": lr.MaxIter, "tol": lr.Tol}
}

// Clone returns a fresh unfitted classifier with the same hyperparameters.
func (lr *LogisticRegressionClassifier) Clone() Component {
	return NewLogisticRegressionClassifier(lr.C, lr.MaxIter, lr.Tol, lr.Seed)
}

// SupportedProblemTypes reports the problem types the classifier handles.
func (lr *LogisticRegressionClassifier) SupportedProblemTypes() []problem_types.ProblemType {
	return []problem_types.ProblemType{problem_types.Binary, problem_types.Multiclass}
}

// ClassLabels returns the sorted labels learned during Fit.
func (lr *LogisticRegressionClassifier) ClassLabels() []float64 { return lr.Classes }

// Fit trains the classifier with gradient descent. A ConvergenceWarning is
// emitted when any weight vector exhausts MaxIter without the gradient
// dropping below Tol.
func (lr *LogisticRegressionClassifier) Fit(X *tabular.Table, y *tabular.Series) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("LogisticRegressionClassifier.Fit", "empty feature table")
	}
	if y == nil || y.Len() != rows {
		yLen := 0
		if y != nil {
			yLen = y.Len()
		}
		return errors.NewDimensionError("LogisticRegressionClassifier.Fit", rows, yLen, 0)
	}

	lr.Classes = y.Unique()
	if len(lr.Classes) < 2 {
		return errors.NewValueError("LogisticRegressionClassifier.Fit",
			"less than 2 classes detected in target")
	}
	lr.NFeatures = cols

	nWeights := len(lr.Classes)
	if len(lr.Classes) == 2 {
		nWeights = 1
	}

	// 小さな乱数で重みを初期化（シード固定で再現可能）
	rng := rand.New(rand.NewPCG(uint64(lr.Seed), uint64(lr.Seed)))
	lr.Coef = make([][]float64, nWeights)
	lr.Intercept = make([]float64, nWeights)
	for k := range lr.Coef {
		lr.Coef[k] = make([]float64, cols)
		for j := range lr.Coef[k] {
			lr.Coef[k][j] = rng.NormFloat64() * 0.01
		}
	}

	converged := true
	if len(lr.Classes) == 2 {
		// Binary: positive class is Classes[1].
		y01 := binaryTargets(y, lr.Classes[1])
		if !lr.gradientDescent(X, y01, 0) {
			converged = false
		}
	} else {
		// One-vs-rest: each class against the others.
		for k, class := range lr.Classes {
			y01 := binaryTargets(y, class)
			if !lr.gradientDescent(X, y01, k) {
				converged = false
			}
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegressionClassifier", lr.MaxIter,
			"gradient descent reached max_iter before the gradient dropped below tol"))
	}

	lr.Fitted = true
	return nil
}

// gradientDescent fits one weight vector against 0/1 targets. It reports
// whether the gradient dropped below Tol within MaxIter iterations.
func (lr *LogisticRegressionClassifier) gradientDescent(X *tabular.Table, y01 []float64, k int) bool {
	rows, cols := X.Dims()
	weights := lr.Coef[k]
	intercept := &lr.Intercept[k]
	lambda := 1.0 / lr.C
	baseLearningRate := 1.0

	for iter := 0; iter < lr.MaxIter; iter++ {
		gradWeights := make([]float64, cols)
		gradIntercept := 0.0

		for i := 0; i < rows; i++ {
			z := *intercept
			for j := 0; j < cols; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - y01[i]
			gradIntercept += residual
			for j := 0; j < cols; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/float64(rows) + lambda*weights[j]
		}
		gradIntercept /= float64(rows)

		// Adaptive learning rate
		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))

		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		*intercept -= learningRate * gradIntercept

		// Check convergence
		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.Tol {
			return true
		}
	}

	return false
}

// Predict returns the predicted class label for every row.
func (lr *LogisticRegressionClassifier) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !lr.Fitted {
		return nil, errors.NewNotFittedError("LogisticRegressionClassifier", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegressionClassifier.Predict", lr.NFeatures, cols, 1)
	}

	predictions := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if len(lr.Classes) == 2 {
				if sigmoid(lr.decision(X, i, 0)) >= 0.5 {
					predictions.SetVec(i, lr.Classes[1])
				} else {
					predictions.SetVec(i, lr.Classes[0])
				}
				continue
			}

			best := 0
			bestScore := math.Inf(-1)
			for k := range lr.Classes {
				if score := lr.decision(X, i, k); score > bestScore {
					bestScore = score
					best = k
				}
			}
			predictions.SetVec(i, lr.Classes[best])
		}
	})

	return predictions, nil
}

// PredictProba returns per-class probability estimates: sigmoid for binary,
// softmax over the one-vs-rest scores for multiclass.
func (lr *LogisticRegressionClassifier) PredictProba(X *tabular.Table) (*mat.Dense, error) {
	if !lr.Fitted {
		return nil, errors.NewNotFittedError("LogisticRegressionClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegressionClassifier.PredictProba", lr.NFeatures, cols, 1)
	}

	probas := mat.NewDense(rows, len(lr.Classes), nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if len(lr.Classes) == 2 {
				p := sigmoid(lr.decision(X, i, 0))
				probas.Set(i, 0, 1.0-p)
				probas.Set(i, 1, p)
				continue
			}

			// Softmax with max subtraction for numerical stability.
			scores := make([]float64, len(lr.Classes))
			maxScore := math.Inf(-1)
			for k := range lr.Classes {
				scores[k] = lr.decision(X, i, k)
				if scores[k] > maxScore {
					maxScore = scores[k]
				}
			}
			sum := 0.0
			for k := range scores {
				scores[k] = math.Exp(scores[k] - maxScore)
				sum += scores[k]
			}
			for k := range scores {
				probas.Set(i, k, scores[k]/sum)
			}
		}
	})

	return probas, nil
}

// decision computes the linear score of row i against weight vector k.
func (lr *LogisticRegressionClassifier) decision(X *tabular.Table, i, k int) float64 {
	z := lr.Intercept[k]
	for j := 0; j < lr.NFeatures; j++ {
		z += X.At(i, j) * lr.Coef[k][j]
	}
	return z
}

// binaryTargets converts labels to 0/1 against the given positive class.
func binaryTargets(y *tabular.Series, positive float64) []float64 {
	y01 := make([]float64, y.Len())
	for i := range y01 {
		if y.At(i) == positive {
			y01[i] = 1.0
		}
	}
	return y01
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
