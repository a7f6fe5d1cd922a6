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

// SVMClassifier is a linear support vector machine trained by subgradient
// descent on the hinge loss. Probability estimates come from a Platt-style
// sigmoid fitted to the decision values after training. Multiclass problems
// train one machine per class (one-vs-rest).
type SVMClassifier struct {
	// Hyperparameters
	C       float64 // Inverse regularization strength (1/lambda)
	MaxIter int     // Subgradient descent iterations
	Seed    int64

	// Learned state. PlattA and PlattB hold the per-machine sigmoid
	// calibration parameters.
	Coef      [][]float64
	Intercept []float64
	PlattA    []float64
	PlattB    []float64
	Classes   []float64
	NFeatures int
	Fitted    bool
}

// NewSVMClassifier creates an SVM Classifier. Non-positive values fall back
// to the defaults (C=1, 100 iterations).
func NewSVMClassifier(c float64, maxIter int, seed int64) *SVMClassifier {
	if c <= 0 {
		c = 1.0
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	return &SVMClassifier{C: c, MaxIter: maxIter, Seed: seed}
}

func buildSVMClassifier(params map[string]any, seed int64) (Component, error) {
	if err := checkKeys(SVMClassifierName, params, "C", "max_iter"); err != nil {
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
	return NewSVMClassifier(c, maxIter, seed), nil
}

// Name returns the registry name of the component.
func (s *SVMClassifier) Name() string { return SVMClassifierName }

// Parameters returns the hyperparameters the classifier was built with.
func (s *SVMClassifier) Parameters() map[string]any {
	return map[string]any{"C": s.C, "max_iter": s.MaxIter}
}

// Clone returns a fresh unfitted classifier with the same hyperparameters.
func (s *SVMClassifier) Clone() Component {
	return NewSVMClassifier(s.C, s.MaxIter, s.Seed)
}

// SupportedProblemTypes reports the problem types the classifier handles.
func (s *SVMClassifier) SupportedProblemTypes() []problem_types.ProblemType {
	return []problem_types.ProblemType{problem_types.Binary, problem_types.Multiclass}
}

// ClassLabels returns the sorted labels learned during Fit.
func (s *SVMClassifier) ClassLabels() []float64 { return s.Classes }

// Fit trains the machine(s) and calibrates the probability sigmoid(s).
func (s *SVMClassifier) Fit(X *tabular.Table, y *tabular.Series) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("SVMClassifier.Fit", "empty feature table")
	}
	if y == nil || y.Len() != rows {
		yLen := 0
		if y != nil {
			yLen = y.Len()
		}
		return errors.NewDimensionError("SVMClassifier.Fit", rows, yLen, 0)
	}

	s.Classes = y.Unique()
	if len(s.Classes) < 2 {
		return errors.NewValueError("SVMClassifier.Fit",
			"less than 2 classes detected in target")
	}
	s.NFeatures = cols

	nMachines := len(s.Classes)
	if len(s.Classes) == 2 {
		nMachines = 1
	}

	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))
	s.Coef = make([][]float64, nMachines)
	s.Intercept = make([]float64, nMachines)
	s.PlattA = make([]float64, nMachines)
	s.PlattB = make([]float64, nMachines)
	for k := range s.Coef {
		s.Coef[k] = make([]float64, cols)
		for j := range s.Coef[k] {
			s.Coef[k][j] = rng.NormFloat64() * 0.01
		}
	}

	if len(s.Classes) == 2 {
		s.fitMachine(X, y, s.Classes[1], 0)
	} else {
		for k, class := range s.Classes {
			s.fitMachine(X, y, class, k)
		}
	}

	s.Fitted = true
	return nil
}

// fitMachine trains one machine against the given positive class, then fits
// its Platt sigmoid on the resulting decision values.
func (s *SVMClassifier) fitMachine(X *tabular.Table, y *tabular.Series, positive float64, k int) {
	rows, cols := X.Dims()

	// ±1ラベルに変換
	ypm := make([]float64, rows)
	for i := range ypm {
		if y.At(i) == positive {
			ypm[i] = 1.0
		} else {
			ypm[i] = -1.0
		}
	}

	weights := s.Coef[k]
	intercept := &s.Intercept[k]
	lambda := 1.0 / s.C
	baseLearningRate := 1.0

	for iter := 0; iter < s.MaxIter; iter++ {
		gradWeights := make([]float64, cols)
		gradIntercept := 0.0

		// Hinge subgradient: only margin violations contribute.
		for i := 0; i < rows; i++ {
			z := *intercept
			for j := 0; j < cols; j++ {
				z += X.At(i, j) * weights[j]
			}
			if ypm[i]*z < 1.0 {
				gradIntercept -= ypm[i]
				for j := 0; j < cols; j++ {
					gradWeights[j] -= ypm[i] * X.At(i, j)
				}
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
	}

	// Decision values feed the probability calibration.
	decision := make([]float64, rows)
	for i := 0; i < rows; i++ {
		z := *intercept
		for j := 0; j < cols; j++ {
			z += X.At(i, j) * weights[j]
		}
		decision[i] = z
	}
	s.PlattA[k], s.PlattB[k] = fitPlatt(decision, ypm)
}

// fitPlatt fits P(y=1|f) = 1/(1+exp(a*f+b)) by gradient descent on the log
// loss against Platt's smoothed targets.
func fitPlatt(decision, ypm []float64) (a, b float64) {
	n := len(decision)
	nPlus := 0
	for _, v := range ypm {
		if v > 0 {
			nPlus++
		}
	}
	nMinus := n - nPlus

	// スムージングされたターゲット（過学習を避けるPlattの処方）
	tPlus := (float64(nPlus) + 1.0) / (float64(nPlus) + 2.0)
	tMinus := 1.0 / (float64(nMinus) + 2.0)
	targets := make([]float64, n)
	for i, v := range ypm {
		if v > 0 {
			targets[i] = tPlus
		} else {
			targets[i] = tMinus
		}
	}

	a, b = -1.0, 0.0
	const learningRate = 0.1
	for iter := 0; iter < 100; iter++ {
		gradA, gradB := 0.0, 0.0
		for i := 0; i < n; i++ {
			p := 1.0 / (1.0 + math.Exp(a*decision[i]+b))
			gradA += (targets[i] - p) * decision[i]
			gradB += targets[i] - p
		}
		a -= learningRate * gradA / float64(n)
		b -= learningRate * gradB / float64(n)
	}
	return a, b
}

// plattProb applies machine k's calibration sigmoid to a decision value.
func (s *SVMClassifier) plattProb(f float64, k int) float64 {
	return 1.0 / (1.0 + math.Exp(s.PlattA[k]*f+s.PlattB[k]))
}

// Predict returns the predicted class label for every row.
func (s *SVMClassifier) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !s.Fitted {
		return nil, errors.NewNotFittedError("SVMClassifier", "Predict")
	}

	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, errors.NewDimensionError("SVMClassifier.Predict", s.NFeatures, cols, 1)
	}

	predictions := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if len(s.Classes) == 2 {
				if s.decision(X, i, 0) >= 0 {
					predictions.SetVec(i, s.Classes[1])
				} else {
					predictions.SetVec(i, s.Classes[0])
				}
				continue
			}

			best := 0
			bestScore := math.Inf(-1)
			for k := range s.Classes {
				if score := s.decision(X, i, k); score > bestScore {
					bestScore = score
					best = k
				}
			}
			predictions.SetVec(i, s.Classes[best])
		}
	})

	return predictions, nil
}

// PredictProba returns calibrated probability estimates. Multiclass rows are
// the normalized per-machine sigmoid outputs.
func (s *SVMClassifier) PredictProba(X *tabular.Table) (*mat.Dense, error) {
	if !s.Fitted {
		return nil, errors.NewNotFittedError("SVMClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != s.NFeatures {
		return nil, errors.NewDimensionError("SVMClassifier.PredictProba", s.NFeatures, cols, 1)
	}

	probas := mat.NewDense(rows, len(s.Classes), nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if len(s.Classes) == 2 {
				p := s.plattProb(s.decision(X, i, 0), 0)
				probas.Set(i, 0, 1.0-p)
				probas.Set(i, 1, p)
				continue
			}

			scores := make([]float64, len(s.Classes))
			sum := 0.0
			for k := range s.Classes {
				scores[k] = s.plattProb(s.decision(X, i, k), k)
				sum += scores[k]
			}
			for k := range scores {
				if sum > 0 {
					probas.Set(i, k, scores[k]/sum)
				} else {
					probas.Set(i, k, 1.0/float64(len(s.Classes)))
				}
			}
		}
	})

	return probas, nil
}

// decision computes the linear score of row i against machine k.
func (s *SVMClassifier) decision(X *tabular.Table, i, k int) float64 {
	z := s.Intercept[k]
	for j := 0; j < s.NFeatures; j++ {
		z += X.At(i, j) * s.Coef[k][j]
	}
	return z
}
