package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/components"
	"github.com/YuminosukeSato/evalgo/objectives"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Scores maps objective names to scores. Objectives that failed to score
// hold NaN.
type Scores map[string]float64

// Score evaluates the pipeline on holdout data against the named objectives.
// One objective failing to score marks its entry NaN without aborting the
// others; resolution failures and prediction failures abort the call.
//
// Classification targets and predictions are scored in class-index space
// (0..k-1 following the estimator's sorted labels), matching the layout of
// probability columns.
func (p *Pipeline) Score(X *tabular.Table, y *tabular.Series, objectiveNames []string) (Scores, error) {
	if !p.Fitted {
		return nil, errors.NewNotFittedError(p.Name, "Score")
	}
	objs, err := objectives.GetAll(objectiveNames)
	if err != nil {
		return nil, err
	}

	features, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	predictions, err := p.predictFeatures(features)
	if err != nil {
		return nil, err
	}

	yTrue := y.Vector()
	if classifier, ok := p.Estimator().(components.Classifier); ok {
		yTrue, err = classIndices(y.Vector(), classifier.ClassLabels())
		if err != nil {
			return nil, err
		}
		predictions, err = classIndices(predictions, classifier.ClassLabels())
		if err != nil {
			return nil, err
		}
	}

	// Probabilities are computed at most once, only when some objective
	// needs them. A proba failure downgrades to NaN for those objectives.
	var proba *mat.Dense
	var probaErr error
	probaComputed := false

	scores := make(Scores, len(objs))
	for _, obj := range objs {
		var yPred mat.Matrix = predictions
		if obj.ScoreNeedsProba() {
			if !probaComputed {
				probaComputed = true
				if pe, ok := p.Estimator().(components.ProbaEstimator); ok {
					proba, probaErr = pe.PredictProba(features)
				} else {
					probaErr = errors.NewValueError("Pipeline.Score",
						p.Estimator().Name()+" does not support probability estimates")
				}
			}
			if probaErr != nil {
				scores[obj.Name()] = math.NaN()
				continue
			}
			yPred = proba
		}

		score, err := obj.Score(yTrue, yPred)
		if err != nil {
			scores[obj.Name()] = math.NaN()
			continue
		}
		scores[obj.Name()] = score
	}

	return scores, nil
}

// OptimizeThreshold tunes the binary decision threshold on holdout data and
// stores the result in Threshold. The objective must be label-based and
// defined for binary classification.
func (p *Pipeline) OptimizeThreshold(X *tabular.Table, y *tabular.Series, objectiveName string) error {
	if !p.Fitted {
		return errors.NewNotFittedError(p.Name, "OptimizeThreshold")
	}
	if p.ProblemType != problem_types.Binary {
		return errors.NewValueError("Pipeline.OptimizeThreshold",
			"thresholds can only be tuned on binary classification pipelines")
	}
	obj, err := objectives.Get(objectiveName)
	if err != nil {
		return err
	}
	classifier, ok := p.Estimator().(components.Classifier)
	if !ok {
		return errors.NewValueError("Pipeline.OptimizeThreshold",
			p.Estimator().Name()+" does not expose class labels")
	}

	proba, err := p.PredictProba(X)
	if err != nil {
		return err
	}
	yIdx, err := classIndices(y.Vector(), classifier.ClassLabels())
	if err != nil {
		return err
	}

	threshold, err := objectives.OptimizeThreshold(obj, yIdx, proba)
	if err != nil {
		return err
	}
	p.Threshold = &threshold
	return nil
}

// classIndices remaps labels into index space (0..k-1 over the sorted class
// labels), the layout probability columns follow.
func classIndices(v *mat.VecDense, labels []float64) (*mat.VecDense, error) {
	index := make(map[float64]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	out := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		idx, ok := index[v.AtVec(i)]
		if !ok {
			return nil, errors.NewValueError("Pipeline.Score",
				fmt.Sprintf("target contains label %v not seen during training", v.AtVec(i)))
		}
		out.SetVec(i, float64(idx))
	}
	return out, nil
}
