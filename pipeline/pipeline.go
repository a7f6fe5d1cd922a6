// Package pipeline assembles components into an ordered graph that is fit,
// scored and shipped between engine workers as one unit.
//
// A pipeline owns its components exclusively: engines fit clones, never the
// caller's instance, so two jobs can hold the same search candidate without
// sharing mutable state. All state a fitted pipeline carries lives in
// exported fields, which keeps a pipeline fully gob-encodable.
package pipeline

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/components"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Pipeline is an ordered component graph: zero or more transformers followed
// by exactly one estimator.
type Pipeline struct {
	Name           string
	ProblemType    problem_types.ProblemType
	ComponentGraph []components.Component
	Parameters     map[string]map[string]any
	RandomSeed     int64

	// Fitted state. Threshold, when set on a binary pipeline, is applied to
	// the positive-class probability during Predict.
	Fitted    bool
	Threshold *float64
}

// Option configures a pipeline under construction.
type Option func(*Pipeline)

// WithName overrides the generated pipeline name.
func WithName(name string) Option {
	return func(p *Pipeline) { p.Name = name }
}

// WithParameters supplies per-component hyperparameters, keyed by component
// name then by snake_case parameter name.
func WithParameters(params map[string]map[string]any) Option {
	return func(p *Pipeline) { p.Parameters = params }
}

// WithRandomSeed sets the seed handed to every component.
func WithRandomSeed(seed int64) Option {
	return func(p *Pipeline) { p.RandomSeed = seed }
}

// New builds a pipeline from component registry names. The last name must
// resolve to an estimator supporting the problem type; every other name must
// resolve to a transformer.
func New(problemType problem_types.ProblemType, componentNames []string, opts ...Option) (*Pipeline, error) {
	if len(componentNames) == 0 {
		return nil, errors.NewValueError("pipeline.New", "at least one component is required")
	}

	p := &Pipeline{ProblemType: problemType}
	for _, opt := range opts {
		opt(p)
	}

	p.ComponentGraph = make([]components.Component, len(componentNames))
	for i, name := range componentNames {
		component, err := components.NewComponent(name, p.Parameters[name], p.RandomSeed)
		if err != nil {
			return nil, err
		}
		p.ComponentGraph[i] = component
	}

	for i, component := range p.ComponentGraph[:len(p.ComponentGraph)-1] {
		if _, ok := component.(components.Transformer); !ok {
			return nil, errors.NewValueError("pipeline.New",
				fmt.Sprintf("component %d (%s) must be a transformer", i, component.Name()))
		}
	}

	estimator, ok := p.ComponentGraph[len(p.ComponentGraph)-1].(components.Estimator)
	if !ok {
		return nil, errors.NewValueError("pipeline.New",
			"the final component must be an estimator, got "+p.ComponentGraph[len(p.ComponentGraph)-1].Name())
	}
	supported := false
	for _, pt := range estimator.SupportedProblemTypes() {
		if pt == problemType {
			supported = true
			break
		}
	}
	if !supported {
		return nil, errors.NewValueError("pipeline.New",
			fmt.Sprintf("%s does not support problem type %s", estimator.Name(), problemType))
	}

	if p.Name == "" {
		p.Name = generateName(p.ComponentGraph)
	}
	return p, nil
}

// generateName derives a readable name from the component graph, for example
// "Logistic Regression Classifier w/ Simple Imputer + Standard Scaler".
func generateName(graph []components.Component) string {
	estimator := graph[len(graph)-1].Name()
	if len(graph) == 1 {
		return estimator
	}
	transformers := make([]string, 0, len(graph)-1)
	for _, component := range graph[:len(graph)-1] {
		transformers = append(transformers, component.Name())
	}
	return estimator + " w/ " + strings.Join(transformers, " + ")
}

// Estimator returns the final component of the graph.
func (p *Pipeline) Estimator() components.Estimator {
	return p.ComponentGraph[len(p.ComponentGraph)-1].(components.Estimator)
}

// ComponentNames returns the graph's component names in order.
func (p *Pipeline) ComponentNames() []string {
	names := make([]string, len(p.ComponentGraph))
	for i, component := range p.ComponentGraph {
		names[i] = component.Name()
	}
	return names
}

// Fit runs the fit-transform chain and fits the estimator on the result.
func (p *Pipeline) Fit(X *tabular.Table, y *tabular.Series) error {
	if X == nil || y == nil {
		return errors.NewValueError("Pipeline.Fit", "features and target must not be nil")
	}
	rows, _ := X.Dims()
	if y.Len() != rows {
		return errors.NewDimensionError("Pipeline.Fit", rows, y.Len(), 0)
	}

	if p.ProblemType == problem_types.Binary {
		if classes := y.Unique(); len(classes) != 2 {
			return errors.NewValueError("Pipeline.Fit",
				fmt.Sprintf("binary pipelines require a target with 2 unique classes, found %d", len(classes)))
		}
	}

	features := X
	for _, component := range p.ComponentGraph[:len(p.ComponentGraph)-1] {
		transformed, err := component.(components.Transformer).FitTransform(features)
		if err != nil {
			return errors.Wrapf(err, "fitting %s", component.Name())
		}
		features = transformed
	}

	if err := p.Estimator().Fit(features, y); err != nil {
		return errors.Wrapf(err, "fitting %s", p.Estimator().Name())
	}

	p.Fitted = true
	return nil
}

// transform runs the fitted transformer chain over X.
func (p *Pipeline) transform(X *tabular.Table) (*tabular.Table, error) {
	features := X
	for _, component := range p.ComponentGraph[:len(p.ComponentGraph)-1] {
		transformed, err := component.(components.Transformer).Transform(features)
		if err != nil {
			return nil, errors.Wrapf(err, "transforming with %s", component.Name())
		}
		features = transformed
	}
	return features, nil
}

// Predict transforms X and predicts with the estimator. Binary pipelines with
// a tuned Threshold label rows by comparing the positive-class probability
// against it; otherwise the estimator's own decision rule applies.
func (p *Pipeline) Predict(X *tabular.Table) (*mat.VecDense, error) {
	if !p.Fitted {
		return nil, errors.NewNotFittedError(p.Name, "Predict")
	}
	features, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	return p.predictFeatures(features)
}

// predictFeatures predicts on an already transformed feature table.
func (p *Pipeline) predictFeatures(features *tabular.Table) (*mat.VecDense, error) {
	if p.ProblemType == problem_types.Binary && p.Threshold != nil {
		classifier, okClassifier := p.Estimator().(components.Classifier)
		proba, okProba := p.Estimator().(components.ProbaEstimator)
		if okClassifier && okProba {
			probas, err := proba.PredictProba(features)
			if err != nil {
				return nil, err
			}
			labels := classifier.ClassLabels()
			rows, _ := probas.Dims()
			predictions := mat.NewVecDense(rows, nil)
			for i := 0; i < rows; i++ {
				if probas.At(i, 1) > *p.Threshold {
					predictions.SetVec(i, labels[1])
				} else {
					predictions.SetVec(i, labels[0])
				}
			}
			return predictions, nil
		}
	}
	return p.Estimator().Predict(features)
}

// PredictProba transforms X and returns the estimator's per-class
// probability estimates.
func (p *Pipeline) PredictProba(X *tabular.Table) (*mat.Dense, error) {
	if !p.Fitted {
		return nil, errors.NewNotFittedError(p.Name, "PredictProba")
	}
	proba, ok := p.Estimator().(components.ProbaEstimator)
	if !ok {
		return nil, errors.NewValueError("Pipeline.PredictProba",
			p.Estimator().Name()+" does not support probability estimates")
	}
	features, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	return proba.PredictProba(features)
}

// Clone returns an unfitted pipeline with the same graph, parameters, name
// and seed. Learned state and the decision threshold are not carried over.
func (p *Pipeline) Clone() *Pipeline {
	graph := make([]components.Component, len(p.ComponentGraph))
	for i, component := range p.ComponentGraph {
		graph[i] = component.Clone()
	}

	var params map[string]map[string]any
	if p.Parameters != nil {
		params = make(map[string]map[string]any, len(p.Parameters))
		for name, kv := range p.Parameters {
			inner := make(map[string]any, len(kv))
			for k, v := range kv {
				inner[k] = v
			}
			params[name] = inner
		}
	}

	return &Pipeline{
		Name:           p.Name,
		ProblemType:    p.ProblemType,
		ComponentGraph: graph,
		Parameters:     params,
		RandomSeed:     p.RandomSeed,
	}
}

// Equal reports whether two pipelines have the same name, problem type,
// component graph, parameters and fitted state.
func (p *Pipeline) Equal(other *Pipeline) bool {
	if other == nil {
		return false
	}
	if p.Name != other.Name || p.ProblemType != other.ProblemType || p.Fitted != other.Fitted {
		return false
	}
	if len(p.ComponentGraph) != len(other.ComponentGraph) {
		return false
	}
	for i := range p.ComponentGraph {
		if p.ComponentGraph[i].Name() != other.ComponentGraph[i].Name() {
			return false
		}
	}
	return equalParameters(p.Parameters, other.Parameters)
}

func equalParameters(a, b map[string]map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for name, kv := range a {
		otherKV, ok := b[name]
		if !ok || len(kv) != len(otherKV) {
			return false
		}
		for k, v := range kv {
			if otherKV[k] != v {
				return false
			}
		}
	}
	return true
}
