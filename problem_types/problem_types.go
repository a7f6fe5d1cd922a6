// Package problem_types defines the supported machine learning problem types
// and helpers to resolve and detect them.
package problem_types

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// ProblemType identifies the kind of supervised learning problem a pipeline
// or objective targets.
type ProblemType int

const (
	// Binary is two-class classification.
	Binary ProblemType = iota
	// Multiclass is classification with three or more classes.
	Multiclass
	// Regression predicts a continuous target.
	Regression
)

// String returns the canonical lowercase name.
func (p ProblemType) String() string {
	switch p {
	case Binary:
		return "binary"
	case Multiclass:
		return "multiclass"
	case Regression:
		return "regression"
	default:
		return "unknown"
	}
}

// All returns every supported problem type.
func All() []ProblemType {
	return []ProblemType{Binary, Multiclass, Regression}
}

// Handle resolves a problem type from its name. Accepted spellings follow
// the canonical names with case and surrounding space ignored.
func Handle(name string) (ProblemType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binary":
		return Binary, nil
	case "multiclass", "multi class", "multi-class":
		return Multiclass, nil
	case "regression":
		return Regression, nil
	default:
		return Binary, errors.NewValueError("Handle", fmt.Sprintf("'%s' is not a valid problem type", name))
	}
}

// IsClassification reports whether the problem type predicts classes.
func (p ProblemType) IsClassification() bool {
	return p == Binary || p == Multiclass
}

// IsBinary reports whether the problem type is binary classification.
func (p ProblemType) IsBinary() bool {
	return p == Binary
}

// IsMulticlass reports whether the problem type is multiclass classification.
func (p ProblemType) IsMulticlass() bool {
	return p == Multiclass
}

// IsRegression reports whether the problem type predicts a continuous target.
func (p ProblemType) IsRegression() bool {
	return p == Regression
}

// classThreshold is the number of distinct numeric values above which a
// target is considered continuous rather than multiclass.
const classThreshold = 10

// Detect infers the problem type from a target series.
//
// Two distinct values mean binary. A target declared Categorical is
// classification regardless of cardinality. Otherwise integer-valued targets
// with few distinct values are multiclass and everything else is regression.
// Fewer than two distinct values is an error since no model can be scored
// against a constant target.
func Detect(y *tabular.Series) (ProblemType, error) {
	if y == nil {
		return Binary, errors.NewValueError("Detect", "target series must not be nil")
	}
	unique := y.Unique()
	if len(unique) < 2 {
		return Binary, errors.NewValueError("Detect", "less than 2 classes detected in target")
	}
	if len(unique) == 2 {
		return Binary, nil
	}
	if y.Schema().LogicalType == tabular.Categorical || y.Schema().LogicalType == tabular.Boolean {
		return Multiclass, nil
	}
	if len(unique) <= classThreshold && allIntegral(unique) {
		return Multiclass, nil
	}
	return Regression, nil
}

func allIntegral(values []float64) bool {
	for _, v := range values {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}
