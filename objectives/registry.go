package objectives

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/problem_types"
)

// registry maps lowercase objective names to shared stateless instances.
var registry = map[string]Objective{}

func register(obj Objective) {
	registry[strings.ToLower(obj.Name())] = obj
}

func init() {
	register(LogLossBinary{})
	register(AUC{})
	register(F1{})
	register(AccuracyBinary{})
	register(BalancedAccuracyBinary{})
	register(Precision{})
	register(Recall{})

	register(LogLossMulticlass{})
	register(AccuracyMulticlass{})
	register(F1Macro{})

	register(R2{})
	register(MSE{})
	register(RootMeanSquaredError{})
	register(MAE{})
	register(MAPE{})
}

// Get resolves an objective by name. Matching ignores case.
func Get(name string) (Objective, error) {
	obj, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewObjectiveNotFoundError(name)
	}
	return obj, nil
}

// GetAll resolves a list of objective names, failing on the first unknown one.
func GetAll(names []string) ([]Objective, error) {
	out := make([]Objective, len(names))
	for i, name := range names {
		obj, err := Get(name)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}

// Names returns every registered objective name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, obj := range registry {
		names = append(names, obj.Name())
	}
	sort.Strings(names)
	return names
}

// ForProblemType returns the names of all objectives defined for the given
// problem type, sorted.
func ForProblemType(pt problem_types.ProblemType) []string {
	var names []string
	for _, obj := range registry {
		if obj.IsDefinedForProblemType(pt) {
			names = append(names, obj.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Default returns the default objective for a problem type: log loss for
// classification and R2 for regression.
func Default(pt problem_types.ProblemType) Objective {
	switch pt {
	case problem_types.Binary:
		return LogLossBinary{}
	case problem_types.Multiclass:
		return LogLossMulticlass{}
	default:
		return R2{}
	}
}

// ValidateObjectives resolves every name and checks each objective is defined
// for the given problem type. The first unknown or incompatible name fails.
func ValidateObjectives(names []string, pt problem_types.ProblemType) error {
	for _, name := range names {
		obj, err := Get(name)
		if err != nil {
			return err
		}
		if !obj.IsDefinedForProblemType(pt) {
			return errors.NewValueError("ValidateObjectives",
				obj.Name()+" is not defined for problem type "+pt.String())
		}
	}
	return nil
}
