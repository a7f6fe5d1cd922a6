package components

import (
	"bytes"
	"encoding/gob"
	"sort"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/tabular"
)

// numericTable builds a table of Double columns for tests.
func numericTable(t *testing.T, rows, cols int, data []float64) *tabular.Table {
	t.Helper()
	table, err := tabular.NewTable(mat.NewDense(rows, cols, data), nil)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

// targetSeries builds a target series with the default schema.
func targetSeries(values []float64) *tabular.Series {
	return tabular.NewSeries(values, tabular.ColumnSchema{})
}

func TestNewComponent(t *testing.T) {
	for _, name := range Names() {
		component, err := NewComponent(name, nil, 42)
		if err != nil {
			t.Fatalf("NewComponent(%q) failed: %v", name, err)
		}
		if component.Name() != name {
			t.Errorf("NewComponent(%q).Name() = %q", name, component.Name())
		}
	}
}

func TestNewComponentCaseInsensitive(t *testing.T) {
	component, err := NewComponent("  standard scaler ", nil, 0)
	if err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if component.Name() != StandardScalerName {
		t.Errorf("got %q", component.Name())
	}
}

func TestNewComponentUnknownName(t *testing.T) {
	_, err := NewComponent("Gradient Booster", nil, 0)
	if err == nil {
		t.Fatal("expected error for unknown component name")
	}
	if !strings.Contains(err.Error(), "not a registered component name") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestNewComponentParameterValidation(t *testing.T) {
	if _, err := NewComponent(SimpleImputerName, map[string]any{"strategy": "mean"}, 0); err == nil {
		t.Error("unknown parameter key should fail")
	}

	if _, err := NewComponent(SimpleImputerName, map[string]any{"impute_strategy": "mode"}, 0); err == nil {
		t.Error("invalid imputation strategy should fail")
	}

	if _, err := NewComponent(LogisticRegressionName, map[string]any{"max_iter": "lots"}, 0); err == nil {
		t.Error("non-numeric max_iter should fail")
	}

	// float64 spellings of integers are accepted.
	component, err := NewComponent(OneHotEncoderName, map[string]any{"top_n": 3.0}, 0)
	if err != nil {
		t.Fatalf("float64 top_n rejected: %v", err)
	}
	if component.(*OneHotEncoder).TopN != 3 {
		t.Errorf("top_n = %d, want 3", component.(*OneHotEncoder).TopN)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 8 {
		t.Fatalf("expected 8 registered components, got %d: %v", len(names), names)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() should be sorted: %v", names)
	}
}

func TestCloneIsUnfitted(t *testing.T) {
	X := numericTable(t, 4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	clone := scaler.Clone().(*StandardScaler)
	if clone.Fitted {
		t.Error("clone should be unfitted")
	}
	if _, err := clone.Transform(X); err == nil {
		t.Error("unfitted clone should refuse to transform")
	}

	lr := NewLogisticRegressionClassifier(0.5, 200, 1e-3, 7)
	lrClone := lr.Clone().(*LogisticRegressionClassifier)
	if lrClone.C != 0.5 || lrClone.MaxIter != 200 || lrClone.Tol != 1e-3 || lrClone.Seed != 7 {
		t.Errorf("clone lost hyperparameters: %+v", lrClone)
	}
}

// Fitted components must survive gob when referenced through the Component
// interface, since pipelines are shipped to workers that way.
func TestComponentGobRoundTrip(t *testing.T) {
	X := numericTable(t, 6, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
		1.5, 1.0,
		3.0, 2.5,
		2.5, 3.0,
		3.5, 3.5,
	})
	y := targetSeries([]float64{0, 0, 0, 1, 1, 1})

	lr := NewLogisticRegressionClassifier(1.0, 500, 1e-4, 42)
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	want, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	type carrier struct {
		Step Component
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(carrier{Step: lr}); err != nil {
		t.Fatalf("gob encode failed: %v", err)
	}
	var decoded carrier
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("gob decode failed: %v", err)
	}

	restored, ok := decoded.Step.(*LogisticRegressionClassifier)
	if !ok {
		t.Fatalf("decoded component has type %T", decoded.Step)
	}
	if !restored.Fitted {
		t.Fatal("fitted state lost in round trip")
	}

	got, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("decoded Predict failed: %v", err)
	}
	for i := 0; i < want.Len(); i++ {
		if got.AtVec(i) != want.AtVec(i) {
			t.Errorf("row %d: decoded prediction %v != original %v", i, got.AtVec(i), want.AtVec(i))
		}
	}
}
