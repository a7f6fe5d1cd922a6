package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/tabular"
)

func TestStandardScalerZeroMeanUnitVariance(t *testing.T) {
	X := numericTable(t, 4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})

	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	rows, cols := out.Dims()
	for j := 0; j < cols; j++ {
		mean := 0.0
		for i := 0; i < rows; i++ {
			mean += out.At(i, j)
		}
		mean /= float64(rows)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}

		variance := 0.0
		for i := 0; i < rows; i++ {
			variance += out.At(i, j) * out.At(i, j)
		}
		variance /= float64(rows)
		if math.Abs(variance-1.0) > 1e-10 {
			t.Errorf("column %d variance = %v, want 1", j, variance)
		}
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := numericTable(t, 3, 2, []float64{
		5, 1,
		5, 2,
		5, 3,
	})

	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Zero variance keeps scale 1, so the column centers to zeros.
	if scaler.Scale[0] != 1.0 {
		t.Errorf("constant column scale = %v, want 1", scaler.Scale[0])
	}
	for i := 0; i < 3; i++ {
		if out.At(i, 0) != 0.0 {
			t.Errorf("constant column should center to 0, got %v", out.At(i, 0))
		}
	}
}

func TestStandardScalerSkipsNonNumeric(t *testing.T) {
	schema := tabular.NewSchema(
		tabular.NewColumnSchema("amount", tabular.Double, "numeric"),
		tabular.NewColumnSchema("kind", tabular.Categorical, "category"),
	)
	X, err := tabular.NewTable(mat.NewDense(3, 2, []float64{
		10, 0,
		20, 1,
		30, 2,
	}), schema)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Categorical codes pass through untouched.
	for i := 0; i < 3; i++ {
		if out.At(i, 1) != X.At(i, 1) {
			t.Errorf("categorical column changed: %v != %v", out.At(i, 1), X.At(i, 1))
		}
	}
	// Numeric column is standardized.
	if out.At(0, 0) == X.At(0, 0) {
		t.Error("numeric column should be standardized")
	}
}

func TestStandardScalerTransformUsesTrainingStats(t *testing.T) {
	train := numericTable(t, 2, 1, []float64{0, 2})
	holdout := numericTable(t, 1, 1, []float64{4})

	scaler := NewStandardScaler()
	if _, err := scaler.FitTransform(train); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	out, err := scaler.Transform(holdout)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	// mean=1, std=1 → (4-1)/1 = 3
	if out.At(0, 0) != 3.0 {
		t.Errorf("holdout transform = %v, want 3", out.At(0, 0))
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	X := numericTable(t, 2, 1, []float64{1, 2})
	scaler := NewStandardScaler()
	if _, err := scaler.Transform(X); err == nil {
		t.Error("unfitted scaler should refuse to transform")
	}
}
