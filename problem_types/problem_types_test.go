package problem_types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/evalgo/tabular"
)

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProblemType
		wantErr bool
	}{
		{"binary", "binary", Binary, false},
		{"binary upper", "BINARY", Binary, false},
		{"binary padded", "  binary ", Binary, false},
		{"multiclass", "multiclass", Multiclass, false},
		{"multiclass hyphen", "multi-class", Multiclass, false},
		{"regression", "regression", Regression, false},
		{"invalid", "ranking", Binary, true},
		{"empty", "", Binary, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Handle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, Binary.IsBinary())
	assert.True(t, Binary.IsClassification())
	assert.False(t, Binary.IsRegression())

	assert.True(t, Multiclass.IsMulticlass())
	assert.True(t, Multiclass.IsClassification())
	assert.False(t, Multiclass.IsBinary())

	assert.True(t, Regression.IsRegression())
	assert.False(t, Regression.IsClassification())
}

func TestString(t *testing.T) {
	assert.Equal(t, "binary", Binary.String())
	assert.Equal(t, "multiclass", Multiclass.String())
	assert.Equal(t, "regression", Regression.String())
	assert.Equal(t, "unknown", ProblemType(99).String())
}

func TestAll(t *testing.T) {
	assert.Equal(t, []ProblemType{Binary, Multiclass, Regression}, All())
}

func TestDetect(t *testing.T) {
	t.Run("two classes is binary", func(t *testing.T) {
		y := tabular.NewSeries([]float64{0, 1, 1, 0, 1}, tabular.ColumnSchema{})
		got, err := Detect(y)
		require.NoError(t, err)
		assert.Equal(t, Binary, got)
	})

	t.Run("categorical target is multiclass", func(t *testing.T) {
		y := tabular.NewSeries([]float64{0, 1, 2, 3, 4}, tabular.NewColumnSchema("label", tabular.Categorical))
		got, err := Detect(y)
		require.NoError(t, err)
		assert.Equal(t, Multiclass, got)
	})

	t.Run("few integer values is multiclass", func(t *testing.T) {
		y := tabular.NewSeries([]float64{0, 1, 2, 0, 1, 2, 2}, tabular.ColumnSchema{})
		got, err := Detect(y)
		require.NoError(t, err)
		assert.Equal(t, Multiclass, got)
	})

	t.Run("continuous values is regression", func(t *testing.T) {
		y := tabular.NewSeries([]float64{1.5, 2.7, 3.14, 0.2, 9.8}, tabular.ColumnSchema{})
		got, err := Detect(y)
		require.NoError(t, err)
		assert.Equal(t, Regression, got)
	})

	t.Run("many integer values is regression", func(t *testing.T) {
		values := make([]float64, 50)
		for i := range values {
			values[i] = float64(i)
		}
		y := tabular.NewSeries(values, tabular.ColumnSchema{})
		got, err := Detect(y)
		require.NoError(t, err)
		assert.Equal(t, Regression, got)
	})

	t.Run("constant target is an error", func(t *testing.T) {
		y := tabular.NewSeries([]float64{1, 1, 1}, tabular.ColumnSchema{})
		_, err := Detect(y)
		assert.Error(t, err)
	})

	t.Run("nil target is an error", func(t *testing.T) {
		_, err := Detect(nil)
		assert.Error(t, err)
	})
}
