package tabular

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewTable(t *testing.T) {
	t.Run("infers schema when nil", func(t *testing.T) {
		data := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
		table, err := NewTable(data, nil)
		require.NoError(t, err)

		assert.Equal(t, 3, table.Schema().NumColumns())
		assert.Equal(t, []string{"feature_0", "feature_1", "feature_2"}, table.Schema().ColumnNames())
		assert.Equal(t, Double, table.Schema().Columns[0].LogicalType)
	})

	t.Run("rejects schema width mismatch", func(t *testing.T) {
		data := mat.NewDense(2, 3, nil)
		schema := NewSchema(
			NewColumnSchema("a", Double),
			NewColumnSchema("b", Double),
		)
		_, err := NewTable(data, schema)
		assert.Error(t, err)
	})

	t.Run("rejects nil data", func(t *testing.T) {
		_, err := NewTable(nil, nil)
		assert.Error(t, err)
	})
}

func TestTableFromRows(t *testing.T) {
	table, err := NewTableFromRows([][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}, nil)
	require.NoError(t, err)

	rows, cols := table.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 20.0, table.At(1, 1))

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := NewTableFromRows([][]float64{{1, 2}, {3}}, nil)
		assert.Error(t, err)
	})
}

func TestTableColumns(t *testing.T) {
	schema := NewSchema(
		NewColumnSchema("age", Integer, "numeric"),
		NewColumnSchema("color", Categorical, "category"),
	)
	table, err := NewTableFromRows([][]float64{
		{25, 0},
		{31, 2},
		{47, 1},
	}, schema)
	require.NoError(t, err)

	t.Run("by index", func(t *testing.T) {
		assert.Equal(t, []float64{0, 2, 1}, table.Column(1))
	})

	t.Run("by name", func(t *testing.T) {
		col, err := table.ColumnByName("age")
		require.NoError(t, err)
		assert.Equal(t, []float64{25, 31, 47}, col)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := table.ColumnByName("height")
		assert.Error(t, err)
	})

	t.Run("columns of type", func(t *testing.T) {
		assert.Equal(t, []int{1}, table.Schema().ColumnsOfType(Categorical))
	})

	t.Run("semantic tags", func(t *testing.T) {
		assert.True(t, table.Schema().Columns[0].HasTag("numeric"))
		assert.False(t, table.Schema().Columns[0].HasTag("category"))
	})
}

func TestTableSubsetRows(t *testing.T) {
	table, err := NewTableFromRows([][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	}, nil)
	require.NoError(t, err)

	sub := table.SubsetRows([]int{3, 1})
	rows, cols := sub.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 4.0, sub.At(0, 0))
	assert.Equal(t, 20.0, sub.At(1, 1))
	assert.True(t, sub.Schema().Equal(table.Schema()))

	// Mutating a subset must not touch the source.
	sub.Data().Set(0, 0, -1)
	assert.Equal(t, 4.0, table.At(3, 0))
}

func TestTableClone(t *testing.T) {
	table, err := NewTableFromRows([][]float64{{1, 2}, {3, 4}}, nil)
	require.NoError(t, err)

	clone := table.Clone()
	clone.Data().Set(0, 0, 99)
	clone.Schema().Columns[0].Name = "mutated"

	assert.Equal(t, 1.0, table.At(0, 0))
	assert.Equal(t, "feature_0", table.Schema().Columns[0].Name)
}

func TestTableGobRoundTrip(t *testing.T) {
	schema := NewSchema(
		NewColumnSchema("age", Integer, "numeric"),
		NewColumnSchema("income", Double),
		NewColumnSchema("color", Categorical, "category"),
	)
	table, err := NewTableFromRows([][]float64{
		{25, 50000.5, 0},
		{31, math.NaN(), 2},
		{47, 82000.25, 1},
	}, schema)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(table))

	decoded := &Table{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(decoded))

	assert.True(t, table.EqualApprox(decoded, 0))
	assert.True(t, math.IsNaN(decoded.At(1, 1)))
	assert.Equal(t, "color", decoded.Schema().Columns[2].Name)
	assert.Equal(t, Categorical, decoded.Schema().Columns[2].LogicalType)
	assert.True(t, decoded.Schema().Columns[0].HasTag("numeric"))
}

func TestSeries(t *testing.T) {
	s := NewSeries([]float64{1, 0, 1, 1, 0}, NewColumnSchema("label", Categorical))

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 0.0, s.At(1))
	assert.Equal(t, "label", s.Schema().Name)

	t.Run("default name and type", func(t *testing.T) {
		d := NewSeries([]float64{1.5}, ColumnSchema{})
		assert.Equal(t, "target", d.Schema().Name)
		assert.Equal(t, Double, d.Schema().LogicalType)
	})

	t.Run("subset", func(t *testing.T) {
		sub := s.SubsetRows([]int{4, 0})
		assert.Equal(t, []float64{0, 1}, sub.Values())
		assert.Equal(t, "label", sub.Schema().Name)
	})

	t.Run("unique skips NaN", func(t *testing.T) {
		u := NewSeries([]float64{2, 0, math.NaN(), 1, 2, 0}, ColumnSchema{})
		assert.Equal(t, []float64{0, 1, 2}, u.Unique())
	})

	t.Run("clone is independent", func(t *testing.T) {
		clone := s.Clone()
		clone.Vector().SetVec(0, 42)
		assert.Equal(t, 1.0, s.At(0))
	})
}

func TestSeriesGobRoundTrip(t *testing.T) {
	s := NewSeries([]float64{1, math.NaN(), 0}, NewColumnSchema("label", Categorical, "target"))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(s))

	decoded := &Series{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(decoded))

	assert.True(t, s.EqualApprox(decoded, 0))
	assert.Equal(t, Categorical, decoded.Schema().LogicalType)
	assert.True(t, decoded.Schema().HasTag("target"))
}

func TestEqualApprox(t *testing.T) {
	a, err := NewTableFromRows([][]float64{{1, math.NaN()}}, nil)
	require.NoError(t, err)
	b, err := NewTableFromRows([][]float64{{1 + 1e-12, math.NaN()}}, nil)
	require.NoError(t, err)

	assert.True(t, a.EqualApprox(b, 1e-10))
	assert.False(t, a.EqualApprox(b, 0))

	c, err := NewTableFromRows([][]float64{{1, 2}}, nil)
	require.NoError(t, err)
	assert.False(t, a.EqualApprox(c, 1e-10))
}

func TestParseLogicalType(t *testing.T) {
	for _, lt := range []LogicalType{Double, Integer, Categorical, Boolean, Datetime, NaturalLanguage, Unknown} {
		parsed, err := ParseLogicalType(lt.String())
		require.NoError(t, err)
		assert.Equal(t, lt, parsed)
	}

	_, err := ParseLogicalType("complex128")
	assert.Error(t, err)
}

func TestWithSchema(t *testing.T) {
	table, err := NewTableFromRows([][]float64{{1, 0}}, nil)
	require.NoError(t, err)

	typed, err := table.WithSchema(NewSchema(
		NewColumnSchema("age", Integer),
		NewColumnSchema("is_member", Boolean),
	))
	require.NoError(t, err)
	assert.Equal(t, Boolean, typed.Schema().Columns[1].LogicalType)

	// Width mismatch is rejected.
	_, err = table.WithSchema(NewSchema(NewColumnSchema("only", Double)))
	assert.Error(t, err)
}
