package tabular

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// Table is a dense feature matrix with per-column typing information.
// Rows are samples and columns are features. Missing values are NaN.
type Table struct {
	data   *mat.Dense
	schema *Schema
}

// NewTable couples a matrix with a schema. A nil schema is inferred as
// all-Double with generated names. The schema width must match the matrix.
func NewTable(data *mat.Dense, schema *Schema) (*Table, error) {
	if data == nil {
		return nil, errors.NewValueError("NewTable", "data matrix must not be nil")
	}
	_, cols := data.Dims()
	if schema == nil {
		schema = InferSchema(cols)
	}
	if schema.NumColumns() != cols {
		return nil, errors.NewDimensionError("NewTable", schema.NumColumns(), cols, 1)
	}
	return &Table{data: data, schema: schema}, nil
}

// NewTableFromRows builds a table from row slices, mainly for tests.
func NewTableFromRows(rows [][]float64, schema *Schema) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.NewValueError("NewTableFromRows", "at least one row is required")
	}
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return nil, errors.NewDimensionError("NewTableFromRows", cols, len(row), 1)
		}
		flat = append(flat, row...)
	}
	return NewTable(mat.NewDense(len(rows), cols, flat), schema)
}

// Dims returns the number of rows and columns.
func (t *Table) Dims() (rows, cols int) {
	return t.data.Dims()
}

// NumRows returns the number of samples.
func (t *Table) NumRows() int {
	r, _ := t.data.Dims()
	return r
}

// NumColumns returns the number of features.
func (t *Table) NumColumns() int {
	_, c := t.data.Dims()
	return c
}

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.data.At(i, j)
}

// Data returns the backing matrix. Mutating it mutates the table.
func (t *Table) Data() *mat.Dense {
	return t.data
}

// Schema returns the table's schema.
func (t *Table) Schema() *Schema {
	return t.schema
}

// WithSchema returns a table sharing this table's data under a new schema.
// Passing nil re-infers a default schema.
func (t *Table) WithSchema(schema *Schema) (*Table, error) {
	return NewTable(t.data, schema)
}

// Column returns a copy of column j's values.
func (t *Table) Column(j int) []float64 {
	rows, _ := t.data.Dims()
	out := make([]float64, rows)
	mat.Col(out, j, t.data)
	return out
}

// ColumnByName returns a copy of the named column's values.
func (t *Table) ColumnByName(name string) ([]float64, error) {
	j := t.schema.IndexOf(name)
	if j < 0 {
		return nil, errors.NewValueError("ColumnByName", fmt.Sprintf("column '%s' not found", name))
	}
	return t.Column(j), nil
}

// SubsetRows returns a new table holding the given rows, in order.
// The schema is shared; the data is copied.
func (t *Table) SubsetRows(indices []int) *Table {
	_, cols := t.data.Dims()
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		out.SetRow(i, t.data.RawRowView(idx))
	}
	return &Table{data: out, schema: t.schema}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	data := mat.DenseCopyOf(t.data)
	return &Table{data: data, schema: t.schema.Clone()}
}

// EqualApprox reports whether two tables have equal schemas and data equal
// within tol. NaN entries compare equal to NaN, matching the missing-value
// convention.
func (t *Table) EqualApprox(other *Table, tol float64) bool {
	if other == nil {
		return false
	}
	if !t.schema.Equal(other.schema) {
		return false
	}
	r1, c1 := t.data.Dims()
	r2, c2 := other.data.Dims()
	if r1 != r2 || c1 != c2 {
		return false
	}
	for i := 0; i < r1; i++ {
		for j := 0; j < c1; j++ {
			if !nanEqual(t.data.At(i, j), other.data.At(i, j), tol) {
				return false
			}
		}
	}
	return true
}

type tableWire struct {
	Schema *Schema
	Raw    []byte
}

// GobEncode implements gob.GobEncoder.
func (t *Table) GobEncode() ([]byte, error) {
	raw, err := t.data.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "tabular: encode table data")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tableWire{Schema: t.schema, Raw: raw}); err != nil {
		return nil, errors.Wrap(err, "tabular: encode table")
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Table) GobDecode(p []byte) error {
	var wire tableWire
	if err := gob.NewDecoder(bytes.NewReader(p)).Decode(&wire); err != nil {
		return errors.Wrap(err, "tabular: decode table")
	}
	var data mat.Dense
	if err := data.UnmarshalBinary(wire.Raw); err != nil {
		return errors.Wrap(err, "tabular: decode table data")
	}
	t.data = &data
	t.schema = wire.Schema
	return nil
}

// Series is a single typed column, typically the target.
type Series struct {
	data   *mat.VecDense
	schema ColumnSchema
}

// NewSeries builds a series from values and a column schema.
// An empty schema name defaults to "target".
func NewSeries(values []float64, schema ColumnSchema) *Series {
	if schema.Name == "" {
		schema.Name = "target"
	}
	if schema.LogicalType == Unknown {
		schema.LogicalType = Double
	}
	return &Series{data: mat.NewVecDense(len(values), slices.Clone(values)), schema: schema}
}

// NewSeriesFromVec wraps an existing vector without copying.
func NewSeriesFromVec(vec *mat.VecDense, schema ColumnSchema) *Series {
	if schema.Name == "" {
		schema.Name = "target"
	}
	if schema.LogicalType == Unknown {
		schema.LogicalType = Double
	}
	return &Series{data: vec, schema: schema}
}

// Len returns the number of values.
func (s *Series) Len() int {
	return s.data.Len()
}

// At returns the value at index i.
func (s *Series) At(i int) float64 {
	return s.data.AtVec(i)
}

// Vector returns the backing vector. Mutating it mutates the series.
func (s *Series) Vector() *mat.VecDense {
	return s.data
}

// Values returns a copy of the values.
func (s *Series) Values() []float64 {
	out := make([]float64, s.data.Len())
	copy(out, s.data.RawVector().Data)
	return out
}

// Schema returns the column schema.
func (s *Series) Schema() ColumnSchema {
	return s.schema
}

// WithSchema returns a series sharing this series' data under a new schema.
func (s *Series) WithSchema(schema ColumnSchema) *Series {
	return NewSeriesFromVec(s.data, schema)
}

// SubsetRows returns a new series holding the given rows, in order.
func (s *Series) SubsetRows(indices []int) *Series {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = s.data.AtVec(idx)
	}
	return &Series{data: mat.NewVecDense(len(values), values), schema: s.schema}
}

// Unique returns the sorted distinct non-NaN values.
// For classification targets these are the class labels.
func (s *Series) Unique() []float64 {
	seen := make(map[float64]struct{})
	for i := 0; i < s.data.Len(); i++ {
		v := s.data.AtVec(i)
		if math.IsNaN(v) {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() *Series {
	data := mat.NewVecDense(s.data.Len(), nil)
	data.CopyVec(s.data)
	return &Series{data: data, schema: s.schema.Clone()}
}

// EqualApprox reports whether two series have equal schemas and values equal
// within tol, treating NaN as equal to NaN.
func (s *Series) EqualApprox(other *Series, tol float64) bool {
	if other == nil {
		return false
	}
	if !s.schema.Equal(other.schema) {
		return false
	}
	if s.data.Len() != other.data.Len() {
		return false
	}
	for i := 0; i < s.data.Len(); i++ {
		if !nanEqual(s.data.AtVec(i), other.data.AtVec(i), tol) {
			return false
		}
	}
	return true
}

type seriesWire struct {
	Schema ColumnSchema
	Raw    []byte
}

// GobEncode implements gob.GobEncoder.
func (s *Series) GobEncode() ([]byte, error) {
	raw, err := s.data.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "tabular: encode series data")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(seriesWire{Schema: s.schema, Raw: raw}); err != nil {
		return nil, errors.Wrap(err, "tabular: encode series")
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (s *Series) GobDecode(p []byte) error {
	var wire seriesWire
	if err := gob.NewDecoder(bytes.NewReader(p)).Decode(&wire); err != nil {
		return errors.Wrap(err, "tabular: decode series")
	}
	var data mat.VecDense
	if err := data.UnmarshalBinary(wire.Raw); err != nil {
		return errors.Wrap(err, "tabular: decode series data")
	}
	s.data = &data
	s.schema = wire.Schema
	return nil
}

func nanEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}
