// Package tabular provides schema-aware tables and series for AutoML pipelines.
//
// A Table couples a gonum dense matrix with a Schema describing each column's
// logical type and semantic tags. A Series does the same for a single target
// column. Missing values are represented as NaN.
//
// Tables and series implement gob encoding, so they round-trip intact across
// engine boundaries that copy their inputs. The schema travels with the data;
// a worker that decodes a table sees exactly the typing information the
// submitter attached.
package tabular

import (
	"fmt"
	"slices"

	"github.com/YuminosukeSato/evalgo/pkg/errors"
)

// LogicalType classifies the contents of a column.
type LogicalType int

const (
	// Unknown marks a column whose type has not been inferred or declared.
	Unknown LogicalType = iota
	// Double marks continuous numeric columns.
	Double
	// Integer marks whole-number columns.
	Integer
	// Categorical marks columns holding category codes.
	Categorical
	// Boolean marks 0/1 columns.
	Boolean
	// Datetime marks columns holding Unix timestamps.
	Datetime
	// NaturalLanguage marks columns holding text token codes.
	NaturalLanguage
)

// String returns the lowercase name of the logical type.
func (lt LogicalType) String() string {
	switch lt {
	case Double:
		return "double"
	case Integer:
		return "integer"
	case Categorical:
		return "categorical"
	case Boolean:
		return "boolean"
	case Datetime:
		return "datetime"
	case NaturalLanguage:
		return "natural_language"
	default:
		return "unknown"
	}
}

// ParseLogicalType resolves a logical type from its string name.
func ParseLogicalType(name string) (LogicalType, error) {
	switch name {
	case "double":
		return Double, nil
	case "integer":
		return Integer, nil
	case "categorical":
		return Categorical, nil
	case "boolean":
		return Boolean, nil
	case "datetime":
		return Datetime, nil
	case "natural_language":
		return NaturalLanguage, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, errors.NewValueError("ParseLogicalType", fmt.Sprintf("unknown logical type '%s'", name))
	}
}

// IsNumeric reports whether values of this type can feed numeric estimators
// without encoding.
func (lt LogicalType) IsNumeric() bool {
	return lt == Double || lt == Integer || lt == Boolean
}

// ColumnSchema describes a single column.
type ColumnSchema struct {
	Name         string
	LogicalType  LogicalType
	SemanticTags []string
}

// NewColumnSchema builds a column schema with the given tags.
func NewColumnSchema(name string, lt LogicalType, tags ...string) ColumnSchema {
	return ColumnSchema{Name: name, LogicalType: lt, SemanticTags: tags}
}

// HasTag reports whether the column carries the given semantic tag.
func (c ColumnSchema) HasTag(tag string) bool {
	return slices.Contains(c.SemanticTags, tag)
}

// Equal reports whether two column schemas are identical.
func (c ColumnSchema) Equal(other ColumnSchema) bool {
	return c.Name == other.Name &&
		c.LogicalType == other.LogicalType &&
		slices.Equal(c.SemanticTags, other.SemanticTags)
}

// Clone returns a deep copy of the column schema.
func (c ColumnSchema) Clone() ColumnSchema {
	return ColumnSchema{
		Name:         c.Name,
		LogicalType:  c.LogicalType,
		SemanticTags: slices.Clone(c.SemanticTags),
	}
}

// Schema describes the columns of a Table, in order.
type Schema struct {
	Columns []ColumnSchema
}

// NewSchema builds a schema from column definitions.
func NewSchema(columns ...ColumnSchema) *Schema {
	return &Schema{Columns: columns}
}

// InferSchema produces a default all-Double schema with generated column
// names for a matrix of the given width.
func InferSchema(cols int) *Schema {
	columns := make([]ColumnSchema, cols)
	for j := range columns {
		columns[j] = ColumnSchema{Name: fmt.Sprintf("feature_%d", j), LogicalType: Double}
	}
	return &Schema{Columns: columns}
}

// NumColumns returns the number of columns the schema describes.
func (s *Schema) NumColumns() int {
	return len(s.Columns)
}

// ColumnNames returns the column names in order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of the named column, or -1 if absent.
func (s *Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnsOfType returns the indices of columns with the given logical type.
func (s *Schema) ColumnsOfType(lt LogicalType) []int {
	var idx []int
	for i, c := range s.Columns {
		if c.LogicalType == lt {
			idx = append(idx, i)
		}
	}
	return idx
}

// Equal reports whether two schemas describe identical columns.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Columns) != len(other.Columns) {
		return false
	}
	for i := range s.Columns {
		if !s.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	columns := make([]ColumnSchema, len(s.Columns))
	for i, c := range s.Columns {
		columns[i] = c.Clone()
	}
	return &Schema{Columns: columns}
}
