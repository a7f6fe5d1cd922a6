package components

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/evalgo/core/parallel"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// EncodedColumn records the categories learned for one categorical input
// column. Values are ordered by descending frequency, ties by ascending
// value, so indicator column order is deterministic.
type EncodedColumn struct {
	Index  int
	Column string
	Values []float64
}

// OneHotEncoder expands Categorical and Boolean columns into one indicator
// column per learned category. Numeric columns pass through unchanged.
// Categories not seen during Fit encode to all zeros.
type OneHotEncoder struct {
	// TopN caps the number of most frequent categories kept per column.
	// Zero or negative keeps every category.
	TopN int

	// Learned state.
	Columns   []EncodedColumn
	NFeatures int
	Fitted    bool
}

// NewOneHotEncoder creates a One Hot Encoder keeping the topN most frequent
// categories per column.
func NewOneHotEncoder(topN int) *OneHotEncoder {
	return &OneHotEncoder{TopN: topN}
}

func buildOneHotEncoder(params map[string]any, _ int64) (Component, error) {
	if err := checkKeys(OneHotEncoderName, params, "top_n"); err != nil {
		return nil, err
	}
	topN, err := intParam(params, "top_n", 10)
	if err != nil {
		return nil, err
	}
	return NewOneHotEncoder(topN), nil
}

// Name returns the registry name of the component.
func (o *OneHotEncoder) Name() string { return OneHotEncoderName }

// Parameters returns the hyperparameters the encoder was built with.
func (o *OneHotEncoder) Parameters() map[string]any {
	return map[string]any{"top_n": o.TopN}
}

// Clone returns a fresh unfitted encoder with the same hyperparameters.
func (o *OneHotEncoder) Clone() Component { return NewOneHotEncoder(o.TopN) }

// Fit learns the category sets of every Categorical and Boolean column.
func (o *OneHotEncoder) Fit(X *tabular.Table) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewValueError("OneHotEncoder.Fit", "empty feature table")
	}

	o.NFeatures = cols
	o.Columns = nil

	schema := X.Schema()
	for j, col := range schema.Columns {
		if col.LogicalType != tabular.Categorical && col.LogicalType != tabular.Boolean {
			continue
		}

		// 出現回数を数える（NaNは欠損として無視）
		counts := make(map[float64]int)
		for i := 0; i < rows; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			counts[v]++
		}

		values := make([]float64, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Slice(values, func(a, b int) bool {
			if counts[values[a]] != counts[values[b]] {
				return counts[values[a]] > counts[values[b]]
			}
			return values[a] < values[b]
		})
		if o.TopN > 0 && len(values) > o.TopN {
			values = values[:o.TopN]
		}

		o.Columns = append(o.Columns, EncodedColumn{Index: j, Column: col.Name, Values: values})
	}

	o.Fitted = true
	return nil
}

// Transform expands the learned categorical columns into indicator columns.
// Passthrough columns keep their schema; indicator columns are named
// "<column>_<value>" and carry the numeric semantic tag.
func (o *OneHotEncoder) Transform(X *tabular.Table) (*tabular.Table, error) {
	if !o.Fitted {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	rows, cols := X.Dims()
	if cols != o.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", o.NFeatures, cols, 1)
	}

	encoded := make(map[int]EncodedColumn, len(o.Columns))
	for _, ec := range o.Columns {
		encoded[ec.Index] = ec
	}

	// 出力スキーマと列オフセットを先に組み立てる
	schema := X.Schema()
	outCols := make([]tabular.ColumnSchema, 0, cols)
	offsets := make([]int, cols)
	width := 0
	for j, col := range schema.Columns {
		offsets[j] = width
		ec, ok := encoded[j]
		if !ok {
			outCols = append(outCols, col.Clone())
			width++
			continue
		}
		if ec.Column != col.Name {
			return nil, errors.NewValueError("OneHotEncoder.Transform",
				fmt.Sprintf("expected column %q at position %d, found %q", ec.Column, j, col.Name))
		}
		for _, v := range ec.Values {
			name := fmt.Sprintf("%s_%s", ec.Column, formatCategory(v))
			outCols = append(outCols, tabular.NewColumnSchema(name, tabular.Double, "numeric"))
		}
		width += len(ec.Values)
	}

	data := mat.NewDense(rows, width, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				ec, ok := encoded[j]
				if !ok {
					data.Set(i, offsets[j], X.At(i, j))
					continue
				}
				v := X.At(i, j)
				for k, category := range ec.Values {
					if v == category {
						data.Set(i, offsets[j]+k, 1.0)
					}
				}
			}
		}
	})

	return tabular.NewTable(data, tabular.NewSchema(outCols...))
}

// FitTransform fits the encoder and transforms the same table.
func (o *OneHotEncoder) FitTransform(X *tabular.Table) (*tabular.Table, error) {
	if err := o.Fit(X); err != nil {
		return nil, err
	}
	return o.Transform(X)
}

// formatCategory renders a category value for use in an indicator column name.
func formatCategory(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
