package preprocess

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/series"
	"github.com/paveg/tabprep/internal/validation"
	"golang.org/x/exp/constraints"
)

// OneHot replaces each listed column with one float64 indicator column per
// distinct value, named "<column>_<value>". Indicators are appended after the
// remaining columns, column by column, values in ascending order. Null rows
// are 0 in every indicator of their column.
type OneHot struct {
	Columns []string
	Mem     memory.Allocator
}

// Name implements Step
func (OneHot) Name() string { return StepOneHot }

// Apply implements Step
func (s OneHot) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepOneHot, s.Columns...); err != nil {
		return nil, err
	}

	mem := allocator(s.Mem)
	var indicators []dataframe.ISeries
	for _, name := range s.Columns {
		col, _ := df.Column(name)
		codes, labels, valid, err := categoryCodes(col, StepOneHot)
		if err != nil {
			for _, ind := range indicators {
				ind.Release()
			}
			return nil, err
		}

		for code, label := range labels {
			values := make([]float64, len(codes))
			for i, c := range codes {
				if valid[i] && c == int64(code) {
					values[i] = 1
				}
			}
			indicators = append(indicators, series.New(name+"_"+label, values, mem))
		}
	}

	base := df.Drop(s.Columns...)
	defer base.Release()
	return base.WithColumns(indicators...), nil
}

// LabelEncode replaces a column with int64 codes: the index of each value among
// the column's sorted distinct values. Nulls stay null.
type LabelEncode struct {
	Column string
	Mem    memory.Allocator
}

// Name implements Step
func (LabelEncode) Name() string { return StepLabelEncode }

// Apply implements Step
func (s LabelEncode) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepLabelEncode, s.Column); err != nil {
		return nil, err
	}

	col, _ := df.Column(s.Column)
	codes, _, valid, err := categoryCodes(col, StepLabelEncode)
	if err != nil {
		return nil, err
	}

	encoded, err := series.NewNullable(s.Column, codes, valid, allocator(s.Mem))
	if err != nil {
		return nil, err
	}
	return df.WithColumn(encoded), nil
}

// categoryCodes label-encodes a column of any supported type. labels[code] is
// the text form of each category, in the natural order of the column's type.
func categoryCodes(col dataframe.ISeries, op string) (codes []int64, labels []string, valid []bool, err error) {
	//nolint:exhaustive // only the types a Series can hold
	switch col.DataType().ID() {
	case arrow.STRING:
		return orderedCodes(col, op, func(v string) string { return v })
	case arrow.INT64:
		return orderedCodes(col, op, func(v int64) string { return strconv.FormatInt(v, 10) })
	case arrow.FLOAT64:
		return orderedCodes(col, op, func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })
	case arrow.BOOL:
		// false sorts before true, the same as the strings do
		values, valid, ok := typedValues[bool](col)
		if !ok {
			break
		}
		text := make([]string, len(values))
		for i, v := range values {
			text[i] = strconv.FormatBool(v)
		}
		codes, labels := LabelCodes(text, valid)
		return codes, labels, valid, nil
	}
	return nil, nil, nil, errors.NewUnsupportedTypeError(op, col.DataType().String())
}

func orderedCodes[T constraints.Ordered](
	col dataframe.ISeries, op string, format func(T) string,
) ([]int64, []string, []bool, error) {
	values, valid, ok := typedValues[T](col)
	if !ok {
		return nil, nil, nil, errors.NewUnsupportedTypeError(op, col.DataType().String())
	}

	codes, classes := LabelCodes(values, valid)
	labels := make([]string, len(classes))
	for i, c := range classes {
		labels[i] = format(c)
	}
	return codes, labels, valid, nil
}
