package preprocess

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/validation"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Impute fills missing values. Mean columns get the mean of their non-null
// values and come out as float64. Mode columns get their most frequent
// non-null value and keep their type. Columns without nulls are left as they
// are. A column with no values at all is filled with NaN (mean) or the zero
// value of its type (mode).
type Impute struct {
	Mean []string
	Mode []string
	Mem  memory.Allocator
}

// Name implements Step
func (Impute) Name() string { return StepImpute }

// Apply implements Step
func (s Impute) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepImpute, slices.Concat(s.Mean, s.Mode)...); err != nil {
		return nil, err
	}

	mem := allocator(s.Mem)
	replacements := make([]dataframe.ISeries, 0, len(s.Mean)+len(s.Mode))
	fail := func(err error) (*dataframe.DataFrame, error) {
		for _, r := range replacements {
			r.Release()
		}
		return nil, err
	}

	for _, name := range s.Mean {
		values, valid, err := df.Float64Values(name)
		if err != nil {
			return fail(err)
		}
		if !hasNulls(valid) {
			continue
		}

		present := make([]float64, 0, len(values))
		for i, v := range values {
			if valid[i] {
				present = append(present, v)
			}
		}

		col, err := filled(name, values, valid, stat.Mean(present, nil), mem)
		if err != nil {
			return fail(err)
		}
		replacements = append(replacements, col)
	}

	for _, name := range s.Mode {
		col, _ := df.Column(name)
		if col.NullCount() == 0 {
			continue
		}

		replacement, err := fillWithMode(col, mem)
		if err != nil {
			return fail(err)
		}
		replacements = append(replacements, replacement)
	}

	return df.WithColumns(replacements...), nil
}

func fillWithMode(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	//nolint:exhaustive // only the types a Series can hold
	switch col.DataType().ID() {
	case arrow.STRING:
		return fillOrdered[string](col, mem)
	case arrow.INT64:
		return fillOrdered[int64](col, mem)
	case arrow.FLOAT64:
		return fillOrdered[float64](col, mem)
	case arrow.BOOL:
		values, valid, ok := typedValues[bool](col)
		if !ok {
			break
		}
		var trues, falses int
		for i, v := range values {
			switch {
			case !valid[i]:
			case v:
				trues++
			default:
				falses++
			}
		}
		return filled(col.Name(), values, valid, trues > falses, mem)
	}
	return nil, errors.NewUnsupportedTypeError(StepImpute, col.DataType().String())
}

func fillOrdered[T constraints.Ordered](col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	values, valid, ok := typedValues[T](col)
	if !ok {
		return nil, errors.NewUnsupportedTypeError(StepImpute, col.DataType().String())
	}
	mode, _ := Mode(values, valid)
	return filled(col.Name(), values, valid, mode, mem)
}
