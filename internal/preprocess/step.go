// Package preprocess turns a raw car-listing table into model-ready train and
// test partitions. A Pipeline loads a CSV file, checks it against the
// configured column roles and runs an ordered list of Steps over it before
// separating the target and splitting the rows.
package preprocess

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/series"
)

// Step is one table-to-table transformation. Apply never modifies or releases
// its input; the returned frame is owned by the caller.
type Step interface {
	Name() string
	Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error)
}

// Step names, used in logs, metrics and wrapped errors
const (
	StepImpute      = "impute"
	StepOneHot      = "one_hot"
	StepLabelEncode = "label_encode"
	StepStandardize = "standardize"
	StepTorque      = "parse_torque"
	StepRatio       = "ratio"
	StepSplit       = "split"
)

// typedValues returns the values and validity of s when it holds T
func typedValues[T any](s dataframe.ISeries) ([]T, []bool, bool) {
	typed, ok := s.(*series.Series[T])
	if !ok {
		return nil, nil, false
	}
	return typed.Values(), typed.Validity(), true
}

// filled returns a null-free copy of values where null rows hold fill
func filled[T any](name string, values []T, valid []bool, fill T, mem memory.Allocator) (dataframe.ISeries, error) {
	out := make([]T, len(values))
	for i, v := range values {
		if valid[i] {
			out[i] = v
		} else {
			out[i] = fill
		}
	}
	s, err := series.NewNullable(name, out, nil, mem)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func hasNulls(valid []bool) bool {
	for _, v := range valid {
		if !v {
			return true
		}
	}
	return false
}

func allocator(mem memory.Allocator) memory.Allocator {
	if mem == nil {
		return memory.NewGoAllocator()
	}
	return mem
}
