package preprocess

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/series"
	"github.com/paveg/tabprep/internal/validation"
	"gonum.org/v1/gonum/stat"
)

// Standardize replaces each listed column with (x - mean) / std, where mean and
// the population standard deviation are taken over the non-null values of the
// whole column. A column with zero spread is only centered. Nulls stay null.
//
// The statistics are fitted before the train/test split, so the test rows
// influence the scaling of the train rows.
type Standardize struct {
	Columns []string
	Mem     memory.Allocator
}

// Name implements Step
func (Standardize) Name() string { return StepStandardize }

// Apply implements Step
func (s Standardize) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepStandardize, s.Columns...); err != nil {
		return nil, err
	}

	mem := allocator(s.Mem)
	scaled := make([]dataframe.ISeries, 0, len(s.Columns))
	for _, name := range s.Columns {
		values, valid, err := df.Float64Values(name)
		if err != nil {
			for _, c := range scaled {
				c.Release()
			}
			return nil, err
		}

		out, _, _ := StandardScore(values, valid)
		col, err := series.NewNullable(name, out, valid, mem)
		if err != nil {
			for _, c := range scaled {
				c.Release()
			}
			return nil, err
		}
		scaled = append(scaled, col)
	}

	return df.WithColumns(scaled...), nil
}

// StandardScore standardizes the valid entries of values and returns the
// scaled values with the mean and scale used. A zero or undefined standard
// deviation gives a scale of 1.
func StandardScore(values []float64, valid []bool) (scores []float64, mean, scale float64) {
	present := make([]float64, 0, len(values))
	for i, v := range values {
		if valid[i] {
			present = append(present, v)
		}
	}

	mean, scale = stat.PopMeanStdDev(present, nil)
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}

	scores = make([]float64, len(values))
	for i, v := range values {
		if valid[i] {
			scores[i] = (v - mean) / scale
		}
	}
	return scores, mean, scale
}
