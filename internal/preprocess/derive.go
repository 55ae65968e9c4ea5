package preprocess

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/series"
	"github.com/paveg/tabprep/internal/validation"
)

// Torque replaces a free-text torque column with the float64 value each cell
// starts with, as parsed by ParseTorque. Null cells become 0.
type Torque struct {
	Column string
	Mem    memory.Allocator
}

// Name implements Step
func (Torque) Name() string { return StepTorque }

// Apply implements Step
func (s Torque) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepTorque, s.Column); err != nil {
		return nil, err
	}

	text, valid, err := df.StringValues(s.Column)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(text))
	for i, t := range text {
		if valid[i] {
			values[i] = ParseTorque(t)
		}
	}

	return df.WithColumn(series.New(s.Column, values, allocator(s.Mem))), nil
}

// Ratio derives Output = Numerator / Denominator row by row with IEEE float
// semantics, so x/0 is ±Inf and 0/0 is NaN. A row where either operand is null
// is null. The column is appended, or replaced in place if Output already exists.
type Ratio struct {
	Numerator   string
	Denominator string
	Output      string
	Mem         memory.Allocator
}

// Name implements Step
func (Ratio) Name() string { return StepRatio }

// Apply implements Step
func (s Ratio) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, StepRatio, s.Numerator, s.Denominator); err != nil {
		return nil, err
	}

	num, numValid, err := df.Float64Values(s.Numerator)
	if err != nil {
		return nil, err
	}
	den, denValid, err := df.Float64Values(s.Denominator)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(num))
	valid := make([]bool, len(num))
	for i := range values {
		if numValid[i] && denValid[i] {
			values[i] = num[i] / den[i]
			valid[i] = true
		} else {
			values[i] = math.NaN()
		}
	}

	ratio, err := series.NewNullable(s.Output, values, valid, allocator(s.Mem))
	if err != nil {
		return nil, err
	}
	return df.WithColumn(ratio), nil
}
