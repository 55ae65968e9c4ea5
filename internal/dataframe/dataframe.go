// Package dataframe provides an ordered, typed table of Arrow-backed columns
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/series"
)

// DataFrame represents a table of data with typed columns.
//
// A DataFrame owns one reference to each of its series. Operations that return a
// new DataFrame retain the columns they share, so every frame must be released
// independently.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
	kinds   map[string]Kind
}

// New creates a new DataFrame from a slice of ISeries, taking ownership of them.
// Column lengths are not checked; use NewSafe for untrusted input.
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries, len(series))
	kinds := make(map[string]Kind, len(series))
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, dup := columns[name]; !dup {
			order = append(order, name)
		}
		columns[name] = s
		kinds[name] = KindForType(s.DataType())
	}

	return &DataFrame{
		columns: columns,
		order:   order,
		kinds:   kinds,
	}
}

// NewSafe creates a DataFrame after checking that every column has the same
// length and that column names are unique.
func NewSafe(series ...ISeries) (*DataFrame, error) {
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if seen[s.Name()] {
			return nil, errors.NewValidationError("new", s.Name(), "duplicate column name")
		}
		seen[s.Name()] = true

		if s.Len() != series[0].Len() {
			return nil, &errors.DataFrameError{
				Op:      errors.ErrMismatchedLength.Op,
				Column:  s.Name(),
				Message: errors.ErrMismatchedLength.Message,
				Hint:    fmt.Sprintf("expected %d rows, got %d", series[0].Len(), s.Len()),
			}
		}
	}
	return New(series...), nil
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Kind returns the declared kind of a column
func (df *DataFrame) Kind(name string) (Kind, bool) {
	kind, exists := df.kinds[name]
	return kind, exists
}

// SetKind declares the semantic kind of an existing column. It is meant to be
// called while a frame is being built, before it is shared.
func (df *DataFrame) SetKind(name string, kind Kind) error {
	s, exists := df.columns[name]
	if !exists {
		return errors.NewColumnNotFoundError("set_kind", name)
	}
	if !kind.Accepts(s.DataType()) {
		return errors.NewTypeMismatchError("set_kind", name, kind.String(), s.DataType().String())
	}
	df.kinds[name] = kind
	return nil
}

// Schema returns the typed description of the frame
func (df *DataFrame) Schema() Schema {
	fields := make([]Field, 0, len(df.order))
	for _, name := range df.order {
		fields = append(fields, Field{
			Name: name,
			Kind: df.kinds[name],
			Type: df.columns[name].DataType(),
		})
	}
	return Schema{Fields: fields}
}

// Select returns a new DataFrame with only the specified columns
func (df *DataFrame) Select(names ...string) *DataFrame {
	out := &DataFrame{
		columns: make(map[string]ISeries, len(names)),
		order:   make([]string, 0, len(names)),
		kinds:   make(map[string]Kind, len(names)),
	}

	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			if _, dup := out.columns[name]; dup {
				continue
			}
			s.Retain()
			out.columns[name] = s
			out.kinds[name] = df.kinds[name]
			out.order = append(out.order, name)
		}
	}

	return out
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	keep := make([]string, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			keep = append(keep, name)
		}
	}

	return df.Select(keep...)
}

// WithColumn returns a new DataFrame where s replaces the column of the same name
// in place, or is appended when no such column exists. The new frame takes
// ownership of s.
func (df *DataFrame) WithColumn(s ISeries) *DataFrame {
	return df.WithColumns(s)
}

// WithColumns is WithColumn for several series, applied in order. Appended
// columns keep the order they are given in.
func (df *DataFrame) WithColumns(series ...ISeries) *DataFrame {
	out := df.Select(df.order...)

	for _, s := range series {
		name := s.Name()
		if old, exists := out.columns[name]; exists {
			old.Release()
		} else {
			out.order = append(out.order, name)
		}
		out.columns[name] = s

		if kind, exists := out.kinds[name]; exists && kind.Accepts(s.DataType()) {
			out.kinds[name] = kind
		} else {
			out.kinds[name] = KindForType(s.DataType())
		}
	}

	return out
}

// Take returns a new DataFrame holding the rows at the given indices, in order,
// allocated from mem (a Go allocator when nil). Nulls are preserved.
func (df *DataFrame) Take(indices []int, mem memory.Allocator) (*DataFrame, error) {
	length := df.Len()
	for _, idx := range indices {
		if idx < 0 || idx >= length {
			return nil, &errors.DataFrameError{
				Op:      "take",
				Message: "index out of bounds",
				Hint:    fmt.Sprintf("index %d, valid range [0, %d)", idx, length),
			}
		}
	}

	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s, err := takeSeries(df.columns[name], indices, mem)
		if err != nil {
			for _, t := range taken {
				t.Release()
			}
			return nil, fmt.Errorf("taking rows from column %s: %w", name, err)
		}
		taken = append(taken, s)
	}

	out := New(taken...)
	for name, kind := range df.kinds {
		out.kinds[name] = kind
	}
	return out, nil
}

// takeSeries gathers the rows at indices into a new, independent series
func takeSeries(s ISeries, indices []int, mem memory.Allocator) (ISeries, error) {
	arr := s.Array()
	defer arr.Release()

	switch typed := arr.(type) {
	case *array.String:
		return gather(s.Name(), typed, indices, mem, typed.Value)
	case *array.Int64:
		return gather(s.Name(), typed, indices, mem, typed.Value)
	case *array.Float64:
		return gather(s.Name(), typed, indices, mem, typed.Value)
	case *array.Boolean:
		return gather(s.Name(), typed, indices, mem, typed.Value)
	default:
		return nil, errors.NewUnsupportedTypeError("take", arr.DataType().String())
	}
}

// gather is the generic row-gathering helper used by takeSeries
func gather[T any](
	name string, arr arrow.Array, indices []int, mem memory.Allocator, value func(int) T,
) (ISeries, error) {
	values := make([]T, len(indices))
	valid := make([]bool, len(indices))
	for i, idx := range indices {
		if arr.IsValid(idx) {
			values[i] = value(idx)
			valid[i] = true
		}
	}

	s, err := series.NewNullable(name, values, valid, mem)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Float64Values returns a numeric column as float64 values plus validity.
// int64 columns are widened.
func (df *DataFrame) Float64Values(name string) ([]float64, []bool, error) {
	s, exists := df.columns[name]
	if !exists {
		return nil, nil, errors.NewColumnNotFoundErrorWithAvailable("float64_values", name, df.Columns())
	}

	arr := s.Array()
	defer arr.Release()

	values := make([]float64, arr.Len())
	valid := make([]bool, arr.Len())

	switch typed := arr.(type) {
	case *array.Float64:
		for i := range values {
			if typed.IsValid(i) {
				values[i] = typed.Value(i)
				valid[i] = true
			}
		}
	case *array.Int64:
		for i := range values {
			if typed.IsValid(i) {
				values[i] = float64(typed.Value(i))
				valid[i] = true
			}
		}
	default:
		return nil, nil, errors.NewTypeMismatchError("float64_values", name, KindNumeric.String(), arr.DataType().String())
	}

	return values, valid, nil
}

// StringValues returns a column rendered as strings plus validity. Non-string
// columns are formatted the same way the CSV writer formats them.
func (df *DataFrame) StringValues(name string) ([]string, []bool, error) {
	s, exists := df.columns[name]
	if !exists {
		return nil, nil, errors.NewColumnNotFoundErrorWithAvailable("string_values", name, df.Columns())
	}

	values := make([]string, s.Len())
	valid := make([]bool, s.Len())
	for i := range values {
		if !s.IsNull(i) {
			values[i] = s.GetAsString(i)
			valid[i] = true
		}
	}
	return values, valid, nil
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s (%s)", name, series.DataType().String(), df.kinds[name]))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}
