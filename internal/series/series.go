// Package series provides typed, nullable columns backed by Apache Arrow arrays.
package series

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series represents a typed data column with Apache Arrow backend
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values. It panics on unsupported types;
// use NewSafe when the element type is not known to be supported.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	s, err := NewNullable(name, values, nil, mem)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// NewSafe creates a new Series from a slice of values, returning an error instead
// of panicking when the element type is unsupported.
func NewSafe[T any](name string, values []T, mem memory.Allocator) (*Series[T], error) {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a Series where valid[i] == false marks row i as null.
// A nil valid slice means every row is valid.
func NewNullable[T any](name string, values []T, valid []bool, mem memory.Allocator) (*Series[T], error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		return nil, fmt.Errorf("series %s: validity length %d does not match %d values", name, len(valid), len(values))
	}

	var arr arrow.Array

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	default:
		return nil, fmt.Errorf("unsupported type: %T", values)
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}, nil
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// NullCount returns the number of null rows
func (s *Series[T]) NullCount() int {
	return s.array.NullN()
}

// Values returns the data as a Go slice. Null rows hold the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Validity returns a slice where false marks a null row.
func (s *Series[T]) Validity() []bool {
	valid := make([]bool, s.array.Len())
	for i := range valid {
		valid[i] = s.array.IsValid(i)
	}
	return valid
}

// Value returns the value at the given index, or the zero value for nulls
// and out-of-range indexes.
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	}

	return result
}

// GetAsString renders the value at index as text; nulls render as "".
func (s *Series[T]) GetAsString(index int) string {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return ""
	}

	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index))
	default:
		return ""
	}
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d, nulls=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len(),
		s.NullCount())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Retain adds a reference to the underlying Arrow memory. Every Retain must be
// paired with a Release.
func (s *Series[T]) Retain() {
	if s.array != nil {
		s.array.Retain()
	}
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
