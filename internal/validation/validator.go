// Package validation provides input validation utilities for table operations.
// Validators check column existence, declared kinds and row counts before a
// transformation runs, so failures surface before any work is done.
package validation

import (
	"fmt"

	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundErrorWithAvailable(v.op, column, v.df.Columns())
		}
	}
	return nil
}

// SchemaValidator validates that a frame satisfies a declared schema: every
// declared column exists and its physical type can carry the declared kind.
type SchemaValidator struct {
	df       *dataframe.DataFrame
	expected []dataframe.Field
	op       string
}

// NewSchemaValidator creates a validator for declared column kinds
func NewSchemaValidator(df *dataframe.DataFrame, op string, expected ...dataframe.Field) *SchemaValidator {
	return &SchemaValidator{
		df:       df,
		expected: expected,
		op:       op,
	}
}

// Validate checks existence first for every field, then kinds
func (v *SchemaValidator) Validate() error {
	names := make([]string, len(v.expected))
	for i, f := range v.expected {
		names[i] = f.Name
	}
	if err := ValidateColumns(v.df, v.op, names...); err != nil {
		return err
	}

	schema := v.df.Schema()
	for _, want := range v.expected {
		got, _ := schema.Field(want.Name)
		if !want.Kind.Accepts(got.Type) {
			return errors.NewTypeMismatchError(v.op, want.Name, want.Kind.String(), got.Type.String())
		}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// EmptyDataFrameValidator validates operations on empty DataFrames
type EmptyDataFrameValidator struct {
	df ColumnProvider
	op string
}

// NewEmptyDataFrameValidator creates a validator for empty DataFrame checks
func NewEmptyDataFrameValidator(df ColumnProvider, op string) *EmptyDataFrameValidator {
	return &EmptyDataFrameValidator{
		df: df,
		op: op,
	}
}

// Validate checks if DataFrame is empty when operation requires data
func (v *EmptyDataFrameValidator) Validate() error {
	if v.df.Len() == 0 {
		return &errors.DataFrameError{
			Op:      v.op,
			Message: "operation not supported on empty DataFrame",
		}
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateNotEmpty is a convenience function for empty DataFrame validation
func ValidateNotEmpty(df ColumnProvider, op string) error {
	return NewEmptyDataFrameValidator(df, op).Validate()
}
