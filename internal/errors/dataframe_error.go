// Package errors provides standardized error types for table loading, preprocessing
// and dataset fetching. DataFrameError carries the failing operation, the column
// involved and the underlying cause, and supports matching with errors.Is.
package errors

import (
	"fmt"
	"strings"
)

// DataFrameError represents standardized errors across all operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "load", "impute", "fetch")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Hint    string // Optional remediation hint
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	var msg string
	if e.Column != "" {
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	} else {
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Hint != "" {
		msg += " (Hint: " + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is(). Empty fields on the target act as
// wildcards, so the sentinels below match any error of their kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	return (df.Op == "" || e.Op == df.Op) &&
		(df.Column == "" || e.Column == df.Column) &&
		(df.Message == "" || e.Message == df.Message)
}

// WithHint returns a copy of the error carrying a remediation hint
func (e *DataFrameError) WithHint(hint string) *DataFrameError {
	clone := *e
	clone.Hint = hint
	return &clone
}

const (
	msgColumnNotFound = "column does not exist"
	msgInputNotFound  = "input not found"
	msgFileExists     = "file already exists"
	msgTransfer       = "transfer failed"
	msgTypeMismatch   = "type mismatch"
)

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: msgColumnNotFound,
	}
}

// NewColumnNotFoundErrorWithAvailable creates a column-not-found error whose hint
// lists the columns that do exist.
func NewColumnNotFoundErrorWithAvailable(op, column string, available []string) *DataFrameError {
	return NewColumnNotFoundError(op, column).
		WithHint("available columns: [" + strings.Join(available, ", ") + "]")
}

// NewInputNotFoundError creates an error for a source file that is missing or unreadable
func NewInputNotFoundError(op, path string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgInputNotFound,
		Hint:    path,
		Cause:   cause,
	}
}

// NewFileExistsError creates an error for a destination that must not be overwritten
func NewFileExistsError(op, path string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgFileExists,
		Hint:    path,
		Cause:   cause,
	}
}

// NewTransferError creates an error for network or I/O failures during a download
func NewTransferError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: msgTransfer,
		Cause:   cause,
	}
}

// NewTypeMismatchError creates an error for a column whose type does not fit its role
func NewTypeMismatchError(op, column, expected, actual string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: msgTypeMismatch,
		Hint:    fmt.Sprintf("expected %s, got %s", expected, actual),
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// Predefined error variables for matching with errors.Is
var (
	// ErrColumnNotFound matches any missing-column error
	ErrColumnNotFound = &DataFrameError{Message: msgColumnNotFound}

	// ErrInputNotFound matches a missing or unreadable source file
	ErrInputNotFound = &DataFrameError{Message: msgInputNotFound}

	// ErrFileExists matches a destination file that already exists
	ErrFileExists = &DataFrameError{Message: msgFileExists}

	// ErrTransfer matches a failed download
	ErrTransfer = &DataFrameError{Message: msgTransfer}

	// ErrTypeMismatch matches a column whose type does not fit its role
	ErrTypeMismatch = &DataFrameError{Message: msgTypeMismatch}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &DataFrameError{
		Op:      "validation",
		Message: "arrays must have the same length",
	}
)
