// Package io provides I/O operations for reading and writing DataFrame data.
//
// This package includes a CSV reader with per-column type inference and
// declared-kind overrides, plus CSV and Parquet writers.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable I/O backends
//   - CSVReader/CSVWriter for CSV file operations
//   - ParquetWriter for columnar export through Apache Arrow
//   - Configurable options for delimiters, headers, null markers and column kinds
//
// Memory management: All I/O operations integrate with Apache Arrow's
// memory management system and require proper cleanup with defer patterns.
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
)

const (
	// DefaultBatchSize is the default batch size for I/O operations
	DefaultBatchSize = 1000
)

// DefaultNullValues are the cell values read as missing. They follow the usual
// dataframe-library conventions for NA markers.
var DefaultNullValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"}

// DataReader defines the interface for reading data from various sources
type DataReader interface {
	// Read reads data from the source and returns a DataFrame
	Read() (*dataframe.DataFrame, error)
}

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

var (
	_ DataReader = (*CSVReader)(nil)
	_ DataWriter = (*CSVWriter)(nil)
	_ DataWriter = (*ParquetWriter)(nil)
)

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// NullValues lists cell values that are read as null
	NullValues []string
	// Kinds declares the kind of specific columns; other columns are inferred
	Kinds map[string]dataframe.Kind
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: false,
		NullValues:       DefaultNullValues,
	}
}

// CSVReader reads CSV data and converts it to DataFrames
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
	mem     memory.Allocator
	nulls   map[string]bool
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions, mem memory.Allocator) *CSVReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	nulls := make(map[string]bool, len(options.NullValues))
	for _, v := range options.NullValues {
		nulls[v] = true
	}
	return &CSVReader{
		reader:  reader,
		options: options,
		mem:     mem,
		nulls:   nulls,
	}
}

// CSVWriter writes DataFrames to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetWriter writes DataFrames to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
	}
}
