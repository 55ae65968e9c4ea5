package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/series"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// ReadCSVFile opens path and reads it as CSV. A missing or unreadable file is
// reported as errors.ErrInputNotFound. The file is closed on every path.
func ReadCSVFile(path string, options CSVOptions, mem memory.Allocator) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputNotFoundError("load", path, err)
	}
	defer f.Close()

	return NewCSVReader(f, options, mem).Read()
}

// Read reads CSV data and returns a DataFrame. A leading UTF-8 byte order
// mark is dropped.
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	decoded := transform.NewReader(r.reader, unicode.BOMOverride(transform.Nop))
	csvReader := csv.NewReader(decoded)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	// Handle empty CSV
	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		// Generate default column names
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := range numCols {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	// Transpose data to work with columns; short rows are padded with nulls
	numCols := len(headers)
	columns := make([][]string, numCols)
	present := make([][]bool, numCols)
	for i := range numCols {
		columns[i] = make([]string, len(dataRows))
		present[i] = make([]bool, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) {
				columns[i][j] = row[i]
				present[i][j] = true
			}
		}
	}

	seriesList := make([]dataframe.ISeries, 0, numCols)
	kinds := make(map[string]dataframe.Kind, numCols)
	release := func() {
		for _, s := range seriesList {
			s.Release()
		}
	}

	for i, header := range headers {
		valid := make([]bool, len(dataRows))
		for j, value := range columns[i] {
			valid[j] = present[i][j] && !r.nulls[value]
		}

		s, kind, err := r.createSeriesFromStrings(header, columns[i], valid)
		if err != nil {
			release()
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
		kinds[header] = kind
	}

	df, err := dataframe.NewSafe(seriesList...)
	if err != nil {
		release()
		return nil, err
	}
	for name, kind := range kinds {
		if err := df.SetKind(name, kind); err != nil {
			df.Release()
			return nil, err
		}
	}
	return df, nil
}

// createSeriesFromStrings creates a series from string data using the declared
// kind for the column when there is one, or the inferred kind otherwise
func (r *CSVReader) createSeriesFromStrings(
	name string, data []string, valid []bool,
) (dataframe.ISeries, dataframe.Kind, error) {
	kind, declared := r.options.Kinds[name]
	if !declared {
		kind = inferKind(data, valid)
	}

	var (
		s   dataframe.ISeries
		err error
	)
	switch kind {
	case dataframe.KindBoolean:
		s, err = r.createBoolSeries(name, data, valid)
	case dataframe.KindInteger:
		s, err = r.createIntSeries(name, data, valid)
	case dataframe.KindNumeric:
		s, err = r.createFloatSeries(name, data, valid)
	default:
		s, err = r.createStringSeries(name, data, valid)
	}
	return s, kind, err
}

// inferKind determines the most specific kind that fits every non-null value
func inferKind(data []string, valid []bool) dataframe.Kind {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue // Skip nulls for type inference
		}
		hasValue = true
		value = strings.TrimSpace(value)

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}

		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}

		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return dataframe.KindCategorical
	case canBeBool:
		return dataframe.KindBoolean
	case canBeInt:
		return dataframe.KindInteger
	case canBeFloat:
		return dataframe.KindNumeric
	default:
		return dataframe.KindCategorical
	}
}

func (r *CSVReader) createStringSeries(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	values := make([]string, len(data))
	for i, value := range data {
		if valid[i] {
			values[i] = value
		}
	}
	return toISeries(series.NewNullable(name, values, valid, r.mem))
}

func (r *CSVReader) createBoolSeries(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	values := make([]bool, len(data))
	for i, value := range data {
		if !valid[i] {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, invalidValueError(name, "boolean", value, i)
		}
		values[i] = parsed
	}
	return toISeries(series.NewNullable(name, values, valid, r.mem))
}

func (r *CSVReader) createIntSeries(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	values := make([]int64, len(data))
	for i, value := range data {
		if !valid[i] {
			continue
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, invalidValueError(name, "integer", value, i)
		}
		values[i] = parsed
	}
	return toISeries(series.NewNullable(name, values, valid, r.mem))
}

func (r *CSVReader) createFloatSeries(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	values := make([]float64, len(data))
	for i, value := range data {
		if !valid[i] {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, invalidValueError(name, "numeric", value, i)
		}
		values[i] = parsed
	}
	return toISeries(series.NewNullable(name, values, valid, r.mem))
}

func invalidValueError(column, kind, value string, row int) error {
	return errors.NewValidationError("load", column, fmt.Sprintf("invalid %s value %q at row %d", kind, value, row))
}

// toISeries erases the concrete series type without producing a typed-nil interface
func toISeries[T any](s *series.Series[T], err error) (dataframe.ISeries, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	columns := make([]dataframe.ISeries, 0, df.Width())
	for _, name := range df.Columns() {
		column, _ := df.Column(name)
		columns = append(columns, column)
	}

	row := make([]string, len(columns))
	for i := range df.Len() {
		for j, column := range columns {
			row[j] = column.GetAsString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
