package io

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/tabprep/internal/dataframe"
)

// Write writes the DataFrame to Parquet format. Nulls are preserved.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table := dataFrameToArrowTable(df)
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compressionCodec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunkSize := int64(w.options.BatchSize)
	if chunkSize <= 0 {
		chunkSize = DefaultBatchSize
	}
	if err := writer.WriteTable(table, chunkSize); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// compressionCodec maps a compression name to its codec, defaulting to snappy
func compressionCodec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// dataFrameToArrowTable converts a DataFrame to an Arrow table sharing the
// series' arrays.
func dataFrameToArrowTable(df *dataframe.DataFrame) arrow.Table {
	fields := make([]arrow.Field, 0, df.Width())
	columns := make([]arrow.Column, 0, df.Width())

	for _, colName := range df.Columns() {
		col, _ := df.Column(colName)

		arr := col.Array()
		field := arrow.Field{Name: colName, Type: arr.DataType(), Nullable: true}
		fields = append(fields, field)

		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		chunked.Release()
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	table := array.NewTable(schema, columns, int64(df.Len()))
	for i := range columns {
		columns[i].Release()
	}
	return table
}
