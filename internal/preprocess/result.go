package preprocess

import (
	"fmt"
	"path/filepath"

	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/io"
	"github.com/spf13/afero"
)

// Export formats
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Result holds the four partitions produced by a pipeline run
type Result struct {
	XTrain *dataframe.DataFrame
	XTest  *dataframe.DataFrame
	YTrain *dataframe.DataFrame
	YTest  *dataframe.DataFrame
}

// Release releases every partition that has been set
func (r *Result) Release() {
	for _, df := range r.frames() {
		if df.frame != nil {
			df.frame.Release()
		}
	}
}

// ExportedFile describes one partition written by Export
type ExportedFile struct {
	Path  string
	Rows  int
	Bytes int64
}

// Export writes the partitions to dir on the OS filesystem. See ExportTo.
func (r *Result) Export(dir, format string) ([]ExportedFile, error) {
	return r.ExportTo(afero.NewOsFs(), dir, format)
}

// ExportTo writes X_train, X_test, y_train and y_test into dir as CSV or
// Parquet files, creating dir if needed. Existing files are overwritten.
func (r *Result) ExportTo(fs afero.Fs, dir, format string) ([]ExportedFile, error) {
	if format != FormatCSV && format != FormatParquet {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory %s: %w", dir, err)
	}

	files := make([]ExportedFile, 0, 4)
	for _, part := range r.frames() {
		if part.frame == nil {
			continue
		}

		path := filepath.Join(dir, part.name+"."+format)
		size, err := writeFrame(fs, path, format, part.frame)
		if err != nil {
			return files, fmt.Errorf("exporting %s: %w", part.name, err)
		}
		files = append(files, ExportedFile{Path: path, Rows: part.frame.Len(), Bytes: size})
	}
	return files, nil
}

type namedFrame struct {
	name  string
	frame *dataframe.DataFrame
}

func (r *Result) frames() []namedFrame {
	return []namedFrame{
		{"X_train", r.XTrain},
		{"X_test", r.XTest},
		{"y_train", r.YTrain},
		{"y_test", r.YTest},
	}
}

func writeFrame(fs afero.Fs, path, format string, df *dataframe.DataFrame) (size int64, err error) {
	f, err := fs.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// the parquet writer closes sinks that implement io.Closer; f is closed above
	counter := &countingWriter{file: f}
	var writer io.DataWriter
	if format == FormatParquet {
		writer = io.NewParquetWriter(counter, io.DefaultParquetOptions())
	} else {
		writer = io.NewCSVWriter(counter, io.DefaultCSVOptions())
	}
	if err := writer.Write(df); err != nil {
		return 0, err
	}
	return counter.n, nil
}

type countingWriter struct {
	file afero.File
	n    int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	w.n += int64(n)
	return n, err
}
