package preprocess_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/preprocess"
	"github.com/paveg/tabprep/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCarPipeline(t *testing.T) *preprocess.Result {
	t.Helper()
	result, err := preprocess.NewPipeline(config.Config{}).Run(context.Background(), testutil.WriteCarCSV(t))
	require.NoError(t, err)
	return result
}

func TestResult_ExportCSV(t *testing.T) {
	result := runCarPipeline(t)
	defer result.Release()

	fs := afero.NewMemMapFs()
	files, err := result.ExportTo(fs, "out", preprocess.FormatCSV)
	require.NoError(t, err)
	require.Len(t, files, 4)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f.Path)
		assert.Positive(t, f.Bytes)

		info, err := fs.Stat(f.Path)
		require.NoError(t, err)
		assert.Equal(t, f.Bytes, info.Size())
	}
	assert.Equal(t, []string{"X_train.csv", "X_test.csv", "y_train.csv", "y_test.csv"}, names)
	assert.Equal(t, 8, files[0].Rows)
	assert.Equal(t, 2, files[3].Rows)

	data, err := afero.ReadFile(fs, filepath.Join("out", "y_test.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "target_column", lines[0])
	assert.Len(t, lines, 3)

	data, err = afero.ReadFile(fs, filepath.Join("out", "X_train.csv"))
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, strings.Join(expectedFeatures, ","), header)
}

func TestResult_ExportParquet(t *testing.T) {
	result := runCarPipeline(t)
	defer result.Release()

	fs := afero.NewMemMapFs()
	files, err := result.ExportTo(fs, filepath.Join("out", "parquet"), preprocess.FormatParquet)
	require.NoError(t, err)
	require.Len(t, files, 4)

	for _, f := range files {
		assert.Equal(t, ".parquet", filepath.Ext(f.Path))

		data, err := afero.ReadFile(fs, f.Path)
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, "PAR1", string(data[:4]))
		assert.Equal(t, "PAR1", string(data[len(data)-4:]))
	}
}

func TestResult_ExportUnsupportedFormat(t *testing.T) {
	result := runCarPipeline(t)
	defer result.Release()

	_, err := result.ExportTo(afero.NewMemMapFs(), "out", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported export format "json"`)
}

func TestResult_ExportOS(t *testing.T) {
	result := runCarPipeline(t)
	defer result.Release()

	dir := filepath.Join(t.TempDir(), "nested")
	files, err := result.Export(dir, preprocess.FormatCSV)
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.FileExists(t, filepath.Join(dir, "X_test.csv"))
}
