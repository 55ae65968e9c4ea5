package testutil_test

import (
	"os"
	"strings"
	"testing"

	"github.com/paveg/tabprep/internal/series"
	"github.com/paveg/tabprep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryTest(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	require.NotNil(t, mem.Allocator)

	s := series.New("x", []float64{1, 2, 3}, mem.Allocator)
	assert.Equal(t, 3, s.Len())
	s.Release()
}

func TestWriteCarCSV(t *testing.T) {
	path := testutil.WriteCarCSV(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.CarCSV, string(data))

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, testutil.CarRows+1)
}

func TestCreateCarDataFrame(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateCarDataFrame(t, mem.Allocator)
	defer df.Release()

	testutil.AssertDataFrameNotEmpty(t, df)
	assert.Equal(t, testutil.CarRows, df.Len())
	testutil.AssertDataFrameHasColumns(t, df, []string{
		"numerical_column", "categorical_column", "categorical_column1", "categorical_column2",
		"another_categorical_column", "numerical_column1", "numerical_column2", "torque",
		"feature1", "feature2", "target_column",
	})

	numerical, _ := df.Column("numerical_column")
	assert.Equal(t, 1, numerical.NullCount())
	assert.True(t, numerical.IsNull(1))
}

func TestAssertDataFrameEqual(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	a := testutil.CreateCarDataFrame(t, mem.Allocator)
	defer a.Release()
	b := testutil.CreateCarDataFrame(t, mem.Allocator)
	defer b.Release()

	testutil.AssertDataFrameEqual(t, a, b)
}
