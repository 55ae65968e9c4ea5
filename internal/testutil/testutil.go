// Package testutil provides fixtures shared by the package tests: allocator
// setup, a small car-listing table in CSV and DataFrame form, and common
// DataFrame assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CarCSV is a ten-row table using the default column names. numerical_column
// is missing in row 1 and categorical_column in row 3 (zero-based). Row 0 has
// the torque "190Nm@ 2000rpm", row 6 has no torque and a zero feature2.
const CarCSV = `numerical_column,categorical_column,categorical_column1,categorical_column2,another_categorical_column,numerical_column1,numerical_column2,torque,feature1,feature2,target_column
10,A,red,manual,Diesel,1,100,190Nm@ 2000rpm,10,2,100
,B,blue,auto,Petrol,2,200,250 Nm,20,4,200
30,A,green,manual,CNG,3,300,"22.4@ 1,750rpm",30,5,300
40,,red,auto,Diesel,4,400,113.75nm@ 4000rpm,40,8,400
50,B,blue,manual,Petrol,5,500,90 Nm,50,10,500
60,A,green,auto,Diesel,6,600,200 Nm,60,12,600
70,C,red,manual,LPG,7,700,,70,0,700
80,A,blue,auto,Petrol,8,800,300Nm,80,16,800
90,B,green,manual,Diesel,9,900,160 Nm,90,18,900
100,A,red,auto,CNG,10,1000,140 Nm,100,20,1000
`

// CarRows is the number of data rows in CarCSV
const CarRows = 10

// TestMemoryContext provides a memory allocator for a test.
type TestMemoryContext struct {
	Allocator memory.Allocator
	checked   *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every byte allocated through the context was freed.
func (tmc *TestMemoryContext) Release() {
	tmc.tb.Helper()
	tmc.checked.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for a test. Release reports any
// Arrow memory still held, so it should be deferred before the frames it
// checks are created.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	return &TestMemoryContext{
		Allocator: checked,
		checked:   checked,
		tb:        tb,
	}
}

// WriteCSV writes content to dir/name and returns the path
func WriteCSV(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCarCSV writes CarCSV into a fresh temporary directory and returns the path
func WriteCarCSV(tb testing.TB) string {
	tb.Helper()
	return WriteCSV(tb, tb.TempDir(), "cars.csv", CarCSV)
}

// CreateCarDataFrame builds the CarCSV table directly, with the kinds the
// default pipeline reads it with.
func CreateCarDataFrame(tb testing.TB, allocator memory.Allocator) *dataframe.DataFrame {
	tb.Helper()

	numerical, err := series.NewNullable("numerical_column",
		[]float64{10, 0, 30, 40, 50, 60, 70, 80, 90, 100},
		[]bool{true, false, true, true, true, true, true, true, true, true}, allocator)
	require.NoError(tb, err)

	categorical, err := series.NewNullable("categorical_column",
		[]string{"A", "B", "A", "", "B", "A", "C", "A", "B", "A"},
		[]bool{true, true, true, false, true, true, true, true, true, true}, allocator)
	require.NoError(tb, err)

	torque, err := series.NewNullable("torque",
		[]string{"190Nm@ 2000rpm", "250 Nm", "22.4@ 1,750rpm", "113.75nm@ 4000rpm", "90 Nm",
			"200 Nm", "", "300Nm", "160 Nm", "140 Nm"},
		[]bool{true, true, true, true, true, true, false, true, true, true}, allocator)
	require.NoError(tb, err)

	df, err := dataframe.NewSafe(
		numerical,
		categorical,
		series.New("categorical_column1",
			[]string{"red", "blue", "green", "red", "blue", "green", "red", "blue", "green", "red"}, allocator),
		series.New("categorical_column2",
			[]string{"manual", "auto", "manual", "auto", "manual", "auto", "manual", "auto", "manual", "auto"}, allocator),
		series.New("another_categorical_column",
			[]string{"Diesel", "Petrol", "CNG", "Diesel", "Petrol", "Diesel", "LPG", "Petrol", "Diesel", "CNG"}, allocator),
		series.New("numerical_column1", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, allocator),
		series.New("numerical_column2", []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}, allocator),
		torque,
		series.New("feature1", []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, allocator),
		series.New("feature2", []float64{2, 4, 5, 8, 10, 12, 0, 16, 18, 20}, allocator),
		series.New("target_column", []int64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}, allocator),
	)
	require.NoError(tb, err)
	require.NoError(tb, df.SetKind("torque", dataframe.KindText))
	return df
}

// AssertDataFrameEqual compares column names, order and every cell rendered as text.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	require.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")

	for _, colName := range expected.Columns() {
		expectedValues, expectedValid, err := expected.StringValues(colName)
		require.NoError(t, err)
		actualValues, actualValid, err := actual.StringValues(colName)
		require.NoError(t, err)

		assert.Equal(t, expectedValues, actualValues, "column %s data should match", colName)
		assert.Equal(t, expectedValid, actualValid, "column %s nulls should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Len(t, df.Columns(), len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Positive(t, df.Len(), "DataFrame should not be empty")
	assert.Positive(t, df.Width(), "DataFrame should have columns")
}
