package preprocess_test

import (
	"testing"

	"github.com/paveg/tabprep/internal/preprocess"
	"github.com/stretchr/testify/assert"
)

func TestLabelCodes(t *testing.T) {
	t.Run("sorted bijection", func(t *testing.T) {
		values := []string{"Petrol", "Diesel", "CNG", "Diesel", "LPG"}
		valid := []bool{true, true, true, true, true}

		codes, classes := preprocess.LabelCodes(values, valid)

		assert.Equal(t, []string{"CNG", "Diesel", "LPG", "Petrol"}, classes)
		assert.Equal(t, []int64{3, 1, 0, 1, 2}, codes)
		for i, code := range codes {
			assert.Equal(t, values[i], classes[code])
		}
	})

	t.Run("nulls are not classes", func(t *testing.T) {
		codes, classes := preprocess.LabelCodes([]int64{30, 0, 10}, []bool{true, false, true})

		assert.Equal(t, []int64{10, 30}, classes)
		assert.Equal(t, []int64{1, 0, 0}, codes)
	})
}

func TestMode(t *testing.T) {
	t.Run("most frequent", func(t *testing.T) {
		mode, ok := preprocess.Mode([]string{"A", "B", "A", "C"}, []bool{true, true, true, true})
		assert.True(t, ok)
		assert.Equal(t, "A", mode)
	})

	t.Run("ties take the smallest", func(t *testing.T) {
		mode, ok := preprocess.Mode([]string{"b", "a", "b", "a", "c"}, []bool{true, true, true, true, true})
		assert.True(t, ok)
		assert.Equal(t, "a", mode)

		num, ok := preprocess.Mode([]int64{9, 3, 9, 3}, []bool{true, true, true, true})
		assert.True(t, ok)
		assert.Equal(t, int64(3), num)
	})

	t.Run("nulls are ignored", func(t *testing.T) {
		mode, ok := preprocess.Mode([]string{"", "", "x"}, []bool{false, false, true})
		assert.True(t, ok)
		assert.Equal(t, "x", mode)
	})

	t.Run("no values", func(t *testing.T) {
		mode, ok := preprocess.Mode([]float64{0, 0}, []bool{false, false})
		assert.False(t, ok)
		assert.Zero(t, mode)
	})
}
