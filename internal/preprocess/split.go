package preprocess

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/validation"
)

// SeparateTarget splits df into the feature frame (every column but target)
// and a single-column label frame. Both are owned by the caller.
func SeparateTarget(df *dataframe.DataFrame, target string) (x, y *dataframe.DataFrame, err error) {
	if err := validation.ValidateColumns(df, "separate_target", target); err != nil {
		return nil, nil, err
	}
	return df.Drop(target), df.Select(target), nil
}

// Splitter partitions rows into a train and a test set. The test set holds
// ceil(n * TestSize) rows chosen by a permutation seeded from Seed, so the
// same input and seed always give the same partition.
type Splitter struct {
	TestSize float64
	Seed     uint64
	Mem      memory.Allocator // allocator for the partitions
}

// Indices returns the row indices of each partition for n rows. Rows keep the
// permuted order.
func (s Splitter) Indices(n int) (train, test []int, err error) {
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return nil, nil, errors.NewInvalidInputError(StepSplit,
			fmt.Sprintf("test size must be between 0 and 1 (exclusive), got %g", s.TestSize))
	}

	nTest := int(math.Ceil(float64(n) * s.TestSize))
	if nTest >= n {
		return nil, nil, errors.NewInvalidInputError(StepSplit,
			fmt.Sprintf("test size %g leaves no training rows out of %d", s.TestSize, n))
	}

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Split partitions the rows of x and y, which must have the same length.
func (s Splitter) Split(x, y *dataframe.DataFrame) (*Result, error) {
	if err := validation.ValidateLength(x.Len(), y.Len(), StepSplit, "features and labels"); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty(x, StepSplit); err != nil {
		return nil, err
	}

	trainIdx, testIdx, err := s.Indices(x.Len())
	if err != nil {
		return nil, err
	}

	result := &Result{}
	parts := []struct {
		dst     **dataframe.DataFrame
		src     *dataframe.DataFrame
		indices []int
	}{
		{&result.XTrain, x, trainIdx},
		{&result.XTest, x, testIdx},
		{&result.YTrain, y, trainIdx},
		{&result.YTest, y, testIdx},
	}
	for _, part := range parts {
		taken, err := part.src.Take(part.indices, allocator(s.Mem))
		if err != nil {
			result.Release()
			return nil, err
		}
		*part.dst = taken
	}

	return result, nil
}
