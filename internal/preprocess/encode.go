package preprocess

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// sortedDistinct returns the distinct non-null values in ascending order
func sortedDistinct[T constraints.Ordered](values []T, valid []bool) []T {
	seen := make(map[T]struct{}, len(values))
	distinct := make([]T, 0)
	for i, v := range values {
		if !valid[i] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	slices.Sort(distinct)
	return distinct
}

// LabelCodes maps every non-null value to its index among the sorted distinct
// values. classes[code] recovers the original value. Null rows get code 0 and
// should be masked with valid.
func LabelCodes[T constraints.Ordered](values []T, valid []bool) (codes []int64, classes []T) {
	classes = sortedDistinct(values, valid)
	index := make(map[T]int64, len(classes))
	for i, c := range classes {
		index[c] = int64(i)
	}

	codes = make([]int64, len(values))
	for i, v := range values {
		if valid[i] {
			codes[i] = index[v]
		}
	}
	return codes, classes
}

// Mode returns the most frequent non-null value, breaking ties by taking the
// smallest. ok is false when there are no non-null values.
func Mode[T constraints.Ordered](values []T, valid []bool) (mode T, ok bool) {
	counts := make(map[T]int, len(values))
	for i, v := range values {
		if valid[i] {
			counts[v]++
		}
	}

	best := -1
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}
	return mode, best > 0
}
