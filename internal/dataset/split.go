package dataset

import (
	"fmt"
	"math/rand"
)

// StratifiedSplit partitions the dataset into two parts with the given
// fraction going to the second part, preserving per-class proportions.
// The split is seeded and deterministic. Every class with at least two
// samples contributes at least one sample to each side.
func StratifiedSplit(d *Dataset, frac float64, seed int64) (*Dataset, *Dataset, error) {
	if frac <= 0 || frac >= 1 {
		return nil, nil, fmt.Errorf("split fraction must be in (0, 1), got %g", frac)
	}

	byClass := make([][]int, len(d.Labels))
	for i, y := range d.Y {
		byClass[y] = append(byClass[y], i)
	}

	rng := rand.New(rand.NewSource(seed))

	var first, second []int
	for _, indices := range byClass {
		if len(indices) == 0 {
			continue
		}
		shuffled := make([]int, len(indices))
		copy(shuffled, indices)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		n := int(float64(len(shuffled))*frac + 0.5)
		if len(shuffled) >= 2 {
			if n == 0 {
				n = 1
			}
			if n == len(shuffled) {
				n = len(shuffled) - 1
			}
		}
		second = append(second, shuffled[:n]...)
		first = append(first, shuffled[n:]...)
	}

	if len(first) == 0 || len(second) == 0 {
		return nil, nil, fmt.Errorf("split produced an empty partition (%d/%d)", len(first), len(second))
	}
	return d.subset(first), d.subset(second), nil
}

// Batches returns mini-batch index slices, optionally shuffled with the
// given generator. The final batch may be smaller than batchSize.
func Batches(n, batchSize int, rng *rand.Rand) [][]int {
	if batchSize <= 0 {
		batchSize = n
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	var batches [][]int
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		batches = append(batches, indices[start:end])
	}
	return batches
}
