package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// splitStream keeps the split shuffle independent of the per-tree streams,
// which use indexes 1..NumTrees.
const splitStream = 0

// TrainTestSplit shuffles 0..n-1 with a seeded PCG and holds out
// ceil(n*testRatio) indexes for testing. Both halves are returned sorted.
func TrainTestSplit(n int, testRatio float64, seed uint64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrEmptyTrainingSet, n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("%w: test ratio %v", ErrInvalidConfig, testRatio)
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	nTest = min(nTest, n-1)

	rng := rand.New(rand.NewPCG(seed, splitStream))
	perm := rng.Perm(n)

	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test, nil
}
