package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplitSizesAndDisjoint(t *testing.T) {
	train, test, err := TrainTestSplit(101, 0.2, 42)
	require.NoError(t, err)

	assert.Len(t, test, 21)
	assert.Len(t, train, 80)

	seen := make(map[int]bool, 101)
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[i], "index %d assigned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 101)
}

func TestTrainTestSplitIsSeeded(t *testing.T) {
	trainA, testA, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)
	trainB, testB, err := TrainTestSplit(50, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)

	_, testC, err := TrainTestSplit(50, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, testA, testC)
}

func TestTrainTestSplitKeepsOneTrainingRow(t *testing.T) {
	train, test, err := TrainTestSplit(2, 0.9, 42)
	require.NoError(t, err)
	assert.Len(t, train, 1)
	assert.Len(t, test, 1)
}

func TestTrainTestSplitRejectsBadInput(t *testing.T) {
	_, _, err := TrainTestSplit(1, 0.2, 42)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, _, err = TrainTestSplit(10, 0, 42)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = TrainTestSplit(10, 1, 42)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
