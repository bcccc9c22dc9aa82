package classifier

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable returns rows where label 1 iff x0 > 0.5, with x1 as noise.
func separable(n int, seed uint64) ([][]float64, []int) {
	rng := rand.New(rand.NewPCG(seed, 99))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		x[i] = []float64{rng.Float64(), rng.Float64(), float64(rng.IntN(4))}
		if x[i][0] > 0.5 {
			y[i] = 1
		}
	}
	return x, y
}

func TestFitIsDeterministic(t *testing.T) {
	x, y := separable(120, 1)
	cfg := Config{NumTrees: 25, Seed: 42}

	a, err := Fit(x, y, cfg)
	require.NoError(t, err)
	b, err := Fit(x, y, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	c, err := Fit(x, y, Config{NumTrees: 25, Seed: 43})
	require.NoError(t, err)
	assert.NotEqual(t, a.Trees, c.Trees)
}

func TestFitLearnsSeparableData(t *testing.T) {
	x, y := separable(300, 2)
	forest, err := Fit(x, y, Config{Seed: 42})
	require.NoError(t, err)
	assert.Len(t, forest.Trees, DefaultNumTrees)

	label, prob, err := forest.Predict([]float64{0.95, 0.3, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
	assert.Greater(t, prob, 0.5)

	label, prob, err = forest.Predict([]float64{0.05, 0.8, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	assert.Less(t, prob, 0.5)

	assert.Greater(t, forest.Importances[0], forest.Importances[1])
	sum := 0.0
	for _, v := range forest.Importances {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPredictProbabilityBounds(t *testing.T) {
	x, y := separable(80, 3)
	forest, err := Fit(x, y, Config{NumTrees: 10, Seed: 42})
	require.NoError(t, err)

	for _, row := range x {
		prob, err := forest.PredictProba(row)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, prob, 0.0)
		assert.LessOrEqual(t, prob, 1.0)
	}
}

func TestSingleClassTrainingSet(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []int{0, 0, 0}

	forest, err := Fit(x, y, Config{NumTrees: 5, Seed: 42})
	require.NoError(t, err)

	label, prob, err := forest.Predict([]float64{10, 10})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	assert.Equal(t, 0.0, prob)
}

func TestPredictRejectsUndefinedFeature(t *testing.T) {
	x, y := separable(40, 4)
	forest, err := Fit(x, y, Config{NumTrees: 3, Seed: 42})
	require.NoError(t, err)

	_, _, err = forest.Predict([]float64{math.NaN(), 0.1, 1})
	assert.ErrorIs(t, err, ErrUndefinedFeature)

	_, _, err = forest.Predict([]float64{0.1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFitValidatesInput(t *testing.T) {
	_, err := Fit(nil, nil, Config{})
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = Fit([][]float64{{1}, {2}}, []int{0}, Config{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Fit([][]float64{{1}, {2, 3}}, []int{0, 1}, Config{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Fit([][]float64{{1}, {math.NaN()}}, []int{0, 1}, Config{})
	assert.ErrorIs(t, err, ErrUndefinedFeature)

	_, err = Fit([][]float64{{1}, {2}}, []int{0, 2}, Config{})
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestMaxDepthLimitsTrees(t *testing.T) {
	x, y := separable(200, 5)
	forest, err := Fit(x, y, Config{NumTrees: 5, MaxDepth: 1, Seed: 42})
	require.NoError(t, err)

	for _, tree := range forest.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3)
	}
}

func TestForestJSONRoundTrip(t *testing.T) {
	x, y := separable(60, 6)
	forest, err := Fit(x, y, Config{NumTrees: 4, Seed: 42})
	require.NoError(t, err)

	raw, err := json.Marshal(forest)
	require.NoError(t, err)

	var decoded Forest
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NoError(t, decoded.Validate())

	for _, row := range x {
		want, err := forest.PredictProba(row)
		require.NoError(t, err)
		got, err := decoded.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestValidateRejectsBrokenTree(t *testing.T) {
	f := Forest{NumFeatures: 2, Trees: []Tree{{Nodes: []Node{{Feature: 5, Left: 1, Right: 2}, {Leaf: true}, {Leaf: true}}}}}
	assert.ErrorIs(t, f.Validate(), ErrInvalidConfig)

	f = Forest{NumFeatures: 2, Trees: []Tree{{Nodes: []Node{{Feature: 0, Left: 0, Right: 1}, {Leaf: true}}}}}
	assert.ErrorIs(t, f.Validate(), ErrInvalidConfig)
}
