// Package classifier implements a seeded random forest for binary labels and
// the evaluation report used after training.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	ErrEmptyTrainingSet  = errors.New("empty_training_set")
	ErrDimensionMismatch = errors.New("dimension_mismatch")
	ErrUndefinedFeature  = errors.New("undefined_feature")
	ErrInvalidLabel      = errors.New("invalid_label")
	ErrInvalidConfig     = errors.New("invalid_classifier_config")
)

const (
	DefaultNumTrees        = 100
	DefaultMinSamplesSplit = 2
)

type Config struct {
	NumTrees int
	// MaxDepth of 0 grows trees until leaves are pure.
	MaxDepth        int
	MinSamplesSplit int
	// MaxFeatures of 0 uses floor(sqrt(p)).
	MaxFeatures int
	Seed        uint64
}

func (c Config) withDefaults() Config {
	if c.NumTrees == 0 {
		c.NumTrees = DefaultNumTrees
	}
	if c.MinSamplesSplit == 0 {
		c.MinSamplesSplit = DefaultMinSamplesSplit
	}
	return c
}

// Forest is safe for concurrent prediction once fitted.
type Forest struct {
	NumFeatures int       `json:"num_features"`
	Seed        uint64    `json:"seed"`
	Trees       []Tree    `json:"trees"`
	Importances []float64 `json:"importances"`
}

// Fit grows cfg.NumTrees trees, each on a bootstrap sample drawn from a PCG
// stream keyed by (seed, tree index). Identical inputs produce identical
// forests.
func Fit(x [][]float64, y []int, cfg Config) (*Forest, error) {
	cfg = cfg.withDefaults()
	if len(x) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	if cfg.NumTrees < 0 || cfg.MaxDepth < 0 || cfg.MinSamplesSplit < 2 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidConfig, cfg)
	}

	p := len(x[0])
	if p == 0 {
		return nil, fmt.Errorf("%w: no features", ErrDimensionMismatch)
	}
	for i, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), p)
		}
		if err := checkDefined(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("%w: row %d label %d", ErrInvalidLabel, i, y[i])
		}
	}

	mtry := cfg.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(p)))
	}
	mtry = max(1, min(mtry, p))

	forest := &Forest{
		NumFeatures: p,
		Seed:        cfg.Seed,
		Trees:       make([]Tree, 0, cfg.NumTrees),
		Importances: make([]float64, p),
	}

	n := len(x)
	for t := 0; t < cfg.NumTrees; t++ {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)+1))
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}

		b := &treeBuilder{
			x:           x,
			y:           y,
			maxDepth:    cfg.MaxDepth,
			minSplit:    cfg.MinSamplesSplit,
			maxFeatures: mtry,
			rng:         rng,
			importance:  make([]float64, p),
		}
		b.build(sample, 0)
		forest.Trees = append(forest.Trees, Tree{Nodes: b.nodes})

		total := 0.0
		for _, v := range b.importance {
			total += v
		}
		if total > 0 {
			for f, v := range b.importance {
				forest.Importances[f] += v / total
			}
		}
	}

	if cfg.NumTrees > 0 {
		for f := range forest.Importances {
			forest.Importances[f] /= float64(cfg.NumTrees)
		}
	}
	return forest, nil
}

// PredictProba returns the mean positive-class leaf fraction across trees.
func (f *Forest) PredictProba(x []float64) (float64, error) {
	if len(x) != f.NumFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, len(x), f.NumFeatures)
	}
	if err := checkDefined(x); err != nil {
		return 0, err
	}
	if len(f.Trees) == 0 {
		return 0, nil
	}

	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// Predict returns label 1 only when the probability is strictly above 0.5.
func (f *Forest) Predict(x []float64) (int, float64, error) {
	prob, err := f.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}
	if prob > 0.5 {
		return 1, prob, nil
	}
	return 0, prob, nil
}

// Validate checks a decoded forest for structural consistency.
func (f *Forest) Validate() error {
	if f.NumFeatures <= 0 {
		return fmt.Errorf("%w: forest has %d features", ErrDimensionMismatch, f.NumFeatures)
	}
	for t, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidConfig, t)
		}
		for i, n := range tree.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= f.NumFeatures ||
				n.Left <= i || n.Left >= len(tree.Nodes) ||
				n.Right <= i || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d", ErrInvalidConfig, t, i)
			}
		}
	}
	return nil
}

func checkDefined(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %d", ErrUndefinedFeature, i)
		}
	}
	return nil
}
