package classifier

import (
	"math/rand/v2"
	"sort"
)

// Node is one node of a flattened CART tree. Leaves carry the fraction of
// positive samples that reached them; internal nodes route x[Feature] <=
// Threshold to Left and everything else to Right.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Prob      float64 `json:"prob,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Samples   int     `json:"samples"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Prob
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand

	nodes      []Node
	importance []float64
}

func (b *treeBuilder) build(idx []int, depth int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	n := len(idx)
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Samples: n})

	if pos == 0 || pos == n || n < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		b.nodes[self] = leaf(n, pos)
		return self
	}

	split, ok := b.bestSplit(idx, pos)
	if !ok {
		b.nodes[self] = leaf(n, pos)
		return self
	}
	b.importance[split.feature] += split.gain

	left := make([]int, 0, split.leftCount)
	right := make([]int, 0, n-split.leftCount)
	for _, i := range idx {
		if b.x[i][split.feature] <= split.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = Node{
		Feature:   split.feature,
		Threshold: split.threshold,
		Left:      l,
		Right:     r,
		Samples:   n,
	}
	return self
}

func leaf(n, pos int) Node {
	return Node{Leaf: true, Prob: float64(pos) / float64(n), Samples: n}
}

type candidate struct {
	feature   int
	threshold float64
	gain      float64
	leftCount int
}

// bestSplit scans a random subset of features for the threshold with the
// largest weighted gini decrease. Only strictly positive gains qualify.
func (b *treeBuilder) bestSplit(idx []int, pos int) (candidate, bool) {
	n := len(idx)
	parent := float64(n) * gini(pos, n)

	features := b.rng.Perm(len(b.x[0]))[:b.maxFeatures]
	sorted := make([]int, n)

	var best candidate
	found := false
	for _, f := range features {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		leftPos := 0
		for k := 1; k < n; k++ {
			leftPos += b.y[sorted[k-1]]
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}
			rightPos := pos - leftPos
			impurity := float64(k)*gini(leftPos, k) + float64(n-k)*gini(rightPos, n-k)
			gain := parent - impurity
			if gain <= 1e-12 || (found && gain <= best.gain) {
				continue
			}
			threshold := lo + (hi-lo)/2
			if threshold >= hi {
				threshold = lo
			}
			best = candidate{feature: f, threshold: threshold, gain: gain, leftCount: k}
			found = true
		}
	}
	return best, found
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}
