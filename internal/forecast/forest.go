package forecast

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	// DefaultTrees is the ensemble size used by DefaultForecaster.
	DefaultTrees = 200
	// DefaultSeed keeps forest training reproducible.
	DefaultSeed = 42
)

// RandomForest is a bagged ensemble of regression trees. Each tree is grown
// to purity on a bootstrap sample, considering every feature at each split.
type RandomForest struct {
	Trees           int
	Seed            int64
	MinSamplesSplit int

	forest   []regressionTree
	features int
}

// NewRandomForest returns an unfitted forest of the given size and seed.
func NewRandomForest(trees int, seed int64) *RandomForest {
	return &RandomForest{
		Trees:           trees,
		Seed:            seed,
		MinSamplesSplit: 2,
	}
}

func (f *RandomForest) Fit(x [][]float64, y []float64) error {
	p, err := checkTrainingSet(x, y)
	if err != nil {
		return err
	}
	if f.Trees < 1 {
		return fmt.Errorf("random forest needs at least one tree, got %d", f.Trees)
	}
	minSplit := max(f.MinSamplesSplit, 2)

	rng := rand.New(rand.NewSource(f.Seed))
	n := len(x)
	forest := make([]regressionTree, f.Trees)
	for t := range forest {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		b := treeBuilder{x: x, y: y, features: p, minSplit: minSplit}
		b.grow(sample)
		forest[t] = regressionTree{nodes: b.nodes}
	}

	f.forest = forest
	f.features = p
	return nil
}

func (f *RandomForest) Predict(x [][]float64) ([]float64, error) {
	if len(f.forest) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != f.features {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), f.features)
		}
		var sum float64
		for _, t := range f.forest {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.forest))
	}
	return out, nil
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      int
	right     int
}

type regressionTree struct {
	nodes []treeNode
}

func (t regressionTree) predict(row []float64) float64 {
	n := t.nodes[0]
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	features int
	minSplit int
	nodes    []treeNode
}

// grow appends the subtree for samples and returns its root index.
func (b *treeBuilder) grow(samples []int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{leaf: true, value: b.mean(samples)})

	if len(samples) < b.minSplit || b.pure(samples) {
		return idx
	}

	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	l := b.grow(left)
	r := b.grow(right)
	b.nodes[idx] = treeNode{
		feature:   feature,
		threshold: threshold,
		left:      l,
		right:     r,
		value:     b.nodes[idx].value,
	}
	return idx
}

func (b *treeBuilder) mean(samples []int) float64 {
	var sum float64
	for _, s := range samples {
		sum += b.y[s]
	}
	return sum / float64(len(samples))
}

func (b *treeBuilder) pure(samples []int) bool {
	first := b.y[samples[0]]
	for _, s := range samples[1:] {
		if b.y[s] != first {
			return false
		}
	}
	return true
}

// bestSplit finds the feature and threshold minimizing the summed squared
// error of the two children. Thresholds sit halfway between distinct values.
func (b *treeBuilder) bestSplit(samples []int) (int, float64, bool) {
	n := len(samples)
	sorted := make([]int, n)

	var totalSum, totalSq float64
	for _, s := range samples {
		totalSum += b.y[s]
		totalSq += b.y[s] * b.y[s]
	}

	bestFeature, bestThreshold := -1, 0.0
	bestCost := 0.0
	for f := 0; f < b.features; f++ {
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			v := b.y[sorted[k-1]]
			leftSum += v
			leftSq += v * v

			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			cost := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if bestFeature < 0 || cost < bestCost {
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold >= hi {
					bestThreshold = lo
				}
				bestCost = cost
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}
