package model

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/transitlab/railcast/internal/feature"
)

// ForestModel is an ensemble of bagged regression trees. Predictions
// average the trees; importances sum impurity decrease per feature.
type ForestModel struct {
	schema feature.Schema

	Trees []Tree `json:"trees"`

	// FeatureGain accumulates variance reduction per feature across all
	// trees, normalized to sum to 1 at fit time.
	FeatureGain []float64 `json:"feature_gain"`
}

// Tree is a regression tree stored as a flat node slice. Index 0 is the
// root; children are referenced by index so the structure serializes
// directly to JSON.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is either a split (Left/Right >= 0) or a leaf (Left == -1).
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (t *Tree) predict(features []float64) float64 {
	i := 0
	for t.Nodes[i].Left >= 0 {
		n := t.Nodes[i]
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

func fitForest(schema feature.Schema, xs [][]float64, ys []float64, opts Options) (*ForestModel, error) {
	m := &ForestModel{
		schema:      schema,
		Trees:       make([]Tree, opts.NEstimators),
		FeatureGain: make([]float64, len(schema)),
	}

	for t := 0; t < opts.NEstimators; t++ {
		// One source per tree keeps fits reproducible regardless of
		// iteration order.
		rng := rand.New(rand.NewSource(opts.Seed + int64(t)))

		sample := make([]int, len(xs))
		for i := range sample {
			sample[i] = rng.Intn(len(xs))
		}

		b := treeBuilder{
			xs:             xs,
			ys:             ys,
			maxDepth:       opts.MaxDepth,
			minSamplesLeaf: opts.MinSamplesLeaf,
			gain:           m.FeatureGain,
		}
		b.grow(sample, 0)
		m.Trees[t] = Tree{Nodes: b.nodes}
	}

	var total float64
	for _, g := range m.FeatureGain {
		total += g
	}
	if total > 0 {
		for i := range m.FeatureGain {
			m.FeatureGain[i] /= total
		}
	}

	return m, nil
}

func (m *ForestModel) Kind() Kind { return KindRandomForest }

func (m *ForestModel) Schema() feature.Schema { return m.schema }

func (m *ForestModel) Predict(features []float64) (float64, error) {
	if err := checkVector(m.schema, features); err != nil {
		return 0, err
	}
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("%w: forest has no trees", ErrLoad)
	}

	var sum float64
	for i := range m.Trees {
		sum += m.Trees[i].predict(features)
	}
	return sum / float64(len(m.Trees)), nil
}

// Importances returns the normalized variance-reduction share of each
// feature, in schema order.
func (m *ForestModel) Importances() ([]float64, error) {
	if len(m.FeatureGain) != len(m.schema) {
		return nil, fmt.Errorf("%w: importance vector has %d entries for %d features",
			ErrSchemaMismatch, len(m.FeatureGain), len(m.schema))
	}
	out := make([]float64, len(m.FeatureGain))
	copy(out, m.FeatureGain)
	return out, nil
}

type treeBuilder struct {
	xs             [][]float64
	ys             []float64
	maxDepth       int
	minSamplesLeaf int
	gain           []float64
	nodes          []Node
}

// grow builds the subtree over the given sample indices and returns the
// node index, appending to b.nodes.
func (b *treeBuilder) grow(sample []int, depth int) int {
	mean, variance := b.stats(sample)

	if depth >= b.maxDepth || len(sample) < 2*b.minSamplesLeaf || variance == 0 {
		return b.leaf(mean)
	}

	featIdx, threshold, gain, ok := b.bestSplit(sample, variance)
	if !ok {
		return b.leaf(mean)
	}

	var left, right []int
	for _, i := range sample {
		if b.xs[i][featIdx] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minSamplesLeaf || len(right) < b.minSamplesLeaf {
		return b.leaf(mean)
	}

	b.gain[featIdx] += gain * float64(len(sample))

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: featIdx, Threshold: threshold})
	b.nodes[idx].Left = b.grow(left, depth+1)
	b.nodes[idx].Right = b.grow(right, depth+1)
	return idx
}

func (b *treeBuilder) leaf(value float64) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Left: -1, Right: -1, Value: value})
	return idx
}

func (b *treeBuilder) stats(sample []int) (mean, variance float64) {
	for _, i := range sample {
		mean += b.ys[i]
	}
	mean /= float64(len(sample))
	for _, i := range sample {
		d := b.ys[i] - mean
		variance += d * d
	}
	variance /= float64(len(sample))
	return mean, variance
}

// bestSplit scans every feature and every midpoint between adjacent
// distinct values, maximizing variance reduction.
func (b *treeBuilder) bestSplit(sample []int, parentVar float64) (featIdx int, threshold, gain float64, ok bool) {
	nFeatures := len(b.xs[sample[0]])
	bestGain := 0.0

	for f := 0; f < nFeatures; f++ {
		ordered := make([]int, len(sample))
		copy(ordered, sample)
		sort.Slice(ordered, func(a, c int) bool {
			return b.xs[ordered[a]][f] < b.xs[ordered[c]][f]
		})

		for s := 1; s < len(ordered); s++ {
			lo := b.xs[ordered[s-1]][f]
			hi := b.xs[ordered[s]][f]
			if lo == hi {
				continue
			}

			mid := (lo + hi) / 2
			g := parentVar - b.splitVariance(sample, f, mid)
			if g > bestGain {
				bestGain = g
				featIdx = f
				threshold = mid
				ok = true
			}
		}
	}

	return featIdx, threshold, bestGain, ok
}

// splitVariance returns the size-weighted variance of the two partitions.
func (b *treeBuilder) splitVariance(sample []int, f int, threshold float64) float64 {
	var nL, nR float64
	var sumL, sumR float64
	for _, i := range sample {
		if b.xs[i][f] <= threshold {
			nL++
			sumL += b.ys[i]
		} else {
			nR++
			sumR += b.ys[i]
		}
	}
	if nL == 0 || nR == 0 {
		return parentVarSentinel
	}

	meanL := sumL / nL
	meanR := sumR / nR
	var ssL, ssR float64
	for _, i := range sample {
		if b.xs[i][f] <= threshold {
			d := b.ys[i] - meanL
			ssL += d * d
		} else {
			d := b.ys[i] - meanR
			ssR += d * d
		}
	}
	n := nL + nR
	return (ssL + ssR) / n
}

// parentVarSentinel makes degenerate splits never win.
const parentVarSentinel = 1e18
