package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsolationForestNoTreesIsNeutral(t *testing.T) {
	f := &IsolationForest{}
	assert.Equal(t, 50, f.Score([]float64{1, 2}))
}

func TestIsolationForestAlgorithmTag(t *testing.T) {
	f := &IsolationForest{}
	assert.Equal(t, "isolation_forest", f.Algorithm())
}

func TestAveragePathLengthCMonotonic(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLengthC(1))
	assert.Equal(t, 0.0, averagePathLengthC(0))
	assert.Less(t, averagePathLengthC(10), averagePathLengthC(1000))
}

// shallowLeaf isolates every point in one split, mimicking an easily
// separable anomaly: path length 1 plus the leaf-size correction.
func TestIsolationTreePathLengthShallowLeaf(t *testing.T) {
	tree := &IsolationTree{
		Feature:   0,
		Threshold: 0.5,
		Left:      &IsolationTree{LeafSize: 1},
		Right:     &IsolationTree{LeafSize: 100},
	}
	shallow := tree.pathLength([]float64{0.1}, 0)
	deep := tree.pathLength([]float64{0.9}, 0)
	assert.Less(t, shallow, deep, "isolating to a size-1 leaf should score a shorter path than a size-100 leaf")
}

func TestIsolationForestScoreRange(t *testing.T) {
	trees := []*IsolationTree{
		{Feature: 0, Threshold: 0, Left: &IsolationTree{LeafSize: 1}, Right: &IsolationTree{LeafSize: 50}},
	}
	f := &IsolationForest{Trees: trees, SampleSize: 50, DecisionOffset: 0.5, LinearScale: 0.1}
	score := f.Score([]float64{-1})
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
