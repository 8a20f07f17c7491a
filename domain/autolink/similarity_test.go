package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_IdenticalVectors(t *testing.T) {
	v := []float32{0.5, 0.5, 0.5}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, Cosine(a, b), 1e-9)
}

func TestCosine_OppositeVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	assert.InDelta(t, -1.0, Cosine(a, b), 1e-9)
}

func TestCosine_ZeroNormScoresZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{1, 2, 3}

	assert.Equal(t, 0.0, Cosine(zero, other))
	assert.Equal(t, 0.0, Cosine(other, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosine_MismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
}

func TestCosineDistance(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 1.0, CosineDistance(a, b), 1e-9)
	assert.InDelta(t, 0.0, CosineDistance(a, a), 1e-9)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
}

func TestScoreAgainst_OrdersBySimilarityDescending(t *testing.T) {
	anchor := []float32{1, 0}
	candidates := map[string][]float32{
		"node-far":  {0, 1},
		"node-near": {1, 0.1},
		"node-mid":  {1, 1},
	}

	scored := ScoreAgainst(anchor, candidates)

	assert.Len(t, scored, 3)
	assert.Equal(t, "node-near", scored[0].NodeID)
	assert.Equal(t, "node-mid", scored[1].NodeID)
	assert.Equal(t, "node-far", scored[2].NodeID)
}

func TestScoreAgainst_TiesBreakByNodeIDAscending(t *testing.T) {
	anchor := []float32{1, 0}
	// Both candidates are exact copies of the anchor direction.
	candidates := map[string][]float32{
		"node-b": {2, 0},
		"node-a": {3, 0},
	}

	scored := ScoreAgainst(anchor, candidates)

	assert.Equal(t, "node-a", scored[0].NodeID)
	assert.Equal(t, "node-b", scored[1].NodeID)
	assert.InDelta(t, scored[0].Similarity, scored[1].Similarity, 1e-9)
}

func TestScoreAgainst_ZeroNormAnchorScoresAllZero(t *testing.T) {
	anchor := []float32{0, 0}
	candidates := map[string][]float32{
		"node-a": {1, 0},
		"node-b": {0, 1},
	}

	scored := ScoreAgainst(anchor, candidates)

	assert.Len(t, scored, 2)
	for _, s := range scored {
		assert.Equal(t, 0.0, s.Similarity)
	}
}
