package autolink

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of two vectors. Zero-norm or
// mismatched vectors score 0: a degenerate vector is maximally dissimilar to
// everything, it is not an error.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance returns 1 - Cosine(a, b), the distance unit used by the
// vector index and the MaxDistance threshold.
func CosineDistance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}

// Clamp01 clamps v into [0, 1]. Edge weights are always stored clamped.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Scored pairs a candidate node with its similarity to the anchor.
type Scored struct {
	NodeID     string
	Similarity float64
}

// ScoreAgainst computes cosine similarity of the anchor vector against each
// candidate vector and returns the results ordered by similarity descending,
// node ID ascending on exact ties. This is the brute-force fallback path for
// small or unindexed corpora.
func ScoreAgainst(anchor []float32, candidates map[string][]float32) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for id, vec := range candidates {
		scored = append(scored, Scored{
			NodeID:     id,
			Similarity: Cosine(anchor, vec),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].NodeID < scored[j].NodeID
	})

	return scored
}
