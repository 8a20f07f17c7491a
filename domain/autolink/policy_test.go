package autolink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestDecide_AcceptsOnSimilarityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.8
	cfg.MaxDistance = 0 // similarity is the only road in

	accepted := Decide([]Candidate{
		{NodeID: "high", Similarity: f(0.95)},
		{NodeID: "low", Similarity: f(0.5)},
	}, cfg)

	require.Len(t, accepted, 1)
	assert.Equal(t, "high", accepted[0].NodeID)
	assert.InDelta(t, 0.95, accepted[0].Weight, 1e-9)
}

func TestDecide_AcceptsOnDistanceThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.99 // similarity road closed
	cfg.MaxDistance = 0.3

	accepted := Decide([]Candidate{
		{NodeID: "near", Distance: f(0.2)},
		{NodeID: "far", Distance: f(0.9)},
	}, cfg)

	require.Len(t, accepted, 1)
	assert.Equal(t, "near", accepted[0].NodeID)
	assert.InDelta(t, 0.8, accepted[0].Weight, 1e-9)
}

func TestDecide_EitherThresholdSuffices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.9
	cfg.MaxDistance = 0.5

	// Fails the similarity bar but passes the distance bar.
	accepted := Decide([]Candidate{
		{NodeID: "n1", Similarity: f(0.6), Distance: f(0.4)},
	}, cfg)

	require.Len(t, accepted, 1)
	// Similarity wins the weight when both are known.
	assert.InDelta(t, 0.6, accepted[0].Weight, 1e-9)
}

func TestDecide_MaxEdgesKeepsBestCandidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.5
	cfg.MaxEdges = 1

	accepted := Decide([]Candidate{
		{NodeID: "good", Similarity: f(0.7)},
		{NodeID: "best", Similarity: f(0.9)},
	}, cfg)

	require.Len(t, accepted, 1)
	assert.Equal(t, "best", accepted[0].NodeID)
}

func TestDecide_TiesAtCutoffBreakByNodeID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.5
	cfg.MaxEdges = 1

	accepted := Decide([]Candidate{
		{NodeID: "node-b", Similarity: f(0.8)},
		{NodeID: "node-a", Similarity: f(0.8)},
	}, cfg)

	require.Len(t, accepted, 1)
	assert.Equal(t, "node-a", accepted[0].NodeID)
}

func TestDecide_StrictMutualRejectsOneWayNeighbors(t *testing.T) {
	cfg := StrictConfig()
	cfg.MinCosine = 0.5

	accepted := Decide([]Candidate{
		{NodeID: "mutual", Similarity: f(0.9), Mutual: true},
		{NodeID: "one-way", Similarity: f(0.95), Mutual: false},
	}, cfg)

	require.Len(t, accepted, 1)
	assert.Equal(t, "mutual", accepted[0].NodeID)
}

func TestDecide_MutualFlagIgnoredWithoutStrictMutual(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCosine = 0.5

	accepted := Decide([]Candidate{
		{NodeID: "one-way", Similarity: f(0.9), Mutual: false},
	}, cfg)

	assert.Len(t, accepted, 1)
}

func TestDecide_WeightsAlwaysClamped(t *testing.T) {
	cfg := LooseConfig()

	accepted := Decide([]Candidate{
		{NodeID: "over", Similarity: f(1.2)},
		{NodeID: "negative-distance", Distance: f(1.4)},
	}, cfg)

	for _, a := range accepted {
		assert.GreaterOrEqual(t, a.Weight, 0.0)
		assert.LessOrEqual(t, a.Weight, 1.0)
	}
}

func TestDecide_ZeroMaxEdgesLinksNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEdges = 0

	accepted := Decide([]Candidate{
		{NodeID: "n1", Similarity: f(0.99)},
	}, cfg)

	assert.Nil(t, accepted)
}

func TestDecide_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEdges = 3
	candidates := []Candidate{
		{NodeID: "c", Similarity: f(0.7)},
		{NodeID: "a", Similarity: f(0.9)},
		{NodeID: "b", Similarity: f(0.7)},
		{NodeID: "d", Similarity: f(0.2)},
	}

	first := Decide(candidates, cfg)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Decide(candidates, cfg))
	}

	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].NodeID)
	assert.Equal(t, "b", first[1].NodeID)
	assert.Equal(t, "c", first[2].NodeID)
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	cfg := DefaultConfig()
	candidates := []Candidate{
		{NodeID: "z", Similarity: f(0.6)},
		{NodeID: "a", Similarity: f(0.9)},
	}

	Decide(candidates, cfg)

	assert.Equal(t, "z", candidates[0].NodeID)
	assert.Equal(t, "a", candidates[1].NodeID)
}

func TestFromPreset(t *testing.T) {
	cfg, err := FromPreset("strict")
	require.NoError(t, err)
	assert.True(t, cfg.StrictMutual)
	assert.Equal(t, 0.75, cfg.MinCosine)

	cfg, err = FromPreset("loose")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxEdges)

	cfg, err = FromPreset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFromPreset_UnknownNameFailsLoudly(t *testing.T) {
	_, err := FromPreset("aggressive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_PRESET")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.MinCosine = 1.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.KNeighbors = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxEdges = -1
	assert.Error(t, bad.Validate())
}
