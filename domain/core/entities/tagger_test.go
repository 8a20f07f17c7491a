package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagger_ExtractsSignificantWords(t *testing.T) {
	tagger := NewTagger(0)

	tags := tagger.Tags("The quick brown fox jumps over the lazy dog")

	assert.Equal(t, []string{"quick", "brown", "jumps", "over", "lazy"}, tags)
}

func TestTagger_SkipsStopWordsAndShortWords(t *testing.T) {
	tagger := NewTagger(0)

	tags := tagger.Tags("this is a cat and that was the end")

	assert.Empty(t, tags)
}

func TestTagger_Deduplicates(t *testing.T) {
	tagger := NewTagger(0)

	tags := tagger.Tags("graph graph GRAPH graph!")

	assert.Equal(t, []string{"graph"}, tags)
}

func TestTagger_StripsPunctuation(t *testing.T) {
	tagger := NewTagger(0)

	tags := tagger.Tags("(distributed) systems, \"consensus\"!")

	assert.Equal(t, []string{"distributed", "systems", "consensus"}, tags)
}

func TestTagger_RespectsMaxTags(t *testing.T) {
	tagger := NewTagger(2)

	tags := tagger.Tags("alpha bravo charlie delta")

	assert.Equal(t, []string{"alpha", "bravo"}, tags)
}

func TestTagger_Overlap(t *testing.T) {
	tagger := NewTagger(0)

	assert.Equal(t, 2, tagger.Overlap(
		[]string{"graph", "vector", "index"},
		[]string{"vector", "graph", "cache"},
	))
	assert.Equal(t, 0, tagger.Overlap([]string{"graph"}, nil))
}
