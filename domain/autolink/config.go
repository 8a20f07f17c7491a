package autolink

import (
	pkgerrors "ideaweaver/pkg/errors"
)

// Config is an immutable bundle of linking thresholds. A Config is built per
// request from a preset or explicit overrides and is never persisted.
type Config struct {
	// MinCosine is the minimum cosine similarity for acceptance.
	MinCosine float64

	// MaxDistance is the maximum cosine distance (1 - cosine) for acceptance.
	// Acceptance is an OR over the two thresholds: a candidate passing either
	// one is linkable.
	MaxDistance float64

	// StrictMutual requires the anchor to appear in the candidate's own
	// nearest-neighbor set before an edge is accepted.
	StrictMutual bool

	// MaxEdges caps the number of edges created per anchor in one run.
	MaxEdges int

	// KNeighbors is the number of neighbors requested from the vector index.
	KNeighbors int

	// FallbackMinCorpusSize is the partition size below which the index is
	// not trusted and the brute-force cosine fallback runs instead.
	FallbackMinCorpusSize int
}

// Preset names form a closed, stable contract.
const (
	PresetDefault = "default"
	PresetStrict  = "strict"
	PresetLoose   = "loose"

	// ProvenanceCustom marks edges created from explicit overrides rather
	// than a named preset.
	ProvenanceCustom = "custom"
)

// DefaultConfig returns the default linking thresholds.
func DefaultConfig() Config {
	return Config{
		MinCosine:             0.55,
		MaxDistance:           0.85,
		StrictMutual:          false,
		MaxEdges:              5,
		KNeighbors:            5,
		FallbackMinCorpusSize: 5,
	}
}

// StrictConfig links only high-confidence neighbors and requires mutuality.
func StrictConfig() Config {
	return Config{
		MinCosine:             0.75,
		MaxDistance:           0.55,
		StrictMutual:          true,
		MaxEdges:              3,
		KNeighbors:            5,
		FallbackMinCorpusSize: 5,
	}
}

// LooseConfig links generously for sparse or exploratory corpora.
func LooseConfig() Config {
	return Config{
		MinCosine:             0.40,
		MaxDistance:           1.05,
		StrictMutual:          false,
		MaxEdges:              8,
		KNeighbors:            8,
		FallbackMinCorpusSize: 5,
	}
}

// FromPreset resolves a preset name to its Config. Unknown names fail loudly,
// they never fall back to the default.
func FromPreset(name string) (Config, error) {
	switch name {
	case PresetDefault, "":
		return DefaultConfig(), nil
	case PresetStrict:
		return StrictConfig(), nil
	case PresetLoose:
		return LooseConfig(), nil
	default:
		return Config{}, pkgerrors.ErrUnknownPreset.WithDetail("preset", name)
	}
}

// Presets lists the valid preset names.
func Presets() []string {
	return []string{PresetDefault, PresetStrict, PresetLoose}
}

// Validate checks threshold sanity for configs built from overrides.
func (c Config) Validate() error {
	if c.MinCosine < -1 || c.MinCosine > 1 {
		return pkgerrors.NewValidationError("min_cosine must be in [-1, 1]")
	}
	if c.MaxDistance < 0 || c.MaxDistance > 2 {
		return pkgerrors.NewValidationError("max_distance must be in [0, 2]")
	}
	if c.MaxEdges < 0 {
		return pkgerrors.NewValidationError("max_edges must not be negative")
	}
	if c.KNeighbors <= 0 {
		return pkgerrors.NewValidationError("k_neighbors must be positive")
	}
	if c.FallbackMinCorpusSize < 0 {
		return pkgerrors.NewValidationError("fallback_min_corpus_size must not be negative")
	}
	return nil
}
