package entities

import (
	"fmt"
	"time"

	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// Edge is an undirected link between two ideas in the same profile.
// The endpoint pair is stored in canonical order (lexicographically
// smaller ID first) so that A-B and B-A are the same edge.
type Edge struct {
	id         string
	profileID  valueobjects.ProfileID
	sourceID   valueobjects.NodeID
	targetID   valueobjects.NodeID
	weight     float64
	provenance string
	createdAt  time.Time
}

// NewEdge creates an edge between two ideas with weight clamped to [0, 1].
// Provenance records which policy produced the link ("default", "strict",
// "loose", "custom", or "manual").
func NewEdge(profileID valueobjects.ProfileID, a, b valueobjects.NodeID, weight float64, provenance string) (*Edge, error) {
	if profileID.IsZero() {
		return nil, pkgerrors.NewValidationError("profileID cannot be empty")
	}
	if a.IsZero() || b.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if a.Equals(b) {
		return nil, pkgerrors.ErrSelfReferentialEdge
	}

	source, target := canonicalPair(a, b)

	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	return &Edge{
		id:         valueobjects.NewNodeID().String(),
		profileID:  profileID,
		sourceID:   source,
		targetID:   target,
		weight:     weight,
		provenance: provenance,
		createdAt:  time.Now(),
	}, nil
}

// ReconstructEdge rebuilds an edge from repository data
func ReconstructEdge(id string, profileID valueobjects.ProfileID, sourceID, targetID valueobjects.NodeID, weight float64, provenance string, createdAt time.Time) *Edge {
	source, target := canonicalPair(sourceID, targetID)
	return &Edge{
		id:         id,
		profileID:  profileID,
		sourceID:   source,
		targetID:   target,
		weight:     weight,
		provenance: provenance,
		createdAt:  createdAt,
	}
}

// ID returns the edge's unique identifier
func (e *Edge) ID() string {
	return e.id
}

// ProfileID returns the owning profile's ID
func (e *Edge) ProfileID() valueobjects.ProfileID {
	return e.profileID
}

// SourceID returns the canonically-first endpoint
func (e *Edge) SourceID() valueobjects.NodeID {
	return e.sourceID
}

// TargetID returns the canonically-second endpoint
func (e *Edge) TargetID() valueobjects.NodeID {
	return e.targetID
}

// Weight returns the link weight in [0, 1]
func (e *Edge) Weight() float64 {
	return e.weight
}

// Provenance returns the policy name that produced this edge
func (e *Edge) Provenance() string {
	return e.provenance
}

// CreatedAt returns when the edge was written
func (e *Edge) CreatedAt() time.Time {
	return e.createdAt
}

// Connects reports whether the edge touches the given node
func (e *Edge) Connects(id valueobjects.NodeID) bool {
	return e.sourceID.Equals(id) || e.targetID.Equals(id)
}

// Other returns the endpoint opposite to the given node
func (e *Edge) Other(id valueobjects.NodeID) (valueobjects.NodeID, bool) {
	switch {
	case e.sourceID.Equals(id):
		return e.targetID, true
	case e.targetID.Equals(id):
		return e.sourceID, true
	default:
		return valueobjects.NodeID{}, false
	}
}

// PairKey returns a stable key for the endpoint pair, used for deduplication
func (e *Edge) PairKey() string {
	return EdgePairKey(e.sourceID, e.targetID)
}

// EdgePairKey builds the canonical dedupe key for a pair of node IDs
func EdgePairKey(a, b valueobjects.NodeID) string {
	source, target := canonicalPair(a, b)
	return fmt.Sprintf("%s|%s", source.String(), target.String())
}

func canonicalPair(a, b valueobjects.NodeID) (valueobjects.NodeID, valueobjects.NodeID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}
