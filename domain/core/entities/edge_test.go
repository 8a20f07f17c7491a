package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

func TestNewEdge_CanonicalEndpointOrder(t *testing.T) {
	profileID := valueobjects.NewProfileID()
	a, err := valueobjects.NewNodeIDFromString("aaaaaaaa-0000-0000-0000-000000000000")
	require.NoError(t, err)
	b, err := valueobjects.NewNodeIDFromString("bbbbbbbb-0000-0000-0000-000000000000")
	require.NoError(t, err)

	forward, err := NewEdge(profileID, a, b, 0.7, "default")
	require.NoError(t, err)
	reverse, err := NewEdge(profileID, b, a, 0.7, "default")
	require.NoError(t, err)

	assert.True(t, forward.SourceID().Equals(reverse.SourceID()))
	assert.True(t, forward.TargetID().Equals(reverse.TargetID()))
	assert.Equal(t, forward.PairKey(), reverse.PairKey())
}

func TestNewEdge_RejectsSelfLink(t *testing.T) {
	profileID := valueobjects.NewProfileID()
	id := valueobjects.NewNodeID()

	_, err := NewEdge(profileID, id, id, 0.5, "default")

	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrSelfReferentialEdge)
}

func TestNewEdge_ClampsWeight(t *testing.T) {
	profileID := valueobjects.NewProfileID()
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()

	over, err := NewEdge(profileID, a, b, 1.7, "custom")
	require.NoError(t, err)
	assert.Equal(t, 1.0, over.Weight())

	under, err := NewEdge(profileID, a, b, -0.3, "custom")
	require.NoError(t, err)
	assert.Equal(t, 0.0, under.Weight())
}

func TestEdge_Other(t *testing.T) {
	profileID := valueobjects.NewProfileID()
	a := valueobjects.NewNodeID()
	b := valueobjects.NewNodeID()
	c := valueobjects.NewNodeID()

	edge, err := NewEdge(profileID, a, b, 0.9, "strict")
	require.NoError(t, err)

	other, ok := edge.Other(a)
	require.True(t, ok)
	assert.True(t, other.Equals(b))

	_, ok = edge.Other(c)
	assert.False(t, ok)
}
