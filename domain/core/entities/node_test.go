package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
)

func mustText(t *testing.T, s string) valueobjects.IdeaText {
	t.Helper()
	text, err := valueobjects.NewIdeaText(s)
	require.NoError(t, err)
	return text
}

func TestNewNode_RaisesIdeaCaptured(t *testing.T) {
	profileID := valueobjects.NewProfileID()

	node, err := NewNode(profileID, mustText(t, "vector clocks order events"), []string{"vector", "clocks"})
	require.NoError(t, err)

	uncommitted := node.GetUncommittedEvents()
	require.Len(t, uncommitted, 1)

	captured, ok := uncommitted[0].(events.IdeaCaptured)
	require.True(t, ok)
	assert.Equal(t, "idea.captured", captured.GetEventType())
	assert.Equal(t, node.ID().String(), captured.GetAggregateID())
	assert.False(t, captured.HasVector)
	assert.Equal(t, []string{"vector", "clocks"}, captured.Tags)
}

func TestNewNode_RequiresProfile(t *testing.T) {
	_, err := NewNode(valueobjects.ProfileID{}, mustText(t, "orphan idea"), nil)
	assert.Error(t, err)
}

func TestNode_MarkEmbeddedUpdatesPendingEvent(t *testing.T) {
	node, err := NewNode(valueobjects.NewProfileID(), mustText(t, "idea with a vector"), nil)
	require.NoError(t, err)

	node.MarkEmbedded()

	assert.True(t, node.HasVector())
	captured := node.GetUncommittedEvents()[0].(events.IdeaCaptured)
	assert.True(t, captured.HasVector)
}

func TestNode_BelongsTo(t *testing.T) {
	owner := valueobjects.NewProfileID()
	stranger := valueobjects.NewProfileID()

	node, err := NewNode(owner, mustText(t, "isolation test"), nil)
	require.NoError(t, err)

	assert.True(t, node.BelongsTo(owner))
	assert.False(t, node.BelongsTo(stranger))
}

func TestNode_UpdateTextInvalidatesVector(t *testing.T) {
	node, err := NewNode(valueobjects.NewProfileID(), mustText(t, "first draft"), nil)
	require.NoError(t, err)
	node.MarkEmbedded()

	require.NoError(t, node.UpdateText(mustText(t, "second draft")))

	assert.False(t, node.HasVector())
	assert.Equal(t, 2, node.Version())
}

func TestNode_AddTagIsIdempotent(t *testing.T) {
	node, err := NewNode(valueobjects.NewProfileID(), mustText(t, "tagging"), nil)
	require.NoError(t, err)

	require.NoError(t, node.AddTag("graphs"))
	require.NoError(t, node.AddTag("graphs"))

	assert.Equal(t, []string{"graphs"}, node.Tags())
}
