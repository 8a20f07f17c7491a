package dynamodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

func TestNodeItem_RoundTripsThroughEntity(t *testing.T) {
	text, err := valueobjects.NewIdeaText("a durable thought")
	require.NoError(t, err)
	node, err := entities.NewNode(valueobjects.NewProfileID(), text, []string{"durability"})
	require.NoError(t, err)
	node.MarkEmbedded()

	item := newNodeItem(node)
	restored, err := item.toEntity()
	require.NoError(t, err)

	assert.True(t, restored.ID().Equals(node.ID()))
	assert.True(t, restored.ProfileID().Equals(node.ProfileID()))
	assert.Equal(t, node.Text().String(), restored.Text().String())
	assert.Equal(t, node.Tags(), restored.Tags())
	assert.True(t, restored.HasVector())
	assert.Equal(t, node.Version(), restored.Version())
}

func TestNodeItem_RejectsCorruptItems(t *testing.T) {
	text, err := valueobjects.NewIdeaText("a durable thought")
	require.NoError(t, err)
	node, err := entities.NewNode(valueobjects.NewProfileID(), text, nil)
	require.NoError(t, err)

	item := newNodeItem(node)
	item.NodeID = "not-a-uuid"

	_, err = item.toEntity()
	require.Error(t, err)

	item = newNodeItem(node)
	item.ProfileID = "also-not-a-uuid"

	_, err = item.toEntity()
	assert.Error(t, err)
}
