package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

type edgeWriterFixture struct {
	nodes     *memNodeRepo
	edges     *memEdgeRepo
	writer    *EdgeWriter
	profileID valueobjects.ProfileID
}

func newEdgeWriterFixture(t *testing.T) *edgeWriterFixture {
	t.Helper()
	nodes := newMemNodeRepo()
	edges := newMemEdgeRepo()
	return &edgeWriterFixture{
		nodes:     nodes,
		edges:     edges,
		writer:    NewEdgeWriter(nodes, edges, zap.NewNop()),
		profileID: valueobjects.NewProfileID(),
	}
}

func (f *edgeWriterFixture) addNode(t *testing.T, profileID valueobjects.ProfileID, text string) *entities.Node {
	t.Helper()
	ideaText, err := valueobjects.NewIdeaText(text)
	require.NoError(t, err)
	node, err := entities.NewNode(profileID, ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, f.nodes.Save(context.Background(), node))
	return node
}

func TestEdgeWriter_WriteBatch(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	anchor := f.addNode(t, f.profileID, "anchor idea")
	first := f.addNode(t, f.profileID, "first neighbor")
	second := f.addNode(t, f.profileID, "second neighbor")

	edges, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: first.ID().String(), Weight: 0.9},
		{NodeID: second.ID().String(), Weight: 0.7},
	}, "knn")
	require.NoError(t, err)
	require.Len(t, edges, 2)

	for _, edge := range edges {
		assert.Equal(t, anchor.ID(), edge.SourceID())
		assert.Equal(t, "knn", edge.Provenance())
	}

	stored, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestEdgeWriter_WriteBatchSkipsExistingPairs(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	anchor := f.addNode(t, f.profileID, "anchor idea")
	neighbor := f.addNode(t, f.profileID, "neighbor idea")

	first, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: neighbor.ID().String(), Weight: 0.8},
	}, "knn")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Rewriting the same pair is a silent no-op, not an error.
	second, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: neighbor.ID().String(), Weight: 0.8},
	}, "knn")
	require.NoError(t, err)
	assert.Empty(t, second)

	stored, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestEdgeWriter_WriteBatchDedupesWithinBatch(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	anchor := f.addNode(t, f.profileID, "anchor idea")
	neighbor := f.addNode(t, f.profileID, "neighbor idea")

	edges, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: neighbor.ID().String(), Weight: 0.9},
		{NodeID: neighbor.ID().String(), Weight: 0.5},
	}, "knn")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
	assert.InDelta(t, 0.9, edges[0].Weight(), 1e-9)
}

func TestEdgeWriter_WriteBatchSkipsSelfLink(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	anchor := f.addNode(t, f.profileID, "anchor idea")

	edges, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: anchor.ID().String(), Weight: 1.0},
	}, "knn")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestEdgeWriter_WriteBatchRejectsForeignNode(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	anchor := f.addNode(t, f.profileID, "anchor idea")
	own := f.addNode(t, f.profileID, "own neighbor")
	foreign := f.addNode(t, valueobjects.NewProfileID(), "someone else's idea")

	edges, err := f.writer.WriteBatch(ctx, f.profileID, anchor.ID(), []autolink.Accepted{
		{NodeID: own.ID().String(), Weight: 0.9},
		{NodeID: foreign.ID().String(), Weight: 0.8},
	}, "knn")
	require.Error(t, err)
	assert.Empty(t, edges)

	var domainErr *pkgerrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, pkgerrors.ErrForeignNode.Code, domainErr.Code)

	// All-or-nothing: the valid edge must not have been written either.
	stored, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEdgeWriter_WriteManual(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	source := f.addNode(t, f.profileID, "source idea")
	target := f.addNode(t, f.profileID, "target idea")

	edge, err := f.writer.WriteManual(ctx, f.profileID, source.ID(), target.ID(), 0.6)
	require.NoError(t, err)
	assert.Equal(t, "manual", edge.Provenance())
	assert.InDelta(t, 0.6, edge.Weight(), 1e-9)
}

func TestEdgeWriter_WriteManualRejectsDuplicate(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	source := f.addNode(t, f.profileID, "source idea")
	target := f.addNode(t, f.profileID, "target idea")

	_, err := f.writer.WriteManual(ctx, f.profileID, source.ID(), target.ID(), 0.6)
	require.NoError(t, err)

	// Same pair in the opposite direction is still a duplicate.
	_, err = f.writer.WriteManual(ctx, f.profileID, target.ID(), source.ID(), 0.4)
	require.Error(t, err)

	var domainErr *pkgerrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, pkgerrors.ErrDuplicateEdge.Code, domainErr.Code)
}

func TestEdgeWriter_WriteManualRejectsUnknownNode(t *testing.T) {
	f := newEdgeWriterFixture(t)
	ctx := context.Background()

	source := f.addNode(t, f.profileID, "source idea")

	_, err := f.writer.WriteManual(ctx, f.profileID, source.ID(), valueobjects.NewNodeID(), 0.5)
	require.Error(t, err)

	var domainErr *pkgerrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, pkgerrors.ErrNodeNotFound.Code, domainErr.Code)
}
