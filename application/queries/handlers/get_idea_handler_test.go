package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/application/queries"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

type fakeEdgeRepo struct {
	edges []*entities.Edge
}

func (r *fakeEdgeRepo) Save(_ context.Context, edge *entities.Edge) error {
	r.edges = append(r.edges, edge)
	return nil
}

func (r *fakeEdgeRepo) SaveBatch(ctx context.Context, edges []*entities.Edge) error {
	for _, edge := range edges {
		if err := r.Save(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeEdgeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error) {
	var out []*entities.Edge
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *fakeEdgeRepo) GetByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error) {
	all, _ := r.GetByProfileID(ctx, profileID)
	var out []*entities.Edge
	for _, edge := range all {
		if edge.Connects(nodeID) {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *fakeEdgeRepo) Exists(_ context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error) {
	key := entities.EdgePairKey(a, b)
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) && edge.PairKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEdgeRepo) Delete(_ context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) error {
	key := entities.EdgePairKey(a, b)
	kept := r.edges[:0]
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) && edge.PairKey() == key {
			continue
		}
		kept = append(kept, edge)
	}
	r.edges = kept
	return nil
}

func (r *fakeEdgeRepo) DeleteByNodeID(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	kept := r.edges[:0]
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) && edge.Connects(nodeID) {
			continue
		}
		kept = append(kept, edge)
	}
	r.edges = kept
	return nil
}

type getIdeaFixture struct {
	nodes     *fakeNodeRepo
	edges     *fakeEdgeRepo
	handler   *GetIdeaHandler
	profileID valueobjects.ProfileID
}

func newGetIdeaFixture(t *testing.T) *getIdeaFixture {
	t.Helper()
	nodes := newFakeNodeRepo()
	edges := &fakeEdgeRepo{}
	return &getIdeaFixture{
		nodes:     nodes,
		edges:     edges,
		handler:   NewGetIdeaHandler(nodes, edges, zap.NewNop()),
		profileID: valueobjects.NewProfileID(),
	}
}

func (f *getIdeaFixture) idea(t *testing.T, text string) *entities.Node {
	t.Helper()
	ideaText, err := valueobjects.NewIdeaText(text)
	require.NoError(t, err)
	node, err := entities.NewNode(f.profileID, ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, f.nodes.Save(context.Background(), node))
	return node
}

func (f *getIdeaFixture) link(t *testing.T, a, b *entities.Node, weight float64) {
	t.Helper()
	edge, err := entities.NewEdge(f.profileID, a.ID(), b.ID(), weight, "manual")
	require.NoError(t, err)
	require.NoError(t, f.edges.Save(context.Background(), edge))
}

func TestGetIdea_ResolvesNeighborsOnBothEdgeDirections(t *testing.T) {
	f := newGetIdeaFixture(t)

	anchor := f.idea(t, "the anchor idea")
	outgoing := f.idea(t, "idea the anchor points at")
	incoming := f.idea(t, "idea pointing at the anchor")
	f.link(t, anchor, outgoing, 0.9)
	f.link(t, incoming, anchor, 0.7)

	result, err := f.handler.Handle(context.Background(), queries.GetIdeaQuery{
		ProfileID: f.profileID.String(),
		NodeID:    anchor.ID().String(),
	})
	require.NoError(t, err)

	require.Len(t, result.Neighbors, 2)
	assert.Equal(t, outgoing.ID().String(), result.Neighbors[0].NodeID)
	assert.Equal(t, 0.9, result.Neighbors[0].Weight)
	assert.Equal(t, incoming.ID().String(), result.Neighbors[1].NodeID)
	assert.Equal(t, 0.7, result.Neighbors[1].Weight)
}

func TestGetIdea_RejectsForeignNode(t *testing.T) {
	f := newGetIdeaFixture(t)

	node := f.idea(t, "belongs to this voice")

	_, err := f.handler.Handle(context.Background(), queries.GetIdeaQuery{
		ProfileID: valueobjects.NewProfileID().String(),
		NodeID:    node.ID().String(),
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "FOREIGN_NODE"))
}
