package handlers

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	domainevents "ideaweaver/domain/events"
)

type stubProfileRepo struct {
	profiles map[string]*entities.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: map[string]*entities.Profile{}}
}

func (r *stubProfileRepo) Save(_ context.Context, profile *entities.Profile) error {
	r.profiles[profile.ID().String()] = profile
	return nil
}

func (r *stubProfileRepo) GetByID(_ context.Context, id valueobjects.ProfileID) (*entities.Profile, error) {
	profile, ok := r.profiles[id.String()]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return profile, nil
}

func (r *stubProfileRepo) List(_ context.Context) ([]*entities.Profile, error) {
	out := make([]*entities.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (r *stubProfileRepo) Delete(_ context.Context, id valueobjects.ProfileID) error {
	delete(r.profiles, id.String())
	return nil
}

type stubNodeRepo struct {
	nodes map[string]*entities.Node
}

func newStubNodeRepo() *stubNodeRepo {
	return &stubNodeRepo{nodes: map[string]*entities.Node{}}
}

func (r *stubNodeRepo) Save(_ context.Context, node *entities.Node) error {
	r.nodes[node.ID().String()] = node
	return nil
}

func (r *stubNodeRepo) GetByID(_ context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, errors.New("node not found")
	}
	return node, nil
}

func (r *stubNodeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error) {
	var out []*entities.Node
	for _, node := range r.nodes {
		if node.BelongsTo(profileID) {
			out = append(out, node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (r *stubNodeRepo) GetRecent(ctx context.Context, profileID valueobjects.ProfileID, _ int) ([]*entities.Node, error) {
	return r.GetByProfileID(ctx, profileID)
}

func (r *stubNodeRepo) CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	nodes, _ := r.GetByProfileID(ctx, profileID)
	return len(nodes), nil
}

func (r *stubNodeRepo) Delete(_ context.Context, id valueobjects.NodeID) error {
	delete(r.nodes, id.String())
	return nil
}

func (r *stubNodeRepo) DeleteBatch(ctx context.Context, ids []valueobjects.NodeID) error {
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubNodeRepo) Search(_ context.Context, _ ports.SearchCriteria) ([]*entities.Node, error) {
	return nil, nil
}

type stubEdgeRepo struct {
	edges map[string]*entities.Edge
}

func newStubEdgeRepo() *stubEdgeRepo {
	return &stubEdgeRepo{edges: map[string]*entities.Edge{}}
}

func edgeKey(profileID valueobjects.ProfileID, a, b valueobjects.NodeID) string {
	return profileID.String() + "/" + entities.EdgePairKey(a, b)
}

func (r *stubEdgeRepo) Save(_ context.Context, edge *entities.Edge) error {
	r.edges[edgeKey(edge.ProfileID(), edge.SourceID(), edge.TargetID())] = edge
	return nil
}

func (r *stubEdgeRepo) SaveBatch(ctx context.Context, edges []*entities.Edge) error {
	for _, edge := range edges {
		if err := r.Save(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubEdgeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error) {
	var out []*entities.Edge
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *stubEdgeRepo) GetByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error) {
	all, _ := r.GetByProfileID(ctx, profileID)
	var out []*entities.Edge
	for _, edge := range all {
		if edge.SourceID().Equals(nodeID) || edge.TargetID().Equals(nodeID) {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (r *stubEdgeRepo) Exists(_ context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error) {
	_, ok := r.edges[edgeKey(profileID, a, b)]
	return ok, nil
}

func (r *stubEdgeRepo) Delete(_ context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) error {
	delete(r.edges, edgeKey(profileID, a, b))
	return nil
}

func (r *stubEdgeRepo) DeleteByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	edges, _ := r.GetByNodeID(ctx, profileID, nodeID)
	for _, edge := range edges {
		if err := r.Delete(ctx, profileID, edge.SourceID(), edge.TargetID()); err != nil {
			return err
		}
	}
	return nil
}

type stubVectorStore struct {
	vectors map[string]map[string][]float32
}

func newStubVectorStore() *stubVectorStore {
	return &stubVectorStore{vectors: map[string]map[string][]float32{}}
}

func (s *stubVectorStore) Upsert(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID, vector []float32) error {
	partition, ok := s.vectors[profileID.String()]
	if !ok {
		partition = map[string][]float32{}
		s.vectors[profileID.String()] = partition
	}
	partition[nodeID.String()] = vector
	return nil
}

func (s *stubVectorStore) Get(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]float32, bool, error) {
	vec, ok := s.vectors[profileID.String()][nodeID.String()]
	return vec, ok, nil
}

func (s *stubVectorStore) Nearest(_ context.Context, _ valueobjects.ProfileID, _ []float32, _ int) ([]ports.VectorMatch, error) {
	return nil, nil
}

func (s *stubVectorStore) Delete(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	delete(s.vectors[profileID.String()], nodeID.String())
	return nil
}

func (s *stubVectorStore) DropPartition(_ context.Context, profileID valueobjects.ProfileID) error {
	delete(s.vectors, profileID.String())
	return nil
}

func (s *stubVectorStore) Count(_ context.Context, profileID valueobjects.ProfileID) (int, error) {
	return len(s.vectors[profileID.String()]), nil
}

type stubPublisher struct {
	published []domainevents.DomainEvent
}

func (p *stubPublisher) Publish(_ context.Context, event domainevents.DomainEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *stubPublisher) PublishBatch(_ context.Context, events []domainevents.DomainEvent) error {
	p.published = append(p.published, events...)
	return nil
}

type resetFixture struct {
	profiles *stubProfileRepo
	nodes    *stubNodeRepo
	edges    *stubEdgeRepo
	vectors  *stubVectorStore
	handler  *ResetProfileHandler
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	profiles := newStubProfileRepo()
	nodes := newStubNodeRepo()
	edges := newStubEdgeRepo()
	vectors := newStubVectorStore()
	handler := NewResetProfileHandler(profiles, nodes, edges, vectors, &stubPublisher{}, nil, zap.NewNop())
	return &resetFixture{profiles: profiles, nodes: nodes, edges: edges, vectors: vectors, handler: handler}
}

// seedProfile creates a profile with two linked, embedded ideas
func (f *resetFixture) seedProfile(t *testing.T, name string) valueobjects.ProfileID {
	t.Helper()
	ctx := context.Background()

	profile, err := entities.NewProfile(name, "default")
	require.NoError(t, err)
	require.NoError(t, f.profiles.Save(ctx, profile))
	profileID := profile.ID()

	var ids []valueobjects.NodeID
	for _, text := range []string{"first idea", "second idea"} {
		ideaText, err := valueobjects.NewIdeaText(text)
		require.NoError(t, err)
		node, err := entities.NewNode(profileID, ideaText, nil)
		require.NoError(t, err)
		require.NoError(t, f.nodes.Save(ctx, node))
		require.NoError(t, f.vectors.Upsert(ctx, profileID, node.ID(), []float32{1, 0, 0}))
		ids = append(ids, node.ID())
	}

	edge, err := entities.NewEdge(profileID, ids[0], ids[1], 0.9, "manual")
	require.NoError(t, err)
	require.NoError(t, f.edges.Save(ctx, edge))

	return profileID
}

func TestResetProfile_ClearsOnlyTargetProfile(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	target := f.seedProfile(t, "target voice")
	other := f.seedProfile(t, "other voice")

	err := f.handler.Handle(ctx, commands.ResetProfileCommand{ProfileID: target.String()})
	require.NoError(t, err)

	// Target profile record survives with an empty graph.
	_, err = f.profiles.GetByID(ctx, target)
	assert.NoError(t, err)

	targetNodes, err := f.nodes.GetByProfileID(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, targetNodes)

	targetEdges, err := f.edges.GetByProfileID(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, targetEdges)

	count, err := f.vectors.Count(ctx, target)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The other profile is untouched.
	otherNodes, err := f.nodes.GetByProfileID(ctx, other)
	require.NoError(t, err)
	assert.Len(t, otherNodes, 2)

	otherEdges, err := f.edges.GetByProfileID(ctx, other)
	require.NoError(t, err)
	assert.Len(t, otherEdges, 1)

	otherVectors, err := f.vectors.Count(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, otherVectors)
}

func TestResetProfile_UnknownProfileFails(t *testing.T) {
	f := newResetFixture(t)

	err := f.handler.Handle(context.Background(), commands.ResetProfileCommand{
		ProfileID: valueobjects.NewProfileID().String(),
	})
	require.Error(t, err)
}

func TestResetProfile_IsIdempotent(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	target := f.seedProfile(t, "target voice")

	require.NoError(t, f.handler.Handle(ctx, commands.ResetProfileCommand{ProfileID: target.String()}))
	require.NoError(t, f.handler.Handle(ctx, commands.ResetProfileCommand{ProfileID: target.String()}))

	nodes, err := f.nodes.GetByProfileID(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
