package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

type fakeProfileRepo struct {
	profiles map[string]*entities.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*entities.Profile)}
}

func (r *fakeProfileRepo) Save(_ context.Context, p *entities.Profile) error {
	r.profiles[p.ID().String()] = p
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id valueobjects.ProfileID) (*entities.Profile, error) {
	p, ok := r.profiles[id.String()]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

func (r *fakeProfileRepo) List(_ context.Context) ([]*entities.Profile, error) {
	out := make([]*entities.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id valueobjects.ProfileID) error {
	delete(r.profiles, id.String())
	return nil
}

type fakeNodeRepo struct {
	nodes map[string]*entities.Node
}

func newFakeNodeRepo() *fakeNodeRepo {
	return &fakeNodeRepo{nodes: make(map[string]*entities.Node)}
}

func (r *fakeNodeRepo) Save(_ context.Context, n *entities.Node) error {
	r.nodes[n.ID().String()] = n
	return nil
}

func (r *fakeNodeRepo) GetByID(_ context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	n, ok := r.nodes[id.String()]
	if !ok {
		return nil, errors.New("node not found")
	}
	return n, nil
}

func (r *fakeNodeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error) {
	var out []*entities.Node
	for _, n := range r.nodes {
		if n.BelongsTo(profileID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNodeRepo) GetRecent(ctx context.Context, profileID valueobjects.ProfileID, limit int) ([]*entities.Node, error) {
	out, err := r.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNodeRepo) CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	out, err := r.GetByProfileID(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

func (r *fakeNodeRepo) Delete(_ context.Context, id valueobjects.NodeID) error {
	delete(r.nodes, id.String())
	return nil
}

func (r *fakeNodeRepo) DeleteBatch(ctx context.Context, nodeIDs []valueobjects.NodeID) error {
	for _, id := range nodeIDs {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNodeRepo) Search(_ context.Context, _ ports.SearchCriteria) ([]*entities.Node, error) {
	return nil, nil
}

type fakeVectorStore struct {
	partitions map[string]map[string][]float32
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{partitions: make(map[string]map[string][]float32)}
}

func (s *fakeVectorStore) Upsert(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID, vector []float32) error {
	part, ok := s.partitions[profileID.String()]
	if !ok {
		part = make(map[string][]float32)
		s.partitions[profileID.String()] = part
	}
	part[nodeID.String()] = vector
	return nil
}

func (s *fakeVectorStore) Get(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]float32, bool, error) {
	vec, ok := s.partitions[profileID.String()][nodeID.String()]
	return vec, ok, nil
}

func (s *fakeVectorStore) Nearest(_ context.Context, profileID valueobjects.ProfileID, query []float32, k int) ([]ports.VectorMatch, error) {
	var matches []ports.VectorMatch
	for id, vec := range s.partitions[profileID.String()] {
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		if err != nil {
			return nil, err
		}
		matches = append(matches, ports.VectorMatch{
			NodeID:   nodeID,
			Distance: autolink.CosineDistance(query, vec),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].NodeID.String() < matches[j].NodeID.String()
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *fakeVectorStore) Delete(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	delete(s.partitions[profileID.String()], nodeID.String())
	return nil
}

func (s *fakeVectorStore) DropPartition(_ context.Context, profileID valueobjects.ProfileID) error {
	delete(s.partitions, profileID.String())
	return nil
}

func (s *fakeVectorStore) Count(_ context.Context, profileID valueobjects.ProfileID) (int, error) {
	return len(s.partitions[profileID.String()]), nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vec, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

type contextMapFixture struct {
	profiles  *fakeProfileRepo
	nodes     *fakeNodeRepo
	vectors   *fakeVectorStore
	embedder  *fakeEmbedder
	handler   *ContextMapHandler
	profileID valueobjects.ProfileID
}

func newContextMapFixture(t *testing.T) *contextMapFixture {
	t.Helper()
	profiles := newFakeProfileRepo()
	nodes := newFakeNodeRepo()
	vectors := newFakeVectorStore()
	embedder := &fakeEmbedder{vectors: make(map[string][]float32)}

	profile, err := entities.NewProfile("cartographer", "default")
	require.NoError(t, err)
	require.NoError(t, profiles.Save(context.Background(), profile))

	return &contextMapFixture{
		profiles:  profiles,
		nodes:     nodes,
		vectors:   vectors,
		embedder:  embedder,
		handler:   NewContextMapHandler(profiles, nodes, vectors, embedder, zap.NewNop()),
		profileID: profile.ID(),
	}
}

func (f *contextMapFixture) capture(t *testing.T, text string, vector []float32) *entities.Node {
	t.Helper()
	ideaText, err := valueobjects.NewIdeaText(text)
	require.NoError(t, err)
	node, err := entities.NewNode(f.profileID, ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, f.nodes.Save(context.Background(), node))
	require.NoError(t, f.vectors.Upsert(context.Background(), f.profileID, node.ID(), vector))
	return node
}

func TestContextMap_RanksIdeasByProximity(t *testing.T) {
	f := newContextMapFixture(t)

	near := f.capture(t, "consensus protocols in distributed systems", []float32{1, 0.1, 0})
	far := f.capture(t, "sourdough hydration ratios", []float32{0, 1, 0})
	f.embedder.vectors["how do nodes agree"] = []float32{1, 0, 0}

	result, err := f.handler.Handle(context.Background(), queries.ContextMapQuery{
		ProfileID: f.profileID.String(),
		Text:      "how do nodes agree",
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, near.ID().String(), result.Matches[0].Idea.ID)
	assert.Equal(t, far.ID().String(), result.Matches[1].Idea.ID)
	assert.Greater(t, result.Matches[0].Similarity, result.Matches[1].Similarity)
}

func TestContextMap_HonorsLimit(t *testing.T) {
	f := newContextMapFixture(t)

	f.capture(t, "first idea", []float32{1, 0, 0})
	f.capture(t, "second idea", []float32{0.9, 0.1, 0})
	f.capture(t, "third idea", []float32{0.8, 0.2, 0})
	f.embedder.vectors["query"] = []float32{1, 0, 0}

	result, err := f.handler.Handle(context.Background(), queries.ContextMapQuery{
		ProfileID: f.profileID.String(),
		Text:      "query",
		Limit:     2,
	})
	require.NoError(t, err)

	assert.Len(t, result.Matches, 2)
}

func TestContextMap_UnknownProfileFails(t *testing.T) {
	f := newContextMapFixture(t)
	f.embedder.vectors["query"] = []float32{1, 0, 0}

	_, err := f.handler.Handle(context.Background(), queries.ContextMapQuery{
		ProfileID: valueobjects.NewProfileID().String(),
		Text:      "query",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "UNKNOWN_PROFILE"))
}

func TestContextMap_EmbeddingFailureIsDependencyError(t *testing.T) {
	f := newContextMapFixture(t)
	f.embedder.err = errors.New("embedding model offline")

	_, err := f.handler.Handle(context.Background(), queries.ContextMapQuery{
		ProfileID: f.profileID.String(),
		Text:      "query",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "EMBEDDING_UNAVAILABLE"))
}
