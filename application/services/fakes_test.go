package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"ideaweaver/application/ports"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	domainevents "ideaweaver/domain/events"
)

// In-memory fakes for the persistence and messaging ports.

type memNodeRepo struct {
	mu    sync.Mutex
	nodes map[string]*entities.Node
	order []string // insertion order, oldest first
}

func newMemNodeRepo() *memNodeRepo {
	return &memNodeRepo{nodes: map[string]*entities.Node{}}
}

func (r *memNodeRepo) Save(_ context.Context, node *entities.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := node.ID().String()
	if _, exists := r.nodes[key]; !exists {
		r.order = append(r.order, key)
	}
	r.nodes[key] = node
	return nil
}

func (r *memNodeRepo) GetByID(_ context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, errors.New("node not found")
	}
	return node, nil
}

func (r *memNodeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Node
	for _, key := range r.order {
		if r.nodes[key].BelongsTo(profileID) {
			out = append(out, r.nodes[key])
		}
	}
	return out, nil
}

func (r *memNodeRepo) GetRecent(_ context.Context, profileID valueobjects.ProfileID, limit int) ([]*entities.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Node
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if r.nodes[r.order[i]].BelongsTo(profileID) {
			out = append(out, r.nodes[r.order[i]])
		}
	}
	return out, nil
}

func (r *memNodeRepo) CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	nodes, _ := r.GetByProfileID(ctx, profileID)
	return len(nodes), nil
}

func (r *memNodeRepo) Delete(_ context.Context, id valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, id.String())
	return nil
}

func (r *memNodeRepo) DeleteBatch(ctx context.Context, ids []valueobjects.NodeID) error {
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *memNodeRepo) Search(_ context.Context, _ ports.SearchCriteria) ([]*entities.Node, error) {
	return nil, nil
}

type memEdgeRepo struct {
	mu      sync.Mutex
	edges   map[string]*entities.Edge // pair key -> edge
	failAll bool                      // force SaveBatch to fail
}

func newMemEdgeRepo() *memEdgeRepo {
	return &memEdgeRepo{edges: map[string]*entities.Edge{}}
}

func (r *memEdgeRepo) Save(_ context.Context, edge *entities.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("write failed")
	}
	r.edges[edge.PairKey()] = edge
	return nil
}

func (r *memEdgeRepo) SaveBatch(ctx context.Context, edges []*entities.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("write failed")
	}
	for _, edge := range edges {
		r.edges[edge.PairKey()] = edge
	}
	return nil
}

func (r *memEdgeRepo) GetByProfileID(_ context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Edge
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairKey() < out[j].PairKey() })
	return out, nil
}

func (r *memEdgeRepo) GetByNodeID(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Edge
	for _, edge := range r.edges {
		if edge.ProfileID().Equals(profileID) && edge.Connects(nodeID) {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairKey() < out[j].PairKey() })
	return out, nil
}

func (r *memEdgeRepo) Exists(_ context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge, ok := r.edges[entities.EdgePairKey(a, b)]
	return ok && edge.ProfileID().Equals(profileID), nil
}

func (r *memEdgeRepo) Delete(_ context.Context, _ valueobjects.ProfileID, a, b valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, entities.EdgePairKey(a, b))
	return nil
}

func (r *memEdgeRepo) DeleteByNodeID(_ context.Context, _ valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, edge := range r.edges {
		if edge.Connects(nodeID) {
			delete(r.edges, key)
		}
	}
	return nil
}

type memVectorStore struct {
	mu         sync.Mutex
	partitions map[string]map[string][]float32 // profile -> node -> vector
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{partitions: map[string]map[string][]float32{}}
}

func (s *memVectorStore) Upsert(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.partitions[profileID.String()]
	if !ok {
		part = map[string][]float32{}
		s.partitions[profileID.String()] = part
	}
	part[nodeID.String()] = vector
	return nil
}

func (s *memVectorStore) Get(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]float32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vec, ok := s.partitions[profileID.String()][nodeID.String()]
	return vec, ok, nil
}

func (s *memVectorStore) Nearest(_ context.Context, profileID valueobjects.ProfileID, query []float32, k int) ([]ports.VectorMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []ports.VectorMatch
	for id, vec := range s.partitions[profileID.String()] {
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		if err != nil {
			continue
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

func (s *memVectorStore) Delete(_ context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.partitions[profileID.String()], nodeID.String())
	return nil
}

func (s *memVectorStore) DropPartition(_ context.Context, profileID valueobjects.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.partitions, profileID.String())
	return nil
}

func (s *memVectorStore) Count(_ context.Context, profileID valueobjects.ProfileID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.partitions[profileID.String()]), nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []domainevents.DomainEvent
}

func (p *memPublisher) Publish(_ context.Context, event domainevents.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) PublishBatch(ctx context.Context, events []domainevents.DomainEvent) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

type fakeGenerator struct {
	output string
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}
