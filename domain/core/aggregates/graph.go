package aggregates

import (
	"errors"
	"sort"
	"time"

	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// ProfileGraph is the aggregate root for one profile's idea graph.
// It enforces the consistency boundary: every node and edge it holds
// belongs to the same profile, self-links and duplicate pairs are
// rejected, and neighbor listings are deterministic.
type ProfileGraph struct {
	profileID valueobjects.ProfileID
	nodes     map[valueobjects.NodeID]*entities.Node
	edges     map[string]*entities.Edge // keyed by canonical pair
	byNode    map[valueobjects.NodeID][]*entities.Edge
	updatedAt time.Time
	version   int
}

// Neighbor is one adjacent idea with the weight of the connecting edge
type Neighbor struct {
	NodeID valueobjects.NodeID
	Weight float64
}

// NewProfileGraph creates an empty graph for a profile
func NewProfileGraph(profileID valueobjects.ProfileID) (*ProfileGraph, error) {
	if profileID.IsZero() {
		return nil, errors.New("profileID required")
	}

	return &ProfileGraph{
		profileID: profileID,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[string]*entities.Edge),
		byNode:    make(map[valueobjects.NodeID][]*entities.Edge),
		updatedAt: time.Now(),
		version:   1,
	}, nil
}

// ProfileID returns the owning profile's ID
func (g *ProfileGraph) ProfileID() valueobjects.ProfileID {
	return g.profileID
}

// NodeCount returns the number of ideas in the graph
func (g *ProfileGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph
func (g *ProfileGraph) EdgeCount() int {
	return len(g.edges)
}

// UpdatedAt returns when the graph last changed
func (g *ProfileGraph) UpdatedAt() time.Time {
	return g.updatedAt
}

// AddNode adds an idea to the graph, enforcing profile isolation
func (g *ProfileGraph) AddNode(node *entities.Node) error {
	if node == nil {
		return errors.New("node cannot be nil")
	}
	if !node.BelongsTo(g.profileID) {
		return pkgerrors.ErrForeignNode.WithDetail("node_id", node.ID().String())
	}
	if _, exists := g.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already exists in graph")
	}

	g.nodes[node.ID()] = node
	g.updatedAt = time.Now()
	g.version++

	return nil
}

// AddEdge adds an edge to the graph. Both endpoints must already be
// present, and a second edge over the same pair is rejected.
func (g *ProfileGraph) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return errors.New("edge cannot be nil")
	}
	if !edge.ProfileID().Equals(g.profileID) {
		return pkgerrors.ErrForeignNode.WithDetail("edge_id", edge.ID())
	}
	if _, exists := g.nodes[edge.SourceID()]; !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("node_id", edge.SourceID().String())
	}
	if _, exists := g.nodes[edge.TargetID()]; !exists {
		return pkgerrors.ErrNodeNotFound.WithDetail("node_id", edge.TargetID().String())
	}
	if _, exists := g.edges[edge.PairKey()]; exists {
		return pkgerrors.ErrDuplicateEdge.WithDetail("pair", edge.PairKey())
	}

	g.edges[edge.PairKey()] = edge
	g.byNode[edge.SourceID()] = append(g.byNode[edge.SourceID()], edge)
	g.byNode[edge.TargetID()] = append(g.byNode[edge.TargetID()], edge)
	g.updatedAt = time.Now()
	g.version++

	return nil
}

// HasNode checks if an idea exists in the graph
func (g *ProfileGraph) HasNode(nodeID valueobjects.NodeID) bool {
	_, exists := g.nodes[nodeID]
	return exists
}

// HasEdge checks if the pair is already linked, in either direction
func (g *ProfileGraph) HasEdge(a, b valueobjects.NodeID) bool {
	_, exists := g.edges[entities.EdgePairKey(a, b)]
	return exists
}

// GetNode retrieves an idea by ID
func (g *ProfileGraph) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", nodeID.String())
	}
	return node, nil
}

// GetNodes returns all ideas, ordered by capture time then ID
func (g *ProfileGraph) GetNodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt().Equal(nodes[j].CreatedAt()) {
			return nodes[i].CreatedAt().Before(nodes[j].CreatedAt())
		}
		return nodes[i].ID().String() < nodes[j].ID().String()
	})
	return nodes
}

// GetEdges returns all edges, ordered by canonical pair key
func (g *ProfileGraph) GetEdges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].PairKey() < edges[j].PairKey()
	})
	return edges
}

// EdgeCountFor returns how many edges touch the given idea
func (g *ProfileGraph) EdgeCountFor(nodeID valueobjects.NodeID) int {
	return len(g.byNode[nodeID])
}

// Neighbors returns the ideas adjacent to nodeID, ordered by descending
// edge weight, ties broken by ascending node ID. Collective selection
// depends on this ordering being stable.
func (g *ProfileGraph) Neighbors(nodeID valueobjects.NodeID) []Neighbor {
	edges := g.byNode[nodeID]
	neighbors := make([]Neighbor, 0, len(edges))
	for _, edge := range edges {
		other, ok := edge.Other(nodeID)
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{NodeID: other, Weight: edge.Weight()})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].NodeID.String() < neighbors[j].NodeID.String()
	})

	return neighbors
}

// UnderLinked returns ideas whose edge count is below the given target,
// ordered by ascending edge count then node ID. Used to pick anchors
// when re-linking a whole profile.
func (g *ProfileGraph) UnderLinked(target int) []valueobjects.NodeID {
	var ids []valueobjects.NodeID
	for id := range g.nodes {
		if len(g.byNode[id]) < target {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := len(g.byNode[ids[i]]), len(g.byNode[ids[j]])
		if ci != cj {
			return ci < cj
		}
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Clusters identifies connected components of the graph
func (g *ProfileGraph) Clusters() [][]valueobjects.NodeID {
	visited := make(map[valueobjects.NodeID]bool)
	var clusters [][]valueobjects.NodeID

	for _, node := range g.GetNodes() {
		if !visited[node.ID()] {
			cluster := g.dfs(node.ID(), visited)
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}

// Validate ensures graph invariants
func (g *ProfileGraph) Validate() error {
	for _, edge := range g.edges {
		if _, exists := g.nodes[edge.SourceID()]; !exists {
			return errors.New("edge references non-existent source node")
		}
		if _, exists := g.nodes[edge.TargetID()]; !exists {
			return errors.New("edge references non-existent target node")
		}
		if edge.Weight() < 0 || edge.Weight() > 1 {
			return errors.New("edge weight outside [0, 1]")
		}
	}
	return nil
}

func (g *ProfileGraph) dfs(nodeID valueobjects.NodeID, visited map[valueobjects.NodeID]bool) []valueobjects.NodeID {
	cluster := []valueobjects.NodeID{nodeID}
	visited[nodeID] = true

	for _, neighbor := range g.Neighbors(nodeID) {
		if !visited[neighbor.NodeID] {
			cluster = append(cluster, g.dfs(neighbor.NodeID, visited)...)
		}
	}

	return cluster
}
