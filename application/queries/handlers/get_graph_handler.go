package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	"ideaweaver/domain/core/aggregates"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

const summaryLength = 120

// GetGraphHandler assembles a profile's graph read model
type GetGraphHandler struct {
	profileRepo ports.ProfileRepository
	nodeRepo    ports.NodeRepository
	edgeRepo    ports.EdgeRepository
	cache       ports.Cache
	logger      *zap.Logger
}

// NewGetGraphHandler creates a new handler instance
func NewGetGraphHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	cache ports.Cache,
	logger *zap.Logger,
) *GetGraphHandler {
	return &GetGraphHandler{
		profileRepo: profileRepo,
		nodeRepo:    nodeRepo,
		edgeRepo:    edgeRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Handle executes the graph query
func (h *GetGraphHandler) Handle(ctx context.Context, query queries.GetGraphQuery) (*queries.GetGraphResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cacheKey := "graph:" + query.ProfileID
	if h.cache != nil {
		if cached, found := h.cache.Get(ctx, cacheKey); found {
			if result, ok := cached.(*queries.GetGraphResult); ok {
				return result, nil
			}
		}
	}

	profileID, err := valueobjects.NewProfileIDFromString(query.ProfileID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if _, err := h.profileRepo.GetByID(ctx, profileID); err != nil {
		return nil, pkgerrors.ErrUnknownProfile.WithDetail("profile_id", query.ProfileID).WithCause(err)
	}

	graph, err := h.loadGraph(ctx, profileID)
	if err != nil {
		return nil, err
	}

	nodes := graph.GetNodes()
	edges := graph.GetEdges()

	result := &queries.GetGraphResult{
		ProfileID: query.ProfileID,
		Ideas:     make([]queries.IdeaDTO, 0, len(nodes)),
		Edges:     make([]queries.EdgeDTO, 0, len(edges)),
		Stats: queries.GraphStats{
			IdeaCount:    len(nodes),
			EdgeCount:    len(edges),
			ClusterCount: len(graph.Clusters()),
		},
	}

	for _, node := range nodes {
		result.Ideas = append(result.Ideas, queries.IdeaDTO{
			ID:        node.ID().String(),
			Text:      node.Text().String(),
			Summary:   node.Text().Summary(summaryLength),
			Tags:      node.Tags(),
			HasVector: node.HasVector(),
			EdgeCount: graph.EdgeCountFor(node.ID()),
			CreatedAt: node.CreatedAt().Format(time.RFC3339),
			UpdatedAt: node.UpdatedAt().Format(time.RFC3339),
		})
	}

	for _, edge := range edges {
		result.Edges = append(result.Edges, queries.EdgeDTO{
			ID:         edge.ID(),
			SourceID:   edge.SourceID().String(),
			TargetID:   edge.TargetID().String(),
			Weight:     edge.Weight(),
			Provenance: edge.Provenance(),
		})
	}

	if len(nodes) > 1 {
		maxPossibleEdges := len(nodes) * (len(nodes) - 1) / 2
		result.Stats.Density = float64(len(edges)) / float64(maxPossibleEdges)
	}

	if h.cache != nil {
		h.cache.Set(ctx, cacheKey, result, 300)
	}

	h.logger.Debug("Graph retrieved",
		zap.String("profileID", query.ProfileID),
		zap.Int("ideaCount", result.Stats.IdeaCount),
		zap.Int("edgeCount", result.Stats.EdgeCount),
	)

	return result, nil
}

// loadGraph rebuilds the in-memory aggregate from the repositories.
// Edges touching a missing node are skipped rather than failing the
// whole read.
func (h *GetGraphHandler) loadGraph(ctx context.Context, profileID valueobjects.ProfileID) (*aggregates.ProfileGraph, error) {
	graph, err := aggregates.NewProfileGraph(profileID)
	if err != nil {
		return nil, err
	}

	nodes, err := h.nodeRepo.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	for _, node := range nodes {
		if err := graph.AddNode(node); err != nil {
			return nil, err
		}
	}

	edges, err := h.edgeRepo.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge); err != nil {
			h.logger.Warn("Skipping unloadable edge",
				zap.String("edgeID", edge.ID()),
				zap.Error(err),
			)
		}
	}

	return graph, nil
}
