package handlers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// GetIdeaHandler fetches one idea and its linked neighbors
type GetIdeaHandler struct {
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	logger   *zap.Logger
}

// NewGetIdeaHandler creates a new handler instance
func NewGetIdeaHandler(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	logger *zap.Logger,
) *GetIdeaHandler {
	return &GetIdeaHandler{
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		logger:   logger,
	}
}

// Handle executes the idea query
func (h *GetIdeaHandler) Handle(ctx context.Context, query queries.GetIdeaQuery) (*queries.GetIdeaResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(query.ProfileID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	nodeID, err := valueobjects.NewNodeIDFromString(query.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", query.NodeID).WithCause(err)
	}
	if !node.BelongsTo(profileID) {
		return nil, pkgerrors.ErrForeignNode.
			WithDetail("node_id", query.NodeID).
			WithDetail("profile_id", query.ProfileID)
	}

	neighbors, err := h.loadNeighbors(ctx, profileID, nodeID)
	if err != nil {
		return nil, err
	}

	return &queries.GetIdeaResult{
		ID:        node.ID().String(),
		ProfileID: query.ProfileID,
		Text:      node.Text().String(),
		Tags:      node.Tags(),
		HasVector: node.HasVector(),
		Neighbors: neighbors,
		Version:   node.Version(),
		CreatedAt: node.CreatedAt().Format(time.RFC3339),
		UpdatedAt: node.UpdatedAt().Format(time.RFC3339),
	}, nil
}

// loadNeighbors returns the linked ideas, strongest first with node ID
// as the tie-break
func (h *GetIdeaHandler) loadNeighbors(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	nodeID valueobjects.NodeID,
) ([]queries.NeighborDTO, error) {
	edges, err := h.edgeRepo.GetByNodeID(ctx, profileID, nodeID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	neighbors := make([]queries.NeighborDTO, 0, len(edges))
	for _, edge := range edges {
		otherID, ok := edge.Other(nodeID)
		if !ok {
			continue
		}
		other, err := h.nodeRepo.GetByID(ctx, otherID)
		if err != nil {
			h.logger.Warn("Skipping neighbor with missing node",
				zap.String("nodeID", otherID.String()),
				zap.Error(err),
			)
			continue
		}
		neighbors = append(neighbors, queries.NeighborDTO{
			NodeID:  otherID.String(),
			Summary: other.Text().Summary(summaryLength),
			Weight:  edge.Weight(),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].NodeID < neighbors[j].NodeID
	})

	return neighbors, nil
}
