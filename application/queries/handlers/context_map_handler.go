package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

const defaultContextMapLimit = 10

// ContextMapHandler ranks a profile's ideas against a free-text query by
// embedding the text and querying the profile's vector partition.
// Nothing is captured; the query text leaves no trace in the graph.
type ContextMapHandler struct {
	profileRepo ports.ProfileRepository
	nodeRepo    ports.NodeRepository
	vectors     ports.VectorStore
	embedder    ports.Embedder
	logger      *zap.Logger
}

// NewContextMapHandler creates a new handler instance
func NewContextMapHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	vectors ports.VectorStore,
	embedder ports.Embedder,
	logger *zap.Logger,
) *ContextMapHandler {
	return &ContextMapHandler{
		profileRepo: profileRepo,
		nodeRepo:    nodeRepo,
		vectors:     vectors,
		embedder:    embedder,
		logger:      logger,
	}
}

// Handle executes the context-map query
func (h *ContextMapHandler) Handle(ctx context.Context, query queries.ContextMapQuery) (*queries.ContextMapResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(query.ProfileID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if _, err := h.profileRepo.GetByID(ctx, profileID); err != nil {
		return nil, pkgerrors.ErrUnknownProfile.WithDetail("profile_id", query.ProfileID).WithCause(err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultContextMapLimit
	}

	queryVec, err := h.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, pkgerrors.ErrEmbeddingUnavailable.WithCause(err)
	}

	matches, err := h.vectors.Nearest(ctx, profileID, queryVec, limit)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	result := &queries.ContextMapResult{
		ProfileID: query.ProfileID,
		Matches:   make([]queries.ContextMatchDTO, 0, len(matches)),
	}
	for _, m := range matches {
		node, err := h.nodeRepo.GetByID(ctx, m.NodeID)
		if err != nil {
			// A vector can outlive its node briefly; skip the orphan.
			h.logger.Debug("Skipping match without node",
				zap.String("nodeID", m.NodeID.String()),
			)
			continue
		}

		similarity := 1 - m.Distance
		if vec, ok, err := h.vectors.Get(ctx, profileID, m.NodeID); err == nil && ok {
			similarity = autolink.Cosine(queryVec, vec)
		}

		result.Matches = append(result.Matches, queries.ContextMatchDTO{
			Idea: queries.IdeaDTO{
				ID:        node.ID().String(),
				Text:      node.Text().String(),
				Summary:   node.Text().Summary(summaryLength),
				Tags:      node.Tags(),
				HasVector: node.HasVector(),
				CreatedAt: node.CreatedAt().Format(time.RFC3339),
				UpdatedAt: node.UpdatedAt().Format(time.RFC3339),
			},
			Similarity: similarity,
		})
	}

	h.logger.Debug("Context map computed",
		zap.String("profileID", query.ProfileID),
		zap.Int("matches", len(result.Matches)),
	)

	return result, nil
}
