package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

const defaultSearchLimit = 50

// SearchIdeasHandler runs text and tag searches within a profile
type SearchIdeasHandler struct {
	profileRepo ports.ProfileRepository
	nodeRepo    ports.NodeRepository
	logger      *zap.Logger
}

// NewSearchIdeasHandler creates a new handler instance
func NewSearchIdeasHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	logger *zap.Logger,
) *SearchIdeasHandler {
	return &SearchIdeasHandler{
		profileRepo: profileRepo,
		nodeRepo:    nodeRepo,
		logger:      logger,
	}
}

// Handle executes the search query
func (h *SearchIdeasHandler) Handle(ctx context.Context, query queries.SearchIdeasQuery) (*queries.SearchIdeasResult, error) {
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
		limit = defaultSearchLimit
	}

	nodes, err := h.nodeRepo.Search(ctx, ports.SearchCriteria{
		ProfileID: query.ProfileID,
		Query:     query.Query,
		Tags:      query.Tags,
		Limit:     limit,
		Offset:    query.Offset,
	})
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	result := &queries.SearchIdeasResult{
		ProfileID: query.ProfileID,
		Ideas:     make([]queries.IdeaDTO, 0, len(nodes)),
		Total:     len(nodes),
	}
	for _, node := range nodes {
		result.Ideas = append(result.Ideas, queries.IdeaDTO{
			ID:        node.ID().String(),
			Text:      node.Text().String(),
			Summary:   node.Text().Summary(summaryLength),
			Tags:      node.Tags(),
			HasVector: node.HasVector(),
			CreatedAt: node.CreatedAt().Format(time.RFC3339),
			UpdatedAt: node.UpdatedAt().Format(time.RFC3339),
		})
	}

	h.logger.Debug("Idea search completed",
		zap.String("profileID", query.ProfileID),
		zap.String("query", query.Query),
		zap.Int("matches", len(nodes)),
	)

	return result, nil
}
