package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	pkgerrors "ideaweaver/pkg/errors"
)

// ListProfilesHandler lists voice profiles with graph counts
type ListProfilesHandler struct {
	profileRepo ports.ProfileRepository
	nodeRepo    ports.NodeRepository
	edgeRepo    ports.EdgeRepository
	logger      *zap.Logger
}

// NewListProfilesHandler creates a new handler instance
func NewListProfilesHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	logger *zap.Logger,
) *ListProfilesHandler {
	return &ListProfilesHandler{
		profileRepo: profileRepo,
		nodeRepo:    nodeRepo,
		edgeRepo:    edgeRepo,
		logger:      logger,
	}
}

// Handle executes the list query
func (h *ListProfilesHandler) Handle(ctx context.Context, query queries.ListProfilesQuery) (*queries.ListProfilesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	profiles, err := h.profileRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	total := len(profiles)
	start := query.Offset
	if start > total {
		start = total
	}
	end := total
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	page := profiles[start:end]

	result := &queries.ListProfilesResult{
		Profiles:   make([]queries.ProfileSummary, 0, len(page)),
		TotalCount: total,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}

	for _, profile := range page {
		ideaCount, err := h.nodeRepo.CountByProfileID(ctx, profile.ID())
		if err != nil {
			h.logger.Warn("Failed to count ideas",
				zap.String("profileID", profile.ID().String()),
				zap.Error(err),
			)
			ideaCount = 0
		}
		edges, err := h.edgeRepo.GetByProfileID(ctx, profile.ID())
		if err != nil {
			h.logger.Warn("Failed to count edges",
				zap.String("profileID", profile.ID().String()),
				zap.Error(err),
			)
		}

		result.Profiles = append(result.Profiles, queries.ProfileSummary{
			ID:        profile.ID().String(),
			Name:      profile.Name(),
			Preset:    profile.Preset(),
			IdeaCount: ideaCount,
			EdgeCount: len(edges),
			CreatedAt: profile.CreatedAt().Format(time.RFC3339),
			UpdatedAt: profile.UpdatedAt().Format(time.RFC3339),
		})
	}

	return result, nil
}
