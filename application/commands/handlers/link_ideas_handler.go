package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/services"
	"ideaweaver/domain/core/validators"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

// LinkIdeasHandler creates a single manual edge between two ideas of
// the same profile
type LinkIdeasHandler struct {
	profileRepo ports.ProfileRepository
	writer      *services.EdgeWriter
	publisher   ports.EventPublisher
	validator   *validators.EdgeValidator
	logger      *zap.Logger
}

// NewLinkIdeasHandler creates a new handler instance
func NewLinkIdeasHandler(
	profileRepo ports.ProfileRepository,
	writer *services.EdgeWriter,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *LinkIdeasHandler {
	return &LinkIdeasHandler{
		profileRepo: profileRepo,
		writer:      writer,
		publisher:   publisher,
		validator:   validators.NewEdgeValidator(),
		logger:      logger,
	}
}

// Handle validates ownership and writes the edge with manual provenance
func (h *LinkIdeasHandler) Handle(ctx context.Context, cmd commands.LinkIdeasCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(cmd.ProfileID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	sourceID, err := valueobjects.NewNodeIDFromString(cmd.SourceID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	targetID, err := valueobjects.NewNodeIDFromString(cmd.TargetID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	if err := h.validator.ValidateEdge(cmd.SourceID, cmd.TargetID); err != nil {
		return err
	}
	if err := h.validator.ValidateEdgeWeight(cmd.Weight); err != nil {
		return err
	}

	if _, err := h.profileRepo.GetByID(ctx, profileID); err != nil {
		return pkgerrors.ErrUnknownProfile.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
	}

	edge, err := h.writer.WriteManual(ctx, profileID, sourceID, targetID, cmd.Weight)
	if err != nil {
		return err
	}

	if h.publisher != nil {
		event := events.NewEdgesLinked(sourceID, profileID, []events.LinkedEdge{{
			SourceID: edge.SourceID().String(),
			TargetID: edge.TargetID().String(),
			Weight:   edge.Weight(),
		}}, "manual", time.Now())
		if pubErr := h.publisher.Publish(ctx, event); pubErr != nil {
			h.logger.Error("Failed to publish edges.linked event",
				zap.String("profileID", cmd.ProfileID),
				zap.Error(pubErr),
			)
		}
	}

	h.logger.Info("Manual edge created",
		zap.String("profileID", cmd.ProfileID),
		zap.String("sourceID", edge.SourceID().String()),
		zap.String("targetID", edge.TargetID().String()),
		zap.Float64("weight", edge.Weight()),
	)

	return nil
}
