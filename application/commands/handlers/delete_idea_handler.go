package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

// DeleteIdeaHandler removes an idea together with its edges and its
// vector. Edges go first so the graph never holds a dangling endpoint.
type DeleteIdeaHandler struct {
	uow       ports.UnitOfWork
	vectors   ports.VectorStore
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteIdeaHandler creates a new handler instance
func NewDeleteIdeaHandler(
	uow ports.UnitOfWork,
	vectors ports.VectorStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteIdeaHandler {
	return &DeleteIdeaHandler{
		uow:       uow,
		vectors:   vectors,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle deletes the idea within a unit of work
func (h *DeleteIdeaHandler) Handle(ctx context.Context, cmd commands.DeleteIdeaCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(cmd.ProfileID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	node, err := h.uow.NodeRepository().GetByID(ctx, nodeID)
	if err != nil {
		return pkgerrors.ErrNodeNotFound.WithDetail("node_id", cmd.NodeID).WithCause(err)
	}
	if !node.BelongsTo(profileID) {
		return pkgerrors.ErrForeignNode.
			WithDetail("node_id", cmd.NodeID).
			WithDetail("profile_id", cmd.ProfileID)
	}

	if err := h.uow.Begin(ctx); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := h.uow.Rollback(); rbErr != nil {
				h.logger.Error("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err := h.uow.EdgeRepository().DeleteByNodeID(ctx, profileID, nodeID); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	if err := h.uow.NodeRepository().Delete(ctx, nodeID); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	if err := h.uow.Commit(ctx); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	committed = true

	// Vector cleanup is best effort: a stray vector with no node is
	// invisible to queries and overwritten on re-capture.
	if err := h.vectors.Delete(ctx, profileID, nodeID); err != nil {
		h.logger.Error("Failed to delete vector",
			zap.String("nodeID", cmd.NodeID),
			zap.Error(err),
		)
	}

	if h.publisher != nil {
		event := events.NewIdeaDeleted(nodeID, profileID, time.Now())
		if pubErr := h.publisher.Publish(ctx, event); pubErr != nil {
			h.logger.Error("Failed to publish idea.deleted event",
				zap.String("nodeID", cmd.NodeID),
				zap.Error(pubErr),
			)
		}
	}

	h.logger.Info("Idea deleted",
		zap.String("profileID", cmd.ProfileID),
		zap.String("nodeID", cmd.NodeID),
	)

	return nil
}
