package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/services"
	"ideaweaver/domain/config"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// UpdateIdeaHandler replaces an idea's text, recomputes its embedding,
// and re-runs linking under the profile's policy. Existing edges stay:
// the edge writer skips pairs already linked, so a re-link only adds.
type UpdateIdeaHandler struct {
	uow         ports.UnitOfWork
	profileRepo ports.ProfileRepository
	vectors     ports.VectorStore
	embedder    ports.Embedder
	autolinker  *services.AutolinkService
	domainCfg   *config.DomainConfig
	logger      *zap.Logger
}

// NewUpdateIdeaHandler creates a new handler instance
func NewUpdateIdeaHandler(
	uow ports.UnitOfWork,
	profileRepo ports.ProfileRepository,
	vectors ports.VectorStore,
	embedder ports.Embedder,
	autolinker *services.AutolinkService,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *UpdateIdeaHandler {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &UpdateIdeaHandler{
		uow:         uow,
		profileRepo: profileRepo,
		vectors:     vectors,
		embedder:    embedder,
		autolinker:  autolinker,
		domainCfg:   domainCfg,
		logger:      logger,
	}
}

// Handle updates the idea text and refreshes its links
func (h *UpdateIdeaHandler) Handle(ctx context.Context, cmd commands.UpdateIdeaCommand) error {
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

	profile, err := h.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return pkgerrors.ErrUnknownProfile.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
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

	text, err := valueobjects.NewIdeaTextWithConfig(cmd.Text, h.domainCfg)
	if err != nil {
		return err
	}
	if err := node.UpdateText(text); err != nil {
		return err
	}

	// Re-embed before persisting so the stored hasVector flag matches
	// what the vector store will actually hold.
	var vector []float32
	if h.embedder != nil {
		embedCtx, cancel := context.WithTimeout(ctx, h.domainCfg.EmbeddingTimeout)
		vector, err = h.embedder.Embed(embedCtx, text.String())
		cancel()
		if err != nil {
			h.logger.Warn("Embedding unavailable, idea stored unembedded",
				zap.String("nodeID", cmd.NodeID),
				zap.Error(pkgerrors.ErrEmbeddingUnavailable.WithCause(err)),
			)
			vector = nil
		} else {
			node.MarkEmbedded()
		}
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
	if err := h.uow.NodeRepository().Save(ctx, node); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	if err := h.uow.Commit(ctx); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	committed = true

	if vector != nil {
		if err := h.vectors.Upsert(ctx, profileID, nodeID, vector); err != nil {
			h.logger.Error("Failed to upsert vector",
				zap.String("nodeID", cmd.NodeID),
				zap.Error(err),
			)
			vector = nil
		}
	}

	if vector != nil && h.autolinker != nil && h.domainCfg.EnableAutolink {
		if _, linkErr := h.autolinker.Autolink(ctx, profileID, nodeID, profile.AutolinkConfig(), profile.Preset()); linkErr != nil {
			// The update already succeeded; linking can be retried.
			h.logger.Warn("Re-link after update failed",
				zap.String("nodeID", cmd.NodeID),
				zap.Error(linkErr),
			)
		}
	}

	h.logger.Info("Idea updated",
		zap.String("profileID", cmd.ProfileID),
		zap.String("nodeID", cmd.NodeID),
		zap.Int("version", node.Version()),
	)

	return nil
}
