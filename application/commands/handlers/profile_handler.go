package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/validators"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// ProfileHandler handles voice profile lifecycle commands
type ProfileHandler struct {
	profileRepo ports.ProfileRepository
	publisher   ports.EventPublisher
	validator   *validators.ProfileValidator
	logger      *zap.Logger
}

// NewProfileHandler creates a new handler instance
func NewProfileHandler(
	profileRepo ports.ProfileRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
		publisher:   publisher,
		validator:   validators.NewProfileValidator(),
		logger:      logger,
	}
}

// HandleCreate creates a new profile and returns its ID
func (h *ProfileHandler) HandleCreate(ctx context.Context, cmd commands.CreateProfileCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", fmt.Errorf("invalid command: %w", err)
	}
	if err := h.validator.ValidateProfileName(cmd.Name); err != nil {
		return "", err
	}

	profile, err := entities.NewProfile(cmd.Name, cmd.Preset)
	if err != nil {
		return "", err
	}

	if err := h.profileRepo.Save(ctx, profile); err != nil {
		return "", pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	h.publishEvents(ctx, profile)

	h.logger.Info("Profile created",
		zap.String("profileID", profile.ID().String()),
		zap.String("name", profile.Name()),
		zap.String("preset", profile.Preset()),
	)

	return profile.ID().String(), nil
}

// HandleUpdate renames a profile or changes its autolink policy. A
// named preset replaces any custom knobs; custom knobs start from the
// profile's current policy.
func (h *ProfileHandler) HandleUpdate(ctx context.Context, cmd commands.UpdateProfileCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	profileID, err := valueobjects.NewProfileIDFromString(cmd.ProfileID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	profile, err := h.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return pkgerrors.ErrUnknownProfile.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
	}

	if cmd.Name != "" {
		if err := h.validator.ValidateProfileName(cmd.Name); err != nil {
			return err
		}
		if err := profile.Rename(cmd.Name); err != nil {
			return err
		}
	}

	switch {
	case cmd.Preset != "":
		if err := profile.ApplyPreset(cmd.Preset); err != nil {
			return err
		}
	case cmd.HasCustomKnobs():
		cfg := profile.AutolinkConfig()
		if cmd.MinCosine != nil {
			cfg.MinCosine = *cmd.MinCosine
		}
		if cmd.MaxDistance != nil {
			cfg.MaxDistance = *cmd.MaxDistance
		}
		if cmd.StrictMutual != nil {
			cfg.StrictMutual = *cmd.StrictMutual
		}
		if cmd.MaxEdges != nil {
			cfg.MaxEdges = *cmd.MaxEdges
		}
		if cmd.KNeighbors != nil {
			cfg.KNeighbors = *cmd.KNeighbors
		}
		if cmd.FallbackMinCorpusSize != nil {
			cfg.FallbackMinCorpusSize = *cmd.FallbackMinCorpusSize
		}
		if err := profile.ApplyCustomConfig(cfg); err != nil {
			return err
		}
	}

	if err := h.profileRepo.Save(ctx, profile); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	h.publishEvents(ctx, profile)

	h.logger.Info("Profile updated",
		zap.String("profileID", profile.ID().String()),
		zap.String("preset", profile.Preset()),
	)

	return nil
}

// HandleDelete removes a profile. The graph must be reset first so the
// delete never strands ideas without an owner.
func (h *ProfileHandler) HandleDelete(ctx context.Context, profileID string) error {
	id, err := valueobjects.NewProfileIDFromString(profileID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	if _, err := h.profileRepo.GetByID(ctx, id); err != nil {
		return pkgerrors.ErrUnknownProfile.WithDetail("profile_id", profileID).WithCause(err)
	}

	if err := h.profileRepo.Delete(ctx, id); err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	h.logger.Info("Profile deleted", zap.String("profileID", profileID))
	return nil
}

func (h *ProfileHandler) publishEvents(ctx context.Context, profile *entities.Profile) {
	events := profile.GetUncommittedEvents()
	if len(events) == 0 || h.publisher == nil {
		return
	}
	if err := h.publisher.PublishBatch(ctx, events); err != nil {
		h.logger.Error("Failed to publish profile events",
			zap.String("profileID", profile.ID().String()),
			zap.Error(err),
		)
		return
	}
	profile.MarkEventsAsCommitted()
}
