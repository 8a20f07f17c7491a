package handlers

import (
	"context"
	"fmt"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/services"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// AutolinkHandler resolves the effective policy for an autolink request
// and delegates to the service. An explicit preset on the command wins
// over the profile's configured policy.
type AutolinkHandler struct {
	profileRepo ports.ProfileRepository
	autolinker  *services.AutolinkService
	locker      ports.Locker
	logger      Logger
}

// NewAutolinkHandler creates a new handler instance
func NewAutolinkHandler(
	profileRepo ports.ProfileRepository,
	autolinker *services.AutolinkService,
	locker ports.Locker,
	logger Logger,
) *AutolinkHandler {
	return &AutolinkHandler{
		profileRepo: profileRepo,
		autolinker:  autolinker,
		locker:      locker,
		logger:      logger,
	}
}

// HandleIdea runs one autolink pass for a single anchor
func (h *AutolinkHandler) HandleIdea(ctx context.Context, cmd commands.AutolinkIdeaCommand) (*services.AutolinkResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	profileID, cfg, provenance, err := h.resolvePolicy(ctx, cmd.ProfileID, cmd.Preset)
	if err != nil {
		return nil, err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	release, err := h.lockProfile(ctx, profileID, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	defer release()

	return h.autolinker.Autolink(ctx, profileID, nodeID, cfg, provenance)
}

// HandleProfile re-links every under-linked idea in the profile
func (h *AutolinkHandler) HandleProfile(ctx context.Context, cmd commands.AutolinkProfileCommand) ([]*services.AutolinkResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	profileID, cfg, provenance, err := h.resolvePolicy(ctx, cmd.ProfileID, cmd.Preset)
	if err != nil {
		return nil, err
	}

	release, err := h.lockProfile(ctx, profileID, cmd.ProfileID)
	if err != nil {
		return nil, err
	}
	defer release()

	return h.autolinker.AutolinkProfile(ctx, profileID, cfg, provenance)
}

// lockProfile takes the profile's writer lock so autolink passes never
// interleave with captures or resets of the same voice.
func (h *AutolinkHandler) lockProfile(ctx context.Context, profileID valueobjects.ProfileID, rawProfileID string) (func(), error) {
	if h.locker == nil {
		return func() {}, nil
	}

	lock, err := h.locker.Acquire(ctx, profileLockKey(profileID))
	if err != nil {
		return nil, pkgerrors.ErrProfileLocked.WithDetail("profile_id", rawProfileID).WithCause(err)
	}
	return func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			h.logger.Error("Failed to release autolink lock",
				"profileID", rawProfileID,
				"error", releaseErr,
			)
		}
	}, nil
}

// resolvePolicy loads the profile and picks the policy: the request's
// preset when given, the profile's own policy otherwise.
func (h *AutolinkHandler) resolvePolicy(ctx context.Context, rawProfileID, preset string) (valueobjects.ProfileID, autolink.Config, string, error) {
	profileID, err := valueobjects.NewProfileIDFromString(rawProfileID)
	if err != nil {
		return valueobjects.ProfileID{}, autolink.Config{}, "", pkgerrors.NewValidationError(err.Error())
	}

	profile, err := h.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return valueobjects.ProfileID{}, autolink.Config{}, "", pkgerrors.ErrUnknownProfile.
			WithDetail("profile_id", rawProfileID).
			WithCause(err)
	}

	if preset == "" {
		return profileID, profile.AutolinkConfig(), profile.Preset(), nil
	}

	cfg, err := autolink.FromPreset(preset)
	if err != nil {
		return valueobjects.ProfileID{}, autolink.Config{}, "", err
	}
	return profileID, cfg, preset, nil
}
