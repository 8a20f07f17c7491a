package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/sagas"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// ResetProfileHandler clears a profile's graph through a compensating
// saga: edges first, then ideas, then the vector partition. A failure
// midway restores what was already removed, so a reset is observable
// only when it is complete.
type ResetProfileHandler struct {
	profileRepo ports.ProfileRepository
	nodeRepo    ports.NodeRepository
	edgeRepo    ports.EdgeRepository
	vectors     ports.VectorStore
	publisher   ports.EventPublisher
	locker      ports.Locker
	logger      *zap.Logger
}

// NewResetProfileHandler creates a new handler instance
func NewResetProfileHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	vectors ports.VectorStore,
	publisher ports.EventPublisher,
	locker ports.Locker,
	logger *zap.Logger,
) *ResetProfileHandler {
	return &ResetProfileHandler{
		profileRepo: profileRepo,
		nodeRepo:    nodeRepo,
		edgeRepo:    edgeRepo,
		vectors:     vectors,
		publisher:   publisher,
		locker:      locker,
		logger:      logger,
	}
}

// resetState carries the snapshot through the saga steps
type resetState struct {
	profileID valueobjects.ProfileID
	profile   *entities.Profile
	nodes     []*entities.Node
	edges     []*entities.Edge
	vectors   map[string][]float32
}

// Handle executes the reset saga
func (h *ResetProfileHandler) Handle(ctx context.Context, cmd commands.ResetProfileCommand) error {
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

	if h.locker != nil {
		lock, err := h.locker.Acquire(ctx, profileLockKey(profileID))
		if err != nil {
			return pkgerrors.ErrProfileLocked.WithDetail("profile_id", cmd.ProfileID).WithCause(err)
		}
		defer func() {
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				h.logger.Error("Failed to release reset lock",
					zap.String("profileID", cmd.ProfileID),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	saga := sagas.NewSagaBuilder("reset_profile", h.logger).
		WithStep("snapshot_graph", h.snapshotGraph).
		WithCompensableStep("delete_edges", h.deleteEdges, h.restoreEdges).
		WithCompensableStep("delete_ideas", h.deleteIdeas, h.restoreIdeas).
		WithCompensableStep("drop_vector_partition", h.dropVectors, h.restoreVectors).
		WithStep("record_reset", h.recordReset).
		Build()

	_, err = saga.Execute(ctx, &resetState{profileID: profileID, profile: profile})
	if err != nil {
		return pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	return nil
}

func (h *ResetProfileHandler) snapshotGraph(ctx context.Context, data interface{}) (interface{}, error) {
	state := data.(*resetState)

	nodes, err := h.nodeRepo.GetByProfileID(ctx, state.profileID)
	if err != nil {
		return nil, err
	}
	edges, err := h.edgeRepo.GetByProfileID(ctx, state.profileID)
	if err != nil {
		return nil, err
	}

	state.nodes = nodes
	state.edges = edges
	state.vectors = make(map[string][]float32, len(nodes))
	for _, node := range nodes {
		vec, ok, err := h.vectors.Get(ctx, state.profileID, node.ID())
		if err != nil {
			return nil, err
		}
		if ok {
			state.vectors[node.ID().String()] = vec
		}
	}

	return state, nil
}

func (h *ResetProfileHandler) deleteEdges(ctx context.Context, data interface{}) (interface{}, error) {
	state := data.(*resetState)
	for _, edge := range state.edges {
		if err := h.edgeRepo.Delete(ctx, state.profileID, edge.SourceID(), edge.TargetID()); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (h *ResetProfileHandler) restoreEdges(ctx context.Context, data interface{}) error {
	state := data.(*resetState)
	if len(state.edges) == 0 {
		return nil
	}
	return h.edgeRepo.SaveBatch(ctx, state.edges)
}

func (h *ResetProfileHandler) deleteIdeas(ctx context.Context, data interface{}) (interface{}, error) {
	state := data.(*resetState)
	ids := make([]valueobjects.NodeID, 0, len(state.nodes))
	for _, node := range state.nodes {
		ids = append(ids, node.ID())
	}
	if len(ids) > 0 {
		if err := h.nodeRepo.DeleteBatch(ctx, ids); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (h *ResetProfileHandler) restoreIdeas(ctx context.Context, data interface{}) error {
	state := data.(*resetState)
	for _, node := range state.nodes {
		if err := h.nodeRepo.Save(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

func (h *ResetProfileHandler) dropVectors(ctx context.Context, data interface{}) (interface{}, error) {
	state := data.(*resetState)
	if err := h.vectors.DropPartition(ctx, state.profileID); err != nil {
		return nil, err
	}
	return state, nil
}

func (h *ResetProfileHandler) restoreVectors(ctx context.Context, data interface{}) error {
	state := data.(*resetState)
	for id, vec := range state.vectors {
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		if err != nil {
			continue
		}
		if err := h.vectors.Upsert(ctx, state.profileID, nodeID, vec); err != nil {
			return err
		}
	}
	return nil
}

func (h *ResetProfileHandler) recordReset(ctx context.Context, data interface{}) (interface{}, error) {
	state := data.(*resetState)

	state.profile.RecordReset(len(state.nodes), len(state.edges))
	if err := h.profileRepo.Save(ctx, state.profile); err != nil {
		return nil, err
	}

	events := state.profile.GetUncommittedEvents()
	if len(events) > 0 && h.publisher != nil {
		if err := h.publisher.PublishBatch(ctx, events); err != nil {
			h.logger.Error("Failed to publish profile.reset event",
				zap.String("profileID", state.profileID.String()),
				zap.Error(err),
			)
		} else {
			state.profile.MarkEventsAsCommitted()
		}
	}

	h.logger.Info("Profile reset",
		zap.String("profileID", state.profileID.String()),
		zap.Int("ideasRemoved", len(state.nodes)),
		zap.Int("edgesRemoved", len(state.edges)),
		zap.Time("at", time.Now()),
	)

	return state, nil
}
