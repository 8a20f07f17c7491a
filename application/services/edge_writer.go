package services

import (
	"context"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// EdgeWriter commits accepted autolink decisions as edges. A batch is
// all-or-nothing: if any edge cannot be written, none are. Pairs that
// already exist are skipped, never rewritten.
type EdgeWriter struct {
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	logger   *zap.Logger
}

// NewEdgeWriter creates a new edge writer
func NewEdgeWriter(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	logger *zap.Logger,
) *EdgeWriter {
	return &EdgeWriter{
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		logger:   logger,
	}
}

// WriteBatch persists edges from the anchor to each accepted neighbor.
// Every endpoint is verified to exist and to belong to the anchor's
// profile before anything is written. Returns the edges actually
// created; already-linked pairs are skipped silently.
func (w *EdgeWriter) WriteBatch(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
	accepted []autolink.Accepted,
	provenance string,
) ([]*entities.Edge, error) {
	if len(accepted) == 0 {
		return nil, nil
	}

	var edges []*entities.Edge
	seen := map[string]bool{}

	for _, a := range accepted {
		targetID, err := valueobjects.NewNodeIDFromString(a.NodeID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("invalid target node ID: " + a.NodeID)
		}

		if targetID.Equals(anchorID) {
			continue
		}

		target, err := w.nodeRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", a.NodeID).WithCause(err)
		}
		if !target.BelongsTo(profileID) {
			return nil, pkgerrors.ErrForeignNode.
				WithDetail("node_id", a.NodeID).
				WithDetail("profile_id", profileID.String())
		}

		edge, err := entities.NewEdge(profileID, anchorID, targetID, a.Weight, provenance)
		if err != nil {
			return nil, err
		}

		// Dedupe within the batch and against the stored graph.
		if seen[edge.PairKey()] {
			continue
		}
		seen[edge.PairKey()] = true

		exists, err := w.edgeRepo.Exists(ctx, profileID, anchorID, targetID)
		if err != nil {
			return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
		}
		if exists {
			w.logger.Debug("Skipping existing edge",
				zap.String("anchor", anchorID.String()),
				zap.String("target", a.NodeID),
			)
			continue
		}

		edges = append(edges, edge)
	}

	if len(edges) == 0 {
		return nil, nil
	}

	if err := w.edgeRepo.SaveBatch(ctx, edges); err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	w.logger.Info("Edge batch committed",
		zap.String("anchor", anchorID.String()),
		zap.String("provenance", provenance),
		zap.Int("edgeCount", len(edges)),
	)

	return edges, nil
}

// WriteManual persists a single user-created edge between two ideas
func (w *EdgeWriter) WriteManual(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	sourceID, targetID valueobjects.NodeID,
	weight float64,
) (*entities.Edge, error) {
	for _, id := range []valueobjects.NodeID{sourceID, targetID} {
		node, err := w.nodeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", id.String()).WithCause(err)
		}
		if !node.BelongsTo(profileID) {
			return nil, pkgerrors.ErrForeignNode.WithDetail("node_id", id.String())
		}
	}

	exists, err := w.edgeRepo.Exists(ctx, profileID, sourceID, targetID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	if exists {
		return nil, pkgerrors.ErrDuplicateEdge.
			WithDetail("pair", entities.EdgePairKey(sourceID, targetID))
	}

	edge, err := entities.NewEdge(profileID, sourceID, targetID, weight, "manual")
	if err != nil {
		return nil, err
	}

	if err := w.edgeRepo.Save(ctx, edge); err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	w.logger.Info("Edge created",
		zap.String("edgeID", edge.ID()),
		zap.String("source", sourceID.String()),
		zap.String("target", targetID.String()),
		zap.Float64("weight", edge.Weight()),
	)

	return edge, nil
}
