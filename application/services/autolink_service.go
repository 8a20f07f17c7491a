package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

// AutolinkService wires a captured idea into its profile's graph.
// Candidates come from the vector index when the corpus is large enough
// to trust it, and from a brute-force scan over the most recent ideas
// otherwise. The pure policy in domain/autolink decides which candidates
// become edges; the EdgeWriter commits them atomically.
type AutolinkService struct {
	nodeRepo     ports.NodeRepository
	edgeRepo     ports.EdgeRepository
	vectors      ports.VectorStore
	writer       *EdgeWriter
	publisher    ports.EventPublisher
	recentWindow int
	logger       *zap.Logger
}

// AutolinkResult reports what one autolink pass produced. Considered
// counts the candidates the policy evaluated; Linked counts the edges
// actually committed.
type AutolinkResult struct {
	AnchorID     valueobjects.NodeID
	Edges        []*entities.Edge
	Considered   int
	Linked       int
	UsedFallback bool
	Provenance   string
}

// NewAutolinkService creates a new autolink service
func NewAutolinkService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	vectors ports.VectorStore,
	writer *EdgeWriter,
	publisher ports.EventPublisher,
	recentWindow int,
	logger *zap.Logger,
) *AutolinkService {
	if recentWindow <= 0 {
		recentWindow = 200
	}
	return &AutolinkService{
		nodeRepo:     nodeRepo,
		edgeRepo:     edgeRepo,
		vectors:      vectors,
		writer:       writer,
		publisher:    publisher,
		recentWindow: recentWindow,
		logger:       logger,
	}
}

// Autolink links one anchor idea into its profile's graph under the
// given policy. Running it twice is a no-op the second time: existing
// pairs are never rewritten.
func (s *AutolinkService) Autolink(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
	cfg autolink.Config,
	provenance string,
) (*AutolinkResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if provenance == "" {
		provenance = autolink.ProvenanceCustom
	}

	anchor, err := s.nodeRepo.GetByID(ctx, anchorID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", anchorID.String()).WithCause(err)
	}
	if !anchor.BelongsTo(profileID) {
		return nil, pkgerrors.ErrForeignNode.
			WithDetail("node_id", anchorID.String()).
			WithDetail("profile_id", profileID.String())
	}

	anchorVec, ok, err := s.vectors.Get(ctx, profileID, anchorID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}
	if !ok {
		return nil, pkgerrors.ErrMissingVector.WithDetail("node_id", anchorID.String())
	}

	linked, err := s.linkedNeighbors(ctx, profileID, anchorID)
	if err != nil {
		return nil, err
	}

	candidates, usedFallback, err := s.gatherCandidates(ctx, profileID, anchorID, anchorVec, linked, cfg)
	if err != nil {
		return nil, err
	}

	accepted := autolink.Decide(candidates, cfg)

	edges, err := s.writer.WriteBatch(ctx, profileID, anchorID, accepted, provenance)
	if err != nil {
		return nil, err
	}

	result := &AutolinkResult{
		AnchorID:     anchorID,
		Edges:        edges,
		Considered:   len(candidates),
		Linked:       len(edges),
		UsedFallback: usedFallback,
		Provenance:   provenance,
	}

	s.logger.Info("Autolink pass complete",
		zap.String("anchor", anchorID.String()),
		zap.String("profile", profileID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("edges", len(edges)),
		zap.Bool("fallback", usedFallback),
	)

	if len(edges) > 0 && s.publisher != nil {
		linked := make([]events.LinkedEdge, 0, len(edges))
		for _, e := range edges {
			linked = append(linked, events.LinkedEdge{
				SourceID: e.SourceID().String(),
				TargetID: e.TargetID().String(),
				Weight:   e.Weight(),
			})
		}
		event := events.NewEdgesLinked(anchorID, profileID, linked, provenance, time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			// Edges are committed; a lost notification must not undo them.
			s.logger.Warn("Failed to publish edges.linked event",
				zap.Error(err),
				zap.String("anchor", anchorID.String()),
			)
		}
	}

	return result, nil
}

// AutolinkProfile re-links every under-linked idea in a profile. Ideas
// without vectors are skipped rather than failing the whole pass.
func (s *AutolinkService) AutolinkProfile(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	cfg autolink.Config,
	provenance string,
) ([]*AutolinkResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nodes, err := s.nodeRepo.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	var results []*AutolinkResult
	for _, node := range nodes {
		existing, err := s.edgeRepo.GetByNodeID(ctx, profileID, node.ID())
		if err != nil {
			return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
		}
		if len(existing) >= cfg.MaxEdges {
			continue
		}

		result, err := s.Autolink(ctx, profileID, node.ID(), cfg, provenance)
		if err != nil {
			if pkgerrors.IsDomainCode(err, "MISSING_VECTOR") {
				s.logger.Debug("Skipping idea without vector",
					zap.String("node", node.ID().String()),
				)
				continue
			}
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// linkedNeighbors returns the IDs already edged to the anchor. They are
// excluded from candidate gathering so existing pairs never consume
// MaxEdges slots on a re-run.
func (s *AutolinkService) linkedNeighbors(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
) (map[string]bool, error) {
	existing, err := s.edgeRepo.GetByNodeID(ctx, profileID, anchorID)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	linked := make(map[string]bool, len(existing))
	for _, edge := range existing {
		if other, ok := edge.Other(anchorID); ok {
			linked[other.String()] = true
		}
	}
	return linked, nil
}

// gatherCandidates collects scored neighbors for the anchor. The index
// answers when the partition is big enough and returns at least one
// usable neighbor; otherwise the recent-idea window is scanned directly.
func (s *AutolinkService) gatherCandidates(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
	anchorVec []float32,
	linked map[string]bool,
	cfg autolink.Config,
) ([]autolink.Candidate, bool, error) {
	corpusSize, err := s.vectors.Count(ctx, profileID)
	if err != nil {
		return nil, false, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	var fromIndex []autolink.Candidate
	if corpusSize >= cfg.FallbackMinCorpusSize {
		fromIndex, err = s.indexCandidates(ctx, profileID, anchorID, anchorVec, linked, cfg)
		if err != nil {
			return nil, false, err
		}
	}

	if len(fromIndex) > 0 {
		return fromIndex, false, nil
	}

	fallback, err := s.fallbackCandidates(ctx, profileID, anchorID, anchorVec, linked, cfg)
	if err != nil {
		return nil, false, err
	}
	return fallback, true, nil
}

func (s *AutolinkService) indexCandidates(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
	anchorVec []float32,
	linked map[string]bool,
	cfg autolink.Config,
) ([]autolink.Candidate, error) {
	// Ask for extra matches: the anchor itself comes back, and already
	// linked neighbors are dropped.
	matches, err := s.vectors.Nearest(ctx, profileID, anchorVec, cfg.KNeighbors+len(linked)+1)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	var candidates []autolink.Candidate
	for _, m := range matches {
		if m.NodeID.Equals(anchorID) || linked[m.NodeID.String()] {
			continue
		}
		if len(candidates) >= cfg.KNeighbors {
			break
		}

		dist := m.Distance
		candidate := autolink.Candidate{
			NodeID:   m.NodeID.String(),
			Distance: &dist,
		}

		// The similarity side of the policy needs the raw cosine; the
		// candidate's vector is in the same partition.
		if vec, ok, err := s.vectors.Get(ctx, profileID, m.NodeID); err == nil && ok {
			sim := autolink.Cosine(anchorVec, vec)
			candidate.Similarity = &sim

			if cfg.StrictMutual {
				mutual, err := s.isMutual(ctx, profileID, anchorID, m.NodeID, vec, cfg.KNeighbors)
				if err != nil {
					return nil, err
				}
				candidate.Mutual = mutual
			}
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// isMutual checks whether the anchor sits inside the candidate's own
// k nearest neighbors.
func (s *AutolinkService) isMutual(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID, candidateID valueobjects.NodeID,
	candidateVec []float32,
	k int,
) (bool, error) {
	matches, err := s.vectors.Nearest(ctx, profileID, candidateVec, k+1)
	if err != nil {
		return false, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	count := 0
	for _, m := range matches {
		if m.NodeID.Equals(candidateID) {
			continue
		}
		if count >= k {
			break
		}
		if m.NodeID.Equals(anchorID) {
			return true, nil
		}
		count++
	}
	return false, nil
}

func (s *AutolinkService) fallbackCandidates(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	anchorID valueobjects.NodeID,
	anchorVec []float32,
	linked map[string]bool,
	cfg autolink.Config,
) ([]autolink.Candidate, error) {
	recent, err := s.nodeRepo.GetRecent(ctx, profileID, s.recentWindow)
	if err != nil {
		return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
	}

	vectors := make(map[string][]float32)
	for _, node := range recent {
		if node.ID().Equals(anchorID) || linked[node.ID().String()] {
			continue
		}
		vec, ok, err := s.vectors.Get(ctx, profileID, node.ID())
		if err != nil {
			return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
		}
		if !ok {
			continue
		}
		vectors[node.ID().String()] = vec
	}

	scored := autolink.ScoreAgainst(anchorVec, vectors)
	if len(scored) > cfg.KNeighbors {
		scored = scored[:cfg.KNeighbors]
	}

	candidates := make([]autolink.Candidate, 0, len(scored))
	for _, sc := range scored {
		sim := sc.Similarity
		candidate := autolink.Candidate{
			NodeID:     sc.NodeID,
			Similarity: &sim,
		}

		if cfg.StrictMutual {
			candidate.Mutual = s.isMutualBruteForce(anchorID.String(), sc.NodeID, anchorVec, vectors, cfg.KNeighbors)
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// isMutualBruteForce checks mutuality inside the fallback window: the
// anchor must rank within the candidate's k best matches over the same
// set of vectors.
func (s *AutolinkService) isMutualBruteForce(
	anchorID, candidateID string,
	anchorVec []float32,
	window map[string][]float32,
	k int,
) bool {
	candidateVec, ok := window[candidateID]
	if !ok {
		return false
	}

	others := make(map[string][]float32, len(window))
	for id, vec := range window {
		if id == candidateID {
			continue
		}
		others[id] = vec
	}
	others[anchorID] = anchorVec

	scored := autolink.ScoreAgainst(candidateVec, others)
	if len(scored) > k {
		scored = scored[:k]
	}
	for _, sc := range scored {
		if sc.NodeID == anchorID {
			return true
		}
	}
	return false
}
