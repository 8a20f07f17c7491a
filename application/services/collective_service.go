package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

// CollectiveService assembles a working set of ideas from seed IDs and
// optionally drafts new text in the profile's voice from that set.
// Seeds come back in the order given; expansion never displaces a seed.
type CollectiveService struct {
	nodeRepo  ports.NodeRepository
	edgeRepo  ports.EdgeRepository
	generator ports.Generator
	logger    *zap.Logger
}

// Selection is the assembled working set
type Selection struct {
	Seeds    []*entities.Node
	Expanded []*entities.Node
}

// All returns seeds followed by expanded ideas, in selection order
func (s *Selection) All() []*entities.Node {
	all := make([]*entities.Node, 0, len(s.Seeds)+len(s.Expanded))
	all = append(all, s.Seeds...)
	all = append(all, s.Expanded...)
	return all
}

// NewCollectiveService creates a new collective service
func NewCollectiveService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	generator ports.Generator,
	logger *zap.Logger,
) *CollectiveService {
	return &CollectiveService{
		nodeRepo:  nodeRepo,
		edgeRepo:  edgeRepo,
		generator: generator,
		logger:    logger,
	}
}

// Select resolves the seed ideas, preserving their order, and when
// expand is true pulls in their 1-hop neighbors ordered by descending
// edge weight with ties broken by ascending node ID. maxContext caps
// the TOTAL selection: seeds always survive the cap, only expansion
// nodes are dropped to stay within it.
func (s *CollectiveService) Select(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	seedIDs []valueobjects.NodeID,
	expand bool,
	maxContext int,
) (*Selection, error) {
	if len(seedIDs) == 0 {
		return nil, pkgerrors.NewValidationError("at least one seed idea is required")
	}

	selection := &Selection{}
	inSet := make(map[string]bool, len(seedIDs))

	for _, id := range seedIDs {
		if inSet[id.String()] {
			continue
		}

		node, err := s.nodeRepo.GetByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.ErrNodeNotFound.WithDetail("node_id", id.String()).WithCause(err)
		}
		if !node.BelongsTo(profileID) {
			return nil, pkgerrors.ErrForeignNode.
				WithDetail("node_id", id.String()).
				WithDetail("profile_id", profileID.String())
		}

		selection.Seeds = append(selection.Seeds, node)
		inSet[id.String()] = true
	}

	if !expand {
		return selection, nil
	}

	neighbors, err := s.oneHopNeighbors(ctx, profileID, selection.Seeds, inSet)
	if err != nil {
		return nil, err
	}

	// The cap bounds the whole selection. Seeds are never dropped, so
	// the expansion budget is whatever room they leave.
	if maxContext > 0 {
		room := maxContext - len(selection.Seeds)
		if room < 0 {
			room = 0
		}
		if len(neighbors) > room {
			neighbors = neighbors[:room]
		}
	}

	for _, n := range neighbors {
		node, err := s.nodeRepo.GetByID(ctx, n.id)
		if err != nil {
			// A dangling edge is a data problem, not a selection failure.
			s.logger.Warn("Edge references missing idea",
				zap.String("node", n.id.String()),
			)
			continue
		}
		selection.Expanded = append(selection.Expanded, node)
	}

	s.logger.Debug("Collective selection assembled",
		zap.String("profile", profileID.String()),
		zap.Int("seeds", len(selection.Seeds)),
		zap.Int("expanded", len(selection.Expanded)),
	)

	return selection, nil
}

type weightedNeighbor struct {
	id     valueobjects.NodeID
	weight float64
}

// oneHopNeighbors collects the neighbors of all seeds, deduplicated,
// keeping the strongest edge weight per neighbor.
func (s *CollectiveService) oneHopNeighbors(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	seeds []*entities.Node,
	exclude map[string]bool,
) ([]weightedNeighbor, error) {
	best := make(map[string]float64)

	for _, seed := range seeds {
		edges, err := s.edgeRepo.GetByNodeID(ctx, profileID, seed.ID())
		if err != nil {
			return nil, pkgerrors.ErrPersistenceFailure.WithCause(err)
		}
		for _, edge := range edges {
			other, ok := edge.Other(seed.ID())
			if !ok || exclude[other.String()] {
				continue
			}
			if w, seen := best[other.String()]; !seen || edge.Weight() > w {
				best[other.String()] = edge.Weight()
			}
		}
	}

	neighbors := make([]weightedNeighbor, 0, len(best))
	for id, weight := range best {
		nodeID, err := valueobjects.NewNodeIDFromString(id)
		if err != nil {
			continue
		}
		neighbors = append(neighbors, weightedNeighbor{id: nodeID, weight: weight})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].weight != neighbors[j].weight {
			return neighbors[i].weight > neighbors[j].weight
		}
		return neighbors[i].id.String() < neighbors[j].id.String()
	})

	return neighbors, nil
}

// Compose drafts new text in the profile's voice from the selected
// ideas. The context block is truncated to maxContextChars; ideas are
// dropped from the tail, never reordered. When no generator is wired
// or generation fails, composition degrades to a local extractive
// draft built from the selected texts instead of failing the call.
func (s *CollectiveService) Compose(
	ctx context.Context,
	profileID valueobjects.ProfileID,
	seedIDs []valueobjects.NodeID,
	intent string,
	expand bool,
	maxContext, maxContextChars int,
) (string, error) {
	selection, err := s.Select(ctx, profileID, seedIDs, expand, maxContext)
	if err != nil {
		return "", err
	}

	if s.generator == nil {
		return composeLocal(selection.All(), intent, maxContextChars), nil
	}

	prompt := buildComposePrompt(selection.All(), intent, maxContextChars)

	output, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Generation unavailable, composing locally",
			zap.String("profile", profileID.String()),
			zap.Error(pkgerrors.ErrGenerationUnavailable.WithCause(err)),
		)
		return composeLocal(selection.All(), intent, maxContextChars), nil
	}

	s.logger.Info("Collective composition produced",
		zap.String("profile", profileID.String()),
		zap.Int("ideas", len(selection.All())),
		zap.Int("outputChars", len(output)),
	)

	return output, nil
}

// composeLocal stitches the selected ideas into a plain extractive
// draft: selection order preserved, one idea per paragraph, truncated
// at maxContextChars on paragraph boundaries.
func composeLocal(nodes []*entities.Node, intent string, maxContextChars int) string {
	var b strings.Builder
	if intent != "" {
		b.WriteString(intent)
		b.WriteString("\n\n")
	}

	used := b.Len()
	for _, node := range nodes {
		paragraph := node.Text().String() + "\n\n"
		if maxContextChars > 0 && used+len(paragraph) > maxContextChars {
			break
		}
		b.WriteString(paragraph)
		used += len(paragraph)
	}

	return strings.TrimSpace(b.String())
}

func buildComposePrompt(nodes []*entities.Node, intent string, maxContextChars int) string {
	var b strings.Builder
	b.WriteString("You will be given a set of related ideas. ")
	b.WriteString("Write a short piece that develops them in the same voice.\n\nIdeas:\n")

	used := 0
	for i, node := range nodes {
		line := fmt.Sprintf("%d. %s\n", i+1, node.Text().String())
		if maxContextChars > 0 && used+len(line) > maxContextChars {
			break
		}
		b.WriteString(line)
		used += len(line)
	}

	if intent != "" {
		b.WriteString("\nIntent: ")
		b.WriteString(intent)
		b.WriteString("\n")
	}

	return b.String()
}
