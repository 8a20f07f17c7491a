package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
)

type collectiveFixture struct {
	nodes     *memNodeRepo
	edges     *memEdgeRepo
	service   *CollectiveService
	profileID valueobjects.ProfileID
}

func newCollectiveFixture(t *testing.T, gen *fakeGenerator) *collectiveFixture {
	t.Helper()
	nodes := newMemNodeRepo()
	edges := newMemEdgeRepo()

	f := &collectiveFixture{
		nodes:     nodes,
		edges:     edges,
		profileID: valueobjects.NewProfileID(),
	}
	if gen != nil {
		f.service = NewCollectiveService(nodes, edges, gen, zap.NewNop())
	} else {
		f.service = NewCollectiveService(nodes, edges, nil, zap.NewNop())
	}
	return f
}

func (f *collectiveFixture) idea(t *testing.T, text string) *entities.Node {
	t.Helper()
	return f.ideaInto(t, f.profileID, text)
}

func (f *collectiveFixture) ideaInto(t *testing.T, profileID valueobjects.ProfileID, text string) *entities.Node {
	t.Helper()
	ideaText, err := valueobjects.NewIdeaText(text)
	require.NoError(t, err)
	node, err := entities.NewNode(profileID, ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, f.nodes.Save(context.Background(), node))
	return node
}

func (f *collectiveFixture) link(t *testing.T, a, b *entities.Node, weight float64) {
	t.Helper()
	edge, err := entities.NewEdge(f.profileID, a.ID(), b.ID(), weight, "manual")
	require.NoError(t, err)
	require.NoError(t, f.edges.Save(context.Background(), edge))
}

func TestSelect_PreservesSeedOrder(t *testing.T) {
	f := newCollectiveFixture(t, nil)
	ctx := context.Background()

	first := f.idea(t, "first seed")
	second := f.idea(t, "second seed")
	third := f.idea(t, "third seed")

	selection, err := f.service.Select(ctx, f.profileID,
		[]valueobjects.NodeID{third.ID(), first.ID(), second.ID()}, false, 0)
	require.NoError(t, err)

	require.Len(t, selection.Seeds, 3)
	assert.True(t, selection.Seeds[0].ID().Equals(third.ID()))
	assert.True(t, selection.Seeds[1].ID().Equals(first.ID()))
	assert.True(t, selection.Seeds[2].ID().Equals(second.ID()))
}

func TestSelect_ExpandsByWeightDescending(t *testing.T) {
	f := newCollectiveFixture(t, nil)
	ctx := context.Background()

	seed := f.idea(t, "the seed")
	weak := f.idea(t, "weak neighbor")
	strong := f.idea(t, "strong neighbor")
	f.link(t, seed, weak, 0.3)
	f.link(t, seed, strong, 0.9)

	selection, err := f.service.Select(ctx, f.profileID,
		[]valueobjects.NodeID{seed.ID()}, true, 0)
	require.NoError(t, err)

	require.Len(t, selection.Expanded, 2)
	assert.True(t, selection.Expanded[0].ID().Equals(strong.ID()))
	assert.True(t, selection.Expanded[1].ID().Equals(weak.ID()))
}

func TestSelect_ExpansionNeverDisplacesSeeds(t *testing.T) {
	f := newCollectiveFixture(t, nil)
	ctx := context.Background()

	seedA := f.idea(t, "seed a")
	seedB := f.idea(t, "seed b")
	n1 := f.idea(t, "neighbor one")
	n2 := f.idea(t, "neighbor two")
	n3 := f.idea(t, "neighbor three")
	f.link(t, seedA, n1, 0.9)
	f.link(t, seedA, n2, 0.8)
	f.link(t, seedB, n3, 0.7)

	selection, err := f.service.Select(ctx, f.profileID,
		[]valueobjects.NodeID{seedA.ID(), seedB.ID()}, true, 1)
	require.NoError(t, err)

	assert.Len(t, selection.Seeds, 2, "seeds are never truncated")
	assert.Empty(t, selection.Expanded, "no room left after seeds")
}

func TestSelect_CapBoundsTotalSelection(t *testing.T) {
	f := newCollectiveFixture(t, nil)
	ctx := context.Background()

	seedA := f.idea(t, "seed a")
	seedB := f.idea(t, "seed b")
	n1 := f.idea(t, "neighbor one")
	n2 := f.idea(t, "neighbor two")
	n3 := f.idea(t, "neighbor three")
	f.link(t, seedA, n1, 0.9)
	f.link(t, seedA, n2, 0.8)
	f.link(t, seedB, n3, 0.7)

	selection, err := f.service.Select(ctx, f.profileID,
		[]valueobjects.NodeID{seedA.ID(), seedB.ID()}, true, 3)
	require.NoError(t, err)

	assert.Len(t, selection.All(), 3, "cap bounds seeds plus expansion together")
	require.Len(t, selection.Seeds, 2)
	require.Len(t, selection.Expanded, 1)
	assert.True(t, selection.Expanded[0].ID().Equals(n1.ID()))
}

func TestSelect_SeedsExcludedFromExpansion(t *testing.T) {
	f := newCollectiveFixture(t, nil)
	ctx := context.Background()

	seedA := f.idea(t, "seed a")
	seedB := f.idea(t, "seed b")
	f.link(t, seedA, seedB, 0.9)

	selection, err := f.service.Select(ctx, f.profileID,
		[]valueobjects.NodeID{seedA.ID(), seedB.ID()}, true, 0)
	require.NoError(t, err)

	assert.Empty(t, selection.Expanded)
}

func TestSelect_RejectsUnknownSeed(t *testing.T) {
	f := newCollectiveFixture(t, nil)

	_, err := f.service.Select(context.Background(), f.profileID,
		[]valueobjects.NodeID{valueobjects.NewNodeID()}, false, 0)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "NODE_NOT_FOUND"))
}

func TestSelect_RejectsForeignSeed(t *testing.T) {
	f := newCollectiveFixture(t, nil)

	foreign := f.ideaInto(t, valueobjects.NewProfileID(), "belongs elsewhere")

	_, err := f.service.Select(context.Background(), f.profileID,
		[]valueobjects.NodeID{foreign.ID()}, false, 0)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "FOREIGN_NODE"))
}

func TestCompose_DraftsFromSelection(t *testing.T) {
	gen := &fakeGenerator{output: "a woven draft"}
	f := newCollectiveFixture(t, gen)
	ctx := context.Background()

	seed := f.idea(t, "composable thought")

	output, err := f.service.Compose(ctx, f.profileID,
		[]valueobjects.NodeID{seed.ID()}, "make it short", false, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "a woven draft", output)
}

func TestCompose_GeneratorFailureDegradesToLocalDraft(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model offline")}
	f := newCollectiveFixture(t, gen)

	seed := f.idea(t, "stranded thought")

	output, err := f.service.Compose(context.Background(), f.profileID,
		[]valueobjects.NodeID{seed.ID()}, "", false, 0, 0)
	require.NoError(t, err)

	assert.Contains(t, output, "stranded thought")
}

func TestCompose_WithoutGeneratorComposesLocally(t *testing.T) {
	f := newCollectiveFixture(t, nil)

	first := f.idea(t, "quiet thought")
	second := f.idea(t, "louder thought")

	output, err := f.service.Compose(context.Background(), f.profileID,
		[]valueobjects.NodeID{first.ID(), second.ID()}, "weave these", false, 0, 0)
	require.NoError(t, err)

	assert.Contains(t, output, "weave these")
	assert.Contains(t, output, "quiet thought")
	assert.Contains(t, output, "louder thought")
}
