package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	domainevents "ideaweaver/domain/events"
	pkgerrors "ideaweaver/pkg/errors"
)

type autolinkFixture struct {
	nodes     *memNodeRepo
	edges     *memEdgeRepo
	vectors   *memVectorStore
	publisher *memPublisher
	service   *AutolinkService
	profileID valueobjects.ProfileID
}

func newAutolinkFixture(t *testing.T) *autolinkFixture {
	t.Helper()
	logger := zap.NewNop()
	nodes := newMemNodeRepo()
	edges := newMemEdgeRepo()
	vectors := newMemVectorStore()
	publisher := &memPublisher{}
	writer := NewEdgeWriter(nodes, edges, logger)

	return &autolinkFixture{
		nodes:     nodes,
		edges:     edges,
		vectors:   vectors,
		publisher: publisher,
		service:   NewAutolinkService(nodes, edges, vectors, writer, publisher, 200, logger),
		profileID: valueobjects.NewProfileID(),
	}
}

// capture stores an idea with a vector in the fixture's profile
func (f *autolinkFixture) capture(t *testing.T, text string, vector []float32) *entities.Node {
	t.Helper()
	return f.captureInto(t, f.profileID, text, vector)
}

func (f *autolinkFixture) captureInto(t *testing.T, profileID valueobjects.ProfileID, text string, vector []float32) *entities.Node {
	t.Helper()
	ideaText, err := valueobjects.NewIdeaText(text)
	require.NoError(t, err)
	node, err := entities.NewNode(profileID, ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, f.nodes.Save(context.Background(), node))
	if vector != nil {
		require.NoError(t, f.vectors.Upsert(context.Background(), profileID, node.ID(), vector))
	}
	return node
}

func TestAutolink_LinksSimilarIdeas(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	// Corpus large enough for the index path.
	near := f.capture(t, "raft leader election timeouts", []float32{1, 0.1, 0})
	f.capture(t, "gardening in the spring", []float32{0, 1, 0})
	f.capture(t, "sourdough starter care", []float32{0, 0.9, 0.3})
	f.capture(t, "watercolor brush technique", []float32{0.1, 0.2, 1})
	f.capture(t, "oil paint drying times", []float32{0, 0.1, 1})
	anchor := f.capture(t, "paxos consensus rounds", []float32{1, 0, 0})

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)

	require.NotEmpty(t, result.Edges)
	assert.False(t, result.UsedFallback)

	var linkedToNear bool
	for _, edge := range result.Edges {
		assert.GreaterOrEqual(t, edge.Weight(), 0.0)
		assert.LessOrEqual(t, edge.Weight(), 1.0)
		assert.Equal(t, autolink.PresetDefault, edge.Provenance())
		if edge.Connects(near.ID()) {
			linkedToNear = true
		}
	}
	assert.True(t, linkedToNear, "anchor should link to its nearest neighbor")
}

func TestAutolink_MaxEdgesKeepsStrongestLink(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	strong := f.capture(t, "stream processing watermarks", []float32{0.9, 0.4, 0})
	f.capture(t, "stream processing checkpoints", []float32{0.8, 0.6, 0})
	f.capture(t, "garden soil ph", []float32{0, 1, 0})
	f.capture(t, "compost rotation", []float32{0, 0.95, 0.2})
	f.capture(t, "tomato varieties", []float32{0.05, 1, 0.1})
	anchor := f.capture(t, "stream processing event time", []float32{1, 0.3, 0})

	cfg := autolink.DefaultConfig()
	cfg.MaxEdges = 1

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), cfg, autolink.PresetDefault)
	require.NoError(t, err)

	require.Len(t, result.Edges, 1)
	assert.True(t, result.Edges[0].Connects(strong.ID()))
}

func TestAutolink_FallbackOnSmallCorpus(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	// Two ideas: below the default fallback minimum of five.
	other := f.capture(t, "espresso extraction pressure", []float32{1, 0.05, 0})
	anchor := f.capture(t, "espresso grind size", []float32{1, 0, 0})

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)

	assert.True(t, result.UsedFallback)
	require.Len(t, result.Edges, 1)
	assert.True(t, result.Edges[0].Connects(other.ID()))
}

func TestAutolink_IsIdempotent(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "type inference in compilers", []float32{1, 0.1, 0})
	anchor := f.capture(t, "unification algorithms", []float32{1, 0, 0})

	first, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)
	require.NotEmpty(t, first.Edges)

	second, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)
	assert.Empty(t, second.Edges, "second pass must not duplicate edges")

	all, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Len(t, all, len(first.Edges))
}

func TestAutolink_RerunLinksNewIdeasPastExistingEdges(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	best := f.capture(t, "query planner cost models", []float32{1, 0.05, 0})
	anchor := f.capture(t, "query optimizer heuristics", []float32{1, 0, 0})

	cfg := autolink.DefaultConfig()
	cfg.MaxEdges = 1

	first, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), cfg, autolink.PresetDefault)
	require.NoError(t, err)
	require.Len(t, first.Edges, 1)
	require.True(t, first.Edges[0].Connects(best.ID()))

	// A new similar idea arrives after the first pass. The existing
	// pair must not consume the single MaxEdges slot on the re-run.
	newcomer := f.capture(t, "join order enumeration", []float32{1, 0.1, 0})

	second, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), cfg, autolink.PresetDefault)
	require.NoError(t, err)
	require.Len(t, second.Edges, 1)
	assert.True(t, second.Edges[0].Connects(newcomer.ID()))
}

func TestAutolink_ReportsConsideredAndLinkedCounts(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "close idea", []float32{1, 0.1, 0})
	f.capture(t, "unrelated idea", []float32{0, 1, 0})
	anchor := f.capture(t, "anchor idea", []float32{1, 0, 0})

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Considered)
	assert.Equal(t, len(result.Edges), result.Linked)
	assert.Equal(t, 1, result.Linked)
}

func TestAutolink_RejectsForeignAnchor(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	otherProfile := valueobjects.NewProfileID()
	foreign := f.captureInto(t, otherProfile, "idea from another voice", []float32{1, 0, 0})

	_, err := f.service.Autolink(ctx, f.profileID, foreign.ID(), autolink.DefaultConfig(), autolink.PresetDefault)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "FOREIGN_NODE"))
}

func TestAutolink_NeverCrossesProfiles(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	// A nearly identical idea lives in another profile; it must not
	// surface as a candidate.
	otherProfile := valueobjects.NewProfileID()
	f.captureInto(t, otherProfile, "identical thought elsewhere", []float32{1, 0, 0})

	anchor := f.capture(t, "a thought alone in its voice", []float32{1, 0, 0})

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)
	assert.Empty(t, result.Edges)
}

func TestAutolink_MissingVectorFails(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	anchor := f.capture(t, "idea that was never embedded", nil)

	_, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "MISSING_VECTOR"))
}

func TestAutolink_UnknownAnchorFails(t *testing.T) {
	f := newAutolinkFixture(t)

	_, err := f.service.Autolink(context.Background(), f.profileID, valueobjects.NewNodeID(), autolink.DefaultConfig(), autolink.PresetDefault)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "NODE_NOT_FOUND"))
}

func TestAutolink_PublishesEdgesLinkedEvent(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "related idea", []float32{1, 0.1, 0})
	anchor := f.capture(t, "anchor idea", []float32{1, 0, 0})

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)
	require.NotEmpty(t, result.Edges)

	require.Len(t, f.publisher.events, 1)
	linked, ok := f.publisher.events[0].(domainevents.EdgesLinked)
	require.True(t, ok)
	assert.Equal(t, "edges.linked", linked.GetEventType())
	assert.Equal(t, autolink.PresetDefault, linked.Provenance)
	assert.Len(t, linked.Edges, len(result.Edges))
}

func TestAutolink_StrictMutualFiltersOneWayNeighbors(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	// A tight cluster that is mutual with the anchor, plus a crowd of
	// ideas closer to each other than to the anchor.
	mutual := f.capture(t, "mutual idea", []float32{1, 0.05, 0})
	f.capture(t, "crowd one", []float32{0, 1, 0})
	f.capture(t, "crowd two", []float32{0, 0.99, 0.05})
	f.capture(t, "crowd three", []float32{0.02, 0.98, 0.1})
	f.capture(t, "crowd four", []float32{0, 0.97, 0.15})
	anchor := f.capture(t, "anchor idea", []float32{1, 0, 0})

	cfg := autolink.StrictConfig()
	cfg.FallbackMinCorpusSize = 5

	result, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), cfg, autolink.PresetStrict)
	require.NoError(t, err)

	for _, edge := range result.Edges {
		assert.True(t, edge.Connects(mutual.ID()) || edge.Connects(anchor.ID()))
	}
}

func TestAutolink_AtomicBatchOnWriteFailure(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "first neighbor", []float32{1, 0.1, 0})
	f.capture(t, "second neighbor", []float32{1, 0.2, 0})
	anchor := f.capture(t, "anchor idea", []float32{1, 0, 0})

	f.edges.failAll = true

	_, err := f.service.Autolink(ctx, f.profileID, anchor.ID(), autolink.DefaultConfig(), autolink.PresetDefault)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDomainCode(err, "PERSISTENCE_FAILURE"))

	f.edges.failAll = false
	all, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Empty(t, all, "no partial edges after a failed batch")
}

func TestAutolinkProfile_SkipsIdeasWithoutVectors(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "embedded idea one", []float32{1, 0, 0})
	f.capture(t, "embedded idea two", []float32{1, 0.1, 0})
	f.capture(t, "never embedded", nil)

	results, err := f.service.AutolinkProfile(ctx, f.profileID, autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)

	// Only the embedded ideas produced passes.
	assert.Len(t, results, 2)
}

func TestAutolinkProfile_IsIdempotent(t *testing.T) {
	f := newAutolinkFixture(t)
	ctx := context.Background()

	f.capture(t, "federated learning rounds", []float32{1, 0.1, 0})
	f.capture(t, "gradient aggregation servers", []float32{1, 0.05, 0})
	f.capture(t, "hiking trail maps", []float32{0, 1, 0})

	_, err := f.service.AutolinkProfile(ctx, f.profileID, autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)

	afterFirst, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	require.NotEmpty(t, afterFirst)

	results, err := f.service.AutolinkProfile(ctx, f.profileID, autolink.DefaultConfig(), autolink.PresetDefault)
	require.NoError(t, err)
	for _, result := range results {
		assert.Empty(t, result.Edges, "unchanged corpus must not grow new edges")
	}

	afterSecond, err := f.edges.GetByProfileID(ctx, f.profileID)
	require.NoError(t, err)
	assert.Len(t, afterSecond, len(afterFirst))
}
