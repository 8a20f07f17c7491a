package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/application/commands"
	"ideaweaver/application/ports"
	"ideaweaver/application/services"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

type recordingLock struct{}

func (l *recordingLock) Release(_ context.Context) error { return nil }

// recordingLocker remembers every resource name it was asked to lock
type recordingLocker struct {
	acquired []string
}

func (l *recordingLocker) Acquire(_ context.Context, resource string) (ports.Lock, error) {
	l.acquired = append(l.acquired, resource)
	return &recordingLock{}, nil
}

type nopHandlerLogger struct{}

func (nopHandlerLogger) Debug(string, ...interface{}) {}
func (nopHandlerLogger) Info(string, ...interface{})  {}
func (nopHandlerLogger) Error(string, ...interface{}) {}

type autolinkHandlerFixture struct {
	profiles  *stubProfileRepo
	nodes     *stubNodeRepo
	edges     *stubEdgeRepo
	vectors   *stubVectorStore
	locker    *recordingLocker
	handler   *AutolinkHandler
	reset     *ResetProfileHandler
	profileID valueobjects.ProfileID
	anchorID  valueobjects.NodeID
}

func newAutolinkHandlerFixture(t *testing.T) *autolinkHandlerFixture {
	t.Helper()
	ctx := context.Background()

	profiles := newStubProfileRepo()
	nodes := newStubNodeRepo()
	edges := newStubEdgeRepo()
	vectors := newStubVectorStore()
	locker := &recordingLocker{}
	logger := zap.NewNop()

	profile, err := entities.NewProfile("serialized voice", "default")
	require.NoError(t, err)
	require.NoError(t, profiles.Save(ctx, profile))

	ideaText, err := valueobjects.NewIdeaText("anchor idea")
	require.NoError(t, err)
	anchor, err := entities.NewNode(profile.ID(), ideaText, nil)
	require.NoError(t, err)
	require.NoError(t, nodes.Save(ctx, anchor))
	require.NoError(t, vectors.Upsert(ctx, profile.ID(), anchor.ID(), []float32{1, 0, 0}))

	writer := services.NewEdgeWriter(nodes, edges, logger)
	autolinker := services.NewAutolinkService(nodes, edges, vectors, writer, nil, 200, logger)

	return &autolinkHandlerFixture{
		profiles:  profiles,
		nodes:     nodes,
		edges:     edges,
		vectors:   vectors,
		locker:    locker,
		handler:   NewAutolinkHandler(profiles, autolinker, locker, nopHandlerLogger{}),
		reset:     NewResetProfileHandler(profiles, nodes, edges, vectors, &stubPublisher{}, locker, logger),
		profileID: profile.ID(),
		anchorID:  anchor.ID(),
	}
}

func TestAutolinkHandler_SerializesOnProfileLock(t *testing.T) {
	f := newAutolinkHandlerFixture(t)
	ctx := context.Background()

	_, err := f.handler.HandleIdea(ctx, commands.AutolinkIdeaCommand{
		ProfileID: f.profileID.String(),
		NodeID:    f.anchorID.String(),
	})
	require.NoError(t, err)

	_, err = f.handler.HandleProfile(ctx, commands.AutolinkProfileCommand{
		ProfileID: f.profileID.String(),
	})
	require.NoError(t, err)

	require.Len(t, f.locker.acquired, 2)
	assert.Equal(t, profileLockKey(f.profileID), f.locker.acquired[0])
	assert.Equal(t, profileLockKey(f.profileID), f.locker.acquired[1])
}

func TestAutolinkAndResetShareTheProfileLock(t *testing.T) {
	f := newAutolinkHandlerFixture(t)
	ctx := context.Background()

	_, err := f.handler.HandleProfile(ctx, commands.AutolinkProfileCommand{
		ProfileID: f.profileID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.reset.Handle(ctx, commands.ResetProfileCommand{
		ProfileID: f.profileID.String(),
	}))

	require.Len(t, f.locker.acquired, 2)
	assert.Equal(t, f.locker.acquired[0], f.locker.acquired[1],
		"autolink and reset must contend for the same lock")
}
