//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"ideaweaver/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideNodeRepository,
	ProvideEdgeRepository,
	ProvideProfileRepository,
	ProvideVectorStore,
	ProvideEmbedder,
	ProvideGenerator,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideEventStore,
	ProvideOutboxProcessor,
	ProvideUnitOfWork,
	ProvideLocker,
	ProvideMetrics,
	ProvideTracer,
	ProvideRateLimiter,
	ProvideTagger,
	ProvideEdgeWriter,
	ProvideAutolinkService,
	ProvideCollectiveService,
	ProvideCaptureOrchestrator,
	ProvideUpdateIdeaHandler,
	ProvideDeleteIdeaHandler,
	ProvideLinkIdeasHandler,
	ProvideProfileHandler,
	ProvideResetProfileHandler,
	ProvideAutolinkHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideInMemoryCache,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
