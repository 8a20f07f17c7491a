package di

import (
	"context"
	"fmt"
	"time"

	"ideaweaver/application/commands"
	"ideaweaver/application/commands/bus"
	commandhandlers "ideaweaver/application/commands/handlers"
	"ideaweaver/application/ports"
	"ideaweaver/application/queries"
	querybus "ideaweaver/application/queries/bus"
	queryhandlers "ideaweaver/application/queries/handlers"
	"ideaweaver/application/services"
	domainconfig "ideaweaver/domain/config"
	"ideaweaver/domain/core/entities"
	"ideaweaver/infrastructure/config"
	"ideaweaver/infrastructure/embedding"
	"ideaweaver/infrastructure/generation"
	"ideaweaver/infrastructure/messaging/eventbridge"
	"ideaweaver/infrastructure/persistence/dynamodb"
	"ideaweaver/infrastructure/vectors"
	"ideaweaver/pkg/auth"
	"ideaweaver/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig creates the domain-level policy configuration
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideNodeRepository creates a node repository
func ProvideNodeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NodeRepository {
	return dynamodb.NewNodeRepository(
		client,
		cfg.DynamoDBTable,
		cfg.GSI2IndexName,
		logger,
	)
}

// ProvideEdgeRepository creates an edge repository
func ProvideEdgeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EdgeRepository {
	return dynamodb.NewEdgeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideProfileRepository creates a profile repository
func ProvideProfileRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProfileRepository {
	return dynamodb.NewProfileRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideVectorStore creates the in-process vector index
func ProvideVectorStore(logger *zap.Logger) ports.VectorStore {
	return vectors.NewMemoryIndex(logger)
}

// ProvideEmbedder creates the Ollama embedder
func ProvideEmbedder(cfg *config.Config, logger *zap.Logger) ports.Embedder {
	return embedding.NewOllamaEmbedder(cfg.EmbeddingEndpoint, cfg.EmbeddingModel, logger)
}

// ProvideGenerator creates the Ollama generator
func ProvideGenerator(cfg *config.Config, logger *zap.Logger) ports.Generator {
	return generation.NewOllamaGenerator(cfg.GenerationEndpoint, cfg.GenerationModel, logger)
}

// ProvideEventBus creates the EventBridge-backed event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideEventPublisher narrows the event bus to the publisher interface
func ProvideEventPublisher(eventBus ports.EventBus) ports.EventPublisher {
	return eventBus
}

// ProvideEventStore creates the DynamoDB event store
func ProvideEventStore(client *awsdynamodb.Client, cfg *config.Config) *dynamodb.DynamoDBEventStore {
	return dynamodb.NewDynamoDBEventStore(client, cfg.DynamoDBTable)
}

// ProvideOutboxProcessor creates the outbox relay
func ProvideOutboxProcessor(
	eventStore *dynamodb.DynamoDBEventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *dynamodb.OutboxProcessor {
	return dynamodb.NewOutboxProcessor(eventStore, publisher, logger)
}

// ProvideUnitOfWork creates a unit of work for transactional writes
func ProvideUnitOfWork(
	client *awsdynamodb.Client,
	cfg *config.Config,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	profileRepo ports.ProfileRepository,
	logger *zap.Logger,
) ports.UnitOfWork {
	return dynamodb.NewUnitOfWork(client, cfg.DynamoDBTable, nodeRepo, edgeRepo, profileRepo, logger)
}

// ProvideLocker creates the DynamoDB-backed distributed lock
func ProvideLocker(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Locker {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, 30*time.Second, logger)
}

// ProvideMetrics creates the CloudWatch metrics sink
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("Ideaweaver/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("ideaweaver")
}

// ProvideRateLimiter creates the API rate limiter: DynamoDB-backed when
// a table is configured so the limit holds across instances, in-process
// otherwise
func ProvideRateLimiter(client *awsdynamodb.Client, cfg *config.Config) auth.RateLimiter {
	if cfg.DynamoDBTable == "" {
		return auth.NewClientRateLimiter(100, 1*time.Minute)
	}
	return auth.NewDistributedRateLimiter(
		client,
		cfg.DynamoDBTable,
		100,
		1*time.Minute,
		"API",
	)
}

// ProvideTagger creates the keyword tagger
func ProvideTagger(domainCfg *domainconfig.DomainConfig) *entities.Tagger {
	return entities.NewTagger(domainCfg.MaxTagsPerIdea)
}

// ProvideEdgeWriter creates the edge writer
func ProvideEdgeWriter(nodeRepo ports.NodeRepository, edgeRepo ports.EdgeRepository, logger *zap.Logger) *services.EdgeWriter {
	return services.NewEdgeWriter(nodeRepo, edgeRepo, logger)
}

// ProvideAutolinkService creates the autolink service
func ProvideAutolinkService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	vectorStore ports.VectorStore,
	writer *services.EdgeWriter,
	publisher ports.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *services.AutolinkService {
	return services.NewAutolinkService(nodeRepo, edgeRepo, vectorStore, writer, publisher, cfg.RecentIdeaWindow, logger)
}

// ProvideCollectiveService creates the collective selector and composer
func ProvideCollectiveService(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	generator ports.Generator,
	logger *zap.Logger,
) *services.CollectiveService {
	return services.NewCollectiveService(nodeRepo, edgeRepo, generator, logger)
}

// ProvideCaptureOrchestrator creates the capture pipeline
func ProvideCaptureOrchestrator(
	uow ports.UnitOfWork,
	profileRepo ports.ProfileRepository,
	vectorStore ports.VectorStore,
	embedder ports.Embedder,
	autolinker *services.AutolinkService,
	publisher ports.EventPublisher,
	locker ports.Locker,
	tagger *entities.Tagger,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *commandhandlers.CaptureIdeaOrchestrator {
	return commandhandlers.NewCaptureIdeaOrchestrator(
		uow, profileRepo, vectorStore, embedder, autolinker,
		publisher, locker, tagger, domainCfg,
		&zapLoggerAdapter{logger},
	)
}

// ProvideUpdateIdeaHandler creates the update handler
func ProvideUpdateIdeaHandler(
	uow ports.UnitOfWork,
	profileRepo ports.ProfileRepository,
	vectorStore ports.VectorStore,
	embedder ports.Embedder,
	autolinker *services.AutolinkService,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *commandhandlers.UpdateIdeaHandler {
	return commandhandlers.NewUpdateIdeaHandler(uow, profileRepo, vectorStore, embedder, autolinker, domainCfg, logger)
}

// ProvideDeleteIdeaHandler creates the delete handler
func ProvideDeleteIdeaHandler(
	uow ports.UnitOfWork,
	vectorStore ports.VectorStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *commandhandlers.DeleteIdeaHandler {
	return commandhandlers.NewDeleteIdeaHandler(uow, vectorStore, publisher, logger)
}

// ProvideLinkIdeasHandler creates the manual link handler
func ProvideLinkIdeasHandler(
	profileRepo ports.ProfileRepository,
	writer *services.EdgeWriter,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *commandhandlers.LinkIdeasHandler {
	return commandhandlers.NewLinkIdeasHandler(profileRepo, writer, publisher, logger)
}

// ProvideProfileHandler creates the profile CRUD handler
func ProvideProfileHandler(
	profileRepo ports.ProfileRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *commandhandlers.ProfileHandler {
	return commandhandlers.NewProfileHandler(profileRepo, publisher, logger)
}

// ProvideResetProfileHandler creates the reset saga handler
func ProvideResetProfileHandler(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	vectorStore ports.VectorStore,
	publisher ports.EventPublisher,
	locker ports.Locker,
	logger *zap.Logger,
) *commandhandlers.ResetProfileHandler {
	return commandhandlers.NewResetProfileHandler(profileRepo, nodeRepo, edgeRepo, vectorStore, publisher, locker, logger)
}

// ProvideAutolinkHandler creates the autolink command handler
func ProvideAutolinkHandler(
	profileRepo ports.ProfileRepository,
	autolinker *services.AutolinkService,
	locker ports.Locker,
	logger *zap.Logger,
) *commandhandlers.AutolinkHandler {
	return commandhandlers.NewAutolinkHandler(profileRepo, autolinker, locker, &zapLoggerAdapter{logger})
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with the fire-and-forget
// commands registered. Commands whose callers need a result (capture,
// profile creation) go through their handlers directly. Every command
// passes through the logging and metrics middleware.
func ProvideCommandBus(
	deleteHandler *commandhandlers.DeleteIdeaHandler,
	resetHandler *commandhandlers.ResetProfileHandler,
	autolinkHandler *commandhandlers.AutolinkHandler,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(
		bus.LoggingMiddleware(&zapLoggerAdapter{logger}),
		bus.MetricsMiddleware(metrics),
	)

	commandBus.Register(commands.DeleteIdeaCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteIdeaCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	}))

	commandBus.Register(commands.ResetProfileCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			resetCmd, ok := cmd.(commands.ResetProfileCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return resetHandler.Handle(ctx, resetCmd)
		},
	}))

	commandBus.Register(commands.AutolinkIdeaCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			linkCmd, ok := cmd.(commands.AutolinkIdeaCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := autolinkHandler.HandleIdea(ctx, linkCmd)
			return err
		},
	}))

	commandBus.Register(commands.AutolinkProfileCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			linkCmd, ok := cmd.(commands.AutolinkProfileCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := autolinkHandler.HandleProfile(ctx, linkCmd)
			return err
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	profileRepo ports.ProfileRepository,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	vectors ports.VectorStore,
	embedder ports.Embedder,
	cache ports.Cache,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getGraphHandler := queryhandlers.NewGetGraphHandler(profileRepo, nodeRepo, edgeRepo, cache, logger)
	queryBus.Register(queries.GetGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getGraphHandler.Handle(ctx, getQuery)
		},
	})

	getIdeaHandler := queryhandlers.NewGetIdeaHandler(nodeRepo, edgeRepo, logger)
	queryBus.Register(queries.GetIdeaQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetIdeaQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getIdeaHandler.Handle(ctx, getQuery)
		},
	})

	searchIdeasHandler := queryhandlers.NewSearchIdeasHandler(profileRepo, nodeRepo, logger)
	queryBus.Register(queries.SearchIdeasQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			searchQuery, ok := query.(queries.SearchIdeasQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return searchIdeasHandler.Handle(ctx, searchQuery)
		},
	})

	contextMapHandler := queryhandlers.NewContextMapHandler(profileRepo, nodeRepo, vectors, embedder, logger)
	queryBus.Register(queries.ContextMapQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			mapQuery, ok := query.(queries.ContextMapQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return contextMapHandler.Handle(ctx, mapQuery)
		},
	})

	listProfilesHandler := queryhandlers.NewListProfilesHandler(profileRepo, nodeRepo, edgeRepo, logger)
	queryBus.Register(queries.ListProfilesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListProfilesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listProfilesHandler.Handle(ctx, listQuery)
		},
	})

	return queryBus
}

// ProvideInMemoryCache creates a simple in-memory cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// zapLoggerAdapter adapts zap.Logger to the handlers.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Debug(msg string, fields ...interface{}) {
	a.logger.Debug(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, _ := fields[i].(string)
			zapFields = append(zapFields, zap.Any(key, fields[i+1]))
		}
	}
	return zapFields
}
