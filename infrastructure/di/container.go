package di

import (
	"ideaweaver/application/commands/bus"
	commandhandlers "ideaweaver/application/commands/handlers"
	"ideaweaver/application/ports"
	querybus "ideaweaver/application/queries/bus"
	"ideaweaver/application/services"
	"ideaweaver/infrastructure/config"
	"ideaweaver/infrastructure/persistence/dynamodb"
	"ideaweaver/pkg/auth"
	"ideaweaver/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	NodeRepo    ports.NodeRepository
	EdgeRepo    ports.EdgeRepository
	ProfileRepo ports.ProfileRepository
	VectorStore ports.VectorStore
	Embedder    ports.Embedder
	Generator   ports.Generator
	EventBus    ports.EventBus
	EventStore  *dynamodb.DynamoDBEventStore
	Outbox      *dynamodb.OutboxProcessor
	UnitOfWork  ports.UnitOfWork
	Locker      ports.Locker
	Cache       ports.Cache
	Metrics     *observability.Metrics
	Tracer      *observability.Tracer
	RateLimiter auth.RateLimiter

	EdgeWriter *services.EdgeWriter
	Autolinker *services.AutolinkService
	Collective *services.CollectiveService

	Capture    *commandhandlers.CaptureIdeaOrchestrator
	UpdateIdea *commandhandlers.UpdateIdeaHandler
	DeleteIdea *commandhandlers.DeleteIdeaHandler
	LinkIdeas  *commandhandlers.LinkIdeasHandler
	Profiles   *commandhandlers.ProfileHandler
	Reset      *commandhandlers.ResetProfileHandler
	Autolink   *commandhandlers.AutolinkHandler
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
}
