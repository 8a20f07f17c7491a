package ports

import (
	"context"

	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
)

// NodeRepository defines the interface for idea persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type NodeRepository interface {
	// Save persists a node (create or update)
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node by its ID
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// GetByProfileID retrieves all nodes for a profile
	GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error)

	// GetRecent retrieves the most recently captured nodes for a profile,
	// newest first, capped at limit. Feeds the similarity fallback window.
	GetRecent(ctx context.Context, profileID valueobjects.ProfileID, limit int) ([]*entities.Node, error)

	// CountByProfileID returns how many nodes a profile holds
	CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error)

	// Delete removes a node
	Delete(ctx context.Context, id valueobjects.NodeID) error

	// DeleteBatch removes multiple nodes in a batch operation
	DeleteBatch(ctx context.Context, nodeIDs []valueobjects.NodeID) error

	// Search finds nodes matching the given criteria
	Search(ctx context.Context, criteria SearchCriteria) ([]*entities.Node, error)
}

// EdgeRepository defines the interface for edge persistence
type EdgeRepository interface {
	// Save persists a single edge
	Save(ctx context.Context, edge *entities.Edge) error

	// SaveBatch persists a batch of edges atomically: either every edge
	// lands or none do
	SaveBatch(ctx context.Context, edges []*entities.Edge) error

	// GetByProfileID retrieves all edges for a profile
	GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error)

	// GetByNodeID retrieves all edges touching a node
	GetByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error)

	// Exists reports whether the pair is already linked, in either direction
	Exists(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error)

	// Delete removes an edge by its canonical pair
	Delete(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) error

	// DeleteByNodeID removes all edges touching a node
	DeleteByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error
}

// ProfileRepository defines the interface for profile persistence
type ProfileRepository interface {
	// Save persists a profile (create or update)
	Save(ctx context.Context, profile *entities.Profile) error

	// GetByID retrieves a profile by its ID
	GetByID(ctx context.Context, id valueobjects.ProfileID) (*entities.Profile, error)

	// List retrieves all profiles
	List(ctx context.Context) ([]*entities.Profile, error)

	// Delete removes a profile record. The reset saga clears its graph first.
	Delete(ctx context.Context, id valueobjects.ProfileID) error
}

// EventStore defines the interface for event persistence
type EventStore interface {
	// SaveEvents persists domain events
	SaveEvents(ctx context.Context, events []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error)

	// GetEventsByType retrieves events of a specific type
	GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error)

	// DeleteEvents removes all events for an aggregate
	DeleteEvents(ctx context.Context, aggregateID string) error
}

// UnitOfWork defines a transaction boundary for aggregate operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction
	Rollback() error

	// NodeRepository returns the node repository for this transaction
	NodeRepository() NodeRepository

	// EdgeRepository returns the edge repository for this transaction
	EdgeRepository() EdgeRepository

	// ProfileRepository returns the profile repository for this transaction
	ProfileRepository() ProfileRepository
}

// SearchCriteria defines search parameters
type SearchCriteria struct {
	ProfileID string
	Query     string
	Tags      []string
	Limit     int
	Offset    int
	OrderBy   string
	OrderDesc bool
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
