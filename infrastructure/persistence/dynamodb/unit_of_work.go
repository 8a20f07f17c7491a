package dynamodb

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

// DynamoDBUnitOfWork buffers writes and flushes them in one
// TransactWriteItems call on Commit. Reads inside the transaction go
// straight to the underlying repositories; DynamoDB transactions do
// not give read-your-writes.
type DynamoDBUnitOfWork struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	nodeRepo    ports.NodeRepository
	edgeRepo    ports.EdgeRepository
	profileRepo ports.ProfileRepository

	mu     sync.Mutex
	active bool
	items  []types.TransactWriteItem
}

// NewUnitOfWork creates a new DynamoDB unit of work
func NewUnitOfWork(
	client *dynamodb.Client,
	tableName string,
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	profileRepo ports.ProfileRepository,
	logger *zap.Logger,
) ports.UnitOfWork {
	return &DynamoDBUnitOfWork{
		client:      client,
		tableName:   tableName,
		nodeRepo:    nodeRepo,
		edgeRepo:    edgeRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// Begin starts a new transaction
func (u *DynamoDBUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.active {
		return fmt.Errorf("transaction already active")
	}
	u.active = true
	u.items = u.items[:0]
	return nil
}

// Commit flushes all buffered writes atomically
func (u *DynamoDBUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		return fmt.Errorf("no active transaction")
	}

	if len(u.items) > 0 {
		if len(u.items) > transactBatchLimit {
			return fmt.Errorf("transaction of %d items exceeds limit of %d", len(u.items), transactBatchLimit)
		}
		input := &dynamodb.TransactWriteItemsInput{
			TransactItems: u.items,
		}
		if _, err := u.client.TransactWriteItems(ctx, input); err != nil {
			u.logger.Error("Transaction commit failed",
				zap.Int("itemCount", len(u.items)),
				zap.Error(err),
			)
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	u.logger.Debug("Transaction committed", zap.Int("itemCount", len(u.items)))
	u.active = false
	u.items = nil
	return nil
}

// Rollback discards all buffered writes. Calling it after Commit is a
// no-op, so handlers can defer it unconditionally.
func (u *DynamoDBUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		return nil
	}
	u.active = false
	u.items = nil
	return nil
}

// NodeRepository returns the transactional node repository
func (u *DynamoDBUnitOfWork) NodeRepository() ports.NodeRepository {
	return &txNodeRepository{uow: u, base: u.nodeRepo}
}

// EdgeRepository returns the transactional edge repository
func (u *DynamoDBUnitOfWork) EdgeRepository() ports.EdgeRepository {
	return &txEdgeRepository{uow: u, base: u.edgeRepo}
}

// ProfileRepository returns the transactional profile repository
func (u *DynamoDBUnitOfWork) ProfileRepository() ports.ProfileRepository {
	return &txProfileRepository{uow: u, base: u.profileRepo}
}

// register appends a write to the transaction buffer. Outside a
// transaction it fails rather than writing directly, so a forgotten
// Begin surfaces immediately.
func (u *DynamoDBUnitOfWork) register(item types.TransactWriteItem) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.active {
		return fmt.Errorf("no active transaction")
	}
	u.items = append(u.items, item)
	return nil
}

func (u *DynamoDBUnitOfWork) registerPut(itemStruct interface{}) error {
	av, err := attributevalue.MarshalMap(itemStruct)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	return u.register(types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(u.tableName),
			Item:      av,
		},
	})
}

func (u *DynamoDBUnitOfWork) registerDelete(pk, sk string) error {
	return u.register(types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(u.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: pk},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		},
	})
}

// txNodeRepository queues node writes into the unit of work
type txNodeRepository struct {
	uow  *DynamoDBUnitOfWork
	base ports.NodeRepository
}

func (r *txNodeRepository) Save(ctx context.Context, node *entities.Node) error {
	return r.uow.registerPut(newNodeItem(node))
}

func (r *txNodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	return r.base.GetByID(ctx, id)
}

func (r *txNodeRepository) GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error) {
	return r.base.GetByProfileID(ctx, profileID)
}

func (r *txNodeRepository) GetRecent(ctx context.Context, profileID valueobjects.ProfileID, limit int) ([]*entities.Node, error) {
	return r.base.GetRecent(ctx, profileID, limit)
}

func (r *txNodeRepository) CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	return r.base.CountByProfileID(ctx, profileID)
}

func (r *txNodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	node, err := r.base.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get node for deletion: %w", err)
	}
	return r.uow.registerDelete(
		fmt.Sprintf("PROFILE#%s", node.ProfileID().String()),
		fmt.Sprintf("NODE#%s", id.String()),
	)
}

func (r *txNodeRepository) DeleteBatch(ctx context.Context, nodeIDs []valueobjects.NodeID) error {
	for _, id := range nodeIDs {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *txNodeRepository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]*entities.Node, error) {
	return r.base.Search(ctx, criteria)
}

// txEdgeRepository queues edge writes into the unit of work
type txEdgeRepository struct {
	uow  *DynamoDBUnitOfWork
	base ports.EdgeRepository
}

func (r *txEdgeRepository) Save(ctx context.Context, edge *entities.Edge) error {
	return r.uow.registerPut(newEdgeItem(edge))
}

func (r *txEdgeRepository) SaveBatch(ctx context.Context, edges []*entities.Edge) error {
	for _, edge := range edges {
		if err := r.uow.registerPut(newEdgeItem(edge)); err != nil {
			return err
		}
	}
	return nil
}

func (r *txEdgeRepository) GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error) {
	return r.base.GetByProfileID(ctx, profileID)
}

func (r *txEdgeRepository) GetByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error) {
	return r.base.GetByNodeID(ctx, profileID, nodeID)
}

func (r *txEdgeRepository) Exists(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error) {
	return r.base.Exists(ctx, profileID, a, b)
}

func (r *txEdgeRepository) Delete(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) error {
	return r.uow.registerDelete(
		fmt.Sprintf("PROFILE#%s", profileID.String()),
		edgeSK(a, b),
	)
}

func (r *txEdgeRepository) DeleteByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	edges, err := r.base.GetByNodeID(ctx, profileID, nodeID)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		if err := r.Delete(ctx, profileID, edge.SourceID(), edge.TargetID()); err != nil {
			return err
		}
	}
	return nil
}

// txProfileRepository queues profile writes into the unit of work
type txProfileRepository struct {
	uow  *DynamoDBUnitOfWork
	base ports.ProfileRepository
}

func (r *txProfileRepository) Save(ctx context.Context, profile *entities.Profile) error {
	return r.uow.registerPut(newProfileItem(profile))
}

func (r *txProfileRepository) GetByID(ctx context.Context, id valueobjects.ProfileID) (*entities.Profile, error) {
	return r.base.GetByID(ctx, id)
}

func (r *txProfileRepository) List(ctx context.Context) ([]*entities.Profile, error) {
	return r.base.List(ctx)
}

func (r *txProfileRepository) Delete(ctx context.Context, id valueobjects.ProfileID) error {
	return r.uow.registerDelete(
		fmt.Sprintf("PROFILE#%s", id.String()),
		"METADATA",
	)
}
