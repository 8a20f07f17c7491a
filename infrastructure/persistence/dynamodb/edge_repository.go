package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

// transactBatchLimit is the DynamoDB TransactWriteItems item cap
const transactBatchLimit = 100

// EdgeRepository implements ports.EdgeRepository using DynamoDB
type EdgeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewEdgeRepository creates a new EdgeRepository
func NewEdgeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.EdgeRepository {
	return &EdgeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// edgeItem represents the DynamoDB item structure for an edge. The SK
// embeds the canonical pair, so a pair can exist at most once per
// profile regardless of the direction it was written in.
type edgeItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	EdgeID     string  `dynamodbav:"EdgeID"`
	ProfileID  string  `dynamodbav:"ProfileID"`
	SourceID   string  `dynamodbav:"SourceID"`
	TargetID   string  `dynamodbav:"TargetID"`
	Weight     float64 `dynamodbav:"Weight"`
	Provenance string  `dynamodbav:"Provenance"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
}

func edgeSK(a, b valueobjects.NodeID) string {
	return fmt.Sprintf("EDGE#%s", entities.EdgePairKey(a, b))
}

func newEdgeItem(edge *entities.Edge) edgeItem {
	return edgeItem{
		PK:         fmt.Sprintf("PROFILE#%s", edge.ProfileID().String()),
		SK:         edgeSK(edge.SourceID(), edge.TargetID()),
		EntityType: "EDGE",
		EdgeID:     edge.ID(),
		ProfileID:  edge.ProfileID().String(),
		SourceID:   edge.SourceID().String(),
		TargetID:   edge.TargetID().String(),
		Weight:     edge.Weight(),
		Provenance: edge.Provenance(),
		CreatedAt:  edge.CreatedAt().Format(time.RFC3339Nano),
	}
}

func (item edgeItem) toEntity() (*entities.Edge, error) {
	profileID, err := valueobjects.NewProfileIDFromString(item.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID in item: %w", err)
	}
	sourceID, err := valueobjects.NewNodeIDFromString(item.SourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid source ID in item: %w", err)
	}
	targetID, err := valueobjects.NewNodeIDFromString(item.TargetID)
	if err != nil {
		return nil, fmt.Errorf("invalid target ID in item: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	return entities.ReconstructEdge(
		item.EdgeID,
		profileID,
		sourceID,
		targetID,
		item.Weight,
		item.Provenance,
		createdAt,
	), nil
}

// Save persists a single edge
func (r *EdgeRepository) Save(ctx context.Context, edge *entities.Edge) error {
	av, err := attributevalue.MarshalMap(newEdgeItem(edge))
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save edge",
			zap.String("edgeID", edge.ID()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save edge: %w", err)
	}

	return nil
}

// SaveBatch persists a batch of edges in a single transaction: either
// every edge lands or none do.
func (r *EdgeRepository) SaveBatch(ctx context.Context, edges []*entities.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	if len(edges) > transactBatchLimit {
		return fmt.Errorf("edge batch of %d exceeds transaction limit of %d", len(edges), transactBatchLimit)
	}

	items := make([]types.TransactWriteItem, 0, len(edges))
	for _, edge := range edges {
		av, err := attributevalue.MarshalMap(newEdgeItem(edge))
		if err != nil {
			return fmt.Errorf("failed to marshal edge: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      av,
			},
		})
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		r.logger.Error("Failed to save edge batch",
			zap.Int("edgeCount", len(edges)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save edge batch: %w", err)
	}

	r.logger.Debug("Edge batch saved", zap.Int("edgeCount", len(edges)))
	return nil
}

// GetByProfileID retrieves all edges for a profile
func (r *EdgeRepository) GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Edge, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			":sk": &types.AttributeValueMemberS{Value: "EDGE#"},
		},
	}

	var edges []*entities.Edge
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges: %w", err)
		}
		for _, raw := range page.Items {
			var item edgeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal edge item", zap.Error(err))
				continue
			}
			edge, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Failed to reconstruct edge",
					zap.String("edgeID", item.EdgeID),
					zap.Error(err),
				)
				continue
			}
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// GetByNodeID retrieves all edges touching a node
func (r *EdgeRepository) GetByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]*entities.Edge, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("PROFILE#%s", profileID.String()))).
		And(expression.Key("SK").BeginsWith("EDGE#"))
	filterEx := expression.Name("SourceID").Equal(expression.Value(nodeID.String())).
		Or(expression.Name("TargetID").Equal(expression.Value(nodeID.String())))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyEx).
		WithFilter(filterEx).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var edges []*entities.Edge
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges by node: %w", err)
		}
		for _, raw := range page.Items {
			var item edgeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal edge item", zap.Error(err))
				continue
			}
			edge, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Failed to reconstruct edge",
					zap.String("edgeID", item.EdgeID),
					zap.Error(err),
				)
				continue
			}
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// Exists reports whether the pair is already linked, in either direction
func (r *EdgeRepository) Exists(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(a, b)},
		},
		ProjectionExpression: aws.String("PK"),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to check edge existence: %w", err)
	}

	return len(result.Item) > 0, nil
}

// Delete removes an edge by its canonical pair
func (r *EdgeRepository) Delete(ctx context.Context, profileID valueobjects.ProfileID, a, b valueobjects.NodeID) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(a, b)},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}

	return nil
}

// DeleteByNodeID removes all edges touching a node
func (r *EdgeRepository) DeleteByNodeID(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	edges, err := r.GetByNodeID(ctx, profileID, nodeID)
	if err != nil {
		return err
	}

	for _, edge := range edges {
		if err := r.Delete(ctx, profileID, edge.SourceID(), edge.TargetID()); err != nil {
			return err
		}
	}

	r.logger.Debug("Edges deleted for node",
		zap.String("nodeID", nodeID.String()),
		zap.Int("edgeCount", len(edges)),
	)
	return nil
}
