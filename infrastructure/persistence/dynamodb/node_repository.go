package dynamodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

// NodeRepository implements ports.NodeRepository using DynamoDB
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi2Name  string
	logger    *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client *dynamodb.Client, tableName, gsi2Name string, logger *zap.Logger) ports.NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

// nodeItem represents the DynamoDB item structure for an idea node.
// GSI2 maps the bare node ID back to its profile partition; GSI1SK
// orders nodes by capture time so recency queries read newest first.
type nodeItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	GSI1PK     string   `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string   `dynamodbav:"GSI1SK,omitempty"`
	GSI2PK     string   `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string   `dynamodbav:"GSI2SK,omitempty"`
	EntityType string   `dynamodbav:"EntityType"`
	NodeID     string   `dynamodbav:"NodeID"`
	ProfileID  string   `dynamodbav:"ProfileID"`
	Text       string   `dynamodbav:"Text"`
	Tags       []string `dynamodbav:"Tags,omitempty"`
	HasVector  bool     `dynamodbav:"HasVector"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
	UpdatedAt  string   `dynamodbav:"UpdatedAt"`
	Version    int      `dynamodbav:"Version"`
}

func newNodeItem(node *entities.Node) nodeItem {
	return nodeItem{
		PK:         fmt.Sprintf("PROFILE#%s", node.ProfileID().String()),
		SK:         fmt.Sprintf("NODE#%s", node.ID().String()),
		GSI1PK:     fmt.Sprintf("PROFILE#%s", node.ProfileID().String()),
		GSI1SK:     fmt.Sprintf("CREATED#%s#%s", node.CreatedAt().UTC().Format(time.RFC3339Nano), node.ID().String()),
		GSI2PK:     fmt.Sprintf("NODE#%s", node.ID().String()),
		GSI2SK:     "METADATA",
		EntityType: "NODE",
		NodeID:     node.ID().String(),
		ProfileID:  node.ProfileID().String(),
		Text:       node.Text().String(),
		Tags:       node.Tags(),
		HasVector:  node.HasVector(),
		CreatedAt:  node.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  node.UpdatedAt().Format(time.RFC3339Nano),
		Version:    node.Version(),
	}
}

func (item nodeItem) toEntity() (*entities.Node, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid node ID in item: %w", err)
	}
	profileID, err := valueobjects.NewProfileIDFromString(item.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID in item: %w", err)
	}
	text, err := valueobjects.NewIdeaText(item.Text)
	if err != nil {
		return nil, fmt.Errorf("invalid idea text in item: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	node, err := entities.ReconstructNode(
		nodeID,
		profileID,
		text,
		item.Tags,
		item.HasVector,
		createdAt,
		updatedAt,
		item.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node: %w", err)
	}
	return node, nil
}

// Save persists a node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	av, err := attributevalue.MarshalMap(newNodeItem(node))
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save node",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save node: %w", err)
	}

	return nil
}

// GetByID retrieves a node by its ID via GSI2
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.gsi2Name),
		KeyConditionExpression: aws.String("GSI2PK = :pk AND GSI2SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("node not found: %s", id.String())
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node: %w", err)
	}

	return item.toEntity()
}

// GetByProfileID retrieves all nodes for a profile
func (r *NodeRepository) GetByProfileID(ctx context.Context, profileID valueobjects.ProfileID) ([]*entities.Node, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			":sk": &types.AttributeValueMemberS{Value: "NODE#"},
		},
	}

	var nodes []*entities.Node
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query nodes: %w", err)
		}
		for _, raw := range page.Items {
			var item nodeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal node item", zap.Error(err))
				continue
			}
			node, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Failed to reconstruct node",
					zap.String("nodeID", item.NodeID),
					zap.Error(err),
				)
				continue
			}
			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

// GetRecent retrieves the most recently captured nodes, newest first
func (r *NodeRepository) GetRecent(ctx context.Context, profileID valueobjects.ProfileID, limit int) ([]*entities.Node, error) {
	if limit <= 0 {
		return nil, nil
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			":sk": &types.AttributeValueMemberS{Value: "CREATED#"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent nodes: %w", err)
	}

	nodes := make([]*entities.Node, 0, len(result.Items))
	for _, raw := range result.Items {
		var item nodeItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal node item", zap.Error(err))
			continue
		}
		node, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Failed to reconstruct node",
				zap.String("nodeID", item.NodeID),
				zap.Error(err),
			)
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// CountByProfileID returns how many nodes a profile holds
func (r *NodeRepository) CountByProfileID(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", profileID.String())},
			":sk": &types.AttributeValueMemberS{Value: "NODE#"},
		},
		Select: types.SelectCount,
	}

	count := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count nodes: %w", err)
		}
		count += int(page.Count)
	}

	return count, nil
}

// Delete removes a node
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	node, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get node for deletion: %w", err)
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", node.ProfileID().String())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", id.String())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	r.logger.Debug("Node deleted", zap.String("nodeID", id.String()))
	return nil
}

// DeleteBatch removes multiple nodes
func (r *NodeRepository) DeleteBatch(ctx context.Context, nodeIDs []valueobjects.NodeID) error {
	for _, id := range nodeIDs {
		if err := r.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Search finds nodes matching the given criteria. Text matching runs
// client-side after the profile partition query; DynamoDB has no
// full-text search.
func (r *NodeRepository) Search(ctx context.Context, criteria ports.SearchCriteria) ([]*entities.Node, error) {
	profileID, err := valueobjects.NewProfileIDFromString(criteria.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID: %w", err)
	}

	nodes, err := r.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	matched := make([]*entities.Node, 0, len(nodes))
	for _, node := range nodes {
		if !matchesCriteria(node, criteria) {
			continue
		}
		matched = append(matched, node)
	}

	if criteria.Offset > 0 {
		if criteria.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[criteria.Offset:]
	}
	if criteria.Limit > 0 && criteria.Limit < len(matched) {
		matched = matched[:criteria.Limit]
	}

	return matched, nil
}

func matchesCriteria(node *entities.Node, criteria ports.SearchCriteria) bool {
	if criteria.Query != "" &&
		!strings.Contains(strings.ToLower(node.Text().String()), strings.ToLower(criteria.Query)) {
		return false
	}
	for _, want := range criteria.Tags {
		found := false
		for _, have := range node.Tags() {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
