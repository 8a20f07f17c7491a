package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
)

// ProfileRepository implements ports.ProfileRepository using DynamoDB
type ProfileRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ProfileRepository {
	return &ProfileRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// profileItem represents the DynamoDB item structure for a profile.
// GSI1 groups all profiles under one partition for listing; the policy
// knobs are stored inline so a profile read never needs a second fetch.
type profileItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string `dynamodbav:"GSI1SK,omitempty"`
	EntityType string `dynamodbav:"EntityType"`
	ProfileID  string `dynamodbav:"ProfileID"`
	Name       string `dynamodbav:"Name"`
	Preset     string `dynamodbav:"Preset"`

	MinCosine             float64 `dynamodbav:"MinCosine"`
	MaxDistance           float64 `dynamodbav:"MaxDistance"`
	StrictMutual          bool    `dynamodbav:"StrictMutual"`
	MaxEdges              int     `dynamodbav:"MaxEdges"`
	KNeighbors            int     `dynamodbav:"KNeighbors"`
	FallbackMinCorpusSize int     `dynamodbav:"FallbackMinCorpusSize"`

	CreatedAt string `dynamodbav:"CreatedAt"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
	Version   int    `dynamodbav:"Version"`
}

func newProfileItem(profile *entities.Profile) profileItem {
	cfg := profile.AutolinkConfig()
	return profileItem{
		PK:         fmt.Sprintf("PROFILE#%s", profile.ID().String()),
		SK:         "METADATA",
		GSI1PK:     "PROFILES",
		GSI1SK:     fmt.Sprintf("PROFILE#%s", profile.ID().String()),
		EntityType: "PROFILE",
		ProfileID:  profile.ID().String(),
		Name:       profile.Name(),
		Preset:     profile.Preset(),

		MinCosine:             cfg.MinCosine,
		MaxDistance:           cfg.MaxDistance,
		StrictMutual:          cfg.StrictMutual,
		MaxEdges:              cfg.MaxEdges,
		KNeighbors:            cfg.KNeighbors,
		FallbackMinCorpusSize: cfg.FallbackMinCorpusSize,

		CreatedAt: profile.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt: profile.UpdatedAt().Format(time.RFC3339Nano),
		Version:   profile.Version(),
	}
}

func (item profileItem) toEntity() (*entities.Profile, error) {
	profileID, err := valueobjects.NewProfileIDFromString(item.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID in item: %w", err)
	}

	cfg := autolink.Config{
		MinCosine:             item.MinCosine,
		MaxDistance:           item.MaxDistance,
		StrictMutual:          item.StrictMutual,
		MaxEdges:              item.MaxEdges,
		KNeighbors:            item.KNeighbors,
		FallbackMinCorpusSize: item.FallbackMinCorpusSize,
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return entities.ReconstructProfile(
		profileID,
		item.Name,
		item.Preset,
		cfg,
		createdAt,
		updatedAt,
		item.Version,
	)
}

// Save persists a profile (create or update)
func (r *ProfileRepository) Save(ctx context.Context, profile *entities.Profile) error {
	av, err := attributevalue.MarshalMap(newProfileItem(profile))
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save profile",
			zap.String("profileID", profile.ID().String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by its ID
func (r *ProfileRepository) GetByID(ctx context.Context, id valueobjects.ProfileID) (*entities.Profile, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", id.String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, fmt.Errorf("profile not found: %s", id.String())
	}

	var item profileItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return item.toEntity()
}

// List retrieves all profiles via GSI1
func (r *ProfileRepository) List(ctx context.Context) ([]*entities.Profile, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "PROFILES"},
		},
	}

	var profiles []*entities.Profile
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		for _, raw := range page.Items {
			var item profileItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal profile item", zap.Error(err))
				continue
			}
			profile, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Failed to reconstruct profile",
					zap.String("profileID", item.ProfileID),
					zap.Error(err),
				)
				continue
			}
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

// Delete removes a profile record
func (r *ProfileRepository) Delete(ctx context.Context, id valueobjects.ProfileID) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROFILE#%s", id.String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	r.logger.Debug("Profile deleted", zap.String("profileID", id.String()))
	return nil
}
