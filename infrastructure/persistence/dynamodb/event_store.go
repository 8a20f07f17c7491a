package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/domain/events"
)

// DynamoDBEventStore implements the EventStore interface using DynamoDB
// with an outbox: events land as pending and the outbox processor
// pushes them to the bus afterwards.
type DynamoDBEventStore struct {
	client    *dynamodb.Client
	tableName string
}

// PublishStatus represents the publishing status of an event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusFailed    PublishStatus = "failed"
)

// EventRecord represents how events are stored in DynamoDB
type EventRecord struct {
	PK          string                 `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK          string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EventID     string                 `dynamodbav:"EventID"`
	EventType   string                 `dynamodbav:"EventType"`
	AggregateID string                 `dynamodbav:"AggregateID"`
	EventData   map[string]interface{} `dynamodbav:"EventData"`
	Timestamp   string                 `dynamodbav:"Timestamp"`
	Version     int                    `dynamodbav:"Version"`
	ProfileID   string                 `dynamodbav:"ProfileID"`

	// Outbox fields
	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`

	// GSI attributes for querying
	GSI1PK string `dynamodbav:"GSI1PK"` // PROFILE#<profile_id>
	GSI1SK string `dynamodbav:"GSI1SK"` // EVENT#<timestamp>
	GSI2PK string `dynamodbav:"GSI2PK"` // EVENTTYPE#<type>
	GSI2SK string `dynamodbav:"GSI2SK"` // EVENT#<timestamp>

	// TTL for automatic cleanup
	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// NewDynamoDBEventStore creates a new DynamoDB event store
func NewDynamoDBEventStore(client *dynamodb.Client, tableName string) *DynamoDBEventStore {
	return &DynamoDBEventStore{
		client:    client,
		tableName: tableName,
	}
}

// SaveEvents persists domain events to the event store
func (es *DynamoDBEventStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))
	for _, event := range domainEvents {
		record, err := es.eventToRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: item,
			},
		})
	}

	// DynamoDB limit is 25 items per batch
	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				es.tableName: writeRequests[i:end],
			},
		}

		result, err := es.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}
		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d events", len(result.UnprocessedItems[es.tableName]))
		}
	}

	return nil
}

// GetEvents retrieves all events for an aggregate, oldest first
func (es *DynamoDBEventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", aggregateID)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var allEvents []events.DomainEvent
	paginator := dynamodb.NewQueryPaginator(es.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
		for _, item := range page.Items {
			var record EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}
			event, err := es.recordToEvent(record)
			if err != nil {
				return nil, fmt.Errorf("failed to convert record to event: %w", err)
			}
			allEvents = append(allEvents, event)
		}
	}

	return allEvents, nil
}

// GetEventsByType retrieves recent events of a specific type
func (es *DynamoDBEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTTYPE#%s", eventType)},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := es.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}

	domainEvents := make([]events.DomainEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}
		event, err := es.recordToEvent(record)
		if err != nil {
			return nil, fmt.Errorf("failed to convert record to event: %w", err)
		}
		domainEvents = append(domainEvents, event)
	}

	return domainEvents, nil
}

// DeleteEvents removes all events for an aggregate
func (es *DynamoDBEventStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", aggregateID)},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	paginator := dynamodb.NewQueryPaginator(es.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to query events for deletion: %w", err)
		}
		for _, item := range page.Items {
			deleteInput := &dynamodb.DeleteItemInput{
				TableName: aws.String(es.tableName),
				Key: map[string]types.AttributeValue{
					"PK": item["PK"],
					"SK": item["SK"],
				},
			}
			if _, err := es.client.DeleteItem(ctx, deleteInput); err != nil {
				return fmt.Errorf("failed to delete event: %w", err)
			}
		}
	}

	return nil
}

// PrepareEventItem prepares an event for transactional write. The unit
// of work uses it to persist events atomically with aggregate state.
func (es *DynamoDBEventStore) PrepareEventItem(event events.DomainEvent) (types.TransactWriteItem, error) {
	record, err := es.eventToRecord(event)
	if err != nil {
		return types.TransactWriteItem{}, err
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return types.TransactWriteItem{}, err
	}

	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(es.tableName),
			Item:      item,
		},
	}, nil
}

// eventToRecord converts a domain event to a DynamoDB record
func (es *DynamoDBEventStore) eventToRecord(event events.DomainEvent) (*EventRecord, error) {
	eventData := make(map[string]interface{})
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := json.Unmarshal(eventBytes, &eventData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event to map: %w", err)
	}

	timestamp := event.GetTimestamp()
	eventID := uuid.New().String()

	// Events older than a year are expired by DynamoDB TTL
	ttl := timestamp.Add(365 * 24 * time.Hour).Unix()

	profileID := ""
	if raw, ok := eventData["profile_id"].(string); ok {
		profileID = raw
	}

	return &EventRecord{
		PK:          fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:          fmt.Sprintf("EVENT#%s#%s", timestamp.Format(time.RFC3339Nano), eventID),
		EventID:     eventID,
		EventType:   event.GetEventType(),
		AggregateID: event.GetAggregateID(),
		EventData:   eventData,
		Timestamp:   timestamp.Format(time.RFC3339Nano),
		Version:     event.GetVersion(),
		ProfileID:   profileID,

		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,

		GSI1PK: fmt.Sprintf("PROFILE#%s", profileID),
		GSI1SK: fmt.Sprintf("EVENT#%s", timestamp.Format(time.RFC3339Nano)),
		GSI2PK: fmt.Sprintf("EVENTTYPE#%s", event.GetEventType()),
		GSI2SK: fmt.Sprintf("EVENT#%s", timestamp.Format(time.RFC3339Nano)),
		TTL:    ttl,
	}, nil
}

// recordToEvent converts a DynamoDB record back to a domain event
func (es *DynamoDBEventStore) recordToEvent(record EventRecord) (events.DomainEvent, error) {
	timestamp, err := time.Parse(time.RFC3339Nano, record.Timestamp)
	if err != nil {
		timestamp, err = time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}

	baseEvent := events.BaseEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Timestamp:   timestamp,
		Version:     record.Version,
	}

	profileID, _ := valueobjects.NewProfileIDFromString(record.ProfileID)

	switch record.EventType {
	case "idea.captured":
		nodeIDStr, _ := record.EventData["node_id"].(string)
		nodeID, _ := valueobjects.NewNodeIDFromString(nodeIDStr)
		text, _ := record.EventData["text"].(string)
		hasVector, _ := record.EventData["has_vector"].(bool)

		return events.IdeaCaptured{
			BaseEvent: baseEvent,
			NodeID:    nodeID,
			ProfileID: profileID,
			Text:      text,
			Tags:      stringSlice(record.EventData["tags"]),
			HasVector: hasVector,
		}, nil

	case "idea.deleted":
		nodeIDStr, _ := record.EventData["node_id"].(string)
		nodeID, _ := valueobjects.NewNodeIDFromString(nodeIDStr)

		return events.IdeaDeleted{
			BaseEvent: baseEvent,
			NodeID:    nodeID,
			ProfileID: profileID,
		}, nil

	case "edges.linked":
		anchorIDStr, _ := record.EventData["anchor_id"].(string)
		anchorID, _ := valueobjects.NewNodeIDFromString(anchorIDStr)
		provenance, _ := record.EventData["provenance"].(string)

		var edges []events.LinkedEdge
		if raw, ok := record.EventData["edges"].([]interface{}); ok {
			for _, entry := range raw {
				m, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				sourceID, _ := m["source_id"].(string)
				targetID, _ := m["target_id"].(string)
				weight, _ := m["weight"].(float64)
				edges = append(edges, events.LinkedEdge{
					SourceID: sourceID,
					TargetID: targetID,
					Weight:   weight,
				})
			}
		}

		return events.EdgesLinked{
			BaseEvent:  baseEvent,
			AnchorID:   anchorID,
			ProfileID:  profileID,
			Edges:      edges,
			Provenance: provenance,
		}, nil

	case "profile.created":
		name, _ := record.EventData["name"].(string)

		return events.ProfileCreated{
			BaseEvent: baseEvent,
			ProfileID: profileID,
			Name:      name,
		}, nil

	case "profile.reset":
		ideasRemoved := intValue(record.EventData["ideas_removed"])
		edgesRemoved := intValue(record.EventData["edges_removed"])

		return events.ProfileReset{
			BaseEvent:    baseEvent,
			ProfileID:    profileID,
			IdeasRemoved: ideasRemoved,
			EdgesRemoved: edgesRemoved,
		}, nil

	default:
		return baseEvent, nil
	}
}

func stringSlice(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intValue(raw interface{}) int {
	if f, ok := raw.(float64); ok {
		return int(f)
	}
	return 0
}

// Outbox pattern methods

// GetPendingEvents retrieves events that haven't been published yet
func (es *DynamoDBEventStore) GetPendingEvents(ctx context.Context, limit int32) ([]*EventRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(es.tableName),
		FilterExpression: aws.String("PublishStatus = :status AND begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(PublishStatusPending)},
			":prefix": &types.AttributeValueMemberS{Value: "EVENTS#"},
		},
		Limit: aws.Int32(limit),
	}

	result, err := es.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending events: %w", err)
	}

	records := make([]*EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

// MarkEventAsPublished marks an event as successfully published
func (es *DynamoDBEventStore) MarkEventAsPublished(ctx context.Context, eventPK, eventSK string) error {
	now := time.Now().Format(time.RFC3339)

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	return nil
}

// MarkEventAsFailed marks an event as failed to publish. Events under
// the attempt limit stay pending so the processor retries them.
func (es *DynamoDBEventStore) MarkEventAsFailed(ctx context.Context, eventPK, eventSK string, errorMsg string, attempts int) error {
	now := time.Now().Format(time.RFC3339)

	status := string(PublishStatusFailed)
	if attempts < 3 {
		status = string(PublishStatusPending)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":attempts": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", attempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: now},
			":error":    &types.AttributeValueMemberS{Value: errorMsg},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	return nil
}
