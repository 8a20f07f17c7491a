package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ideaweaver/application/ports"
)

// ErrLockHeld is returned when the resource is locked by someone else
var ErrLockHeld = errors.New("lock already held")

// DistributedLock provides distributed locking using DynamoDB
// conditional writes. Capture and reset serialize per profile through
// it so concurrent writers cannot interleave graph mutations.
type DistributedLock struct {
	client    *dynamodb.Client
	tableName string
	ownerID   string
	duration  time.Duration
	logger    *zap.Logger
}

// lockRecord represents a lock record in DynamoDB
type lockRecord struct {
	PK         string `dynamodbav:"PK"` // LOCK#<resource>
	SK         string `dynamodbav:"SK"` // LOCK
	LockID     string `dynamodbav:"LockID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"` // Unix timestamp for DynamoDB TTL
}

// NewDistributedLock creates a new distributed lock instance. The
// duration bounds how long a crashed holder can block other writers.
func NewDistributedLock(client *dynamodb.Client, tableName string, duration time.Duration, logger *zap.Logger) *DistributedLock {
	if duration <= 0 {
		duration = 30 * time.Second
	}
	hostname, _ := os.Hostname()
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		ownerID:   fmt.Sprintf("%s_%d", hostname, os.Getpid()),
		duration:  duration,
		logger:    logger,
	}
}

// Acquire implements ports.Locker. It retries briefly on contention
// before giving up.
func (dl *DistributedLock) Acquire(ctx context.Context, resource string) (ports.Lock, error) {
	deadline := time.Now().Add(dl.duration)
	retryInterval := 100 * time.Millisecond

	for {
		lock, err := dl.acquireOnce(ctx, resource)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock for resource %s: %w", resource, ErrLockHeld)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

func (dl *DistributedLock) acquireOnce(ctx context.Context, resource string) (*Lock, error) {
	lockID := fmt.Sprintf("%s_%d", dl.ownerID, time.Now().UnixNano())
	now := time.Now()
	expiresAt := now.Add(dl.duration)

	record := lockRecord{
		PK:         fmt.Sprintf("LOCK#%s", resource),
		SK:         "LOCK",
		LockID:     lockID,
		Owner:      dl.ownerID,
		AcquiredAt: now.Format(time.RFC3339),
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		TTL:        expiresAt.Unix(),
	}

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: record.PK},
		"SK":         &types.AttributeValueMemberS{Value: record.SK},
		"LockID":     &types.AttributeValueMemberS{Value: record.LockID},
		"Owner":      &types.AttributeValueMemberS{Value: record.Owner},
		"AcquiredAt": &types.AttributeValueMemberS{Value: record.AcquiredAt},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: record.ExpiresAt},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.TTL)},
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(dl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}

	if _, err := dl.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			dl.logger.Debug("Failed to acquire lock - already held",
				zap.String("resource", resource),
				zap.String("owner", dl.ownerID),
			)
			return nil, fmt.Errorf("resource %s: %w", resource, ErrLockHeld)
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	dl.logger.Debug("Lock acquired",
		zap.String("resource", resource),
		zap.String("lockID", lockID),
		zap.Duration("duration", dl.duration),
	)

	return &Lock{
		distributedLock: dl,
		resource:        resource,
		lockID:          lockID,
		expiresAt:       expiresAt,
	}, nil
}

func (dl *DistributedLock) release(ctx context.Context, resource, lockID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", resource)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId AND #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
			":owner":  &types.AttributeValueMemberS{Value: dl.ownerID},
		},
	}

	if _, err := dl.client.DeleteItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			dl.logger.Warn("Lock already released or owned by someone else",
				zap.String("resource", resource),
				zap.String("lockID", lockID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}

	dl.logger.Debug("Lock released",
		zap.String("resource", resource),
		zap.String("lockID", lockID),
	)

	return nil
}

// Lock represents an acquired distributed lock
type Lock struct {
	distributedLock *DistributedLock
	resource        string
	lockID          string
	expiresAt       time.Time
}

// Release releases the lock
func (l *Lock) Release(ctx context.Context) error {
	return l.distributedLock.release(ctx, l.resource, l.lockID)
}

// IsExpired checks if the lock has expired
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.expiresAt)
}
