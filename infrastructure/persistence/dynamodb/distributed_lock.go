package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	pkgerrors "neurovault/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DistributedLock implements ports.MaintenanceLock using DynamoDB
// conditional writes. The table's TTL attribute reaps leases whose holder
// crashed without releasing.
type DistributedLock struct {
	client    *dynamodb.Client
	tableName string
	ownerID   string
	logger    *zap.Logger
}

// lockRecord represents a lease record in DynamoDB
type lockRecord struct {
	PK         string `dynamodbav:"PK"` // LOCK#<lock_id>
	SK         string `dynamodbav:"SK"` // LOCK
	LeaseID    string `dynamodbav:"LeaseID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// NewDistributedLock creates a new distributed lock instance. The owner
// identity distinguishes concurrent schedulers in logs and release guards.
func NewDistributedLock(client *dynamodb.Client, tableName string, logger *zap.Logger) *DistributedLock {
	hostname, _ := os.Hostname()
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		ownerID:   fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8]),
		logger:    logger,
	}
}

// Acquire obtains the lease via a conditional write. A live lease held by
// anyone else yields ErrLockNotAcquired; an expired lease is stolen.
func (dl *DistributedLock) Acquire(ctx context.Context, lockID string, ttl time.Duration) (func(ctx context.Context) error, error) {
	leaseID := fmt.Sprintf("%s_%d", dl.ownerID, time.Now().UnixNano())
	now := time.Now()
	expiresAt := now.Add(ttl)

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", lockID)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LeaseID":    &types.AttributeValueMemberS{Value: leaseID},
		"Owner":      &types.AttributeValueMemberS{Value: dl.ownerID},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
	}

	_, err := dl.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			dl.logger.Debug("Lease already held",
				zap.String("lockID", lockID),
				zap.String("owner", dl.ownerID),
			)
			return nil, pkgerrors.ErrLockNotAcquired
		}
		return nil, fmt.Errorf("failed to acquire lease: %w", err)
	}

	dl.logger.Debug("Lease acquired",
		zap.String("lockID", lockID),
		zap.String("leaseID", leaseID),
		zap.Duration("ttl", ttl),
	)

	release := func(ctx context.Context) error {
		return dl.release(ctx, lockID, leaseID)
	}
	return release, nil
}

// release deletes the lease record, guarded so only the acquiring holder's
// own lease is removed
func (dl *DistributedLock) release(ctx context.Context, lockID, leaseID string) error {
	_, err := dl.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", lockID)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LeaseID = :leaseId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":leaseId": &types.AttributeValueMemberS{Value: leaseID},
		},
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			// Lease expired and was taken over; nothing left to release
			dl.logger.Warn("Lease already released or re-acquired",
				zap.String("lockID", lockID),
				zap.String("leaseID", leaseID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lease: %w", err)
	}

	dl.logger.Debug("Lease released",
		zap.String("lockID", lockID),
		zap.String("leaseID", leaseID),
	)
	return nil
}
