package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"neurovault/application/ports"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const batchWriteLimit = 25

// EntryRepository implements ports.EntryRepository using DynamoDB
type EntryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.EntryRepository {
	return &EntryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// entryItem represents the DynamoDB item structure for a vault entry
type entryItem struct {
	PK             string   `dynamodbav:"PK"`     // USER#<user_id>
	SK             string   `dynamodbav:"SK"`     // ENTRY#<entry_id>
	GSI1PK         string   `dynamodbav:"GSI1PK"` // ENTRY#<entry_id>, for lookup by ID
	GSI1SK         string   `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType     string   `dynamodbav:"EntityType"`
	EntryID        string   `dynamodbav:"EntryID"`
	UserID         string   `dynamodbav:"UserID"`
	RawText        string   `dynamodbav:"RawText"`
	Summary        string   `dynamodbav:"Summary,omitempty"`
	Tags           []string `dynamodbav:"Tags,omitempty"`
	Category       string   `dynamodbav:"Category,omitempty"`
	Strength       int      `dynamodbav:"Strength"`
	IsAnalyzed     bool     `dynamodbav:"IsAnalyzed"`
	IsConsolidated bool     `dynamodbav:"IsConsolidated"`
	LastActivityAt string   `dynamodbav:"LastActivityAt"`
	CreatedAt      string   `dynamodbav:"CreatedAt"`
	UpdatedAt      string   `dynamodbav:"UpdatedAt"`
}

func toEntryItem(entry *entities.VaultEntry) entryItem {
	return entryItem{
		PK:             fmt.Sprintf("USER#%s", entry.UserID()),
		SK:             fmt.Sprintf("ENTRY#%s", entry.ID().String()),
		GSI1PK:         fmt.Sprintf("ENTRY#%s", entry.ID().String()),
		GSI1SK:         "METADATA",
		EntityType:     "ENTRY",
		EntryID:        entry.ID().String(),
		UserID:         entry.UserID(),
		RawText:        entry.RawText(),
		Summary:        entry.Summary(),
		Tags:           entry.Tags(),
		Category:       entry.Category(),
		Strength:       entry.Strength().Value(),
		IsAnalyzed:     entry.IsAnalyzed(),
		IsConsolidated: entry.IsConsolidated(),
		LastActivityAt: entry.LastActivityAt().Format(time.RFC3339Nano),
		CreatedAt:      entry.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:      entry.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (item entryItem) toEntity() (*entities.VaultEntry, error) {
	id, err := valueobjects.NewEntryIDFromString(item.EntryID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry ID in item: %w", err)
	}
	lastActivity, _ := time.Parse(time.RFC3339Nano, item.LastActivityAt)
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return entities.ReconstructVaultEntry(
		id,
		item.UserID,
		item.RawText,
		item.Summary,
		item.Tags,
		item.Category,
		valueobjects.NewStrength(item.Strength),
		item.IsAnalyzed,
		item.IsConsolidated,
		lastActivity,
		createdAt,
		updatedAt,
	)
}

// Save persists an entry to DynamoDB
func (r *EntryRepository) Save(ctx context.Context, entry *entities.VaultEntry) error {
	av, err := attributevalue.MarshalMap(toEntryItem(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("Failed to save entry",
			zap.Error(err),
			zap.String("entryID", entry.ID().String()),
		)
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its ID via GSI1
func (r *EntryRepository) GetByID(ctx context.Context, id valueobjects.EntryID) (*entities.VaultEntry, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("ENTRY#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.ErrEntryNotFound
	}

	var item entryItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return item.toEntity()
}

// GetByIDs retrieves multiple entries; missing IDs are silently skipped
func (r *EntryRepository) GetByIDs(ctx context.Context, ids []valueobjects.EntryID) ([]*entities.VaultEntry, error) {
	entries := make([]*entities.VaultEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrEntryNotFound) || pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetByUserID retrieves all entries for a user
func (r *EntryRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.VaultEntry, error) {
	return r.queryUserEntries(ctx, userID, nil)
}

// Delete removes an entry
func (r *EntryRepository) Delete(ctx context.Context, id valueobjects.EntryID) error {
	entry, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEntryNotFound) || pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", entry.UserID())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ENTRY#%s", id.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// DeleteBatch removes multiple entries
func (r *EntryRepository) DeleteBatch(ctx context.Context, ids []valueobjects.EntryID) error {
	requests := make([]types.WriteRequest, 0, len(ids))
	for _, id := range ids {
		entry, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrEntryNotFound) || pkgerrors.IsNotFound(err) {
				continue
			}
			return err
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", entry.UserID())},
					"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ENTRY#%s", id.String())},
				},
			},
		})
	}
	return r.batchWrite(ctx, requests)
}

// BulkSave saves multiple entries as unordered batch writes
func (r *EntryRepository) BulkSave(ctx context.Context, entries []*entities.VaultEntry) error {
	requests := make([]types.WriteRequest, 0, len(entries))
	for _, entry := range entries {
		av, err := attributevalue.MarshalMap(toEntryItem(entry))
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}
	return r.batchWrite(ctx, requests)
}

// ListUserIDs scans the distinct owners of stored entries
func (r *EntryRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	users := []string{}

	err := r.scanEntries(ctx, expression.Name("EntityType").Equal(expression.Value("ENTRY")), func(item entryItem) {
		if !seen[item.UserID] {
			seen[item.UserID] = true
			users = append(users, item.UserID)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(users)
	return users, nil
}

// FindDecayCandidates scans non-consolidated entries with positive strength
// and no activity since the cutoff. Runs once per nightly cycle, so a full
// scan is acceptable.
func (r *EntryRepository) FindDecayCandidates(ctx context.Context, inactiveSince time.Time) ([]*entities.VaultEntry, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("ENTRY")).
		And(expression.Name("IsConsolidated").Equal(expression.Value(false))).
		And(expression.Name("Strength").GreaterThan(expression.Value(0))).
		And(expression.Name("LastActivityAt").LessThan(expression.Value(inactiveSince.Format(time.RFC3339Nano))))

	return r.scanToEntities(ctx, filter)
}

// FindDepleted scans non-consolidated entries whose strength reached zero
func (r *EntryRepository) FindDepleted(ctx context.Context) ([]*entities.VaultEntry, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("ENTRY")).
		And(expression.Name("IsConsolidated").Equal(expression.Value(false))).
		And(expression.Name("Strength").LessThanEqual(expression.Value(0)))

	return r.scanToEntities(ctx, filter)
}

// FindDeltaSet returns a user's discovery candidates, most recently active
// first, capped at limit
func (r *EntryRepository) FindDeltaSet(ctx context.Context, userID string, activeSince time.Time, limit int) ([]*entities.VaultEntry, error) {
	filter := expression.Name("IsConsolidated").Equal(expression.Value(false)).
		And(expression.Name("IsAnalyzed").Equal(expression.Value(false)).
			Or(expression.Name("LastActivityAt").GreaterThan(expression.Value(activeSince.Format(time.RFC3339Nano)))))

	entries, err := r.queryUserEntries(ctx, userID, &filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastActivityAt().After(entries[j].LastActivityAt())
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// FindContextSet returns a user's analyzed entries at or above minStrength,
// strongest first, excluding the given IDs, capped at limit
func (r *EntryRepository) FindContextSet(ctx context.Context, userID string, minStrength int, exclude []valueobjects.EntryID, limit int) ([]*entities.VaultEntry, error) {
	filter := expression.Name("IsConsolidated").Equal(expression.Value(false)).
		And(expression.Name("IsAnalyzed").Equal(expression.Value(true))).
		And(expression.Name("Strength").GreaterThanEqual(expression.Value(minStrength)))

	entries, err := r.queryUserEntries(ctx, userID, &filter)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id.String()] = true
	}
	kept := entries[:0]
	for _, entry := range entries {
		if !excluded[entry.ID().String()] {
			kept = append(kept, entry)
		}
	}
	entries = kept

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Strength().Value() > entries[j].Strength().Value()
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// FindConsolidationCandidates returns a user's non-consolidated entries at or
// above the strength threshold
func (r *EntryRepository) FindConsolidationCandidates(ctx context.Context, userID string, threshold int) ([]*entities.VaultEntry, error) {
	filter := expression.Name("IsConsolidated").Equal(expression.Value(false)).
		And(expression.Name("Strength").GreaterThanEqual(expression.Value(threshold)))

	return r.queryUserEntries(ctx, userID, &filter)
}

// queryUserEntries queries the user's entry partition, optionally filtered
func (r *EntryRepository) queryUserEntries(ctx context.Context, userID string, filter *expression.ConditionBuilder) ([]*entities.VaultEntry, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("ENTRY#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build entry query: %w", err)
	}

	entries := []*entities.VaultEntry{}
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query entries: %w", err)
		}

		for _, raw := range result.Items {
			var item entryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed entry item", zap.Error(err))
				continue
			}
			entry, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreconstructable entry item", zap.Error(err))
				continue
			}
			entries = append(entries, entry)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return entries, nil
}

// scanEntries scans the whole table with the given filter, paging through
// every item
func (r *EntryRepository) scanEntries(ctx context.Context, filter expression.ConditionBuilder, visit func(entryItem)) error {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return fmt.Errorf("failed to build entry scan: %w", err)
	}

	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return fmt.Errorf("failed to scan entries: %w", err)
		}

		for _, raw := range result.Items {
			var item entryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed entry item", zap.Error(err))
				continue
			}
			visit(item)
		}

		if result.LastEvaluatedKey == nil {
			return nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func (r *EntryRepository) scanToEntities(ctx context.Context, filter expression.ConditionBuilder) ([]*entities.VaultEntry, error) {
	entries := []*entities.VaultEntry{}
	err := r.scanEntries(ctx, filter, func(item entryItem) {
		entry, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping unreconstructable entry item", zap.Error(err))
			return
		}
		entries = append(entries, entry)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// batchWrite issues BatchWriteItem calls in chunks, retrying unprocessed items
func (r *EntryRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	return batchWrite(ctx, r.client, r.tableName, requests)
}

func batchWrite(ctx context.Context, client *dynamodb.Client, tableName string, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}

		pending := requests[start:end]
		for len(pending) > 0 {
			result, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					tableName: pending,
				},
			})
			if err != nil {
				return fmt.Errorf("batch write failed: %w", err)
			}
			pending = result.UnprocessedItems[tableName]
		}
	}
	return nil
}
