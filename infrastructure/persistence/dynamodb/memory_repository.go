package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neurovault/application/ports"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// MemoryRepository implements ports.LongTermMemoryRepository using DynamoDB.
// The sort key embeds the topic, making (userID, topic) unique by
// construction.
type MemoryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.LongTermMemoryRepository {
	return &MemoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// memoryItem represents the DynamoDB item structure for a long-term memory
type memoryItem struct {
	PK           string   `dynamodbav:"PK"`     // USER#<user_id>
	SK           string   `dynamodbav:"SK"`     // MEMORY#<topic>
	GSI1PK       string   `dynamodbav:"GSI1PK"` // MEMORY#<memory_id>, for lookup by ID
	GSI1SK       string   `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType   string   `dynamodbav:"EntityType"`
	MemoryID     string   `dynamodbav:"MemoryID"`
	UserID       string   `dynamodbav:"UserID"`
	Topic        string   `dynamodbav:"Topic"`
	CategoryID   string   `dynamodbav:"CategoryID,omitempty"`
	CategoryName string   `dynamodbav:"CategoryName,omitempty"`
	Summary      string   `dynamodbav:"Summary"`
	Tags         []string `dynamodbav:"Tags,omitempty"`
	Sources      []string `dynamodbav:"Sources"`
	Strength     int      `dynamodbav:"Strength"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
	UpdatedAt    string   `dynamodbav:"UpdatedAt"`
}

func toMemoryItem(memory *entities.LongTermMemory) memoryItem {
	sources := make([]string, 0, len(memory.SourceEntryIDs()))
	for _, id := range memory.SourceEntryIDs() {
		sources = append(sources, id.String())
	}
	return memoryItem{
		PK:           fmt.Sprintf("USER#%s", memory.UserID()),
		SK:           fmt.Sprintf("MEMORY#%s", memory.Topic()),
		GSI1PK:       fmt.Sprintf("MEMORY#%s", memory.ID()),
		GSI1SK:       "METADATA",
		EntityType:   "MEMORY",
		MemoryID:     memory.ID(),
		UserID:       memory.UserID(),
		Topic:        memory.Topic(),
		CategoryID:   memory.CategoryID(),
		CategoryName: memory.CategoryName(),
		Summary:      memory.Summary(),
		Tags:         memory.Tags(),
		Sources:      sources,
		Strength:     memory.Strength().Value(),
		CreatedAt:    memory.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:    memory.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (item memoryItem) toEntity() (*entities.LongTermMemory, error) {
	sources := make([]valueobjects.EntryID, 0, len(item.Sources))
	for _, raw := range item.Sources {
		id, err := valueobjects.NewEntryIDFromString(raw)
		if err != nil {
			continue
		}
		sources = append(sources, id)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return entities.ReconstructLongTermMemory(
		item.MemoryID,
		item.UserID,
		item.Topic,
		item.CategoryID,
		item.CategoryName,
		item.Summary,
		item.Tags,
		sources,
		valueobjects.NewStrength(item.Strength),
		createdAt,
		updatedAt,
	)
}

// Save persists a long-term memory to DynamoDB
func (r *MemoryRepository) Save(ctx context.Context, memory *entities.LongTermMemory) error {
	av, err := attributevalue.MarshalMap(toMemoryItem(memory))
	if err != nil {
		return fmt.Errorf("failed to marshal memory: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("Failed to save memory",
			zap.Error(err),
			zap.String("memoryID", memory.ID()),
		)
		return fmt.Errorf("failed to save memory: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its ID via GSI1
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*entities.LongTermMemory, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMORY#%s", id)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.ErrMemoryNotFound
	}

	var item memoryItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory: %w", err)
	}
	return item.toEntity()
}

// FindByUserAndTopic retrieves the record for (userID, topic)
func (r *MemoryRepository) FindByUserAndTopic(ctx context.Context, userID, topic string) (*entities.LongTermMemory, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMORY#%s", topic)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.ErrMemoryNotFound
	}

	var item memoryItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory: %w", err)
	}
	return item.toEntity()
}

// GetByUserID retrieves all records for a user
func (r *MemoryRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.LongTermMemory, error) {
	memories := []*entities.LongTermMemory{}
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
				":sk": &types.AttributeValueMemberS{Value: "MEMORY#"},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query memories: %w", err)
		}

		for _, raw := range result.Items {
			var item memoryItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed memory item", zap.Error(err))
				continue
			}
			memory, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreconstructable memory item", zap.Error(err))
				continue
			}
			memories = append(memories, memory)
		}

		if result.LastEvaluatedKey == nil {
			return memories, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

// Delete removes a record
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	memory, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrMemoryNotFound) || pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", memory.UserID())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("MEMORY#%s", memory.Topic())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	return nil
}
