package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"neurovault/application/ports"
	"neurovault/domain/core/entities"
	pkgerrors "neurovault/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CategoryRepository implements ports.CategoryRepository using DynamoDB.
// Categories are reference data and live in a single shared partition.
type CategoryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.CategoryRepository {
	return &CategoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// categoryItem represents the DynamoDB item structure for a category
type categoryItem struct {
	PK           string   `dynamodbav:"PK"` // CATEGORY
	SK           string   `dynamodbav:"SK"` // CATEGORY#<name>
	EntityType   string   `dynamodbav:"EntityType"`
	CategoryID   string   `dynamodbav:"CategoryID"`
	Name         string   `dynamodbav:"Name"`
	Description  string   `dynamodbav:"Description,omitempty"`
	Keywords     []string `dynamodbav:"Keywords,omitempty"`
	IsActive     bool     `dynamodbav:"IsActive"`
	DisplayOrder int      `dynamodbav:"DisplayOrder"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
}

func (item categoryItem) toEntity() *entities.Category {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	return entities.ReconstructCategory(
		item.CategoryID,
		item.Name,
		item.Description,
		item.Keywords,
		item.IsActive,
		item.DisplayOrder,
		createdAt,
	)
}

// Save persists a category definition
func (r *CategoryRepository) Save(ctx context.Context, category *entities.Category) error {
	item := categoryItem{
		PK:           "CATEGORY",
		SK:           fmt.Sprintf("CATEGORY#%s", category.Name()),
		EntityType:   "CATEGORY",
		CategoryID:   category.ID(),
		Name:         category.Name(),
		Description:  category.Description(),
		Keywords:     category.Keywords(),
		IsActive:     category.IsActive(),
		DisplayOrder: category.Order(),
		CreatedAt:    category.CreatedAt().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// GetByName retrieves a category by name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CATEGORY"},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CATEGORY#%s", name)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.ErrCategoryNotFound
	}

	var item categoryItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category: %w", err)
	}
	return item.toEntity(), nil
}

// ListActive retrieves active categories in display order
func (r *CategoryRepository) ListActive(ctx context.Context) ([]*entities.Category, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "CATEGORY"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories := []*entities.Category{}
	for _, raw := range result.Items {
		var item categoryItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Skipping malformed category item", zap.Error(err))
			continue
		}
		if !item.IsActive {
			continue
		}
		categories = append(categories, item.toEntity())
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Order() < categories[j].Order()
	})
	return categories, nil
}
