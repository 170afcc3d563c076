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

// SynapseRepository implements ports.SynapseRepository using DynamoDB.
// The sort key embeds the canonically ordered endpoint pair, so the pair
// is naturally unique per user.
type SynapseRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSynapseRepository creates a new SynapseRepository
func NewSynapseRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.SynapseRepository {
	return &SynapseRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// synapseItem represents the DynamoDB item structure for a synapse
type synapseItem struct {
	PK         string  `dynamodbav:"PK"`     // USER#<user_id>
	SK         string  `dynamodbav:"SK"`     // SYNAPSE#<from>#<to>
	GSI1PK     string  `dynamodbav:"GSI1PK"` // SYNAPSE#<synapse_id>, for lookup by ID
	GSI1SK     string  `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType string  `dynamodbav:"EntityType"`
	SynapseID  string  `dynamodbav:"SynapseID"`
	UserID     string  `dynamodbav:"UserID"`
	FromID     string  `dynamodbav:"FromID"`
	ToID       string  `dynamodbav:"ToID"`
	Weight     float64 `dynamodbav:"Weight"`
	Stability  float64 `dynamodbav:"Stability"`
	Reason     string  `dynamodbav:"Reason,omitempty"`
	LastFired  string  `dynamodbav:"LastFired"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
}

func synapseSK(from, to valueobjects.EntryID) string {
	return fmt.Sprintf("SYNAPSE#%s#%s", from.String(), to.String())
}

func toSynapseItem(synapse *entities.Synapse) synapseItem {
	return synapseItem{
		PK:         fmt.Sprintf("USER#%s", synapse.UserID()),
		SK:         synapseSK(synapse.From(), synapse.To()),
		GSI1PK:     fmt.Sprintf("SYNAPSE#%s", synapse.ID()),
		GSI1SK:     "METADATA",
		EntityType: "SYNAPSE",
		SynapseID:  synapse.ID(),
		UserID:     synapse.UserID(),
		FromID:     synapse.From().String(),
		ToID:       synapse.To().String(),
		Weight:     synapse.Weight().Value(),
		Stability:  synapse.Stability().Value(),
		Reason:     synapse.Reason(),
		LastFired:  synapse.LastFired().Format(time.RFC3339Nano),
		CreatedAt:  synapse.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  synapse.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (item synapseItem) toEntity() (*entities.Synapse, error) {
	from, err := valueobjects.NewEntryIDFromString(item.FromID)
	if err != nil {
		return nil, fmt.Errorf("invalid synapse endpoint in item: %w", err)
	}
	to, err := valueobjects.NewEntryIDFromString(item.ToID)
	if err != nil {
		return nil, fmt.Errorf("invalid synapse endpoint in item: %w", err)
	}
	lastFired, _ := time.Parse(time.RFC3339Nano, item.LastFired)
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return entities.ReconstructSynapse(
		item.SynapseID,
		item.UserID,
		from, to,
		valueobjects.NewWeight(item.Weight),
		valueobjects.NewStability(item.Stability),
		item.Reason,
		lastFired, createdAt, updatedAt,
	)
}

// Save persists a synapse to DynamoDB
func (r *SynapseRepository) Save(ctx context.Context, synapse *entities.Synapse) error {
	av, err := attributevalue.MarshalMap(toSynapseItem(synapse))
	if err != nil {
		return fmt.Errorf("failed to marshal synapse: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("Failed to save synapse",
			zap.Error(err),
			zap.String("synapseID", synapse.ID()),
		)
		return fmt.Errorf("failed to save synapse: %w", err)
	}
	return nil
}

// GetByID retrieves a synapse by its ID via GSI1
func (r *SynapseRepository) GetByID(ctx context.Context, id string) (*entities.Synapse, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("SYNAPSE#%s", id)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query synapse: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.ErrSynapseNotFound
	}

	var item synapseItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal synapse: %w", err)
	}
	return item.toEntity()
}

// FindByPair retrieves the synapse for an unordered entry pair
func (r *SynapseRepository) FindByPair(ctx context.Context, userID string, a, b valueobjects.EntryID) (*entities.Synapse, error) {
	from, to := entities.CanonicalPair(a, b)

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			"SK": &types.AttributeValueMemberS{Value: synapseSK(from, to)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get synapse: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.ErrSynapseNotFound
	}

	var item synapseItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal synapse: %w", err)
	}
	return item.toEntity()
}

// GetByEntryID retrieves synapses touching an entry, weight descending
func (r *SynapseRepository) GetByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID, limit int) ([]*entities.Synapse, error) {
	id := entryID.String()
	filter := expression.Name("FromID").Equal(expression.Value(id)).
		Or(expression.Name("ToID").Equal(expression.Value(id)))

	synapses, err := r.queryUserSynapses(ctx, userID, &filter)
	if err != nil {
		return nil, err
	}

	sortSynapsesByWeightDesc(synapses)
	if limit > 0 && len(synapses) > limit {
		synapses = synapses[:limit]
	}
	return synapses, nil
}

// GetByUserID retrieves all synapses for a user
func (r *SynapseRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.Synapse, error) {
	return r.queryUserSynapses(ctx, userID, nil)
}

// Delete removes a synapse
func (r *SynapseRepository) Delete(ctx context.Context, id string) error {
	synapse, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrSynapseNotFound) || pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", synapse.UserID())},
			"SK": &types.AttributeValueMemberS{Value: synapseSK(synapse.From(), synapse.To())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete synapse: %w", err)
	}
	return nil
}

// DeleteBatch removes multiple synapses
func (r *SynapseRepository) DeleteBatch(ctx context.Context, ids []string) error {
	requests := make([]types.WriteRequest, 0, len(ids))
	for _, id := range ids {
		synapse, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrSynapseNotFound) || pkgerrors.IsNotFound(err) {
				continue
			}
			return err
		}
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", synapse.UserID())},
					"SK": &types.AttributeValueMemberS{Value: synapseSK(synapse.From(), synapse.To())},
				},
			},
		})
	}
	return batchWrite(ctx, r.client, r.tableName, requests)
}

// DeleteByEntryID removes all synapses touching an entry
func (r *SynapseRepository) DeleteByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID) error {
	synapses, err := r.GetByEntryID(ctx, userID, entryID, 0)
	if err != nil {
		return err
	}

	requests := make([]types.WriteRequest, 0, len(synapses))
	for _, synapse := range synapses {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
					"SK": &types.AttributeValueMemberS{Value: synapseSK(synapse.From(), synapse.To())},
				},
			},
		})
	}
	return batchWrite(ctx, r.client, r.tableName, requests)
}

// BulkSave saves multiple synapses as unordered batch writes
func (r *SynapseRepository) BulkSave(ctx context.Context, synapses []*entities.Synapse) error {
	requests := make([]types.WriteRequest, 0, len(synapses))
	for _, synapse := range synapses {
		av, err := attributevalue.MarshalMap(toSynapseItem(synapse))
		if err != nil {
			return fmt.Errorf("failed to marshal synapse: %w", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}
	return batchWrite(ctx, r.client, r.tableName, requests)
}

// FindDecayCandidates scans positive-weight synapses not fired since the
// cutoff. Runs once per nightly cycle.
func (r *SynapseRepository) FindDecayCandidates(ctx context.Context, firedBefore time.Time) ([]*entities.Synapse, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("SYNAPSE")).
		And(expression.Name("Weight").GreaterThan(expression.Value(0.0))).
		And(expression.Name("LastFired").LessThan(expression.Value(firedBefore.Format(time.RFC3339Nano))))

	return r.scanSynapses(ctx, filter)
}

// FindPrunable scans synapses at or below the weight threshold
func (r *SynapseRepository) FindPrunable(ctx context.Context, threshold float64) ([]*entities.Synapse, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("SYNAPSE")).
		And(expression.Name("Weight").LessThanEqual(expression.Value(threshold)))

	return r.scanSynapses(ctx, filter)
}

// FindDreamCandidates scans recently fired synapses at or above minWeight
func (r *SynapseRepository) FindDreamCandidates(ctx context.Context, firedAfter time.Time, minWeight float64) ([]*entities.Synapse, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("SYNAPSE")).
		And(expression.Name("Weight").GreaterThanEqual(expression.Value(minWeight))).
		And(expression.Name("LastFired").GreaterThan(expression.Value(firedAfter.Format(time.RFC3339Nano))))

	return r.scanSynapses(ctx, filter)
}

// Strongest returns a user's synapses at or above minWeight, weight descending
func (r *SynapseRepository) Strongest(ctx context.Context, userID string, minWeight float64, limit int) ([]*entities.Synapse, error) {
	filter := expression.Name("Weight").GreaterThanEqual(expression.Value(minWeight))

	synapses, err := r.queryUserSynapses(ctx, userID, &filter)
	if err != nil {
		return nil, err
	}

	sortSynapsesByWeightDesc(synapses)
	if limit > 0 && len(synapses) > limit {
		synapses = synapses[:limit]
	}
	return synapses, nil
}

func (r *SynapseRepository) queryUserSynapses(ctx context.Context, userID string, filter *expression.ConditionBuilder) ([]*entities.Synapse, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("SYNAPSE#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build synapse query: %w", err)
	}

	synapses := []*entities.Synapse{}
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
			return nil, fmt.Errorf("failed to query synapses: %w", err)
		}

		for _, raw := range result.Items {
			var item synapseItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed synapse item", zap.Error(err))
				continue
			}
			synapse, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreconstructable synapse item", zap.Error(err))
				continue
			}
			synapses = append(synapses, synapse)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return synapses, nil
}

func (r *SynapseRepository) scanSynapses(ctx context.Context, filter expression.ConditionBuilder) ([]*entities.Synapse, error) {
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build synapse scan: %w", err)
	}

	synapses := []*entities.Synapse{}
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
			return nil, fmt.Errorf("failed to scan synapses: %w", err)
		}

		for _, raw := range result.Items {
			var item synapseItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed synapse item", zap.Error(err))
				continue
			}
			synapse, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreconstructable synapse item", zap.Error(err))
				continue
			}
			synapses = append(synapses, synapse)
		}

		if result.LastEvaluatedKey == nil {
			return synapses, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func sortSynapsesByWeightDesc(synapses []*entities.Synapse) {
	sort.SliceStable(synapses, func(i, j int) bool {
		return synapses[i].Weight().Value() > synapses[j].Weight().Value()
	})
}
