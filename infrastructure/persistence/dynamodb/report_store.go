package dynamodb

import (
	"context"
	"fmt"
	"time"

	"neurovault/application/ports"
	pkgerrors "neurovault/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ReportStore implements ports.CycleReportStore using DynamoDB. Reports
// share one partition with the start time in the sort key, so a descending
// query yields newest-first history.
type ReportStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewReportStore creates a new ReportStore
func NewReportStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.CycleReportStore {
	return &ReportStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// reportItem represents the DynamoDB item structure for a cycle report
type reportItem struct {
	PK               string `dynamodbav:"PK"`     // CYCLEREPORT
	SK               string `dynamodbav:"SK"`     // REPORT#<started_at>#<cycle_id>
	GSI1PK           string `dynamodbav:"GSI1PK"` // CYCLE#<cycle_id>, for lookup by ID
	GSI1SK           string `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType       string `dynamodbav:"EntityType"`
	CycleID          string `dynamodbav:"CycleID"`
	StartedAt        string `dynamodbav:"StartedAt"`
	FinishedAt       string `dynamodbav:"FinishedAt"`
	DurationMillis   int64  `dynamodbav:"DurationMillis"`
	EntriesDecayed   int    `dynamodbav:"EntriesDecayed"`
	EntriesPruned    int    `dynamodbav:"EntriesPruned"`
	SynapsesDecayed  int    `dynamodbav:"SynapsesDecayed"`
	SynapsesPruned   int    `dynamodbav:"SynapsesPruned"`
	SynapsesCreated  int    `dynamodbav:"SynapsesCreated"`
	TopicsApplied    int    `dynamodbav:"TopicsApplied"`
	EntriesPromoted  int    `dynamodbav:"EntriesPromoted"`
	DiscoverySkipped bool   `dynamodbav:"DiscoverySkipped"`
	Error            string `dynamodbav:"Error,omitempty"`
}

func toReportItem(report *ports.CycleReport) reportItem {
	started := report.StartedAt.UTC().Format(time.RFC3339Nano)
	return reportItem{
		PK:               "CYCLEREPORT",
		SK:               fmt.Sprintf("REPORT#%s#%s", started, report.CycleID),
		GSI1PK:           fmt.Sprintf("CYCLE#%s", report.CycleID),
		GSI1SK:           "METADATA",
		EntityType:       "CYCLEREPORT",
		CycleID:          report.CycleID,
		StartedAt:        started,
		FinishedAt:       report.FinishedAt.UTC().Format(time.RFC3339Nano),
		DurationMillis:   report.Duration.Milliseconds(),
		EntriesDecayed:   report.EntriesDecayed,
		EntriesPruned:    report.EntriesPruned,
		SynapsesDecayed:  report.SynapsesDecayed,
		SynapsesPruned:   report.SynapsesPruned,
		SynapsesCreated:  report.SynapsesCreated,
		TopicsApplied:    report.TopicsApplied,
		EntriesPromoted:  report.EntriesPromoted,
		DiscoverySkipped: report.DiscoverySkipped,
		Error:            report.Error,
	}
}

func (item reportItem) toReport() *ports.CycleReport {
	startedAt, _ := time.Parse(time.RFC3339Nano, item.StartedAt)
	finishedAt, _ := time.Parse(time.RFC3339Nano, item.FinishedAt)
	return &ports.CycleReport{
		CycleID:          item.CycleID,
		StartedAt:        startedAt,
		FinishedAt:       finishedAt,
		Duration:         time.Duration(item.DurationMillis) * time.Millisecond,
		EntriesDecayed:   item.EntriesDecayed,
		EntriesPruned:    item.EntriesPruned,
		SynapsesDecayed:  item.SynapsesDecayed,
		SynapsesPruned:   item.SynapsesPruned,
		SynapsesCreated:  item.SynapsesCreated,
		TopicsApplied:    item.TopicsApplied,
		EntriesPromoted:  item.EntriesPromoted,
		DiscoverySkipped: item.DiscoverySkipped,
		Error:            item.Error,
	}
}

// SaveReport persists a completed cycle's report
func (s *ReportStore) SaveReport(ctx context.Context, report *ports.CycleReport) error {
	av, err := attributevalue.MarshalMap(toReportItem(report))
	if err != nil {
		return fmt.Errorf("failed to marshal cycle report: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		s.logger.Error("Failed to save cycle report",
			zap.Error(err),
			zap.String("cycleID", report.CycleID),
		)
		return fmt.Errorf("failed to save cycle report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by cycle ID via GSI1
func (s *ReportStore) GetReport(ctx context.Context, cycleID string) (*ports.CycleReport, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CYCLE#%s", cycleID)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle report: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("cycle report " + cycleID)
	}

	var item reportItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cycle report: %w", err)
	}
	return item.toReport(), nil
}

// ListReports retrieves the most recent reports, newest first
func (s *ReportStore) ListReports(ctx context.Context, limit int) ([]*ports.CycleReport, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "CYCLEREPORT"},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle reports: %w", err)
	}

	reports := make([]*ports.CycleReport, 0, len(result.Items))
	for _, raw := range result.Items {
		var item reportItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			s.logger.Warn("Skipping malformed cycle report item", zap.Error(err))
			continue
		}
		reports = append(reports, item.toReport())
	}
	return reports, nil
}
