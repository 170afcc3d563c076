package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CycleMetrics holds the measurements of one maintenance cycle
type CycleMetrics struct {
	EntriesDecayed   int
	EntriesPruned    int
	SynapsesDecayed  int
	SynapsesPruned   int
	SynapsesCreated  int
	EntriesPromoted  int
	DiscoverySkipped bool
	Duration         time.Duration
}

// Metrics publishes maintenance cycle measurements to CloudWatch.
// Publishing is best-effort; failures are logged, never propagated.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a metrics publisher
func NewMetrics(client *cloudwatch.Client, namespace string, logger *zap.Logger) *Metrics {
	if namespace == "" {
		namespace = "NeuroVault/Maintenance"
	}
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordCycle publishes one cycle's counters as CloudWatch metric data
func (m *Metrics) RecordCycle(ctx context.Context, cycle CycleMetrics) {
	if m == nil || m.client == nil {
		return
	}

	now := time.Now()
	skipped := 0.0
	if cycle.DiscoverySkipped {
		skipped = 1.0
	}

	data := []types.MetricDatum{
		m.count("EntriesDecayed", float64(cycle.EntriesDecayed), now),
		m.count("EntriesPruned", float64(cycle.EntriesPruned), now),
		m.count("SynapsesDecayed", float64(cycle.SynapsesDecayed), now),
		m.count("SynapsesPruned", float64(cycle.SynapsesPruned), now),
		m.count("SynapsesCreated", float64(cycle.SynapsesCreated), now),
		m.count("EntriesPromoted", float64(cycle.EntriesPromoted), now),
		m.count("DiscoverySkipped", skipped, now),
		{
			MetricName: aws.String("CycleDuration"),
			Timestamp:  aws.Time(now),
			Unit:       types.StandardUnitMilliseconds,
			Value:      aws.Float64(float64(cycle.Duration.Milliseconds())),
		},
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to publish cycle metrics", zap.Error(err))
	}
}

func (m *Metrics) count(name string, value float64, at time.Time) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(at),
		Unit:       types.StandardUnitCount,
		Value:      aws.Float64(value),
	}
}
