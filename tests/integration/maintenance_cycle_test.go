package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/application/services"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	memstore "neurovault/infrastructure/persistence/memory"
)

// stack wires the full application layer over in-memory stores, the same
// shape the DI container builds over DynamoDB.
type stack struct {
	entries    *memstore.EntryRepository
	synapses   *memstore.SynapseRepository
	memories   *memstore.MemoryRepository
	categories *memstore.CategoryRepository
	reports    *memstore.ReportStore
	publisher  *memstore.EventCollector

	entryService  *services.EntryService
	reinforcement *services.ReinforcementService
	maintenance   *services.MaintenanceService
}

func newStack(t *testing.T, classifier ports.Classifier, summarizer ports.Summarizer) *stack {
	t.Helper()

	s := &stack{
		entries:    memstore.NewEntryRepository(),
		synapses:   memstore.NewSynapseRepository(),
		memories:   memstore.NewMemoryRepository(),
		categories: memstore.NewCategoryRepository(),
		reports:    memstore.NewReportStore(),
		publisher:  memstore.NewEventCollector(),
	}

	cfg := config.DefaultDomainConfig()
	logger := zap.NewNop()

	s.entryService = services.NewEntryService(s.entries, s.synapses, s.publisher, cfg, logger)
	s.reinforcement = services.NewReinforcementService(s.entries, s.synapses, s.publisher, cfg, logger)

	decay := services.NewDecayService(s.entries, s.synapses, s.publisher, cfg, logger)
	consolidation := services.NewConsolidationService(s.entries, s.memories, s.categories, summarizer, s.publisher, cfg, logger)
	discovery := services.NewDiscoveryService(s.entries, s.categories, classifier, s.reinforcement, consolidation, cfg, logger)
	s.maintenance = services.NewMaintenanceService(decay, discovery, memstore.NewMaintenanceLock(), s.reports, s.publisher, nil, logger)

	category, err := entities.NewCategory("cat-projects", "projects", "Ongoing projects", nil, 1)
	require.NoError(t, err)
	require.NoError(t, s.categories.Save(context.Background(), category))

	return s
}

type scriptedClassifier struct {
	results []*ports.ClassificationResult
	calls   int
}

func (c *scriptedClassifier) Classify(ctx context.Context, req ports.ClassificationRequest) (*ports.ClassificationResult, error) {
	if c.calls < len(c.results) {
		result := c.results[c.calls]
		c.calls++
		return result, nil
	}
	c.calls++
	return &ports.ClassificationResult{}, nil
}

type fixedSummarizer struct {
	summary string
	calls   int
}

func (s *fixedSummarizer) Summarize(ctx context.Context, req ports.SummaryRequest) (*ports.SummaryResult, error) {
	s.calls++
	return &ports.SummaryResult{Summary: s.summary, Tags: []string{"distilled"}}, nil
}

// TestFullCycleLifecycle walks one user's entries through ingestion, recall
// reinforcement and a complete maintenance cycle.
func TestFullCycleLifecycle(t *testing.T) {
	ctx := context.Background()
	classifier := &scriptedClassifier{}
	summarizer := &fixedSummarizer{summary: "distilled project notes"}
	s := newStack(t, classifier, summarizer)

	first, err := s.entryService.Ingest(ctx, "user-1", "Sketched the new garden layout", "", nil, "")
	require.NoError(t, err)
	second, err := s.entryService.Ingest(ctx, "user-1", "Ordered soil and timber for the beds", "", nil, "")
	require.NoError(t, err)

	classifier.results = []*ports.ClassificationResult{{
		Topics: []ports.TopicProposal{{
			Topic:      "garden build",
			Category:   "projects",
			EntryIDs:   []string{first.ID, second.ID},
			Tags:       []string{"garden"},
			Importance: 2,
		}},
		Synapses: []ports.SynapseProposal{{
			SourceID: first.ID,
			TargetID: second.ID,
			Reason:   "same project",
			Strength: 0.3,
		}},
	}}

	report, err := s.maintenance.RunCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.TopicsApplied)
	assert.Equal(t, 1, report.SynapsesCreated)

	// Discovery applied the topic and created the proposed synapse.
	firstID, err := valueobjects.NewEntryIDFromString(first.ID)
	require.NoError(t, err)
	stored, err := s.entries.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.True(t, stored.IsAnalyzed())
	assert.Equal(t, "projects", stored.Category())
	assert.Contains(t, stored.Tags(), "garden")

	neighbors, err := s.reinforcement.Context(ctx, "user-1", first.ID, 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, second.ID, neighbors[0].EntryID)

	// The report is retrievable through the store.
	persisted, err := s.reports.GetReport(ctx, report.CycleID)
	require.NoError(t, err)
	assert.Equal(t, report.CycleID, persisted.CycleID)

	// Recall fires the pair repeatedly; the synapse climbs toward saturation.
	for range [5]int{} {
		_, err := s.reinforcement.Fire(ctx, "user-1", first.ID, second.ID, "recall")
		require.NoError(t, err)
	}
	strongest, err := s.reinforcement.Strongest(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, strongest, 1)
	assert.Greater(t, strongest[0].Weight, 0.9)
}

// TestCycleConsolidatesMatureCluster seeds a cluster at the promotion
// threshold and verifies one cycle moves it into long-term memory.
func TestCycleConsolidatesMatureCluster(t *testing.T) {
	ctx := context.Background()
	classifier := &scriptedClassifier{}
	summarizer := &fixedSummarizer{summary: "the team ships on fridays"}
	s := newStack(t, classifier, summarizer)

	old := time.Now().Add(-30 * 24 * time.Hour)
	for _, text := range []string{"Friday release went smoothly", "Another clean Friday deploy"} {
		entry, err := entities.ReconstructVaultEntry(
			valueobjects.NewEntryID(),
			"user-2", text, "", []string{"releases"}, "projects",
			valueobjects.NewStrength(10),
			true, false,
			time.Now(), old, time.Now(),
		)
		require.NoError(t, err)
		require.NoError(t, s.entries.Save(ctx, entry))
	}

	report, err := s.maintenance.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntriesPromoted)
	assert.Equal(t, 1, summarizer.calls)

	memories, err := s.memories.GetByUserID(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "the team ships on fridays", memories[0].Summary())
	assert.Len(t, memories[0].SourceEntryIDs(), 2)

	entries, err := s.entries.GetByUserID(ctx, "user-2")
	require.NoError(t, err)
	for _, entry := range entries {
		assert.True(t, entry.IsConsolidated())
	}
}
