package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	memstore "neurovault/infrastructure/persistence/memory"
)

type fixture struct {
	entries    *memstore.EntryRepository
	synapses   *memstore.SynapseRepository
	memories   *memstore.MemoryRepository
	categories *memstore.CategoryRepository
	reports    *memstore.ReportStore
	lock       *memstore.MaintenanceLock
	publisher  *memstore.EventCollector
	cfg        *config.DomainConfig
	logger     *zap.Logger
}

func newFixture() *fixture {
	return &fixture{
		entries:    memstore.NewEntryRepository(),
		synapses:   memstore.NewSynapseRepository(),
		memories:   memstore.NewMemoryRepository(),
		categories: memstore.NewCategoryRepository(),
		reports:    memstore.NewReportStore(),
		lock:       memstore.NewMaintenanceLock(),
		publisher:  memstore.NewEventCollector(),
		cfg:        config.DefaultDomainConfig(),
		logger:     zap.NewNop(),
	}
}

func (f *fixture) reinforcement() *ReinforcementService {
	return NewReinforcementService(f.entries, f.synapses, f.publisher, f.cfg, f.logger)
}

func (f *fixture) decay() *DecayService {
	return NewDecayService(f.entries, f.synapses, f.publisher, f.cfg, f.logger)
}

func (f *fixture) consolidation(summarizer ports.Summarizer) *ConsolidationService {
	return NewConsolidationService(f.entries, f.memories, f.categories, summarizer, f.publisher, f.cfg, f.logger)
}

func (f *fixture) discovery(classifier ports.Classifier, summarizer ports.Summarizer) *DiscoveryService {
	return NewDiscoveryService(f.entries, f.categories, classifier, f.reinforcement(), f.consolidation(summarizer), f.cfg, f.logger)
}

// seedEntry stores a fresh entry with default strength and current activity
func seedEntry(t *testing.T, f *fixture, userID, text string) *entities.VaultEntry {
	t.Helper()
	entry, err := entities.NewVaultEntry(userID, text, "", nil, "", f.cfg)
	require.NoError(t, err)
	entry.MarkEventsAsCommitted()
	require.NoError(t, f.entries.Save(context.Background(), entry))
	return entry
}

// seedAgedEntry stores an entry with explicit strength, analysis state and
// activity timestamp, bypassing the constructor defaults
func seedAgedEntry(t *testing.T, f *fixture, userID, text, category string, tags []string, strength int, analyzed bool, lastActivity time.Time) *entities.VaultEntry {
	t.Helper()
	entry, err := entities.ReconstructVaultEntry(
		valueobjects.NewEntryID(),
		userID, text, "", tags, category,
		valueobjects.NewStrength(strength),
		analyzed, false,
		lastActivity, lastActivity, lastActivity,
	)
	require.NoError(t, err)
	require.NoError(t, f.entries.Save(context.Background(), entry))
	return entry
}

// seedSynapse stores a synapse with explicit weight, stability and firing time
func seedSynapse(t *testing.T, f *fixture, userID string, a, b valueobjects.EntryID, weight, stability float64, lastFired time.Time) *entities.Synapse {
	t.Helper()
	synapse, err := entities.ReconstructSynapse(
		valueobjects.NewEntryID().String(),
		userID, a, b,
		valueobjects.NewWeight(weight),
		valueobjects.NewStability(stability),
		"", lastFired, lastFired, lastFired,
	)
	require.NoError(t, err)
	require.NoError(t, f.synapses.Save(context.Background(), synapse))
	return synapse
}

func seedCategory(t *testing.T, f *fixture, id, name string, order int) *entities.Category {
	t.Helper()
	category, err := entities.NewCategory(id, name, "", nil, order)
	require.NoError(t, err)
	require.NoError(t, f.categories.Save(context.Background(), category))
	return category
}

// classificationFor builds a minimal valid classifier response: one
// "projects" topic covering the given delta IDs, plus a synapse between the
// first two when at least two are given
func classificationFor(deltaIDs ...string) *ports.ClassificationResult {
	result := &ports.ClassificationResult{
		Topics: []ports.TopicProposal{{
			Topic:      "garden redesign",
			Category:   "projects",
			EntryIDs:   deltaIDs,
			Tags:       []string{"garden"},
			Importance: 2,
		}},
	}
	if len(deltaIDs) >= 2 {
		result.Synapses = append(result.Synapses, synapseProposal(deltaIDs[0], deltaIDs[1]))
	}
	return result
}

func synapseProposal(source, target string) ports.SynapseProposal {
	return ports.SynapseProposal{
		SourceID: source,
		TargetID: target,
		Reason:   "shared project",
		Strength: 0.5,
	}
}

// fakeClassifier returns a canned result or error and records what it saw
type fakeClassifier struct {
	result  *ports.ClassificationResult
	err     error
	calls   int
	lastReq ports.ClassificationRequest
}

func (c *fakeClassifier) Classify(ctx context.Context, req ports.ClassificationRequest) (*ports.ClassificationResult, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	if c.result == nil {
		return &ports.ClassificationResult{}, nil
	}
	return c.result, nil
}

// fakeSummarizer returns a canned summary or error
type fakeSummarizer struct {
	summary string
	tags    []string
	err     error
	calls   int
}

func (s *fakeSummarizer) Summarize(ctx context.Context, req ports.SummaryRequest) (*ports.SummaryResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	summary := s.summary
	if summary == "" {
		summary = "distilled summary"
	}
	return &ports.SummaryResult{Summary: summary, Tags: s.tags}, nil
}
