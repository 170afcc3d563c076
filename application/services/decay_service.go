package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
	"neurovault/domain/events"
)

// DecayService is the "subconscious" pass: it applies the forgetting curve
// and garbage-collects dead graph elements. Every step is independently
// idempotent, so a crash mid-pass is safe to resume on the next cycle.
type DecayService struct {
	entryRepo   ports.EntryRepository
	synapseRepo ports.SynapseRepository
	publisher   ports.EventPublisher
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewDecayService creates a new decay service
func NewDecayService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *DecayService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &DecayService{
		entryRepo:   entryRepo,
		synapseRepo: synapseRepo,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
	}
}

// DecayReport carries the counts of one decay pass
type DecayReport struct {
	SynapsesDecayed    int `json:"synapses_decayed"`
	SynapsesPruned     int `json:"synapses_pruned"`
	EntriesDecayed     int `json:"entries_decayed"`
	EntriesPruned      int `json:"entries_pruned"`
	SynapsesStabilized int `json:"synapses_stabilized"`
}

// Run executes one full decay pass. A store failure aborts the pass and
// returns the counts gathered so far; progress already committed stays valid.
func (s *DecayService) Run(ctx context.Context) (*DecayReport, error) {
	report := &DecayReport{}
	now := time.Now()

	if err := s.decaySynapses(ctx, now, report); err != nil {
		return report, fmt.Errorf("synapse decay failed: %w", err)
	}
	if err := s.pruneSynapses(ctx, report); err != nil {
		return report, fmt.Errorf("synapse pruning failed: %w", err)
	}
	if err := s.decayEntries(ctx, now, report); err != nil {
		return report, fmt.Errorf("entry decay failed: %w", err)
	}
	if err := s.pruneEntries(ctx, report); err != nil {
		return report, fmt.Errorf("entry pruning failed: %w", err)
	}
	if err := s.dream(ctx, now, report); err != nil {
		return report, fmt.Errorf("dreaming pass failed: %w", err)
	}

	s.logger.Info("Decay pass complete",
		zap.Int("synapsesDecayed", report.SynapsesDecayed),
		zap.Int("synapsesPruned", report.SynapsesPruned),
		zap.Int("entriesDecayed", report.EntriesDecayed),
		zap.Int("entriesPruned", report.EntriesPruned),
		zap.Int("synapsesStabilized", report.SynapsesStabilized),
	)

	return report, nil
}

// decaySynapses weakens every synapse that has not fired within the
// inactivity window. Stability damps the loss.
func (s *DecayService) decaySynapses(ctx context.Context, now time.Time, report *DecayReport) error {
	cutoff := now.Add(-s.cfg.SynapseInactivityWindow)
	candidates, err := s.synapseRepo.FindDecayCandidates(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, synapse := range candidates {
		synapse.Decay(s.cfg)
	}
	if err := s.synapseRepo.BulkSave(ctx, candidates); err != nil {
		return err
	}

	report.SynapsesDecayed = len(candidates)
	return nil
}

// pruneSynapses deletes every synapse at or below the prune threshold
func (s *DecayService) pruneSynapses(ctx context.Context, report *DecayReport) error {
	prunable, err := s.synapseRepo.FindPrunable(ctx, s.cfg.PruneThreshold)
	if err != nil {
		return err
	}
	if len(prunable) == 0 {
		return nil
	}

	ids := make([]string, 0, len(prunable))
	pruneEvents := make([]events.DomainEvent, 0, len(prunable))
	for _, synapse := range prunable {
		ids = append(ids, synapse.ID())
		pruneEvents = append(pruneEvents, events.NewSynapsePruned(
			synapse.ID(), synapse.From(), synapse.To(), synapse.UserID(), time.Now()))
	}
	if err := s.synapseRepo.DeleteBatch(ctx, ids); err != nil {
		return err
	}
	s.publish(ctx, pruneEvents)

	report.SynapsesPruned = len(prunable)
	return nil
}

// decayEntries decrements strength on every non-consolidated entry inactive
// beyond the cutoff
func (s *DecayService) decayEntries(ctx context.Context, now time.Time, report *DecayReport) error {
	cutoff := now.Add(-s.cfg.EntryInactivityCutoff)
	candidates, err := s.entryRepo.FindDecayCandidates(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	decayed := 0
	for _, entry := range candidates {
		if entry.Decay(s.cfg.EntryDecayStep) {
			decayed++
		}
	}
	if err := s.entryRepo.BulkSave(ctx, candidates); err != nil {
		return err
	}

	report.EntriesDecayed = decayed
	return nil
}

// pruneEntries deletes fully depleted non-consolidated entries together with
// the synapses touching them
func (s *DecayService) pruneEntries(ctx context.Context, report *DecayReport) error {
	depleted, err := s.entryRepo.FindDepleted(ctx)
	if err != nil {
		return err
	}
	if len(depleted) == 0 {
		return nil
	}

	ids := make([]valueobjects.EntryID, 0, len(depleted))
	for _, entry := range depleted {
		// Orphaned synapses would otherwise linger until edge decay reaps them
		if err := s.synapseRepo.DeleteByEntryID(ctx, entry.UserID(), entry.ID()); err != nil {
			s.logger.Warn("Failed to delete synapses of pruned entry",
				zap.Error(err),
				zap.String("entryID", entry.ID().String()),
			)
		}
		ids = append(ids, entry.ID())
	}

	if err := s.entryRepo.DeleteBatch(ctx, ids); err != nil {
		return err
	}

	report.EntriesPruned = len(depleted)
	return nil
}

func (s *DecayService) publish(ctx context.Context, evts []events.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish decay events", zap.Error(err))
	}
}

// dream is the consolidation-reinforcement sub-pass: recently fired, strong
// synapses gain stability so they resist future decay
func (s *DecayService) dream(ctx context.Context, now time.Time, report *DecayReport) error {
	cutoff := now.Add(-s.cfg.DreamWindow)
	candidates, err := s.synapseRepo.FindDreamCandidates(ctx, cutoff, s.cfg.DreamMinWeight)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	stabilized := 0
	for _, synapse := range candidates {
		if synapse.Stabilize(s.cfg, now) {
			stabilized++
		}
	}
	if err := s.synapseRepo.BulkSave(ctx, candidates); err != nil {
		return err
	}

	report.SynapsesStabilized = stabilized
	return nil
}
