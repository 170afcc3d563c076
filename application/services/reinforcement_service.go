package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// ReinforcementService is the fire/weaken API over the synapse store. It is
// the only writer of synapse weight and stability outside of the decay pass.
type ReinforcementService struct {
	entryRepo   ports.EntryRepository
	synapseRepo ports.SynapseRepository
	publisher   ports.EventPublisher
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewReinforcementService creates a new reinforcement service
func NewReinforcementService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ReinforcementService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ReinforcementService{
		entryRepo:   entryRepo,
		synapseRepo: synapseRepo,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
	}
}

// SynapseView is the read model returned by reinforcement operations
type SynapseView struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Weight    float64   `json:"weight"`
	Stability float64   `json:"stability"`
	Reason    string    `json:"reason,omitempty"`
	LastFired time.Time `json:"last_fired"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// NeighborView annotates a connected entry with its edge metadata
type NeighborView struct {
	EntryID   string    `json:"entry_id"`
	Summary   string    `json:"summary"`
	Category  string    `json:"category,omitempty"`
	Direction string    `json:"direction"`
	Weight    float64   `json:"weight"`
	Stability float64   `json:"stability"`
	Reason    string    `json:"reason,omitempty"`
	LastFired time.Time `json:"last_fired"`
}

// SynapseStats is the aggregate view over a user's sub-graph
type SynapseStats struct {
	Total         int     `json:"total"`
	Strong        int     `json:"strong"`
	Weak          int     `json:"weak"`
	AvgWeight     float64 `json:"avg_weight"`
	AvgStability  float64 `json:"avg_stability"`
	FiredLastWeek int     `json:"fired_last_week"`
}

// Fire reinforces the link between two entries, creating it with seed values
// on first contact. Firing is commutative: argument order never matters.
func (s *ReinforcementService) Fire(ctx context.Context, userID, a, b string, reason string) (*SynapseView, error) {
	aID, bID, err := parseEntryPair(a, b)
	if err != nil {
		return nil, err
	}

	// A fire referencing a since-deleted entry is a no-op, not a failure
	existing, err := s.entryRepo.GetByIDs(ctx, []valueobjects.EntryID{aID, bID})
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if len(existing) < 2 {
		s.logger.Warn("Fire skipped: entry no longer exists",
			zap.String("userID", userID),
			zap.String("a", a),
			zap.String("b", b),
		)
		return nil, pkgerrors.ErrEntryNotFound
	}
	for _, entry := range existing {
		if entry.UserID() != userID {
			return nil, pkgerrors.ErrUserNotAuthorized
		}
	}

	synapse, err := s.fireOne(ctx, userID, aID, bID, reason)
	if err != nil {
		return nil, err
	}

	// Reinforcement counts as activity on both endpoints
	for _, entry := range existing {
		entry.Touch()
	}
	if err := s.entryRepo.BulkSave(ctx, existing); err != nil {
		s.logger.Warn("Failed to refresh entry activity", zap.Error(err))
	}

	return s.toView(synapse), nil
}

// FireAll reinforces every unordered pair within the given set, used when a
// batch of entries co-occurs. Pairs touching missing entries are skipped.
func (s *ReinforcementService) FireAll(ctx context.Context, userID string, ids []string) (int, error) {
	parsed := make([]valueobjects.EntryID, 0, len(ids))
	for _, raw := range ids {
		id, err := valueobjects.NewEntryIDFromString(raw)
		if err != nil {
			return 0, pkgerrors.NewValidationError(fmt.Sprintf("invalid entry ID %q", raw))
		}
		parsed = append(parsed, id)
	}

	entries, err := s.entryRepo.GetByIDs(ctx, parsed)
	if err != nil {
		return 0, fmt.Errorf("failed to load entries: %w", err)
	}
	live := make([]valueobjects.EntryID, 0, len(entries))
	for _, entry := range entries {
		if entry.UserID() != userID {
			return 0, pkgerrors.ErrUserNotAuthorized
		}
		live = append(live, entry.ID())
	}
	if len(live) < 2 {
		return 0, nil
	}

	fired := 0
	for i := 0; i < len(live); i++ {
		for j := i + 1; j < len(live); j++ {
			if _, err := s.fireOne(ctx, userID, live[i], live[j], ""); err != nil {
				s.logger.Warn("FireAll pair failed",
					zap.Error(err),
					zap.String("a", live[i].String()),
					zap.String("b", live[j].String()),
				)
				continue
			}
			fired++
		}
	}

	for _, entry := range entries {
		entry.Touch()
	}
	if err := s.entryRepo.BulkSave(ctx, entries); err != nil {
		s.logger.Warn("Failed to refresh entry activity", zap.Error(err))
	}

	return fired, nil
}

// Weaken reduces the link between two entries. When the reduction depletes
// the synapse it is deleted and the returned view carries Deleted=true.
func (s *ReinforcementService) Weaken(ctx context.Context, userID, a, b string, amount float64) (*SynapseView, error) {
	aID, bID, err := parseEntryPair(a, b)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		amount = s.cfg.DefaultWeakenAmount
	}

	synapse, err := s.synapseRepo.FindByPair(ctx, userID, aID, bID)
	if err != nil {
		return nil, err
	}

	if deleted := synapse.Weaken(amount); deleted {
		if err := s.synapseRepo.Delete(ctx, synapse.ID()); err != nil {
			return nil, fmt.Errorf("failed to delete depleted synapse: %w", err)
		}
		s.logger.Info("Synapse weakened to deletion",
			zap.String("synapseID", synapse.ID()),
			zap.String("userID", userID),
		)
		view := s.toView(synapse)
		view.Deleted = true
		return view, nil
	}

	if err := s.synapseRepo.Save(ctx, synapse); err != nil {
		return nil, fmt.Errorf("failed to save weakened synapse: %w", err)
	}

	return s.toView(synapse), nil
}

// Context returns the entries connected to the given one, strongest first,
// annotated with edge direction and metadata.
func (s *ReinforcementService) Context(ctx context.Context, userID, entryID string, limit int) ([]NeighborView, error) {
	id, err := valueobjects.NewEntryIDFromString(entryID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid entry ID")
	}
	if limit <= 0 {
		limit = s.cfg.ContextLimit
	}

	synapses, err := s.synapseRepo.GetByEntryID(ctx, userID, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load synapses: %w", err)
	}

	neighborIDs := make([]valueobjects.EntryID, 0, len(synapses))
	for _, synapse := range synapses {
		if other, ok := synapse.Other(id); ok {
			neighborIDs = append(neighborIDs, other)
		}
	}
	neighbors, err := s.entryRepo.GetByIDs(ctx, neighborIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighbor entries: %w", err)
	}
	byID := make(map[string]*entities.VaultEntry, len(neighbors))
	for _, entry := range neighbors {
		byID[entry.ID().String()] = entry
	}

	views := make([]NeighborView, 0, len(synapses))
	for _, synapse := range synapses {
		other, ok := synapse.Other(id)
		if !ok {
			continue
		}
		entry, ok := byID[other.String()]
		if !ok {
			// Edge survived its endpoint; decay will prune it
			continue
		}

		direction := "outgoing"
		if synapse.To().Equals(id) {
			direction = "incoming"
		}

		views = append(views, NeighborView{
			EntryID:   entry.ID().String(),
			Summary:   entry.Summary(),
			Category:  entry.Category(),
			Direction: direction,
			Weight:    synapse.Weight().Value(),
			Stability: synapse.Stability().Value(),
			Reason:    synapse.Reason(),
			LastFired: synapse.LastFired(),
		})
	}

	return views, nil
}

// Stats aggregates a read-only view over a user's sub-graph
func (s *ReinforcementService) Stats(ctx context.Context, userID string) (*SynapseStats, error) {
	synapses, err := s.synapseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load synapses: %w", err)
	}

	stats := &SynapseStats{Total: len(synapses)}
	if len(synapses) == 0 {
		return stats, nil
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	var weightSum, stabilitySum float64
	for _, synapse := range synapses {
		w := synapse.Weight().Value()
		weightSum += w
		stabilitySum += synapse.Stability().Value()
		if w >= s.cfg.StrongWeight {
			stats.Strong++
		}
		if w < s.cfg.WeakWeight {
			stats.Weak++
		}
		if synapse.LastFired().After(weekAgo) {
			stats.FiredLastWeek++
		}
	}
	stats.AvgWeight = weightSum / float64(len(synapses))
	stats.AvgStability = stabilitySum / float64(len(synapses))

	return stats, nil
}

// Strongest returns a user's heaviest synapses above the configured floor
func (s *ReinforcementService) Strongest(ctx context.Context, userID string, limit int) ([]SynapseView, error) {
	if limit <= 0 {
		limit = 10
	}

	synapses, err := s.synapseRepo.Strongest(ctx, userID, s.cfg.StrongestMinWeight, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load strongest synapses: %w", err)
	}

	views := make([]SynapseView, 0, len(synapses))
	for _, synapse := range synapses {
		views = append(views, *s.toView(synapse))
	}
	return views, nil
}

// fireOne resolves the canonical pair and either reinforces the existing
// synapse or seeds a new one.
func (s *ReinforcementService) fireOne(ctx context.Context, userID string, a, b valueobjects.EntryID, reason string) (*entities.Synapse, error) {
	synapse, err := s.synapseRepo.FindByPair(ctx, userID, a, b)
	switch {
	case err == nil:
		synapse.Fire(s.cfg)
	case errors.Is(err, pkgerrors.ErrSynapseNotFound) || pkgerrors.IsNotFound(err):
		synapse, err = entities.NewSynapse(userID, a, b, reason, s.cfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to look up synapse: %w", err)
	}

	if err := s.synapseRepo.Save(ctx, synapse); err != nil {
		return nil, fmt.Errorf("failed to save synapse: %w", err)
	}

	s.publishEvents(ctx, synapse)
	return synapse, nil
}

func (s *ReinforcementService) publishEvents(ctx context.Context, synapse *entities.Synapse) {
	evts := synapse.GetUncommittedEvents()
	if len(evts) == 0 || s.publisher == nil {
		synapse.MarkEventsAsCommitted()
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish synapse events", zap.Error(err))
	}
	synapse.MarkEventsAsCommitted()
}

func (s *ReinforcementService) toView(synapse *entities.Synapse) *SynapseView {
	return &SynapseView{
		ID:        synapse.ID(),
		From:      synapse.From().String(),
		To:        synapse.To().String(),
		Weight:    synapse.Weight().Value(),
		Stability: synapse.Stability().Value(),
		Reason:    synapse.Reason(),
		LastFired: synapse.LastFired(),
	}
}

func parseEntryPair(a, b string) (valueobjects.EntryID, valueobjects.EntryID, error) {
	aID, err := valueobjects.NewEntryIDFromString(a)
	if err != nil {
		return valueobjects.EntryID{}, valueobjects.EntryID{}, pkgerrors.NewValidationError("invalid entry ID")
	}
	bID, err := valueobjects.NewEntryIDFromString(b)
	if err != nil {
		return valueobjects.EntryID{}, valueobjects.EntryID{}, pkgerrors.NewValidationError("invalid entry ID")
	}
	if aID.Equals(bID) {
		return valueobjects.EntryID{}, valueobjects.EntryID{}, pkgerrors.ErrSelfReferentialSynapse
	}
	return aID, bID, nil
}
