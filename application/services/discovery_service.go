package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// DiscoveryService is the "conscious" pass: it selects a bounded working set
// of entries per user, asks the external classifier for topic and link
// proposals, and applies what validates. The classifier is untrusted; any
// response that fails validation is discarded wholesale for that user, so a
// cycle never applies a partially-trusted result.
type DiscoveryService struct {
	entryRepo     ports.EntryRepository
	categoryRepo  ports.CategoryRepository
	classifier    ports.Classifier
	reinforcement *ReinforcementService
	consolidation *ConsolidationService
	cfg           *config.DomainConfig
	logger        *zap.Logger
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	entryRepo ports.EntryRepository,
	categoryRepo ports.CategoryRepository,
	classifier ports.Classifier,
	reinforcement *ReinforcementService,
	consolidation *ConsolidationService,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *DiscoveryService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &DiscoveryService{
		entryRepo:     entryRepo,
		categoryRepo:  categoryRepo,
		classifier:    classifier,
		reinforcement: reinforcement,
		consolidation: consolidation,
		cfg:           cfg,
		logger:        logger,
	}
}

// DiscoveryReport carries the counts of one discovery pass
type DiscoveryReport struct {
	UsersProcessed  int `json:"users_processed"`
	UsersSkipped    int `json:"users_skipped"`
	TopicsApplied   int `json:"topics_applied"`
	SynapsesCreated int `json:"synapses_created"`
	EntriesPromoted int `json:"entries_promoted"`
}

// Run executes one discovery pass over every user with stored entries.
// A classifier failure skips that user's discovery; the pass continues.
func (s *DiscoveryService) Run(ctx context.Context) (*DiscoveryReport, error) {
	report := &DiscoveryReport{}

	userIDs, err := s.entryRepo.ListUserIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list users: %w", err)
	}
	if len(userIDs) == 0 {
		return report, nil
	}

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load categories: %w", err)
	}

	for _, userID := range userIDs {
		if err := s.runForUser(ctx, userID, categories, report); err != nil {
			report.UsersSkipped++
			s.logger.Warn("Discovery skipped for user",
				zap.Error(err),
				zap.String("userID", userID),
			)
			continue
		}
		report.UsersProcessed++
	}

	s.logger.Info("Discovery pass complete",
		zap.Int("usersProcessed", report.UsersProcessed),
		zap.Int("usersSkipped", report.UsersSkipped),
		zap.Int("topicsApplied", report.TopicsApplied),
		zap.Int("synapsesCreated", report.SynapsesCreated),
		zap.Int("entriesPromoted", report.EntriesPromoted),
	)

	return report, nil
}

func (s *DiscoveryService) runForUser(ctx context.Context, userID string, categories []*entities.Category, report *DiscoveryReport) error {
	delta, deltaIDs, err := s.buildDeltaSet(ctx, userID)
	if err != nil {
		return err
	}
	if len(delta) == 0 {
		// Nothing new to reason about; consolidation may still be due
		return s.consolidate(ctx, userID, report)
	}

	contextSet, err := s.entryRepo.FindContextSet(ctx, userID, s.cfg.ContextMinStrength, deltaIDs, s.cfg.ContextLimit)
	if err != nil {
		return err
	}

	result, err := s.classifier.Classify(ctx, buildClassificationRequest(categories, delta, contextSet))
	if err != nil {
		// Soft failure: unanalyzed entries stay eligible next cycle
		return fmt.Errorf("classifier unavailable: %w", err)
	}

	if err := s.checkProposalOrigins(result, delta); err != nil {
		return err
	}

	report.TopicsApplied += s.applyTopics(ctx, userID, result.Topics)
	report.SynapsesCreated += s.applySynapses(ctx, userID, result.Synapses)

	return s.consolidate(ctx, userID, report)
}

// buildDeltaSet selects the bounded batch of new or recently-touched entries
func (s *DiscoveryService) buildDeltaSet(ctx context.Context, userID string) ([]*entities.VaultEntry, []valueobjects.EntryID, error) {
	activeSince := time.Now().Add(-s.cfg.EntryInactivityCutoff)
	delta, err := s.entryRepo.FindDeltaSet(ctx, userID, activeSince, s.cfg.DeltaLimit)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]valueobjects.EntryID, 0, len(delta))
	for _, entry := range delta {
		ids = append(ids, entry.ID())
	}
	return delta, ids, nil
}

// checkProposalOrigins enforces the contract that every proposed link must
// originate from the delta set. One bad proposal discards the whole
// response; partially trusting a malformed classifier is worse than waiting
// a cycle.
func (s *DiscoveryService) checkProposalOrigins(result *ports.ClassificationResult, delta []*entities.VaultEntry) error {
	inDelta := make(map[string]bool, len(delta))
	for _, entry := range delta {
		inDelta[entry.ID().String()] = true
	}

	for _, proposal := range result.Synapses {
		if !inDelta[proposal.SourceID] {
			return pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"CLASSIFIER_RESPONSE_REJECTED",
				"proposed link does not originate from the delta set",
			).WithDetail("source_id", proposal.SourceID)
		}
	}
	return nil
}

// applyTopics bulk-updates each topic's entries: category, tag union,
// strength bump, analyzed flag. Missing entries are skipped; the write is
// idempotent per entry.
func (s *DiscoveryService) applyTopics(ctx context.Context, userID string, topics []ports.TopicProposal) int {
	applied := 0
	for _, topic := range topics {
		ids := make([]valueobjects.EntryID, 0, len(topic.EntryIDs))
		for _, raw := range topic.EntryIDs {
			id, err := valueobjects.NewEntryIDFromString(raw)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}

		entries, err := s.entryRepo.GetByIDs(ctx, ids)
		if err != nil {
			s.logger.Warn("Failed to load topic entries",
				zap.Error(err),
				zap.String("topic", topic.Topic),
			)
			continue
		}

		updated := make([]*entities.VaultEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.UserID() != userID || entry.IsConsolidated() {
				continue
			}
			entry.ApplyTopic(topic.Category, topic.Tags, topic.Importance)
			updated = append(updated, entry)
		}
		if len(updated) == 0 {
			continue
		}

		if err := s.entryRepo.BulkSave(ctx, updated); err != nil {
			s.logger.Warn("Failed to save topic updates",
				zap.Error(err),
				zap.String("topic", topic.Topic),
			)
			continue
		}
		applied++
	}
	return applied
}

// applySynapses fires the proposed links, keeping only the strongest few per
// source entry each cycle to bound graph growth
func (s *DiscoveryService) applySynapses(ctx context.Context, userID string, proposals []ports.SynapseProposal) int {
	bySource := make(map[string][]ports.SynapseProposal)
	sourceOrder := make([]string, 0, len(proposals))
	for _, proposal := range proposals {
		if proposal.SourceID == proposal.TargetID {
			continue
		}
		if _, seen := bySource[proposal.SourceID]; !seen {
			sourceOrder = append(sourceOrder, proposal.SourceID)
		}
		bySource[proposal.SourceID] = append(bySource[proposal.SourceID], proposal)
	}

	created := 0
	for _, sourceID := range sourceOrder {
		group := bySource[sourceID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Strength > group[j].Strength
		})

		applied := 0
		for _, proposal := range group {
			if applied >= s.cfg.MaxLinksPerSource {
				break
			}

			_, err := s.reinforcement.Fire(ctx, userID, proposal.SourceID, proposal.TargetID, proposal.Reason)
			if err != nil {
				if errors.Is(err, pkgerrors.ErrEntryNotFound) {
					// Target vanished since the classifier saw it
					continue
				}
				s.logger.Warn("Failed to apply proposed synapse",
					zap.Error(err),
					zap.String("source", proposal.SourceID),
					zap.String("target", proposal.TargetID),
				)
				continue
			}

			applied++
			created++
		}
	}
	return created
}

// consolidate hands every entry now at or above the threshold to the
// consolidation engine
func (s *DiscoveryService) consolidate(ctx context.Context, userID string, report *DiscoveryReport) error {
	promoted, err := s.consolidation.ConsolidateUser(ctx, userID)
	if err != nil {
		return err
	}
	report.EntriesPromoted += promoted
	return nil
}

func buildClassificationRequest(categories []*entities.Category, delta, contextSet []*entities.VaultEntry) ports.ClassificationRequest {
	req := ports.ClassificationRequest{
		Categories:     make([]ports.CategoryInput, 0, len(categories)),
		DeltaEntries:   make([]ports.EntryInput, 0, len(delta)),
		ContextEntries: make([]ports.EntryInput, 0, len(contextSet)),
	}
	for _, category := range categories {
		req.Categories = append(req.Categories, ports.CategoryInput{
			Name:        category.Name(),
			Description: category.Description(),
			Keywords:    category.Keywords(),
		})
	}
	for _, entry := range delta {
		req.DeltaEntries = append(req.DeltaEntries, entrySnapshot(entry))
	}
	for _, entry := range contextSet {
		req.ContextEntries = append(req.ContextEntries, entrySnapshot(entry))
	}
	return req
}

func entrySnapshot(entry *entities.VaultEntry) ports.EntryInput {
	text := entry.Summary()
	if text == "" {
		text = entry.RawText()
	}
	return ports.EntryInput{
		ID:       entry.ID().String(),
		Text:     text,
		Tags:     entry.Tags(),
		Category: entry.Category(),
		Strength: entry.Strength().Value(),
	}
}
