package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// ConsolidationService promotes high-strength entry clusters into permanent
// long-term memory records. This is the only place entries exit the decay
// lifecycle.
type ConsolidationService struct {
	entryRepo    ports.EntryRepository
	memoryRepo   ports.LongTermMemoryRepository
	categoryRepo ports.CategoryRepository
	summarizer   ports.Summarizer
	publisher    ports.EventPublisher
	cfg          *config.DomainConfig
	logger       *zap.Logger
}

// NewConsolidationService creates a new consolidation service
func NewConsolidationService(
	entryRepo ports.EntryRepository,
	memoryRepo ports.LongTermMemoryRepository,
	categoryRepo ports.CategoryRepository,
	summarizer ports.Summarizer,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ConsolidationService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConsolidationService{
		entryRepo:    entryRepo,
		memoryRepo:   memoryRepo,
		categoryRepo: categoryRepo,
		summarizer:   summarizer,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
	}
}

// ConsolidateUser promotes every qualifying cluster for one user and returns
// how many entries were marked consolidated. A summarizer failure aborts only
// that cluster; the rest proceed.
func (s *ConsolidationService) ConsolidateUser(ctx context.Context, userID string) (int, error) {
	candidates, err := s.entryRepo.FindConsolidationCandidates(ctx, userID, s.cfg.ConsolidationThreshold)
	if err != nil {
		return 0, fmt.Errorf("failed to find consolidation candidates: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	promoted := 0
	for _, cluster := range clusterByCategory(candidates) {
		n, err := s.consolidateCluster(ctx, userID, cluster)
		if err != nil {
			s.logger.Warn("Cluster consolidation failed",
				zap.Error(err),
				zap.String("userID", userID),
				zap.String("category", cluster.category),
			)
			continue
		}
		promoted += n
	}

	return promoted, nil
}

type entryCluster struct {
	category string
	topic    string
	entries  []*entities.VaultEntry
}

// clusterByCategory groups candidates by their assigned category and names
// each cluster's topic from its most shared tags
func clusterByCategory(candidates []*entities.VaultEntry) []entryCluster {
	byCategory := make(map[string][]*entities.VaultEntry)
	order := []string{}
	for _, entry := range candidates {
		category := entry.Category()
		if category == "" {
			category = "general"
		}
		if _, ok := byCategory[category]; !ok {
			order = append(order, category)
		}
		byCategory[category] = append(byCategory[category], entry)
	}

	clusters := make([]entryCluster, 0, len(order))
	for _, category := range order {
		entries := byCategory[category]
		clusters = append(clusters, entryCluster{
			category: category,
			topic:    deriveTopic(category, entries),
			entries:  entries,
		})
	}
	return clusters
}

// deriveTopic names a cluster's topic from its three most frequent tags,
// falling back to the category name when the cluster is untagged
func deriveTopic(category string, entries []*entities.VaultEntry) string {
	counts := make(map[string]int)
	order := []string{}
	for _, entry := range entries {
		for _, tag := range entry.Tags() {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	if len(order) == 0 {
		return strings.ToLower(category)
	}

	// Frequency descending, first-seen order as the tiebreak
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}
	return strings.ToLower(strings.Join(order, ", "))
}

func (s *ConsolidationService) consolidateCluster(ctx context.Context, userID string, cluster entryCluster) (int, error) {
	categoryID, categoryName := s.resolveCategory(ctx, cluster.category)

	sourceIDs := make([]valueobjects.EntryID, 0, len(cluster.entries))
	for _, entry := range cluster.entries {
		sourceIDs = append(sourceIDs, entry.ID())
	}

	existing, err := s.memoryRepo.FindByUserAndTopic(ctx, userID, cluster.topic)
	switch {
	case err == nil:
		if err := s.mergeIntoExisting(ctx, existing, cluster, sourceIDs); err != nil {
			return 0, err
		}
	case errors.Is(err, pkgerrors.ErrMemoryNotFound) || pkgerrors.IsNotFound(err):
		if err := s.createMemory(ctx, userID, cluster, categoryID, categoryName, sourceIDs); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("failed to look up long-term memory: %w", err)
	}

	// Marking sources is last so a crash before this point re-runs the
	// cluster next cycle and the merge path absorbs the duplicates
	for _, entry := range cluster.entries {
		entry.Consolidate(cluster.topic)
	}
	if err := s.entryRepo.BulkSave(ctx, cluster.entries); err != nil {
		return 0, fmt.Errorf("failed to mark entries consolidated: %w", err)
	}
	s.publishEntryEvents(ctx, cluster.entries)

	s.logger.Info("Cluster consolidated",
		zap.String("userID", userID),
		zap.String("topic", cluster.topic),
		zap.Int("entries", len(cluster.entries)),
	)

	return len(cluster.entries), nil
}

// mergeIntoExisting extends an existing record with the new sources and
// regenerates its summary over the union of source texts
func (s *ConsolidationService) mergeIntoExisting(ctx context.Context, memory *entities.LongTermMemory, cluster entryCluster, sourceIDs []valueobjects.EntryID) error {
	memory.MergeSources(sourceIDs)

	texts, err := s.collectSourceTexts(ctx, memory.SourceEntryIDs())
	if err != nil {
		return err
	}

	result, err := s.summarizer.Summarize(ctx, ports.SummaryRequest{
		Topic:      memory.Topic(),
		Category:   memory.CategoryName(),
		EntryTexts: texts,
	})
	if err != nil {
		return fmt.Errorf("summarizer failed: %w", err)
	}
	memory.ReplaceSummary(result.Summary, result.Tags)

	if err := s.memoryRepo.Save(ctx, memory); err != nil {
		return fmt.Errorf("failed to save merged memory: %w", err)
	}
	return nil
}

func (s *ConsolidationService) createMemory(ctx context.Context, userID string, cluster entryCluster, categoryID, categoryName string, sourceIDs []valueobjects.EntryID) error {
	texts := make([]string, 0, len(cluster.entries))
	for _, entry := range cluster.entries {
		texts = append(texts, entryText(entry))
	}
	if len(texts) > s.cfg.MaxSummarySources {
		texts = texts[:s.cfg.MaxSummarySources]
	}

	result, err := s.summarizer.Summarize(ctx, ports.SummaryRequest{
		Topic:      cluster.topic,
		Category:   categoryName,
		EntryTexts: texts,
	})
	if err != nil {
		return fmt.Errorf("summarizer failed: %w", err)
	}

	memory, err := entities.NewLongTermMemory(userID, cluster.topic, categoryID, categoryName,
		result.Summary, result.Tags, sourceIDs, s.cfg)
	if err != nil {
		return err
	}

	if err := s.memoryRepo.Save(ctx, memory); err != nil {
		return fmt.Errorf("failed to save new memory: %w", err)
	}
	return nil
}

// resolveCategory looks up the category document by name; a missing document
// keeps the name but leaves the ID empty
func (s *ConsolidationService) resolveCategory(ctx context.Context, name string) (string, string) {
	category, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		s.logger.Debug("Category not resolved", zap.String("name", name), zap.Error(err))
		return "", name
	}
	return category.ID(), category.Name()
}

func (s *ConsolidationService) collectSourceTexts(ctx context.Context, ids []valueobjects.EntryID) ([]string, error) {
	if len(ids) > s.cfg.MaxSummarySources {
		ids = ids[len(ids)-s.cfg.MaxSummarySources:]
	}
	entries, err := s.entryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load source entries: %w", err)
	}

	texts := make([]string, 0, len(entries))
	for _, entry := range entries {
		texts = append(texts, entryText(entry))
	}
	return texts, nil
}

func (s *ConsolidationService) publishEntryEvents(ctx context.Context, entries []*entities.VaultEntry) {
	if s.publisher == nil {
		for _, entry := range entries {
			entry.MarkEventsAsCommitted()
		}
		return
	}
	for _, entry := range entries {
		evts := entry.GetUncommittedEvents()
		if len(evts) > 0 {
			if err := s.publisher.PublishBatch(ctx, evts); err != nil {
				s.logger.Warn("Failed to publish consolidation events", zap.Error(err))
			}
		}
		entry.MarkEventsAsCommitted()
	}
}

func entryText(entry *entities.VaultEntry) string {
	if entry.Summary() != "" {
		return entry.Summary()
	}
	return entry.RawText()
}
