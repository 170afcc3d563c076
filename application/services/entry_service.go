package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/domain/config"
	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// EntryService handles vault entry ingestion and retrieval. Reads count as
// activity: touching an entry resets its decay clock.
type EntryService struct {
	entryRepo   ports.EntryRepository
	synapseRepo ports.SynapseRepository
	publisher   ports.EventPublisher
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(
	entryRepo ports.EntryRepository,
	synapseRepo ports.SynapseRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *EntryService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &EntryService{
		entryRepo:   entryRepo,
		synapseRepo: synapseRepo,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger,
	}
}

// EntryView is the read model for vault entries
type EntryView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RawText        string    `json:"raw_text"`
	Summary        string    `json:"summary,omitempty"`
	Tags           []string  `json:"tags"`
	Category       string    `json:"category,omitempty"`
	Strength       int       `json:"strength"`
	IsAnalyzed     bool      `json:"is_analyzed"`
	IsConsolidated bool      `json:"is_consolidated"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ingest stores a new entry with the default mid-range strength. Discovery
// picks it up on the next cycle through the delta set.
func (s *EntryService) Ingest(ctx context.Context, userID, rawText, summary string, tags []string, category string) (*EntryView, error) {
	entry, err := entities.NewVaultEntry(userID, rawText, summary, tags, category, s.cfg)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.publishEvents(ctx, entry)

	s.logger.Info("Entry ingested",
		zap.String("entryID", entry.ID().String()),
		zap.String("userID", userID),
	)

	return toEntryView(entry), nil
}

// Get retrieves an entry and refreshes its activity clock
func (s *EntryService) Get(ctx context.Context, userID, entryID string) (*EntryView, error) {
	entry, err := s.load(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	entry.Touch()
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.logger.Warn("Failed to refresh entry activity", zap.Error(err))
	}

	return toEntryView(entry), nil
}

// List retrieves all of a user's entries
func (s *EntryService) List(ctx context.Context, userID string) ([]EntryView, error) {
	entries, err := s.entryRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, *toEntryView(entry))
	}
	return views, nil
}

// Delete removes an entry together with every synapse touching it
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	entry, err := s.load(ctx, userID, entryID)
	if err != nil {
		return err
	}

	if err := s.synapseRepo.DeleteByEntryID(ctx, userID, entry.ID()); err != nil {
		s.logger.Warn("Failed to delete entry synapses",
			zap.Error(err),
			zap.String("entryID", entryID),
		)
	}
	if err := s.entryRepo.Delete(ctx, entry.ID()); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	s.logger.Info("Entry deleted",
		zap.String("entryID", entryID),
		zap.String("userID", userID),
	)
	return nil
}

func (s *EntryService) load(ctx context.Context, userID, entryID string) (*entities.VaultEntry, error) {
	id, err := valueobjects.NewEntryIDFromString(entryID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid entry ID")
	}

	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID() != userID {
		return nil, pkgerrors.ErrUserNotAuthorized
	}
	return entry, nil
}

func (s *EntryService) publishEvents(ctx context.Context, entry *entities.VaultEntry) {
	evts := entry.GetUncommittedEvents()
	if len(evts) == 0 || s.publisher == nil {
		entry.MarkEventsAsCommitted()
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("Failed to publish entry events", zap.Error(err))
	}
	entry.MarkEventsAsCommitted()
}

func toEntryView(entry *entities.VaultEntry) *EntryView {
	return &EntryView{
		ID:             entry.ID().String(),
		UserID:         entry.UserID(),
		RawText:        entry.RawText(),
		Summary:        entry.Summary(),
		Tags:           entry.Tags(),
		Category:       entry.Category(),
		Strength:       entry.Strength().Value(),
		IsAnalyzed:     entry.IsAnalyzed(),
		IsConsolidated: entry.IsConsolidated(),
		LastActivityAt: entry.LastActivityAt(),
		CreatedAt:      entry.CreatedAt(),
	}
}
