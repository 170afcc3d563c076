package ports

import (
	"context"
	"time"

	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	"neurovault/domain/events"
)

// EntryRepository defines the interface for vault entry persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type EntryRepository interface {
	// Save persists an entry (create or update)
	Save(ctx context.Context, entry *entities.VaultEntry) error

	// GetByID retrieves an entry by its ID
	GetByID(ctx context.Context, id valueobjects.EntryID) (*entities.VaultEntry, error)

	// GetByIDs retrieves multiple entries; missing IDs are silently skipped
	GetByIDs(ctx context.Context, ids []valueobjects.EntryID) ([]*entities.VaultEntry, error)

	// GetByUserID retrieves all entries for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.VaultEntry, error)

	// Delete removes an entry
	Delete(ctx context.Context, id valueobjects.EntryID) error

	// DeleteBatch removes multiple entries in a batch operation
	DeleteBatch(ctx context.Context, ids []valueobjects.EntryID) error

	// BulkSave saves multiple entries as unordered writes with no
	// cross-document transaction; callers must keep each write idempotent
	BulkSave(ctx context.Context, entries []*entities.VaultEntry) error

	// ListUserIDs returns the distinct owners of stored entries
	ListUserIDs(ctx context.Context) ([]string, error)

	// FindDecayCandidates returns non-consolidated entries with positive
	// strength that have seen no activity since the cutoff
	FindDecayCandidates(ctx context.Context, inactiveSince time.Time) ([]*entities.VaultEntry, error)

	// FindDepleted returns non-consolidated entries whose strength reached zero
	FindDepleted(ctx context.Context) ([]*entities.VaultEntry, error)

	// FindDeltaSet returns a user's discovery candidates: non-consolidated
	// entries that are unanalyzed or active since the cutoff, capped at limit
	FindDeltaSet(ctx context.Context, userID string, activeSince time.Time, limit int) ([]*entities.VaultEntry, error)

	// FindContextSet returns a user's analyzed entries at or above
	// minStrength, excluding the given IDs, capped at limit
	FindContextSet(ctx context.Context, userID string, minStrength int, exclude []valueobjects.EntryID, limit int) ([]*entities.VaultEntry, error)

	// FindConsolidationCandidates returns a user's non-consolidated entries
	// at or above the strength threshold
	FindConsolidationCandidates(ctx context.Context, userID string, threshold int) ([]*entities.VaultEntry, error)
}

// SynapseRepository defines the interface for synapse persistence.
// Implementations key records by the canonically ordered (from, to) pair,
// so the pair is unique per user regardless of lookup order.
type SynapseRepository interface {
	// Save persists a synapse (create or update)
	Save(ctx context.Context, synapse *entities.Synapse) error

	// GetByID retrieves a synapse by its ID
	GetByID(ctx context.Context, id string) (*entities.Synapse, error)

	// FindByPair retrieves the synapse for an unordered entry pair, or a
	// not-found error when no link exists
	FindByPair(ctx context.Context, userID string, a, b valueobjects.EntryID) (*entities.Synapse, error)

	// GetByEntryID retrieves synapses touching an entry, weight descending
	GetByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID, limit int) ([]*entities.Synapse, error)

	// GetByUserID retrieves all synapses for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.Synapse, error)

	// Delete removes a synapse
	Delete(ctx context.Context, id string) error

	// DeleteBatch removes multiple synapses in a batch operation
	DeleteBatch(ctx context.Context, ids []string) error

	// DeleteByEntryID removes all synapses touching an entry
	DeleteByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID) error

	// BulkSave saves multiple synapses as unordered non-transactional writes
	BulkSave(ctx context.Context, synapses []*entities.Synapse) error

	// FindDecayCandidates returns synapses with positive weight that have
	// not fired since the cutoff
	FindDecayCandidates(ctx context.Context, firedBefore time.Time) ([]*entities.Synapse, error)

	// FindPrunable returns synapses at or below the weight threshold
	FindPrunable(ctx context.Context, threshold float64) ([]*entities.Synapse, error)

	// FindDreamCandidates returns synapses fired since the cutoff with
	// weight at or above minWeight
	FindDreamCandidates(ctx context.Context, firedAfter time.Time, minWeight float64) ([]*entities.Synapse, error)

	// Strongest returns a user's synapses at or above minWeight, weight
	// descending, capped at limit
	Strongest(ctx context.Context, userID string, minWeight float64, limit int) ([]*entities.Synapse, error)
}

// LongTermMemoryRepository defines the interface for long-term memory persistence
type LongTermMemoryRepository interface {
	// Save persists a long-term memory (create or update)
	Save(ctx context.Context, memory *entities.LongTermMemory) error

	// GetByID retrieves a record by its ID
	GetByID(ctx context.Context, id string) (*entities.LongTermMemory, error)

	// FindByUserAndTopic retrieves the record for (userID, topic), or a
	// not-found error; the pair is unique per user
	FindByUserAndTopic(ctx context.Context, userID, topic string) (*entities.LongTermMemory, error)

	// GetByUserID retrieves all records for a user
	GetByUserID(ctx context.Context, userID string) ([]*entities.LongTermMemory, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category reference data
type CategoryRepository interface {
	// Save persists a category definition
	Save(ctx context.Context, category *entities.Category) error

	// GetByName retrieves a category by name, or a not-found error
	GetByName(ctx context.Context, name string) (*entities.Category, error)

	// ListActive retrieves active categories in display order
	ListActive(ctx context.Context) ([]*entities.Category, error)
}

// CycleReport is the persisted record of one maintenance cycle
type CycleReport struct {
	CycleID          string        `json:"cycle_id"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
	Duration         time.Duration `json:"duration"`
	EntriesDecayed   int           `json:"entries_decayed"`
	EntriesPruned    int           `json:"entries_pruned"`
	SynapsesDecayed  int           `json:"synapses_decayed"`
	SynapsesPruned   int           `json:"synapses_pruned"`
	SynapsesCreated  int           `json:"synapses_created"`
	TopicsApplied    int           `json:"topics_applied"`
	EntriesPromoted  int           `json:"entries_promoted"`
	DiscoverySkipped bool          `json:"discovery_skipped"`
	Error            string        `json:"error,omitempty"`
}

// CycleReportStore defines the interface for maintenance cycle history
type CycleReportStore interface {
	// SaveReport persists a completed cycle's report
	SaveReport(ctx context.Context, report *CycleReport) error

	// GetReport retrieves a report by cycle ID
	GetReport(ctx context.Context, cycleID string) (*CycleReport, error)

	// ListReports retrieves the most recent reports, newest first
	ListReports(ctx context.Context, limit int) ([]*CycleReport, error)
}

// MaintenanceLock defines the lease acquired around a maintenance cycle so
// concurrent schedulers never run two cycles at once
type MaintenanceLock interface {
	// Acquire obtains the lease, returning a release function on success
	// and ErrLockNotAcquired when another holder is active
	Acquire(ctx context.Context, lockID string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
