package entities

import (
	"time"

	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// LongTermMemory is the permanent record a consolidated topic cluster
// distills into. Its strength is fixed at the maximum and never decays;
// updates only merge in new sources and refresh the summary.
type LongTermMemory struct {
	id           string
	userID       string
	topic        string
	categoryID   string
	categoryName string
	summary      string
	tags         []string
	sources      []valueobjects.EntryID
	strength     valueobjects.Strength
	createdAt    time.Time
	updatedAt    time.Time
}

// NewLongTermMemory creates a long-term record for a topic cluster
func NewLongTermMemory(userID, topic, categoryID, categoryName, summary string, tags []string, sources []valueobjects.EntryID, cfg *config.DomainConfig) (*LongTermMemory, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if topic == "" {
		return nil, pkgerrors.NewValidationError("topic cannot be empty")
	}
	if len(sources) == 0 {
		return nil, pkgerrors.NewValidationError("long-term memory requires at least one source entry")
	}

	now := time.Now()
	return &LongTermMemory{
		id:           valueobjects.NewEntryID().String(),
		userID:       userID,
		topic:        topic,
		categoryID:   categoryID,
		categoryName: categoryName,
		summary:      summary,
		tags:         dedupeTags(tags),
		sources:      dedupeSources(sources),
		strength:     valueobjects.NewStrength(cfg.LongTermStrength),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructLongTermMemory reconstructs a record from repository data
func ReconstructLongTermMemory(
	id, userID, topic, categoryID, categoryName, summary string,
	tags []string,
	sources []valueobjects.EntryID,
	strength valueobjects.Strength,
	createdAt, updatedAt time.Time,
) (*LongTermMemory, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("memory ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	return &LongTermMemory{
		id:           id,
		userID:       userID,
		topic:        topic,
		categoryID:   categoryID,
		categoryName: categoryName,
		summary:      summary,
		tags:         dedupeTags(tags),
		sources:      dedupeSources(sources),
		strength:     strength,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the record's unique identifier
func (m *LongTermMemory) ID() string { return m.id }

// UserID returns the owner's ID
func (m *LongTermMemory) UserID() string { return m.userID }

// Topic returns the distilled topic name
func (m *LongTermMemory) Topic() string { return m.topic }

// CategoryID returns the resolved category document ID
func (m *LongTermMemory) CategoryID() string { return m.categoryID }

// CategoryName returns the resolved category name
func (m *LongTermMemory) CategoryName() string { return m.categoryName }

// Summary returns the distilled summary text
func (m *LongTermMemory) Summary() string { return m.summary }

// Strength returns the fixed retention score
func (m *LongTermMemory) Strength() valueobjects.Strength { return m.strength }

// CreatedAt returns when the record was created
func (m *LongTermMemory) CreatedAt() time.Time { return m.createdAt }

// UpdatedAt returns when the record was last updated
func (m *LongTermMemory) UpdatedAt() time.Time { return m.updatedAt }

// Tags returns all tags
func (m *LongTermMemory) Tags() []string {
	tags := make([]string, len(m.tags))
	copy(tags, m.tags)
	return tags
}

// SourceEntryIDs returns the contributing entry IDs
func (m *LongTermMemory) SourceEntryIDs() []valueobjects.EntryID {
	sources := make([]valueobjects.EntryID, len(m.sources))
	copy(sources, m.sources)
	return sources
}

// MergeSources unions new contributing entries into the record. It reports
// how many were actually new, so re-running a crashed consolidation pass
// stays idempotent.
func (m *LongTermMemory) MergeSources(ids []valueobjects.EntryID) int {
	before := len(m.sources)
	m.sources = dedupeSources(append(m.sources, ids...))
	added := len(m.sources) - before
	if added > 0 {
		m.updatedAt = time.Now()
	}
	return added
}

// ReplaceSummary installs a freshly regenerated summary and tag set
func (m *LongTermMemory) ReplaceSummary(summary string, tags []string) {
	if summary != "" {
		m.summary = summary
	}
	m.tags = unionTags(m.tags, tags)
	m.updatedAt = time.Now()
}

func dedupeSources(ids []valueobjects.EntryID) []valueobjects.EntryID {
	out := []valueobjects.EntryID{}
	seen := make(map[string]bool)
	for _, id := range ids {
		if id.IsZero() || seen[id.String()] {
			continue
		}
		out = append(out, id)
		seen[id.String()] = true
	}
	return out
}
