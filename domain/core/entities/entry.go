package entities

import (
	"time"

	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
	"neurovault/domain/events"
	pkgerrors "neurovault/pkg/errors"
)

// VaultEntry is the main entity representing a stored unit of user knowledge.
// This is a rich domain model with encapsulated business logic: strength
// mutations always clamp, and consolidation is a one-way transition.
type VaultEntry struct {
	// Private fields ensure encapsulation
	id             valueobjects.EntryID
	userID         string
	rawText        string
	summary        string
	tags           []string
	category       string
	strength       valueobjects.Strength
	isAnalyzed     bool
	isConsolidated bool
	lastActivityAt time.Time
	createdAt      time.Time
	updatedAt      time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewVaultEntry creates a new entry from ingested text
func NewVaultEntry(userID, rawText, summary string, tags []string, category string, cfg *config.DomainConfig) (*VaultEntry, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if rawText == "" {
		return nil, pkgerrors.NewValidationError("rawText cannot be empty")
	}

	now := time.Now()
	entry := &VaultEntry{
		id:             valueobjects.NewEntryID(),
		userID:         userID,
		rawText:        rawText,
		summary:        summary,
		tags:           dedupeTags(tags),
		category:       category,
		strength:       valueobjects.NewStrength(cfg.InitialEntryStrength),
		lastActivityAt: now,
		createdAt:      now,
		updatedAt:      now,
		events:         []events.DomainEvent{},
	}

	entry.addEvent(events.NewEntryCreated(entry.id, userID, now))

	return entry, nil
}

// ReconstructVaultEntry reconstructs an entry from repository data with preserved timestamps
func ReconstructVaultEntry(
	id valueobjects.EntryID,
	userID, rawText, summary string,
	tags []string,
	category string,
	strength valueobjects.Strength,
	isAnalyzed, isConsolidated bool,
	lastActivityAt, createdAt, updatedAt time.Time,
) (*VaultEntry, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("entry ID cannot be empty")
	}

	return &VaultEntry{
		id:             id,
		userID:         userID,
		rawText:        rawText,
		summary:        summary,
		tags:           dedupeTags(tags),
		category:       category,
		strength:       strength,
		isAnalyzed:     isAnalyzed,
		isConsolidated: isConsolidated,
		lastActivityAt: lastActivityAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		events:         []events.DomainEvent{},
	}, nil
}

// ID returns the entry's unique identifier
func (e *VaultEntry) ID() valueobjects.EntryID {
	return e.id
}

// UserID returns the owner's ID
func (e *VaultEntry) UserID() string {
	return e.userID
}

// RawText returns the original ingested text
func (e *VaultEntry) RawText() string {
	return e.rawText
}

// Summary returns the entry's summary
func (e *VaultEntry) Summary() string {
	return e.summary
}

// Category returns the entry's assigned category name
func (e *VaultEntry) Category() string {
	return e.category
}

// Strength returns the entry's retention score
func (e *VaultEntry) Strength() valueobjects.Strength {
	return e.strength
}

// IsAnalyzed reports whether discovery has classified this entry
func (e *VaultEntry) IsAnalyzed() bool {
	return e.isAnalyzed
}

// IsConsolidated reports whether this entry has been promoted to long-term memory
func (e *VaultEntry) IsConsolidated() bool {
	return e.isConsolidated
}

// Tags returns all tags
func (e *VaultEntry) Tags() []string {
	// Return a copy to maintain encapsulation
	tags := make([]string, len(e.tags))
	copy(tags, e.tags)
	return tags
}

// LastActivityAt returns when the entry was last touched
func (e *VaultEntry) LastActivityAt() time.Time {
	return e.lastActivityAt
}

// CreatedAt returns when the entry was created
func (e *VaultEntry) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the entry was last updated
func (e *VaultEntry) UpdatedAt() time.Time {
	return e.updatedAt
}

// Touch records activity on the entry, resetting its inactivity clock
func (e *VaultEntry) Touch() {
	now := time.Now()
	e.lastActivityAt = now
	e.updatedAt = now
}

// ApplyTopic applies a discovery classification result: assigns the category,
// unions the proposed tags, bumps strength by the topic's importance and
// marks the entry analyzed. Out-of-range importance clamps at the cap.
func (e *VaultEntry) ApplyTopic(category string, tags []string, importance int) {
	now := time.Now()

	if category != "" {
		e.category = category
	}
	e.tags = unionTags(e.tags, tags)
	if importance > 0 {
		e.strength = e.strength.Add(importance)
	}

	if !e.isAnalyzed {
		e.isAnalyzed = true
		e.addEvent(events.NewEntryAnalyzed(e.id, category, now))
	}

	e.lastActivityAt = now
	e.updatedAt = now
}

// Decay applies one cycle's worth of the forgetting curve. Consolidated
// entries no longer decay; the call is a no-op and reports false.
func (e *VaultEntry) Decay(step int) bool {
	if e.isConsolidated || e.strength.IsDepleted() {
		return false
	}

	e.strength = e.strength.Add(-step)
	e.updatedAt = time.Now()
	return true
}

// IsInactiveSince reports whether the entry has seen no activity since the cutoff
func (e *VaultEntry) IsInactiveSince(cutoff time.Time) bool {
	return e.lastActivityAt.Before(cutoff)
}

// IsPrunable reports whether decay has fully depleted the entry.
// Consolidated entries are never prunable.
func (e *VaultEntry) IsPrunable() bool {
	return !e.isConsolidated && e.strength.IsDepleted()
}

// QualifiesForConsolidation reports whether the entry should be promoted
func (e *VaultEntry) QualifiesForConsolidation(threshold int) bool {
	return !e.isConsolidated && e.strength.Value() >= threshold
}

// Consolidate marks the entry as promoted to long-term memory.
// The transition is one-directional; consolidating twice is a no-op.
func (e *VaultEntry) Consolidate(topic string) {
	if e.isConsolidated {
		return
	}

	now := time.Now()
	e.isConsolidated = true
	e.updatedAt = now

	e.addEvent(events.NewEntryConsolidated(e.id, e.userID, topic, now))
}

// GetUncommittedEvents returns all uncommitted domain events
func (e *VaultEntry) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (e *VaultEntry) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (e *VaultEntry) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}

// dedupeTags normalizes a tag slice into set semantics, preserving order
func dedupeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		out = append(out, t)
		seen[t] = true
	}
	return out
}

// unionTags merges two tag slices with set semantics, preserving order
func unionTags(existing, incoming []string) []string {
	return dedupeTags(append(existing, incoming...))
}
