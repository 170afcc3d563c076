package events

import (
	"time"

	"neurovault/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Entry Events

// EntryCreated is raised when a new vault entry is stored
type EntryCreated struct {
	BaseEvent
	EntryID valueobjects.EntryID `json:"entry_id"`
	UserID  string               `json:"user_id"`
}

// NewEntryCreated creates an EntryCreated event
func NewEntryCreated(entryID valueobjects.EntryID, userID string, timestamp time.Time) EntryCreated {
	return EntryCreated{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID: entryID,
		UserID:  userID,
	}
}

// EntryAnalyzed is raised when an entry has been classified for the first time
type EntryAnalyzed struct {
	BaseEvent
	EntryID valueobjects.EntryID `json:"entry_id"`
	Topic   string               `json:"topic"`
}

// NewEntryAnalyzed creates an EntryAnalyzed event
func NewEntryAnalyzed(entryID valueobjects.EntryID, topic string, timestamp time.Time) EntryAnalyzed {
	return EntryAnalyzed{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.analyzed",
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID: entryID,
		Topic:   topic,
	}
}

// EntryConsolidated is raised when an entry is promoted into long-term memory
type EntryConsolidated struct {
	BaseEvent
	EntryID valueobjects.EntryID `json:"entry_id"`
	UserID  string               `json:"user_id"`
	Topic   string               `json:"topic"`
}

// NewEntryConsolidated creates an EntryConsolidated event
func NewEntryConsolidated(entryID valueobjects.EntryID, userID, topic string, timestamp time.Time) EntryConsolidated {
	return EntryConsolidated{
		BaseEvent: BaseEvent{
			AggregateID: entryID.String(),
			EventType:   "entry.consolidated",
			Timestamp:   timestamp,
			Version:     1,
		},
		EntryID: entryID,
		UserID:  userID,
		Topic:   topic,
	}
}

// Synapse Events

// SynapseCreated is raised when two entries are linked for the first time
type SynapseCreated struct {
	BaseEvent
	SynapseID string               `json:"synapse_id"`
	FromID    valueobjects.EntryID `json:"from_id"`
	ToID      valueobjects.EntryID `json:"to_id"`
	UserID    string               `json:"user_id"`
	Reason    string               `json:"reason,omitempty"`
}

// NewSynapseCreated creates a SynapseCreated event
func NewSynapseCreated(synapseID string, fromID, toID valueobjects.EntryID, userID, reason string, timestamp time.Time) SynapseCreated {
	return SynapseCreated{
		BaseEvent: BaseEvent{
			AggregateID: synapseID,
			EventType:   "synapse.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		SynapseID: synapseID,
		FromID:    fromID,
		ToID:      toID,
		UserID:    userID,
		Reason:    reason,
	}
}

// SynapseFired is raised when an existing link is reinforced
type SynapseFired struct {
	BaseEvent
	SynapseID string  `json:"synapse_id"`
	Weight    float64 `json:"weight"`
}

// NewSynapseFired creates a SynapseFired event
func NewSynapseFired(synapseID string, weight float64, timestamp time.Time) SynapseFired {
	return SynapseFired{
		BaseEvent: BaseEvent{
			AggregateID: synapseID,
			EventType:   "synapse.fired",
			Timestamp:   timestamp,
			Version:     1,
		},
		SynapseID: synapseID,
		Weight:    weight,
	}
}

// SynapsePruned is raised when a link's weight falls to the prune threshold
type SynapsePruned struct {
	BaseEvent
	SynapseID string               `json:"synapse_id"`
	FromID    valueobjects.EntryID `json:"from_id"`
	ToID      valueobjects.EntryID `json:"to_id"`
	UserID    string               `json:"user_id"`
}

// NewSynapsePruned creates a SynapsePruned event
func NewSynapsePruned(synapseID string, fromID, toID valueobjects.EntryID, userID string, timestamp time.Time) SynapsePruned {
	return SynapsePruned{
		BaseEvent: BaseEvent{
			AggregateID: synapseID,
			EventType:   "synapse.pruned",
			Timestamp:   timestamp,
			Version:     1,
		},
		SynapseID: synapseID,
		FromID:    fromID,
		ToID:      toID,
		UserID:    userID,
	}
}

// Maintenance Events

// MaintenanceCycleCompleted is raised at the end of every nightly cycle,
// whether or not the discovery phase ran
type MaintenanceCycleCompleted struct {
	BaseEvent
	CycleID          string        `json:"cycle_id"`
	EntriesDecayed   int           `json:"entries_decayed"`
	SynapsesDecayed  int           `json:"synapses_decayed"`
	SynapsesPruned   int           `json:"synapses_pruned"`
	SynapsesCreated  int           `json:"synapses_created"`
	EntriesPromoted  int           `json:"entries_promoted"`
	DiscoverySkipped bool          `json:"discovery_skipped"`
	Duration         time.Duration `json:"duration"`
}

// NewMaintenanceCycleCompleted creates a MaintenanceCycleCompleted event
func NewMaintenanceCycleCompleted(cycleID string, entriesDecayed, synapsesDecayed, synapsesPruned, synapsesCreated, entriesPromoted int, discoverySkipped bool, duration time.Duration, timestamp time.Time) MaintenanceCycleCompleted {
	return MaintenanceCycleCompleted{
		BaseEvent: BaseEvent{
			AggregateID: cycleID,
			EventType:   "maintenance.cycle_completed",
			Timestamp:   timestamp,
			Version:     1,
		},
		CycleID:          cycleID,
		EntriesDecayed:   entriesDecayed,
		SynapsesDecayed:  synapsesDecayed,
		SynapsesPruned:   synapsesPruned,
		SynapsesCreated:  synapsesCreated,
		EntriesPromoted:  entriesPromoted,
		DiscoverySkipped: discoverySkipped,
		Duration:         duration,
	}
}
