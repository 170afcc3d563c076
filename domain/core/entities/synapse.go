package entities

import (
	"time"

	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
	"neurovault/domain/events"
	pkgerrors "neurovault/pkg/errors"
)

// Synapse is the edge entity connecting two vault entries. The endpoint pair
// is canonically ordered at construction (from < to), so an unordered pair is
// always represented by exactly one record regardless of argument order.
type Synapse struct {
	id        string
	userID    string
	from      valueobjects.EntryID
	to        valueobjects.EntryID
	weight    valueobjects.Weight
	stability valueobjects.Stability
	reason    string
	lastFired time.Time
	createdAt time.Time
	updatedAt time.Time

	events []events.DomainEvent
}

// NewSynapse creates a synapse between two entries with seed weight and
// stability. The endpoints are canonicalized, so NewSynapse(a, b, ...) and
// NewSynapse(b, a, ...) produce equivalent edges.
func NewSynapse(userID string, a, b valueobjects.EntryID, reason string, cfg *config.DomainConfig) (*Synapse, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if a.IsZero() || b.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse endpoints cannot be empty")
	}
	if a.Equals(b) {
		return nil, pkgerrors.NewValidationError("cannot link an entry to itself")
	}

	from, to := CanonicalPair(a, b)

	now := time.Now()
	synapse := &Synapse{
		id:        valueobjects.NewEntryID().String(),
		userID:    userID,
		from:      from,
		to:        to,
		weight:    valueobjects.NewWeight(cfg.SeedWeight),
		stability: valueobjects.NewStability(cfg.SeedStability),
		reason:    reason,
		lastFired: now,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}

	synapse.addEvent(events.NewSynapseCreated(synapse.id, from, to, userID, reason, now))

	return synapse, nil
}

// ReconstructSynapse reconstructs a synapse from repository data.
// Endpoints are re-canonicalized so stored records from any source
// converge on the same representation.
func ReconstructSynapse(
	id, userID string,
	a, b valueobjects.EntryID,
	weight valueobjects.Weight,
	stability valueobjects.Stability,
	reason string,
	lastFired, createdAt, updatedAt time.Time,
) (*Synapse, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("synapse ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if a.IsZero() || b.IsZero() {
		return nil, pkgerrors.NewValidationError("synapse endpoints cannot be empty")
	}

	from, to := CanonicalPair(a, b)

	return &Synapse{
		id:        id,
		userID:    userID,
		from:      from,
		to:        to,
		weight:    weight,
		stability: stability,
		reason:    reason,
		lastFired: lastFired,
		createdAt: createdAt,
		updatedAt: updatedAt,
		events:    []events.DomainEvent{},
	}, nil
}

// CanonicalPair orders two entry IDs under the total order used for
// synapse endpoints.
func CanonicalPair(a, b valueobjects.EntryID) (valueobjects.EntryID, valueobjects.EntryID) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

// ID returns the synapse's unique identifier
func (s *Synapse) ID() string {
	return s.id
}

// UserID returns the owner's ID
func (s *Synapse) UserID() string {
	return s.userID
}

// From returns the lower endpoint under canonical ordering
func (s *Synapse) From() valueobjects.EntryID {
	return s.from
}

// To returns the higher endpoint under canonical ordering
func (s *Synapse) To() valueobjects.EntryID {
	return s.to
}

// Weight returns the current association strength
func (s *Synapse) Weight() valueobjects.Weight {
	return s.weight
}

// Stability returns the synapse's resistance to decay
func (s *Synapse) Stability() valueobjects.Stability {
	return s.stability
}

// Reason returns the recorded origin of the link, if any
func (s *Synapse) Reason() string {
	return s.reason
}

// LastFired returns when the synapse was last reinforced
func (s *Synapse) LastFired() time.Time {
	return s.lastFired
}

// CreatedAt returns when the synapse was created
func (s *Synapse) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns when the synapse was last updated
func (s *Synapse) UpdatedAt() time.Time {
	return s.updatedAt
}

// Connects reports whether the synapse links the given pair, in either order
func (s *Synapse) Connects(a, b valueobjects.EntryID) bool {
	from, to := CanonicalPair(a, b)
	return s.from.Equals(from) && s.to.Equals(to)
}

// Other returns the endpoint opposite the given one. The second return is
// false when the given ID is not an endpoint of this synapse.
func (s *Synapse) Other(id valueobjects.EntryID) (valueobjects.EntryID, bool) {
	switch {
	case s.from.Equals(id):
		return s.to, true
	case s.to.Equals(id):
		return s.from, true
	default:
		return valueobjects.EntryID{}, false
	}
}

// Fire reinforces the synapse: weight rises by the configured increment,
// saturating at 1.0, and the inactivity clock resets.
func (s *Synapse) Fire(cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	s.weight = s.weight.Add(cfg.WeightIncrement)
	s.lastFired = now
	s.updatedAt = now
	if s.reason == "" {
		s.reason = "reinforced"
	}

	s.addEvent(events.NewSynapseFired(s.id, s.weight.Value(), now))
}

// Weaken reduces weight by the given amount. It reports true when the
// reduction depletes the synapse entirely; the caller is expected to delete
// the record in that case.
func (s *Synapse) Weaken(amount float64) bool {
	raw := s.weight.Value() - amount
	if raw <= 0 {
		s.weight = valueobjects.NewWeight(0)
		s.updatedAt = time.Now()
		return true
	}

	s.weight = valueobjects.NewWeight(raw)
	s.updatedAt = time.Now()
	return false
}

// Decay applies one cycle of the forgetting curve. Stability damps the base
// rate, so well-established links fade slower. Weight never goes negative.
func (s *Synapse) Decay(cfg *config.DomainConfig) float64 {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	effective := cfg.BaseDecayRate * (1 - s.stability.Value()*cfg.DampingFactor)
	s.weight = s.weight.Add(-effective)
	s.updatedAt = time.Now()
	return effective
}

// IsInactive reports whether the synapse has not fired within the window
func (s *Synapse) IsInactive(window time.Duration, now time.Time) bool {
	return now.Sub(s.lastFired) > window
}

// IsPrunable reports whether the weight has fallen to the prune threshold
func (s *Synapse) IsPrunable(threshold float64) bool {
	return s.weight.Value() <= threshold
}

// Stabilize applies the dreaming sub-pass: synapses that fired recently and
// remain strong gain a small amount of stability so they resist future
// decay. Reports whether the synapse qualified.
func (s *Synapse) Stabilize(cfg *config.DomainConfig, now time.Time) bool {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if s.IsInactive(cfg.DreamWindow, now) || !s.weight.IsStrong(cfg.DreamMinWeight) {
		return false
	}

	s.stability = s.stability.Add(cfg.StabilityStep)
	s.updatedAt = time.Now()
	return true
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Synapse) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Synapse) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

func (s *Synapse) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}
