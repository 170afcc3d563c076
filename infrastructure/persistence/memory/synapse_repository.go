package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"neurovault/domain/core/entities"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

// SynapseRepository is the in-memory synapse store. Records are indexed both
// by ID and by the canonical (userID, from, to) pair.
type SynapseRepository struct {
	mu       sync.RWMutex
	synapses map[string]*entities.Synapse
	byPair   map[string]string // pair key -> synapse ID
}

// NewSynapseRepository creates an empty in-memory synapse repository
func NewSynapseRepository() *SynapseRepository {
	return &SynapseRepository{
		synapses: make(map[string]*entities.Synapse),
		byPair:   make(map[string]string),
	}
}

func pairKey(userID string, a, b valueobjects.EntryID) string {
	from, to := entities.CanonicalPair(a, b)
	return userID + "#" + from.String() + "#" + to.String()
}

func copySynapse(synapse *entities.Synapse) *entities.Synapse {
	clone, _ := entities.ReconstructSynapse(
		synapse.ID(),
		synapse.UserID(),
		synapse.From(),
		synapse.To(),
		synapse.Weight(),
		synapse.Stability(),
		synapse.Reason(),
		synapse.LastFired(),
		synapse.CreatedAt(),
		synapse.UpdatedAt(),
	)
	return clone
}

// Save persists a synapse
func (r *SynapseRepository) Save(ctx context.Context, synapse *entities.Synapse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := copySynapse(synapse)
	r.synapses[clone.ID()] = clone
	r.byPair[pairKey(clone.UserID(), clone.From(), clone.To())] = clone.ID()
	return nil
}

// GetByID retrieves a synapse by ID
func (r *SynapseRepository) GetByID(ctx context.Context, id string) (*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	synapse, ok := r.synapses[id]
	if !ok {
		return nil, pkgerrors.ErrSynapseNotFound
	}
	return copySynapse(synapse), nil
}

// FindByPair retrieves the synapse for an unordered entry pair
func (r *SynapseRepository) FindByPair(ctx context.Context, userID string, a, b valueobjects.EntryID) (*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey(userID, a, b)]
	if !ok {
		return nil, pkgerrors.ErrSynapseNotFound
	}
	return copySynapse(r.synapses[id]), nil
}

// GetByEntryID retrieves synapses touching an entry, weight descending
func (r *SynapseRepository) GetByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID, limit int) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.UserID() != userID {
			continue
		}
		if _, ok := synapse.Other(entryID); ok {
			out = append(out, copySynapse(synapse))
		}
	}
	sortByWeightDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetByUserID retrieves all synapses for a user
func (r *SynapseRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.UserID() == userID {
			out = append(out, copySynapse(synapse))
		}
	}
	return out, nil
}

// Delete removes a synapse
func (r *SynapseRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(id)
	return nil
}

// DeleteBatch removes multiple synapses
func (r *SynapseRepository) DeleteBatch(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.deleteLocked(id)
	}
	return nil
}

// DeleteByEntryID removes all synapses touching an entry
func (r *SynapseRepository) DeleteByEntryID(ctx context.Context, userID string, entryID valueobjects.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, synapse := range r.synapses {
		if synapse.UserID() != userID {
			continue
		}
		if _, ok := synapse.Other(entryID); ok {
			r.deleteLocked(id)
		}
	}
	return nil
}

// BulkSave saves multiple synapses
func (r *SynapseRepository) BulkSave(ctx context.Context, synapses []*entities.Synapse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, synapse := range synapses {
		clone := copySynapse(synapse)
		r.synapses[clone.ID()] = clone
		r.byPair[pairKey(clone.UserID(), clone.From(), clone.To())] = clone.ID()
	}
	return nil
}

// FindDecayCandidates returns positive-weight synapses not fired since the cutoff
func (r *SynapseRepository) FindDecayCandidates(ctx context.Context, firedBefore time.Time) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.Weight().Value() > 0 && synapse.LastFired().Before(firedBefore) {
			out = append(out, copySynapse(synapse))
		}
	}
	return out, nil
}

// FindPrunable returns synapses at or below the weight threshold
func (r *SynapseRepository) FindPrunable(ctx context.Context, threshold float64) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.IsPrunable(threshold) {
			out = append(out, copySynapse(synapse))
		}
	}
	return out, nil
}

// FindDreamCandidates returns recently-fired strong synapses
func (r *SynapseRepository) FindDreamCandidates(ctx context.Context, firedAfter time.Time, minWeight float64) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.LastFired().After(firedAfter) && synapse.Weight().IsStrong(minWeight) {
			out = append(out, copySynapse(synapse))
		}
	}
	return out, nil
}

// Strongest returns a user's synapses at or above minWeight, weight descending
func (r *SynapseRepository) Strongest(ctx context.Context, userID string, minWeight float64, limit int) ([]*entities.Synapse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Synapse{}
	for _, synapse := range r.synapses {
		if synapse.UserID() == userID && synapse.Weight().IsStrong(minWeight) {
			out = append(out, copySynapse(synapse))
		}
	}
	sortByWeightDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SynapseRepository) deleteLocked(id string) {
	synapse, ok := r.synapses[id]
	if !ok {
		return
	}
	delete(r.byPair, pairKey(synapse.UserID(), synapse.From(), synapse.To()))
	delete(r.synapses, id)
}

func sortByWeightDesc(synapses []*entities.Synapse) {
	sort.SliceStable(synapses, func(i, j int) bool {
		return synapses[i].Weight().Value() > synapses[j].Weight().Value()
	})
}
