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

// EntryRepository is the in-memory entry store used by tests and local runs.
// Entries are copied on save and on read so callers never share state with
// the store, matching the document-store contract.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*entities.VaultEntry
}

// NewEntryRepository creates an empty in-memory entry repository
func NewEntryRepository() *EntryRepository {
	return &EntryRepository{
		entries: make(map[string]*entities.VaultEntry),
	}
}

func copyEntry(entry *entities.VaultEntry) *entities.VaultEntry {
	clone, _ := entities.ReconstructVaultEntry(
		entry.ID(),
		entry.UserID(),
		entry.RawText(),
		entry.Summary(),
		entry.Tags(),
		entry.Category(),
		entry.Strength(),
		entry.IsAnalyzed(),
		entry.IsConsolidated(),
		entry.LastActivityAt(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	return clone
}

// Save persists an entry
func (r *EntryRepository) Save(ctx context.Context, entry *entities.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID().String()] = copyEntry(entry)
	return nil
}

// GetByID retrieves an entry by ID
func (r *EntryRepository) GetByID(ctx context.Context, id valueobjects.EntryID) (*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id.String()]
	if !ok {
		return nil, pkgerrors.ErrEntryNotFound
	}
	return copyEntry(entry), nil
}

// GetByIDs retrieves multiple entries, skipping missing IDs
func (r *EntryRepository) GetByIDs(ctx context.Context, ids []valueobjects.EntryID) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.VaultEntry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.entries[id.String()]; ok {
			out = append(out, copyEntry(entry))
		}
	}
	return out, nil
}

// GetByUserID retrieves all entries for a user
func (r *EntryRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.UserID() == userID {
			out = append(out, copyEntry(entry))
		}
	}
	return out, nil
}

// Delete removes an entry
func (r *EntryRepository) Delete(ctx context.Context, id valueobjects.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id.String())
	return nil
}

// DeleteBatch removes multiple entries
func (r *EntryRepository) DeleteBatch(ctx context.Context, ids []valueobjects.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.entries, id.String())
	}
	return nil
}

// BulkSave saves multiple entries
func (r *EntryRepository) BulkSave(ctx context.Context, entries []*entities.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.entries[entry.ID().String()] = copyEntry(entry)
	}
	return nil
}

// ListUserIDs returns the distinct owners of stored entries
func (r *EntryRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	out := []string{}
	for _, entry := range r.entries {
		if !seen[entry.UserID()] {
			seen[entry.UserID()] = true
			out = append(out, entry.UserID())
		}
	}
	sort.Strings(out)
	return out, nil
}

// FindDecayCandidates returns non-consolidated positive-strength entries
// inactive since the cutoff
func (r *EntryRepository) FindDecayCandidates(ctx context.Context, inactiveSince time.Time) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.IsConsolidated() || entry.Strength().IsDepleted() {
			continue
		}
		if entry.IsInactiveSince(inactiveSince) {
			out = append(out, copyEntry(entry))
		}
	}
	return out, nil
}

// FindDepleted returns non-consolidated entries at zero strength
func (r *EntryRepository) FindDepleted(ctx context.Context) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.IsPrunable() {
			out = append(out, copyEntry(entry))
		}
	}
	return out, nil
}

// FindDeltaSet returns unanalyzed or recently-active entries, capped
func (r *EntryRepository) FindDeltaSet(ctx context.Context, userID string, activeSince time.Time, limit int) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.UserID() != userID || entry.IsConsolidated() {
			continue
		}
		if !entry.IsAnalyzed() || entry.LastActivityAt().After(activeSince) {
			out = append(out, copyEntry(entry))
		}
	}
	sortByActivityDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindContextSet returns analyzed, strong entries excluding the given IDs, capped
func (r *EntryRepository) FindContextSet(ctx context.Context, userID string, minStrength int, exclude []valueobjects.EntryID, limit int) ([]*entities.VaultEntry, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id.String()] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.UserID() != userID || !entry.IsAnalyzed() {
			continue
		}
		if excluded[entry.ID().String()] || entry.Strength().Value() < minStrength {
			continue
		}
		out = append(out, copyEntry(entry))
	}
	sortByStrengthDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindConsolidationCandidates returns non-consolidated entries at or above
// the threshold
func (r *EntryRepository) FindConsolidationCandidates(ctx context.Context, userID string, threshold int) ([]*entities.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.VaultEntry{}
	for _, entry := range r.entries {
		if entry.UserID() != userID {
			continue
		}
		if entry.QualifiesForConsolidation(threshold) {
			out = append(out, copyEntry(entry))
		}
	}
	return out, nil
}

func sortByActivityDesc(entries []*entities.VaultEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastActivityAt().After(entries[j].LastActivityAt())
	})
}

func sortByStrengthDesc(entries []*entities.VaultEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Strength().Value() > entries[j].Strength().Value()
	})
}
