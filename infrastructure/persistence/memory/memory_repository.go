package memory

import (
	"context"
	"sync"

	"neurovault/domain/core/entities"
	pkgerrors "neurovault/pkg/errors"
)

// MemoryRepository is the in-memory long-term memory store. Records are
// indexed by ID and by (userID, topic), which is unique per user.
type MemoryRepository struct {
	mu       sync.RWMutex
	memories map[string]*entities.LongTermMemory
	byTopic  map[string]string // userID + "#" + topic -> memory ID
}

// NewMemoryRepository creates an empty in-memory long-term memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		memories: make(map[string]*entities.LongTermMemory),
		byTopic:  make(map[string]string),
	}
}

func topicKey(userID, topic string) string {
	return userID + "#" + topic
}

func copyMemory(memory *entities.LongTermMemory) *entities.LongTermMemory {
	clone, _ := entities.ReconstructLongTermMemory(
		memory.ID(),
		memory.UserID(),
		memory.Topic(),
		memory.CategoryID(),
		memory.CategoryName(),
		memory.Summary(),
		memory.Tags(),
		memory.SourceEntryIDs(),
		memory.Strength(),
		memory.CreatedAt(),
		memory.UpdatedAt(),
	)
	return clone
}

// Save persists a long-term memory
func (r *MemoryRepository) Save(ctx context.Context, memory *entities.LongTermMemory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := copyMemory(memory)
	r.memories[clone.ID()] = clone
	r.byTopic[topicKey(clone.UserID(), clone.Topic())] = clone.ID()
	return nil
}

// GetByID retrieves a record by ID
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*entities.LongTermMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	memory, ok := r.memories[id]
	if !ok {
		return nil, pkgerrors.ErrMemoryNotFound
	}
	return copyMemory(memory), nil
}

// FindByUserAndTopic retrieves the record for (userID, topic)
func (r *MemoryRepository) FindByUserAndTopic(ctx context.Context, userID, topic string) (*entities.LongTermMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byTopic[topicKey(userID, topic)]
	if !ok {
		return nil, pkgerrors.ErrMemoryNotFound
	}
	return copyMemory(r.memories[id]), nil
}

// GetByUserID retrieves all records for a user
func (r *MemoryRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.LongTermMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.LongTermMemory{}
	for _, memory := range r.memories {
		if memory.UserID() == userID {
			out = append(out, copyMemory(memory))
		}
	}
	return out, nil
}

// Delete removes a record
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	memory, ok := r.memories[id]
	if !ok {
		return nil
	}
	delete(r.byTopic, topicKey(memory.UserID(), memory.Topic()))
	delete(r.memories, id)
	return nil
}
