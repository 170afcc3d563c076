package queries

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"neurovault/application/ports"
)

// ListMemoriesQuery asks for a user's long-term memory records
type ListMemoriesQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q ListMemoriesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// MemoryView is the read model for long-term memories
type MemoryView struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	Summary      string    `json:"summary"`
	Tags         []string  `json:"tags"`
	SourceIDs    []string  `json:"source_entry_ids"`
	Strength     int       `json:"strength"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListMemoriesHandler handles the ListMemoriesQuery
type ListMemoriesHandler struct {
	memoryRepo ports.LongTermMemoryRepository
	logger     *zap.Logger
}

// NewListMemoriesHandler creates a new handler instance
func NewListMemoriesHandler(memoryRepo ports.LongTermMemoryRepository, logger *zap.Logger) *ListMemoriesHandler {
	return &ListMemoriesHandler{
		memoryRepo: memoryRepo,
		logger:     logger,
	}
}

// Handle executes the list query
func (h *ListMemoriesHandler) Handle(ctx context.Context, q ListMemoriesQuery) ([]MemoryView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	memories, err := h.memoryRepo.GetByUserID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]MemoryView, 0, len(memories))
	for _, memory := range memories {
		sourceIDs := memory.SourceEntryIDs()
		ids := make([]string, 0, len(sourceIDs))
		for _, id := range sourceIDs {
			ids = append(ids, id.String())
		}
		views = append(views, MemoryView{
			ID:           memory.ID(),
			Topic:        memory.Topic(),
			CategoryID:   memory.CategoryID(),
			CategoryName: memory.CategoryName(),
			Summary:      memory.Summary(),
			Tags:         memory.Tags(),
			SourceIDs:    ids,
			Strength:     memory.Strength().Value(),
			CreatedAt:    memory.CreatedAt(),
			UpdatedAt:    memory.UpdatedAt(),
		})
	}
	return views, nil
}
