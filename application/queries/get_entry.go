package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// GetEntryQuery asks for a single vault entry. Reading an entry counts as
// recall, so handling it refreshes the entry's activity timestamp.
type GetEntryQuery struct {
	UserID  string `json:"user_id" validate:"required"`
	EntryID string `json:"entry_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetEntryQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.EntryID == "" {
		return errors.New("entry ID is required")
	}
	return nil
}

// GetEntryHandler handles the GetEntryQuery
type GetEntryHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

// NewGetEntryHandler creates a new handler instance
func NewGetEntryHandler(entries *services.EntryService, logger *zap.Logger) *GetEntryHandler {
	return &GetEntryHandler{
		entries: entries,
		logger:  logger,
	}
}

// Handle executes the get query
func (h *GetEntryHandler) Handle(ctx context.Context, q GetEntryQuery) (*services.EntryView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.entries.Get(ctx, q.UserID, q.EntryID)
}

// ListEntriesQuery asks for all of a user's vault entries
type ListEntriesQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q ListEntriesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// ListEntriesHandler handles the ListEntriesQuery
type ListEntriesHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

// NewListEntriesHandler creates a new handler instance
func NewListEntriesHandler(entries *services.EntryService, logger *zap.Logger) *ListEntriesHandler {
	return &ListEntriesHandler{
		entries: entries,
		logger:  logger,
	}
}

// Handle executes the list query
func (h *ListEntriesHandler) Handle(ctx context.Context, q ListEntriesQuery) ([]services.EntryView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.entries.List(ctx, q.UserID)
}
