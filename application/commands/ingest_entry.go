package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// IngestEntryCommand stores a new vault entry
type IngestEntryCommand struct {
	UserID   string   `json:"user_id" validate:"required"`
	RawText  string   `json:"raw_text" validate:"required,min=1,max=50000"`
	Summary  string   `json:"summary" validate:"max=2000"`
	Tags     []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Category string   `json:"category" validate:"max=100"`
}

// Validate validates the command
func (cmd IngestEntryCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.RawText == "" {
		return errors.New("raw text is required")
	}
	if len(cmd.RawText) > MaxEntryTextLength {
		return errors.New("raw text exceeds maximum length")
	}
	return nil
}

const MaxEntryTextLength = 50000

// IngestEntryHandler handles the IngestEntryCommand
type IngestEntryHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

// NewIngestEntryHandler creates a new handler instance
func NewIngestEntryHandler(entries *services.EntryService, logger *zap.Logger) *IngestEntryHandler {
	return &IngestEntryHandler{
		entries: entries,
		logger:  logger,
	}
}

// Handle executes the ingest command
func (h *IngestEntryHandler) Handle(ctx context.Context, cmd IngestEntryCommand) (*services.EntryView, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.entries.Ingest(ctx, cmd.UserID, cmd.RawText, cmd.Summary, cmd.Tags, cmd.Category)
}

// DeleteEntryCommand removes an entry and its synapses
type DeleteEntryCommand struct {
	UserID  string `json:"user_id" validate:"required"`
	EntryID string `json:"entry_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeleteEntryCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.EntryID == "" {
		return errors.New("entry ID is required")
	}
	return nil
}

// DeleteEntryHandler handles the DeleteEntryCommand
type DeleteEntryHandler struct {
	entries *services.EntryService
	logger  *zap.Logger
}

// NewDeleteEntryHandler creates a new handler instance
func NewDeleteEntryHandler(entries *services.EntryService, logger *zap.Logger) *DeleteEntryHandler {
	return &DeleteEntryHandler{
		entries: entries,
		logger:  logger,
	}
}

// Handle executes the delete command
func (h *DeleteEntryHandler) Handle(ctx context.Context, cmd DeleteEntryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.entries.Delete(ctx, cmd.UserID, cmd.EntryID)
}
