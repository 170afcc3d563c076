package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// SynapseContextQuery asks for the entries connected to a given one,
// strongest first
type SynapseContextQuery struct {
	UserID  string `json:"user_id" validate:"required"`
	EntryID string `json:"entry_id" validate:"required,uuid"`
	Limit   int    `json:"limit" validate:"gte=0,lte=100"`
}

// Validate validates the query
func (q SynapseContextQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.EntryID == "" {
		return errors.New("entry ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// SynapseContextHandler handles the SynapseContextQuery
type SynapseContextHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewSynapseContextHandler creates a new handler instance
func NewSynapseContextHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *SynapseContextHandler {
	return &SynapseContextHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the context query
func (h *SynapseContextHandler) Handle(ctx context.Context, q SynapseContextQuery) ([]services.NeighborView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.reinforcement.Context(ctx, q.UserID, q.EntryID, q.Limit)
}
