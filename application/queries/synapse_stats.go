package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// SynapseStatsQuery asks for the aggregate view over a user's sub-graph
type SynapseStatsQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q SynapseStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// SynapseStatsHandler handles the SynapseStatsQuery
type SynapseStatsHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewSynapseStatsHandler creates a new handler instance
func NewSynapseStatsHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *SynapseStatsHandler {
	return &SynapseStatsHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the stats query
func (h *SynapseStatsHandler) Handle(ctx context.Context, q SynapseStatsQuery) (*services.SynapseStats, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.reinforcement.Stats(ctx, q.UserID)
}

// StrongestSynapsesQuery asks for a user's heaviest links
type StrongestSynapsesQuery struct {
	UserID string `json:"user_id" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
}

// Validate validates the query
func (q StrongestSynapsesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// StrongestSynapsesHandler handles the StrongestSynapsesQuery
type StrongestSynapsesHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewStrongestSynapsesHandler creates a new handler instance
func NewStrongestSynapsesHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *StrongestSynapsesHandler {
	return &StrongestSynapsesHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the strongest query
func (h *StrongestSynapsesHandler) Handle(ctx context.Context, q StrongestSynapsesQuery) ([]services.SynapseView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return h.reinforcement.Strongest(ctx, q.UserID, q.Limit)
}
