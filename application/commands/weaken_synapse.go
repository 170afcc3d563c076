package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// WeakenSynapseCommand reduces the link between two entries
type WeakenSynapseCommand struct {
	UserID string  `json:"user_id" validate:"required"`
	EntryA string  `json:"entry_a" validate:"required,uuid"`
	EntryB string  `json:"entry_b" validate:"required,uuid"`
	Amount float64 `json:"amount" validate:"gte=0,lte=1"`
}

// Validate validates the command
func (cmd WeakenSynapseCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.EntryA == "" || cmd.EntryB == "" {
		return errors.New("both entry IDs are required")
	}
	if cmd.Amount < 0 || cmd.Amount > 1 {
		return errors.New("amount must be between 0 and 1")
	}
	return nil
}

// WeakenSynapseHandler handles the WeakenSynapseCommand
type WeakenSynapseHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewWeakenSynapseHandler creates a new handler instance
func NewWeakenSynapseHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *WeakenSynapseHandler {
	return &WeakenSynapseHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the weaken command. The returned view carries Deleted=true
// when the reduction removed the synapse entirely.
func (h *WeakenSynapseHandler) Handle(ctx context.Context, cmd WeakenSynapseCommand) (*services.SynapseView, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.reinforcement.Weaken(ctx, cmd.UserID, cmd.EntryA, cmd.EntryB, cmd.Amount)
}
