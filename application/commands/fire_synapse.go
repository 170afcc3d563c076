package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"neurovault/application/services"
)

// FireSynapseCommand reinforces the link between two entries
type FireSynapseCommand struct {
	UserID string `json:"user_id" validate:"required"`
	EntryA string `json:"entry_a" validate:"required,uuid"`
	EntryB string `json:"entry_b" validate:"required,uuid"`
	Reason string `json:"reason" validate:"max=500"`
}

// Validate validates the command
func (cmd FireSynapseCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.EntryA == "" || cmd.EntryB == "" {
		return errors.New("both entry IDs are required")
	}
	if cmd.EntryA == cmd.EntryB {
		return errors.New("cannot link an entry to itself")
	}
	return nil
}

// FireSynapseHandler handles the FireSynapseCommand
type FireSynapseHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewFireSynapseHandler creates a new handler instance
func NewFireSynapseHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *FireSynapseHandler {
	return &FireSynapseHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the fire command
func (h *FireSynapseHandler) Handle(ctx context.Context, cmd FireSynapseCommand) (*services.SynapseView, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.reinforcement.Fire(ctx, cmd.UserID, cmd.EntryA, cmd.EntryB, cmd.Reason)
}

// FireAllCommand reinforces every unordered pair within a co-occurring set
type FireAllCommand struct {
	UserID   string   `json:"user_id" validate:"required"`
	EntryIDs []string `json:"entry_ids" validate:"required,min=2,max=50,dive,uuid"`
}

// Validate validates the command
func (cmd FireAllCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if len(cmd.EntryIDs) < 2 {
		return errors.New("at least two entry IDs are required")
	}
	return nil
}

// FireAllHandler handles the FireAllCommand
type FireAllHandler struct {
	reinforcement *services.ReinforcementService
	logger        *zap.Logger
}

// NewFireAllHandler creates a new handler instance
func NewFireAllHandler(reinforcement *services.ReinforcementService, logger *zap.Logger) *FireAllHandler {
	return &FireAllHandler{
		reinforcement: reinforcement,
		logger:        logger,
	}
}

// Handle executes the fire-all command and returns how many pairs fired
func (h *FireAllHandler) Handle(ctx context.Context, cmd FireAllCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.reinforcement.FireAll(ctx, cmd.UserID, cmd.EntryIDs)
}
