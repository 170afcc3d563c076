package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"neurovault/application/ports"
	"neurovault/application/services"
)

// RunMaintenanceCommand triggers one maintenance cycle. Normally issued by
// the nightly scheduler; the operator endpoint issues it manually. The lease
// inside the maintenance service keeps concurrent triggers from overlapping.
type RunMaintenanceCommand struct {
	TriggeredBy string `json:"triggered_by" validate:"max=100"`
	// Phase narrows the run to a single pass; empty means the full cycle.
	Phase string `json:"phase" validate:"omitempty,oneof=full decay discovery"`
}

// Validate validates the command
func (cmd RunMaintenanceCommand) Validate() error {
	switch cmd.Phase {
	case "", "full", "decay", "discovery":
		return nil
	}
	return fmt.Errorf("unknown cycle phase %q", cmd.Phase)
}

// RunMaintenanceHandler handles the RunMaintenanceCommand
type RunMaintenanceHandler struct {
	maintenance *services.MaintenanceService
	logger      *zap.Logger
}

// NewRunMaintenanceHandler creates a new handler instance
func NewRunMaintenanceHandler(maintenance *services.MaintenanceService, logger *zap.Logger) *RunMaintenanceHandler {
	return &RunMaintenanceHandler{
		maintenance: maintenance,
		logger:      logger,
	}
}

// Handle executes one maintenance cycle and returns its report
func (h *RunMaintenanceHandler) Handle(ctx context.Context, cmd RunMaintenanceCommand) (*ports.CycleReport, error) {
	if cmd.TriggeredBy != "" {
		h.logger.Info("Maintenance cycle triggered",
			zap.String("triggeredBy", cmd.TriggeredBy),
			zap.String("phase", cmd.Phase),
		)
	}
	return h.maintenance.RunPhase(ctx, services.CyclePhase(cmd.Phase))
}
