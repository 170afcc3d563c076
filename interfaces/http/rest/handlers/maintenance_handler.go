package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"neurovault/application/commands"
	"neurovault/application/commands/bus"
	"neurovault/application/queries"
	querybus "neurovault/application/queries/bus"
	"neurovault/pkg/auth"
	"neurovault/pkg/common"
	pkgerrors "neurovault/pkg/errors"
	"neurovault/pkg/utils"
)

// MaintenanceHandler exposes operator endpoints for the nightly cycle
type MaintenanceHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// RunCycleRequest optionally narrows a manual trigger to a single pass
type RunCycleRequest struct {
	Phase string `json:"phase" validate:"omitempty,oneof=full decay discovery"`
}

// RunCycle handles POST /maintenance/cycles. The cycle runs synchronously
// under the lease lock; a second trigger while one is running gets 409.
func (h *MaintenanceHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Body is optional: an empty trigger runs the full cycle
	var req RunCycleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
	}

	result, err := h.commandBus.Send(r.Context(), commands.RunMaintenanceCommand{
		TriggeredBy: userCtx.UserID,
		Phase:       req.Phase,
	})
	if err != nil {
		h.logger.Warn("Maintenance cycle trigger failed",
			zap.String("triggeredBy", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListCycles handles GET /maintenance/cycles
func (h *MaintenanceHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.CycleHistoryQuery{
		Limit: common.QueryLimit(r, 20),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetCycle handles GET /maintenance/cycles/{cycleID}
func (h *MaintenanceHandler) GetCycle(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	if _, err := uuid.Parse(cycleID); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid cycle ID format")
		return
	}

	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.CycleReportQuery{
		CycleID: cycleID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
