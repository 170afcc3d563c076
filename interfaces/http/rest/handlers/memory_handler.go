package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"neurovault/application/queries"
	querybus "neurovault/application/queries/bus"
	"neurovault/pkg/auth"
	pkgerrors "neurovault/pkg/errors"
)

// MemoryHandler handles long-term memory HTTP requests
type MemoryHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{
		queryBus: queryBus,
		errors:   pkgerrors.NewErrorHandler(logger, false),
		logger:   logger,
	}
}

// ListMemories handles GET /memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListMemoriesQuery{
		UserID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
