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

// EntryHandler handles vault entry HTTP requests
type EntryHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *EntryHandler {
	return &EntryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// IngestEntryRequest represents the request body for storing an entry
type IngestEntryRequest struct {
	RawText  string   `json:"raw_text" validate:"required,min=1,max=50000"`
	Summary  string   `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	Category string   `json:"category,omitempty" validate:"omitempty,max=100"`
}

// IngestEntry handles POST /entries
func (h *EntryHandler) IngestEntry(w http.ResponseWriter, r *http.Request) {
	var req IngestEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.IngestEntryCommand{
		UserID:   userCtx.UserID,
		RawText:  req.RawText,
		Summary:  req.Summary,
		Tags:     req.Tags,
		Category: req.Category,
	})
	if err != nil {
		h.logger.Error("Failed to ingest entry",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// GetEntry handles GET /entries/{entryID}. Reading refreshes the entry's
// activity timestamp, which shields it from the next decay pass.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if _, err := uuid.Parse(entryID); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetEntryQuery{
		UserID:  userCtx.UserID,
		EntryID: entryID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListEntries handles GET /entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListEntriesQuery{
		UserID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// DeleteEntry handles DELETE /entries/{entryID}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if _, err := uuid.Parse(entryID); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := h.commandBus.Send(r.Context(), commands.DeleteEntryCommand{
		UserID:  userCtx.UserID,
		EntryID: entryID,
	}); err != nil {
		h.logger.Error("Failed to delete entry",
			zap.String("entryID", entryID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetEntryContext handles GET /entries/{entryID}/context
func (h *EntryHandler) GetEntryContext(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if _, err := uuid.Parse(entryID); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SynapseContextQuery{
		UserID:  userCtx.UserID,
		EntryID: entryID,
		Limit:   common.QueryLimit(r, 20),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
