package handlers

import (
	"encoding/json"
	"net/http"

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

// SynapseHandler handles synapse HTTP requests
type SynapseHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewSynapseHandler creates a new synapse handler
func NewSynapseHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *SynapseHandler {
	return &SynapseHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// FireRequest represents the request body for reinforcing synapses.
// Two IDs fire a single pair; more fire every unordered pair in the set.
type FireRequest struct {
	EntryIDs []string `json:"entry_ids" validate:"required,min=2,max=50,dive,uuid"`
	Reason   string   `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// FireResponse reports how many synapses were touched by a set fire
type FireResponse struct {
	Fired int `json:"fired"`
}

// Fire handles POST /synapses/fire
func (h *SynapseHandler) Fire(w http.ResponseWriter, r *http.Request) {
	var req FireRequest
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

	if len(req.EntryIDs) == 2 {
		result, err := h.commandBus.Send(r.Context(), commands.FireSynapseCommand{
			UserID: userCtx.UserID,
			EntryA: req.EntryIDs[0],
			EntryB: req.EntryIDs[1],
			Reason: req.Reason,
		})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.FireAllCommand{
		UserID:   userCtx.UserID,
		EntryIDs: req.EntryIDs,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	fired, _ := result.(int)
	respondJSON(w, http.StatusOK, FireResponse{Fired: fired})
}

// WeakenRequest represents the request body for weakening a synapse
type WeakenRequest struct {
	EntryA string  `json:"entry_a" validate:"required,uuid"`
	EntryB string  `json:"entry_b" validate:"required,uuid"`
	Amount float64 `json:"amount,omitempty" validate:"gte=0,lte=1"`
}

// Weaken handles POST /synapses/weaken
func (h *SynapseHandler) Weaken(w http.ResponseWriter, r *http.Request) {
	var req WeakenRequest
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

	result, err := h.commandBus.Send(r.Context(), commands.WeakenSynapseCommand{
		UserID: userCtx.UserID,
		EntryA: req.EntryA,
		EntryB: req.EntryB,
		Amount: req.Amount,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Stats handles GET /synapses/stats
func (h *SynapseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SynapseStatsQuery{
		UserID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Strongest handles GET /synapses/strongest
func (h *SynapseHandler) Strongest(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.StrongestSynapsesQuery{
		UserID: userCtx.UserID,
		Limit:  common.QueryLimit(r, 10),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
