package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"neurovault/application/queries"
	querybus "neurovault/application/queries/bus"
	"neurovault/pkg/auth"
	pkgerrors "neurovault/pkg/errors"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		queryBus: queryBus,
		errors:   pkgerrors.NewErrorHandler(logger, false),
		logger:   logger,
	}
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListCategoriesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
