package queries

import (
	"context"

	"go.uber.org/zap"

	"neurovault/application/ports"
)

// ListCategoriesQuery asks for the active category definitions
type ListCategoriesQuery struct{}

// Validate validates the query
func (q ListCategoriesQuery) Validate() error {
	return nil
}

// CategoryView is the read model for categories
type CategoryView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Order       int      `json:"order"`
}

// ListCategoriesHandler handles the ListCategoriesQuery
type ListCategoriesHandler struct {
	categoryRepo ports.CategoryRepository
	logger       *zap.Logger
}

// NewListCategoriesHandler creates a new handler instance
func NewListCategoriesHandler(categoryRepo ports.CategoryRepository, logger *zap.Logger) *ListCategoriesHandler {
	return &ListCategoriesHandler{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Handle executes the list query
func (h *ListCategoriesHandler) Handle(ctx context.Context, q ListCategoriesQuery) ([]CategoryView, error) {
	categories, err := h.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, CategoryView{
			ID:          category.ID(),
			Name:        category.Name(),
			Description: category.Description(),
			Keywords:    category.Keywords(),
			Order:       category.Order(),
		})
	}
	return views, nil
}
