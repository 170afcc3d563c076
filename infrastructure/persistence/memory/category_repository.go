package memory

import (
	"context"
	"sort"
	"sync"

	"neurovault/domain/core/entities"
	pkgerrors "neurovault/pkg/errors"
)

// CategoryRepository is the in-memory category reference store
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*entities.Category // keyed by name
}

// NewCategoryRepository creates an empty in-memory category repository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[string]*entities.Category),
	}
}

func copyCategory(category *entities.Category) *entities.Category {
	return entities.ReconstructCategory(
		category.ID(),
		category.Name(),
		category.Description(),
		category.Keywords(),
		category.IsActive(),
		category.Order(),
		category.CreatedAt(),
	)
}

// Save persists a category definition
func (r *CategoryRepository) Save(ctx context.Context, category *entities.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.Name()] = copyCategory(category)
	return nil
}

// GetByName retrieves a category by name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[name]
	if !ok {
		return nil, pkgerrors.ErrCategoryNotFound
	}
	return copyCategory(category), nil
}

// ListActive retrieves active categories in display order
func (r *CategoryRepository) ListActive(ctx context.Context) ([]*entities.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entities.Category{}
	for _, category := range r.categories {
		if category.IsActive() {
			out = append(out, copyCategory(category))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order() < out[j].Order()
	})
	return out, nil
}
