package di

import (
	"context"

	"neurovault/application/ports"
	"neurovault/domain/core/entities"
)

const categoryCacheTTL = 300 // seconds

// cachedCategoryRepository is a read-through cache over the category
// repository. Categories change rarely and every discovery pass reads the
// active list, so a short TTL saves a table query per user per cycle.
type cachedCategoryRepository struct {
	inner ports.CategoryRepository
	cache ports.Cache
}

func newCachedCategoryRepository(inner ports.CategoryRepository, cache ports.Cache) ports.CategoryRepository {
	return &cachedCategoryRepository{inner: inner, cache: cache}
}

func (r *cachedCategoryRepository) Save(ctx context.Context, category *entities.Category) error {
	if err := r.inner.Save(ctx, category); err != nil {
		return err
	}
	r.cache.Delete(ctx, "categories:active")
	r.cache.Delete(ctx, "categories:name:"+category.Name())
	return nil
}

func (r *cachedCategoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	key := "categories:name:" + name
	if cached, found := r.cache.Get(ctx, key); found {
		if category, ok := cached.(*entities.Category); ok {
			return category, nil
		}
	}

	category, err := r.inner.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, category, categoryCacheTTL)
	return category, nil
}

func (r *cachedCategoryRepository) ListActive(ctx context.Context) ([]*entities.Category, error) {
	if cached, found := r.cache.Get(ctx, "categories:active"); found {
		if categories, ok := cached.([]*entities.Category); ok {
			return categories, nil
		}
	}

	categories, err := r.inner.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, "categories:active", categories, categoryCacheTTL)
	return categories, nil
}
