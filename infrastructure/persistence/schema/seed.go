package schema

import (
	"context"
	"fmt"

	"neurovault/application/ports"
	"neurovault/domain/core/entities"
)

// SeedCategories writes the stock category taxonomy when none exists yet.
// Discovery needs at least one active category to sort topics into, so fresh
// development tables get the defaults. Existing categories are left alone.
func SeedCategories(ctx context.Context, repo ports.CategoryRepository) (int, error) {
	existing, err := repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, category := range entities.DefaultCategories() {
		if err := repo.Save(ctx, category); err != nil {
			return seeded, fmt.Errorf("failed to seed category %s: %w", category.Name(), err)
		}
		seeded++
	}
	return seeded, nil
}
