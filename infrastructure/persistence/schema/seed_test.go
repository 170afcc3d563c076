package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memstore "neurovault/infrastructure/persistence/memory"
)

func TestSeedCategories(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewCategoryRepository()

	seeded, err := SeedCategories(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 11, seeded)

	categories, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 11)

	fallback, err := repo.GetByName(ctx, "uncategorized")
	require.NoError(t, err)
	assert.Equal(t, 99, fallback.Order())

	// Idempotent: a second seed leaves existing categories alone
	seeded, err = SeedCategories(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, seeded)
}
