package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/domain/core/entities"
)

func TestConsolidationService_CreatesMemory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seedCategory(t, f, "cat-health", "health", 1)
	old := time.Now().Add(-48 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "slept 8 hours, felt great", "health", []string{"sleep"}, 10, true, old)
	b := seedAgedEntry(t, f, "user-1", "skipped caffeine after noon", "health", []string{"sleep", "caffeine"}, 10, true, old)

	summarizer := &fakeSummarizer{summary: "sleep quality tracks caffeine timing", tags: []string{"sleep"}}
	svc := f.consolidation(summarizer)

	promoted, err := svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, promoted)

	memory, err := f.memories.FindByUserAndTopic(ctx, "user-1", "sleep, caffeine")
	require.NoError(t, err)
	assert.Equal(t, "sleep quality tracks caffeine timing", memory.Summary())
	assert.Equal(t, "cat-health", memory.CategoryID())
	assert.Equal(t, 10, memory.Strength().Value())
	assert.Len(t, memory.SourceEntryIDs(), 2)

	for _, entry := range []*entities.VaultEntry{a, b} {
		got, getErr := f.entries.GetByID(ctx, entry.ID())
		require.NoError(t, getErr)
		assert.True(t, got.IsConsolidated())
	}
	assert.Equal(t, 2, f.publisher.CountByType("entry.consolidated"))
}

func TestConsolidationService_MergesIntoExisting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	seedAgedEntry(t, f, "user-1", "first insight", "health", []string{"sleep"}, 10, true, old)
	summarizer := &fakeSummarizer{summary: "v1"}
	svc := f.consolidation(summarizer)

	promoted, err := svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, promoted)

	// A later cluster under the same topic extends the record
	seedAgedEntry(t, f, "user-1", "second insight", "health", []string{"sleep"}, 10, true, old)
	summarizer.summary = "v2"

	promoted, err = svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	memories, err := f.memories.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "v2", memories[0].Summary())
	assert.Len(t, memories[0].SourceEntryIDs(), 2)
}

func TestConsolidationService_BelowThresholdIgnored(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seedAgedEntry(t, f, "user-1", "almost there", "health", nil, 9, true, time.Now())

	svc := f.consolidation(&fakeSummarizer{})
	promoted, err := svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)

	memories, err := f.memories.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestConsolidationService_SummarizerFailureSkipsCluster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	entry := seedAgedEntry(t, f, "user-1", "insight", "health", []string{"sleep"}, 10, true, old)

	svc := f.consolidation(&fakeSummarizer{err: errors.New("model unavailable")})
	promoted, err := svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)

	// Entry stays eligible for the next cycle
	got, err := f.entries.GetByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.False(t, got.IsConsolidated())

	memories, err := f.memories.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestConsolidationService_ClustersByCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	seedAgedEntry(t, f, "user-1", "insight a", "health", []string{"sleep"}, 10, true, old)
	seedAgedEntry(t, f, "user-1", "insight b", "projects", []string{"garden"}, 10, true, old)

	svc := f.consolidation(&fakeSummarizer{})
	promoted, err := svc.ConsolidateUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, promoted)

	memories, err := f.memories.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, memories, 2)
}
