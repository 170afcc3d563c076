package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "neurovault/pkg/errors"
)

func (f *fixture) entryService() *EntryService {
	return NewEntryService(f.entries, f.synapses, f.publisher, f.cfg, f.logger)
}

func TestEntryService_Ingest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.entryService()

	view, err := svc.Ingest(ctx, "user-1", "remember to water the ferns", "", []string{"plants"}, "")
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, 5, view.Strength)
	assert.False(t, view.IsAnalyzed)
	assert.Equal(t, []string{"plants"}, view.Tags)

	assert.Equal(t, 1, f.publisher.CountByType("entry.created"))
}

func TestEntryService_IngestRequiresText(t *testing.T) {
	f := newFixture()
	svc := f.entryService()

	_, err := svc.Ingest(context.Background(), "user-1", "", "", nil, "")
	assert.Error(t, err)
}

func TestEntryService_GetRefreshesActivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.entryService()

	stale := time.Now().Add(-48 * time.Hour)
	entry := seedAgedEntry(t, f, "user-1", "old note", "", nil, 3, false, stale)

	view, err := svc.Get(ctx, "user-1", entry.ID().String())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), view.LastActivityAt, time.Minute)

	got, err := f.entries.GetByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.False(t, got.IsInactiveSince(time.Now().Add(-time.Hour)))
}

func TestEntryService_GetRejectsForeignUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.entryService()

	entry := seedEntry(t, f, "user-1", "private note")

	_, err := svc.Get(ctx, "user-2", entry.ID().String())
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
}

func TestEntryService_DeleteRemovesSynapses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.entryService()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	synapse := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.5, 0.1, time.Now())

	require.NoError(t, svc.Delete(ctx, "user-1", a.ID().String()))

	_, err := f.entries.GetByID(ctx, a.ID())
	assert.Error(t, err)
	_, err = f.synapses.GetByID(ctx, synapse.ID())
	assert.Error(t, err)
}
