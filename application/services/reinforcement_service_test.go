package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

func TestReinforcementService_FireCreatesThenReinforces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "trail running")
	b := seedEntry(t, f, "user-1", "knee recovery")

	view, err := svc.Fire(ctx, "user-1", a.ID().String(), b.ID().String(), "co-recall")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, view.Weight, 1e-9)
	assert.InDelta(t, 0.1, view.Stability, 1e-9)

	// Reversed argument order reaches the same edge
	view, err = svc.Fire(ctx, "user-1", b.ID().String(), a.ID().String(), "")
	require.NoError(t, err)
	assert.InDelta(t, 0.45, view.Weight, 1e-9)

	stats, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestReinforcementService_FireSaturatesAtOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")

	var last float64
	for i := 0; i < 10; i++ {
		view, err := svc.Fire(ctx, "user-1", a.ID().String(), b.ID().String(), "")
		require.NoError(t, err)
		require.GreaterOrEqual(t, view.Weight, last)
		last = view.Weight
	}
	assert.InDelta(t, 1.0, last, 1e-9)
}

func TestReinforcementService_FireMissingEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	ghost := valueobjects.NewEntryID()

	_, err := svc.Fire(ctx, "user-1", a.ID().String(), ghost.String(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrEntryNotFound)
}

func TestReinforcementService_FireRejectsForeignEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	mine := seedEntry(t, f, "user-1", "mine")
	theirs := seedEntry(t, f, "user-2", "theirs")

	_, err := svc.Fire(ctx, "user-1", mine.ID().String(), theirs.ID().String(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
}

func TestReinforcementService_FireRejectsSelfLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")

	_, err := svc.Fire(ctx, "user-1", a.ID().String(), a.ID().String(), "")
	assert.Error(t, err)
}

func TestReinforcementService_WeakenDefaultAmount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, time.Now())

	view, err := svc.Weaken(ctx, "user-1", a.ID().String(), b.ID().String(), 0)
	require.NoError(t, err)
	assert.False(t, view.Deleted)
	assert.InDelta(t, 0.1, view.Weight, 1e-9)
}

func TestReinforcementService_WeakenToDeletion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	synapse := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, time.Now())

	view, err := svc.Weaken(ctx, "user-1", a.ID().String(), b.ID().String(), 1.0)
	require.NoError(t, err)
	assert.True(t, view.Deleted)

	_, err = f.synapses.GetByID(ctx, synapse.ID())
	assert.Error(t, err)
}

func TestReinforcementService_FireAllPairwise(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	c := seedEntry(t, f, "user-1", "c")

	fired, err := svc.FireAll(ctx, "user-1", []string{
		a.ID().String(), b.ID().String(), c.ID().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, fired)

	stats, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func TestReinforcementService_StatsWeakThresholdIsExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	c := seedEntry(t, f, "user-1", "c")
	d := seedEntry(t, f, "user-1", "d")

	// Exactly at the boundary: neither weak nor strong
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), c.ID(), 0.2, 0.1, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), d.ID(), 0.8, 0.1, time.Now())

	stats, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Weak)
	assert.Equal(t, 1, stats.Strong)
}

func TestReinforcementService_ContextSkipsOrphanEdges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	c := seedEntry(t, f, "user-1", "c")
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.6, 0.1, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), c.ID(), 0.4, 0.1, time.Now())

	// Delete one endpoint out from under its edge
	require.NoError(t, f.entries.Delete(ctx, c.ID()))

	neighbors, err := svc.Context(ctx, "user-1", a.ID().String(), 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, b.ID().String(), neighbors[0].EntryID)
}

func TestReinforcementService_Strongest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.reinforcement()

	a := seedEntry(t, f, "user-1", "a")
	b := seedEntry(t, f, "user-1", "b")
	c := seedEntry(t, f, "user-1", "c")
	strong := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.9, 0.5, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), c.ID(), 0.2, 0.1, time.Now())

	views, err := svc.Strongest(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, strong.ID(), views[0].ID)
}
