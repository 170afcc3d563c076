package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayService_ForgettingCurve(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stale := time.Now().Add(-8 * 24 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "morning runs", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "race training", "", nil, 5, true, time.Now())
	synapse := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, stale)

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SynapsesDecayed)
	assert.Equal(t, 0, report.SynapsesPruned)

	got, err := f.synapses.GetByID(ctx, synapse.ID())
	require.NoError(t, err)
	// 0.3 - 0.05*(1 - 0.1*0.8)
	assert.InDelta(t, 0.254, got.Weight().Value(), 1e-9)
}

func TestDecayService_RecentSynapseUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	synapse := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.0, time.Now())

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.SynapsesDecayed)

	got, err := f.synapses.GetByID(ctx, synapse.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, got.Weight().Value(), 1e-9)
}

func TestDecayService_PrunesWeakSynapses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stale := time.Now().Add(-8 * 24 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	synapse := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.12, 0.0, stale)

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	// 0.12 - 0.05 = 0.07, at or below the 0.1 threshold
	assert.Equal(t, 1, report.SynapsesDecayed)
	assert.Equal(t, 1, report.SynapsesPruned)

	_, err = f.synapses.GetByID(ctx, synapse.ID())
	assert.Error(t, err)
	assert.Equal(t, 1, f.publisher.CountByType("synapse.pruned"))
}

func TestDecayService_EntryDecayAndPrune(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inactive := time.Now().Add(-48 * time.Hour)

	dying := seedAgedEntry(t, f, "user-1", "fleeting thought", "", nil, 1, false, inactive)
	neighbor := seedAgedEntry(t, f, "user-1", "neighbor", "", nil, 5, true, time.Now())
	orphanable := seedSynapse(t, f, "user-1", dying.ID(), neighbor.ID(), 0.8, 0.9, time.Now())

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.EntriesDecayed)
	assert.Equal(t, 1, report.EntriesPruned)

	_, err = f.entries.GetByID(ctx, dying.ID())
	assert.Error(t, err)

	// Pruning an entry takes its synapses with it
	_, err = f.synapses.GetByID(ctx, orphanable.ID())
	assert.Error(t, err)

	_, err = f.entries.GetByID(ctx, neighbor.ID())
	assert.NoError(t, err)
}

func TestDecayService_ConsolidatedEntriesExempt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inactive := time.Now().Add(-72 * time.Hour)

	entry := seedAgedEntry(t, f, "user-1", "permanent insight", "projects", nil, 10, true, inactive)
	entry.Consolidate("career")
	entry.MarkEventsAsCommitted()
	require.NoError(t, f.entries.Save(ctx, entry))

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.EntriesDecayed)
	assert.Equal(t, 0, report.EntriesPruned)

	got, err := f.entries.GetByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.Equal(t, 10, got.Strength().Value())
}

func TestDecayService_DreamStabilizesStrongRecentSynapses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	strong := seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.7, 0.1, time.Now().Add(-time.Hour))

	c := seedAgedEntry(t, f, "user-1", "c", "", nil, 5, true, time.Now())
	weak := seedSynapse(t, f, "user-1", a.ID(), c.ID(), 0.3, 0.1, time.Now().Add(-time.Hour))

	report, err := f.decay().Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SynapsesStabilized)

	got, err := f.synapses.GetByID(ctx, strong.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got.Stability().Value(), 1e-9)

	got, err = f.synapses.GetByID(ctx, weak.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got.Stability().Value(), 1e-9)
}
