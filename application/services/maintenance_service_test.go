package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "neurovault/pkg/errors"
)

func (f *fixture) maintenance(classifier *fakeClassifier) *MaintenanceService {
	return NewMaintenanceService(
		f.decay(),
		f.discovery(classifier, &fakeSummarizer{}),
		f.lock,
		f.reports,
		f.publisher,
		nil,
		f.logger,
	)
}

func TestMaintenanceService_RunCycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stale := time.Now().Add(-8 * 24 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, stale)

	svc := f.maintenance(&fakeClassifier{})
	require.Equal(t, StateIdle, svc.State())

	report, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 1, report.SynapsesDecayed)
	assert.False(t, report.DiscoverySkipped)
	assert.False(t, report.FinishedAt.IsZero())
	assert.Equal(t, StateIdle, svc.State())

	stored, err := svc.GetReport(ctx, report.CycleID)
	require.NoError(t, err)
	assert.Equal(t, report.SynapsesDecayed, stored.SynapsesDecayed)

	assert.Equal(t, 1, f.publisher.CountByType("maintenance.cycle_completed"))
}

func TestMaintenanceService_RunPhase_DecayOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stale := time.Now().Add(-8 * 24 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, stale)

	classifier := &fakeClassifier{}
	svc := f.maintenance(classifier)

	report, err := svc.RunPhase(ctx, PhaseDecay)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SynapsesDecayed)
	assert.True(t, report.DiscoverySkipped)
	assert.Zero(t, classifier.calls)
}

func TestMaintenanceService_RunPhase_DiscoveryOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stale := time.Now().Add(-8 * 24 * time.Hour)

	a := seedAgedEntry(t, f, "user-1", "a", "", nil, 5, true, time.Now())
	b := seedAgedEntry(t, f, "user-1", "b", "", nil, 5, true, time.Now())
	seedSynapse(t, f, "user-1", a.ID(), b.ID(), 0.3, 0.1, stale)

	svc := f.maintenance(&fakeClassifier{})

	report, err := svc.RunPhase(ctx, PhaseDiscovery)
	require.NoError(t, err)
	assert.Zero(t, report.SynapsesDecayed)
	assert.False(t, report.DiscoverySkipped)
}

func TestMaintenanceService_RunPhase_Unknown(t *testing.T) {
	f := newFixture()

	svc := f.maintenance(&fakeClassifier{})
	report, err := svc.RunPhase(context.Background(), CyclePhase("dreaming"))
	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestMaintenanceService_LeaseContention(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Another holder owns the lease
	release, err := f.lock.Acquire(ctx, "maintenance-cycle", time.Minute)
	require.NoError(t, err)
	defer release(ctx)

	svc := f.maintenance(&fakeClassifier{})
	report, err := svc.RunCycle(ctx)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, pkgerrors.ErrCycleInProgress)
	assert.Equal(t, StateIdle, svc.State())
}

func TestMaintenanceService_LeaseReleasedAfterCycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := f.maintenance(&fakeClassifier{})

	_, err := svc.RunCycle(ctx)
	require.NoError(t, err)

	// Back-to-back cycles must not contend with each other
	_, err = svc.RunCycle(ctx)
	require.NoError(t, err)
}

func TestMaintenanceService_History(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := f.maintenance(&fakeClassifier{})
	first, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	second, err := svc.RunCycle(ctx)
	require.NoError(t, err)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.CycleID, history[0].CycleID)
	assert.Equal(t, first.CycleID, history[1].CycleID)

	history, err = svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
