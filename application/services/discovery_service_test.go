package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/application/ports"
	"neurovault/domain/core/valueobjects"
	pkgerrors "neurovault/pkg/errors"
)

func TestDiscoveryService_AppliesTopicsAndSynapses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seedCategory(t, f, "cat-projects", "projects", 1)

	a := seedEntry(t, f, "user-1", "started the garden redesign")
	b := seedEntry(t, f, "user-1", "bought cedar planks for raised beds")

	classifier := &fakeClassifier{}
	svc := f.discovery(classifier, &fakeSummarizer{})
	classifier.result = classificationFor(a.ID().String(), b.ID().String())

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.UsersProcessed)
	assert.Equal(t, 0, report.UsersSkipped)
	assert.Equal(t, 1, report.TopicsApplied)
	assert.Equal(t, 1, report.SynapsesCreated)

	got, err := f.entries.GetByID(ctx, a.ID())
	require.NoError(t, err)
	assert.True(t, got.IsAnalyzed())
	assert.Equal(t, "projects", got.Category())
	assert.Equal(t, 7, got.Strength().Value())
	assert.Contains(t, got.Tags(), "garden")

	synapse, err := f.synapses.FindByPair(ctx, "user-1", a.ID(), b.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, synapse.Weight().Value(), 1e-9)
}

func TestDiscoveryService_ClassifierSeesBoundedWorkingSet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	fresh := seedEntry(t, f, "user-1", "new thought")
	old := seedAgedEntry(t, f, "user-1", "established context", "projects", nil, 5, true, time.Now().Add(-72*time.Hour))

	classifier := &fakeClassifier{}
	svc := f.discovery(classifier, &fakeSummarizer{})

	_, err := svc.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, classifier.calls)

	require.Len(t, classifier.lastReq.DeltaEntries, 1)
	assert.Equal(t, fresh.ID().String(), classifier.lastReq.DeltaEntries[0].ID)
	require.Len(t, classifier.lastReq.ContextEntries, 1)
	assert.Equal(t, old.ID().String(), classifier.lastReq.ContextEntries[0].ID)
}

func TestDiscoveryService_RejectsForeignSourceIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	fresh := seedEntry(t, f, "user-1", "new thought")
	old := seedAgedEntry(t, f, "user-1", "context entry", "projects", nil, 5, true, time.Now().Add(-72*time.Hour))

	classifier := &fakeClassifier{}
	svc := f.discovery(classifier, &fakeSummarizer{})

	// A proposal sourced from a context entry violates the contract and
	// discards the whole response
	result := classificationFor(fresh.ID().String(), old.ID().String())
	result.Synapses[0].SourceID = old.ID().String()
	result.Synapses[0].TargetID = fresh.ID().String()
	classifier.result = result

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.UsersSkipped)
	assert.Equal(t, 0, report.TopicsApplied)
	assert.Equal(t, 0, report.SynapsesCreated)

	got, err := f.entries.GetByID(ctx, fresh.ID())
	require.NoError(t, err)
	assert.False(t, got.IsAnalyzed())
}

func TestDiscoveryService_ClassifierFailureSkipsUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	entry := seedEntry(t, f, "user-1", "new thought")

	classifier := &fakeClassifier{err: errors.New("model timeout")}
	svc := f.discovery(classifier, &fakeSummarizer{})

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.UsersSkipped)
	assert.Equal(t, 0, report.UsersProcessed)

	// Still eligible next cycle
	got, err := f.entries.GetByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.False(t, got.IsAnalyzed())
}

func TestDiscoveryService_LinkCapPerSource(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	source := seedEntry(t, f, "user-1", "hub entry")
	targets := make([]string, 5)
	for i := range targets {
		targets[i] = seedEntry(t, f, "user-1", "target").ID().String()
	}

	classifier := &fakeClassifier{result: classificationFor(source.ID().String())}
	for _, target := range targets {
		classifier.result.Synapses = append(classifier.result.Synapses, synapseProposal(source.ID().String(), target))
	}

	svc := f.discovery(classifier, &fakeSummarizer{})
	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.SynapsesCreated)

	edges, err := f.synapses.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, edges, 3)
}

func TestDiscoveryService_LinkCapKeepsStrongestProposals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	source := seedEntry(t, f, "user-1", "hub entry")
	targets := make([]string, 4)
	for i := range targets {
		targets[i] = seedEntry(t, f, "user-1", "target").ID().String()
	}

	// Weakest proposal arrives first; the cap must keep the strongest three
	classifier := &fakeClassifier{result: classificationFor(source.ID().String())}
	for i, strength := range []float64{0.1, 0.9, 0.8, 0.7} {
		classifier.result.Synapses = append(classifier.result.Synapses, ports.SynapseProposal{
			SourceID: source.ID().String(),
			TargetID: targets[i],
			Reason:   "shared project",
			Strength: strength,
		})
	}

	svc := f.discovery(classifier, &fakeSummarizer{})
	report, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.SynapsesCreated)

	for _, i := range []int{1, 2, 3} {
		target, err := valueobjects.NewEntryIDFromString(targets[i])
		require.NoError(t, err)
		_, err = f.synapses.FindByPair(ctx, "user-1", source.ID(), target)
		assert.NoError(t, err)
	}

	weakest, err := valueobjects.NewEntryIDFromString(targets[0])
	require.NoError(t, err)
	_, err = f.synapses.FindByPair(ctx, "user-1", source.ID(), weakest)
	assert.ErrorIs(t, err, pkgerrors.ErrSynapseNotFound)
}

func TestDiscoveryService_EmptyDeltaStillConsolidates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := time.Now().Add(-72 * time.Hour)

	seedAgedEntry(t, f, "user-1", "earned wisdom one", "health", []string{"sleep"}, 10, true, old)
	seedAgedEntry(t, f, "user-1", "earned wisdom two", "health", []string{"sleep"}, 10, true, old)

	classifier := &fakeClassifier{}
	svc := f.discovery(classifier, &fakeSummarizer{summary: "sleep matters"})

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, classifier.calls)
	assert.Equal(t, 2, report.EntriesPromoted)

	memory, err := f.memories.FindByUserAndTopic(ctx, "user-1", "sleep")
	require.NoError(t, err)
	assert.Equal(t, "sleep matters", memory.Summary())
}
