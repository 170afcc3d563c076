package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
	"neurovault/domain/events"
)

func TestNewVaultEntry(t *testing.T) {
	cfg := config.DefaultDomainConfig()

	entry, err := NewVaultEntry("user-1", "remember to water the plants", "watering reminder", []string{"plants", "home"}, "", cfg)
	require.NoError(t, err)

	assert.False(t, entry.ID().IsZero())
	assert.Equal(t, "user-1", entry.UserID())
	assert.Equal(t, cfg.InitialEntryStrength, entry.Strength().Value())
	assert.False(t, entry.IsAnalyzed())
	assert.False(t, entry.IsConsolidated())
	assert.Equal(t, []string{"plants", "home"}, entry.Tags())

	evts := entry.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "entry.created", evts[0].GetEventType())
}

func TestNewVaultEntry_Validation(t *testing.T) {
	_, err := NewVaultEntry("", "text", "", nil, "", nil)
	assert.Error(t, err)

	_, err = NewVaultEntry("user-1", "", "", nil, "", nil)
	assert.Error(t, err)
}

func TestVaultEntry_ApplyTopic(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "learning go generics", "", []string{"go"}, "", nil)
	require.NoError(t, err)
	require.Equal(t, 5, entry.Strength().Value())

	entry.ApplyTopic("Learning", []string{"go", "generics"}, 3)

	assert.Equal(t, 8, entry.Strength().Value())
	assert.True(t, entry.IsAnalyzed())
	assert.Equal(t, "Learning", entry.Category())
	assert.Equal(t, []string{"go", "generics"}, entry.Tags())
}

func TestVaultEntry_ApplyTopic_ClampsStrength(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)

	entry.ApplyTopic("Learning", nil, 100)

	assert.Equal(t, 10, entry.Strength().Value())
}

func TestVaultEntry_Decay(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)
	require.Equal(t, 5, entry.Strength().Value())

	assert.True(t, entry.Decay(1))
	assert.Equal(t, 4, entry.Strength().Value())
}

func TestVaultEntry_Decay_StopsAtZero(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		entry.Decay(1)
	}

	assert.Equal(t, 0, entry.Strength().Value())
	assert.True(t, entry.IsPrunable())
	assert.False(t, entry.Decay(1))
}

func TestVaultEntry_ConsolidatedNeverDecaysOrPrunes(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)

	entry.Consolidate("Plants")
	require.True(t, entry.IsConsolidated())

	assert.False(t, entry.Decay(1))
	assert.Equal(t, 5, entry.Strength().Value())
	assert.False(t, entry.IsPrunable())
}

func TestVaultEntry_ConsolidateIsOneDirectional(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)

	entry.MarkEventsAsCommitted()
	entry.Consolidate("Plants")
	entry.Consolidate("Plants")

	assert.True(t, entry.IsConsolidated())

	consolidated := 0
	for _, evt := range entry.GetUncommittedEvents() {
		if _, ok := evt.(events.EntryConsolidated); ok {
			consolidated++
		}
	}
	assert.Equal(t, 1, consolidated)
}

func TestVaultEntry_QualifiesForConsolidation(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", nil, "", nil)
	require.NoError(t, err)

	assert.False(t, entry.QualifiesForConsolidation(10))

	entry.ApplyTopic("Learning", nil, 5)
	assert.True(t, entry.QualifiesForConsolidation(10))

	entry.Consolidate("Learning")
	assert.False(t, entry.QualifiesForConsolidation(10))
}

func TestVaultEntry_IsInactiveSince(t *testing.T) {
	entry, err := ReconstructVaultEntry(
		valueobjects.NewEntryID(),
		"user-1", "text", "", nil, "",
		valueobjects.NewStrength(5),
		false, false,
		time.Now().Add(-48*time.Hour),
		time.Now().Add(-48*time.Hour),
		time.Now().Add(-48*time.Hour),
	)
	require.NoError(t, err)

	assert.True(t, entry.IsInactiveSince(time.Now().Add(-24*time.Hour)))

	entry.Touch()
	assert.False(t, entry.IsInactiveSince(time.Now().Add(-24*time.Hour)))
}

func TestVaultEntry_TagUnionDedupes(t *testing.T) {
	entry, err := NewVaultEntry("user-1", "text", "", []string{"a", "b", "a"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, entry.Tags())

	entry.ApplyTopic("", []string{"b", "c"}, 0)
	assert.Equal(t, []string{"a", "b", "c"}, entry.Tags())
}
