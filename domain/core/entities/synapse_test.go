package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/domain/config"
	"neurovault/domain/core/valueobjects"
)

func orderedIDs(t *testing.T) (valueobjects.EntryID, valueobjects.EntryID) {
	t.Helper()
	a := valueobjects.NewEntryID()
	b := valueobjects.NewEntryID()
	if b.Less(a) {
		return b, a
	}
	return a, b
}

func TestNewSynapse_CanonicalOrdering(t *testing.T) {
	lo, hi := orderedIDs(t)

	forward, err := NewSynapse("user-1", lo, hi, "shared topic", nil)
	require.NoError(t, err)
	reverse, err := NewSynapse("user-1", hi, lo, "shared topic", nil)
	require.NoError(t, err)

	assert.Equal(t, forward.From(), reverse.From())
	assert.Equal(t, forward.To(), reverse.To())
	assert.True(t, forward.From().Less(forward.To()))
	assert.True(t, forward.Connects(hi, lo))
}

func TestNewSynapse_SeedValues(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", cfg)
	require.NoError(t, err)

	assert.InDelta(t, 0.3, synapse.Weight().Value(), 1e-9)
	assert.InDelta(t, 0.1, synapse.Stability().Value(), 1e-9)
}

func TestNewSynapse_RejectsSelfLink(t *testing.T) {
	id := valueobjects.NewEntryID()
	_, err := NewSynapse("user-1", id, id, "", nil)
	assert.Error(t, err)
}

func TestSynapse_Fire(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", cfg)
	require.NoError(t, err)
	require.InDelta(t, 0.3, synapse.Weight().Value(), 1e-9)

	synapse.Fire(cfg)
	assert.InDelta(t, 0.45, synapse.Weight().Value(), 1e-9)
}

func TestSynapse_FireSaturatesAtOne(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", cfg)
	require.NoError(t, err)

	prev := synapse.Weight().Value()
	for i := 0; i < 20; i++ {
		synapse.Fire(cfg)
		w := synapse.Weight().Value()
		assert.GreaterOrEqual(t, w, prev)
		assert.LessOrEqual(t, w, 1.0)
		prev = w
	}
	assert.InDelta(t, 1.0, synapse.Weight().Value(), 1e-9)
}

func TestSynapse_Decay(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", cfg)
	require.NoError(t, err)

	// effective decay: 0.05 * (1 - 0.1*0.8) = 0.046
	synapse.Decay(cfg)
	assert.InDelta(t, 0.254, synapse.Weight().Value(), 1e-9)
}

func TestSynapse_DecayDampedByStability(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	stable, err := ReconstructSynapse("syn-1", "user-1", lo, hi,
		valueobjects.NewWeight(0.5), valueobjects.NewStability(1.0), "",
		time.Now(), time.Now(), time.Now())
	require.NoError(t, err)
	fragile, err := ReconstructSynapse("syn-2", "user-1", lo, hi,
		valueobjects.NewWeight(0.5), valueobjects.NewStability(0.0), "",
		time.Now(), time.Now(), time.Now())
	require.NoError(t, err)

	stable.Decay(cfg)
	fragile.Decay(cfg)

	assert.Greater(t, stable.Weight().Value(), fragile.Weight().Value())
}

func TestSynapse_DecayNeverGoesNegative(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := ReconstructSynapse("syn-1", "user-1", lo, hi,
		valueobjects.NewWeight(0.02), valueobjects.NewStability(0), "",
		time.Now(), time.Now(), time.Now())
	require.NoError(t, err)

	synapse.Decay(cfg)
	assert.Equal(t, 0.0, synapse.Weight().Value())
}

func TestSynapse_Weaken(t *testing.T) {
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", nil)
	require.NoError(t, err)

	deleted := synapse.Weaken(0.1)
	assert.False(t, deleted)
	assert.InDelta(t, 0.2, synapse.Weight().Value(), 1e-9)
}

func TestSynapse_WeakenToZeroSignalsDeletion(t *testing.T) {
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", nil)
	require.NoError(t, err)
	require.InDelta(t, 0.3, synapse.Weight().Value(), 1e-9)

	deleted := synapse.Weaken(1.0)
	assert.True(t, deleted)
}

func TestSynapse_IsPrunable(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)

	synapse, err := ReconstructSynapse("syn-1", "user-1", lo, hi,
		valueobjects.NewWeight(0.1), valueobjects.NewStability(0), "",
		time.Now(), time.Now(), time.Now())
	require.NoError(t, err)

	assert.True(t, synapse.IsPrunable(cfg.PruneThreshold))

	synapse.Fire(cfg)
	assert.False(t, synapse.IsPrunable(cfg.PruneThreshold))
}

func TestSynapse_Stabilize(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	lo, hi := orderedIDs(t)
	now := time.Now()

	qualifying, err := ReconstructSynapse("syn-1", "user-1", lo, hi,
		valueobjects.NewWeight(0.6), valueobjects.NewStability(0.1), "",
		now.Add(-time.Hour), now, now)
	require.NoError(t, err)

	assert.True(t, qualifying.Stabilize(cfg, now))
	assert.InDelta(t, 0.12, qualifying.Stability().Value(), 1e-9)

	// too weak
	weak, err := ReconstructSynapse("syn-2", "user-1", lo, hi,
		valueobjects.NewWeight(0.4), valueobjects.NewStability(0.1), "",
		now.Add(-time.Hour), now, now)
	require.NoError(t, err)
	assert.False(t, weak.Stabilize(cfg, now))

	// fired too long ago
	stale, err := ReconstructSynapse("syn-3", "user-1", lo, hi,
		valueobjects.NewWeight(0.6), valueobjects.NewStability(0.1), "",
		now.Add(-8*24*time.Hour), now, now)
	require.NoError(t, err)
	assert.False(t, stale.Stabilize(cfg, now))
}

func TestSynapse_Other(t *testing.T) {
	lo, hi := orderedIDs(t)

	synapse, err := NewSynapse("user-1", lo, hi, "", nil)
	require.NoError(t, err)

	other, ok := synapse.Other(lo)
	require.True(t, ok)
	assert.True(t, other.Equals(hi))

	_, ok = synapse.Other(valueobjects.NewEntryID())
	assert.False(t, ok)
}
