package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurovault/domain/core/valueobjects"
)

func TestNewLongTermMemory(t *testing.T) {
	sources := []valueobjects.EntryID{valueobjects.NewEntryID(), valueobjects.NewEntryID()}

	memory, err := NewLongTermMemory("user-1", "gardening", "cat-1", "Hobbies",
		"notes about plant care", []string{"plants"}, sources, nil)
	require.NoError(t, err)

	assert.Equal(t, "gardening", memory.Topic())
	assert.Equal(t, 10, memory.Strength().Value())
	assert.Len(t, memory.SourceEntryIDs(), 2)
}

func TestNewLongTermMemory_RequiresSources(t *testing.T) {
	_, err := NewLongTermMemory("user-1", "gardening", "", "", "", nil, nil, nil)
	assert.Error(t, err)
}

func TestLongTermMemory_MergeSourcesIsIdempotent(t *testing.T) {
	a := valueobjects.NewEntryID()
	b := valueobjects.NewEntryID()
	c := valueobjects.NewEntryID()

	memory, err := NewLongTermMemory("user-1", "gardening", "", "", "",
		nil, []valueobjects.EntryID{a, b}, nil)
	require.NoError(t, err)

	added := memory.MergeSources([]valueobjects.EntryID{b, c})
	assert.Equal(t, 1, added)
	assert.Len(t, memory.SourceEntryIDs(), 3)

	added = memory.MergeSources([]valueobjects.EntryID{a, b, c})
	assert.Equal(t, 0, added)
	assert.Len(t, memory.SourceEntryIDs(), 3)
}

func TestLongTermMemory_ReplaceSummary(t *testing.T) {
	memory, err := NewLongTermMemory("user-1", "gardening", "", "", "old summary",
		[]string{"plants"}, []valueobjects.EntryID{valueobjects.NewEntryID()}, nil)
	require.NoError(t, err)

	memory.ReplaceSummary("new summary", []string{"soil"})
	assert.Equal(t, "new summary", memory.Summary())
	assert.Equal(t, []string{"plants", "soil"}, memory.Tags())

	// empty regenerated summary keeps the previous one
	memory.ReplaceSummary("", nil)
	assert.Equal(t, "new summary", memory.Summary())
}
