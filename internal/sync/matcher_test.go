package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclebot/chronicle/internal/domain"
)

func TestMatcher_Match(t *testing.T) {
	store := newFakeConfigStore()
	store.byChannel["C1"] = []domain.SyncConfig{
		{ID: "cfg-pencil", ChannelID: "C1", TriggerEmoji: "pencil"},
		{ID: "cfg-star", ChannelID: "C1", TriggerEmoji: "star"},
		{ID: "cfg-glyph", ChannelID: "C1", TriggerEmoji: "📝"},
	}
	m := NewMatcher(store)

	matched := m.Match(context.Background(), "C1", "pencil")
	require.Len(t, matched, 2)
	assert.Equal(t, "cfg-pencil", matched[0].ID)
	assert.Equal(t, "cfg-glyph", matched[1].ID)
}

func TestMatcher_Match_ColonWrapped(t *testing.T) {
	store := newFakeConfigStore()
	store.byChannel["C1"] = []domain.SyncConfig{
		{ID: "cfg-1", ChannelID: "C1", TriggerEmoji: ":bookmark:"},
	}
	m := NewMatcher(store)

	assert.Len(t, m.Match(context.Background(), "C1", "bookmark"), 1)
}

func TestMatcher_Match_NoConfigs(t *testing.T) {
	m := NewMatcher(newFakeConfigStore())
	assert.Empty(t, m.Match(context.Background(), "C-empty", "pencil"))
}

func TestMatcher_Match_StoreErrorReturnsEmpty(t *testing.T) {
	store := newFakeConfigStore()
	store.listErr = errors.New("db down")
	m := NewMatcher(store)

	assert.Empty(t, m.Match(context.Background(), "C1", "pencil"))
}
