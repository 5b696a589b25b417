package sync

import (
	"context"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/repository"
)

// Matcher decides which configs a reaction event triggers.
type Matcher struct {
	configs repository.ConfigStore
}

// NewMatcher creates a new matcher backed by the config store
func NewMatcher(configs repository.ConfigStore) *Matcher {
	return &Matcher{configs: configs}
}

// Match returns every active config on the channel whose trigger emoji
// matches the reaction. Returns an empty slice when nothing matches,
// including on store failure; a broken store must not crash event handling.
func (m *Matcher) Match(ctx context.Context, channelID, reaction string) []domain.SyncConfig {
	configs, err := m.configs.ListActiveByChannel(ctx, channelID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load configs for channel",
			"channel_id", channelID, "error", err)
		return nil
	}

	var matched []domain.SyncConfig
	for _, cfg := range configs {
		if EmojiMatches(cfg.TriggerEmoji, reaction) {
			matched = append(matched, cfg)
		}
	}
	return matched
}
