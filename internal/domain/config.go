package domain

import (
	"fmt"
	"time"
)

// Sync config limits and defaults
const (
	MinSyncIntervalMinutes = 1
	MaxSyncIntervalMinutes = 60
	MinMessagesPerSync     = 1
	MaxMessagesPerSync     = 100
	MinRetryAttempts       = 1
	MaxRetryAttempts       = 10
	MinRetryDelayMS        = 100
	MaxRetryDelayMS        = 10000

	DefaultTriggerEmoji        = "pencil"
	DefaultSyncIntervalMinutes = 10
	DefaultMaxMessagesPerSync  = 20
	DefaultRetryAttempts       = 3
	DefaultRetryDelayMS        = 1000
	DefaultTitleFormat         = "Slack: {author} - {date}"
	DefaultMinReactions        = 1
)

// SyncConfig binds one Slack channel to one Notion database. The trigger
// emoji decides which reactions start a sync for this config.
type SyncConfig struct {
	ID                  string       `json:"config_id" db:"config_id"`
	OwnerID             string       `json:"owner_id" db:"owner_id"`
	ChannelID           string       `json:"channel_id" db:"channel_id"`
	ChannelName         string       `json:"channel_name" db:"channel_name"`
	DatabaseID          string       `json:"database_id" db:"database_id"`
	DatabaseName        string       `json:"database_name" db:"database_name"`
	TriggerEmoji        string       `json:"trigger_emoji" db:"trigger_emoji"`
	SyncIntervalMinutes int          `json:"sync_interval_minutes" db:"sync_interval_minutes"`
	MaxMessagesPerSync  int          `json:"max_messages_per_sync" db:"max_messages_per_sync"`
	IsActive            bool         `json:"is_active" db:"is_active"`
	LastSync            *time.Time   `json:"last_sync,omitempty" db:"last_sync"`
	TotalMessagesSynced int          `json:"total_messages_synced" db:"total_messages_synced"`
	TotalErrors         int          `json:"total_errors" db:"total_errors"`
	RetryAttempts       int          `json:"retry_attempts" db:"retry_attempts"`
	RetryDelayMS        int          `json:"retry_delay_ms" db:"retry_delay_ms"`
	Tags                []string     `json:"tags" db:"tags"`
	Filters             Filters      `json:"filters" db:"filters"`
	PageTemplate        PageTemplate `json:"page_template" db:"page_template"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

// Filters narrows which messages a config will sync.
type Filters struct {
	ExcludeBots          bool     `json:"exclude_bots"`
	ExcludeThreadReplies bool     `json:"exclude_thread_replies"`
	MinReactions         int      `json:"min_reactions"`
	AllowedAuthors       []string `json:"allowed_authors,omitempty"`
	BlockedAuthors       []string `json:"blocked_authors,omitempty"`
}

// Allows reports whether a message passes this filter set.
func (f Filters) Allows(msg *MessageSnapshot) bool {
	if f.ExcludeBots && msg.AuthorIsBot {
		return false
	}
	if f.ExcludeThreadReplies && msg.ThreadTS != "" && msg.ThreadTS != msg.Timestamp {
		return false
	}
	if f.MinReactions > 0 && msg.TotalReactions() < f.MinReactions {
		return false
	}
	if len(f.AllowedAuthors) > 0 && !contains(f.AllowedAuthors, msg.AuthorID) {
		return false
	}
	if contains(f.BlockedAuthors, msg.AuthorID) {
		return false
	}
	return true
}

func (f Filters) isZero() bool {
	return !f.ExcludeBots && !f.ExcludeThreadReplies && f.MinReactions == 0 &&
		len(f.AllowedAuthors) == 0 && len(f.BlockedAuthors) == 0
}

// PageTemplate controls how the synthesized Notion page is rendered.
type PageTemplate struct {
	TitleFormat      string `json:"title_format"`
	IncludeMetadata  bool   `json:"include_metadata"`
	IncludeReactions bool   `json:"include_reactions"`
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
// Called before validation on create so partial requests are accepted.
func (c *SyncConfig) ApplyDefaults() {
	if c.TriggerEmoji == "" {
		c.TriggerEmoji = DefaultTriggerEmoji
	}
	if c.SyncIntervalMinutes == 0 {
		c.SyncIntervalMinutes = DefaultSyncIntervalMinutes
	}
	if c.MaxMessagesPerSync == 0 {
		c.MaxMessagesPerSync = DefaultMaxMessagesPerSync
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryDelayMS == 0 {
		c.RetryDelayMS = DefaultRetryDelayMS
	}
	if c.PageTemplate.TitleFormat == "" {
		c.PageTemplate = PageTemplate{
			TitleFormat:      DefaultTitleFormat,
			IncludeMetadata:  true,
			IncludeReactions: true,
		}
	}
	if c.Filters.isZero() {
		c.Filters = Filters{
			ExcludeBots:  true,
			MinReactions: DefaultMinReactions,
		}
	}
}

// Validate checks the tunable ranges. Violations wrap ErrInvalidInput.
func (c *SyncConfig) Validate() error {
	if c.ChannelID == "" {
		return fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}
	if c.DatabaseID == "" {
		return fmt.Errorf("%w: database_id is required", ErrInvalidInput)
	}
	if c.SyncIntervalMinutes < MinSyncIntervalMinutes || c.SyncIntervalMinutes > MaxSyncIntervalMinutes {
		return fmt.Errorf("%w: sync_interval_minutes must be between %d and %d",
			ErrInvalidInput, MinSyncIntervalMinutes, MaxSyncIntervalMinutes)
	}
	if c.MaxMessagesPerSync < MinMessagesPerSync || c.MaxMessagesPerSync > MaxMessagesPerSync {
		return fmt.Errorf("%w: max_messages_per_sync must be between %d and %d",
			ErrInvalidInput, MinMessagesPerSync, MaxMessagesPerSync)
	}
	if c.RetryAttempts < MinRetryAttempts || c.RetryAttempts > MaxRetryAttempts {
		return fmt.Errorf("%w: retry_attempts must be between %d and %d",
			ErrInvalidInput, MinRetryAttempts, MaxRetryAttempts)
	}
	if c.RetryDelayMS < MinRetryDelayMS || c.RetryDelayMS > MaxRetryDelayMS {
		return fmt.Errorf("%w: retry_delay_ms must be between %d and %d",
			ErrInvalidInput, MinRetryDelayMS, MaxRetryDelayMS)
	}
	return nil
}

// SyncInterval returns the reconciliation period as a duration.
func (c *SyncConfig) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}

// RetryDelay returns the base backoff delay as a duration.
func (c *SyncConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// ReadyForSync reports whether enough time has passed since the last
// successful sync for a reconciliation pass to run. A config that has
// never synced is always ready.
func (c *SyncConfig) ReadyForSync(now time.Time) bool {
	if c.LastSync == nil {
		return true
	}
	return now.Sub(*c.LastSync) >= c.SyncInterval()
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
