package domain

import "time"

// SyncStatus is the lifecycle state of a history row.
type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusSuccess  SyncStatus = "success"
	StatusFailed   SyncStatus = "failed"
	StatusRetrying SyncStatus = "retrying"
)

// Valid reports whether s is a known status value.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRetrying:
		return true
	}
	return false
}

// SyncHistory is the audit record of one sync attempt. The unique index on
// (message_id, message_ts, config_id) makes the pending insert the
// idempotency gate: concurrent attempts for the same message race on it and
// exactly one wins.
type SyncHistory struct {
	ID           int64      `json:"history_id" db:"history_id"`
	ConfigID     string     `json:"config_id" db:"config_id"`
	MessageID    string     `json:"message_id" db:"message_id"`
	MessageTS    string     `json:"message_ts" db:"message_ts"`
	AuthorID     string     `json:"author_id" db:"author_id"`
	AuthorName   string     `json:"author_name" db:"author_name"`
	ChannelID    string     `json:"channel_id" db:"channel_id"`
	ChannelName  string     `json:"channel_name" db:"channel_name"`
	MessageText  string     `json:"message_text" db:"message_text"`
	Reactions    []Reaction `json:"reactions" db:"reactions"`
	PageID       string     `json:"page_id,omitempty" db:"page_id"`
	PageURL      string     `json:"page_url,omitempty" db:"page_url"`
	PageTitle    string     `json:"page_title,omitempty" db:"page_title"`
	Status       SyncStatus `json:"status" db:"status"`
	DurationMS   int64      `json:"duration_ms" db:"duration_ms"`
	RetryCount   int        `json:"retry_count" db:"retry_count"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty" db:"last_retry_at"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	ErrorCode    ErrorCode  `json:"error_code,omitempty" db:"error_code"`
	SyncedAt     *time.Time `json:"synced_at,omitempty" db:"synced_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// DocumentRef identifies a created page in the document store.
type DocumentRef struct {
	PageID string `json:"page_id"`
	URL    string `json:"page_url"`
}
