package repository

import (
	"context"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// HistoryStore defines the interface for sync history persistence
type HistoryStore interface {
	// InsertPending creates a pending row for one attempt. Returns
	// domain.ErrDuplicateMessage when a row for the same
	// (message_id, message_ts, config_id) already exists; this is the
	// serialization point that keeps concurrent syncs idempotent.
	InsertPending(ctx context.Context, h *domain.SyncHistory) error

	MarkSuccess(ctx context.Context, historyID int64, ref domain.DocumentRef, pageTitle string, duration time.Duration) error
	MarkFailed(ctx context.Context, historyID int64, code domain.ErrorCode, message string) error
	MarkRetrying(ctx context.Context, historyID int64, retryCount int) error

	List(ctx context.Context, filter HistoryFilter) ([]domain.SyncHistory, error)
	CountByStatus(ctx context.Context, configID *string) (map[domain.SyncStatus]int, error)

	// PurgeSuccessesBefore deletes success rows older than cutoff and
	// returns how many were removed. Failed rows are kept for inspection.
	PurgeSuccessesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryFilter narrows List results. Nil fields match everything.
type HistoryFilter struct {
	ConfigID  *string
	ChannelID *string
	Status    *domain.SyncStatus
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
