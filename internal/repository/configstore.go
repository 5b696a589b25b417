package repository

import (
	"context"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// ConfigStore defines the interface for sync config persistence
type ConfigStore interface {
	Create(ctx context.Context, cfg *domain.SyncConfig) error
	Get(ctx context.Context, configID string) (*domain.SyncConfig, error)
	List(ctx context.Context, filter ConfigFilter) ([]domain.SyncConfig, error)
	ListActive(ctx context.Context) ([]domain.SyncConfig, error)
	ListActiveByChannel(ctx context.Context, channelID string) ([]domain.SyncConfig, error)
	Update(ctx context.Context, cfg *domain.SyncConfig) error
	Delete(ctx context.Context, configID string) error

	// RecordSyncSuccess bumps total_messages_synced and advances last_sync.
	RecordSyncSuccess(ctx context.Context, configID string, syncedAt time.Time) error
	// RecordSyncError bumps total_errors.
	RecordSyncError(ctx context.Context, configID string) error
}

// ConfigFilter narrows List results. Nil fields match everything.
type ConfigFilter struct {
	OwnerID   *string
	ChannelID *string
	IsActive  *bool
}
