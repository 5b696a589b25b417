package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/repository"
)

// pgErrUniqueViolation is the PostgreSQL error code for unique constraint violations
const pgErrUniqueViolation = "23505"

type configStore struct {
	db *pgxpool.Pool
}

// NewConfigStore creates a new PostgreSQL sync config store
func NewConfigStore(db *pgxpool.Pool) repository.ConfigStore {
	return &configStore{db: db}
}

const configColumns = `config_id, owner_id, channel_id, channel_name, database_id, database_name,
		trigger_emoji, sync_interval_minutes, max_messages_per_sync, is_active, last_sync,
		total_messages_synced, total_errors, retry_attempts, retry_delay_ms, tags,
		filters, page_template, created_at, updated_at`

// Create stores a new sync config. The database assigns the config ID and
// timestamps, which are written back onto cfg.
func (s *configStore) Create(ctx context.Context, cfg *domain.SyncConfig) error {
	filtersJSON, err := json.Marshal(cfg.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	templateJSON, err := json.Marshal(cfg.PageTemplate)
	if err != nil {
		return fmt.Errorf("marshal page template: %w", err)
	}

	query := `
		INSERT INTO sync_configs (
			owner_id, channel_id, channel_name, database_id, database_name,
			trigger_emoji, sync_interval_minutes, max_messages_per_sync, is_active,
			retry_attempts, retry_delay_ms, tags, filters, page_template
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING config_id, created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		cfg.OwnerID, cfg.ChannelID, cfg.ChannelName, cfg.DatabaseID, cfg.DatabaseName,
		cfg.TriggerEmoji, cfg.SyncIntervalMinutes, cfg.MaxMessagesPerSync, cfg.IsActive,
		cfg.RetryAttempts, cfg.RetryDelayMS, cfg.Tags, filtersJSON, templateJSON,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sync config: %w", err)
	}
	return nil
}

// Get retrieves one config by ID
func (s *configStore) Get(ctx context.Context, configID string) (*domain.SyncConfig, error) {
	query := `SELECT ` + configColumns + ` FROM sync_configs WHERE config_id = $1`

	cfg, err := scanConfig(s.db.QueryRow(ctx, query, configID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
		}
		return nil, fmt.Errorf("get sync config: %w", err)
	}
	return cfg, nil
}

// List retrieves configs matching the filter
func (s *configStore) List(ctx context.Context, filter repository.ConfigFilter) ([]domain.SyncConfig, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + configColumns + ` FROM sync_configs WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.OwnerID != nil {
		fmt.Fprintf(&queryBuilder, " AND owner_id = $%d", argNum)
		args = append(args, *filter.OwnerID)
		argNum++
	}

	if filter.ChannelID != nil {
		fmt.Fprintf(&queryBuilder, " AND channel_id = $%d", argNum)
		args = append(args, *filter.ChannelID)
		argNum++
	}

	if filter.IsActive != nil {
		fmt.Fprintf(&queryBuilder, " AND is_active = $%d", argNum)
		args = append(args, *filter.IsActive)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list sync configs: %w", err)
	}
	defer rows.Close()

	return scanConfigs(rows)
}

// ListActive retrieves all active configs
func (s *configStore) ListActive(ctx context.Context) ([]domain.SyncConfig, error) {
	active := true
	return s.List(ctx, repository.ConfigFilter{IsActive: &active})
}

// ListActiveByChannel retrieves active configs bound to one channel
func (s *configStore) ListActiveByChannel(ctx context.Context, channelID string) ([]domain.SyncConfig, error) {
	active := true
	return s.List(ctx, repository.ConfigFilter{ChannelID: &channelID, IsActive: &active})
}

// Update replaces the mutable fields of a config
func (s *configStore) Update(ctx context.Context, cfg *domain.SyncConfig) error {
	filtersJSON, err := json.Marshal(cfg.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	templateJSON, err := json.Marshal(cfg.PageTemplate)
	if err != nil {
		return fmt.Errorf("marshal page template: %w", err)
	}

	query := `
		UPDATE sync_configs SET
			channel_name = $2, database_id = $3, database_name = $4, trigger_emoji = $5,
			sync_interval_minutes = $6, max_messages_per_sync = $7, is_active = $8,
			retry_attempts = $9, retry_delay_ms = $10, tags = $11,
			filters = $12, page_template = $13, updated_at = NOW()
		WHERE config_id = $1
		RETURNING updated_at
	`

	err = s.db.QueryRow(ctx, query,
		cfg.ID, cfg.ChannelName, cfg.DatabaseID, cfg.DatabaseName, cfg.TriggerEmoji,
		cfg.SyncIntervalMinutes, cfg.MaxMessagesPerSync, cfg.IsActive,
		cfg.RetryAttempts, cfg.RetryDelayMS, cfg.Tags, filtersJSON, templateJSON,
	).Scan(&cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, cfg.ID)
		}
		return fmt.Errorf("update sync config: %w", err)
	}
	return nil
}

// Delete removes a config. History rows cascade.
func (s *configStore) Delete(ctx context.Context, configID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sync_configs WHERE config_id = $1`, configID)
	if err != nil {
		return fmt.Errorf("delete sync config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
	}
	return nil
}

// RecordSyncSuccess bumps the synced counter and advances last_sync
func (s *configStore) RecordSyncSuccess(ctx context.Context, configID string, syncedAt time.Time) error {
	query := `
		UPDATE sync_configs
		SET total_messages_synced = total_messages_synced + 1,
		    last_sync = $2,
		    updated_at = NOW()
		WHERE config_id = $1
	`
	tag, err := s.db.Exec(ctx, query, configID, syncedAt)
	if err != nil {
		return fmt.Errorf("record sync success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
	}
	return nil
}

// RecordSyncError bumps the error counter
func (s *configStore) RecordSyncError(ctx context.Context, configID string) error {
	query := `
		UPDATE sync_configs
		SET total_errors = total_errors + 1,
		    updated_at = NOW()
		WHERE config_id = $1
	`
	tag, err := s.db.Exec(ctx, query, configID)
	if err != nil {
		return fmt.Errorf("record sync error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, configID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*domain.SyncConfig, error) {
	var cfg domain.SyncConfig
	var filtersJSON, templateJSON []byte

	err := row.Scan(
		&cfg.ID, &cfg.OwnerID, &cfg.ChannelID, &cfg.ChannelName, &cfg.DatabaseID, &cfg.DatabaseName,
		&cfg.TriggerEmoji, &cfg.SyncIntervalMinutes, &cfg.MaxMessagesPerSync, &cfg.IsActive, &cfg.LastSync,
		&cfg.TotalMessagesSynced, &cfg.TotalErrors, &cfg.RetryAttempts, &cfg.RetryDelayMS, &cfg.Tags,
		&filtersJSON, &templateJSON, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(filtersJSON) > 0 {
		if err := json.Unmarshal(filtersJSON, &cfg.Filters); err != nil {
			return nil, fmt.Errorf("unmarshal filters: %w", err)
		}
	}
	if len(templateJSON) > 0 {
		if err := json.Unmarshal(templateJSON, &cfg.PageTemplate); err != nil {
			return nil, fmt.Errorf("unmarshal page template: %w", err)
		}
	}
	return &cfg, nil
}

func scanConfigs(rows pgx.Rows) ([]domain.SyncConfig, error) {
	configs := []domain.SyncConfig{}
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync configs: %w", err)
	}
	return configs, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
