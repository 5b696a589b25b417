package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/repository"
)

type historyStore struct {
	db *pgxpool.Pool
}

// NewHistoryStore creates a new PostgreSQL sync history store
func NewHistoryStore(db *pgxpool.Pool) repository.HistoryStore {
	return &historyStore{db: db}
}

const historyColumns = `history_id, config_id, message_id, message_ts, author_id, author_name,
		channel_id, channel_name, message_text, reactions, page_id, page_url, page_title,
		status, duration_ms, retry_count, last_retry_at, error_message, error_code,
		synced_at, created_at`

// InsertPending creates the pending row that serializes concurrent attempts.
// A unique violation means another attempt already claimed this message for
// this config and surfaces as domain.ErrDuplicateMessage.
func (s *historyStore) InsertPending(ctx context.Context, h *domain.SyncHistory) error {
	reactionsJSON, err := json.Marshal(h.Reactions)
	if err != nil {
		return fmt.Errorf("marshal reactions: %w", err)
	}

	query := `
		INSERT INTO sync_history (
			config_id, message_id, message_ts, author_id, author_name,
			channel_id, channel_name, message_text, reactions, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING history_id, created_at
	`

	h.Status = domain.StatusPending
	err = s.db.QueryRow(ctx, query,
		h.ConfigID, h.MessageID, h.MessageTS, h.AuthorID, h.AuthorName,
		h.ChannelID, h.ChannelName, h.MessageText, reactionsJSON, h.Status,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: message %s config %s", domain.ErrDuplicateMessage, h.MessageID, h.ConfigID)
		}
		return fmt.Errorf("insert pending history: %w", err)
	}
	return nil
}

// MarkSuccess finalizes a row with the created page reference
func (s *historyStore) MarkSuccess(ctx context.Context, historyID int64, ref domain.DocumentRef, pageTitle string, duration time.Duration) error {
	query := `
		UPDATE sync_history
		SET status = $2, page_id = $3, page_url = $4, page_title = $5,
		    duration_ms = $6, synced_at = NOW(), error_message = NULL, error_code = NULL
		WHERE history_id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		historyID, domain.StatusSuccess, ref.PageID, ref.URL, pageTitle, duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("mark history success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: history %d", domain.ErrNotFound, historyID)
	}
	return nil
}

// MarkFailed finalizes a row with the classified error
func (s *historyStore) MarkFailed(ctx context.Context, historyID int64, code domain.ErrorCode, message string) error {
	query := `
		UPDATE sync_history
		SET status = $2, error_code = $3, error_message = $4
		WHERE history_id = $1
	`
	tag, err := s.db.Exec(ctx, query, historyID, domain.StatusFailed, code, message)
	if err != nil {
		return fmt.Errorf("mark history failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: history %d", domain.ErrNotFound, historyID)
	}
	return nil
}

// MarkRetrying records an in-flight retry attempt
func (s *historyStore) MarkRetrying(ctx context.Context, historyID int64, retryCount int) error {
	query := `
		UPDATE sync_history
		SET status = $2, retry_count = $3, last_retry_at = NOW()
		WHERE history_id = $1
	`
	tag, err := s.db.Exec(ctx, query, historyID, domain.StatusRetrying, retryCount)
	if err != nil {
		return fmt.Errorf("mark history retrying: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: history %d", domain.ErrNotFound, historyID)
	}
	return nil
}

// List retrieves history rows matching the filter, newest first
func (s *historyStore) List(ctx context.Context, filter repository.HistoryFilter) ([]domain.SyncHistory, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + historyColumns + ` FROM sync_history WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.ConfigID != nil {
		fmt.Fprintf(&queryBuilder, " AND config_id = $%d", argNum)
		args = append(args, *filter.ConfigID)
		argNum++
	}

	if filter.ChannelID != nil {
		fmt.Fprintf(&queryBuilder, " AND channel_id = $%d", argNum)
		args = append(args, *filter.ChannelID)
		argNum++
	}

	if filter.Status != nil {
		fmt.Fprintf(&queryBuilder, " AND status = $%d", argNum)
		args = append(args, *filter.Status)
		argNum++
	}

	if filter.Since != nil {
		fmt.Fprintf(&queryBuilder, " AND created_at >= $%d", argNum)
		args = append(args, *filter.Since)
		argNum++
	}

	if filter.Until != nil {
		fmt.Fprintf(&queryBuilder, " AND created_at <= $%d", argNum)
		args = append(args, *filter.Until)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}

	if filter.Offset > 0 {
		fmt.Fprintf(&queryBuilder, " OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list sync history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

// CountByStatus aggregates row counts per status, optionally for one config
func (s *historyStore) CountByStatus(ctx context.Context, configID *string) (map[domain.SyncStatus]int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT status, COUNT(*) FROM sync_history WHERE 1=1`)

	args := []interface{}{}
	if configID != nil {
		queryBuilder.WriteString(" AND config_id = $1")
		args = append(args, *configID)
	}
	queryBuilder.WriteString(" GROUP BY status")

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("count history by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SyncStatus]int)
	for rows.Next() {
		var status domain.SyncStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

// PurgeSuccessesBefore removes old success rows for retention
func (s *historyStore) PurgeSuccessesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sync_history WHERE status = $1 AND created_at < $2`
	tag, err := s.db.Exec(ctx, query, domain.StatusSuccess, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sync history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanHistoryRows(rows pgx.Rows) ([]domain.SyncHistory, error) {
	entries := []domain.SyncHistory{}
	for rows.Next() {
		var h domain.SyncHistory
		var reactionsJSON []byte
		var pageID, pageURL, pageTitle, errMessage, errCode *string

		err := rows.Scan(
			&h.ID, &h.ConfigID, &h.MessageID, &h.MessageTS, &h.AuthorID, &h.AuthorName,
			&h.ChannelID, &h.ChannelName, &h.MessageText, &reactionsJSON, &pageID, &pageURL, &pageTitle,
			&h.Status, &h.DurationMS, &h.RetryCount, &h.LastRetryAt, &errMessage, &errCode,
			&h.SyncedAt, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		if len(reactionsJSON) > 0 {
			if err := json.Unmarshal(reactionsJSON, &h.Reactions); err != nil {
				return nil, fmt.Errorf("unmarshal reactions: %w", err)
			}
		}
		if pageID != nil {
			h.PageID = *pageID
		}
		if pageURL != nil {
			h.PageURL = *pageURL
		}
		if pageTitle != nil {
			h.PageTitle = *pageTitle
		}
		if errMessage != nil {
			h.ErrorMessage = *errMessage
		}
		if errCode != nil {
			h.ErrorCode = domain.ErrorCode(*errCode)
		}

		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync history: %w", err)
	}
	return entries, nil
}
