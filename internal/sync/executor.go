package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/repository"
)

// Per-step timeouts for the sync pipeline
const (
	metadataTimeout   = 10 * time.Second
	pageCreateTimeout = 30 * time.Second
	confirmTimeout    = 10 * time.Second
	maxRetryBackoff   = 30 * time.Second
)

// Outcome is the terminal state of one Execute call.
type Outcome string

const (
	OutcomeSynced  Outcome = "synced"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ChatClient is the message platform surface the pipeline needs.
type ChatClient interface {
	MessageAt(ctx context.Context, channelID, messageTS string) (*domain.MessageSnapshot, error)
	History(ctx context.Context, channelID string, oldest time.Time, limit int) ([]domain.MessageSnapshot, error)
	Author(ctx context.Context, userID string) (domain.Author, error)
	Channel(ctx context.Context, channelID string) (domain.Channel, error)
	PostThreadReply(ctx context.Context, channelID, threadTS, text string) error
}

// DocumentClient is the document store surface the pipeline needs.
type DocumentClient interface {
	CreatePage(ctx context.Context, databaseID string, doc *domain.DocumentPayload) (domain.DocumentRef, error)
}

// Recorder receives runtime counters from the pipeline.
type Recorder interface {
	RecordEventObserved()
	RecordReactionMatched()
	RecordSyncSuccess(duration time.Duration)
	RecordSyncFailure()
	RecordSyncSkipped()
	RecordReconciliationPass()
}

// Executor runs the sync pipeline for one (config, message) pair: filter,
// dedup, claim a pending history row, synthesize, write the page with
// retries, finalize. Safe for concurrent use across worker goroutines.
type Executor struct {
	configs       repository.ConfigStore
	history       repository.HistoryStore
	chat          ChatClient
	docs          DocumentClient
	dedup         *Deduplicator
	stats         Recorder
	confirmations bool

	// sleep is swappable so tests can skip real backoff waits
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a sync executor
func NewExecutor(
	configs repository.ConfigStore,
	history repository.HistoryStore,
	chat ChatClient,
	docs DocumentClient,
	dedup *Deduplicator,
	stats Recorder,
	confirmations bool,
) *Executor {
	return &Executor{
		configs:       configs,
		history:       history,
		chat:          chat,
		docs:          docs,
		dedup:         dedup,
		stats:         stats,
		confirmations: confirmations,
		sleep:         sleepCtx,
	}
}

// Execute runs the pipeline. Filtered and already-recorded messages return
// OutcomeSkipped with no error. Failures finalize the history row with a
// classified error before returning.
func (e *Executor) Execute(ctx context.Context, cfg *domain.SyncConfig, msg *domain.MessageSnapshot) (Outcome, error) {
	log := logger.FromContext(ctx).With(
		"config_id", cfg.ID,
		"channel_id", msg.ChannelID,
		"message_ts", msg.Timestamp,
	)

	if !cfg.Filters.Allows(msg) {
		log.Debug("message filtered out")
		e.stats.RecordSyncSkipped()
		return OutcomeSkipped, nil
	}

	if e.dedup.Seen(cfg.ID, msg.ChannelID, msg.Timestamp) {
		log.Debug("message seen recently, skipping")
		e.stats.RecordSyncSkipped()
		return OutcomeSkipped, nil
	}

	start := time.Now()
	author, channel := e.resolveMetadata(ctx, cfg, msg)

	entry := &domain.SyncHistory{
		ConfigID:    cfg.ID,
		MessageID:   msg.MessageID(),
		MessageTS:   msg.Timestamp,
		AuthorID:    msg.AuthorID,
		AuthorName:  author.Name,
		ChannelID:   msg.ChannelID,
		ChannelName: channel.Name,
		MessageText: msg.Text,
		Reactions:   msg.Reactions,
	}

	if err := e.history.InsertPending(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateMessage) {
			log.Debug("message already recorded, skipping")
			e.dedup.Mark(cfg.ID, msg.ChannelID, msg.Timestamp)
			e.stats.RecordSyncSkipped()
			return OutcomeSkipped, nil
		}
		e.stats.RecordSyncFailure()
		return OutcomeFailed, fmt.Errorf("claim history row: %w", err)
	}
	e.dedup.Mark(cfg.ID, msg.ChannelID, msg.Timestamp)

	doc := Synthesize(cfg, msg, author, channel, time.Now())

	ref, err := e.createWithRetry(ctx, cfg, entry, doc)
	if err != nil {
		code := domain.CodeOf(err)
		log.Error("sync failed", "error", err, "error_code", code)
		if markErr := e.history.MarkFailed(ctx, entry.ID, code, err.Error()); markErr != nil {
			log.Error("failed to finalize history row", "error", markErr)
		}
		if recErr := e.configs.RecordSyncError(ctx, cfg.ID); recErr != nil {
			log.Error("failed to record config error", "error", recErr)
		}
		e.stats.RecordSyncFailure()
		return OutcomeFailed, err
	}

	duration := time.Since(start)
	if err := e.history.MarkSuccess(ctx, entry.ID, ref, doc.Title, duration); err != nil {
		log.Error("failed to finalize history row", "error", err)
	}
	if err := e.configs.RecordSyncSuccess(ctx, cfg.ID, time.Now()); err != nil {
		log.Error("failed to record config success", "error", err)
	}
	e.stats.RecordSyncSuccess(duration)

	log.Info("message synced",
		"page_id", ref.PageID,
		"duration_ms", duration.Milliseconds(),
	)

	if e.confirmations {
		e.postConfirmation(ctx, msg, doc.Title, ref)
	}
	return OutcomeSynced, nil
}

// resolveMetadata looks up author and channel display names. Lookups degrade
// to fallback names rather than failing the sync; the page is still worth
// creating when display metadata is unavailable.
func (e *Executor) resolveMetadata(ctx context.Context, cfg *domain.SyncConfig, msg *domain.MessageSnapshot) (domain.Author, domain.Channel) {
	log := logger.FromContext(ctx)

	mctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	author, err := e.chat.Author(mctx, msg.AuthorID)
	if err != nil {
		log.Warn("author lookup failed", "author_id", msg.AuthorID, "error", err)
		author = domain.Author{ID: msg.AuthorID, Name: "Unknown User", IsBot: msg.AuthorIsBot}
	}

	channel, err := e.chat.Channel(mctx, msg.ChannelID)
	if err != nil {
		log.Warn("channel lookup failed", "channel_id", msg.ChannelID, "error", err)
		name := cfg.ChannelName
		if name == "" {
			name = "unknown"
		}
		channel = domain.Channel{ID: msg.ChannelID, Name: name}
	}
	return author, channel
}

// createWithRetry writes the page, retrying transient failures with
// exponential backoff from the config's base delay. Non-retryable errors and
// exhausted attempts return the last error.
func (e *Executor) createWithRetry(ctx context.Context, cfg *domain.SyncConfig, entry *domain.SyncHistory, doc *domain.DocumentPayload) (domain.DocumentRef, error) {
	log := logger.FromContext(ctx)

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, pageCreateTimeout)
		ref, err := e.docs.CreatePage(cctx, cfg.DatabaseID, doc)
		cancel()
		if err == nil {
			return ref, nil
		}
		lastErr = err

		if attempt == attempts || !domain.IsRetryable(err) {
			break
		}

		if markErr := e.history.MarkRetrying(ctx, entry.ID, attempt); markErr != nil {
			log.Error("failed to mark history retrying", "error", markErr)
		}

		backoff := cfg.RetryDelay() << (attempt - 1)
		if backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
		log.Warn("page create failed, retrying",
			"attempt", attempt, "backoff", backoff, "error", err)

		if err := e.sleep(ctx, backoff); err != nil {
			return domain.DocumentRef{}, err
		}
	}
	return domain.DocumentRef{}, lastErr
}

// postConfirmation replies in-thread that the message was archived. Best
// effort: confirmation failures never affect the sync outcome.
func (e *Executor) postConfirmation(ctx context.Context, msg *domain.MessageSnapshot, title string, ref domain.DocumentRef) {
	cctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	text := fmt.Sprintf("Synced to Notion: <%s|%s>", ref.URL, title)
	if err := e.chat.PostThreadReply(cctx, msg.ChannelID, msg.Timestamp, text); err != nil {
		logger.FromContext(ctx).Warn("confirmation post failed",
			"channel_id", msg.ChannelID, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
