package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/repository"
)

// Watcher is notified when a config's lifecycle changes so per-config
// reconciliation timers can be started, rescheduled or cancelled.
type Watcher interface {
	Apply(cfg domain.SyncConfig)
	Remove(configID string)
}

// PassResult summarizes one reconciliation pass over a channel window.
type PassResult struct {
	ConfigID string `json:"config_id"`
	Scanned  int    `json:"scanned"`
	Synced   int    `json:"synced"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// StatsReport aggregates persisted sync totals for the stats endpoint.
type StatsReport struct {
	ActiveConfigs int                       `json:"active_configs"`
	TotalConfigs  int                       `json:"total_configs"`
	ByStatus      map[domain.SyncStatus]int `json:"by_status"`
	SuccessRate   float64                   `json:"success_rate"`
}

// Service owns config lifecycle and reconciliation passes. All sync work
// funnels through the executor so live and scheduled paths behave alike.
type Service struct {
	configs  repository.ConfigStore
	history  repository.HistoryStore
	executor *Executor
	chat     ChatClient
	stats    Recorder
	watcher  Watcher
}

// NewService creates the sync service
func NewService(
	configs repository.ConfigStore,
	history repository.HistoryStore,
	executor *Executor,
	chat ChatClient,
	stats Recorder,
) *Service {
	return &Service{
		configs:  configs,
		history:  history,
		executor: executor,
		chat:     chat,
		stats:    stats,
	}
}

// SetWatcher registers the scheduler notification hook. Optional; a nil
// watcher disables notifications.
func (s *Service) SetWatcher(w Watcher) {
	s.watcher = w
}

// CreateConfig validates and stores a new config, then schedules it. At most
// one config may exist per (owner, channel) pair; the store does not enforce
// this, so the check happens here before insert.
func (s *Service) CreateConfig(ctx context.Context, cfg *domain.SyncConfig) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	existing, err := s.configs.List(ctx, repository.ConfigFilter{ChannelID: &cfg.ChannelID})
	if err != nil {
		return fmt.Errorf("check existing configs: %w", err)
	}
	for i := range existing {
		if existing[i].ChannelID == cfg.ChannelID && existing[i].OwnerID == cfg.OwnerID {
			return fmt.Errorf("%w: config %s already covers this owner and channel",
				domain.ErrInvalidInput, existing[i].ID)
		}
	}

	if err := s.configs.Create(ctx, cfg); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("sync config created",
		"config_id", cfg.ID, "channel_id", cfg.ChannelID, "database_id", cfg.DatabaseID)

	if s.watcher != nil && cfg.IsActive {
		s.watcher.Apply(*cfg)
	}
	return nil
}

// GetConfig retrieves one config
func (s *Service) GetConfig(ctx context.Context, configID string) (*domain.SyncConfig, error) {
	return s.configs.Get(ctx, configID)
}

// ListConfigs retrieves configs matching the filter
func (s *Service) ListConfigs(ctx context.Context, filter repository.ConfigFilter) ([]domain.SyncConfig, error) {
	return s.configs.List(ctx, filter)
}

// UpdateConfig validates and stores changed fields, then reschedules
func (s *Service) UpdateConfig(ctx context.Context, cfg *domain.SyncConfig) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.configs.Update(ctx, cfg); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("sync config updated",
		"config_id", cfg.ID, "is_active", cfg.IsActive)

	if s.watcher != nil {
		if cfg.IsActive {
			s.watcher.Apply(*cfg)
		} else {
			s.watcher.Remove(cfg.ID)
		}
	}
	return nil
}

// DeleteConfig removes a config and cancels its schedule
func (s *Service) DeleteConfig(ctx context.Context, configID string) error {
	if err := s.configs.Delete(ctx, configID); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("sync config deleted", "config_id", configID)

	if s.watcher != nil {
		s.watcher.Remove(configID)
	}
	return nil
}

// History retrieves history rows matching the filter
func (s *Service) History(ctx context.Context, filter repository.HistoryFilter) ([]domain.SyncHistory, error) {
	return s.history.List(ctx, filter)
}

// Stats aggregates persisted totals, optionally scoped to one config
func (s *Service) Stats(ctx context.Context, configID *string) (*StatsReport, error) {
	counts, err := s.history.CountByStatus(ctx, configID)
	if err != nil {
		return nil, err
	}

	all, err := s.configs.List(ctx, repository.ConfigFilter{})
	if err != nil {
		return nil, err
	}
	active := 0
	for _, cfg := range all {
		if cfg.IsActive {
			active++
		}
	}

	report := &StatsReport{
		ActiveConfigs: active,
		TotalConfigs:  len(all),
		ByStatus:      counts,
	}
	finished := counts[domain.StatusSuccess] + counts[domain.StatusFailed]
	if finished > 0 {
		report.SuccessRate = float64(counts[domain.StatusSuccess]) / float64(finished)
	}
	return report, nil
}

// RunPass scans the config's channel window and syncs every message that
// carries the trigger reaction. Used by both the scheduler and manual runs.
func (s *Service) RunPass(ctx context.Context, cfg *domain.SyncConfig) (PassResult, error) {
	result := PassResult{ConfigID: cfg.ID}
	log := logger.FromContext(ctx).With("config_id", cfg.ID, "channel_id", cfg.ChannelID)

	oldest := time.Now().Add(-cfg.SyncInterval())
	messages, err := s.chat.History(ctx, cfg.ChannelID, oldest, cfg.MaxMessagesPerSync)
	if err != nil {
		return result, fmt.Errorf("fetch channel history: %w", err)
	}
	result.Scanned = len(messages)

	for i := range messages {
		msg := &messages[i]
		if !hasTriggerReaction(cfg, msg) {
			continue
		}
		outcome, err := s.executor.Execute(ctx, cfg, msg)
		switch outcome {
		case OutcomeSynced:
			result.Synced++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed++
			log.Warn("pass sync failed", "message_ts", msg.Timestamp, "error", err)
		}
	}

	s.stats.RecordReconciliationPass()
	log.Info("reconciliation pass complete",
		"scanned", result.Scanned, "synced", result.Synced,
		"skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// RunConfigNow runs a manual pass for one config, bypassing the interval gate
func (s *Service) RunConfigNow(ctx context.Context, configID string) (PassResult, error) {
	cfg, err := s.configs.Get(ctx, configID)
	if err != nil {
		return PassResult{ConfigID: configID}, err
	}
	return s.RunPass(ctx, cfg)
}

// RunChannelNow runs a manual pass for every active config on a channel
func (s *Service) RunChannelNow(ctx context.Context, channelID string) ([]PassResult, error) {
	configs, err := s.configs.ListActiveByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.runAll(ctx, configs), nil
}

// RunAllNow runs a manual pass for every active config
func (s *Service) RunAllNow(ctx context.Context) ([]PassResult, error) {
	configs, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.runAll(ctx, configs), nil
}

func (s *Service) runAll(ctx context.Context, configs []domain.SyncConfig) []PassResult {
	results := make([]PassResult, 0, len(configs))
	for i := range configs {
		result, err := s.RunPass(ctx, &configs[i])
		if err != nil {
			logger.FromContext(ctx).Error("manual pass failed",
				"config_id", configs[i].ID, "error", err)
		}
		results = append(results, result)
	}
	return results
}

// ChannelStatus renders a human-readable status summary for one channel,
// used by the mention command.
func (s *Service) ChannelStatus(ctx context.Context, channelID string) (string, error) {
	configs, err := s.configs.ListActiveByChannel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if len(configs) == 0 {
		return "No active sync configs for this channel.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d active sync config(s) for this channel:\n", len(configs))
	for _, cfg := range configs {
		last := "never"
		if cfg.LastSync != nil {
			last = cfg.LastSync.Format(time.RFC1123)
		}
		fmt.Fprintf(&b, "- :%s: -> %s | every %dm | synced %d | errors %d | last sync %s\n",
			CanonicalEmoji(cfg.TriggerEmoji), displayName(cfg),
			cfg.SyncIntervalMinutes, cfg.TotalMessagesSynced, cfg.TotalErrors, last)
	}
	return b.String(), nil
}

func displayName(cfg domain.SyncConfig) string {
	if cfg.DatabaseName != "" {
		return cfg.DatabaseName
	}
	return cfg.DatabaseID
}

func hasTriggerReaction(cfg *domain.SyncConfig, msg *domain.MessageSnapshot) bool {
	for _, r := range msg.Reactions {
		if EmojiMatches(r.Name, cfg.TriggerEmoji) {
			return true
		}
	}
	return false
}
