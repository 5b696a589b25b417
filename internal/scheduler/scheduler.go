package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/logger"
	"github.com/chroniclebot/chronicle/internal/metrics"
	"github.com/chroniclebot/chronicle/internal/repository"
	"github.com/chroniclebot/chronicle/internal/sync"
)

// Retention and pass bounds
const (
	retentionDays     = 30
	retentionInterval = 24 * time.Hour
	passTimeout       = 2 * time.Minute
)

// Runner executes one reconciliation pass. Satisfied by sync.Service.
type Runner interface {
	RunPass(ctx context.Context, cfg *domain.SyncConfig) (sync.PassResult, error)
}

// Scheduler owns one timer goroutine per active config, each firing at that
// config's sync interval, plus a daily retention sweep over old history
// rows. It implements sync.Watcher so config changes reschedule immediately.
type Scheduler struct {
	configs repository.ConfigStore
	history repository.HistoryStore
	runner  Runner

	mu      stdsync.Mutex
	runners map[string]chan struct{}

	quit chan struct{}
	wg   stdsync.WaitGroup
}

// New creates a scheduler
func New(configs repository.ConfigStore, history repository.HistoryStore, runner Runner) *Scheduler {
	return &Scheduler{
		configs: configs,
		history: history,
		runner:  runner,
		runners: make(map[string]chan struct{}),
		quit:    make(chan struct{}),
	}
}

// Start schedules every active config and begins the retention sweep
func (s *Scheduler) Start(ctx context.Context) error {
	configs, err := s.configs.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		s.Apply(cfg)
	}

	s.wg.Add(1)
	go s.retentionLoop()

	logger.FromContext(ctx).Info("scheduler started", "configs", len(configs))
	return nil
}

// Apply starts or restarts the timer for a config. Inactive configs are
// removed instead.
func (s *Scheduler) Apply(cfg domain.SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stop, ok := s.runners[cfg.ID]; ok {
		close(stop)
		delete(s.runners, cfg.ID)
	}
	if !cfg.IsActive {
		return
	}

	stop := make(chan struct{})
	s.runners[cfg.ID] = stop
	s.wg.Add(1)
	go s.runLoop(cfg.ID, cfg.SyncInterval(), stop)
}

// Remove cancels the timer for a config
func (s *Scheduler) Remove(configID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.runners[configID]; ok {
		close(stop)
		delete(s.runners, configID)
	}
}

// Stop cancels all timers and waits for in-flight passes
func (s *Scheduler) Stop() {
	close(s.quit)
	s.mu.Lock()
	for id, stop := range s.runners {
		close(stop)
		delete(s.runners, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// runLoop fires one config's reconciliation on its interval. Config state is
// re-fetched on every tick so edits and deactivation take effect without a
// restart.
func (s *Scheduler) runLoop(configID string, interval time.Duration, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(configID)
		case <-stop:
			return
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) runOnce(configID string) {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	log := logger.FromContext(ctx).With("config_id", configID)

	cfg, err := s.configs.Get(ctx, configID)
	if err != nil {
		log.Warn("scheduled pass: config fetch failed", "error", err)
		return
	}
	if !cfg.IsActive {
		log.Info("config no longer active, cancelling schedule")
		s.Remove(configID)
		return
	}
	if !cfg.ReadyForSync(time.Now()) {
		log.Debug("interval not elapsed since last sync, skipping pass")
		return
	}

	if _, err := s.runner.RunPass(ctx, cfg); err != nil {
		log.Error("scheduled pass failed", "error", err)
	}
}

// retentionLoop purges success rows older than the retention window once a
// day. Failed rows are kept so operators can inspect them.
func (s *Scheduler) retentionLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purgeOnce()
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) purgeOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	purged, err := s.history.PurgeSuccessesBefore(ctx, cutoff)
	if err != nil {
		logger.FromContext(ctx).Error("history retention purge failed", "error", err)
		return
	}
	if purged > 0 {
		metrics.RecordHistoryPurged(purged)
		logger.FromContext(ctx).Info("history retention purge complete", "rows", purged)
	}
}
