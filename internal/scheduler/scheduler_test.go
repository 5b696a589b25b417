package scheduler

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/repository"
	"github.com/chroniclebot/chronicle/internal/sync"
	"github.com/chroniclebot/chronicle/internal/testing/leaktest"
)

type stubConfigStore struct {
	mu      stdsync.Mutex
	configs map[string]*domain.SyncConfig
}

func newStubConfigStore() *stubConfigStore {
	return &stubConfigStore{configs: map[string]*domain.SyncConfig{}}
}

func (s *stubConfigStore) put(cfg domain.SyncConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = &cfg
}

func (s *stubConfigStore) Create(_ context.Context, cfg *domain.SyncConfig) error {
	s.put(*cfg)
	return nil
}

func (s *stubConfigStore) Get(_ context.Context, configID string) (*domain.SyncConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[configID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	copied := *cfg
	return &copied, nil
}

func (s *stubConfigStore) List(_ context.Context, _ repository.ConfigFilter) ([]domain.SyncConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SyncConfig{}
	for _, cfg := range s.configs {
		out = append(out, *cfg)
	}
	return out, nil
}

func (s *stubConfigStore) ListActive(ctx context.Context) ([]domain.SyncConfig, error) {
	all, _ := s.List(ctx, repository.ConfigFilter{})
	active := []domain.SyncConfig{}
	for _, cfg := range all {
		if cfg.IsActive {
			active = append(active, cfg)
		}
	}
	return active, nil
}

func (s *stubConfigStore) ListActiveByChannel(_ context.Context, _ string) ([]domain.SyncConfig, error) {
	return nil, nil
}

func (s *stubConfigStore) Update(_ context.Context, cfg *domain.SyncConfig) error {
	s.put(*cfg)
	return nil
}

func (s *stubConfigStore) Delete(_ context.Context, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, configID)
	return nil
}

func (s *stubConfigStore) RecordSyncSuccess(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func (s *stubConfigStore) RecordSyncError(_ context.Context, _ string) error { return nil }

type stubHistoryStore struct {
	repository.HistoryStore
	purged      int64
	purgeCalled bool
}

func (s *stubHistoryStore) PurgeSuccessesBefore(_ context.Context, _ time.Time) (int64, error) {
	s.purgeCalled = true
	return s.purged, nil
}

type stubRunner struct {
	mu    stdsync.Mutex
	calls []string
}

func (r *stubRunner) RunPass(_ context.Context, cfg *domain.SyncConfig) (sync.PassResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cfg.ID)
	return sync.PassResult{ConfigID: cfg.ID}, nil
}

func (r *stubRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func activeConfig(id string) domain.SyncConfig {
	return domain.SyncConfig{
		ID:                  id,
		ChannelID:           "C1",
		DatabaseID:          "db-1",
		SyncIntervalMinutes: 10,
		IsActive:            true,
	}
}

func TestScheduler_ApplyAndRemove(t *testing.T) {
	store := newStubConfigStore()
	sched := New(store, &stubHistoryStore{}, &stubRunner{})

	sched.Apply(activeConfig("cfg-1"))
	assert.Len(t, sched.runners, 1)

	// Re-applying replaces rather than duplicates
	sched.Apply(activeConfig("cfg-1"))
	assert.Len(t, sched.runners, 1)

	inactive := activeConfig("cfg-1")
	inactive.IsActive = false
	sched.Apply(inactive)
	assert.Empty(t, sched.runners)

	sched.Apply(activeConfig("cfg-2"))
	sched.Remove("cfg-2")
	assert.Empty(t, sched.runners)

	sched.Stop()
}

func TestScheduler_Start_SchedulesActiveConfigs(t *testing.T) {
	store := newStubConfigStore()
	store.put(activeConfig("cfg-1"))
	inactive := activeConfig("cfg-2")
	inactive.IsActive = false
	store.put(inactive)

	sched := New(store, &stubHistoryStore{}, &stubRunner{})
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	assert.Len(t, sched.runners, 1)
}

func TestScheduler_RunOnce_ReadyConfig(t *testing.T) {
	store := newStubConfigStore()
	store.put(activeConfig("cfg-1"))
	runner := &stubRunner{}
	sched := New(store, &stubHistoryStore{}, runner)

	sched.runOnce("cfg-1")
	assert.Equal(t, 1, runner.callCount())
}

func TestScheduler_RunOnce_IntervalGate(t *testing.T) {
	store := newStubConfigStore()
	cfg := activeConfig("cfg-1")
	recent := time.Now().Add(-time.Minute)
	cfg.LastSync = &recent
	store.put(cfg)
	runner := &stubRunner{}
	sched := New(store, &stubHistoryStore{}, runner)

	sched.runOnce("cfg-1")
	assert.Zero(t, runner.callCount(), "pass skipped while interval not elapsed")
}

func TestScheduler_RunOnce_DeactivatedConfigCancelsSchedule(t *testing.T) {
	store := newStubConfigStore()
	cfg := activeConfig("cfg-1")
	store.put(cfg)
	runner := &stubRunner{}
	sched := New(store, &stubHistoryStore{}, runner)
	sched.Apply(cfg)

	cfg.IsActive = false
	store.put(cfg)

	sched.runOnce("cfg-1")
	assert.Zero(t, runner.callCount())
	assert.Empty(t, sched.runners)

	sched.Stop()
}

func TestScheduler_StopReleasesTimers(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	store := newStubConfigStore()
	store.put(activeConfig("cfg-1"))
	store.put(activeConfig("cfg-2"))

	sched := New(store, &stubHistoryStore{}, &stubRunner{})
	require.NoError(t, sched.Start(context.Background()))

	sched.Stop()
	checker.Check(0)
}

func TestScheduler_PurgeOnce(t *testing.T) {
	history := &stubHistoryStore{purged: 7}
	sched := New(newStubConfigStore(), history, &stubRunner{})

	sched.purgeOnce()
	assert.True(t, history.purgeCalled)
}
