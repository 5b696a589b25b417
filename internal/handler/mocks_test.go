package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/repository"
)

// fakeConfigStore is an in-memory ConfigStore for handler tests
type fakeConfigStore struct {
	configs map[string]domain.SyncConfig
	nextID  int
	err     error
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{configs: map[string]domain.SyncConfig{}}
}

func (f *fakeConfigStore) Create(_ context.Context, cfg *domain.SyncConfig) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	cfg.ID = fmt.Sprintf("cfg-%d", f.nextID)
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	f.configs[cfg.ID] = *cfg
	return nil
}

func (f *fakeConfigStore) Get(_ context.Context, configID string) (*domain.SyncConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	cfg, ok := f.configs[configID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return &cfg, nil
}

func (f *fakeConfigStore) List(_ context.Context, filter repository.ConfigFilter) ([]domain.SyncConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SyncConfig
	for _, cfg := range f.configs {
		if filter.ChannelID != nil && cfg.ChannelID != *filter.ChannelID {
			continue
		}
		if filter.OwnerID != nil && cfg.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.IsActive != nil && cfg.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeConfigStore) ListActive(ctx context.Context) ([]domain.SyncConfig, error) {
	active := true
	return f.List(ctx, repository.ConfigFilter{IsActive: &active})
}

func (f *fakeConfigStore) ListActiveByChannel(ctx context.Context, channelID string) ([]domain.SyncConfig, error) {
	active := true
	return f.List(ctx, repository.ConfigFilter{ChannelID: &channelID, IsActive: &active})
}

func (f *fakeConfigStore) Update(_ context.Context, cfg *domain.SyncConfig) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.configs[cfg.ID]; !ok {
		return domain.ErrConfigNotFound
	}
	cfg.UpdatedAt = time.Now()
	f.configs[cfg.ID] = *cfg
	return nil
}

func (f *fakeConfigStore) Delete(_ context.Context, configID string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.configs[configID]; !ok {
		return domain.ErrConfigNotFound
	}
	delete(f.configs, configID)
	return nil
}

func (f *fakeConfigStore) RecordSyncSuccess(_ context.Context, configID string, syncedAt time.Time) error {
	cfg, ok := f.configs[configID]
	if !ok {
		return domain.ErrConfigNotFound
	}
	cfg.TotalMessagesSynced++
	cfg.LastSync = &syncedAt
	f.configs[configID] = cfg
	return nil
}

func (f *fakeConfigStore) RecordSyncError(_ context.Context, configID string) error {
	cfg, ok := f.configs[configID]
	if !ok {
		return domain.ErrConfigNotFound
	}
	cfg.TotalErrors++
	f.configs[configID] = cfg
	return nil
}

// fakeHistoryStore is an in-memory HistoryStore for handler tests
type fakeHistoryStore struct {
	rows []domain.SyncHistory
	err  error
}

func (f *fakeHistoryStore) InsertPending(_ context.Context, h *domain.SyncHistory) error {
	if f.err != nil {
		return f.err
	}
	h.ID = int64(len(f.rows) + 1)
	h.Status = domain.StatusPending
	f.rows = append(f.rows, *h)
	return nil
}

func (f *fakeHistoryStore) MarkSuccess(_ context.Context, historyID int64, ref domain.DocumentRef, pageTitle string, duration time.Duration) error {
	return f.err
}

func (f *fakeHistoryStore) MarkFailed(_ context.Context, historyID int64, code domain.ErrorCode, message string) error {
	return f.err
}

func (f *fakeHistoryStore) MarkRetrying(_ context.Context, historyID int64, retryCount int) error {
	return f.err
}

func (f *fakeHistoryStore) List(_ context.Context, filter repository.HistoryFilter) ([]domain.SyncHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SyncHistory
	for _, row := range f.rows {
		if filter.ConfigID != nil && row.ConfigID != *filter.ConfigID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeHistoryStore) CountByStatus(_ context.Context, configID *string) (map[domain.SyncStatus]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := map[domain.SyncStatus]int{}
	for _, row := range f.rows {
		if configID != nil && row.ConfigID != *configID {
			continue
		}
		counts[row.Status]++
	}
	return counts, nil
}

func (f *fakeHistoryStore) PurgeSuccessesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, f.err
}

// noopRecorder satisfies the sync package's Recorder
type noopRecorder struct{}

func (noopRecorder) RecordEventObserved()            {}
func (noopRecorder) RecordReactionMatched()          {}
func (noopRecorder) RecordSyncSuccess(time.Duration) {}
func (noopRecorder) RecordSyncFailure()              {}
func (noopRecorder) RecordSyncSkipped()              {}
func (noopRecorder) RecordReconciliationPass()       {}
