package sync

import (
	"context"
	"sync"
	"time"

	"github.com/chroniclebot/chronicle/internal/domain"
	"github.com/chroniclebot/chronicle/internal/repository"
)

type fakeConfigStore struct {
	mu        sync.Mutex
	configs   map[string]*domain.SyncConfig
	byChannel map[string][]domain.SyncConfig
	listErr   error

	successCalls int
	errorCalls   int
	lastSyncedAt time.Time
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{
		configs:   make(map[string]*domain.SyncConfig),
		byChannel: make(map[string][]domain.SyncConfig),
	}
}

func (f *fakeConfigStore) Create(_ context.Context, cfg *domain.SyncConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = "cfg-generated"
	}
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	copied := *cfg
	f.configs[cfg.ID] = &copied
	return nil
}

func (f *fakeConfigStore) Get(_ context.Context, configID string) (*domain.SyncConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[configID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	copied := *cfg
	return &copied, nil
}

func (f *fakeConfigStore) List(_ context.Context, _ repository.ConfigFilter) ([]domain.SyncConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.SyncConfig{}
	for _, cfg := range f.configs {
		out = append(out, *cfg)
	}
	return out, nil
}

func (f *fakeConfigStore) ListActive(ctx context.Context) ([]domain.SyncConfig, error) {
	all, err := f.List(ctx, repository.ConfigFilter{})
	if err != nil {
		return nil, err
	}
	active := []domain.SyncConfig{}
	for _, cfg := range all {
		if cfg.IsActive {
			active = append(active, cfg)
		}
	}
	return active, nil
}

func (f *fakeConfigStore) ListActiveByChannel(_ context.Context, channelID string) ([]domain.SyncConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byChannel[channelID], nil
}

func (f *fakeConfigStore) Update(_ context.Context, cfg *domain.SyncConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[cfg.ID]; !ok {
		return domain.ErrConfigNotFound
	}
	copied := *cfg
	f.configs[cfg.ID] = &copied
	return nil
}

func (f *fakeConfigStore) Delete(_ context.Context, configID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[configID]; !ok {
		return domain.ErrConfigNotFound
	}
	delete(f.configs, configID)
	return nil
}

func (f *fakeConfigStore) RecordSyncSuccess(_ context.Context, configID string, syncedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successCalls++
	f.lastSyncedAt = syncedAt
	if cfg, ok := f.configs[configID]; ok {
		cfg.TotalMessagesSynced++
		cfg.LastSync = &syncedAt
	}
	return nil
}

func (f *fakeConfigStore) RecordSyncError(_ context.Context, configID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorCalls++
	if cfg, ok := f.configs[configID]; ok {
		cfg.TotalErrors++
	}
	return nil
}

type fakeHistoryStore struct {
	mu        sync.Mutex
	nextID    int64
	inserted  []*domain.SyncHistory
	insertErr error

	successIDs  []int64
	failedIDs   []int64
	failedCodes []domain.ErrorCode
	retryingIDs []int64
	retryCounts []int

	listRows []domain.SyncHistory
	counts   map[domain.SyncStatus]int
	purged   int64
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{counts: map[domain.SyncStatus]int{}}
}

func (f *fakeHistoryStore) InsertPending(_ context.Context, h *domain.SyncHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, prev := range f.inserted {
		if prev.MessageID == h.MessageID && prev.MessageTS == h.MessageTS && prev.ConfigID == h.ConfigID {
			return domain.ErrDuplicateMessage
		}
	}
	f.nextID++
	h.ID = f.nextID
	h.Status = domain.StatusPending
	h.CreatedAt = time.Now()
	copied := *h
	f.inserted = append(f.inserted, &copied)
	return nil
}

func (f *fakeHistoryStore) MarkSuccess(_ context.Context, historyID int64, _ domain.DocumentRef, _ string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successIDs = append(f.successIDs, historyID)
	return nil
}

func (f *fakeHistoryStore) MarkFailed(_ context.Context, historyID int64, code domain.ErrorCode, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedIDs = append(f.failedIDs, historyID)
	f.failedCodes = append(f.failedCodes, code)
	return nil
}

func (f *fakeHistoryStore) MarkRetrying(_ context.Context, historyID int64, retryCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retryingIDs = append(f.retryingIDs, historyID)
	f.retryCounts = append(f.retryCounts, retryCount)
	return nil
}

func (f *fakeHistoryStore) List(_ context.Context, _ repository.HistoryFilter) ([]domain.SyncHistory, error) {
	return f.listRows, nil
}

func (f *fakeHistoryStore) CountByStatus(_ context.Context, _ *string) (map[domain.SyncStatus]int, error) {
	return f.counts, nil
}

func (f *fakeHistoryStore) PurgeSuccessesBefore(_ context.Context, _ time.Time) (int64, error) {
	return f.purged, nil
}

type fakeChatClient struct {
	mu         sync.Mutex
	author     domain.Author
	authorErr  error
	channel    domain.Channel
	channelErr error

	historyMsgs  []domain.MessageSnapshot
	historyErr   error
	historyLimit int

	messageAt    *domain.MessageSnapshot
	messageAtErr error

	replies  []string
	replyErr error
}

func (f *fakeChatClient) MessageAt(_ context.Context, _, _ string) (*domain.MessageSnapshot, error) {
	if f.messageAtErr != nil {
		return nil, f.messageAtErr
	}
	return f.messageAt, nil
}

func (f *fakeChatClient) History(_ context.Context, _ string, _ time.Time, limit int) ([]domain.MessageSnapshot, error) {
	f.mu.Lock()
	f.historyLimit = limit
	f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if limit > 0 && len(f.historyMsgs) > limit {
		return f.historyMsgs[:limit], nil
	}
	return f.historyMsgs, nil
}

func (f *fakeChatClient) Author(_ context.Context, userID string) (domain.Author, error) {
	if f.authorErr != nil {
		return domain.Author{}, f.authorErr
	}
	if f.author.ID == "" {
		return domain.Author{ID: userID, Name: "Test User"}, nil
	}
	return f.author, nil
}

func (f *fakeChatClient) Channel(_ context.Context, channelID string) (domain.Channel, error) {
	if f.channelErr != nil {
		return domain.Channel{}, f.channelErr
	}
	if f.channel.ID == "" {
		return domain.Channel{ID: channelID, Name: "general"}, nil
	}
	return f.channel, nil
}

func (f *fakeChatClient) PostThreadReply(_ context.Context, _, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return f.replyErr
	}
	f.replies = append(f.replies, text)
	return nil
}

type fakeDocumentClient struct {
	mu       sync.Mutex
	calls    int
	failures []error // errors returned for the first len(failures) calls
	ref      domain.DocumentRef
	lastDoc  *domain.DocumentPayload
	lastDB   string
}

func (f *fakeDocumentClient) CreatePage(_ context.Context, databaseID string, doc *domain.DocumentPayload) (domain.DocumentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.calls
	f.calls++
	f.lastDoc = doc
	f.lastDB = databaseID
	if call < len(f.failures) && f.failures[call] != nil {
		return domain.DocumentRef{}, f.failures[call]
	}
	if f.ref.PageID == "" {
		f.ref = domain.DocumentRef{PageID: "page-1", URL: "https://notion.so/page-1"}
	}
	return f.ref, nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	observed  int
	matched   int
	successes int
	failures  int
	skipped   int
	passes    int
}

func (f *fakeRecorder) RecordEventObserved() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed++
}

func (f *fakeRecorder) RecordReactionMatched() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matched++
}

func (f *fakeRecorder) RecordSyncSuccess(_ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes++
}

func (f *fakeRecorder) RecordSyncFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
}

func (f *fakeRecorder) RecordSyncSkipped() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipped++
}

func (f *fakeRecorder) RecordReconciliationPass() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passes++
}
