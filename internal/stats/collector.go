package stats

import (
	"sync/atomic"
	"time"

	"github.com/chroniclebot/chronicle/internal/metrics"
)

// Snapshot is a point-in-time copy of the runtime counters.
type Snapshot struct {
	StartedAt            time.Time     `json:"started_at"`
	Uptime               time.Duration `json:"uptime"`
	EventsObserved       uint64        `json:"events_observed"`
	ReactionsMatched     uint64        `json:"reactions_matched"`
	SyncSuccesses        uint64        `json:"sync_successes"`
	SyncFailures         uint64        `json:"sync_failures"`
	SyncSkipped          uint64        `json:"sync_skipped"`
	ReconciliationPasses uint64        `json:"reconciliation_passes"`
	AvgSyncDuration      time.Duration `json:"avg_sync_duration"`
	LastSyncAt           *time.Time    `json:"last_sync_at,omitempty"`
}

// Collector accumulates runtime counters with atomics and mirrors sync
// outcomes into Prometheus. Safe for concurrent use from workers, the event
// source and the scheduler.
type Collector struct {
	startedAt time.Time

	eventsObserved       atomic.Uint64
	reactionsMatched     atomic.Uint64
	syncSuccesses        atomic.Uint64
	syncFailures         atomic.Uint64
	syncSkipped          atomic.Uint64
	reconciliationPasses atomic.Uint64

	totalSyncNanos atomic.Int64
	lastSyncUnixNs atomic.Int64
}

// NewCollector creates a collector anchored to the current time
func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

// RecordEventObserved counts one platform event that reached the service
func (c *Collector) RecordEventObserved() {
	c.eventsObserved.Add(1)
}

// RecordReactionMatched counts one reaction that matched at least one config
func (c *Collector) RecordReactionMatched() {
	c.reactionsMatched.Add(1)
}

// RecordSyncSuccess counts one synced message and its pipeline duration
func (c *Collector) RecordSyncSuccess(duration time.Duration) {
	c.syncSuccesses.Add(1)
	c.totalSyncNanos.Add(int64(duration))
	c.lastSyncUnixNs.Store(time.Now().UnixNano())
	metrics.RecordSyncOutcome("synced")
	metrics.ObserveSyncDuration(duration)
}

// RecordSyncFailure counts one failed sync
func (c *Collector) RecordSyncFailure() {
	c.syncFailures.Add(1)
	metrics.RecordSyncOutcome("failed")
}

// RecordSyncSkipped counts one skipped message (filtered or duplicate)
func (c *Collector) RecordSyncSkipped() {
	c.syncSkipped.Add(1)
	metrics.RecordSyncOutcome("skipped")
}

// RecordReconciliationPass counts one completed reconciliation pass
func (c *Collector) RecordReconciliationPass() {
	c.reconciliationPasses.Add(1)
	metrics.RecordReconciliationPass()
}

// Snapshot returns a consistent-enough copy of the counters. Individual
// fields are read atomically; the snapshot as a whole is not a transaction.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		StartedAt:            c.startedAt,
		Uptime:               time.Since(c.startedAt),
		EventsObserved:       c.eventsObserved.Load(),
		ReactionsMatched:     c.reactionsMatched.Load(),
		SyncSuccesses:        c.syncSuccesses.Load(),
		SyncFailures:         c.syncFailures.Load(),
		SyncSkipped:          c.syncSkipped.Load(),
		ReconciliationPasses: c.reconciliationPasses.Load(),
	}
	if snap.SyncSuccesses > 0 {
		snap.AvgSyncDuration = time.Duration(c.totalSyncNanos.Load() / int64(snap.SyncSuccesses))
	}
	if ns := c.lastSyncUnixNs.Load(); ns > 0 {
		t := time.Unix(0, ns)
		snap.LastSyncAt = &t
	}
	return snap
}
