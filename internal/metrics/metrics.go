package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)

	slackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSlackEvents,
			Help: HelpTextSlackEvents,
		},
		[]string{LabelType},
	)

	syncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSyncs,
			Help: HelpTextSyncs,
		},
		[]string{LabelResult},
	)

	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameSyncDuration,
			Help:    HelpTextSyncDuration,
			Buckets: SyncLatencyBuckets,
		},
	)

	reconciliationPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReconciliationPasses,
			Help: HelpTextReconciliationPasses,
		},
	)

	historyPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameHistoryPurged,
			Help: HelpTextHistoryPurged,
		},
	)

	workerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameWorkerQueueDepth,
			Help: HelpTextWorkerQueueDepth,
		},
	)
)

// RecordSlackEvent counts one received Slack event
func RecordSlackEvent(eventType string) {
	slackEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordSyncOutcome counts one finished sync attempt
func RecordSyncOutcome(result string) {
	syncsTotal.WithLabelValues(result).Inc()
}

// ObserveSyncDuration records the end-to-end latency of a successful sync
func ObserveSyncDuration(d time.Duration) {
	syncDuration.Observe(d.Seconds())
}

// RecordReconciliationPass counts one completed reconciliation pass
func RecordReconciliationPass() {
	reconciliationPasses.Inc()
}

// RecordHistoryPurged counts rows removed by the retention sweep
func RecordHistoryPurged(rows int64) {
	historyPurged.Add(float64(rows))
}

// SetWorkerQueueDepth publishes the current worker queue depth
func SetWorkerQueueDepth(depth int) {
	workerQueueDepth.Set(float64(depth))
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
