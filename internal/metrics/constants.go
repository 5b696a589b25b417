package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Sync metric names
const (
	MetricNameSlackEvents          = "slack_events_total"
	MetricNameSyncs                = "syncs_total"
	MetricNameSyncDuration         = "sync_duration_seconds"
	MetricNameReconciliationPasses = "reconciliation_passes_total"
	MetricNameHistoryPurged        = "history_rows_purged_total"
	MetricNameWorkerQueueDepth     = "worker_queue_depth"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Sync metric help text
const (
	HelpTextSlackEvents          = "Total number of Slack events received, by type"
	HelpTextSyncs                = "Total number of sync attempts, by outcome"
	HelpTextSyncDuration         = "End-to-end sync latency in seconds"
	HelpTextReconciliationPasses = "Total number of reconciliation passes"
	HelpTextHistoryPurged        = "Total number of history rows removed by retention"
	HelpTextWorkerQueueDepth     = "Jobs currently waiting in the worker queue"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelResult = "result"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// SyncLatencyBuckets covers the sync pipeline, which includes two upstream
// API round trips and possible retry backoff
var SyncLatencyBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
