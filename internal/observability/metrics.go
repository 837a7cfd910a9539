package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstats_questions_total",
			Help: "Total number of questions run through the pipeline, by outcome.",
		},
		[]string{"outcome"},
	)
	questionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstats_question_duration_seconds",
			Help:    "End-to-end pipeline latency per question in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstats_generation_duration_seconds",
			Help:    "Model completion latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	executionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstats_execution_duration_seconds",
			Help:    "Store-side statement execution latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstats_telegram_updates_total",
			Help: "Total number of handled Telegram updates, by kind.",
		},
		[]string{"kind"},
	)
	ingestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstats_ingest_records_total",
			Help: "Total number of ingested records, by kind.",
		},
		[]string{"kind"},
	)
	storeVideos = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstats_store_videos",
			Help: "Current number of video rows in the store.",
		},
	)
	storeSnapshots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstats_store_snapshots",
			Help: "Current number of snapshot rows in the store.",
		},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstats_http_requests_total",
			Help: "Total number of HTTP requests, by method, path and status code.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidstats_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		questionDurationSeconds,
		generationDurationSeconds,
		executionDurationSeconds,
		telegramUpdatesTotal,
		ingestRecordsTotal,
		storeVideos,
		storeSnapshots,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

// ObserveQuestion records one completed pipeline run. outcome is
// "success" or the failure kind.
func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsTotal.WithLabelValues(outcome).Inc()
	questionDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveGeneration records the latency of one model completion call.
func ObserveGeneration(elapsed time.Duration) {
	generationDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveExecution records the latency of one statement execution.
func ObserveExecution(elapsed time.Duration) {
	executionDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveTelegramUpdate records one handled update. kind is "command",
// "question" or "ignored".
func ObserveTelegramUpdate(kind string) {
	telegramUpdatesTotal.WithLabelValues(kind).Inc()
}

// ObserveIngest records ingested records by kind ("video", "snapshot",
// "failed").
func ObserveIngest(kind string, n int) {
	ingestRecordsTotal.WithLabelValues(kind).Add(float64(n))
}

// SetStoreSize publishes the current row counts of the store.
func SetStoreSize(videos, snapshots int64) {
	if videos < 0 {
		videos = 0
	}
	if snapshots < 0 {
		snapshots = 0
	}
	storeVideos.Set(float64(videos))
	storeSnapshots.Set(float64(snapshots))
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, statusText(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func statusText(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
