package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataqa_uploads_total",
			Help: "Total number of datasets ingested, by detected format.",
		},
		[]string{"format"},
	)
	uploadRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataqa_upload_rows",
			Help:    "Row count of ingested datasets after cleaning.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		},
	)
	ingestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataqa_ingest_failures_total",
			Help: "Total number of rejected uploads, by reason.",
		},
		[]string{"reason"},
	)
	answersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataqa_answers_total",
			Help: "Total number of answer requests, by result status.",
		},
		[]string{"status"},
	)
	remoteLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataqa_remote_call_duration_seconds",
			Help:    "Latency of chat-completion calls, including failures.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataqa_http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataqa_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		uploadsTotal,
		uploadRows,
		ingestFailuresTotal,
		answersTotal,
		remoteLatencySeconds,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

func ObserveUpload(format string, rows int) {
	uploadsTotal.WithLabelValues(format).Inc()
	uploadRows.Observe(float64(rows))
}

func IncrementIngestFailure(reason string) {
	ingestFailuresTotal.WithLabelValues(reason).Inc()
}

func ObserveAnswer(status string) {
	answersTotal.WithLabelValues(status).Inc()
}

func ObserveRemoteCall(elapsed time.Duration) {
	remoteLatencySeconds.Observe(elapsed.Seconds())
}

func ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
