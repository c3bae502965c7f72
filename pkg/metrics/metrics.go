package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobsInQueue         prometheus.Gauge
	JobsTotal           *prometheus.CounterVec
	PagesFetchedTotal   *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JobsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawl_jobs_in_queue",
			Help: "Current number of crawl jobs waiting in the queue.",
		},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_jobs_total",
			Help: "Total number of crawl jobs by terminal status.",
		},
		[]string{"status"}, // completed, failed
	)

	PagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_pages_fetched_total",
			Help: "Total number of page fetch attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_fetch_duration_seconds",
			Help:    "Duration of page render operations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"domain"},
	)
}

// RecordFetch counts one fetch attempt and its duration. No-op before Init.
func RecordFetch(domain string, seconds float64, errorType string) {
	if PagesFetchedTotal == nil {
		return
	}
	status := "success"
	if errorType != "" {
		status = "failure"
	}
	PagesFetchedTotal.WithLabelValues(status, errorType).Inc()
	FetchDuration.WithLabelValues(domain).Observe(seconds)
}

// RecordJob counts a job reaching a terminal status. No-op before Init.
func RecordJob(status string) {
	if JobsTotal == nil {
		return
	}
	JobsTotal.WithLabelValues(status).Inc()
}

// SetQueueSize reports the number of waiting jobs. No-op before Init.
func SetQueueSize(n int64) {
	if JobsInQueue == nil {
		return
	}
	JobsInQueue.Set(float64(n))
}

// RecordHTTP counts one served request. No-op before Init.
func RecordHTTP(method, path string, status int, seconds float64) {
	if HTTPRequestsTotal == nil {
		return
	}
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(seconds)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}
