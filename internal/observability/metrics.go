// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "grabtune"

// Metrics holds all application metrics.
type Metrics struct {
	// Download metrics
	DownloadsStarted    prometheus.Counter
	DownloadsCompleted  prometheus.Counter
	DownloadsFailed     *prometheus.CounterVec
	DownloadsInProgress prometheus.Gauge
	DownloadDuration    prometheus.Histogram
	RetriesTotal        prometheus.Counter

	// Engine metrics
	EngineRequestsTotal *prometheus.CounterVec
	EngineErrors        *prometheus.CounterVec

	// Probe and cleanup metrics
	ProbeFailures     prometheus.Counter
	CleanupFilesTotal prometheus.Counter
}

// New creates all application metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DownloadsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "started_total",
			Help:      "Total number of download requests started",
		}),
		DownloadsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "completed_total",
			Help:      "Total number of downloads completed successfully",
		}),
		DownloadsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "failed_total",
			Help:      "Total number of downloads that failed, by error kind",
		}, []string{"kind"}),
		DownloadsInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "in_progress",
			Help:      "Number of downloads currently in progress",
		}),
		DownloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "duration_seconds",
			Help:      "Histogram of download duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "retries_total",
			Help:      "Total number of download retry attempts",
		}),
		EngineRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "requests_total",
			Help:      "Total number of extraction engine invocations",
		}, []string{"engine", "operation"}),
		EngineErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Total number of extraction engine faults, by classified kind",
		}, []string{"engine", "kind"}),
		ProbeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "netprobe",
			Name:      "failures_total",
			Help:      "Total number of failed reachability probes",
		}),
		CleanupFilesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "cleanup_files_total",
			Help:      "Total number of stale partial files cleaned up",
		}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DownloadTimer returns a function that records the download duration
// when called.
func (m *Metrics) DownloadTimer() func() {
	start := time.Now()

	return func() {
		m.DownloadDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordDownloadStarted increments the started counter and gauge.
func (m *Metrics) RecordDownloadStarted() {
	m.DownloadsStarted.Inc()
	m.DownloadsInProgress.Inc()
}

// RecordDownloadCompleted records a successful download.
func (m *Metrics) RecordDownloadCompleted() {
	m.DownloadsCompleted.Inc()
	m.DownloadsInProgress.Dec()
}

// RecordDownloadFailed records a failed download by error kind.
func (m *Metrics) RecordDownloadFailed(kind string) {
	m.DownloadsFailed.WithLabelValues(kind).Inc()
	m.DownloadsInProgress.Dec()
}

// RecordRetry increments the retry counter.
func (m *Metrics) RecordRetry() {
	m.RetriesTotal.Inc()
}

// RecordEngineRequest records one engine invocation.
func (m *Metrics) RecordEngineRequest(engine, operation string) {
	m.EngineRequestsTotal.WithLabelValues(engine, operation).Inc()
}

// RecordEngineError records one classified engine fault.
func (m *Metrics) RecordEngineError(engine, kind string) {
	m.EngineErrors.WithLabelValues(engine, kind).Inc()
}

// RecordProbeFailure increments the probe failure counter.
func (m *Metrics) RecordProbeFailure() {
	m.ProbeFailures.Inc()
}

// RecordCleanup adds to the cleanup counter.
func (m *Metrics) RecordCleanup(files int) {
	m.CleanupFilesTotal.Add(float64(files))
}
