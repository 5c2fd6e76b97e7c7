// Package metrics provides Prometheus metrics for the gradefill service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the gradefill service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Imputation metrics - the business core
	imputationsTotal   *prometheus.CounterVec
	gapsClassified     *prometheus.CounterVec
	imputationRuns     prometheus.Counter
	imputationRunBusy  prometheus.Counter
	imputationDuration prometheus.Histogram

	// Scoring metrics
	rescores   prometheus.Counter
	cohortSize prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradefill",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.imputationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imputations_total",
		Help:      "Total number of imputed cells by method tag",
	}, []string{"method"})

	m.gapsClassified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gaps_classified_total",
		Help:      "Total number of missing cells classified by gap type",
	}, []string{"gap_type"})

	m.imputationRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imputation_runs_total",
		Help:      "Total number of completed imputation passes",
	})

	m.imputationRunBusy = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imputation_run_busy_total",
		Help:      "Total number of imputation triggers rejected because a run was in flight",
	})

	m.imputationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imputation_run_duration_milliseconds",
		Help:      "Histogram of full imputation pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rescores = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rescores_total",
		Help:      "Total number of composite score recomputations",
	})

	m.cohortSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cohort_size",
		Help:      "Number of students currently loaded",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total errors by component and error type",
	}, []string{"component", "error_type"})
}

// RecordImputation increments the imputed-cell counter for a method tag.
func RecordImputation(method string) {
	globalManager.imputationsTotal.WithLabelValues(method).Inc()
}

// RecordGapClassified increments the gap classification counter.
func RecordGapClassified(gapType string) {
	globalManager.gapsClassified.WithLabelValues(gapType).Inc()
}

// RecordImputationRun increments the completed-run counter.
func RecordImputationRun() {
	globalManager.imputationRuns.Inc()
}

// RecordImputationRunBusy increments the rejected-trigger counter.
func RecordImputationRunBusy() {
	globalManager.imputationRunBusy.Inc()
}

// RecordImputationRunDuration records a full pass duration in milliseconds.
func RecordImputationRunDuration(durationMs float64) {
	globalManager.imputationDuration.Observe(durationMs)
}

// RecordRescore increments the rescore counter.
func RecordRescore() {
	globalManager.rescores.Inc()
}

// UpdateCohortSize sets the loaded-student gauge.
func UpdateCohortSize(count int) {
	globalManager.cohortSize.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom registry used by the global manager, for
// serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
