// Package metrics provides Prometheus metrics for the opportunity suggestion service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the suggestion service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - suggestion flow
	suggestionRequests  prometheus.Counter
	suggestionFallbacks prometheus.Counter
	suggestionErrors    prometheus.Counter
	suggestionSize      prometheus.Histogram
	pathStepQueries     prometheus.Counter

	// Inference backend metrics
	inferenceRequests *prometheus.CounterVec
	inferenceLatency  prometheus.Histogram
	breakerState      *prometheus.GaugeVec

	// Catalog cache metrics
	cacheLoads            *prometheus.CounterVec
	cacheRefreshes        *prometheus.CounterVec
	cacheRefreshErrors    *prometheus.CounterVec
	cacheRefreshDeferrals *prometheus.CounterVec
	cacheVersion          *prometheus.GaugeVec
	catalogEntries        prometheus.Gauge

	// Refresh executor metrics
	refreshTasks         prometheus.Counter
	refreshTasksRejected prometheus.Counter
	refreshWorkerCount   prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "opprec",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.suggestionRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_requests_total",
		Help:      "Total number of suggestion requests served",
	})

	m.suggestionFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_fallbacks_total",
		Help:      "Suggestion requests served via the empty-signal catalog-order fallback",
	})

	m.suggestionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_errors_total",
		Help:      "Suggestion requests that failed",
	})

	m.suggestionSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_result_size",
		Help:      "Number of suggestions per response",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.pathStepQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "path_step_queries_total",
		Help:      "Total number of path step (missing skill) queries",
	})

	m.inferenceRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_requests_total",
		Help:      "Scoring backend invocations by backend and outcome",
	}, []string{"backend", "outcome"})

	m.inferenceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_latency_milliseconds",
		Help:      "Scoring backend round trip latency in milliseconds",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"breaker"})

	m.cacheLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_cold_loads_total",
		Help:      "Blocking cold loads by cache",
	}, []string{"cache"})

	m.cacheRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_refreshes_total",
		Help:      "Successful background refreshes by cache",
	}, []string{"cache"})

	m.cacheRefreshErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_refresh_errors_total",
		Help:      "Failed background refreshes by cache",
	}, []string{"cache"})

	m.cacheRefreshDeferrals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_refresh_deferrals_total",
		Help:      "Refreshes deferred because the executor was saturated",
	}, []string{"cache"})

	m.cacheVersion = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_snapshot_version",
		Help:      "Current snapshot version by cache",
	}, []string{"cache"})

	m.catalogEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_entries",
		Help:      "Number of opportunities in the current catalog snapshot",
	})

	m.refreshTasks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_tasks_total",
		Help:      "Refresh tasks accepted by the background executor",
	})

	m.refreshTasksRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_tasks_rejected_total",
		Help:      "Refresh tasks rejected because the executor was saturated",
	})

	m.refreshWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_worker_count",
		Help:      "Number of background refresh workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and error type",
	}, []string{"component", "error_type"})

	m.errorsByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_milliseconds",
		Help:      "Latency of failed operations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Suggestion flow.

// RecordSuggestionRequest increments the suggestion requests counter.
func RecordSuggestionRequest() {
	globalManager.suggestionRequests.Inc()
}

// RecordSuggestionFallback increments the empty-signal fallback counter.
func RecordSuggestionFallback() {
	globalManager.suggestionFallbacks.Inc()
}

// RecordSuggestionError increments the suggestion errors counter.
func RecordSuggestionError() {
	globalManager.suggestionErrors.Inc()
}

// RecordSuggestionSize observes the number of suggestions in a response.
func RecordSuggestionSize(n int) {
	globalManager.suggestionSize.Observe(float64(n))
}

// RecordPathStepQuery increments the path step queries counter.
func RecordPathStepQuery() {
	globalManager.pathStepQueries.Inc()
}

// Inference backend.

// RecordInferenceRequest records a scoring backend invocation outcome.
func RecordInferenceRequest(backend, outcome string) {
	globalManager.inferenceRequests.WithLabelValues(backend, outcome).Inc()
}

// RecordInferenceLatency records scoring backend latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) {
	globalManager.inferenceLatency.Observe(latencyMs)
}

// UpdateBreakerState sets the circuit breaker state gauge.
func UpdateBreakerState(breaker string, state float64) {
	globalManager.breakerState.WithLabelValues(breaker).Set(state)
}

// Catalog cache.

// RecordCacheLoad increments the cold load counter for a cache.
func RecordCacheLoad(cache string) {
	globalManager.cacheLoads.WithLabelValues(cache).Inc()
}

// RecordCacheRefresh increments the successful refresh counter for a cache.
func RecordCacheRefresh(cache string) {
	globalManager.cacheRefreshes.WithLabelValues(cache).Inc()
}

// RecordCacheRefreshError increments the failed refresh counter for a cache.
func RecordCacheRefreshError(cache string) {
	globalManager.cacheRefreshErrors.WithLabelValues(cache).Inc()
}

// RecordCacheRefreshDeferred increments the deferred refresh counter for a cache.
func RecordCacheRefreshDeferred(cache string) {
	globalManager.cacheRefreshDeferrals.WithLabelValues(cache).Inc()
}

// UpdateCacheVersion sets the snapshot version gauge for a cache.
func UpdateCacheVersion(cache string, version uint64) {
	globalManager.cacheVersion.WithLabelValues(cache).Set(float64(version))
}

// UpdateCatalogEntries sets the catalog size gauge.
func UpdateCatalogEntries(count int) {
	globalManager.catalogEntries.Set(float64(count))
}

// Refresh executor.

// RecordRefreshTask increments the accepted refresh task counter.
func RecordRefreshTask() {
	globalManager.refreshTasks.Inc()
}

// RecordRefreshTaskRejected increments the rejected refresh task counter.
func RecordRefreshTaskRejected() {
	globalManager.refreshTasksRejected.Inc()
}

// UpdateRefreshWorkerCount sets the refresh worker count gauge.
func UpdateRefreshWorkerCount(count int) {
	globalManager.refreshWorkerCount.Set(float64(count))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error for a specific component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System.

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used for all service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
