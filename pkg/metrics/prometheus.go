// Package metrics provides Prometheus metrics for the LAUREL ranking and
// recommendation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Leaderboard metrics
	rankingUpdates    *prometheus.CounterVec
	rankingErrors     *prometheus.CounterVec
	rankingSyncTotal  *prometheus.CounterVec
	rankingSyncMs     prometheus.Histogram
	leaderboardSize   *prometheus.GaugeVec
	scoreStoreLatency prometheus.Histogram

	// Graph store metrics
	graphWrites       *prometheus.CounterVec
	graphWriteErrors  *prometheus.CounterVec
	graphUnavailable  prometheus.Counter
	graphQueryLatency *prometheus.HistogramVec
	graphSyncEntities *prometheus.CounterVec

	// Recommendation metrics
	recommendationRequests  *prometheus.CounterVec
	recommendationCacheHits *prometheus.CounterVec
	recommendationCacheMiss *prometheus.CounterVec
	recommendationEmpty     *prometheus.CounterVec

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

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "laurel",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rankingUpdates = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_updates_total",
			Help:      "Total number of leaderboard score writes by board",
		},
		[]string{"board"},
	)

	m.rankingErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_errors_total",
			Help:      "Total number of failed leaderboard score writes by board",
		},
		[]string{"board"},
	)

	m.rankingSyncTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_sync_entries_total",
			Help:      "Total number of entries written by full leaderboard resyncs",
		},
		[]string{"board"},
	)

	m.rankingSyncMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_sync_duration_milliseconds",
		Help:      "Histogram of full leaderboard resync duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardSize = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "leaderboard_size",
			Help:      "Current number of ranked entities per board",
		},
		[]string{"board"},
	)

	m.scoreStoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_store_latency_milliseconds",
		Help:      "Histogram of score store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.graphWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "graph_writes_total",
			Help:      "Total number of graph node/edge writes by operation",
		},
		[]string{"op"},
	)

	m.graphWriteErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "graph_write_errors_total",
			Help:      "Total number of failed graph writes by operation",
		},
		[]string{"op"},
	)

	m.graphUnavailable = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_unavailable_total",
		Help:      "Total number of graph operations degraded because the store was unreachable",
	})

	m.graphQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "graph_query_latency_milliseconds",
			Help:      "Graph traversal query latency in milliseconds by query kind",
			Buckets:   m.histogramBuckets,
		},
		[]string{"query"},
	)

	m.graphSyncEntities = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "graph_sync_entities_total",
			Help:      "Total number of entities replicated into the graph by bulk sync, by kind",
		},
		[]string{"kind"},
	)

	m.recommendationRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recommendation_requests_total",
			Help:      "Total number of recommendation queries by kind",
		},
		[]string{"kind"},
	)

	m.recommendationCacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recommendation_cache_hits_total",
			Help:      "Total number of recommendation cache hits by kind",
		},
		[]string{"kind"},
	)

	m.recommendationCacheMiss = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recommendation_cache_misses_total",
			Help:      "Total number of recommendation cache misses by kind",
		},
		[]string{"kind"},
	)

	m.recommendationEmpty = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recommendation_empty_total",
			Help:      "Total number of recommendation queries answered with an empty result by kind",
		},
		[]string{"kind"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)
}

// Leaderboard helpers.

// RecordRankingUpdate increments the score-write counter for a board.
func RecordRankingUpdate(board string) {
	globalManager.rankingUpdates.WithLabelValues(board).Inc()
}

// RecordRankingError increments the failed-write counter for a board.
func RecordRankingError(board string) {
	globalManager.rankingErrors.WithLabelValues(board).Inc()
}

// RecordRankingSyncEntries adds resync-written entries for a board.
func RecordRankingSyncEntries(board string, n int) {
	globalManager.rankingSyncTotal.WithLabelValues(board).Add(float64(n))
}

// RecordRankingSyncDuration records resync wall time in milliseconds.
func RecordRankingSyncDuration(ms float64) {
	globalManager.rankingSyncMs.Observe(ms)
}

// UpdateLeaderboardSize sets the current cardinality of a board.
func UpdateLeaderboardSize(board string, n int64) {
	globalManager.leaderboardSize.WithLabelValues(board).Set(float64(n))
}

// RecordScoreStoreLatency records a score store round trip in milliseconds.
func RecordScoreStoreLatency(ms float64) {
	globalManager.scoreStoreLatency.Observe(ms)
}

// Graph helpers.

// RecordGraphWrite increments the graph write counter for an operation.
func RecordGraphWrite(op string) {
	globalManager.graphWrites.WithLabelValues(op).Inc()
}

// RecordGraphWriteError increments the failed graph write counter.
func RecordGraphWriteError(op string) {
	globalManager.graphWriteErrors.WithLabelValues(op).Inc()
}

// RecordGraphUnavailable counts an operation degraded by graph unavailability.
func RecordGraphUnavailable() {
	globalManager.graphUnavailable.Inc()
}

// RecordGraphQueryLatency records traversal latency in milliseconds.
func RecordGraphQueryLatency(query string, ms float64) {
	globalManager.graphQueryLatency.WithLabelValues(query).Observe(ms)
}

// RecordGraphSyncEntities adds bulk-sync replicated entities by kind.
func RecordGraphSyncEntities(kind string, n int) {
	globalManager.graphSyncEntities.WithLabelValues(kind).Add(float64(n))
}

// Recommendation helpers.

// RecordRecommendationRequest counts a recommendation query by kind.
func RecordRecommendationRequest(kind string) {
	globalManager.recommendationRequests.WithLabelValues(kind).Inc()
}

// RecordRecommendationCacheHit counts a cache hit by kind.
func RecordRecommendationCacheHit(kind string) {
	globalManager.recommendationCacheHits.WithLabelValues(kind).Inc()
}

// RecordRecommendationCacheMiss counts a cache miss by kind.
func RecordRecommendationCacheMiss(kind string) {
	globalManager.recommendationCacheMiss.WithLabelValues(kind).Inc()
}

// RecordRecommendationEmpty counts an empty result by kind.
func RecordRecommendationEmpty(kind string) {
	globalManager.recommendationEmpty.WithLabelValues(kind).Inc()
}

// HTTP helpers.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Error helpers.

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
