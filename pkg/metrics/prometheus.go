// Package metrics provides Prometheus metrics for the bookings rate service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the bookings service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Refresh metrics - one refresh recomputes and publishes every table
	refreshTotal    prometheus.Counter
	refreshErrors   prometheus.Counter
	refreshDuration prometheus.Histogram
	lastRefreshUnix prometheus.Gauge

	// Store metrics
	storeQueryLatency prometheus.Histogram
	storeErrors       prometheus.Counter

	// Cache metrics
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cachePublishErrors prometheus.Counter

	// Table metrics
	playersRated *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bookings",
		subsystem:        "rates",
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
	factory := promauto.With(m.registry)

	m.refreshTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_total",
		Help:      "Total number of rate table refresh runs.",
	})
	m.refreshErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_errors_total",
		Help:      "Total number of failed refresh runs.",
	})
	m.refreshDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_duration_ms",
		Help:      "Duration of a full refresh run in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.lastRefreshUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful refresh.",
	})

	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_ms",
		Help:      "Latency of match-record store queries in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of store query errors.",
	})

	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of published-table cache hits.",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of published-table cache misses.",
	})
	m.cachePublishErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_publish_errors_total",
		Help:      "Total number of failed table publications.",
	})

	m.playersRated = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_rated",
		Help:      "Number of players present in the last computed table, by statistic.",
	}, []string{"stat"})
}

// RecordRefresh increments the refresh run counter.
func RecordRefresh() {
	if globalManager.enabled {
		globalManager.refreshTotal.Inc()
	}
}

// RecordRefreshError increments the failed refresh counter.
func RecordRefreshError() {
	if globalManager.enabled {
		globalManager.refreshErrors.Inc()
	}
}

// RecordRefreshDuration observes a full refresh run duration.
func RecordRefreshDuration(latencyMs float64) {
	if globalManager.enabled {
		globalManager.refreshDuration.Observe(latencyMs)
	}
}

// UpdateLastRefresh records the completion time of a successful refresh.
func UpdateLastRefresh(unixSeconds float64) {
	if globalManager.enabled {
		globalManager.lastRefreshUnix.Set(unixSeconds)
	}
}

// RecordStoreQueryLatency observes a store query duration.
func RecordStoreQueryLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeQueryLatency.Observe(latencyMs)
	}
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	if globalManager.enabled {
		globalManager.storeErrors.Inc()
	}
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

// RecordCachePublishError increments the failed publication counter.
func RecordCachePublishError() {
	if globalManager.enabled {
		globalManager.cachePublishErrors.Inc()
	}
}

// UpdatePlayersRated sets the number of players in the latest table for a
// statistic.
func UpdatePlayersRated(stat string, count int) {
	if globalManager.enabled {
		globalManager.playersRated.WithLabelValues(stat).Set(float64(count))
	}
}

// GetRegistry returns the custom Prometheus registry used by the global
// manager, for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
