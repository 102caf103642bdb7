package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Provider metrics
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "provider_requests_total",
		Help:      "Total number of upstream provider requests by outcome",
	}, []string{"provider", "status"})
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of upstream provider requests in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})
)

// Signal cache metrics
var (
	SignalCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "signal_cache_hits_total",
		Help:      "Total number of signal cache hits by signal kind",
	}, []string{"kind"})
	SignalCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "signal_cache_misses_total",
		Help:      "Total number of signal cache misses by signal kind",
	}, []string{"kind"})
	SignalCacheStaleServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "signal_cache_stale_served_total",
		Help:      "Total number of stale signals served after a fetch failure",
	}, []string{"kind"})
)

// RecordProviderRequest records an upstream request with its outcome and duration.
func RecordProviderRequest(provider, status string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordSignalCacheHit records a signal served from cache.
func RecordSignalCacheHit(kind string) {
	SignalCacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordSignalCacheMiss records a signal that required an upstream fetch.
func RecordSignalCacheMiss(kind string) {
	SignalCacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordSignalCacheStaleServed records a stale signal served in degraded mode.
func RecordSignalCacheStaleServed(kind string) {
	SignalCacheStaleServedTotal.WithLabelValues(kind).Inc()
}
