// Package metrics provides the centralized Prometheus registry for the sync
// engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SyncPassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "sync_passes_total",
		Help:      "Total number of sync passes by sport and status",
	}, []string{"sport", "status"})
	GamesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "games_processed_total",
		Help:      "Total number of final games folded into ratings",
	}, []string{"sport"})
	GamesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "games_skipped_total",
		Help:      "Total number of malformed games skipped",
	}, []string{"sport", "reason"})
	PredictionsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "predictions_generated_total",
		Help:      "Total number of forward predictions generated",
	}, []string{"sport"})
	SyncResetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "sync_resets_total",
		Help:      "Total number of sync state resets by trigger",
	}, []string{"sport", "reason"})
)

// Gauge metrics
var (
	LastPassTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "line_edge",
		Name:      "last_pass_timestamp_seconds",
		Help:      "Unix time of the last completed pass per sport",
	}, []string{"sport"})
	ProcessedGames = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "line_edge",
		Name:      "processed_games",
		Help:      "Size of the processed-game set per sport",
	}, []string{"sport"})
)

// Histogram metrics
var (
	SyncPassDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "line_edge",
		Name:      "sync_pass_duration_seconds",
		Help:      "Duration of sync passes in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"sport"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register pass metrics
		registry.MustRegister(SyncPassesTotal)
		registry.MustRegister(GamesProcessedTotal)
		registry.MustRegister(GamesSkippedTotal)
		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(SyncResetsTotal)
		registry.MustRegister(LastPassTimestamp)
		registry.MustRegister(ProcessedGames)
		registry.MustRegister(SyncPassDuration)

		// Register provider metrics
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderRequestDuration)
		registry.MustRegister(SignalCacheHitsTotal)
		registry.MustRegister(SignalCacheMissesTotal)
		registry.MustRegister(SignalCacheStaleServedTotal)

		// Register grading metrics
		registry.MustRegister(GamesGradedTotal)
		registry.MustRegister(HighConvictionGamesTotal)
		registry.MustRegister(LinesLockedTotal)
		registry.MustRegister(LockedLineFetchSkipsTotal)
		registry.MustRegister(OddsCoverageRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSyncPass records a completed pass with its status and duration.
func RecordSyncPass(sport, status string, durationSeconds float64) {
	SyncPassesTotal.WithLabelValues(sport, status).Inc()
	SyncPassDuration.WithLabelValues(sport).Observe(durationSeconds)
}

// RecordGameProcessed records one final game folded into the ratings.
func RecordGameProcessed(sport string) {
	GamesProcessedTotal.WithLabelValues(sport).Inc()
}

// RecordGameSkipped records a malformed game excluded from a pass.
func RecordGameSkipped(sport, reason string) {
	GamesSkippedTotal.WithLabelValues(sport, reason).Inc()
}

// RecordPredictionGenerated records one forward prediction.
func RecordPredictionGenerated(sport string) {
	PredictionsGeneratedTotal.WithLabelValues(sport).Inc()
}

// RecordSyncReset records a sync state reset.
func RecordSyncReset(sport, reason string) {
	SyncResetsTotal.WithLabelValues(sport, reason).Inc()
}

// UpdateLastPassTimestamp marks the completion time of the latest pass.
func UpdateLastPassTimestamp(sport string, unixSeconds float64) {
	LastPassTimestamp.WithLabelValues(sport).Set(unixSeconds)
}

// UpdateProcessedGames updates the processed-set size gauge.
func UpdateProcessedGames(sport string, count float64) {
	ProcessedGames.WithLabelValues(sport).Set(count)
}
