package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordSyncPass(t *testing.T) {
	InitRegistry()
	durationSeconds := 12.5

	assert.NotPanics(t, func() {
		RecordSyncPass("nfl", "success", durationSeconds)
	})

	assert.NotPanics(t, func() {
		RecordSyncPass("nba", "failure", 0.1)
	})
}

func TestRecordGameProcessed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGameProcessed("nfl")
	})
}

func TestRecordGameSkipped(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGameSkipped("nhl", "unknown_team")
	})
}

func TestUpdateProcessedGames(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count float64
	}{
		{
			name:  "populated set",
			count: 256,
		},
		{
			name:  "empty set",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateProcessedGames("nfl", tt.count)
			})
		})
	}
}

func TestUpdateOddsCoverageRatio(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		ratio float64
	}{
		{
			name:  "full coverage",
			ratio: 1.0,
		},
		{
			name:  "degraded coverage",
			ratio: 0.4,
		},
		{
			name:  "no coverage",
			ratio: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateOddsCoverageRatio("cbb", tt.ratio)
			})
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func TestProviderMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordProviderRequest("odds", "success", 0.25)
	})

	assert.NotPanics(t, func() {
		RecordSignalCacheHit("weather")
	})

	assert.NotPanics(t, func() {
		RecordSignalCacheMiss("injuries")
	})

	assert.NotPanics(t, func() {
		RecordSignalCacheStaleServed("odds")
	})
}

func TestGradingMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGameGraded("nfl", "spread_model", "win")
	})

	assert.NotPanics(t, func() {
		RecordHighConvictionGame("nfl")
	})

	assert.NotPanics(t, func() {
		RecordLineLocked("nba")
	})

	assert.NotPanics(t, func() {
		RecordLockedLineFetchSkip("nba")
	})
}

func BenchmarkRecordGameProcessed(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordGameProcessed("nfl")
	}
}

func BenchmarkRecordProviderRequest(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordProviderRequest("schedule", "success", 0.2)
	}
}

func BenchmarkRecordGameGraded(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordGameGraded("nfl", "moneyline", "win")
	}
}
