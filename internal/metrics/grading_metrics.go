package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Grading metrics
var (
	GamesGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "games_graded_total",
		Help:      "Total number of graded game outcomes by market and result",
	}, []string{"sport", "market", "outcome"})
	HighConvictionGamesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "high_conviction_games_total",
		Help:      "Total number of graded games that met the conviction threshold",
	}, []string{"sport"})
)

// Line lifecycle metrics
var (
	LinesLockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "lines_locked_total",
		Help:      "Total number of line records locked ahead of kickoff",
	}, []string{"sport"})
	LockedLineFetchSkipsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "line_edge",
		Name:      "locked_line_fetch_skips_total",
		Help:      "Total number of odds fetches skipped because the line was locked",
	}, []string{"sport"})
)

// Coverage metrics
var (
	OddsCoverageRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "line_edge",
		Name:      "odds_coverage_ratio",
		Help:      "Fraction of upcoming games with a usable market quote",
	}, []string{"sport"})
)

// RecordGameGraded records one graded market outcome.
func RecordGameGraded(sport, market, outcome string) {
	GamesGradedTotal.WithLabelValues(sport, market, outcome).Inc()
}

// RecordHighConvictionGame records a graded game whose edge met the
// conviction threshold.
func RecordHighConvictionGame(sport string) {
	HighConvictionGamesTotal.WithLabelValues(sport).Inc()
}

// RecordLineLocked records a line record transitioning to its locked state.
func RecordLineLocked(sport string) {
	LinesLockedTotal.WithLabelValues(sport).Inc()
}

// RecordLockedLineFetchSkip records an odds fetch avoided by the lock.
func RecordLockedLineFetchSkip(sport string) {
	LockedLineFetchSkipsTotal.WithLabelValues(sport).Inc()
}

// UpdateOddsCoverageRatio updates the market coverage gauge for a sport.
func UpdateOddsCoverageRatio(sport string, ratio float64) {
	OddsCoverageRatio.WithLabelValues(sport).Set(ratio)
}
