// Package logger provides sync-pass logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SyncLogger provides dedicated logging for sync pass events.
type SyncLogger struct {
	*logrus.Entry
}

// NewSyncLogger creates a new sync logger.
func NewSyncLogger(baseLogger *logrus.Logger) *SyncLogger {
	return &SyncLogger{
		Entry: baseLogger.WithField("component", "sync"),
	}
}

// LogPassStarted logs the start of a sync pass.
func (sl *SyncLogger) LogPassStarted(sport, runID string, season int, forceReset bool) {
	sl.WithFields(logrus.Fields{
		"sport":       sport,
		"run_id":      runID,
		"season":      season,
		"force_reset": forceReset,
	}).Info("Sync pass started")
}

// LogPassCompleted logs the end of a sync pass with its counters.
func (sl *SyncLogger) LogPassCompleted(sport, runID string, gamesIngested, gamesProcessed, gamesSkipped, predictionsMade, linesLocked int, oddsCoverage, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"sport":            sport,
		"run_id":           runID,
		"games_ingested":   gamesIngested,
		"games_processed":  gamesProcessed,
		"games_skipped":    gamesSkipped,
		"predictions_made": predictionsMade,
		"lines_locked":     linesLocked,
		"odds_coverage":    oddsCoverage,
		"duration_ms":      durationMs,
	}).Info("Sync pass completed")
}

// LogGameGraded logs one graded game with its per-market outcomes.
func (sl *SyncLogger) LogGameGraded(sport, gameID, spreadModel, spreadMarket, moneyline, total string, highConviction bool) {
	sl.WithFields(logrus.Fields{
		"sport":           sport,
		"game_id":         gameID,
		"spread_model":    spreadModel,
		"spread_market":   spreadMarket,
		"moneyline":       moneyline,
		"total":           total,
		"high_conviction": highConviction,
	}).Info("Game graded")
}

// LogRatingsUpdated logs a rating change after one game.
func (sl *SyncLogger) LogRatingsUpdated(sport, gameID string, homeBefore, homeAfter, awayBefore, awayAfter float64) {
	sl.WithFields(logrus.Fields{
		"sport":       sport,
		"game_id":     gameID,
		"home_before": homeBefore,
		"home_after":  homeAfter,
		"away_before": awayBefore,
		"away_after":  awayAfter,
	}).Debug("Ratings updated")
}

// LogProviderDegraded logs a provider failure that was absorbed by cache fallback.
func (sl *SyncLogger) LogProviderDegraded(provider, key string, servedStale bool) {
	sl.WithFields(logrus.Fields{
		"provider":     provider,
		"key":          key,
		"served_stale": servedStale,
	}).Warn("Provider fetch degraded")
}

// LogCoverageWarning logs low odds coverage across completed games.
func (sl *SyncLogger) LogCoverageWarning(sport string, coverage, threshold float64, gamesMissing int) {
	sl.WithFields(logrus.Fields{
		"sport":         sport,
		"coverage":      coverage,
		"threshold":     threshold,
		"games_missing": gamesMissing,
	}).Warn("Odds coverage below threshold")
}

// LogGameSkipped logs a malformed game excluded from the pass.
func (sl *SyncLogger) LogGameSkipped(sport, gameID, reason string) {
	sl.WithFields(logrus.Fields{
		"sport":   sport,
		"game_id": gameID,
		"reason":  reason,
	}).Warn("Game skipped")
}
