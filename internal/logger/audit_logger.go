// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for state transitions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogLineLocked logs the freeze of a market line.
func (al *AuditLogger) LogLineLocked(sport, gameID string, closingSpread, closingTotal *float64, lockedAt time.Time) {
	fields := logrus.Fields{
		"sport":     sport,
		"game_id":   gameID,
		"locked_at": lockedAt.Unix(),
	}
	if closingSpread != nil {
		fields["closing_spread"] = *closingSpread
	}
	if closingTotal != nil {
		fields["closing_total"] = *closingTotal
	}
	al.WithFields(fields).Info("Line locked")
}

// LogLineOpened logs the first market observation for a game.
func (al *AuditLogger) LogLineOpened(sport, gameID string, openingSpread, openingTotal *float64) {
	fields := logrus.Fields{
		"sport":   sport,
		"game_id": gameID,
	}
	if openingSpread != nil {
		fields["opening_spread"] = *openingSpread
	}
	if openingTotal != nil {
		fields["opening_total"] = *openingTotal
	}
	al.WithFields(fields).Info("Line opened")
}

// LogRejectedWrite logs a write attempt against a locked line.
func (al *AuditLogger) LogRejectedWrite(sport, gameID, source string) {
	al.WithFields(logrus.Fields{
		"sport":   sport,
		"game_id": gameID,
		"source":  source,
	}).Warn("Write to locked line rejected")
}

// LogSeasonReset logs a sync state reset with its trigger.
func (al *AuditLogger) LogSeasonReset(sport string, oldSeason, newSeason int, reason string) {
	al.WithFields(logrus.Fields{
		"sport":      sport,
		"old_season": oldSeason,
		"new_season": newSeason,
		"reason":     reason,
	}).Warn("Sync state reset")
}

// LogArtifactPublished logs a published artifact snapshot.
func (al *AuditLogger) LogArtifactPublished(sport string, games, ratings int, generatedAt time.Time) {
	al.WithFields(logrus.Fields{
		"sport":        sport,
		"games":        games,
		"ratings":      ratings,
		"generated_at": generatedAt.Unix(),
	}).Info("Artifact published")
}
