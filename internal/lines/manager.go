// Package lines tracks a market line per game through its open, updating and
// locked states.
package lines

import (
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// Quote is one observed set of market numbers for a game. Nil fields were
// not offered in that observation and never erase earlier ones.
type Quote struct {
	Spread        *float64
	Total         *float64
	HomeMoneyline *int
	AwayMoneyline *int
}

// Empty reports whether the quote carries no line values
func (q Quote) Empty() bool {
	return q.Spread == nil && q.Total == nil && q.HomeMoneyline == nil && q.AwayMoneyline == nil
}

// Manager applies lifecycle transitions to line records. It holds no state
// of its own; records are the state.
type Manager struct {
	lockWindow time.Duration
}

// NewManager creates a manager that locks lines lockWindow before kickoff
func NewManager(lockWindow time.Duration) *Manager {
	return &Manager{lockWindow: lockWindow}
}

// NewRecord returns an open record with no observations for a game
func NewRecord(gameID string, sport models.Sport) *models.LineRecord {
	return &models.LineRecord{
		GameID: gameID,
		Sport:  sport,
		Status: models.LineStatusOpen,
	}
}

// Observe folds one quote into the record. The first time a field is seen it
// becomes the opening value; afterwards only the last-seen value moves.
// Locked records reject every write.
func (m *Manager) Observe(rec *models.LineRecord, q Quote, now time.Time) error {
	if rec.IsLocked() {
		return models.ErrLineLocked
	}
	if q.Empty() {
		return nil
	}

	if q.Spread != nil {
		if rec.OpeningSpread == nil {
			v := *q.Spread
			rec.OpeningSpread = &v
		}
		v := *q.Spread
		rec.LastSpread = &v
	}
	if q.Total != nil {
		if rec.OpeningTotal == nil {
			v := *q.Total
			rec.OpeningTotal = &v
		}
		v := *q.Total
		rec.LastTotal = &v
	}
	if q.HomeMoneyline != nil {
		v := *q.HomeMoneyline
		rec.HomeMoneyline = &v
	}
	if q.AwayMoneyline != nil {
		v := *q.AwayMoneyline
		rec.AwayMoneyline = &v
	}

	if rec.CapturedAt == nil {
		ts := now
		rec.CapturedAt = &ts
	}
	rec.Status = models.LineStatusUpdating
	rec.UpdatedAt = now
	return nil
}

// MaybeLock freezes the record into its closing values when kickoff is
// within the lock window and at least one line value was observed. Returns
// true when the lock transition happened on this call.
func (m *Manager) MaybeLock(rec *models.LineRecord, kickoff, now time.Time) bool {
	if rec.IsLocked() {
		return false
	}
	if kickoff.Sub(now) > m.lockWindow {
		return false
	}
	if !rec.HasQuote() {
		return false
	}

	if rec.LastSpread != nil {
		v := *rec.LastSpread
		rec.ClosingSpread = &v
	}
	if rec.LastTotal != nil {
		v := *rec.LastTotal
		rec.ClosingTotal = &v
	}
	ts := now
	rec.LockedAt = &ts
	rec.Status = models.LineStatusLocked
	rec.UpdatedAt = now
	return true
}

// ShouldFetch reports whether external quotes are still worth fetching for
// the record. Locked lines never trigger network calls.
func (m *Manager) ShouldFetch(rec *models.LineRecord) bool {
	return !rec.IsLocked()
}
