package models

import "time"

// Line record lifecycle states
const (
	LineStatusOpen     = "open"
	LineStatusUpdating = "updating"
	LineStatusLocked   = "locked"
)

// LineRecord tracks the market line observed for one game across its lifecycle
type LineRecord struct {
	GameID        string     `db:"game_id" json:"game_id" validate:"required"`
	Sport         Sport      `db:"sport" json:"sport" validate:"required"`
	Status        string     `db:"status" json:"status" validate:"oneof=open updating locked"`
	OpeningSpread *float64   `db:"opening_spread" json:"opening_spread"`
	OpeningTotal  *float64   `db:"opening_total" json:"opening_total"`
	LastSpread    *float64   `db:"last_spread" json:"last_spread"`
	LastTotal     *float64   `db:"last_total" json:"last_total"`
	ClosingSpread *float64   `db:"closing_spread" json:"closing_spread"`
	ClosingTotal  *float64   `db:"closing_total" json:"closing_total"`
	HomeMoneyline *int       `db:"home_moneyline" json:"home_moneyline"`
	AwayMoneyline *int       `db:"away_moneyline" json:"away_moneyline"`
	CapturedAt    *time.Time `db:"captured_at" json:"captured_at"`
	LockedAt      *time.Time `db:"locked_at" json:"locked_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsLocked reports whether the record has been frozen
func (l *LineRecord) IsLocked() bool {
	return l.Status == LineStatusLocked
}

// HasQuote reports whether at least one market observation was captured
func (l *LineRecord) HasQuote() bool {
	return l.LastSpread != nil || l.LastTotal != nil
}

// SpreadReference returns the spread to grade against: closing once locked,
// otherwise the most recent observation. Second return is false when no
// market number exists at all.
func (l *LineRecord) SpreadReference() (float64, bool) {
	if l.IsLocked() && l.ClosingSpread != nil {
		return *l.ClosingSpread, true
	}
	if l.LastSpread != nil {
		return *l.LastSpread, true
	}
	return 0, false
}

// TotalReference returns the total to grade against, same precedence as
// SpreadReference.
func (l *LineRecord) TotalReference() (float64, bool) {
	if l.IsLocked() && l.ClosingTotal != nil {
		return *l.ClosingTotal, true
	}
	if l.LastTotal != nil {
		return *l.LastTotal, true
	}
	return 0, false
}
