package models

import "time"

// Game status values
const (
	GameStatusScheduled  = "scheduled"
	GameStatusInProgress = "in_progress"
	GameStatusFinal      = "final"
)

// Game represents a single scheduled or completed matchup
type Game struct {
	ID         string    `db:"id" json:"id" validate:"required"`
	Sport      Sport     `db:"sport" json:"sport" validate:"required"`
	Season     int       `db:"season" json:"season" validate:"required,gt=1900"`
	Week       int       `db:"week" json:"week" validate:"gte=0"`
	HomeTeamID string    `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID string    `db:"away_team_id" json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	Kickoff    time.Time `db:"kickoff" json:"kickoff" validate:"required"`
	Venue      string    `db:"venue" json:"venue"`
	Indoor     bool      `db:"indoor" json:"indoor"`
	Status     string    `db:"status" json:"status" validate:"oneof=scheduled in_progress final"`
	HomeScore  *int      `db:"home_score" json:"home_score"`
	AwayScore  *int      `db:"away_score" json:"away_score"`
	Processed  bool      `db:"processed" json:"processed"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsFinal reports whether the game has completed with both scores present
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal && g.HomeScore != nil && g.AwayScore != nil
}

// IsUpcoming reports whether the game has not started yet
func (g *Game) IsUpcoming() bool {
	return g.Status == GameStatusScheduled
}

// HomeMargin returns home score minus away score for a final game
func (g *Game) HomeMargin() int {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0
	}
	return *g.HomeScore - *g.AwayScore
}

// ActualSpread returns the game's realized spread, away minus home
func (g *Game) ActualSpread() float64 {
	return -float64(g.HomeMargin())
}

// ActualTotal returns the combined final score
func (g *Game) ActualTotal() int {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0
	}
	return *g.HomeScore + *g.AwayScore
}

// TimeToKickoff returns the duration until scheduled start
func (g *Game) TimeToKickoff(now time.Time) time.Duration {
	return g.Kickoff.Sub(now)
}
