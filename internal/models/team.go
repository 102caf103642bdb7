package models

import (
	"strings"
	"time"
)

// Team represents one team's rolling rating and scoring profile within a season
type Team struct {
	ID             string    `db:"id" json:"id" validate:"required"`
	Sport          Sport     `db:"sport" json:"sport" validate:"required"`
	Name           string    `db:"name" json:"name" validate:"required"`
	Abbreviation   string    `db:"abbreviation" json:"abbreviation"`
	Rating         float64   `db:"rating" json:"rating"`
	OffensePPG     float64   `db:"offense_ppg" json:"offense_ppg" validate:"gte=0"`
	DefensePPG     float64   `db:"defense_ppg" json:"defense_ppg" validate:"gte=0"`
	GamesPlayed    int       `db:"games_played" json:"games_played" validate:"gte=0"`
	Wins           int       `db:"wins" json:"wins" validate:"gte=0"`
	Losses         int       `db:"losses" json:"losses" validate:"gte=0"`
	ConferenceTier int       `db:"conference_tier" json:"conference_tier" validate:"gte=0,lte=2"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeamID derives the stable identifier for a team from its display name.
// Providers send names; the slug keeps one identity per team per sport no
// matter which feed a game arrived from.
func TeamID(sport Sport, name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	return string(sport) + "-" + slug
}

// HasScoringProfile reports whether per-game averages are usable yet
func (t *Team) HasScoringProfile() bool {
	return t.GamesPlayed > 0
}

// RecordGame folds one final score into the team's rolling averages
func (t *Team) RecordGame(pointsFor, pointsAgainst int) {
	n := float64(t.GamesPlayed)
	t.OffensePPG = (t.OffensePPG*n + float64(pointsFor)) / (n + 1)
	t.DefensePPG = (t.DefensePPG*n + float64(pointsAgainst)) / (n + 1)
	t.GamesPlayed++
	if pointsFor > pointsAgainst {
		t.Wins++
	} else if pointsFor < pointsAgainst {
		t.Losses++
	}
}
