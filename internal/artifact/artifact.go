// Package artifact builds and publishes the denormalized per-sport snapshot
// consumed by downstream display surfaces.
package artifact

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/models"
)

// TeamRating is one row of the published rating table
type TeamRating struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"team_id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"games_played"`
}

// GameProjection is one upcoming game with its forecast and market state,
// denormalized so consumers need no joins
type GameProjection struct {
	GameID     string             `json:"game_id"`
	Kickoff    time.Time          `json:"kickoff"`
	Venue      string             `json:"venue,omitempty"`
	HomeTeam   string             `json:"home_team"`
	AwayTeam   string             `json:"away_team"`
	Prediction *models.Prediction `json:"prediction,omitempty"`
	Line       *models.LineRecord `json:"line,omitempty"`
}

// Snapshot is the full published state for one sport after a sync pass
type Snapshot struct {
	Sport       models.Sport     `json:"sport"`
	Season      int              `json:"season"`
	Week        int              `json:"week"`
	RunID       uuid.UUID        `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Summary     backtest.Summary `json:"summary"`
	Ratings     []TeamRating     `json:"ratings"`
	Games       []GameProjection `json:"games"`
}

// Build assembles a snapshot. Teams are expected sorted by rating descending;
// ranks are assigned in that order. Games missing a name lookup are included
// with their raw ids so the snapshot never silently drops a matchup.
func Build(
	sport models.Sport,
	season, week int,
	runID uuid.UUID,
	generatedAt time.Time,
	summary backtest.Summary,
	teams []*models.Team,
	games []*models.Game,
	predictions map[string]*models.Prediction,
	lineRecords map[string]*models.LineRecord,
) *Snapshot {
	snapshot := &Snapshot{
		Sport:       sport,
		Season:      season,
		Week:        week,
		RunID:       runID,
		GeneratedAt: generatedAt,
		Summary:     summary,
		Ratings:     make([]TeamRating, 0, len(teams)),
		Games:       make([]GameProjection, 0, len(games)),
	}

	namesByID := make(map[string]string, len(teams))
	for i, team := range teams {
		namesByID[team.ID] = team.Name
		snapshot.Ratings = append(snapshot.Ratings, TeamRating{
			Rank:        i + 1,
			TeamID:      team.ID,
			Name:        team.Name,
			Rating:      team.Rating,
			Wins:        team.Wins,
			Losses:      team.Losses,
			GamesPlayed: team.GamesPlayed,
		})
	}

	for _, game := range games {
		projection := GameProjection{
			GameID:   game.ID,
			Kickoff:  game.Kickoff,
			Venue:    game.Venue,
			HomeTeam: teamName(namesByID, game.HomeTeamID),
			AwayTeam: teamName(namesByID, game.AwayTeamID),
		}
		if pred, ok := predictions[game.ID]; ok {
			projection.Prediction = pred
		}
		if rec, ok := lineRecords[game.ID]; ok {
			projection.Line = rec
		}
		snapshot.Games = append(snapshot.Games, projection)
	}

	return snapshot
}

func teamName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
