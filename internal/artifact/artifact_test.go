package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func buildFixture() *Snapshot {
	kickoff := time.Date(2025, 11, 9, 18, 0, 0, 0, time.UTC)
	teams := []*models.Team{
		{ID: "ne", Sport: models.SportNFL, Name: "New England", Rating: 1560.4, Wins: 7, Losses: 2, GamesPlayed: 9},
		{ID: "buf", Sport: models.SportNFL, Name: "Buffalo", Rating: 1541.0, Wins: 6, Losses: 3, GamesPlayed: 9},
		{ID: "nyj", Sport: models.SportNFL, Name: "NY Jets", Rating: 1438.2, Wins: 2, Losses: 7, GamesPlayed: 9},
	}
	games := []*models.Game{
		{
			ID:         "g1",
			Sport:      models.SportNFL,
			Season:     2025,
			Week:       10,
			HomeTeamID: "buf",
			AwayTeamID: "ne",
			Kickoff:    kickoff,
			Venue:      "Highmark Stadium",
			Status:     models.GameStatusScheduled,
		},
		{
			ID:         "g2",
			Sport:      models.SportNFL,
			Season:     2025,
			Week:       10,
			HomeTeamID: "nyj",
			AwayTeamID: "mia",
			Kickoff:    kickoff.Add(3 * time.Hour),
			Status:     models.GameStatusScheduled,
		},
	}
	predictions := map[string]*models.Prediction{
		"g1": {
			GameID:      "g1",
			Sport:       models.SportNFL,
			Spread:      -2.5,
			Total:       47.0,
			HomeWinProb: 0.58,
		},
	}
	lineRecords := map[string]*models.LineRecord{
		"g1": {
			GameID:     "g1",
			Sport:      models.SportNFL,
			Status:     models.LineStatusUpdating,
			LastSpread: floatPtr(-1.5),
			LastTotal:  floatPtr(46.5),
		},
	}

	tallies := models.TallySet{
		SpreadModel: models.BacktestTally{Wins: 6, Losses: 3},
	}
	summary := backtest.BuildSummary(models.SportNFL, 2025, 9, tallies)

	return Build(models.SportNFL, 2025, 10, uuid.New(), kickoff.Add(-time.Hour), summary,
		teams, games, predictions, lineRecords)
}

func TestBuildSnapshot(t *testing.T) {
	snapshot := buildFixture()

	require.Len(t, snapshot.Ratings, 3)
	assert.Equal(t, 1, snapshot.Ratings[0].Rank)
	assert.Equal(t, "ne", snapshot.Ratings[0].TeamID)
	assert.Equal(t, "New England", snapshot.Ratings[0].Name)
	assert.Equal(t, 3, snapshot.Ratings[2].Rank)
	assert.Equal(t, "nyj", snapshot.Ratings[2].TeamID)

	require.Len(t, snapshot.Games, 2)
	first := snapshot.Games[0]
	assert.Equal(t, "g1", first.GameID)
	assert.Equal(t, "Buffalo", first.HomeTeam)
	assert.Equal(t, "New England", first.AwayTeam)
	require.NotNil(t, first.Prediction)
	assert.InDelta(t, -2.5, first.Prediction.Spread, 0.001)
	require.NotNil(t, first.Line)
	assert.Equal(t, models.LineStatusUpdating, first.Line.Status)
}

func TestBuildKeepsGamesWithUnknownTeams(t *testing.T) {
	snapshot := buildFixture()

	second := snapshot.Games[1]
	assert.Equal(t, "NY Jets", second.HomeTeam)
	assert.Equal(t, "mia", second.AwayTeam, "unknown team id should pass through raw")
	assert.Nil(t, second.Prediction)
	assert.Nil(t, second.Line)
}

func TestFilePublisherPublish(t *testing.T) {
	dir := t.TempDir()
	publisher := NewFilePublisher(config.ArtifactConfig{OutputDir: dir, Pretty: true})
	snapshot := buildFixture()

	err := publisher.Publish(context.Background(), snapshot)
	require.NoError(t, err)

	data, err := os.ReadFile(publisher.Path("nfl"))
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, models.SportNFL, decoded.Sport)
	assert.Equal(t, 2025, decoded.Season)
	assert.Equal(t, 10, decoded.Week)
	assert.Equal(t, snapshot.RunID, decoded.RunID)
	assert.Len(t, decoded.Ratings, 3)
	assert.Len(t, decoded.Games, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestFilePublisherCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts", "nested")
	publisher := NewFilePublisher(config.ArtifactConfig{OutputDir: dir})

	err := publisher.Publish(context.Background(), buildFixture())
	require.NoError(t, err)

	_, err = os.Stat(publisher.Path("nfl"))
	assert.NoError(t, err)
}

func TestFilePublisherNilSnapshot(t *testing.T) {
	publisher := NewFilePublisher(config.ArtifactConfig{OutputDir: t.TempDir()})

	err := publisher.Publish(context.Background(), nil)
	assert.Error(t, err)
}
