//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-edge/internal/artifact"
	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/engine"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
	"github.com/yourusername/line-edge/test/helpers"
)

const skipE2E = "Skipping E2E test in short mode"

const (
	homeName = "Buffalo Bills"
	awayName = "Kansas City Chiefs"
	venue    = "Highmark Stadium"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// e2eConfig builds a full runtime configuration pointing every provider at
// the given mock server URLs.
func e2eConfig(scheduleURL, oddsURL, weatherURL, injuryURL, artifactDir string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "line-edge-e2e", Environment: "development", LogLevel: "error"},
		Providers: config.ProvidersConfig{
			Schedule:           config.ProviderConfig{BaseURL: scheduleURL, APIKey: "e2e-key", Enabled: true},
			Odds:               config.OddsConfig{BaseURL: oddsURL, APIKey: "e2e-key", Enabled: true, Books: []string{"draftkings", "fanduel"}},
			Weather:            config.ProviderConfig{BaseURL: weatherURL, APIKey: "e2e-key", Enabled: true},
			Injuries:           config.ProviderConfig{BaseURL: injuryURL, APIKey: "e2e-key", Enabled: true},
			RateLimitPerSecond: 100,
			RetryMax:           0,
			TimeoutSeconds:     5,
		},
		Cache: config.CacheConfig{SignalTTLHours: 6, CleanupIntervalMinutes: 30},
		Sync: config.SyncConfig{
			LockWindowMinutes:     60,
			BatchSize:             50,
			MaxParallel:           4,
			HorizonDays:           8,
			BackfillDays:          3,
			OddsCoverageWarnBelow: 0.8,
		},
		Artifact: config.ArtifactConfig{OutputDir: artifactDir, Pretty: true},
		Metrics:  config.MetricsConfig{Enabled: false, Port: 9090, Path: "/metrics", HealthPort: 8081},
		Sports: map[string]config.SportConfig{
			"nfl": {
				Enabled:              true,
				LeagueCode:           "nfl",
				SeasonStartMonth:     9,
				SeasonStartDay:       1,
				InitialRating:        1500,
				BaseK:                20,
				MOVLogScale:          0.8,
				MOVBase:              0.2,
				HomeRatingBonus:      48,
				RoundRatings:         true,
				LeagueAvgPoints:      22.5,
				FallbackTotal:        45.5,
				StatWeight:           0.7,
				EloPerPoint:          25,
				EloPointCap:          10,
				HomeAdvantagePoints:  2.0,
				SpreadRegression:     0.15,
				PasserOutPenalty:     3,
				WeatherSensitive:     true,
				WindPenaltyThreshold: 12,
				WindPenaltyPerMPH:    0.25,
				PrecipPenaltyPoints:  1.5,
				WeatherPenaltyCap:    6.0,
				SpreadEdgeHigh:       3.0,
				SpreadEdgeMedium:     1.5,
				TotalEdgeHigh:        4.0,
				TotalEdgeMedium:      2.0,
				MoneylineProbHigh:    0.15,
				MoneylineProbMedium:  0.08,
				AvoidBandLow:         3.5,
				AvoidBandHigh:        7.0,
				ConvictionThreshold:  2.0,
			},
		},
	}
}

// sameSeasonPast returns a kickoff the given hours back, pulled forward when
// that would land in the previous season.
func sameSeasonPast(sportCfg config.SportConfig, now time.Time, hoursBack int) time.Time {
	kickoff := now.Add(-time.Duration(hoursBack) * time.Hour)
	if sportCfg.SeasonFor(kickoff) != sportCfg.SeasonFor(now) {
		kickoff = now.Add(-1 * time.Hour)
	}
	return kickoff
}

// TestFullSyncPass drives a complete pass through real provider clients
// against mock upstreams and a real database: ingest, replay, line refresh,
// predictions, state save and artifact publish.
func TestFullSyncPass(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)
	helpers.CleanupDatabase(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	now := time.Now().UTC()
	artifactDir := t.TempDir()
	sportCfg := e2eConfig("", "", "", "", "").Sports["nfl"]
	season := sportCfg.SeasonFor(now)

	final1Kickoff := sameSeasonPast(sportCfg, now, 30)
	final2Kickoff := sameSeasonPast(sportCfg, now, 26)
	upcomingKickoff := now.Add(24 * time.Hour)

	outdoorVenue := venue
	scheduleServer := helpers.MockScheduleServer(t, []helpers.ScheduleGameFixture{
		{
			ID: "e2e-final-1", League: "nfl",
			HomeTeam: homeName, AwayTeam: "New York Jets",
			StartTime: final1Kickoff.Format(time.RFC3339), Venue: &outdoorVenue,
			Status: "final", HomeScore: intPtr(27), AwayScore: intPtr(17),
		},
		{
			ID: "e2e-final-2", League: "nfl",
			HomeTeam: awayName, AwayTeam: "Denver Broncos",
			StartTime: final2Kickoff.Format(time.RFC3339),
			Status:    "final", HomeScore: intPtr(31), AwayScore: intPtr(13),
		},
		{
			ID: "e2e-upcoming-1", League: "nfl",
			HomeTeam: homeName, AwayTeam: awayName,
			StartTime: upcomingKickoff.Format(time.RFC3339), Venue: &outdoorVenue,
			Status: "scheduled",
		},
	})
	defer scheduleServer.Close()

	oddsServer := helpers.MockOddsServer(t, []helpers.OddsEventFixture{
		{
			ID:           "odds-e2e-upcoming-1",
			SportKey:     "americanfootball_nfl",
			CommenceTime: upcomingKickoff.Format(time.RFC3339),
			HomeTeam:     homeName,
			AwayTeam:     awayName,
			Bookmakers:   helpers.SingleBookMarkets("draftkings", homeName, awayName, -2.5, 47.5, -135, 115),
		},
	})
	defer oddsServer.Close()

	weatherServer := helpers.MockWeatherServer(t, map[string]helpers.WeatherFixture{
		venue: {Venue: venue, TemperatureF: 28, WindMph: 18, PrecipitationMm: 2.5},
	})
	defer weatherServer.Close()

	injuryServer := helpers.MockInjuryServer(t, []helpers.InjuryEntryFixture{
		{Team: awayName, Player: "Backup Lineman", Position: "G", Status: "Questionable"},
	})
	defer injuryServer.Close()

	cfg := e2eConfig(scheduleServer.URL, oddsServer.URL, weatherServer.URL, injuryServer.URL, artifactDir)

	providerLog := log.New(io.Discard, "", 0)
	providers := datasource.NewFactory(cfg, providerLog).NewProviders()
	defer providers.Close()

	cacheMgr := cache.NewManager(cfg.Cache.SignalTTL(), repos.Signal)
	publisher := artifact.NewFilePublisher(cfg.Artifact)

	orch := engine.NewOrchestrator(cfg, repos, engine.Sources{
		Schedule: providers.Schedule,
		Odds:     providers.Odds,
		Weather:  providers.Weather,
		Injuries: providers.Injuries,
	}, cacheMgr, publisher, quietLogger())

	// First pass grades both finals and predicts the upcoming matchup
	summary, err := orch.Run(ctx, engine.RunOptions{Sport: models.SportNFL})
	require.NoError(t, err)

	assert.Equal(t, models.SportNFL, summary.Sport)
	assert.Equal(t, season, summary.Season)
	assert.Equal(t, 3, summary.GamesIngested)
	assert.Equal(t, 2, summary.GamesProcessed)
	assert.Equal(t, 0, summary.GamesSkipped)
	assert.Equal(t, 1, summary.Predictions)
	assert.Equal(t, 0, summary.LinesLocked)
	assert.True(t, summary.CoverageWarning, "finals graded without stored lines should warn")

	// Winners gained rating, losers lost it
	homeID := models.TeamID(models.SportNFL, homeName)
	home, err := repos.Team.GetByID(ctx, homeID)
	require.NoError(t, err)
	assert.Greater(t, home.Rating, 1500.0)
	assert.Equal(t, 1, home.Wins)
	ratingAfterFirstPass := home.Rating

	jets, err := repos.Team.GetByID(ctx, models.TeamID(models.SportNFL, "New York Jets"))
	require.NoError(t, err)
	assert.Less(t, jets.Rating, 1500.0)
	assert.Equal(t, 1, jets.Losses)

	// Both finals committed: graded rows, processed markers, sync state
	graded, err := repos.Backtest.ListBySeason(ctx, models.SportNFL, season)
	require.NoError(t, err)
	assert.Len(t, graded, 2)

	final1, err := repos.Game.GetByID(ctx, "e2e-final-1")
	require.NoError(t, err)
	assert.True(t, final1.Processed)

	state, err := repos.SyncState.Get(ctx, models.SportNFL)
	require.NoError(t, err)
	assert.True(t, state.IsProcessed("e2e-final-1"))
	assert.True(t, state.IsProcessed("e2e-final-2"))
	assert.Equal(t, summary.RunID, state.LastRunID)

	// Consensus odds landed on the upcoming game's line record
	record, err := repos.Line.Get(ctx, "e2e-upcoming-1")
	require.NoError(t, err)
	require.NotNil(t, record.LastSpread)
	assert.Equal(t, -2.5, *record.LastSpread)
	require.NotNil(t, record.LastTotal)
	assert.Equal(t, 47.5, *record.LastTotal)
	require.NotNil(t, record.HomeMoneyline)
	assert.Equal(t, -135, *record.HomeMoneyline)
	require.NotNil(t, record.AwayMoneyline)
	assert.Equal(t, 115, *record.AwayMoneyline)
	assert.False(t, record.IsLocked())

	// Published artifact carries ratings, the graded summary and the projection
	data, err := os.ReadFile(publisher.Path("nfl"))
	require.NoError(t, err)

	var snapshot artifact.Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, models.SportNFL, snapshot.Sport)
	assert.Equal(t, summary.RunID, snapshot.RunID)
	assert.Len(t, snapshot.Ratings, 4)
	assert.Equal(t, 1, snapshot.Ratings[0].Rank)
	require.Len(t, snapshot.Games, 1)
	assert.Equal(t, "e2e-upcoming-1", snapshot.Games[0].GameID)
	require.NotNil(t, snapshot.Games[0].Prediction)
	assert.InDelta(t, 0.5, snapshot.Games[0].Prediction.HomeWinProb, 0.5)
	require.NotNil(t, snapshot.Games[0].Line)

	// Second pass finds nothing new to grade and changes no ratings
	summary2, err := orch.Run(ctx, engine.RunOptions{Sport: models.SportNFL})
	require.NoError(t, err)
	assert.Equal(t, 0, summary2.GamesProcessed)
	assert.Equal(t, 1, summary2.Predictions)

	homeAgain, err := repos.Team.GetByID(ctx, homeID)
	require.NoError(t, err)
	assert.Equal(t, ratingAfterFirstPass, homeAgain.Rating)

	// Forced reset rebuilds the season from scratch to the same ratings
	summary3, err := orch.Run(ctx, engine.RunOptions{Sport: models.SportNFL, ForceReset: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary3.GamesProcessed)

	homeRebuilt, err := repos.Team.GetByID(ctx, homeID)
	require.NoError(t, err)
	assert.Equal(t, ratingAfterFirstPass, homeRebuilt.Rating, "replaying the same games must reproduce the same ratings")
}

// TestLostStateRecovery deletes the sync state row between passes and
// verifies the next pass rebuilds it from stored graded rows instead of
// regrading.
func TestLostStateRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip(skipE2E)
	}

	ctx := context.Background()
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)
	helpers.CleanupDatabase(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)

	now := time.Now().UTC()
	sportCfg := e2eConfig("", "", "", "", "").Sports["nfl"]
	kickoff := sameSeasonPast(sportCfg, now, 20)

	scheduleServer := helpers.MockScheduleServer(t, []helpers.ScheduleGameFixture{
		{
			ID: "e2e-recover-1", League: "nfl",
			HomeTeam: "Detroit Lions", AwayTeam: "Chicago Bears",
			StartTime: kickoff.Format(time.RFC3339),
			Status:    "final", HomeScore: intPtr(24), AwayScore: intPtr(21),
		},
	})
	defer scheduleServer.Close()

	oddsServer := helpers.MockOddsServer(t, nil)
	defer oddsServer.Close()
	weatherServer := helpers.MockWeatherServer(t, nil)
	defer weatherServer.Close()
	injuryServer := helpers.MockInjuryServer(t, nil)
	defer injuryServer.Close()

	cfg := e2eConfig(scheduleServer.URL, oddsServer.URL, weatherServer.URL, injuryServer.URL, t.TempDir())

	providers := datasource.NewFactory(cfg, log.New(io.Discard, "", 0)).NewProviders()
	defer providers.Close()

	orch := engine.NewOrchestrator(cfg, repos, engine.Sources{
		Schedule: providers.Schedule,
		Odds:     providers.Odds,
		Weather:  providers.Weather,
		Injuries: providers.Injuries,
	}, cache.NewManager(cfg.Cache.SignalTTL(), repos.Signal), artifact.NewFilePublisher(cfg.Artifact), quietLogger())

	summary, err := orch.Run(ctx, engine.RunOptions{Sport: models.SportNFL})
	require.NoError(t, err)
	require.Equal(t, 1, summary.GamesProcessed)

	lions, err := repos.Team.GetByID(ctx, models.TeamID(models.SportNFL, "Detroit Lions"))
	require.NoError(t, err)
	ratingBefore := lions.Rating

	_, err = db.Exec(ctx, "DELETE FROM sync_state WHERE sport = $1", models.SportNFL)
	require.NoError(t, err)

	summary2, err := orch.Run(ctx, engine.RunOptions{Sport: models.SportNFL})
	require.NoError(t, err)
	assert.Equal(t, 0, summary2.GamesProcessed, "recovered state must not regrade stored results")

	state, err := repos.SyncState.Get(ctx, models.SportNFL)
	require.NoError(t, err)
	assert.True(t, state.IsProcessed("e2e-recover-1"))
	assert.Equal(t, 1, state.Tallies.Moneyline.Wins+state.Tallies.Moneyline.Losses)

	lionsAfter, err := repos.Team.GetByID(ctx, models.TeamID(models.SportNFL, "Detroit Lions"))
	require.NoError(t, err)
	assert.Equal(t, ratingBefore, lionsAfter.Rating, "recovery must not refold ratings")
}

func intPtr(v int) *int { return &v }
