package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// CleanupDatabase truncates all test tables.
func CleanupDatabase(t *testing.T, db *database.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"backtest_results",
		"cached_signals",
		"line_records",
		"games",
		"teams",
		"sync_state",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Logf("Warning: failed to truncate table %s: %v", table, err)
		}
	}
}

// ScheduleGameFixture mirrors one game in the schedule feed's wire format.
type ScheduleGameFixture struct {
	ID           string  `json:"id"`
	League       string  `json:"league"`
	HomeTeam     string  `json:"homeTeam"`
	AwayTeam     string  `json:"awayTeam"`
	StartTime    string  `json:"startTime"`
	Venue        *string `json:"venue,omitempty"`
	NeutralSite  *bool   `json:"neutralSite,omitempty"`
	Status       string  `json:"status"`
	HomeScore    *int    `json:"homeScore,omitempty"`
	AwayScore    *int    `json:"awayScore,omitempty"`
	HomeDivision *int    `json:"homeDivision,omitempty"`
	AwayDivision *int    `json:"awayDivision,omitempty"`
}

// MockScheduleServer creates a mock HTTP server serving the schedule feed.
// Every games request returns the given fixtures regardless of date window.
func MockScheduleServer(t *testing.T, games []ScheduleGameFixture) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") || !strings.HasSuffix(r.URL.Path, "/games") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"games": games,
		})
	})

	return httptest.NewServer(handler)
}

// OddsEventFixture mirrors one event in the odds feed's wire format.
type OddsEventFixture struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime string             `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []BookmakerFixture `json:"bookmakers"`
}

// BookmakerFixture is one sportsbook's market set within an odds event.
type BookmakerFixture struct {
	Key     string          `json:"key"`
	Markets []MarketFixture `json:"markets"`
}

// MarketFixture is one market (spreads, totals or h2h) within a bookmaker.
type MarketFixture struct {
	Key      string           `json:"key"`
	Outcomes []OutcomeFixture `json:"outcomes"`
}

// OutcomeFixture is one priced outcome within a market.
type OutcomeFixture struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// SingleBookMarkets builds a one-bookmaker market set quoting the given
// spread, total and moneylines. Spread is home-relative.
func SingleBookMarkets(book, homeTeam, awayTeam string, spread, total float64, homePrice, awayPrice float64) []BookmakerFixture {
	awaySpread := -spread
	overPoint := total
	underPoint := total

	return []BookmakerFixture{{
		Key: book,
		Markets: []MarketFixture{
			{
				Key: "spreads",
				Outcomes: []OutcomeFixture{
					{Name: homeTeam, Price: -110, Point: &spread},
					{Name: awayTeam, Price: -110, Point: &awaySpread},
				},
			},
			{
				Key: "totals",
				Outcomes: []OutcomeFixture{
					{Name: "Over", Price: -110, Point: &overPoint},
					{Name: "Under", Price: -110, Point: &underPoint},
				},
			},
			{
				Key: "h2h",
				Outcomes: []OutcomeFixture{
					{Name: homeTeam, Price: homePrice},
					{Name: awayTeam, Price: awayPrice},
				},
			},
		},
	}}
}

// MockOddsServer creates a mock HTTP server serving the odds feed. The
// response is the feed's top-level event array.
func MockOddsServer(t *testing.T, events []OddsEventFixture) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v4/sports/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	})

	return httptest.NewServer(handler)
}

// WeatherFixture mirrors the forecast feed's wire format.
type WeatherFixture struct {
	Venue           string  `json:"venue"`
	TemperatureF    float64 `json:"temperatureF"`
	WindMph         float64 `json:"windMph"`
	PrecipitationMm float64 `json:"precipitationMm"`
	Indoor          bool    `json:"indoor"`
}

// MockWeatherServer creates a mock HTTP server serving venue forecasts.
// Unknown venues get a calm outdoor default so tests only need fixtures
// for the conditions they assert on.
func MockWeatherServer(t *testing.T, forecasts map[string]WeatherFixture) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		venue := r.URL.Query().Get("venue")
		forecast, ok := forecasts[venue]
		if !ok {
			forecast = WeatherFixture{Venue: venue, TemperatureF: 60, WindMph: 3}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(forecast)
	})

	return httptest.NewServer(handler)
}

// InjuryEntryFixture mirrors one report line in the injury feed's wire format.
type InjuryEntryFixture struct {
	Team     string `json:"team"`
	Player   string `json:"player"`
	Position string `json:"position"`
	Status   string `json:"status"`
}

// MockInjuryServer creates a mock HTTP server serving the injury feed.
func MockInjuryServer(t *testing.T, entries []InjuryEntryFixture) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") || !strings.HasSuffix(r.URL.Path, "/injuries") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"injuries": entries,
		})
	})

	return httptest.NewServer(handler)
}

// BuildTestTeam constructs a team with sensible defaults for seeding.
func BuildTestTeam(sport models.Sport, name string, rating float64) *models.Team {
	return &models.Team{
		ID:        models.TeamID(sport, name),
		Sport:     sport,
		Name:      name,
		Rating:    rating,
		UpdatedAt: time.Now().UTC(),
	}
}

// BuildFinalGame constructs a completed game between two seeded teams.
func BuildFinalGame(id string, sport models.Sport, season, week int, homeID, awayID string, kickoff time.Time, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID:         id,
		Sport:      sport,
		Season:     season,
		Week:       week,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Kickoff:    kickoff,
		Status:     models.GameStatusFinal,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
		UpdatedAt:  time.Now().UTC(),
	}
}

// BuildUpcomingGame constructs a scheduled game between two seeded teams.
func BuildUpcomingGame(id string, sport models.Sport, season, week int, homeID, awayID string, kickoff time.Time, venue string) *models.Game {
	return &models.Game{
		ID:         id,
		Sport:      sport,
		Season:     season,
		Week:       week,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Kickoff:    kickoff,
		Venue:      venue,
		Status:     models.GameStatusScheduled,
		UpdatedAt:  time.Now().UTC(),
	}
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// CreateTestContext creates a context with a timeout for testing.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
