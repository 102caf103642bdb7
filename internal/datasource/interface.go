package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// Game status values after normalization
const (
	GameStatusScheduled  = "scheduled"
	GameStatusInProgress = "in_progress"
	GameStatusFinal      = "final"
)

// ScheduleProvider defines the interface for fetching schedules and scores
type ScheduleProvider interface {
	// FetchGames retrieves games for a sport within the specified date range
	FetchGames(ctx context.Context, sport models.Sport, startDate, endDate time.Time) ([]GameUpdate, error)

	// Name returns the name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// OddsProvider defines the interface for fetching market lines
type OddsProvider interface {
	// FetchOdds retrieves consensus market quotes for upcoming games
	FetchOdds(ctx context.Context, sport models.Sport) ([]GameOdds, error)

	Name() string
	IsEnabled() bool
}

// WeatherProvider defines the interface for fetching venue forecasts
type WeatherProvider interface {
	// FetchForecast retrieves conditions expected at a venue around kickoff
	FetchForecast(ctx context.Context, venue string, kickoff time.Time) (*WeatherReport, error)

	Name() string
	IsEnabled() bool
}

// InjuryProvider defines the interface for fetching availability reports
type InjuryProvider interface {
	// FetchInjuries retrieves per-team availability, keyed by team name
	FetchInjuries(ctx context.Context, sport models.Sport) (map[string]InjuryReport, error)

	Name() string
	IsEnabled() bool
}

// GameUpdate represents a normalized game from any schedule provider
type GameUpdate struct {
	SourceID  string       `json:"source_id"`  // Provider's unique game ID
	Sport     models.Sport `json:"sport"`      // League the game belongs to
	HomeTeam  string       `json:"home_team"`  // Canonical home team name
	AwayTeam  string       `json:"away_team"`  // Canonical away team name
	Kickoff   time.Time    `json:"kickoff"`    // Scheduled start time UTC
	Venue     string       `json:"venue"`      // Venue name
	Neutral   bool         `json:"neutral"`    // Neutral-site game
	Status    string       `json:"status"`     // Normalized game status
	HomeScore *int         `json:"home_score"` // Final or in-progress home score
	AwayScore *int         `json:"away_score"` // Final or in-progress away score
	HomeTier  *int         `json:"home_tier"`  // Competitive tier when the league has them
	AwayTier  *int         `json:"away_tier"`
	FetchedAt time.Time    `json:"fetched_at"` // When data was fetched
}

// IsFinal reports whether the game has a settled result
func (g *GameUpdate) IsFinal() bool {
	return g.Status == GameStatusFinal && g.HomeScore != nil && g.AwayScore != nil
}

// GameOdds represents a consensus market quote for one game. Spread is
// home-relative: negative means the home side is favored.
type GameOdds struct {
	SourceID      string       `json:"source_id"`
	Sport         models.Sport `json:"sport"`
	HomeTeam      string       `json:"home_team"`
	AwayTeam      string       `json:"away_team"`
	Kickoff       time.Time    `json:"kickoff"`
	Spread        *float64     `json:"spread"`
	Total         *float64     `json:"total"`
	HomeMoneyline *int         `json:"home_moneyline"`
	AwayMoneyline *int         `json:"away_moneyline"`
	Books         int          `json:"books"` // Number of books behind the consensus
	FetchedAt     time.Time    `json:"fetched_at"`
}

// WeatherReport represents normalized forecast conditions for one venue
type WeatherReport struct {
	Venue       string    `json:"venue"`
	Kickoff     time.Time `json:"kickoff"`
	TempF       float64   `json:"temp_f"`
	WindMPH     float64   `json:"wind_mph"`
	PrecipMM    float64   `json:"precip_mm"`
	Dome        bool      `json:"dome"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// InjuryReport represents normalized availability information for one team
type InjuryReport struct {
	Team       string    `json:"team"`
	PasserOut  bool      `json:"passer_out"` // Primary passer ruled out
	PlayersOut []string  `json:"players_out"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "provider_disabled"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrProviderDisabled     = errors.New("provider disabled")
)

const providerDisabledMsg = "provider is disabled"

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
