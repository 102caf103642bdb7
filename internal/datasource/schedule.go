package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
)

// ScheduleClient implements ScheduleProvider against a league schedule API
type ScheduleClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// scheduleGameDTO represents a game as returned by the schedule API
type scheduleGameDTO struct {
	ID        string  `json:"id"`
	League    string  `json:"league"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	StartTime string  `json:"startTime"`
	Venue     *string `json:"venue"`
	Neutral   *bool   `json:"neutralSite"`
	Status    string  `json:"status"`
	HomeScore *int    `json:"homeScore"`
	AwayScore *int    `json:"awayScore"`
	HomeTier  *int    `json:"homeDivision"`
	AwayTier  *int    `json:"awayDivision"`
}

// scheduleResponseDTO is the top-level schedule API response
type scheduleResponseDTO struct {
	Games []scheduleGameDTO `json:"games"`
}

// NewScheduleClient creates a new schedule API client
func NewScheduleClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *ScheduleClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ScheduleClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchGames retrieves games for a sport within the specified date range
func (c *ScheduleClient) FetchGames(ctx context.Context, sport models.Sport, startDate, endDate time.Time) ([]GameUpdate, error) {
	if !c.enabled {
		return nil, NewProviderError(c.Name(), ErrCodeDisabled, providerDisabledMsg, ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/v1/%s/games?from=%s&to=%s",
		c.baseURL, sport, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	start := time.Now()
	body, err := c.fetchJSON(ctx, url)
	if err != nil {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, err
	}
	metrics.RecordProviderRequest(c.Name(), "success", time.Since(start).Seconds())

	var response scheduleResponseDTO
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	games := make([]GameUpdate, 0, len(response.Games))
	for _, dto := range response.Games {
		game, err := c.convertGame(sport, &dto)
		if err != nil {
			c.logger.Printf("Skipping malformed game %s: %v", dto.ID, err)
			continue
		}
		games = append(games, *game)
	}

	return games, nil
}

// Name returns the provider name
func (c *ScheduleClient) Name() string {
	return "schedule"
}

// IsEnabled returns whether this provider is enabled
func (c *ScheduleClient) IsEnabled() bool {
	return c.enabled
}

func (c *ScheduleClient) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewProviderError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(c.Name(), ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to read response", err)
	}
	return body, nil
}

// convertGame converts the schedule API game format to GameUpdate
func (c *ScheduleClient) convertGame(sport models.Sport, dto *scheduleGameDTO) (*GameUpdate, error) {
	if dto.ID == "" {
		return nil, fmt.Errorf("missing game id")
	}
	if dto.HomeTeam == "" || dto.AwayTeam == "" {
		return nil, fmt.Errorf("missing team names")
	}

	kickoff, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", dto.StartTime, err)
	}

	game := &GameUpdate{
		SourceID:  dto.ID,
		Sport:     sport,
		HomeTeam:  dto.HomeTeam,
		AwayTeam:  dto.AwayTeam,
		Kickoff:   kickoff.UTC(),
		Status:    normalizeStatus(dto.Status),
		HomeScore: dto.HomeScore,
		AwayScore: dto.AwayScore,
		HomeTier:  dto.HomeTier,
		AwayTier:  dto.AwayTier,
		FetchedAt: time.Now().UTC(),
	}
	if dto.Venue != nil {
		game.Venue = *dto.Venue
	}
	if dto.Neutral != nil {
		game.Neutral = *dto.Neutral
	}

	// A game reported final with no score cannot be graded
	if game.Status == GameStatusFinal && (game.HomeScore == nil || game.AwayScore == nil) {
		return nil, fmt.Errorf("final game without scores")
	}

	return game, nil
}

// normalizeStatus maps provider status strings onto the three states the
// engine distinguishes
func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "final", "closed", "complete", "completed", "status_final", "f", "ft":
		return GameStatusFinal
	case "in_progress", "inprogress", "live", "halftime", "status_in_progress":
		return GameStatusInProgress
	default:
		return GameStatusScheduled
	}
}
