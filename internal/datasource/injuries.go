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

// InjuryClient fetches team availability reports
type InjuryClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// injuryEntryDTO represents one listed player in the injury API response
type injuryEntryDTO struct {
	Team     string `json:"team"`
	Player   string `json:"player"`
	Position string `json:"position"`
	Status   string `json:"status"`
}

// injuryResponseDTO is the top-level injury API response
type injuryResponseDTO struct {
	Entries []injuryEntryDTO `json:"injuries"`
}

// NewInjuryClient creates a new injury API client
func NewInjuryClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *InjuryClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &InjuryClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchInjuries retrieves availability reports for every team in a sport,
// keyed by team name.
func (c *InjuryClient) FetchInjuries(ctx context.Context, sport models.Sport) (map[string]InjuryReport, error) {
	if !c.enabled {
		return nil, NewProviderError(c.Name(), ErrCodeDisabled, providerDisabledMsg, ErrProviderDisabled)
	}

	url := fmt.Sprintf("%s/v1/%s/injuries?key=%s", c.baseURL, sport, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, NewProviderError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
	metrics.RecordProviderRequest(c.Name(), "success", time.Since(start).Seconds())

	var response injuryResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	now := time.Now().UTC()
	reports := make(map[string]InjuryReport)
	for _, entry := range response.Entries {
		if entry.Team == "" || entry.Player == "" {
			continue
		}
		if !playerRuledOut(entry.Status) {
			continue
		}
		report := reports[entry.Team]
		report.Team = entry.Team
		report.UpdatedAt = now
		report.PlayersOut = append(report.PlayersOut, entry.Player)
		if isPrimaryPasser(sport, entry.Position) {
			report.PasserOut = true
		}
		reports[entry.Team] = report
	}

	return reports, nil
}

// Name returns the provider name
func (c *InjuryClient) Name() string {
	return "injuries"
}

// IsEnabled returns whether this provider is enabled
func (c *InjuryClient) IsEnabled() bool {
	return c.enabled
}

// playerRuledOut reports whether a listed status means the player will not play
func playerRuledOut(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "out", "injured_reserve", "ir", "suspended", "doubtful":
		return true
	default:
		return false
	}
}

// isPrimaryPasser reports whether the position drives the passer-out
// adjustment. Only football has one.
func isPrimaryPasser(sport models.Sport, position string) bool {
	return sport == models.SportNFL && strings.EqualFold(strings.TrimSpace(position), "QB")
}
