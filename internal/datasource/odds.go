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

	"github.com/shopspring/decimal"

	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
)

// Market keys used by the odds API
const (
	marketSpreads   = "spreads"
	marketTotals    = "totals"
	marketMoneyline = "h2h"
)

// OddsClient implements OddsProvider against a multi-book odds API
type OddsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	books      map[string]bool
	logger     *log.Logger
}

// oddsEventDTO represents one game with its per-book quotes
type oddsEventDTO struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime string         `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []bookmakerDTO `json:"bookmakers"`
}

type bookmakerDTO struct {
	Key     string      `json:"key"`
	Markets []marketDTO `json:"markets"`
}

type marketDTO struct {
	Key      string       `json:"key"`
	Outcomes []outcomeDTO `json:"outcomes"`
}

type outcomeDTO struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

// NewOddsClient creates a new odds API client. Only quotes from the listed
// books are folded into the consensus.
func NewOddsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, books []string, enabled bool, logger *log.Logger) *OddsClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	allowed := make(map[string]bool, len(books))
	for _, book := range books {
		allowed[book] = true
	}
	return &OddsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		books:      allowed,
		logger:     logger,
	}
}

// FetchOdds retrieves consensus market quotes for upcoming games
func (c *OddsClient) FetchOdds(ctx context.Context, sport models.Sport) ([]GameOdds, error) {
	if !c.enabled {
		return nil, NewProviderError(c.Name(), ErrCodeDisabled, providerDisabledMsg, ErrProviderDisabled)
	}

	sportKey, err := oddsSportKey(sport)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "unsupported sport", err)
	}

	url := fmt.Sprintf("%s/v4/sports/%s/odds?markets=%s&oddsFormat=american&apiKey=%s",
		c.baseURL, sportKey, strings.Join([]string{marketSpreads, marketTotals, marketMoneyline}, ","), c.apiKey)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, NewProviderError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, NewProviderError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		return nil, NewProviderError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderRequest(c.Name(), "failure", time.Since(start).Seconds())
		body, _ := io.ReadAll(resp.Body)
		return nil, NewProviderError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
	metrics.RecordProviderRequest(c.Name(), "success", time.Since(start).Seconds())

	var events []oddsEventDTO
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	quotes := make([]GameOdds, 0, len(events))
	for _, event := range events {
		quote, err := c.buildConsensus(sport, &event)
		if err != nil {
			c.logger.Printf("Skipping odds event %s: %v", event.ID, err)
			continue
		}
		quotes = append(quotes, *quote)
	}

	return quotes, nil
}

// Name returns the provider name
func (c *OddsClient) Name() string {
	return "odds"
}

// IsEnabled returns whether this provider is enabled
func (c *OddsClient) IsEnabled() bool {
	return c.enabled
}

// buildConsensus averages quotes across the allowed books. Lines snap to the
// nearest half point, moneylines round to whole American odds.
func (c *OddsClient) buildConsensus(sport models.Sport, event *oddsEventDTO) (*GameOdds, error) {
	if event.HomeTeam == "" || event.AwayTeam == "" {
		return nil, fmt.Errorf("missing team names")
	}
	kickoff, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		return nil, fmt.Errorf("invalid commence time %q: %w", event.CommenceTime, err)
	}

	var spreads, totals, homeMLs, awayMLs []decimal.Decimal
	contributing := 0

	for _, book := range event.Bookmakers {
		if !c.books[book.Key] {
			continue
		}
		used := false
		for _, market := range book.Markets {
			switch market.Key {
			case marketSpreads:
				for _, outcome := range market.Outcomes {
					if outcome.Name == event.HomeTeam && outcome.Point != nil {
						spreads = append(spreads, decimal.NewFromFloat(*outcome.Point))
						used = true
					}
				}
			case marketTotals:
				for _, outcome := range market.Outcomes {
					if outcome.Name == "Over" && outcome.Point != nil {
						totals = append(totals, decimal.NewFromFloat(*outcome.Point))
						used = true
					}
				}
			case marketMoneyline:
				for _, outcome := range market.Outcomes {
					switch outcome.Name {
					case event.HomeTeam:
						homeMLs = append(homeMLs, decimal.NewFromFloat(outcome.Price))
						used = true
					case event.AwayTeam:
						awayMLs = append(awayMLs, decimal.NewFromFloat(outcome.Price))
						used = true
					}
				}
			}
		}
		if used {
			contributing++
		}
	}

	if contributing == 0 {
		return nil, fmt.Errorf("no allowed book carries this game")
	}

	quote := &GameOdds{
		SourceID:      event.ID,
		Sport:         sport,
		HomeTeam:      event.HomeTeam,
		AwayTeam:      event.AwayTeam,
		Kickoff:       kickoff.UTC(),
		Spread:        consensusLine(spreads),
		Total:         consensusLine(totals),
		HomeMoneyline: consensusMoneyline(homeMLs),
		AwayMoneyline: consensusMoneyline(awayMLs),
		Books:         contributing,
		FetchedAt:     time.Now().UTC(),
	}
	return quote, nil
}

// consensusLine averages point lines and snaps to the nearest half point
func consensusLine(lines []decimal.Decimal) *float64 {
	if len(lines) == 0 {
		return nil
	}
	avg := decimal.Avg(lines[0], lines[1:]...)
	two := decimal.NewFromInt(2)
	snapped, _ := avg.Mul(two).Round(0).Div(two).Float64()
	return &snapped
}

// consensusMoneyline averages American odds and rounds to a whole number
func consensusMoneyline(odds []decimal.Decimal) *int {
	if len(odds) == 0 {
		return nil
	}
	avg := decimal.Avg(odds[0], odds[1:]...).Round(0)
	ml := int(avg.IntPart())
	return &ml
}

// oddsSportKey maps a sport onto the odds API sport key
func oddsSportKey(sport models.Sport) (string, error) {
	switch sport {
	case models.SportNFL:
		return "americanfootball_nfl", nil
	case models.SportNBA:
		return "basketball_nba", nil
	case models.SportNHL:
		return "icehockey_nhl", nil
	case models.SportCBB:
		return "basketball_ncaab", nil
	default:
		return "", fmt.Errorf("no odds sport key for %q", sport)
	}
}
