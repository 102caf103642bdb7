package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/line-edge/internal/metrics"
)

// WeatherClient fetches venue forecasts for outdoor sports
type WeatherClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// weatherForecastDTO represents the forecast API response
type weatherForecastDTO struct {
	Venue    string  `json:"venue"`
	TempF    float64 `json:"temperatureF"`
	WindMPH  float64 `json:"windMph"`
	PrecipMM float64 `json:"precipitationMm"`
	Indoor   bool    `json:"indoor"`
}

// NewWeatherClient creates a new forecast API client
func NewWeatherClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *WeatherClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &WeatherClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchForecast retrieves the forecast for a venue at kickoff time
func (c *WeatherClient) FetchForecast(ctx context.Context, venue string, kickoff time.Time) (*WeatherReport, error) {
	if !c.enabled {
		return nil, NewProviderError(c.Name(), ErrCodeDisabled, providerDisabledMsg, ErrProviderDisabled)
	}
	if venue == "" {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "venue is required", nil)
	}

	endpoint := fmt.Sprintf("%s/v1/forecast?venue=%s&at=%s&key=%s",
		c.baseURL, url.QueryEscape(venue), kickoff.UTC().Format(time.RFC3339), c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, endpoint)
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
		return nil, NewProviderError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	metrics.RecordProviderRequest(c.Name(), "success", time.Since(start).Seconds())

	var dto weatherForecastDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, NewProviderError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	report := &WeatherReport{
		Venue:     venue,
		Kickoff:   kickoff.UTC(),
		TempF:     dto.TempF,
		WindMPH:   dto.WindMPH,
		PrecipMM:  dto.PrecipMM,
		Dome:      dto.Indoor,
		FetchedAt: time.Now().UTC(),
	}
	return report, nil
}

// Name returns the provider name
func (c *WeatherClient) Name() string {
	return "weather"
}

// IsEnabled returns whether this provider is enabled
func (c *WeatherClient) IsEnabled() bool {
	return c.enabled
}
