package datasource

import (
	"log"
	"time"

	"github.com/yourusername/line-edge/internal/config"
)

// Providers bundles every upstream client the sync engine consumes
type Providers struct {
	Schedule *ScheduleClient
	Odds     *OddsClient
	Weather  *WeatherClient
	Injuries *InjuryClient

	httpClient *RateLimitedHTTPClient
}

// Factory creates provider clients based on configuration
type Factory struct {
	logger *log.Logger
	config *config.Config
}

// NewFactory creates a new provider factory
func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewProviders creates all provider clients sharing one rate-limited HTTP
// client. Disabled providers are still constructed; their fetches return
// ErrProviderDisabled.
func (f *Factory) NewProviders() *Providers {
	providerCfg := f.config.Providers

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = providerCfg.RateLimitPerSecond
	httpCfg.MaxRetries = providerCfg.RetryMax
	httpCfg.Timeout = time.Duration(providerCfg.TimeoutSeconds) * time.Second

	httpClient := NewRateLimitedHTTPClient(httpCfg, f.logger)

	providers := &Providers{
		Schedule: NewScheduleClient(httpClient,
			providerCfg.Schedule.BaseURL, providerCfg.Schedule.APIKey, providerCfg.Schedule.Enabled, f.logger),
		Odds: NewOddsClient(httpClient,
			providerCfg.Odds.BaseURL, providerCfg.Odds.APIKey, providerCfg.Odds.Books, providerCfg.Odds.Enabled, f.logger),
		Weather: NewWeatherClient(httpClient,
			providerCfg.Weather.BaseURL, providerCfg.Weather.APIKey, providerCfg.Weather.Enabled, f.logger),
		Injuries: NewInjuryClient(httpClient,
			providerCfg.Injuries.BaseURL, providerCfg.Injuries.APIKey, providerCfg.Injuries.Enabled, f.logger),
		httpClient: httpClient,
	}

	if f.logger != nil {
		for _, name := range providers.DisabledNames() {
			f.logger.Printf("Provider %s is disabled", name)
		}
	}

	return providers
}

// DisabledNames lists the providers that will refuse fetches
func (p *Providers) DisabledNames() []string {
	disabled := make([]string, 0, 4)
	if !p.Schedule.IsEnabled() {
		disabled = append(disabled, p.Schedule.Name())
	}
	if !p.Odds.IsEnabled() {
		disabled = append(disabled, p.Odds.Name())
	}
	if !p.Weather.IsEnabled() {
		disabled = append(disabled, p.Weather.Name())
	}
	if !p.Injuries.IsEnabled() {
		disabled = append(disabled, p.Injuries.Name())
	}
	return disabled
}

// Close releases the shared HTTP client
func (p *Providers) Close() error {
	return p.httpClient.Close()
}
