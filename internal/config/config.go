// Package config provides configuration management for the Line Edge sync engine.
package config

import (
	"fmt"
	"sort"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig               `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig          `mapstructure:"database" validate:"required"`
	Providers ProvidersConfig         `mapstructure:"providers" validate:"required"`
	Cache     CacheConfig             `mapstructure:"cache" validate:"required"`
	Sync      SyncConfig              `mapstructure:"sync" validate:"required"`
	Artifact  ArtifactConfig          `mapstructure:"artifact" validate:"required"`
	Metrics   MetricsConfig           `mapstructure:"metrics" validate:"required"`
	Secrets   SecretsConfig           `mapstructure:"secrets"`
	Sports    map[string]SportConfig  `mapstructure:"sports" validate:"required,min=1,dive"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProvidersConfig groups the external data feed endpoints
type ProvidersConfig struct {
	Schedule ProviderConfig `mapstructure:"schedule" validate:"required"`
	Odds     OddsConfig     `mapstructure:"odds" validate:"required"`
	Weather  ProviderConfig `mapstructure:"weather" validate:"required"`
	Injuries ProviderConfig `mapstructure:"injuries" validate:"required"`

	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	RetryMax           int     `mapstructure:"retry_max" validate:"gte=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// ProviderConfig represents a single upstream feed
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
	Enabled bool   `mapstructure:"enabled"`
}

// OddsConfig extends ProviderConfig with the sportsbooks consulted for consensus
type OddsConfig struct {
	BaseURL string   `mapstructure:"base_url" validate:"required,url"`
	APIKey  string   `mapstructure:"api_key"`
	Enabled bool     `mapstructure:"enabled"`
	Books   []string `mapstructure:"books" validate:"required,min=1"`
}

// CacheConfig controls side-signal caching
type CacheConfig struct {
	SignalTTLHours         int `mapstructure:"signal_ttl_hours" validate:"required,gt=0"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"required,gt=0"`
}

// SyncConfig controls a sync pass
type SyncConfig struct {
	LockWindowMinutes     int     `mapstructure:"lock_window_minutes" validate:"required,gt=0"`
	BatchSize             int     `mapstructure:"batch_size" validate:"required,gt=0"`
	MaxParallel           int     `mapstructure:"max_parallel" validate:"required,gt=0"`
	HorizonDays           int     `mapstructure:"horizon_days" validate:"required,gt=0"`
	BackfillDays          int     `mapstructure:"backfill_days" validate:"required,gt=0"`
	OddsCoverageWarnBelow float64 `mapstructure:"odds_coverage_warn_below" validate:"gte=0,lte=1"`
}

// ArtifactConfig controls the published per-sport JSON snapshot
type ArtifactConfig struct {
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	Pretty    bool   `mapstructure:"pretty"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Port       int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path       string `mapstructure:"path" validate:"required"`
	HealthPort int    `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// SecretsConfig controls the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// SportConfig carries every per-sport numeric constant. The engine is generic;
// sports differ only through these values.
type SportConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	LeagueCode string `mapstructure:"league_code" validate:"required"`
	Schedule   string `mapstructure:"schedule" validate:"omitempty,cronspec"`

	// Season shape
	SeasonStartMonth int `mapstructure:"season_start_month" validate:"required,min=1,max=12"`
	SeasonStartDay   int `mapstructure:"season_start_day" validate:"required,min=1,max=28"`

	// Rating constants
	InitialRating   float64   `mapstructure:"initial_rating" validate:"required,gt=0"`
	TierRatings     []float64 `mapstructure:"tier_ratings" validate:"omitempty,max=3"`
	BaseK           float64   `mapstructure:"base_k" validate:"required,gt=0"`
	MOVLogScale     float64   `mapstructure:"mov_log_scale" validate:"gte=0"`
	MOVBase         float64   `mapstructure:"mov_base" validate:"gte=0"`
	HomeRatingBonus float64   `mapstructure:"home_rating_bonus" validate:"gte=0"`
	RoundRatings    bool      `mapstructure:"round_ratings"`

	// Prediction constants
	LeagueAvgPoints     float64 `mapstructure:"league_avg_points" validate:"required,gt=0"`
	FallbackTotal       float64 `mapstructure:"fallback_total" validate:"required,gt=0"`
	StatWeight          float64 `mapstructure:"stat_weight" validate:"required,gt=0,lte=1"`
	EloPerPoint         float64 `mapstructure:"elo_per_point" validate:"required,gt=0"`
	EloPointCap         float64 `mapstructure:"elo_point_cap" validate:"required,gt=0"`
	HomeAdvantagePoints float64 `mapstructure:"home_advantage_points" validate:"gte=0"`
	SpreadRegression    float64 `mapstructure:"spread_regression" validate:"gte=0,lt=1"`
	PasserOutPenalty    float64 `mapstructure:"passer_out_penalty" validate:"gte=0"`
	WeatherSensitive    bool    `mapstructure:"weather_sensitive"`

	// Weather penalty shape, used only when WeatherSensitive is set
	WindPenaltyThreshold float64 `mapstructure:"wind_penalty_threshold" validate:"gte=0"`
	WindPenaltyPerMPH    float64 `mapstructure:"wind_penalty_per_mph" validate:"gte=0"`
	PrecipPenaltyPoints  float64 `mapstructure:"precip_penalty_points" validate:"gte=0"`
	WeatherPenaltyCap    float64 `mapstructure:"weather_penalty_cap" validate:"gte=0"`

	// Confidence thresholds
	SpreadEdgeHigh      float64 `mapstructure:"spread_edge_high" validate:"required,gt=0"`
	SpreadEdgeMedium    float64 `mapstructure:"spread_edge_medium" validate:"required,gt=0"`
	TotalEdgeHigh       float64 `mapstructure:"total_edge_high" validate:"required,gt=0"`
	TotalEdgeMedium     float64 `mapstructure:"total_edge_medium" validate:"required,gt=0"`
	MoneylineProbHigh   float64 `mapstructure:"moneyline_prob_high" validate:"required,gt=0,lt=0.5"`
	MoneylineProbMedium float64 `mapstructure:"moneyline_prob_medium" validate:"required,gt=0,lt=0.5"`
	AvoidBandLow        float64 `mapstructure:"avoid_band_low" validate:"gte=0"`
	AvoidBandHigh       float64 `mapstructure:"avoid_band_high" validate:"gte=0"`
	ConvictionThreshold float64 `mapstructure:"conviction_threshold" validate:"required,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Sport returns the configuration for one sport key
func (c *Config) Sport(key string) (SportConfig, bool) {
	sc, ok := c.Sports[key]
	return sc, ok
}

// EnabledSports returns the keys of all enabled sports in stable order
func (c *Config) EnabledSports() []string {
	keys := make([]string, 0, len(c.Sports))
	for key, sc := range c.Sports {
		if sc.Enabled {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// SignalTTL returns the rolling cache window as a duration
func (c *CacheConfig) SignalTTL() time.Duration {
	return time.Duration(c.SignalTTLHours) * time.Hour
}

// CleanupInterval returns how often expired memory entries are swept
func (c *CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// LockWindow returns the pre-kickoff lock window as a duration
func (c *SyncConfig) LockWindow() time.Duration {
	return time.Duration(c.LockWindowMinutes) * time.Minute
}

// SeasonFor returns the season year containing ts: a season is labeled by the
// year it starts in.
func (sc *SportConfig) SeasonFor(ts time.Time) int {
	start := time.Date(ts.Year(), time.Month(sc.SeasonStartMonth), sc.SeasonStartDay, 0, 0, 0, 0, time.UTC)
	if ts.Before(start) {
		return ts.Year() - 1
	}
	return ts.Year()
}

// SeasonAnchor returns the start date of the given season
func (sc *SportConfig) SeasonAnchor(season int) time.Time {
	return time.Date(season, time.Month(sc.SeasonStartMonth), sc.SeasonStartDay, 0, 0, 0, 0, time.UTC)
}

// WeekFor returns the 1-based week index of ts within the season, derived
// from the season anchor in 7-day buckets. Sports without scheduled weeks
// still get a stable period identifier this way.
func (sc *SportConfig) WeekFor(season int, ts time.Time) int {
	anchor := sc.SeasonAnchor(season)
	if ts.Before(anchor) {
		return 1
	}
	return int(ts.Sub(anchor).Hours()/(24*7)) + 1
}

// InitialRatingForTier returns the seed rating for a competitive tier. Tier 0
// is the top tier. Sports with a flat seed ignore tiers.
func (sc *SportConfig) InitialRatingForTier(tier int) float64 {
	if len(sc.TierRatings) == 0 {
		return sc.InitialRating
	}
	if tier < 0 || tier >= len(sc.TierRatings) {
		return sc.TierRatings[len(sc.TierRatings)-1]
	}
	return sc.TierRatings[tier]
}

// WeatherPenalty converts forecast conditions into total points taken off the
// game. Zero for weather-insensitive sports; capped so one storm cannot zero
// out a forecast.
func (sc *SportConfig) WeatherPenalty(windMPH, precipMM float64) float64 {
	if !sc.WeatherSensitive {
		return 0
	}
	penalty := 0.0
	if windMPH > sc.WindPenaltyThreshold {
		penalty += (windMPH - sc.WindPenaltyThreshold) * sc.WindPenaltyPerMPH
	}
	if precipMM > 0 {
		penalty += sc.PrecipPenaltyPoints
	}
	if sc.WeatherPenaltyCap > 0 && penalty > sc.WeatherPenaltyCap {
		penalty = sc.WeatherPenaltyCap
	}
	return penalty
}

// InAvoidBand reports whether a market spread magnitude falls in the
// empirically weak band for spread best-bets
func (sc *SportConfig) InAvoidBand(marketSpread float64) bool {
	if sc.AvoidBandHigh <= sc.AvoidBandLow {
		return false
	}
	mag := marketSpread
	if mag < 0 {
		mag = -mag
	}
	return mag >= sc.AvoidBandLow && mag <= sc.AvoidBandHigh
}
