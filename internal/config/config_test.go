// Package config provides configuration management for the Line Edge sync engine.
package config

import (
	"os"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	expansionConfigMissingPath   = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	lineEdgeName                 = "line-edge"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != lineEdgeName {
		t.Errorf("expected app name '%s', got '%s'", lineEdgeName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if len(cfg.Sports) != 4 {
		t.Errorf("expected 4 sports, got %d", len(cfg.Sports))
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	// Set an environment variable
	os.Setenv("LINE_EDGE_APP_NAME", testAppName)
	defer os.Unsetenv("LINE_EDGE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateUnknownSportKey tests rejection of unexpected sport keys
func TestValidateUnknownSportKey(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Sports["cricket"] = cfg.Sports["nfl"]
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for unknown sport key")
	}
}

// TestValidateThresholdOrdering tests the per-sport threshold ordering checks
func TestValidateThresholdOrdering(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	sc := cfg.Sports["nfl"]
	sc.SpreadEdgeHigh = 1.0
	sc.SpreadEdgeMedium = 2.0
	cfg.Sports["nfl"] = sc

	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for inverted spread thresholds")
	}
}

// TestValidateNoEnabledSports tests that at least one sport must be enabled
func TestValidateNoEnabledSports(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	for key, sc := range cfg.Sports {
		sc.Enabled = false
		cfg.Sports[key] = sc
	}

	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error when every sport is disabled")
	}
}

// TestValidateBadCronSpec tests rejection of malformed schedules
func TestValidateBadCronSpec(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	sc := cfg.Sports["nba"]
	sc.Schedule = "not a cron line"
	cfg.Sports["nba"] = sc

	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for malformed cron spec")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !containsSubstring(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestIsStaging tests staging environment check
func TestIsStaging(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "staging"},
	}

	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestSeasonFor tests season labeling around the season boundary
func TestSeasonFor(t *testing.T) {
	sc := SportConfig{SeasonStartMonth: 9, SeasonStartDay: 1}

	august := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	if got := sc.SeasonFor(august); got != 2024 {
		t.Errorf("expected season 2024 before the boundary, got %d", got)
	}

	october := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	if got := sc.SeasonFor(october); got != 2025 {
		t.Errorf("expected season 2025 after the boundary, got %d", got)
	}
}

// TestWeekFor tests 7-day period bucketing from the season anchor
func TestWeekFor(t *testing.T) {
	sc := SportConfig{SeasonStartMonth: 9, SeasonStartDay: 1}

	day3 := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)
	if got := sc.WeekFor(2025, day3); got != 1 {
		t.Errorf("expected week 1, got %d", got)
	}

	day10 := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	if got := sc.WeekFor(2025, day10); got != 2 {
		t.Errorf("expected week 2, got %d", got)
	}

	preSeason := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	if got := sc.WeekFor(2025, preSeason); got != 1 {
		t.Errorf("expected clamp to week 1 before the anchor, got %d", got)
	}
}

// TestInitialRatingForTier tests tier-indexed seed ratings
func TestInitialRatingForTier(t *testing.T) {
	flat := SportConfig{InitialRating: 1500}
	if got := flat.InitialRatingForTier(2); got != 1500 {
		t.Errorf("expected flat seed 1500, got %v", got)
	}

	tiered := SportConfig{InitialRating: 1500, TierRatings: []float64{1600, 1500, 1400}}
	if got := tiered.InitialRatingForTier(0); got != 1600 {
		t.Errorf("expected top tier 1600, got %v", got)
	}
	if got := tiered.InitialRatingForTier(2); got != 1400 {
		t.Errorf("expected bottom tier 1400, got %v", got)
	}
	if got := tiered.InitialRatingForTier(9); got != 1400 {
		t.Errorf("expected out-of-range tier to use bottom seed, got %v", got)
	}
}

// TestInAvoidBand tests the spread best-bet avoid band
func TestInAvoidBand(t *testing.T) {
	sc := SportConfig{AvoidBandLow: 3.5, AvoidBandHigh: 7.0}

	if !sc.InAvoidBand(-4.5) {
		t.Error("expected -4.5 to fall in the avoid band")
	}
	if !sc.InAvoidBand(7.0) {
		t.Error("expected 7.0 to fall in the avoid band")
	}
	if sc.InAvoidBand(-3.0) {
		t.Error("expected -3.0 to fall outside the avoid band")
	}
	if sc.InAvoidBand(10.0) {
		t.Error("expected 10.0 to fall outside the avoid band")
	}

	disabled := SportConfig{}
	if disabled.InAvoidBand(-5.0) {
		t.Error("expected no avoid band when unset")
	}
}

func TestWeatherPenalty(t *testing.T) {
	sc := SportConfig{
		WeatherSensitive:     true,
		WindPenaltyThreshold: 12,
		WindPenaltyPerMPH:    0.25,
		PrecipPenaltyPoints:  1.5,
		WeatherPenaltyCap:    6.0,
	}

	if got := sc.WeatherPenalty(10, 0); got != 0 {
		t.Errorf("expected no penalty below the wind threshold, got %f", got)
	}
	if got := sc.WeatherPenalty(20, 0); got != 2.0 {
		t.Errorf("expected 2.0 for 8mph over threshold, got %f", got)
	}
	if got := sc.WeatherPenalty(20, 3.5); got != 3.5 {
		t.Errorf("expected wind plus precip 3.5, got %f", got)
	}
	if got := sc.WeatherPenalty(60, 10); got != 6.0 {
		t.Errorf("expected the cap at 6.0, got %f", got)
	}

	indoor := SportConfig{WindPenaltyThreshold: 12, WindPenaltyPerMPH: 0.25}
	if got := indoor.WeatherPenalty(40, 10); got != 0 {
		t.Errorf("weather-insensitive sport must take no penalty, got %f", got)
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	// Set environment variable
	os.Setenv(testDBPassword, expandedSecretValue)
	defer os.Unsetenv(testDBPassword)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	// Ensure environment variable is not set
	os.Unsetenv(testMissingVar)

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// os.ExpandEnv replaces an unset ${VAR} with the empty string
	if cfg.Database.Password != "" {
		t.Logf("note: missing env var became: %q (expected empty)", cfg.Database.Password)
	}
}

// Helper function
func containsSubstring(str, substr string) bool {
	for i := 0; i <= len(str)-len(substr); i++ {
		if str[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
