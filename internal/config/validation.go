// Package config provides configuration management for the Line Edge sync engine.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// knownSports are the sport keys the engine understands
var knownSports = map[string]bool{
	"nfl": true,
	"nba": true,
	"nhl": true,
	"cbb": true,
}

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("cronspec", validateCronSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCronSpec validates a standard 5-field cron expression
func validateCronSpec(fl validator.FieldLevel) bool {
	spec := fl.Field().String()
	if spec == "" {
		return true
	}
	_, err := cron.ParseStandard(spec)
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Sport keys must be known leagues
	enabled := 0
	for key, sc := range cfg.Sports {
		if !knownSports[key] {
			return fmt.Errorf("unknown sport key %q (expected one of nfl, nba, nhl, cbb)", key)
		}
		if sc.Enabled {
			enabled++
		}
		if err := validateSportThresholds(key, sc); err != nil {
			return err
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one sport must be enabled")
	}

	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	// Validate connection pool settings
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// validateSportThresholds checks ordering constraints inside one sport block
func validateSportThresholds(key string, sc SportConfig) error {
	if sc.SpreadEdgeHigh < sc.SpreadEdgeMedium {
		return fmt.Errorf("sport %s: spread_edge_high must be >= spread_edge_medium", key)
	}
	if sc.TotalEdgeHigh < sc.TotalEdgeMedium {
		return fmt.Errorf("sport %s: total_edge_high must be >= total_edge_medium", key)
	}
	if sc.MoneylineProbHigh < sc.MoneylineProbMedium {
		return fmt.Errorf("sport %s: moneyline_prob_high must be >= moneyline_prob_medium", key)
	}
	if sc.AvoidBandHigh != 0 && sc.AvoidBandHigh < sc.AvoidBandLow {
		return fmt.Errorf("sport %s: avoid_band_high must be >= avoid_band_low", key)
	}
	for i := 1; i < len(sc.TierRatings); i++ {
		if sc.TierRatings[i] > sc.TierRatings[i-1] {
			return fmt.Errorf("sport %s: tier_ratings must be non-increasing (top tier first)", key)
		}
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "cronspec":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid cron expression, got '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		// Production must have SSL enabled
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}

		// Production should not have test credentials
		if isTestCredential(cfg.Providers.Odds.APIKey) || isTestCredential(cfg.Providers.Schedule.APIKey) {
			return fmt.Errorf("production environment should not use placeholder provider API keys")
		}
	}

	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
