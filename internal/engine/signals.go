package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/datasource"
	applogger "github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/predict"
)

// SignalResolver turns the weather and injury feeds into prediction
// adjustments, routing every lookup through the two-tier cache. Refresh
// lookups may hit the network; replay lookups never do.
type SignalResolver struct {
	cache    *cache.Manager
	weather  datasource.WeatherProvider
	injuries datasource.InjuryProvider
	cfg      config.SportConfig
	ttl      time.Duration
	logger   *logrus.Logger
	sync     *applogger.SyncLogger
}

// NewSignalResolver creates a resolver bound to one sport's constants
func NewSignalResolver(
	cacheMgr *cache.Manager,
	weather datasource.WeatherProvider,
	injuries datasource.InjuryProvider,
	cfg config.SportConfig,
	ttl time.Duration,
	logger *logrus.Logger,
) *SignalResolver {
	return &SignalResolver{
		cache:    cacheMgr,
		weather:  weather,
		injuries: injuries,
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
		sync:     applogger.NewSyncLogger(logger),
	}
}

func injuryKey(sport models.Sport, period string) cache.Key {
	return cache.Key{Sport: sport, Kind: models.SignalKindInjury, Scope: "league", Period: period}
}

// weatherKey identifies a venue forecast by venue and kickoff date, so games
// sharing a venue on the same day share one fetch
func weatherKey(game *models.Game) cache.Key {
	scope := fmt.Sprintf("%s|%s",
		strings.ToLower(strings.TrimSpace(game.Venue)),
		game.Kickoff.UTC().Format("2006-01-02"))
	return cache.Key{Sport: game.Sport, Kind: models.SignalKindWeather, Scope: scope}
}

// InjuryTable resolves the league-wide availability table for the period,
// keyed by provider team name. A failed fetch with nothing cached returns
// nil; predictions then run without injury adjustments.
func (r *SignalResolver) InjuryTable(ctx context.Context, sport models.Sport, period string, force bool) map[string]datasource.InjuryReport {
	if r.injuries == nil || !r.injuries.IsEnabled() {
		return nil
	}

	ttl := r.ttl
	if force {
		ttl = 0
	}

	key := injuryKey(sport, period)
	result, err := r.cache.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (json.RawMessage, error) {
		table, err := r.injuries.FetchInjuries(ctx, sport)
		if err != nil {
			return nil, err
		}
		return json.Marshal(table)
	})
	if err != nil {
		r.logger.WithError(err).WithField("sport", sport).Warn("Injury signal unavailable")
		return nil
	}
	if result.Stale {
		r.sync.LogProviderDegraded(r.injuries.Name(), key.String(), true)
	}

	return decodeInjuryTable(result.Payload, r.logger)
}

// VenueWeather resolves the forecast for one game's venue. Returns nil for
// weather-insensitive sports, indoor games, games without a venue, and
// fetch failures with nothing cached.
func (r *SignalResolver) VenueWeather(ctx context.Context, game *models.Game, force bool) *datasource.WeatherReport {
	if !r.weatherRelevant(game) {
		return nil
	}

	ttl := r.ttl
	if force {
		ttl = 0
	}

	key := weatherKey(game)
	result, err := r.cache.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (json.RawMessage, error) {
		report, err := r.weather.FetchForecast(ctx, game.Venue, game.Kickoff)
		if err != nil {
			return nil, err
		}
		return json.Marshal(report)
	})
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"game_id": game.ID,
			"venue":   game.Venue,
		}).Warn("Weather signal unavailable")
		return nil
	}
	if result.Stale {
		r.sync.LogProviderDegraded(r.weather.Name(), key.String(), true)
	}

	return decodeWeatherReport(result.Payload, r.logger)
}

// ReplayInjuries returns whatever injury table was captured for the period,
// however old, without touching the network. The found payload is re-stored
// as permanent: a period being replayed is over, and its last snapshot is
// final.
func (r *SignalResolver) ReplayInjuries(ctx context.Context, sport models.Sport, period string) map[string]datasource.InjuryReport {
	key := injuryKey(sport, period)
	payload, found := r.cache.Peek(ctx, key)
	if !found {
		return nil
	}
	r.seal(ctx, key, payload)
	return decodeInjuryTable(payload, r.logger)
}

// ReplayWeather returns the captured forecast for a game's venue without
// touching the network, sealing it permanent the same way
func (r *SignalResolver) ReplayWeather(ctx context.Context, game *models.Game) *datasource.WeatherReport {
	if !r.weatherRelevant(game) {
		return nil
	}
	key := weatherKey(game)
	payload, found := r.cache.Peek(ctx, key)
	if !found {
		return nil
	}
	r.seal(ctx, key, payload)
	return decodeWeatherReport(payload, r.logger)
}

// Adjustments assembles the prediction adjustments for one game from
// resolved signals. Team names are the provider names the injury table is
// keyed by.
func (r *SignalResolver) Adjustments(
	game *models.Game,
	homeName, awayName string,
	weather *datasource.WeatherReport,
	injuries map[string]datasource.InjuryReport,
) predict.SignalAdjustments {
	adjustments := predict.SignalAdjustments{}

	if weather != nil && !weather.Dome {
		adjustments.TotalPointsPenalty = r.cfg.WeatherPenalty(weather.WindMPH, weather.PrecipMM)
	}
	if report, ok := injuries[homeName]; ok {
		adjustments.HomePasserOut = report.PasserOut
	}
	if report, ok := injuries[awayName]; ok {
		adjustments.AwayPasserOut = report.PasserOut
	}

	return adjustments
}

func (r *SignalResolver) weatherRelevant(game *models.Game) bool {
	if !r.cfg.WeatherSensitive || r.weather == nil || !r.weather.IsEnabled() {
		return false
	}
	return !game.Indoor && game.Venue != ""
}

func (r *SignalResolver) seal(ctx context.Context, key cache.Key, payload json.RawMessage) {
	if err := r.cache.PutPermanent(ctx, key, payload); err != nil {
		r.logger.WithError(err).WithField("key", key.String()).Warn("Failed to seal replay signal")
	}
}

func decodeInjuryTable(payload json.RawMessage, logger *logrus.Logger) map[string]datasource.InjuryReport {
	var table map[string]datasource.InjuryReport
	if err := json.Unmarshal(payload, &table); err != nil {
		logger.WithError(err).Warn("Discarding undecodable injury payload")
		return nil
	}
	return table
}

func decodeWeatherReport(payload json.RawMessage, logger *logrus.Logger) *datasource.WeatherReport {
	var report datasource.WeatherReport
	if err := json.Unmarshal(payload, &report); err != nil {
		logger.WithError(err).Warn("Discarding undecodable weather payload")
		return nil
	}
	return &report
}
