// Package predict turns ratings and scoring profiles into score, spread and
// total forecasts, and classifies their edges against the market.
package predict

import (
	"math"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/rating"
)

// TeamStats is the per-team input to a forecast
type TeamStats struct {
	Rating     float64
	OffensePPG float64
	DefensePPG float64
}

// SignalAdjustments carries the side-signal effects applied to a forecast
type SignalAdjustments struct {
	// TotalPointsPenalty is the weather-derived scoring reduction for the
	// whole game, split evenly between the sides
	TotalPointsPenalty float64
	HomePasserOut      bool
	AwayPasserOut      bool
}

// Forecast is the numeric output of one prediction
type Forecast struct {
	HomeScore   float64
	AwayScore   float64
	Spread      float64 // away minus home, shrunk, half-point
	Total       float64 // unshrunk weather-adjusted sum
	HomeWinProb float64
}

// Predictor produces forecasts for one sport
type Predictor struct {
	cfg    config.SportConfig
	engine *rating.Engine
}

// NewPredictor creates a predictor bound to a sport's constants
func NewPredictor(cfg config.SportConfig, engine *rating.Engine) *Predictor {
	return &Predictor{cfg: cfg, engine: engine}
}

// regress pulls a per-game average toward the league rate to damp small
// samples
func (p *Predictor) regress(stat float64) float64 {
	w := p.cfg.StatWeight
	return stat*w + p.cfg.LeagueAvgPoints*(1-w)
}

// ratingPoints converts the raw rating gap into a capped point adjustment
func (p *Predictor) ratingPoints(home, away float64) float64 {
	points := (home - away) / p.cfg.EloPerPoint
	if points > p.cfg.EloPointCap {
		points = p.cfg.EloPointCap
	}
	if points < -p.cfg.EloPointCap {
		points = -p.cfg.EloPointCap
	}
	return points
}

// roundHalf rounds to the nearest half point
func roundHalf(x float64) float64 {
	return math.Round(x*2) / 2
}

// Predict builds a forecast for one matchup. Steps run in a fixed order:
// regress scoring stats, average offense against opposing defense, apply the
// rating gap, split the home advantage, then apply side signals.
func (p *Predictor) Predict(home, away TeamStats, signals SignalAdjustments) Forecast {
	homeBase := (p.regress(home.OffensePPG) + p.regress(away.DefensePPG)) / 2
	awayBase := (p.regress(away.OffensePPG) + p.regress(home.DefensePPG)) / 2

	points := p.ratingPoints(home.Rating, away.Rating)
	homeScore := homeBase + points/2
	awayScore := awayBase - points/2

	homeScore += p.cfg.HomeAdvantagePoints / 2
	awayScore -= p.cfg.HomeAdvantagePoints / 2

	if signals.TotalPointsPenalty > 0 {
		homeScore -= signals.TotalPointsPenalty / 2
		awayScore -= signals.TotalPointsPenalty / 2
	}
	if signals.HomePasserOut {
		homeScore -= p.cfg.PasserOutPenalty
	}
	if signals.AwayPasserOut {
		awayScore -= p.cfg.PasserOutPenalty
	}

	rawSpread := awayScore - homeScore
	spread := roundHalf(rawSpread * (1 - p.cfg.SpreadRegression))

	return Forecast{
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		Spread:      spread,
		Total:       homeScore + awayScore,
		HomeWinProb: p.engine.ExpectedHome(home.Rating, away.Rating),
	}
}
