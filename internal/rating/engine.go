// Package rating implements the Elo-style team rating update.
package rating

import (
	"math"

	"github.com/yourusername/line-edge/internal/config"
)

// Engine updates team ratings from final scores. All numeric behavior comes
// from the sport configuration; the engine itself is sport-agnostic.
type Engine struct {
	cfg config.SportConfig
}

// NewEngine creates a rating engine for one sport
func NewEngine(cfg config.SportConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Seed returns the initial rating for a team in the given competitive tier
func (e *Engine) Seed(tier int) float64 {
	return e.cfg.InitialRatingForTier(tier)
}

// ExpectedHome returns the probability the home side wins, from the logistic
// curve over the rating difference with the home bonus applied.
func (e *Engine) ExpectedHome(home, away float64) float64 {
	adjusted := home + e.cfg.HomeRatingBonus
	return 1.0 / (1.0 + math.Pow(10, (away-adjusted)/400.0))
}

// movMultiplier damps blowouts: log(|margin|+1)*c1 + c2 grows much slower
// than the margin itself.
func (e *Engine) movMultiplier(margin int) float64 {
	if margin < 0 {
		margin = -margin
	}
	return math.Log(float64(margin)+1)*e.cfg.MOVLogScale + e.cfg.MOVBase
}

// Update returns the post-game ratings for both teams. The exchange is
// symmetric before rounding: whatever the home side gains the away side
// loses.
func (e *Engine) Update(home, away float64, homeScore, awayScore int) (float64, float64) {
	expected := e.ExpectedHome(home, away)

	var actual float64
	switch {
	case homeScore > awayScore:
		actual = 1.0
	case homeScore == awayScore:
		actual = 0.5
	default:
		actual = 0.0
	}

	k := e.cfg.BaseK * e.movMultiplier(homeScore-awayScore)
	delta := k * (actual - expected)

	newHome := home + delta
	newAway := away - delta

	if e.cfg.RoundRatings {
		newHome = math.Round(newHome)
		newAway = math.Round(newAway)
	}
	return newHome, newAway
}
