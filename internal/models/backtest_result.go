package models

import "time"

// Grading outcomes. Empty string means the market could not be graded.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomePush = "push"
)

// BacktestResult freezes one graded prediction against the final score
type BacktestResult struct {
	GameID          string    `db:"game_id" json:"game_id" validate:"required"`
	Sport           Sport     `db:"sport" json:"sport" validate:"required"`
	Season          int       `db:"season" json:"season"`
	Week            int       `db:"week" json:"week"`
	PredictedSpread float64   `db:"predicted_spread" json:"predicted_spread"`
	PredictedTotal  float64   `db:"predicted_total" json:"predicted_total"`
	HomeWinProb     float64   `db:"home_win_prob" json:"home_win_prob"`
	MarketSpread    *float64  `db:"market_spread" json:"market_spread"`
	MarketTotal     *float64  `db:"market_total" json:"market_total"`
	HomeScore       int       `db:"home_score" json:"home_score"`
	AwayScore       int       `db:"away_score" json:"away_score"`
	SpreadModel     string    `db:"spread_model" json:"spread_model" validate:"omitempty,oneof=win loss push"`
	SpreadMarket    string    `db:"spread_market" json:"spread_market" validate:"omitempty,oneof=win loss push"`
	Moneyline       string    `db:"moneyline" json:"moneyline" validate:"omitempty,oneof=win loss"`
	Total           string    `db:"total" json:"total" validate:"omitempty,oneof=win loss push"`
	HighConviction  bool      `db:"high_conviction" json:"high_conviction"`
	GradedAt        time.Time `db:"graded_at" json:"graded_at"`
}

// ActualSpread returns the realized spread, away minus home
func (r *BacktestResult) ActualSpread() float64 {
	return float64(r.AwayScore - r.HomeScore)
}

// ActualTotal returns the combined final score
func (r *BacktestResult) ActualTotal() int {
	return r.HomeScore + r.AwayScore
}
