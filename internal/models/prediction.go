package models

import "time"

// Confidence tiers assigned per market
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Betting markets the model grades itself on
const (
	MarketSpread    = "spread"
	MarketMoneyline = "moneyline"
	MarketTotal     = "total"
)

// Prediction represents the model's forecast for one upcoming game
type Prediction struct {
	GameID         string    `db:"game_id" json:"game_id" validate:"required"`
	Sport          Sport     `db:"sport" json:"sport" validate:"required"`
	Season         int       `db:"season" json:"season"`
	Week           int       `db:"week" json:"week"`
	HomeTeamID     string    `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID     string    `db:"away_team_id" json:"away_team_id" validate:"required"`
	HomeRating     float64   `db:"home_rating" json:"home_rating"`
	AwayRating     float64   `db:"away_rating" json:"away_rating"`
	HomeScore      float64   `db:"home_score" json:"home_score"`
	AwayScore      float64   `db:"away_score" json:"away_score"`
	Spread         float64   `db:"spread" json:"spread"`
	Total          float64   `db:"total" json:"total"`
	HomeWinProb    float64   `db:"home_win_prob" json:"home_win_prob" validate:"gte=0,lte=1"`
	MarketSpread   *float64  `db:"market_spread" json:"market_spread"`
	MarketTotal    *float64  `db:"market_total" json:"market_total"`
	SpreadEdge     *float64  `db:"spread_edge" json:"spread_edge"`
	TotalEdge      *float64  `db:"total_edge" json:"total_edge"`
	SpreadTier     string    `db:"spread_tier" json:"spread_tier" validate:"omitempty,oneof=high medium low"`
	MoneylineTier  string    `db:"moneyline_tier" json:"moneyline_tier" validate:"omitempty,oneof=high medium low"`
	TotalTier      string    `db:"total_tier" json:"total_tier" validate:"omitempty,oneof=high medium low"`
	SpreadBestBet  bool      `db:"spread_best_bet" json:"spread_best_bet"`
	MoneyBestBet   bool      `db:"money_best_bet" json:"money_best_bet"`
	TotalBestBet   bool      `db:"total_best_bet" json:"total_best_bet"`
	HomePasserOut  bool      `db:"home_passer_out" json:"home_passer_out"`
	AwayPasserOut  bool      `db:"away_passer_out" json:"away_passer_out"`
	WeatherPenalty float64   `db:"weather_penalty" json:"weather_penalty"`
	GeneratedAt    time.Time `db:"generated_at" json:"generated_at"`
}

// PicksHome reports whether the model favors the home side outright
func (p *Prediction) PicksHome() bool {
	return p.HomeWinProb > 0.5
}

// HasMarket reports whether a market spread snapshot was available
func (p *Prediction) HasMarket() bool {
	return p.MarketSpread != nil
}

// HighConviction reports whether the model diverges from the market spread
// by at least threshold points
func (p *Prediction) HighConviction(threshold float64) bool {
	if p.MarketSpread == nil {
		return false
	}
	d := p.Spread - *p.MarketSpread
	if d < 0 {
		d = -d
	}
	return d >= threshold
}
