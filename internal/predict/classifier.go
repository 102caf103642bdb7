package predict

import (
	"math"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/models"
)

// Classifier assigns confidence tiers and best-bet flags from edges against
// the market. It is a pure function of the prediction and the sport's
// thresholds.
type Classifier struct {
	cfg config.SportConfig
}

// NewClassifier creates a classifier for one sport
func NewClassifier(cfg config.SportConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// tier maps an edge magnitude onto high/medium/low
func tier(edge, high, medium float64) string {
	switch {
	case edge >= high:
		return models.ConfidenceHigh
	case edge >= medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Apply computes edges, tiers and best-bet flags in place. Markets with no
// reference line get no tier: an edge against a line that does not exist is
// not classified.
func (c *Classifier) Apply(p *models.Prediction) {
	if p.MarketSpread != nil {
		edge := math.Abs(p.Spread - *p.MarketSpread)
		p.SpreadEdge = &edge
		p.SpreadTier = tier(edge, c.cfg.SpreadEdgeHigh, c.cfg.SpreadEdgeMedium)
		p.SpreadBestBet = p.SpreadTier == models.ConfidenceHigh && !c.cfg.InAvoidBand(*p.MarketSpread)
	} else {
		p.SpreadEdge = nil
		p.SpreadTier = ""
		p.SpreadBestBet = false
	}

	if p.MarketTotal != nil {
		edge := math.Abs(p.Total - *p.MarketTotal)
		p.TotalEdge = &edge
		p.TotalTier = tier(edge, c.cfg.TotalEdgeHigh, c.cfg.TotalEdgeMedium)
		p.TotalBestBet = p.TotalTier == models.ConfidenceHigh
	} else {
		p.TotalEdge = nil
		p.TotalTier = ""
		p.TotalBestBet = false
	}

	probEdge := math.Abs(p.HomeWinProb - 0.5)
	p.MoneylineTier = tier(probEdge, c.cfg.MoneylineProbHigh, c.cfg.MoneylineProbMedium)
	p.MoneyBestBet = p.MoneylineTier == models.ConfidenceHigh
}
