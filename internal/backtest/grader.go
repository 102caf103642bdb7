package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
)

// Grader grades one final game against its frozen prediction and the
// observed market line. Each market is graded independently: the model's
// own spread number, the market spread when one was captured, the
// moneyline pick, and the total against a market-or-fallback reference.
type Grader struct {
	cfg config.SportConfig
}

// NewGrader creates a grader with one sport's constants
func NewGrader(cfg config.SportConfig) *Grader {
	return &Grader{cfg: cfg}
}

// Grade produces the frozen grading record for a final game. The line record
// may be nil when no market was ever observed; market-graded fields are then
// left empty rather than defaulted.
func (g *Grader) Grade(game *models.Game, pred *models.Prediction, line *models.LineRecord, gradedAt time.Time) (*models.BacktestResult, error) {
	if game == nil || pred == nil {
		return nil, fmt.Errorf("game and prediction are required")
	}
	if pred.GameID != game.ID {
		return nil, fmt.Errorf("prediction %s does not belong to game %s", pred.GameID, game.ID)
	}
	if !game.IsFinal() {
		return nil, fmt.Errorf("game %s has no final score", game.ID)
	}

	result := &models.BacktestResult{
		GameID:          game.ID,
		Sport:           game.Sport,
		Season:          game.Season,
		Week:            game.Week,
		PredictedSpread: pred.Spread,
		PredictedTotal:  pred.Total,
		HomeWinProb:     pred.HomeWinProb,
		HomeScore:       *game.HomeScore,
		AwayScore:       *game.AwayScore,
		GradedAt:        gradedAt,
	}

	actualSpread := result.ActualSpread()
	actualTotal := float64(result.ActualTotal())

	result.SpreadModel = gradeSpreadOwn(pred.Spread, actualSpread)
	result.Moneyline = gradeMoneyline(pred.HomeWinProb, *game.HomeScore, *game.AwayScore)

	if line != nil {
		if spread, ok := line.SpreadReference(); ok {
			result.MarketSpread = &spread
			result.SpreadMarket = gradeSpreadMarket(pred.Spread, spread, actualSpread)
			result.HighConviction = convictionEdge(pred.Spread, spread) >= g.cfg.ConvictionThreshold
		}
		if total, ok := line.TotalReference(); ok {
			result.MarketTotal = &total
		}
	}

	totalReference := g.cfg.FallbackTotal
	if result.MarketTotal != nil {
		totalReference = *result.MarketTotal
	}
	result.Total = gradeTotal(pred.Total, totalReference, actualTotal)

	recordGradeMetrics(result)

	return result, nil
}

// gradeSpreadOwn grades the model against its own number. The pick is the
// side the sign favors; a zero spread picks nobody and is not graded.
func gradeSpreadOwn(predicted, actual float64) string {
	if predicted == 0 {
		return ""
	}
	return gradeAgainstNumber(predicted < 0, predicted, actual)
}

// gradeSpreadMarket grades the model's pick against the market number. The
// pick is the side the model thinks the market underrates; when model and
// market agree exactly there is no pick and no grade.
func gradeSpreadMarket(predicted, market, actual float64) string {
	if predicted == market {
		return ""
	}
	return gradeAgainstNumber(predicted < market, market, actual)
}

// gradeAgainstNumber settles a side pick against a line. Spreads are away
// minus home, so a home pick covers when the actual lands below the number.
func gradeAgainstNumber(pickHome bool, number, actual float64) string {
	if actual == number {
		return models.OutcomePush
	}
	if pickHome {
		if actual < number {
			return models.OutcomeWin
		}
		return models.OutcomeLoss
	}
	if actual > number {
		return models.OutcomeWin
	}
	return models.OutcomeLoss
}

// gradeMoneyline settles the outright pick. Win or loss only; a drawn game
// grades as a loss for whichever side was picked.
func gradeMoneyline(homeWinProb float64, homeScore, awayScore int) string {
	if homeWinProb > 0.5 {
		if homeScore > awayScore {
			return models.OutcomeWin
		}
		return models.OutcomeLoss
	}
	if awayScore > homeScore {
		return models.OutcomeWin
	}
	return models.OutcomeLoss
}

// gradeTotal settles the over/under pick implied by the predicted total
// against the reference. A predicted total equal to the reference picks
// nothing and is not graded.
func gradeTotal(predicted, reference, actual float64) string {
	if predicted == reference {
		return ""
	}
	if actual == reference {
		return models.OutcomePush
	}
	if predicted > reference {
		if actual > reference {
			return models.OutcomeWin
		}
		return models.OutcomeLoss
	}
	if actual < reference {
		return models.OutcomeWin
	}
	return models.OutcomeLoss
}

// convictionEdge returns the model-vs-market spread divergence magnitude
func convictionEdge(predicted, market float64) float64 {
	d := predicted - market
	if d < 0 {
		d = -d
	}
	return d
}

func recordGradeMetrics(r *models.BacktestResult) {
	sport := string(r.Sport)
	if r.SpreadModel != "" {
		metrics.RecordGameGraded(sport, models.MarketSpread, r.SpreadModel)
	}
	if r.SpreadMarket != "" {
		metrics.RecordGameGraded(sport, "spread_market", r.SpreadMarket)
	}
	if r.Moneyline != "" {
		metrics.RecordGameGraded(sport, models.MarketMoneyline, r.Moneyline)
	}
	if r.Total != "" {
		metrics.RecordGameGraded(sport, models.MarketTotal, r.Total)
	}
	if r.HighConviction {
		metrics.RecordHighConvictionGame(sport)
	}
}
