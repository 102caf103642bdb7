package backtest

import (
	"fmt"
	"strings"

	"github.com/yourusername/line-edge/internal/models"
)

// MarketSummary projects one market's tally into reportable numbers
type MarketSummary struct {
	Market  string  `json:"market"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	Graded  int     `json:"graded"`
	WinRate float64 `json:"win_rate"`
}

// Summary projects a season's accumulated tallies for the artifact and logs
type Summary struct {
	Sport          models.Sport  `json:"sport"`
	Season         int           `json:"season"`
	GamesGraded    int           `json:"games_graded"`
	SpreadModel    MarketSummary `json:"spread_model"`
	SpreadMarket   MarketSummary `json:"spread_market"`
	Moneyline      MarketSummary `json:"moneyline"`
	Total          MarketSummary `json:"total"`
	HighConviction MarketSummary `json:"high_conviction"`
}

// BuildSummary projects a tally set into per-market win rates. Pushes count
// as graded but are excluded from the win rate denominator.
func BuildSummary(sport models.Sport, season int, gamesGraded int, tallies models.TallySet) Summary {
	return Summary{
		Sport:          sport,
		Season:         season,
		GamesGraded:    gamesGraded,
		SpreadModel:    summarizeMarket("spread_model", tallies.SpreadModel),
		SpreadMarket:   summarizeMarket("spread_market", tallies.SpreadMarket),
		Moneyline:      summarizeMarket(models.MarketMoneyline, tallies.Moneyline),
		Total:          summarizeMarket(models.MarketTotal, tallies.Total),
		HighConviction: summarizeMarket("high_conviction_spread", tallies.HighConvSpread),
	}
}

func summarizeMarket(market string, tally models.BacktestTally) MarketSummary {
	summary := MarketSummary{
		Market: market,
		Wins:   tally.Wins,
		Losses: tally.Losses,
		Pushes: tally.Pushes,
		Graded: tally.Wins + tally.Losses + tally.Pushes,
	}
	decided := tally.Wins + tally.Losses
	if decided > 0 {
		summary.WinRate = float64(tally.Wins) / float64(decided)
	}
	return summary
}

// ConsoleReport formats the summary for terminal output
func (s Summary) ConsoleReport() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Backtest Summary: %s season %d\n", s.Sport, s.Season))
	builder.WriteString("================================\n")
	builder.WriteString(fmt.Sprintf("Games Graded: %d\n", s.GamesGraded))
	for _, m := range []MarketSummary{s.SpreadModel, s.SpreadMarket, s.Moneyline, s.Total, s.HighConviction} {
		builder.WriteString(fmt.Sprintf("%-24s %d-%d-%d (%.1f%%)\n", m.Market+":", m.Wins, m.Losses, m.Pushes, m.WinRate*100))
	}
	return builder.String()
}
