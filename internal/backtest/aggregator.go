package backtest

import (
	"github.com/yourusername/line-edge/internal/models"
)

// Aggregator accumulates graded outcomes into running per-market tallies.
// It never regrades: each result folded in is counted exactly once, so the
// tallies stay additive across passes as long as the caller only submits
// games leaving the unprocessed set.
type Aggregator struct {
	tallies models.TallySet
	games   int
}

// NewAggregator resumes accumulation from a persisted tally set
func NewAggregator(initial models.TallySet) *Aggregator {
	return &Aggregator{tallies: initial}
}

// Absorb folds one graded result into the tallies
func (a *Aggregator) Absorb(result *models.BacktestResult) {
	if result == nil {
		return
	}
	a.tallies = a.tallies.Absorb(result)
	a.games++
}

// Tallies returns the accumulated tally set
func (a *Aggregator) Tallies() models.TallySet {
	return a.tallies
}

// GamesAbsorbed returns how many results this aggregator folded in, not
// counting whatever the initial tallies already contained
func (a *Aggregator) GamesAbsorbed() int {
	return a.games
}

// TallyResults folds a full result set into a fresh tally set. Used when the
// season tallies are rebuilt from stored rows instead of resumed.
func TallyResults(results []*models.BacktestResult) models.TallySet {
	var tallies models.TallySet
	for _, r := range results {
		if r == nil {
			continue
		}
		tallies = tallies.Absorb(r)
	}
	return tallies
}
