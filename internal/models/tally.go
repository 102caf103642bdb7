package models

// BacktestTally is an additive win/loss/push counter for one market view.
// It is a value type: callers pass and return it explicitly rather than
// mutating shared state.
type BacktestTally struct {
	Wins   int `db:"wins" json:"wins"`
	Losses int `db:"losses" json:"losses"`
	Pushes int `db:"pushes" json:"pushes"`
}

// Add folds a single graded outcome into the tally. Unknown or empty
// outcomes leave the tally unchanged.
func (t BacktestTally) Add(outcome string) BacktestTally {
	switch outcome {
	case OutcomeWin:
		t.Wins++
	case OutcomeLoss:
		t.Losses++
	case OutcomePush:
		t.Pushes++
	}
	return t
}

// Merge combines two tallies
func (t BacktestTally) Merge(other BacktestTally) BacktestTally {
	t.Wins += other.Wins
	t.Losses += other.Losses
	t.Pushes += other.Pushes
	return t
}

// Graded returns the number of decided outcomes, pushes excluded
func (t BacktestTally) Graded() int {
	return t.Wins + t.Losses
}

// WinRate returns wins over decided outcomes, zero when nothing decided
func (t BacktestTally) WinRate() float64 {
	if t.Graded() == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Graded())
}

// TallySet groups the per-market tallies one sport accumulates across a season
type TallySet struct {
	SpreadModel    BacktestTally `json:"spread_model"`
	SpreadMarket   BacktestTally `json:"spread_market"`
	Moneyline      BacktestTally `json:"moneyline"`
	Total          BacktestTally `json:"total"`
	HighConvSpread BacktestTally `json:"high_conv_spread"`
}

// Absorb folds one graded result into the set and returns the new set
func (s TallySet) Absorb(r *BacktestResult) TallySet {
	s.SpreadModel = s.SpreadModel.Add(r.SpreadModel)
	s.SpreadMarket = s.SpreadMarket.Add(r.SpreadMarket)
	s.Moneyline = s.Moneyline.Add(r.Moneyline)
	s.Total = s.Total.Add(r.Total)
	if r.HighConviction {
		s.HighConvSpread = s.HighConvSpread.Add(r.SpreadMarket)
	}
	return s
}

// Merge combines two tally sets
func (s TallySet) Merge(other TallySet) TallySet {
	s.SpreadModel = s.SpreadModel.Merge(other.SpreadModel)
	s.SpreadMarket = s.SpreadMarket.Merge(other.SpreadMarket)
	s.Moneyline = s.Moneyline.Merge(other.Moneyline)
	s.Total = s.Total.Merge(other.Total)
	s.HighConvSpread = s.HighConvSpread.Merge(other.HighConvSpread)
	return s
}
