package predict

import (
	"math"
	"testing"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/rating"
)

func footballConfig() config.SportConfig {
	return config.SportConfig{
		InitialRating:       1500,
		BaseK:               20,
		MOVLogScale:         0.8,
		MOVBase:             0.2,
		HomeRatingBonus:     48,
		RoundRatings:        true,
		LeagueAvgPoints:     22.5,
		FallbackTotal:       45.5,
		StatWeight:          0.7,
		EloPerPoint:         25,
		EloPointCap:         10,
		HomeAdvantagePoints: 2.0,
		SpreadRegression:    0.15,
		PasserOutPenalty:    3,
		WeatherSensitive:    true,
		SpreadEdgeHigh:      3.0,
		SpreadEdgeMedium:    1.5,
		TotalEdgeHigh:       4.0,
		TotalEdgeMedium:     2.0,
		MoneylineProbHigh:   0.15,
		MoneylineProbMedium: 0.08,
		AvoidBandLow:        3.5,
		AvoidBandHigh:       7.0,
		ConvictionThreshold: 2.0,
	}
}

func newTestPredictor() *Predictor {
	cfg := footballConfig()
	return NewPredictor(cfg, rating.NewEngine(cfg))
}

func approx(t *testing.T, got, want, eps float64, label string) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
}

func TestPredictBaseline(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1550, OffensePPG: 27.0, DefensePPG: 20.0}
	away := TeamStats{Rating: 1450, OffensePPG: 21.0, DefensePPG: 24.0}

	f := p.Predict(home, away, SignalAdjustments{})

	// Regressed offenses meet regressed defenses, then a 100-point rating
	// gap is worth 4 points split across the sides, then the 2-point home
	// advantage splits
	approx(t, f.HomeScore, 27.6, 1e-9, "home score")
	approx(t, f.AwayScore, 18.1, 1e-9, "away score")
	approx(t, f.Total, 45.7, 1e-9, "total")
	approx(t, f.Spread, -8.0, 1e-9, "spread")
}

func TestPredictSpreadShrinkAndHalfPoint(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1550, OffensePPG: 27.0, DefensePPG: 20.0}
	away := TeamStats{Rating: 1450, OffensePPG: 21.0, DefensePPG: 24.0}

	f := p.Predict(home, away, SignalAdjustments{})

	// Raw spread is -9.5; shrunk by 15% that is -8.075, which must land on
	// a half-point boundary
	if f.Spread != -8.0 {
		t.Fatalf("expected shrunk spread -8.0, got %v", f.Spread)
	}
	if f.Spread*2 != math.Round(f.Spread*2) {
		t.Fatalf("spread must sit on a half-point boundary, got %v", f.Spread)
	}
}

func TestPredictTotalIsUnshrunk(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1500, OffensePPG: 25.0, DefensePPG: 25.0}
	away := TeamStats{Rating: 1500, OffensePPG: 25.0, DefensePPG: 25.0}

	f := p.Predict(home, away, SignalAdjustments{})

	// The home advantage split cancels in the sum, so the total is just the
	// two base scores; the spread regression must not touch it
	approx(t, f.Total, f.HomeScore+f.AwayScore, 1e-9, "total equals score sum")
}

func TestPredictRegressionTowardLeague(t *testing.T) {
	p := newTestPredictor()

	// An absurd 40 ppg offense against a league-average defense should be
	// pulled well below 40 by the 70/30 regression
	home := TeamStats{Rating: 1500, OffensePPG: 40.0, DefensePPG: 22.5}
	away := TeamStats{Rating: 1500, OffensePPG: 22.5, DefensePPG: 22.5}

	f := p.Predict(home, away, SignalAdjustments{})

	withoutHomeAdv := f.HomeScore - 1.0
	if withoutHomeAdv >= 40*0.85 {
		t.Fatalf("regression should damp an outlier offense, got %v", f.HomeScore)
	}
	if withoutHomeAdv <= 22.5 {
		t.Fatalf("outlier offense should still predict above league average, got %v", f.HomeScore)
	}
}

func TestPredictRatingCap(t *testing.T) {
	p := newTestPredictor()

	even := TeamStats{Rating: 1500, OffensePPG: 22.5, DefensePPG: 22.5}
	monster := TeamStats{Rating: 2100, OffensePPG: 22.5, DefensePPG: 22.5}

	f := p.Predict(monster, even, SignalAdjustments{})

	// A 600-point gap is 24 points uncapped; the cap holds it to 10, split
	// across the sides on top of the 2-point home advantage
	gap := f.HomeScore - f.AwayScore
	approx(t, gap, 12.0, 1e-9, "capped rating gap plus home advantage")
}

func TestPredictWeatherPenaltySplits(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1550, OffensePPG: 27.0, DefensePPG: 20.0}
	away := TeamStats{Rating: 1450, OffensePPG: 21.0, DefensePPG: 24.0}

	clear := p.Predict(home, away, SignalAdjustments{})
	windy := p.Predict(home, away, SignalAdjustments{TotalPointsPenalty: 4})

	approx(t, windy.Total, clear.Total-4, 1e-9, "weather drops the total by the penalty")
	approx(t, windy.Spread, clear.Spread, 1e-9, "an even split leaves the spread alone")
}

func TestPredictPasserOutPenalty(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1550, OffensePPG: 27.0, DefensePPG: 20.0}
	away := TeamStats{Rating: 1450, OffensePPG: 21.0, DefensePPG: 24.0}

	healthy := p.Predict(home, away, SignalAdjustments{})
	hurt := p.Predict(home, away, SignalAdjustments{HomePasserOut: true})

	approx(t, hurt.HomeScore, healthy.HomeScore-3, 1e-9, "home side loses the passer penalty")
	approx(t, hurt.AwayScore, healthy.AwayScore, 1e-9, "away side unaffected")

	// Raw spread moves from -9.5 to -6.5; shrunk and half-point rounded
	approx(t, hurt.Spread, -5.5, 1e-9, "spread reflects the penalty")
}

func TestPredictHomeWinProb(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1550, OffensePPG: 27.0, DefensePPG: 20.0}
	away := TeamStats{Rating: 1450, OffensePPG: 21.0, DefensePPG: 24.0}

	f := p.Predict(home, away, SignalAdjustments{})
	approx(t, f.HomeWinProb, 0.701, 0.002, "home win probability")

	flipped := p.Predict(away, home, SignalAdjustments{})
	if flipped.HomeWinProb >= 0.5 {
		t.Fatalf("weaker home side should stay under 0.5 despite the bonus, got %v", flipped.HomeWinProb)
	}
}

func TestPredictDeterminism(t *testing.T) {
	p := newTestPredictor()

	home := TeamStats{Rating: 1512, OffensePPG: 24.4, DefensePPG: 21.7}
	away := TeamStats{Rating: 1488, OffensePPG: 23.1, DefensePPG: 22.9}
	sig := SignalAdjustments{TotalPointsPenalty: 1.5, AwayPasserOut: true}

	a := p.Predict(home, away, sig)
	b := p.Predict(home, away, sig)
	if a != b {
		t.Fatalf("identical inputs must forecast identically: %+v vs %+v", a, b)
	}
}
