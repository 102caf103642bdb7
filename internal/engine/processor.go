package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/config"
	applogger "github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/predict"
	"github.com/yourusername/line-edge/internal/rating"
	"github.com/yourusername/line-edge/internal/repository"
)

// GameProcessor folds newly-final games into the ratings, in kickoff order,
// exactly once. Each game's rating update, graded result and processed
// marker commit together before the next game starts, so a crashed pass
// resumes from the last finished game.
type GameProcessor struct {
	cfg       config.SportConfig
	ratings   *rating.Engine
	predictor *predict.Predictor
	grader    *backtest.Grader
	signals   *SignalResolver
	teamRepo  repository.TeamRepository
	gameRepo  repository.GameRepository
	lineRepo  repository.LineRepository
	results   repository.BacktestRepository
	stateRepo repository.SyncStateRepository
	sync      *applogger.SyncLogger
	audit     *applogger.AuditLogger
	now       func() time.Time
}

// ReplayStats summarizes one replay sweep
type ReplayStats struct {
	Processed     int
	Skipped       int
	MarketMissing int
}

// NewGameProcessor wires a processor for one sport
func NewGameProcessor(
	cfg config.SportConfig,
	ratings *rating.Engine,
	predictor *predict.Predictor,
	grader *backtest.Grader,
	signals *SignalResolver,
	repos *repository.Repositories,
	logger *logrus.Logger,
) *GameProcessor {
	return &GameProcessor{
		cfg:       cfg,
		ratings:   ratings,
		predictor: predictor,
		grader:    grader,
		signals:   signals,
		teamRepo:  repos.Team,
		gameRepo:  repos.Game,
		lineRepo:  repos.Line,
		results:   repos.Backtest,
		stateRepo: repos.SyncState,
		sync:      applogger.NewSyncLogger(logger),
		audit:     applogger.NewAuditLogger(logger),
		now:       time.Now,
	}
}

// Replay grades every final unprocessed game for the state's season. Games
// replay in kickoff order; the prediction each game is graded against is
// regenerated from the ratings as they stood before that game, which the
// chronological order guarantees are the pre-game ratings.
func (p *GameProcessor) Replay(ctx context.Context, state *models.SyncState, teams map[string]*models.Team) (ReplayStats, error) {
	stats := ReplayStats{}

	finals, err := p.gameRepo.ListFinalUnprocessed(ctx, state.Sport, state.Season)
	if err != nil {
		return stats, fmt.Errorf("failed to list final games: %w", err)
	}

	pending := make([]*models.Game, 0, len(finals))
	for _, game := range finals {
		if !state.IsProcessed(game.ID) {
			pending = append(pending, game)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Kickoff.Equal(pending[j].Kickoff) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].Kickoff.Before(pending[j].Kickoff)
	})

	agg := backtest.NewAggregator(state.Tallies)

	var lastKickoff time.Time
	for _, game := range pending {
		if game.Kickoff.Before(lastKickoff) {
			return stats, fmt.Errorf("replay at game %s: %w", game.ID, models.ErrOrderingBroken)
		}
		lastKickoff = game.Kickoff

		outcome, err := p.processGame(ctx, state, agg, teams, game)
		if err != nil {
			return stats, err
		}
		switch outcome {
		case replaySkipped:
			stats.Skipped++
		case replayGradedNoMarket:
			stats.Processed++
			stats.MarketMissing++
		default:
			stats.Processed++
		}
	}

	return stats, nil
}

type replayOutcome int

const (
	replayGraded replayOutcome = iota
	replayGradedNoMarket
	replaySkipped
)

// processGame runs one game through predict, rate, grade and commit. Skips
// return no error; errors are persistence failures that abort the pass.
func (p *GameProcessor) processGame(ctx context.Context, state *models.SyncState, agg *backtest.Aggregator, teams map[string]*models.Team, game *models.Game) (replayOutcome, error) {
	home, homeOK := teams[game.HomeTeamID]
	away, awayOK := teams[game.AwayTeamID]
	if !homeOK || !awayOK {
		p.sync.LogGameSkipped(state.Sport.String(), game.ID, "unknown_team")
		metrics.RecordGameSkipped(state.Sport.String(), "unknown_team")
		return replaySkipped, nil
	}

	if !game.IsFinal() {
		p.sync.LogGameSkipped(state.Sport.String(), game.ID, "missing_scores")
		metrics.RecordGameSkipped(state.Sport.String(), "missing_scores")
		return replaySkipped, nil
	}

	// Pre-game snapshot: ratings and averages before this game is folded in
	preHome := teamStats(home, p.cfg)
	preAway := teamStats(away, p.cfg)

	adjustments := p.replaySignals(ctx, game, home.Name, away.Name)
	forecast := p.predictor.Predict(preHome, preAway, adjustments)

	gradedAt := p.now()
	prediction := buildPrediction(game, forecast, preHome.Rating, preAway.Rating, adjustments, gradedAt)

	line, err := p.lineRepo.Get(ctx, game.ID)
	if errors.Is(err, models.ErrNotFound) {
		line = nil
	} else if err != nil {
		return replaySkipped, fmt.Errorf("failed to load line for game %s: %w", game.ID, err)
	}

	home.Rating, away.Rating = p.ratings.Update(home.Rating, away.Rating, *game.HomeScore, *game.AwayScore)
	home.RecordGame(*game.HomeScore, *game.AwayScore)
	away.RecordGame(*game.AwayScore, *game.HomeScore)
	home.UpdatedAt, away.UpdatedAt = gradedAt, gradedAt

	result, err := p.grader.Grade(game, prediction, line, gradedAt)
	if err != nil {
		// Inputs were validated above, so a grading failure means the pass
		// state can no longer be trusted. Abort before anything persists.
		return replaySkipped, fmt.Errorf("failed to grade game %s: %w", game.ID, err)
	}

	if err := p.teamRepo.UpsertBatch(ctx, []*models.Team{home, away}); err != nil {
		return replaySkipped, fmt.Errorf("failed to save ratings for game %s: %w", game.ID, err)
	}
	if err := p.results.Upsert(ctx, result); err != nil {
		return replaySkipped, fmt.Errorf("failed to save graded result for game %s: %w", game.ID, err)
	}
	if err := p.gameRepo.MarkProcessed(ctx, []string{game.ID}); err != nil {
		return replaySkipped, fmt.Errorf("failed to mark game %s processed: %w", game.ID, err)
	}

	state.MarkProcessed(game.ID)
	agg.Absorb(result)
	state.Tallies = agg.Tallies()
	if err := p.stateRepo.Save(ctx, state); err != nil {
		return replaySkipped, fmt.Errorf("failed to save sync state after game %s: %w", game.ID, err)
	}

	p.sync.LogGameGraded(state.Sport.String(), game.ID, result.SpreadModel, result.SpreadMarket,
		result.Moneyline, result.Total, result.HighConviction)
	p.sync.LogRatingsUpdated(state.Sport.String(), game.ID, preHome.Rating, home.Rating, preAway.Rating, away.Rating)
	metrics.RecordGameProcessed(state.Sport.String())

	if result.MarketSpread == nil {
		return replayGradedNoMarket, nil
	}
	return replayGraded, nil
}

// Reset clears replay progress for a fresh season: processed markers and
// tallies go, ratings and scoring averages reseed, line records stay.
func (p *GameProcessor) Reset(ctx context.Context, state *models.SyncState, teams map[string]*models.Team, season int, reason string) error {
	p.audit.LogSeasonReset(state.Sport.String(), state.Season, season, reason)

	if err := p.gameRepo.ResetProcessed(ctx, state.Sport); err != nil {
		return fmt.Errorf("failed to reset processed markers: %w", err)
	}

	reseeded := make([]*models.Team, 0, len(teams))
	for _, team := range teams {
		team.Rating = p.ratings.Seed(team.ConferenceTier)
		team.OffensePPG = 0
		team.DefensePPG = 0
		team.GamesPlayed = 0
		team.Wins = 0
		team.Losses = 0
		team.UpdatedAt = p.now()
		reseeded = append(reseeded, team)
	}
	if err := p.teamRepo.UpsertBatch(ctx, reseeded); err != nil {
		return fmt.Errorf("failed to reseed team ratings: %w", err)
	}

	state.Reset(season)
	if err := p.stateRepo.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save reset state: %w", err)
	}

	metrics.RecordSyncReset(state.Sport.String(), reason)
	return nil
}

func (p *GameProcessor) replaySignals(ctx context.Context, game *models.Game, homeName, awayName string) predict.SignalAdjustments {
	period := fmt.Sprintf("%d-w%d", game.Season, game.Week)
	injuries := p.signals.ReplayInjuries(ctx, game.Sport, period)
	weather := p.signals.ReplayWeather(ctx, game)
	return p.signals.Adjustments(game, homeName, awayName, weather, injuries)
}

// teamStats converts a team into predictor input. Teams with no games yet
// forecast from the league scoring rate instead of their empty averages.
func teamStats(team *models.Team, cfg config.SportConfig) predict.TeamStats {
	stats := predict.TeamStats{
		Rating:     team.Rating,
		OffensePPG: team.OffensePPG,
		DefensePPG: team.DefensePPG,
	}
	if !team.HasScoringProfile() {
		stats.OffensePPG = cfg.LeagueAvgPoints
		stats.DefensePPG = cfg.LeagueAvgPoints
	}
	return stats
}

// buildPrediction freezes a forecast into the persisted prediction shape.
// Market fields stay nil here; the grader and classifier fill them from the
// line record when one exists.
func buildPrediction(game *models.Game, forecast predict.Forecast, homeRating, awayRating float64, adjustments predict.SignalAdjustments, at time.Time) *models.Prediction {
	return &models.Prediction{
		GameID:         game.ID,
		Sport:          game.Sport,
		Season:         game.Season,
		Week:           game.Week,
		HomeTeamID:     game.HomeTeamID,
		AwayTeamID:     game.AwayTeamID,
		HomeRating:     homeRating,
		AwayRating:     awayRating,
		HomeScore:      forecast.HomeScore,
		AwayScore:      forecast.AwayScore,
		Spread:         forecast.Spread,
		Total:          forecast.Total,
		HomeWinProb:    forecast.HomeWinProb,
		HomePasserOut:  adjustments.HomePasserOut,
		AwayPasserOut:  adjustments.AwayPasserOut,
		WeatherPenalty: adjustments.TotalPointsPenalty,
		GeneratedAt:    at,
	}
}
