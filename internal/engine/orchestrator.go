// Package engine runs the per-sport sync pass: schedule ingestion,
// chronological replay of final games through the rating engine, line
// lifecycle upkeep, and forward predictions with confidence tiers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/line-edge/internal/artifact"
	"github.com/yourusername/line-edge/internal/backtest"
	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/lines"
	applogger "github.com/yourusername/line-edge/internal/logger"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/predict"
	"github.com/yourusername/line-edge/internal/rating"
	"github.com/yourusername/line-edge/internal/repository"
)

// Sources bundles the upstream feeds one pass consumes
type Sources struct {
	Schedule datasource.ScheduleProvider
	Odds     datasource.OddsProvider
	Weather  datasource.WeatherProvider
	Injuries datasource.InjuryProvider
}

// RunOptions parameterizes one sync pass
type RunOptions struct {
	Sport              models.Sport
	ForceReset         bool
	SeasonOverride     int
	ForceSignalRefresh bool
	BackfillDays       int
}

// RunSummary reports what one pass did
type RunSummary struct {
	Sport           models.Sport  `json:"sport"`
	Season          int           `json:"season"`
	Week            int           `json:"week"`
	RunID           uuid.UUID     `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	GamesIngested   int           `json:"games_ingested"`
	GamesProcessed  int           `json:"games_processed"`
	GamesSkipped    int           `json:"games_skipped"`
	Predictions     int           `json:"predictions"`
	LinesLocked     int           `json:"lines_locked"`
	OddsCoverage    float64       `json:"odds_coverage"`
	CoverageWarning bool          `json:"coverage_warning"`
}

// Orchestrator wires one sync pass end to end. It holds only sport-agnostic
// collaborators; the per-sport component set is built fresh for each pass
// from that sport's configuration.
type Orchestrator struct {
	cfg       *config.Config
	repos     *repository.Repositories
	sources   Sources
	cache     *cache.Manager
	lines     *lines.Manager
	publisher artifact.Publisher
	logger    *logrus.Logger
	sync      *applogger.SyncLogger
	audit     *applogger.AuditLogger
	now       func() time.Time
}

// NewOrchestrator creates the pass runner
func NewOrchestrator(
	cfg *config.Config,
	repos *repository.Repositories,
	sources Sources,
	cacheMgr *cache.Manager,
	publisher artifact.Publisher,
	logger *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		repos:     repos,
		sources:   sources,
		cache:     cacheMgr,
		lines:     lines.NewManager(cfg.Sync.LockWindow()),
		publisher: publisher,
		logger:    logger,
		sync:      applogger.NewSyncLogger(logger),
		audit:     applogger.NewAuditLogger(logger),
		now:       time.Now,
	}
}

// Run executes one sync pass for a sport. Re-running with no new final games
// changes nothing; a pass interrupted mid-way resumes cleanly because every
// game commits individually.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	start := o.now()
	runID := uuid.New()
	sport := opts.Sport

	sportCfg, ok := o.cfg.Sport(sport.String())
	if !ok || !sportCfg.Enabled {
		return nil, fmt.Errorf("sport %s is not enabled", sport)
	}

	log := o.logger.WithFields(logrus.Fields{
		"sport":  sport,
		"run_id": runID,
	})

	season := sportCfg.SeasonFor(start)
	if opts.SeasonOverride > 0 {
		season = opts.SeasonOverride
	}
	o.sync.LogPassStarted(sport.String(), runID.String(), season, opts.ForceReset)
	week := sportCfg.WeekFor(season, start)
	period := fmt.Sprintf("%d-w%d", season, week)

	// Per-sport component set for this pass
	ratings := rating.NewEngine(sportCfg)
	predictor := predict.NewPredictor(sportCfg, ratings)
	classifier := predict.NewClassifier(sportCfg)
	grader := backtest.NewGrader(sportCfg)
	resolver := NewSignalResolver(o.cache, o.sources.Weather, o.sources.Injuries,
		sportCfg, o.cfg.Cache.SignalTTL(), o.logger)
	processor := NewGameProcessor(sportCfg, ratings, predictor, grader, resolver, o.repos, o.logger)

	state, teams, err := o.loadState(ctx, processor, sport, season, opts)
	if err != nil {
		return nil, o.fail(log, sport, start, err)
	}
	state.Period = period
	state.LastRunID = runID
	state.LastRunAt = start

	ingested, err := o.ingestSchedule(ctx, log, sportCfg, sport, teams, ratings, opts, start)
	if err != nil {
		return nil, o.fail(log, sport, start, err)
	}

	replayStats, err := processor.Replay(ctx, state, teams)
	if err != nil {
		return nil, o.fail(log, sport, start, err)
	}

	upcoming, records, locked, err := o.refreshLines(ctx, log, sport, start)
	if err != nil {
		return nil, o.fail(log, sport, start, err)
	}

	predictions, err := o.generatePredictions(ctx, sportCfg, predictor, classifier, resolver,
		sport, period, teams, upcoming, records, opts.ForceSignalRefresh)
	if err != nil {
		return nil, o.fail(log, sport, start, err)
	}

	if err := o.repos.SyncState.Save(ctx, state); err != nil {
		return nil, o.fail(log, sport, start, fmt.Errorf("failed to save sync state: %w", err))
	}

	summary := backtest.BuildSummary(sport, season, len(state.ProcessedID), state.Tallies)
	snapshot := artifact.Build(sport, season, week, runID, o.now(), summary,
		rankTeams(teams), upcoming, predictions, records)
	if err := o.publisher.Publish(ctx, snapshot); err != nil {
		return nil, o.fail(log, sport, start, fmt.Errorf("failed to publish artifact: %w", err))
	}
	o.audit.LogArtifactPublished(sport.String(), len(snapshot.Games), len(snapshot.Ratings), snapshot.GeneratedAt)

	coverage := oddsCoverage(replayStats)
	warn := coverage < o.cfg.Sync.OddsCoverageWarnBelow
	if warn && replayStats.Processed > 0 {
		o.sync.LogCoverageWarning(sport.String(), coverage, o.cfg.Sync.OddsCoverageWarnBelow, replayStats.MarketMissing)
	}
	metrics.UpdateOddsCoverageRatio(sport.String(), coverage)

	duration := o.now().Sub(start)
	metrics.RecordSyncPass(sport.String(), "success", duration.Seconds())
	metrics.UpdateLastPassTimestamp(sport.String(), float64(o.now().Unix()))
	metrics.UpdateProcessedGames(sport.String(), float64(len(state.ProcessedID)))

	result := &RunSummary{
		Sport:           sport,
		Season:          season,
		Week:            week,
		RunID:           runID,
		StartedAt:       start,
		Duration:        duration,
		GamesIngested:   ingested,
		GamesProcessed:  replayStats.Processed,
		GamesSkipped:    replayStats.Skipped,
		Predictions:     len(predictions),
		LinesLocked:     locked,
		OddsCoverage:    coverage,
		CoverageWarning: warn,
	}

	o.sync.LogPassCompleted(sport.String(), runID.String(), result.GamesIngested, result.GamesProcessed,
		result.GamesSkipped, result.Predictions, result.LinesLocked, coverage, float64(duration.Milliseconds()))

	return result, nil
}

// loadState fetches or creates the sync state and the team map, applying a
// reset when forced or when the season rolled over
func (o *Orchestrator) loadState(ctx context.Context, processor *GameProcessor, sport models.Sport, season int, opts RunOptions) (*models.SyncState, map[string]*models.Team, error) {
	state, err := o.repos.SyncState.Get(ctx, sport)
	if errors.Is(err, models.ErrNotFound) {
		state = models.NewSyncState(sport, season)
		if err := o.recoverState(ctx, state, season); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to load sync state: %w", err)
	}

	teamList, err := o.repos.Team.ListBySport(ctx, sport)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load teams: %w", err)
	}
	teams := make(map[string]*models.Team, len(teamList))
	for _, team := range teamList {
		teams[team.ID] = team
	}

	switch {
	case opts.ForceReset:
		if err := processor.Reset(ctx, state, teams, season, "forced"); err != nil {
			return nil, nil, err
		}
	case state.Season != season:
		if err := processor.Reset(ctx, state, teams, season, "season_rollover"); err != nil {
			return nil, nil, err
		}
	}

	return state, teams, nil
}

// recoverState rebuilds progress from stored graded rows when the state row
// is gone. The processed set, the game markers and the tallies are re-seeded
// from the same rows, so replay neither regrades them nor counts them twice.
func (o *Orchestrator) recoverState(ctx context.Context, state *models.SyncState, season int) error {
	results, err := o.repos.Backtest.ListBySeason(ctx, state.Sport, season)
	if err != nil {
		return fmt.Errorf("failed to load graded results: %w", err)
	}
	if len(results) == 0 {
		return nil
	}

	ids := make([]string, 0, len(results))
	for _, result := range results {
		state.MarkProcessed(result.GameID)
		ids = append(ids, result.GameID)
	}
	state.Tallies = backtest.TallyResults(results)

	if err := o.repos.Game.MarkProcessed(ctx, ids); err != nil {
		return fmt.Errorf("failed to restore processed markers: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"sport": state.Sport,
		"games": len(ids),
	}).Warn("Rebuilt sync state from stored graded results")
	return nil
}

// ingestSchedule pulls the schedule window and upserts teams and games.
// Malformed entries are skipped, never fatal; a failed schedule fetch is
// fatal because everything downstream works off it.
func (o *Orchestrator) ingestSchedule(ctx context.Context, log *logrus.Entry, sportCfg config.SportConfig, sport models.Sport, teams map[string]*models.Team, ratings *rating.Engine, opts RunOptions, now time.Time) (int, error) {
	backfill := o.cfg.Sync.BackfillDays
	if opts.BackfillDays > 0 {
		backfill = opts.BackfillDays
	}
	from := now.AddDate(0, 0, -backfill)
	to := now.AddDate(0, 0, o.cfg.Sync.HorizonDays)

	updates, err := o.sources.Schedule.FetchGames(ctx, sport, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	newTeams := make([]*models.Team, 0)
	games := make([]*models.Game, 0, len(updates))
	for i := range updates {
		update := &updates[i]
		if update.SourceID == "" || update.HomeTeam == "" || update.AwayTeam == "" {
			o.sync.LogGameSkipped(sport.String(), update.SourceID, "malformed")
			metrics.RecordGameSkipped(sport.String(), "malformed")
			continue
		}

		homeID := ensureTeam(teams, &newTeams, ratings, sport, update.HomeTeam, update.HomeTier, now)
		awayID := ensureTeam(teams, &newTeams, ratings, sport, update.AwayTeam, update.AwayTier, now)

		gameSeason := sportCfg.SeasonFor(update.Kickoff)
		games = append(games, &models.Game{
			ID:         update.SourceID,
			Sport:      sport,
			Season:     gameSeason,
			Week:       sportCfg.WeekFor(gameSeason, update.Kickoff),
			HomeTeamID: homeID,
			AwayTeamID: awayID,
			Kickoff:    update.Kickoff,
			Venue:      update.Venue,
			Status:     update.Status,
			HomeScore:  update.HomeScore,
			AwayScore:  update.AwayScore,
			UpdatedAt:  now,
		})
	}

	if err := o.repos.Team.UpsertBatch(ctx, newTeams); err != nil {
		return 0, fmt.Errorf("failed to save new teams: %w", err)
	}

	batchSize := o.cfg.Sync.BatchSize
	for i := 0; i < len(games); i += batchSize {
		end := i + batchSize
		if end > len(games) {
			end = len(games)
		}
		if err := o.repos.Game.UpsertBatch(ctx, games[i:end]); err != nil {
			return 0, fmt.Errorf("failed to save games: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"games":     len(games),
		"new_teams": len(newTeams),
	}).Info("Schedule window ingested")

	return len(games), nil
}

// refreshLines loads the upcoming window, folds fresh odds into each game's
// line record and applies lock transitions. Odds fetch failure degrades:
// records keep their last observed values.
func (o *Orchestrator) refreshLines(ctx context.Context, log *logrus.Entry, sport models.Sport, now time.Time) ([]*models.Game, map[string]*models.LineRecord, int, error) {
	to := now.AddDate(0, 0, o.cfg.Sync.HorizonDays)
	upcoming, err := o.repos.Game.ListUpcoming(ctx, sport, now, to)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to list upcoming games: %w", err)
	}

	ids := make([]string, len(upcoming))
	for i, game := range upcoming {
		ids[i] = game.ID
	}
	records, err := o.repos.Line.ListByGameIDs(ctx, ids)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to load line records: %w", err)
	}

	quotes := o.fetchOdds(ctx, log, sport)

	locked := 0
	for _, game := range upcoming {
		rec := records[game.ID]
		if rec == nil {
			rec = lines.NewRecord(game.ID, sport)
			records[game.ID] = rec
		}

		if o.lines.ShouldFetch(rec) {
			if quote, ok := quotes[oddsKey(game.HomeTeamID, game.AwayTeamID, game.Kickoff)]; ok {
				opened := rec.CapturedAt == nil
				if err := o.lines.Observe(rec, quote, now); err != nil {
					o.audit.LogRejectedWrite(sport.String(), game.ID, "odds_feed")
				} else if opened && rec.CapturedAt != nil {
					o.audit.LogLineOpened(sport.String(), game.ID, rec.OpeningSpread, rec.OpeningTotal)
				}
			}
		} else {
			metrics.RecordLockedLineFetchSkip(sport.String())
		}

		if o.lines.MaybeLock(rec, game.Kickoff, now) {
			locked++
			o.audit.LogLineLocked(sport.String(), game.ID, rec.ClosingSpread, rec.ClosingTotal, *rec.LockedAt)
			metrics.RecordLineLocked(sport.String())
		}

		if err := o.repos.Line.Upsert(ctx, rec); err != nil {
			return nil, nil, 0, fmt.Errorf("failed to save line record for game %s: %w", game.ID, err)
		}
	}

	return upcoming, records, locked, nil
}

// fetchOdds pulls the consensus book once for the whole pass and indexes the
// quotes by matchup
func (o *Orchestrator) fetchOdds(ctx context.Context, log *logrus.Entry, sport models.Sport) map[string]lines.Quote {
	if o.sources.Odds == nil || !o.sources.Odds.IsEnabled() {
		return nil
	}

	odds, err := o.sources.Odds.FetchOdds(ctx, sport)
	if err != nil {
		log.WithError(err).Warn("Odds fetch failed, line records keep their last values")
		return nil
	}

	quotes := make(map[string]lines.Quote, len(odds))
	for _, entry := range odds {
		key := oddsKey(
			models.TeamID(sport, entry.HomeTeam),
			models.TeamID(sport, entry.AwayTeam),
			entry.Kickoff,
		)
		quotes[key] = lines.Quote{
			Spread:        entry.Spread,
			Total:         entry.Total,
			HomeMoneyline: entry.HomeMoneyline,
			AwayMoneyline: entry.AwayMoneyline,
		}
	}
	return quotes
}

// oddsKey matches odds entries to games without relying on provider ids
// being shared across feeds
func oddsKey(homeID, awayID string, kickoff time.Time) string {
	return fmt.Sprintf("%s|%s|%s", homeID, awayID, kickoff.UTC().Format("2006-01-02"))
}

// generatePredictions builds a classified forecast for every upcoming game.
// Games fan out across a bounded worker group; a failed signal or unknown
// team degrades that game only, never the pass.
func (o *Orchestrator) generatePredictions(
	ctx context.Context,
	sportCfg config.SportConfig,
	predictor *predict.Predictor,
	classifier *predict.Classifier,
	resolver *SignalResolver,
	sport models.Sport,
	period string,
	teams map[string]*models.Team,
	upcoming []*models.Game,
	records map[string]*models.LineRecord,
	forceRefresh bool,
) (map[string]*models.Prediction, error) {
	// One league-wide injury fetch serves every game in the pass
	injuries := resolver.InjuryTable(ctx, sport, period, forceRefresh)

	slots := make([]*models.Prediction, len(upcoming))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Sync.MaxParallel)

	for i, game := range upcoming {
		g.Go(func() error {
			home, homeOK := teams[game.HomeTeamID]
			away, awayOK := teams[game.AwayTeamID]
			if !homeOK || !awayOK {
				metrics.RecordGameSkipped(sport.String(), "unknown_team")
				return nil
			}

			weather := resolver.VenueWeather(gctx, game, forceRefresh)
			adjustments := resolver.Adjustments(game, home.Name, away.Name, weather, injuries)

			forecast := predictor.Predict(teamStats(home, sportCfg), teamStats(away, sportCfg), adjustments)

			prediction := buildPrediction(game, forecast, home.Rating, away.Rating, adjustments, o.now())
			if rec := records[game.ID]; rec != nil {
				if spread, ok := rec.SpreadReference(); ok {
					prediction.MarketSpread = &spread
				}
				if total, ok := rec.TotalReference(); ok {
					prediction.MarketTotal = &total
				}
			}
			classifier.Apply(prediction)

			slots[i] = prediction
			metrics.RecordPredictionGenerated(sport.String())
			return nil
		})
	}
	// Workers only ever return nil; Wait is for completion, not errors
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("prediction pass interrupted: %w", err)
	}

	predictions := make(map[string]*models.Prediction, len(slots))
	for _, prediction := range slots {
		if prediction != nil {
			predictions[prediction.GameID] = prediction
		}
	}
	return predictions, nil
}

// ensureTeam returns the stable id for a provider team name, creating and
// seeding the team on first sight. Tiers are 0-based with 0 the top tier.
func ensureTeam(teams map[string]*models.Team, created *[]*models.Team, ratings *rating.Engine, sport models.Sport, name string, tier *int, now time.Time) string {
	id := models.TeamID(sport, name)
	if _, ok := teams[id]; ok {
		return id
	}

	teamTier := 0
	if tier != nil {
		teamTier = *tier
		if teamTier < 0 {
			teamTier = 0
		}
		if teamTier > 2 {
			teamTier = 2
		}
	}

	team := &models.Team{
		ID:             id,
		Sport:          sport,
		Name:           name,
		Rating:         ratings.Seed(teamTier),
		ConferenceTier: teamTier,
		UpdatedAt:      now,
	}
	teams[id] = team
	*created = append(*created, team)
	return id
}

// rankTeams returns the team map as a slice sorted by rating descending,
// ties broken by id for stable output
func rankTeams(teams map[string]*models.Team) []*models.Team {
	ranked := make([]*models.Team, 0, len(teams))
	for _, team := range teams {
		ranked = append(ranked, team)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating == ranked[j].Rating {
			return ranked[i].ID < ranked[j].ID
		}
		return ranked[i].Rating > ranked[j].Rating
	})
	return ranked
}

// oddsCoverage returns the fraction of games graded this pass that had a
// market number. No graded games means full coverage.
func oddsCoverage(stats ReplayStats) float64 {
	if stats.Processed == 0 {
		return 1
	}
	return float64(stats.Processed-stats.MarketMissing) / float64(stats.Processed)
}

func (o *Orchestrator) fail(log *logrus.Entry, sport models.Sport, start time.Time, err error) error {
	metrics.RecordSyncPass(sport.String(), "failure", o.now().Sub(start).Seconds())
	log.WithError(err).Error("Sync pass failed")
	return err
}
