package engine

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/artifact"
	"github.com/yourusername/line-edge/internal/cache"
	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// nflConfig mirrors the development configuration for football
func nflConfig() config.SportConfig {
	return config.SportConfig{
		Enabled:              true,
		LeagueCode:           "nfl",
		SeasonStartMonth:     9,
		SeasonStartDay:       1,
		InitialRating:        1500,
		BaseK:                20,
		MOVLogScale:          0.8,
		MOVBase:              0.2,
		HomeRatingBonus:      48,
		RoundRatings:         true,
		LeagueAvgPoints:      22.5,
		FallbackTotal:        45.5,
		StatWeight:           0.7,
		EloPerPoint:          25,
		EloPointCap:          10,
		HomeAdvantagePoints:  2.0,
		SpreadRegression:     0.15,
		PasserOutPenalty:     3,
		WeatherSensitive:     true,
		WindPenaltyThreshold: 12,
		WindPenaltyPerMPH:    0.25,
		PrecipPenaltyPoints:  1.5,
		WeatherPenaltyCap:    6.0,
		SpreadEdgeHigh:       3.0,
		SpreadEdgeMedium:     1.5,
		TotalEdgeHigh:        4.0,
		TotalEdgeMedium:      2.0,
		MoneylineProbHigh:    0.15,
		MoneylineProbMedium:  0.08,
		AvoidBandLow:         3.5,
		AvoidBandHigh:        7.0,
		ConvictionThreshold:  2.0,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{SignalTTLHours: 6, CleanupIntervalMinutes: 30},
		Sync: config.SyncConfig{
			LockWindowMinutes:     60,
			BatchSize:             50,
			MaxParallel:           4,
			HorizonDays:           8,
			BackfillDays:          3,
			OddsCoverageWarnBelow: 0.8,
		},
		Sports: map[string]config.SportConfig{"nfl": nflConfig()},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Fake repositories backed by maps. Upserts mimic the SQL conflict rules:
// game upserts never touch the processed flag, signal puts never clear the
// permanent flag.

type fakeTeamRepo struct{ teams map[string]*models.Team }

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) Upsert(ctx context.Context, team *models.Team) error {
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *fakeTeamRepo) UpsertBatch(ctx context.Context, teams []*models.Team) error {
	for _, team := range teams {
		if err := r.Upsert(ctx, team); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *team
	return &clone, nil
}

func (r *fakeTeamRepo) GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error) {
	for _, team := range r.teams {
		if team.Sport == sport && team.Name == name {
			clone := *team
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeTeamRepo) ListBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for _, team := range r.teams {
		if team.Sport == sport {
			clone := *team
			teams = append(teams, &clone)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

type fakeGameRepo struct{ games map[string]*models.Game }

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[string]*models.Game)}
}

func (r *fakeGameRepo) UpsertBatch(ctx context.Context, games []*models.Game) error {
	for _, game := range games {
		clone := *game
		if existing, ok := r.games[game.ID]; ok {
			clone.Processed = existing.Processed
			clone.Indoor = existing.Indoor
		}
		r.games[game.ID] = &clone
	}
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id string) (*models.Game, error) {
	game, ok := r.games[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *game
	return &clone, nil
}

func (r *fakeGameRepo) ListFinalUnprocessed(ctx context.Context, sport models.Sport, season int) ([]*models.Game, error) {
	games := make([]*models.Game, 0)
	for _, game := range r.games {
		if game.Sport == sport && game.Season == season && game.IsFinal() && !game.Processed {
			clone := *game
			games = append(games, &clone)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].Kickoff.Equal(games[j].Kickoff) {
			return games[i].ID < games[j].ID
		}
		return games[i].Kickoff.Before(games[j].Kickoff)
	})
	return games, nil
}

func (r *fakeGameRepo) ListUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Game, error) {
	games := make([]*models.Game, 0)
	for _, game := range r.games {
		if game.Sport == sport && game.IsUpcoming() && !game.Kickoff.Before(from) && game.Kickoff.Before(to) {
			clone := *game
			games = append(games, &clone)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Kickoff.Before(games[j].Kickoff) })
	return games, nil
}

func (r *fakeGameRepo) MarkProcessed(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if game, ok := r.games[id]; ok {
			game.Processed = true
		}
	}
	return nil
}

func (r *fakeGameRepo) ResetProcessed(ctx context.Context, sport models.Sport) error {
	for _, game := range r.games {
		if game.Sport == sport {
			game.Processed = false
		}
	}
	return nil
}

type fakeLineRepo struct{ records map[string]*models.LineRecord }

func newFakeLineRepo() *fakeLineRepo {
	return &fakeLineRepo{records: make(map[string]*models.LineRecord)}
}

func (r *fakeLineRepo) Get(ctx context.Context, gameID string) (*models.LineRecord, error) {
	rec, ok := r.records[gameID]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeLineRepo) Upsert(ctx context.Context, record *models.LineRecord) error {
	clone := *record
	r.records[record.GameID] = &clone
	return nil
}

func (r *fakeLineRepo) ListByGameIDs(ctx context.Context, gameIDs []string) (map[string]*models.LineRecord, error) {
	records := make(map[string]*models.LineRecord)
	for _, id := range gameIDs {
		if rec, ok := r.records[id]; ok {
			clone := *rec
			records[id] = &clone
		}
	}
	return records, nil
}

type fakeSignalStore struct{ signals map[string]*models.CachedSignal }

func newFakeSignalStore() *fakeSignalStore {
	return &fakeSignalStore{signals: make(map[string]*models.CachedSignal)}
}

func (r *fakeSignalStore) GetSignal(ctx context.Context, key string) (*models.CachedSignal, error) {
	signal, ok := r.signals[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *signal
	return &clone, nil
}

func (r *fakeSignalStore) PutSignal(ctx context.Context, signal *models.CachedSignal) error {
	clone := *signal
	if existing, ok := r.signals[signal.Key]; ok && existing.Permanent {
		clone.Permanent = true
	}
	r.signals[signal.Key] = &clone
	return nil
}

type fakeBacktestRepo struct{ results map[string]*models.BacktestResult }

func newFakeBacktestRepo() *fakeBacktestRepo {
	return &fakeBacktestRepo{results: make(map[string]*models.BacktestResult)}
}

func (r *fakeBacktestRepo) Upsert(ctx context.Context, result *models.BacktestResult) error {
	clone := *result
	r.results[result.GameID] = &clone
	return nil
}

func (r *fakeBacktestRepo) UpsertBatch(ctx context.Context, results []*models.BacktestResult) error {
	for _, result := range results {
		if err := r.Upsert(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeBacktestRepo) GetByGameID(ctx context.Context, gameID string) (*models.BacktestResult, error) {
	result, ok := r.results[gameID]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *result
	return &clone, nil
}

func (r *fakeBacktestRepo) ListBySeason(ctx context.Context, sport models.Sport, season int) ([]*models.BacktestResult, error) {
	results := make([]*models.BacktestResult, 0)
	for _, result := range r.results {
		if result.Sport == sport && result.Season == season {
			clone := *result
			results = append(results, &clone)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].GameID < results[j].GameID })
	return results, nil
}

type fakeSyncStateRepo struct {
	states map[models.Sport]*models.SyncState
	saves  int
}

func newFakeSyncStateRepo() *fakeSyncStateRepo {
	return &fakeSyncStateRepo{states: make(map[models.Sport]*models.SyncState)}
}

func (r *fakeSyncStateRepo) Get(ctx context.Context, sport models.Sport) (*models.SyncState, error) {
	state, ok := r.states[sport]
	if !ok {
		return nil, models.ErrNotFound
	}
	return state, nil
}

func (r *fakeSyncStateRepo) Save(ctx context.Context, state *models.SyncState) error {
	r.saves++
	r.states[state.Sport] = state
	return nil
}

func newFakeRepos() *repository.Repositories {
	return &repository.Repositories{
		Team:      newFakeTeamRepo(),
		Game:      newFakeGameRepo(),
		Line:      newFakeLineRepo(),
		Signal:    newFakeSignalStore(),
		Backtest:  newFakeBacktestRepo(),
		SyncState: newFakeSyncStateRepo(),
	}
}

// Fake providers

type fakeSchedule struct {
	updates []datasource.GameUpdate
	err     error
	calls   int
}

func (p *fakeSchedule) FetchGames(ctx context.Context, sport models.Sport, startDate, endDate time.Time) ([]datasource.GameUpdate, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.updates, nil
}
func (p *fakeSchedule) Name() string    { return "fake-schedule" }
func (p *fakeSchedule) IsEnabled() bool { return true }

type fakeOdds struct {
	odds  []datasource.GameOdds
	err   error
	calls int
}

func (p *fakeOdds) FetchOdds(ctx context.Context, sport models.Sport) ([]datasource.GameOdds, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.odds, nil
}
func (p *fakeOdds) Name() string    { return "fake-odds" }
func (p *fakeOdds) IsEnabled() bool { return true }

type fakeWeather struct {
	reports  map[string]*datasource.WeatherReport
	err      error
	calls    int
	disabled bool
}

func (p *fakeWeather) FetchForecast(ctx context.Context, venue string, kickoff time.Time) (*datasource.WeatherReport, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if report, ok := p.reports[venue]; ok {
		clone := *report
		return &clone, nil
	}
	return &datasource.WeatherReport{Venue: venue, Kickoff: kickoff}, nil
}
func (p *fakeWeather) Name() string    { return "fake-weather" }
func (p *fakeWeather) IsEnabled() bool { return !p.disabled }

type fakeInjuries struct {
	table    map[string]datasource.InjuryReport
	err      error
	calls    int
	disabled bool
}

func (p *fakeInjuries) FetchInjuries(ctx context.Context, sport models.Sport) (map[string]datasource.InjuryReport, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.table, nil
}
func (p *fakeInjuries) Name() string    { return "fake-injuries" }
func (p *fakeInjuries) IsEnabled() bool { return !p.disabled }

type fakePublisher struct {
	snapshots []*artifact.Snapshot
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, snapshot *artifact.Snapshot) error {
	if p.err != nil {
		return p.err
	}
	p.snapshots = append(p.snapshots, snapshot)
	return nil
}

func newTestCache(store cache.SignalStore) *cache.Manager {
	return cache.NewManager(6*time.Hour, store)
}
