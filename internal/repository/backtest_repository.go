package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

const errScanBacktestResult = "failed to scan backtest result: %w"

const backtestColumns = `game_id, sport, season, week, predicted_spread, predicted_total,
	home_win_prob, market_spread, market_total, home_score, away_score,
	spread_model, spread_market, moneyline, total, high_conviction, graded_at`

// A regrade replaces the previous grade for the game.
const backtestUpsertQuery = `
	INSERT INTO backtest_results (game_id, sport, season, week, predicted_spread, predicted_total,
	                              home_win_prob, market_spread, market_total, home_score, away_score,
	                              spread_model, spread_market, moneyline, total, high_conviction, graded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (game_id) DO UPDATE SET
		predicted_spread = EXCLUDED.predicted_spread,
		predicted_total = EXCLUDED.predicted_total,
		home_win_prob = EXCLUDED.home_win_prob,
		market_spread = EXCLUDED.market_spread,
		market_total = EXCLUDED.market_total,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		spread_model = EXCLUDED.spread_model,
		spread_market = EXCLUDED.spread_market,
		moneyline = EXCLUDED.moneyline,
		total = EXCLUDED.total,
		high_conviction = EXCLUDED.high_conviction,
		graded_at = EXCLUDED.graded_at
`

// PostgresBacktestRepository implements BacktestRepository for PostgreSQL
type PostgresBacktestRepository struct {
	db *database.DB
}

// NewPostgresBacktestRepository creates a new backtest result repository
func NewPostgresBacktestRepository(db *database.DB) BacktestRepository {
	return &PostgresBacktestRepository{db: db}
}

// Upsert writes one graded result
func (r *PostgresBacktestRepository) Upsert(ctx context.Context, result *models.BacktestResult) error {
	_, err := r.db.GetPool().Exec(ctx, backtestUpsertQuery,
		result.GameID, result.Sport, result.Season, result.Week,
		result.PredictedSpread, result.PredictedTotal, result.HomeWinProb,
		result.MarketSpread, result.MarketTotal, result.HomeScore, result.AwayScore,
		result.SpreadModel, result.SpreadMarket, result.Moneyline, result.Total,
		result.HighConviction, result.GradedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// UpsertBatch writes many graded results in one round trip
func (r *PostgresBacktestRepository) UpsertBatch(ctx context.Context, results []*models.BacktestResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, result := range results {
		batch.Queue(backtestUpsertQuery,
			result.GameID, result.Sport, result.Season, result.Week,
			result.PredictedSpread, result.PredictedTotal, result.HomeWinProb,
			result.MarketSpread, result.MarketTotal, result.HomeScore, result.AwayScore,
			result.SpreadModel, result.SpreadMarket, result.Moneyline, result.Total,
			result.HighConviction, result.GradedAt,
		)
	}

	batchResults := r.db.GetPool().SendBatch(ctx, batch)
	defer batchResults.Close()

	for range results {
		if _, err := batchResults.Exec(); err != nil {
			return fmt.Errorf("failed to batch save backtest results: %w", err)
		}
	}

	return nil
}

// GetByGameID retrieves the graded result for one game
func (r *PostgresBacktestRepository) GetByGameID(ctx context.Context, gameID string) (*models.BacktestResult, error) {
	query := `SELECT ` + backtestColumns + ` FROM backtest_results WHERE game_id = $1`

	result := &models.BacktestResult{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(
		&result.GameID, &result.Sport, &result.Season, &result.Week,
		&result.PredictedSpread, &result.PredictedTotal, &result.HomeWinProb,
		&result.MarketSpread, &result.MarketTotal, &result.HomeScore, &result.AwayScore,
		&result.SpreadModel, &result.SpreadMarket, &result.Moneyline, &result.Total,
		&result.HighConviction, &result.GradedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result: %w", err)
	}

	return result, nil
}

// ListBySeason retrieves every graded result for a sport and season ordered
// by grading time
func (r *PostgresBacktestRepository) ListBySeason(ctx context.Context, sport models.Sport, season int) ([]*models.BacktestResult, error) {
	query := `SELECT ` + backtestColumns + `
		FROM backtest_results
		WHERE sport = $1 AND season = $2
		ORDER BY graded_at ASC, game_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, sport, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()

	var results []*models.BacktestResult
	for rows.Next() {
		result := &models.BacktestResult{}
		if err := rows.Scan(
			&result.GameID, &result.Sport, &result.Season, &result.Week,
			&result.PredictedSpread, &result.PredictedTotal, &result.HomeWinProb,
			&result.MarketSpread, &result.MarketTotal, &result.HomeScore, &result.AwayScore,
			&result.SpreadModel, &result.SpreadMarket, &result.Moneyline, &result.Total,
			&result.HighConviction, &result.GradedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
