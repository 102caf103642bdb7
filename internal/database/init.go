package database

import (
	"context"
	"fmt"

	"github.com/yourusername/line-edge/internal/config"
)

// schemaStatements creates every table the sync engine persists to. All
// statements are idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		sport TEXT NOT NULL,
		name TEXT NOT NULL,
		abbreviation TEXT NOT NULL DEFAULT '',
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		offense_ppg DOUBLE PRECISION NOT NULL DEFAULT 0,
		defense_ppg DOUBLE PRECISION NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		conference_tier INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (sport, name)
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		sport TEXT NOT NULL,
		season INTEGER NOT NULL,
		week INTEGER NOT NULL DEFAULT 0,
		home_team_id TEXT NOT NULL REFERENCES teams(id),
		away_team_id TEXT NOT NULL REFERENCES teams(id),
		kickoff TIMESTAMPTZ NOT NULL,
		venue TEXT NOT NULL DEFAULT '',
		indoor BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'scheduled',
		home_score INTEGER,
		away_score INTEGER,
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_sport_season ON games (sport, season)`,
	`CREATE INDEX IF NOT EXISTS idx_games_sport_status_kickoff ON games (sport, status, kickoff)`,
	`CREATE TABLE IF NOT EXISTS line_records (
		game_id TEXT PRIMARY KEY REFERENCES games(id),
		sport TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		opening_spread DOUBLE PRECISION,
		opening_total DOUBLE PRECISION,
		last_spread DOUBLE PRECISION,
		last_total DOUBLE PRECISION,
		closing_spread DOUBLE PRECISION,
		closing_total DOUBLE PRECISION,
		home_moneyline INTEGER,
		away_moneyline INTEGER,
		captured_at TIMESTAMPTZ,
		locked_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cached_signals (
		key TEXT PRIMARY KEY,
		sport TEXT NOT NULL,
		kind TEXT NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		payload JSONB,
		fetched_at TIMESTAMPTZ NOT NULL,
		permanent BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cached_signals_sport_kind ON cached_signals (sport, kind)`,
	`CREATE TABLE IF NOT EXISTS backtest_results (
		game_id TEXT PRIMARY KEY REFERENCES games(id),
		sport TEXT NOT NULL,
		season INTEGER NOT NULL,
		week INTEGER NOT NULL DEFAULT 0,
		predicted_spread DOUBLE PRECISION NOT NULL,
		predicted_total DOUBLE PRECISION NOT NULL,
		home_win_prob DOUBLE PRECISION NOT NULL,
		market_spread DOUBLE PRECISION,
		market_total DOUBLE PRECISION,
		home_score INTEGER NOT NULL,
		away_score INTEGER NOT NULL,
		spread_model TEXT NOT NULL DEFAULT '',
		spread_market TEXT NOT NULL DEFAULT '',
		moneyline TEXT NOT NULL DEFAULT '',
		total TEXT NOT NULL DEFAULT '',
		high_conviction BOOLEAN NOT NULL DEFAULT FALSE,
		graded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_results_sport_season ON backtest_results (sport, season)`,
	`CREATE TABLE IF NOT EXISTS sync_state (
		sport TEXT PRIMARY KEY,
		season INTEGER NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		processed_ids JSONB NOT NULL DEFAULT '[]',
		tallies JSONB NOT NULL DEFAULT '{}',
		last_run_id UUID,
		last_run_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates any missing tables and indexes
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
