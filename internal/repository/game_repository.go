package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

const errScanGame = "failed to scan game: %w"

const gameColumns = `id, sport, season, week, home_team_id, away_team_id, kickoff,
	venue, indoor, status, home_score, away_score, processed, updated_at`

const gameUpsertQuery = `
	INSERT INTO games (id, sport, season, week, home_team_id, away_team_id, kickoff,
	                   venue, indoor, status, home_score, away_score, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	ON CONFLICT (id) DO UPDATE SET
		season = EXCLUDED.season,
		week = EXCLUDED.week,
		kickoff = EXCLUDED.kickoff,
		venue = EXCLUDED.venue,
		status = EXCLUDED.status,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		updated_at = NOW()
`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// UpsertBatch inserts or refreshes games. The processed flag is never touched
// here; only MarkProcessed and ResetProcessed change it. The indoor flag is
// set once at insert and kept on refresh, since schedule feeds do not carry
// venue roof data.
func (r *PostgresGameRepository) UpsertBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, game := range games {
		batch.Queue(gameUpsertQuery,
			game.ID, game.Sport, game.Season, game.Week, game.HomeTeamID, game.AwayTeamID,
			game.Kickoff, game.Venue, game.Indoor, game.Status, game.HomeScore, game.AwayScore,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range games {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch upsert games: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.Sport, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
		&game.Kickoff, &game.Venue, &game.Indoor, &game.Status, &game.HomeScore, &game.AwayScore,
		&game.Processed, &game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListFinalUnprocessed retrieves final games not yet folded into the ratings,
// ordered by kickoff so rating updates replay in game order.
func (r *PostgresGameRepository) ListFinalUnprocessed(ctx context.Context, sport models.Sport, season int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND season = $2 AND status = 'final' AND processed = FALSE
		  AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY kickoff ASC, id ASC
	`

	return r.queryGames(ctx, query, sport, season)
}

// ListUpcoming retrieves scheduled games with kickoff inside [from, to)
func (r *PostgresGameRepository) ListUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND status = 'scheduled' AND kickoff >= $2 AND kickoff < $3
		ORDER BY kickoff ASC, id ASC
	`

	return r.queryGames(ctx, query, sport, from, to)
}

// MarkProcessed flags games as folded into the ratings
func (r *PostgresGameRepository) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE games SET processed = TRUE, updated_at = NOW() WHERE id = ANY($1)`

	_, err := r.db.GetPool().Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to mark games processed: %w", err)
	}

	return nil
}

// ResetProcessed clears the processed flag for a whole sport ahead of a
// season replay
func (r *PostgresGameRepository) ResetProcessed(ctx context.Context, sport models.Sport) error {
	query := `UPDATE games SET processed = FALSE, updated_at = NOW() WHERE sport = $1`

	_, err := r.db.GetPool().Exec(ctx, query, sport)
	if err != nil {
		return fmt.Errorf("failed to reset processed flags: %w", err)
	}

	return nil
}

func (r *PostgresGameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.Sport, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
			&game.Kickoff, &game.Venue, &game.Indoor, &game.Status, &game.HomeScore, &game.AwayScore,
			&game.Processed, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
