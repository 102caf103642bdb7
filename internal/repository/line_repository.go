package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

const errScanLine = "failed to scan line record: %w"

const lineColumns = `game_id, sport, status, opening_spread, opening_total,
	last_spread, last_total, closing_spread, closing_total,
	home_moneyline, away_moneyline, captured_at, locked_at, updated_at`

// PostgresLineRepository implements LineRepository for PostgreSQL
type PostgresLineRepository struct {
	db *database.DB
}

// NewPostgresLineRepository creates a new line record repository
func NewPostgresLineRepository(db *database.DB) LineRepository {
	return &PostgresLineRepository{db: db}
}

// Get retrieves the line record for a game
func (r *PostgresLineRepository) Get(ctx context.Context, gameID string) (*models.LineRecord, error) {
	query := `SELECT ` + lineColumns + ` FROM line_records WHERE game_id = $1`

	record := &models.LineRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(
		&record.GameID, &record.Sport, &record.Status,
		&record.OpeningSpread, &record.OpeningTotal,
		&record.LastSpread, &record.LastTotal,
		&record.ClosingSpread, &record.ClosingTotal,
		&record.HomeMoneyline, &record.AwayMoneyline,
		&record.CapturedAt, &record.LockedAt, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line record: %w", err)
	}

	return record, nil
}

// Upsert writes the full line record state
func (r *PostgresLineRepository) Upsert(ctx context.Context, record *models.LineRecord) error {
	query := `
		INSERT INTO line_records (game_id, sport, status, opening_spread, opening_total,
		                          last_spread, last_total, closing_spread, closing_total,
		                          home_moneyline, away_moneyline, captured_at, locked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			status = EXCLUDED.status,
			opening_spread = EXCLUDED.opening_spread,
			opening_total = EXCLUDED.opening_total,
			last_spread = EXCLUDED.last_spread,
			last_total = EXCLUDED.last_total,
			closing_spread = EXCLUDED.closing_spread,
			closing_total = EXCLUDED.closing_total,
			home_moneyline = EXCLUDED.home_moneyline,
			away_moneyline = EXCLUDED.away_moneyline,
			captured_at = EXCLUDED.captured_at,
			locked_at = EXCLUDED.locked_at,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.GameID, record.Sport, record.Status,
		record.OpeningSpread, record.OpeningTotal,
		record.LastSpread, record.LastTotal,
		record.ClosingSpread, record.ClosingTotal,
		record.HomeMoneyline, record.AwayMoneyline,
		record.CapturedAt, record.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert line record: %w", err)
	}

	return nil
}

// ListByGameIDs retrieves line records keyed by game ID. Games with no record
// yet are simply absent from the map.
func (r *PostgresLineRepository) ListByGameIDs(ctx context.Context, gameIDs []string) (map[string]*models.LineRecord, error) {
	records := make(map[string]*models.LineRecord, len(gameIDs))
	if len(gameIDs) == 0 {
		return records, nil
	}

	query := `SELECT ` + lineColumns + ` FROM line_records WHERE game_id = ANY($1)`

	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query line records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record := &models.LineRecord{}
		err := rows.Scan(
			&record.GameID, &record.Sport, &record.Status,
			&record.OpeningSpread, &record.OpeningTotal,
			&record.LastSpread, &record.LastTotal,
			&record.ClosingSpread, &record.ClosingTotal,
			&record.HomeMoneyline, &record.AwayMoneyline,
			&record.CapturedAt, &record.LockedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanLine, err)
		}
		records[record.GameID] = record
	}

	return records, rows.Err()
}
