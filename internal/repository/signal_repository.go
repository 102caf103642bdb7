package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresSignalRepository implements SignalRepository for PostgreSQL
type PostgresSignalRepository struct {
	db *database.DB
}

// NewPostgresSignalRepository creates a new signal repository
func NewPostgresSignalRepository(db *database.DB) SignalRepository {
	return &PostgresSignalRepository{db: db}
}

// GetSignal retrieves a persisted signal payload by key
func (r *PostgresSignalRepository) GetSignal(ctx context.Context, key string) (*models.CachedSignal, error) {
	query := `
		SELECT key, sport, kind, period, payload, fetched_at, permanent
		FROM cached_signals WHERE key = $1
	`

	signal := &models.CachedSignal{}
	err := r.db.GetPool().QueryRow(ctx, query, key).Scan(
		&signal.Key, &signal.Sport, &signal.Kind, &signal.Period,
		&signal.Payload, &signal.FetchedAt, &signal.Permanent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal: %w", err)
	}

	return signal, nil
}

// PutSignal writes a signal payload. A permanent entry is never downgraded
// back to a rolling one.
func (r *PostgresSignalRepository) PutSignal(ctx context.Context, signal *models.CachedSignal) error {
	query := `
		INSERT INTO cached_signals (key, sport, kind, period, payload, fetched_at, permanent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			permanent = cached_signals.permanent OR EXCLUDED.permanent
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		signal.Key, signal.Sport, signal.Kind, signal.Period,
		signal.Payload, signal.FetchedAt, signal.Permanent,
	)
	if err != nil {
		return fmt.Errorf("failed to put signal: %w", err)
	}

	return nil
}
