package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresSyncStateRepository implements SyncStateRepository for PostgreSQL
type PostgresSyncStateRepository struct {
	db *database.DB
}

// NewPostgresSyncStateRepository creates a new sync state repository
func NewPostgresSyncStateRepository(db *database.DB) SyncStateRepository {
	return &PostgresSyncStateRepository{db: db}
}

// Get retrieves the resume point for a sport
func (r *PostgresSyncStateRepository) Get(ctx context.Context, sport models.Sport) (*models.SyncState, error) {
	query := `
		SELECT sport, season, period, processed_ids, tallies, last_run_id, last_run_at
		FROM sync_state WHERE sport = $1
	`

	state := &models.SyncState{}
	var processedIDs, tallies []byte
	err := r.db.GetPool().QueryRow(ctx, query, sport).Scan(
		&state.Sport, &state.Season, &state.Period,
		&processedIDs, &tallies, &state.LastRunID, &state.LastRunAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(processedIDs, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode processed ids: %w", err)
	}
	state.ProcessedID = make(map[string]bool, len(ids))
	for _, id := range ids {
		state.ProcessedID[id] = true
	}

	if err := json.Unmarshal(tallies, &state.Tallies); err != nil {
		return nil, fmt.Errorf("failed to decode tallies: %w", err)
	}

	return state, nil
}

// Save writes the resume point for a sport
func (r *PostgresSyncStateRepository) Save(ctx context.Context, state *models.SyncState) error {
	processedIDs, err := json.Marshal(state.ProcessedIDs())
	if err != nil {
		return fmt.Errorf("failed to encode processed ids: %w", err)
	}

	tallies, err := json.Marshal(state.Tallies)
	if err != nil {
		return fmt.Errorf("failed to encode tallies: %w", err)
	}

	query := `
		INSERT INTO sync_state (sport, season, period, processed_ids, tallies, last_run_id, last_run_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sport) DO UPDATE SET
			season = EXCLUDED.season,
			period = EXCLUDED.period,
			processed_ids = EXCLUDED.processed_ids,
			tallies = EXCLUDED.tallies,
			last_run_id = EXCLUDED.last_run_id,
			last_run_at = EXCLUDED.last_run_at
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		state.Sport, state.Season, state.Period,
		processedIDs, tallies, state.LastRunID, state.LastRunAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}

	return nil
}
