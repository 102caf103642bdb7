package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

const errScanTeam = "failed to scan team: %w"

const teamUpsertQuery = `
	INSERT INTO teams (id, sport, name, abbreviation, rating, offense_ppg, defense_ppg,
	                   games_played, wins, losses, conference_tier, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	ON CONFLICT (id) DO UPDATE SET
		rating = EXCLUDED.rating,
		offense_ppg = EXCLUDED.offense_ppg,
		defense_ppg = EXCLUDED.defense_ppg,
		games_played = EXCLUDED.games_played,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		conference_tier = EXCLUDED.conference_tier,
		updated_at = NOW()
`

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts or updates one team
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	_, err := r.db.GetPool().Exec(ctx, teamUpsertQuery,
		team.ID, team.Sport, team.Name, team.Abbreviation, team.Rating,
		team.OffensePPG, team.DefensePPG, team.GamesPlayed, team.Wins, team.Losses,
		team.ConferenceTier,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// UpsertBatch upserts many teams in one round trip
func (r *PostgresTeamRepository) UpsertBatch(ctx context.Context, teams []*models.Team) error {
	if len(teams) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, team := range teams {
		batch.Queue(teamUpsertQuery,
			team.ID, team.Sport, team.Name, team.Abbreviation, team.Rating,
			team.OffensePPG, team.DefensePPG, team.GamesPlayed, team.Wins, team.Losses,
			team.ConferenceTier,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range teams {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch upsert teams: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `
		SELECT id, sport, name, abbreviation, rating, offense_ppg, defense_ppg,
		       games_played, wins, losses, conference_tier, updated_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Sport, &team.Name, &team.Abbreviation, &team.Rating,
		&team.OffensePPG, &team.DefensePPG, &team.GamesPlayed, &team.Wins, &team.Losses,
		&team.ConferenceTier, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByName retrieves a team by sport and canonical name
func (r *PostgresTeamRepository) GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error) {
	query := `
		SELECT id, sport, name, abbreviation, rating, offense_ppg, defense_ppg,
		       games_played, wins, losses, conference_tier, updated_at
		FROM teams WHERE sport = $1 AND name = $2
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, sport, name).Scan(
		&team.ID, &team.Sport, &team.Name, &team.Abbreviation, &team.Rating,
		&team.OffensePPG, &team.DefensePPG, &team.GamesPlayed, &team.Wins, &team.Losses,
		&team.ConferenceTier, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}

	return team, nil
}

// ListBySport retrieves every team in a sport ordered by rating
func (r *PostgresTeamRepository) ListBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	query := `
		SELECT id, sport, name, abbreviation, rating, offense_ppg, defense_ppg,
		       games_played, wins, losses, conference_tier, updated_at
		FROM teams
		WHERE sport = $1
		ORDER BY rating DESC, name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.Sport, &team.Name, &team.Abbreviation, &team.Rating,
			&team.OffensePPG, &team.DefensePPG, &team.GamesPlayed, &team.Wins, &team.Losses,
			&team.ConferenceTier, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
