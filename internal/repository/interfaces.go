package repository

import (
	"context"
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	UpsertBatch(ctx context.Context, teams []*models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error)
	ListBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	UpsertBatch(ctx context.Context, games []*models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	ListFinalUnprocessed(ctx context.Context, sport models.Sport, season int) ([]*models.Game, error)
	ListUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Game, error)
	MarkProcessed(ctx context.Context, ids []string) error
	ResetProcessed(ctx context.Context, sport models.Sport) error
}

// LineRepository defines the interface for line record data access
type LineRepository interface {
	Get(ctx context.Context, gameID string) (*models.LineRecord, error)
	Upsert(ctx context.Context, record *models.LineRecord) error
	ListByGameIDs(ctx context.Context, gameIDs []string) (map[string]*models.LineRecord, error)
}

// SignalRepository persists cached side-signal payloads
type SignalRepository interface {
	GetSignal(ctx context.Context, key string) (*models.CachedSignal, error)
	PutSignal(ctx context.Context, signal *models.CachedSignal) error
}

// BacktestRepository defines graded-result persistence
type BacktestRepository interface {
	Upsert(ctx context.Context, result *models.BacktestResult) error
	UpsertBatch(ctx context.Context, results []*models.BacktestResult) error
	GetByGameID(ctx context.Context, gameID string) (*models.BacktestResult, error)
	ListBySeason(ctx context.Context, sport models.Sport, season int) ([]*models.BacktestResult, error)
}

// SyncStateRepository defines the per-sport resume point persistence
type SyncStateRepository interface {
	Get(ctx context.Context, sport models.Sport) (*models.SyncState, error)
	Save(ctx context.Context, state *models.SyncState) error
}
