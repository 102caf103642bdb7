package repository

import (
	"fmt"

	"github.com/yourusername/line-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team      TeamRepository
	Game      GameRepository
	Line      LineRepository
	Signal    SignalRepository
	Backtest  BacktestRepository
	SyncState SyncStateRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:      NewPostgresTeamRepository(db),
		Game:      NewPostgresGameRepository(db),
		Line:      NewPostgresLineRepository(db),
		Signal:    NewPostgresSignalRepository(db),
		Backtest:  NewPostgresBacktestRepository(db),
		SyncState: NewPostgresSyncStateRepository(db),
	}, nil
}
