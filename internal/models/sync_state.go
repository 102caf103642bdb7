package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SyncState is the per-sport resume point: which games have been folded into
// the ratings, and the running backtest tallies for the season.
type SyncState struct {
	Sport       Sport           `db:"sport" json:"sport" validate:"required"`
	Season      int             `db:"season" json:"season" validate:"required"`
	Period      string          `db:"period" json:"period"`
	ProcessedID map[string]bool `db:"processed_ids" json:"processed_ids"`
	Tallies     TallySet        `db:"tallies" json:"tallies"`
	LastRunID   uuid.UUID       `db:"last_run_id" json:"last_run_id"`
	LastRunAt   time.Time       `db:"last_run_at" json:"last_run_at"`
}

// NewSyncState returns an empty state for a sport and season
func NewSyncState(sport Sport, season int) *SyncState {
	return &SyncState{
		Sport:       sport,
		Season:      season,
		ProcessedID: make(map[string]bool),
	}
}

// IsProcessed reports whether the game was already folded into the ratings
func (s *SyncState) IsProcessed(gameID string) bool {
	return s.ProcessedID[gameID]
}

// MarkProcessed records the game as folded in
func (s *SyncState) MarkProcessed(gameID string) {
	if s.ProcessedID == nil {
		s.ProcessedID = make(map[string]bool)
	}
	s.ProcessedID[gameID] = true
}

// Reset clears the processed set and tallies for a fresh season. Ratings are
// reseeded by the caller; line records are never cleared.
func (s *SyncState) Reset(season int) {
	s.Season = season
	s.ProcessedID = make(map[string]bool)
	s.Tallies = TallySet{}
}

// ProcessedIDs returns the processed set as a sorted slice for stable
// serialization
func (s *SyncState) ProcessedIDs() []string {
	ids := make([]string, 0, len(s.ProcessedID))
	for id := range s.ProcessedID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
