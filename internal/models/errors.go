package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrInvalidSport   = errors.New("invalid sport")
	ErrLineLocked     = errors.New("line record is locked")
	ErrGameNotFinal   = errors.New("game is not final")
	ErrMissingScores  = errors.New("final game is missing scores")
	ErrUnknownTeam    = errors.New("unknown team reference")
	ErrNoMarketLine   = errors.New("no market line available")
	ErrSeasonMismatch = errors.New("sync state belongs to a different season")
	ErrOrderingBroken = errors.New("games are not in chronological order")
)
