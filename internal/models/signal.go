package models

import (
	"encoding/json"
	"time"
)

// Cached signal kinds
const (
	SignalKindWeather = "weather"
	SignalKindInjury  = "injury"
)

// CachedSignal stores one fetched side-signal payload with its freshness metadata
type CachedSignal struct {
	Key       string          `db:"key" json:"key" validate:"required"`
	Sport     Sport           `db:"sport" json:"sport" validate:"required"`
	Kind      string          `db:"kind" json:"kind" validate:"oneof=weather injury"`
	Period    string          `db:"period" json:"period"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	FetchedAt time.Time       `db:"fetched_at" json:"fetched_at"`
	Permanent bool            `db:"permanent" json:"permanent"`
}

// IsStale reports whether the entry has aged past ttl. Permanent entries
// never go stale.
func (s *CachedSignal) IsStale(now time.Time, ttl time.Duration) bool {
	if s.Permanent {
		return false
	}
	return now.Sub(s.FetchedAt) >= ttl
}

// Decode unmarshals the payload into out
func (s *CachedSignal) Decode(out interface{}) error {
	if s.Payload == nil {
		return nil
	}
	return json.Unmarshal(s.Payload, out)
}
