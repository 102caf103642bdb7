// Package cache provides two-tier caching for fetched side signals.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
)

// Key identifies one cached signal payload
type Key struct {
	Sport  models.Sport
	Kind   string
	Scope  string
	Period string
}

// String returns string representation of cache key
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.Sport, k.Kind, k.Scope, k.Period)
}

// Result carries a resolved payload with its provenance
type Result struct {
	Payload   json.RawMessage
	FromCache bool
	Stale     bool
}

// FetchFunc fetches a fresh payload from an upstream provider
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// SignalStore persists signal payloads across process restarts
type SignalStore interface {
	GetSignal(ctx context.Context, key string) (*models.CachedSignal, error)
	PutSignal(ctx context.Context, signal *models.CachedSignal) error
}

// Manager resolves signals through a memory tier backed by a persistent store.
// Lookups try memory, then the store, then the upstream fetch; a failed fetch
// falls back to the last persisted payload even when it has gone stale.
type Manager struct {
	mem   *gocache.Cache
	store SignalStore
	now   func() time.Time
}

// NewManager creates a signal cache manager. The store may be nil, in which
// case only the memory tier is used.
func NewManager(ttl time.Duration, store SignalStore) *Manager {
	return NewManagerWithCleanup(ttl, ttl*2, store)
}

// NewManagerWithCleanup creates a signal cache manager that sweeps expired
// memory entries on the given interval.
func NewManagerWithCleanup(ttl, cleanupInterval time.Duration, store SignalStore) *Manager {
	return &Manager{
		mem:   gocache.New(ttl, cleanupInterval),
		store: store,
		now:   time.Now,
	}
}

// GetOrFetch resolves the payload for key, fetching from upstream only when
// no fresh copy exists in either tier.
func (m *Manager) GetOrFetch(ctx context.Context, key Key, ttl time.Duration, fetch FetchFunc) (Result, error) {
	keyStr := key.String()

	if cached, found := m.mem.Get(keyStr); found {
		if signal, ok := cached.(*models.CachedSignal); ok && !signal.IsStale(m.now(), ttl) {
			metrics.RecordSignalCacheHit(key.Kind)
			return Result{Payload: signal.Payload, FromCache: true}, nil
		}
	}

	var stored *models.CachedSignal
	if m.store != nil {
		signal, err := m.store.GetSignal(ctx, keyStr)
		if err == nil && signal != nil {
			stored = signal
			if !signal.IsStale(m.now(), ttl) {
				m.setMem(keyStr, signal, ttl)
				metrics.RecordSignalCacheHit(key.Kind)
				return Result{Payload: signal.Payload, FromCache: true}, nil
			}
		}
	}

	metrics.RecordSignalCacheMiss(key.Kind)

	payload, err := fetch(ctx)
	if err != nil {
		// Degraded mode: serve the last persisted payload rather than
		// dropping the signal entirely.
		if stored != nil {
			metrics.RecordSignalCacheStaleServed(key.Kind)
			return Result{Payload: stored.Payload, FromCache: true, Stale: true}, nil
		}
		return Result{}, fmt.Errorf("fetching signal %s: %w", keyStr, err)
	}

	signal := &models.CachedSignal{
		Key:       keyStr,
		Sport:     key.Sport,
		Kind:      key.Kind,
		Period:    key.Period,
		Payload:   payload,
		FetchedAt: m.now(),
	}
	m.setMem(keyStr, signal, ttl)
	if m.store != nil {
		if err := m.store.PutSignal(ctx, signal); err != nil {
			return Result{}, fmt.Errorf("persisting signal %s: %w", keyStr, err)
		}
	}

	return Result{Payload: payload}, nil
}

// Peek returns whatever payload both tiers hold for key without fetching and
// without a staleness veto. Replay paths use it: for a game already played,
// the snapshot captured before kickoff is the right answer at any age.
func (m *Manager) Peek(ctx context.Context, key Key) (json.RawMessage, bool) {
	keyStr := key.String()

	if cached, found := m.mem.Get(keyStr); found {
		if signal, ok := cached.(*models.CachedSignal); ok {
			return signal.Payload, true
		}
	}
	if m.store != nil {
		if signal, err := m.store.GetSignal(ctx, keyStr); err == nil && signal != nil {
			return signal.Payload, true
		}
	}
	return nil, false
}

// PutPermanent stores a payload that never expires. Closed periods keep their
// final signal snapshot this way so regrades never refetch them.
func (m *Manager) PutPermanent(ctx context.Context, key Key, payload json.RawMessage) error {
	keyStr := key.String()
	signal := &models.CachedSignal{
		Key:       keyStr,
		Sport:     key.Sport,
		Kind:      key.Kind,
		Period:    key.Period,
		Payload:   payload,
		FetchedAt: m.now(),
		Permanent: true,
	}

	m.mem.Set(keyStr, signal, gocache.NoExpiration)
	if m.store != nil {
		if err := m.store.PutSignal(ctx, signal); err != nil {
			return fmt.Errorf("persisting permanent signal %s: %w", keyStr, err)
		}
	}
	return nil
}

// Clear flushes the memory tier
func (m *Manager) Clear() {
	m.mem.Flush()
}

// ItemCount returns the number of items in the memory tier
func (m *Manager) ItemCount() int {
	return m.mem.ItemCount()
}

func (m *Manager) setMem(keyStr string, signal *models.CachedSignal, ttl time.Duration) {
	if signal.Permanent {
		m.mem.Set(keyStr, signal, gocache.NoExpiration)
		return
	}
	m.mem.Set(keyStr, signal, ttl)
}
