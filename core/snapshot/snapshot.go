// Package snapshot persists the active dispatch session so a restarted
// process can resume its pre-restart selection. Snapshots carry a
// timestamp; entries older than the staleness window are discarded, not
// resumed.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/autoride/autoride/core/model"
)

// DefaultTTL is the staleness window beyond which a persisted session is
// discarded at recovery time.
const DefaultTTL = 5 * time.Minute

var (
	// ErrNotFound means no snapshot exists for the session id.
	ErrNotFound = errors.New("snapshot: not found")
	// ErrStale means the snapshot exceeded the staleness window and was
	// discarded.
	ErrStale = errors.New("snapshot: stale")
)

// Snapshot is the persisted form of an active session: the selection plus
// enough of the ride to restart the journey. Progress is not persisted;
// recovery restarts ticking from zero, a known approximation.
type Snapshot struct {
	SessionID       string            `json:"sessionId"`
	Vehicle         model.Vehicle     `json:"vehicle"`
	ETASeconds      int               `json:"etaSeconds"`
	Leg1Route       model.Route       `json:"leg1Route"`
	Ride            model.RideRequest `json:"ride"`
	TimestampMillis int64             `json:"timestampMillis"`
}

// Store persists session snapshots keyed by session id.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

// Clock abstracts time so the staleness window is testable without real
// delays.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Keeper wraps a Store with staleness enforcement against an injected
// clock.
type Keeper struct {
	store Store
	clock Clock
	ttl   time.Duration
}

// NewKeeper creates a Keeper. A zero ttl uses DefaultTTL and a nil clock
// uses the system clock.
func NewKeeper(store Store, clock Clock, ttl time.Duration) *Keeper {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Keeper{store: store, clock: clock, ttl: ttl}
}

// Save stamps and persists the snapshot.
func (k *Keeper) Save(ctx context.Context, s Snapshot) error {
	s.TimestampMillis = k.clock.Now().UnixMilli()
	return k.store.Save(ctx, s)
}

// Load returns the snapshot if it is within the staleness window. Stale
// entries are cleared and reported as ErrStale.
func (k *Keeper) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	s, err := k.store.Load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	age := k.clock.Now().Sub(time.UnixMilli(s.TimestampMillis))
	if age > k.ttl {
		_ = k.store.Clear(ctx, sessionID)
		return Snapshot{}, ErrStale
	}
	return s, nil
}

// Clear removes the snapshot for the session id.
func (k *Keeper) Clear(ctx context.Context, sessionID string) error {
	return k.store.Clear(ctx, sessionID)
}

// MemoryStore is an in-process Store used by tests and single-node runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	m.data[s.SessionID] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[sessionID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.data, sessionID)
	m.mu.Unlock()
	return nil
}
