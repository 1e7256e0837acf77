package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/core/model"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testSnapshot() Snapshot {
	return Snapshot{
		SessionID:  "active",
		Vehicle:    model.Vehicle{ID: "TAXI-1", Status: model.StatusEnRouteToPickup, Controlled: true},
		ETASeconds: 120,
		Leg1Route: model.Route{
			{Lat: 40.7600, Lng: -73.9800},
			{Lat: 40.7589, Lng: -73.9851},
		},
		Ride: model.RideRequest{ID: "ride-1", Status: model.RideAssigned, VehicleID: "TAXI-1"},
	}
}

func TestKeeperSaveStampsTimestamp(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	keeper := NewKeeper(NewMemoryStore(), clock, time.Minute)
	ctx := context.Background()

	require.NoError(t, keeper.Save(ctx, testSnapshot()))

	got, err := keeper.Load(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), got.TimestampMillis)
	assert.Equal(t, "TAXI-1", got.Vehicle.ID)
}

func TestKeeperLoadWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	keeper := NewKeeper(NewMemoryStore(), clock, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, keeper.Save(ctx, testSnapshot()))
	clock.advance(4 * time.Minute)

	_, err := keeper.Load(ctx, "active")
	assert.NoError(t, err)
}

func TestKeeperLoadStaleClearsEntry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStore()
	keeper := NewKeeper(store, clock, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, keeper.Save(ctx, testSnapshot()))
	clock.advance(5*time.Minute + time.Second)

	_, err := keeper.Load(ctx, "active")
	assert.ErrorIs(t, err, ErrStale)

	// The stale entry is dropped, not returned again.
	_, err = store.Load(ctx, "active")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeeperLoadMissing(t *testing.T) {
	keeper := NewKeeper(NewMemoryStore(), nil, 0)
	_, err := keeper.Load(context.Background(), "active")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeeperClear(t *testing.T) {
	keeper := NewKeeper(NewMemoryStore(), nil, 0)
	ctx := context.Background()

	require.NoError(t, keeper.Save(ctx, testSnapshot()))
	require.NoError(t, keeper.Clear(ctx, "active"))

	_, err := keeper.Load(ctx, "active")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeeperDefaults(t *testing.T) {
	keeper := NewKeeper(NewMemoryStore(), nil, 0)
	assert.Equal(t, DefaultTTL, keeper.ttl)
	assert.NotNil(t, keeper.clock)
}
