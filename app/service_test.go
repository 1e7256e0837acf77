package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/config"
	"github.com/autoride/autoride/core/model"
)

func pickupPoint() model.GeoPoint { return model.GeoPoint{Lat: 40.7589, Lng: -73.9851} }

func dropoffPoint() model.GeoPoint { return model.GeoPoint{Lat: 40.7614, Lng: -73.9776} }

func TestNewStandaloneService(t *testing.T) {
	svc, err := New(config.Default())
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	// The standalone default seeds a simulated fleet.
	assert.Greater(t, svc.Registry.Size(), 0)
	assert.Equal(t, 1.0, svc.Surge.Multiplier())
}

func TestServiceDispatchesWithSimulatedFleet(t *testing.T) {
	cfg := config.Default()
	// Fast journey so the test finishes quickly.
	cfg.Dispatch.TickIntervalMS = 2
	cfg.Dispatch.ProgressStep = 0.5
	cfg.Dispatch.PickupDwellMS = 5
	cfg.Dispatch.CompleteDelayMS = 5

	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx := context.Background()
	ride, err := svc.Manager.Dispatch(ctx, "user-1",
		pickupPoint(), dropoffPoint())
	require.NoError(t, err)
	assert.NotEmpty(t, ride.VehicleID)

	s := svc.Manager.ActiveSession()
	require.NotNil(t, s)
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("journey did not complete")
	}
}
