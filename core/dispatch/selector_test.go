package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/core/routing"
	"github.com/autoride/autoride/infra/logger"
)

var pickupPoint = model.GeoPoint{Lat: 40.7589, Lng: -73.9851}

func newTestSelector() *Selector {
	provider := routing.NewProvider(nil, 0, logger.NopLogger{})
	return NewSelector(provider, logger.NopLogger{})
}

func TestSelectNoCandidates(t *testing.T) {
	sel := newTestSelector()
	_, err := sel.Select(context.Background(), pickupPoint, nil)
	assert.ErrorIs(t, err, ErrNoVehicleAvailable)
}

func TestSelectPrefersNearestVehicle(t *testing.T) {
	sel := newTestSelector()
	candidates := []model.Vehicle{
		{ID: "TAXI-1", Position: model.GeoPoint{Lat: 40.70, Lng: -74.05}, Status: model.StatusIdle},
		{ID: "TAXI-2", Position: model.GeoPoint{Lat: 40.7590, Lng: -73.9850}, Status: model.StatusIdle},
	}

	got, err := sel.Select(context.Background(), pickupPoint, candidates)
	require.NoError(t, err)
	assert.Equal(t, "TAXI-2", got.Vehicle.ID)
	assert.GreaterOrEqual(t, len(got.Leg1), 2)
}

func TestSelectPrefersIdleOverEnroute(t *testing.T) {
	sel := newTestSelector()
	pos := model.GeoPoint{Lat: 40.7600, Lng: -73.9800}
	candidates := []model.Vehicle{
		{ID: "TAXI-1", Position: pos, Status: model.StatusEnroute},
		{ID: "TAXI-2", Position: pos, Status: model.StatusIdle},
	}

	got, err := sel.Select(context.Background(), pickupPoint, candidates)
	require.NoError(t, err)
	assert.Equal(t, "TAXI-2", got.Vehicle.ID)
}

func TestSelectSpeedBreaksNear(t *testing.T) {
	sel := newTestSelector()
	pos := model.GeoPoint{Lat: 40.7600, Lng: -73.9800}
	candidates := []model.Vehicle{
		{ID: "TAXI-1", Position: pos, Status: model.StatusIdle, SpeedKph: 10},
		{ID: "TAXI-2", Position: pos, Status: model.StatusIdle, SpeedKph: 45},
	}

	got, err := sel.Select(context.Background(), pickupPoint, candidates)
	require.NoError(t, err)
	assert.Equal(t, "TAXI-2", got.Vehicle.ID)
}

func TestSelectTieGoesToFirstCandidate(t *testing.T) {
	sel := newTestSelector()
	pos := model.GeoPoint{Lat: 40.7600, Lng: -73.9800}
	candidates := []model.Vehicle{
		{ID: "TAXI-1", Position: pos, Status: model.StatusIdle, SpeedKph: 30},
		{ID: "TAXI-2", Position: pos, Status: model.StatusIdle, SpeedKph: 30},
	}

	got, err := sel.Select(context.Background(), pickupPoint, candidates)
	require.NoError(t, err)
	assert.Equal(t, "TAXI-1", got.Vehicle.ID)
}

func TestSelectETAIsPositive(t *testing.T) {
	sel := newTestSelector()
	candidates := []model.Vehicle{
		{ID: "TAXI-1", Position: model.GeoPoint{Lat: 40.7600, Lng: -73.9800}, Status: model.StatusIdle},
	}

	got, err := sel.Select(context.Background(), pickupPoint, candidates)
	require.NoError(t, err)
	assert.Greater(t, got.ETASeconds, 0)
}

func TestScoreComponents(t *testing.T) {
	// A vehicle sitting on the pickup point with a zero-length leg gets
	// the full proximity and efficiency scores.
	v := model.Vehicle{Position: pickupPoint, Status: model.StatusIdle, SpeedKph: 50}
	s := newTestSelector()
	score := s.score(v, pickupPoint, model.Route{pickupPoint, pickupPoint})
	assert.InDelta(t, 10+1+2+5, score, 0.01)

	// Far away everything bottoms out except the status component.
	far := model.Vehicle{Position: model.GeoPoint{Lat: 41.5, Lng: -73.0}, Status: model.StatusEnroute}
	route, _ := routing.NewProvider(nil, 0, logger.NopLogger{}).Route(context.Background(), far.Position, pickupPoint)
	score = s.score(far, pickupPoint, route)
	assert.InDelta(t, 1, score, 0.01)
}
