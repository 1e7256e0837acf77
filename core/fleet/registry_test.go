package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/infra/logger"
)

func newTestRegistry(vehicles ...model.Vehicle) *Registry {
	r := NewRegistry(logger.NopLogger{})
	r.Seed(vehicles)
	return r
}

func vehicle(id string, seq uint64, status model.VehicleStatus) model.Vehicle {
	return model.Vehicle{
		ID:       id,
		Position: model.GeoPoint{Lat: 40.7589, Lng: -73.9851},
		Status:   status,
		Seq:      seq,
	}
}

func TestApplyNewVehicle(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Apply(vehicle("TAXI-1", 1, model.StatusIdle)))
	assert.Equal(t, 1, r.Size())
}

func TestApplyRejectsStaleSequence(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 5, model.StatusIdle))

	err := r.Apply(vehicle("TAXI-1", 5, model.StatusIdle))
	assert.ErrorIs(t, err, ErrStaleSequence)

	err = r.Apply(vehicle("TAXI-1", 4, model.StatusIdle))
	assert.ErrorIs(t, err, ErrStaleSequence)

	assert.NoError(t, r.Apply(vehicle("TAXI-1", 6, model.StatusIdle)))
}

func TestApplyRejectsControlledVehicle(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 1, model.StatusIdle))
	_, err := r.Claim("TAXI-1")
	require.NoError(t, err)

	err = r.Apply(vehicle("TAXI-1", 2, model.StatusIdle))
	assert.ErrorIs(t, err, ErrVehicleControlled)
}

func TestListIsSortedByID(t *testing.T) {
	r := newTestRegistry(
		vehicle("TAXI-3", 1, model.StatusIdle),
		vehicle("TAXI-1", 1, model.StatusIdle),
		vehicle("TAXI-2", 1, model.StatusIdle),
	)
	ids := []string{}
	for _, v := range r.List() {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"TAXI-1", "TAXI-2", "TAXI-3"}, ids)
}

func TestCandidatesFiltersByStatus(t *testing.T) {
	r := newTestRegistry(
		vehicle("TAXI-1", 1, model.StatusIdle),
		vehicle("TAXI-2", 1, model.StatusEnroute),
		vehicle("TAXI-3", 1, model.StatusOffline),
	)
	_, err := r.Claim("TAXI-1")
	require.NoError(t, err)

	candidates := r.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, "TAXI-2", candidates[0].ID)
}

func TestClaimIsExclusive(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 1, model.StatusIdle))

	v, err := r.Claim("TAXI-1")
	require.NoError(t, err)
	assert.True(t, v.Controlled)
	assert.Equal(t, model.StatusEnRouteToPickup, v.Status)

	_, err = r.Claim("TAXI-1")
	assert.ErrorIs(t, err, ErrVehicleControlled)

	_, err = r.Claim("TAXI-9")
	assert.ErrorIs(t, err, ErrUnknownVehicle)
}

func TestReleaseKeepsPosition(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 1, model.StatusIdle))
	_, err := r.Claim("TAXI-1")
	require.NoError(t, err)

	dropoff := model.GeoPoint{Lat: 40.7614, Lng: -73.9776}
	_, err = r.SetControlled("TAXI-1", dropoff, model.StatusEnRouteToDestination)
	require.NoError(t, err)

	r.Release("TAXI-1")
	v, ok := r.Get("TAXI-1")
	require.True(t, ok)
	assert.False(t, v.Controlled)
	assert.Equal(t, model.StatusIdle, v.Status)
	assert.Equal(t, dropoff, v.Position)
}

func TestSetControlledRequiresClaim(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 1, model.StatusIdle))
	_, err := r.SetControlled("TAXI-1", model.GeoPoint{}, model.StatusEnRouteToPickup)
	assert.Error(t, err)
}

func TestSetControlledBumpsSequence(t *testing.T) {
	r := newTestRegistry(vehicle("TAXI-1", 7, model.StatusIdle))
	_, err := r.Claim("TAXI-1")
	require.NoError(t, err)

	v, err := r.SetControlled("TAXI-1", model.GeoPoint{Lat: 1, Lng: 1}, model.StatusEnRouteToPickup)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), v.Seq)

	// A stale external sample queued during control must still lose
	// after release.
	r.Release("TAXI-1")
	err = r.Apply(vehicle("TAXI-1", 8, model.StatusIdle))
	assert.ErrorIs(t, err, ErrStaleSequence)
}
