package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autoride/autoride/core/model"
)

var (
	timesSquare = model.GeoPoint{Lat: 40.7589, Lng: -73.9851}
	grandArmy   = model.GeoPoint{Lat: 40.7614, Lng: -73.9776}
)

func TestDistanceZero(t *testing.T) {
	assert.Zero(t, Distance(timesSquare, timesSquare))
}

func TestDistanceSymmetric(t *testing.T) {
	assert.InDelta(t, Distance(timesSquare, grandArmy), Distance(grandArmy, timesSquare), 1e-12)
}

func TestDistanceKnownValue(t *testing.T) {
	// Midtown block pair, roughly 690 m apart.
	d := Distance(timesSquare, grandArmy)
	assert.InDelta(t, 0.69, d, 0.05)
}

func TestRouteLength(t *testing.T) {
	assert.Zero(t, RouteLength(nil))
	assert.Zero(t, RouteLength(model.Route{timesSquare}))

	direct := Distance(timesSquare, grandArmy)
	mid := Interpolate(timesSquare, grandArmy, 0.5)
	viaMid := RouteLength(model.Route{timesSquare, mid, grandArmy})
	assert.InDelta(t, direct, viaMid, 1e-6)
}

func TestPointAtEndpoints(t *testing.T) {
	r := model.Route{timesSquare, grandArmy}
	assert.Equal(t, timesSquare, PointAt(r, 0))
	assert.Equal(t, grandArmy, PointAt(r, 1))
}

func TestPointAtClampsProgress(t *testing.T) {
	r := model.Route{timesSquare, grandArmy}
	assert.Equal(t, timesSquare, PointAt(r, -0.5))
	assert.Equal(t, grandArmy, PointAt(r, 1.5))
}

func TestPointAtSnapsToSampledPoint(t *testing.T) {
	r := model.Route{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
	}
	assert.InDelta(t, 0.0, PointAt(r, 0.25).Lng, 1e-12)
	assert.InDelta(t, 1.0, PointAt(r, 0.5).Lng, 1e-12)
	assert.InDelta(t, 1.0, PointAt(r, 0.75).Lng, 1e-12)
}

func TestPointAtSinglePoint(t *testing.T) {
	r := model.Route{timesSquare}
	assert.Equal(t, timesSquare, PointAt(r, 0.5))
}

func TestInterpolate(t *testing.T) {
	a := model.GeoPoint{Lat: 0, Lng: 0}
	b := model.GeoPoint{Lat: 2, Lng: 4}
	p := Interpolate(a, b, 0.5)
	assert.InDelta(t, 1, p.Lat, 1e-12)
	assert.InDelta(t, 2, p.Lng, 1e-12)
}
