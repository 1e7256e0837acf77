package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autoride/autoride/core/geo"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/infra/logger"
)

var (
	origin      = model.GeoPoint{Lat: 40.7589, Lng: -73.9851}
	destination = model.GeoPoint{Lat: 40.7614, Lng: -73.9776}
)

type fakeDirections struct {
	route model.Route
	dur   time.Duration
	err   error
	calls int
}

func (f *fakeDirections) Directions(context.Context, model.GeoPoint, model.GeoPoint) (model.Route, time.Duration, error) {
	f.calls++
	return f.route, f.dur, f.err
}

func TestRouteNilClientFallsBack(t *testing.T) {
	p := NewProvider(nil, 0, logger.NopLogger{})
	route, eta := p.Route(context.Background(), origin, destination)

	assert.Equal(t, model.Route{origin, destination}, route)
	assert.Equal(t, FallbackETASeconds(origin, destination), eta)
	assert.Greater(t, eta, 0)
}

func TestRouteClientErrorFallsBack(t *testing.T) {
	client := &fakeDirections{err: errors.New("upstream down")}
	p := NewProvider(client, time.Second, logger.NopLogger{})

	route, eta := p.Route(context.Background(), origin, destination)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, model.Route{origin, destination}, route)
	assert.Greater(t, eta, 0)
}

func TestRouteDegenerateResponseFallsBack(t *testing.T) {
	client := &fakeDirections{route: model.Route{origin}}
	p := NewProvider(client, time.Second, logger.NopLogger{})

	route, _ := p.Route(context.Background(), origin, destination)
	assert.Equal(t, model.Route{origin, destination}, route)
}

func TestRouteSparsePolylineIsDensified(t *testing.T) {
	client := &fakeDirections{
		route: model.Route{origin, destination},
		dur:   90 * time.Second,
	}
	p := NewProvider(client, time.Second, logger.NopLogger{})

	route, eta := p.Route(context.Background(), origin, destination)
	assert.GreaterOrEqual(t, len(route), 4)
	assert.Equal(t, origin, route[0])
	assert.Equal(t, destination, route[len(route)-1])
	assert.Equal(t, 90, eta)

	// Densification is linear: path length is preserved.
	assert.InDelta(t, geo.Distance(origin, destination), geo.RouteLength(route), 1e-6)
}

func TestRouteDensePolylinePassedThrough(t *testing.T) {
	dense := make(model.Route, 0, 12)
	for i := 0; i <= 11; i++ {
		dense = append(dense, geo.Interpolate(origin, destination, float64(i)/11))
	}
	client := &fakeDirections{route: dense, dur: 2 * time.Minute}
	p := NewProvider(client, time.Second, logger.NopLogger{})

	route, eta := p.Route(context.Background(), origin, destination)
	assert.Equal(t, dense, route)
	assert.Equal(t, 120, eta)
}

func TestFallbackETAScalesWithDistance(t *testing.T) {
	near := FallbackETASeconds(origin, destination)
	far := FallbackETASeconds(origin, model.GeoPoint{Lat: 40.85, Lng: -73.90})
	assert.Greater(t, far, near)
}
