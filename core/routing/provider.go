// Package routing acquires routable polylines between two points. An
// external road-aware directions collaborator is tried first; on any
// failure the provider degrades to a two-point straight line so callers
// always receive a usable route.
package routing

import (
	"context"
	"math"
	"time"

	"github.com/autoride/autoride/core/geo"
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/model"
)

// fallbackSpeedKph is the assumed average urban speed used to estimate
// travel time when the external collaborator is unavailable.
const fallbackSpeedKph = 30.0

// minRoutePoints is the minimum polyline resolution the journey
// simulator needs for smooth stepping. Sparser external routes are
// densified by linear interpolation.
const minRoutePoints = 10

// Directions is the external road-routing collaborator. It may fail with
// network, auth or malformed-response errors; the provider recovers from
// all of them.
type Directions interface {
	Directions(ctx context.Context, origin, destination model.GeoPoint) (model.Route, time.Duration, error)
}

// Provider resolves routes with graceful degradation. A nil Directions
// client means the collaborator is unconfigured and every request uses
// the straight-line fallback.
type Provider struct {
	client  Directions
	timeout time.Duration
	log     logger.Logger
}

// NewProvider creates a Provider. If timeout is zero a default of five
// seconds bounds each external call.
func NewProvider(client Directions, timeout time.Duration, log logger.Logger) *Provider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Provider{client: client, timeout: timeout, log: log}
}

// Route returns a polyline from origin to destination and the estimated
// travel time in seconds. It never fails: any collaborator error is
// logged and recovered locally with a straight-line estimate.
func (p *Provider) Route(ctx context.Context, origin, destination model.GeoPoint) (model.Route, int) {
	if p.client == nil {
		return p.fallback(origin, destination)
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	route, dur, err := p.client.Directions(cctx, origin, destination)
	if err != nil || len(route) < 2 {
		if err != nil {
			p.log.Warnf("directions unavailable, using straight-line fallback: %v", err)
		} else {
			p.log.Warnf("directions returned %d points, using straight-line fallback", len(route))
		}
		return p.fallback(origin, destination)
	}

	if len(route) < minRoutePoints {
		route = densify(route)
	}
	return route, int(math.Round(dur.Seconds()))
}

// fallback builds a deterministic two-point route with a travel time
// derived from the haversine distance at the assumed urban speed.
func (p *Provider) fallback(origin, destination model.GeoPoint) (model.Route, int) {
	eta := FallbackETASeconds(origin, destination)
	return model.Route{origin, destination}, eta
}

// FallbackETASeconds estimates travel time between two points at the
// assumed average urban speed.
func FallbackETASeconds(origin, destination model.GeoPoint) int {
	return int(math.Round(geo.Distance(origin, destination) / fallbackSpeedKph * 3600))
}

// densify inserts two linearly interpolated points between every
// consecutive pair. Endpoints and total path length are unchanged since
// interpolation is linear between already-sampled points.
func densify(r model.Route) model.Route {
	out := make(model.Route, 0, len(r)*3)
	for i := 0; i < len(r)-1; i++ {
		out = append(out,
			r[i],
			geo.Interpolate(r[i], r[i+1], 1.0/3.0),
			geo.Interpolate(r[i], r[i+1], 2.0/3.0),
		)
	}
	return append(out, r[len(r)-1])
}
