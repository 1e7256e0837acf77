package dispatch

import (
	"context"
	"fmt"

	"github.com/autoride/autoride/core/geo"
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/core/routing"
)

// Selection is the outcome of scoring the fleet against a pickup point.
// The winner's route to pickup is reused as leg one so selection and the
// first leg share a single routing call per candidate.
type Selection struct {
	Vehicle    model.Vehicle
	Leg1       model.Route
	ETASeconds int
	Score      float64
}

// Selector scores dispatch candidates with a weighted multi-factor
// function: proximity, speed, status and route efficiency.
type Selector struct {
	routes *routing.Provider
	log    logger.Logger
}

// NewSelector creates a Selector backed by the given route provider.
func NewSelector(routes *routing.Provider, log logger.Logger) *Selector {
	return &Selector{routes: routes, log: log}
}

// Select scores every candidate and returns the best fit, or
// ErrNoVehicleAvailable when the candidate set is empty. Ties are broken
// by iteration order, which is deterministic but arbitrary: candidates
// are visited in registry order (sorted by id) and the first highest
// score wins.
func (s *Selector) Select(ctx context.Context, pickup model.GeoPoint, candidates []model.Vehicle) (*Selection, error) {
	if len(candidates) == 0 {
		return nil, ErrNoVehicleAvailable
	}

	var best *Selection
	for _, v := range candidates {
		route, _ := s.routes.Route(ctx, v.Position, pickup)
		score := s.score(v, pickup, route)
		s.log.Debugw("scored candidate", map[string]any{
			"vehicle": v.ID,
			"score":   score,
			"status":  string(v.Status),
		})
		if best == nil || score > best.Score {
			best = &Selection{Vehicle: v, Leg1: route, Score: score}
		}
	}

	best.ETASeconds = etaToPickup(best.Leg1, best.Vehicle.Position, pickup)
	s.log.Infof("selected vehicle %s (score %.2f, eta %ds)", best.Vehicle.ID, best.Score, best.ETASeconds)
	return best, nil
}

// score sums four independently computed components. Distances beyond the
// component caps contribute zero rather than going negative.
func (s *Selector) score(v model.Vehicle, pickup model.GeoPoint, route model.Route) float64 {
	return distanceScore(v.Position, pickup) +
		speedScore(v.SpeedKph) +
		statusScore(v.Status) +
		routeEfficiencyScore(route)
}

func distanceScore(pos, pickup model.GeoPoint) float64 {
	return max(0, 10-geo.Distance(pos, pickup))
}

func speedScore(speedKph float64) float64 {
	return min(speedKph/50, 1)
}

func statusScore(st model.VehicleStatus) float64 {
	if st == model.StatusIdle {
		return 2
	}
	return 1
}

func routeEfficiencyScore(route model.Route) float64 {
	return max(0, 5-geo.RouteLength(route))
}

// etaToPickup estimates seconds to pickup from the leg-one route, with a
// haversine-based fallback when the route has no length.
func etaToPickup(leg1 model.Route, from, pickup model.GeoPoint) int {
	if km := geo.RouteLength(leg1); km > 0 {
		return int(km / 30 * 3600)
	}
	return routing.FallbackETASeconds(from, pickup)
}

// String implements fmt.Stringer for log lines.
func (s Selection) String() string {
	return fmt.Sprintf("vehicle=%s score=%.2f eta=%ds", s.Vehicle.ID, s.Score, s.ETASeconds)
}
