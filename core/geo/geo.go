// Package geo contains pure geographic computation helpers used by the
// routing provider and the journey simulator.
package geo

import (
	"math"

	"github.com/autoride/autoride/core/model"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle (haversine) distance in kilometres
// between two points.
func Distance(a, b model.GeoPoint) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	rLat1 := radians(a.Lat)
	rLat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// RouteLength sums the consecutive-pair distances of a route in
// kilometres. Routes with fewer than two points have length zero.
func RouteLength(r model.Route) float64 {
	if len(r) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(r); i++ {
		total += Distance(r[i-1], r[i])
	}
	return total
}

// PointAt returns the sampled route point for a traversal progress in
// [0,1]: index floor(progress*(len-1)). Progress outside [0,1] is
// clamped. Routes are densified upstream so snapping to sampled points
// still steps smoothly. Progress 0 maps to the first point and 1 to the
// last.
func PointAt(r model.Route, progress float64) model.GeoPoint {
	if len(r) == 0 {
		return model.GeoPoint{}
	}
	if len(r) == 1 {
		return r[0]
	}
	progress = math.Max(0, math.Min(1, progress))

	idx := int(math.Floor(progress * float64(len(r)-1)))
	if idx >= len(r) {
		idx = len(r) - 1
	}
	return r[idx]
}

// Interpolate returns the point a fraction t of the way from a to b
// along a straight line in coordinate space.
func Interpolate(a, b model.GeoPoint, t float64) model.GeoPoint {
	return model.GeoPoint{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
