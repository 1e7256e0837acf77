package model

// GeoPoint is an immutable latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is an ordered polyline of points describing a path to traverse.
// A usable route has at least two points; it is never mutated once built.
type Route []GeoPoint
