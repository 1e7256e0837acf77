// Package routing hosts the external directions adapters behind the
// core routing provider.
package routing

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/autoride/autoride/core/model"
	coreroute "github.com/autoride/autoride/core/routing"
)

// Config selects and configures the external directions backend.
type Config struct {
	// Provider is "google" or "none".
	Provider  string `json:"provider"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

// SetDefaults applies the standalone defaults.
func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "none"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks the provider selection.
func (c Config) Validate() error {
	switch c.Provider {
	case "google":
		if c.APIKey == "" {
			return fmt.Errorf("routing: google provider requires an api key")
		}
		return nil
	case "none":
		return nil
	default:
		return fmt.Errorf("routing: unknown provider %q", c.Provider)
	}
}

// Timeout returns the per-call timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// NewDirections builds the configured Directions client. A "none"
// provider returns nil, which the core provider treats as permanent
// fallback mode.
func NewDirections(cfg Config) (coreroute.Directions, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "none" {
		return nil, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleDirections{client: client}, nil
}

// GoogleDirections resolves driving routes through the Google Maps
// Directions API.
type GoogleDirections struct {
	client *maps.Client
}

// Directions returns the decoded overview polyline and duration of the
// first returned route.
func (g *GoogleDirections) Directions(ctx context.Context, origin, destination model.GeoPoint) (model.Route, time.Duration, error) {
	req := &maps.DirectionsRequest{
		Origin:      latLng(origin),
		Destination: latLng(destination),
		Mode:        maps.TravelModeDriving,
	}
	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, 0, fmt.Errorf("no route found")
	}

	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, 0, fmt.Errorf("decode polyline: %w", err)
	}
	route := make(model.Route, 0, len(points))
	for _, p := range points {
		route = append(route, model.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}

	var dur time.Duration
	for _, leg := range routes[0].Legs {
		dur += leg.Duration
	}
	return route, dur, nil
}

func latLng(p model.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
