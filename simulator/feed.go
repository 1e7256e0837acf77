// Package simulator generates a synthetic vehicle location feed. It
// stands in for the real telematics pipeline: vehicles random-walk
// around a city center and their samples flow through the same registry
// and bus paths production samples would.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/core/fleet"
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/internal/eventbus"
)

// Default city center, midtown Manhattan.
var defaultCenter = model.GeoPoint{Lat: 40.7589, Lng: -73.9851}

// Config holds parameters for the simulated fleet.
type Config struct {
	// Enabled starts the feed with the service.
	Enabled bool `json:"enabled"`
	// Count is the number of simulated vehicles.
	Count int `json:"count"`
	// TickMS is the interval between location samples per cycle.
	TickMS int `json:"tick_ms"`
	// SpreadKm bounds the initial scatter around the center.
	SpreadKm  float64 `json:"spread_km"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	// Seed fixes the random walk for reproducible runs; zero seeds from
	// the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the demo fleet defaults.
func (c *Config) SetDefaults() {
	if c.Count == 0 {
		c.Count = 8
	}
	if c.TickMS == 0 {
		c.TickMS = 2000
	}
	if c.SpreadKm == 0 {
		c.SpreadKm = 3
	}
	if c.CenterLat == 0 && c.CenterLng == 0 {
		c.CenterLat = defaultCenter.Lat
		c.CenterLng = defaultCenter.Lng
	}
}

// Validate checks the fleet parameters.
func (c Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("simulator: count must be non-negative")
	}
	return nil
}

// Feed drives the simulated vehicles. Updates go through the registry's
// external-update path, so a vehicle owned by a dispatch session keeps
// walking in the simulation but its samples are rejected until release.
type Feed struct {
	cfg      Config
	registry *fleet.Registry
	pub      events.Publisher
	bus      eventbus.EventBus
	log      logger.Logger
	rng      *rand.Rand

	vehicles []model.Vehicle
}

// NewFeed creates a Feed and seeds the registry with the initial fleet.
// Accepted samples go to the in-process bus (relay viewers, metrics
// collector) and to the external publisher.
func NewFeed(cfg Config, registry *fleet.Registry, pub events.Publisher, bus eventbus.EventBus, log logger.Logger) *Feed {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Feed{
		cfg:      cfg,
		registry: registry,
		pub:      pub,
		bus:      bus,
		log:      log,
		rng:      rand.New(rand.NewSource(seed)),
	}
	f.vehicles = f.spawn()
	registry.Seed(f.vehicles)
	return f
}

// Start runs the feed loop until the context is canceled.
func (f *Feed) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Duration(f.cfg.TickMS) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.step(ctx)
			}
		}
	}()
	f.log.Infof("simulated fleet started (%d vehicles)", len(f.vehicles))
}

// FleetSize returns the number of simulated vehicles.
func (f *Feed) FleetSize() int { return len(f.vehicles) }

// spawn scatters the fleet uniformly around the configured center.
func (f *Feed) spawn() []model.Vehicle {
	degPerKm := 1.0 / 111.0
	spread := f.cfg.SpreadKm * degPerKm

	out := make([]model.Vehicle, 0, f.cfg.Count)
	for i := 0; i < f.cfg.Count; i++ {
		out = append(out, model.Vehicle{
			ID: fmt.Sprintf("TAXI-%d", i+1),
			Position: model.GeoPoint{
				Lat: f.cfg.CenterLat + (f.rng.Float64()*2-1)*spread,
				Lng: f.cfg.CenterLng + (f.rng.Float64()*2-1)*spread,
			},
			SpeedKph: 10 + f.rng.Float64()*40,
			Status:   model.StatusIdle,
			Seq:      1,
		})
	}
	return out
}

// step advances every vehicle one random-walk move and pushes the
// samples through the registry and the external bus.
func (f *Feed) step(ctx context.Context) {
	degPerKm := 1.0 / 111.0
	for i := range f.vehicles {
		v := &f.vehicles[i]
		stepKm := v.SpeedKph * float64(f.cfg.TickMS) / 3600000.0
		v.Position.Lat += (f.rng.Float64()*2 - 1) * stepKm * degPerKm
		v.Position.Lng += (f.rng.Float64()*2 - 1) * stepKm * degPerKm
		v.SpeedKph = clampSpeed(v.SpeedKph + (f.rng.Float64()*10 - 5))
		v.Seq++

		update := *v
		if err := f.registry.Apply(update); err != nil {
			switch {
			case errors.Is(err, fleet.ErrVehicleControlled):
				// The dispatch session owns this vehicle; keep walking
				// the local copy and retry after release.
			case errors.Is(err, fleet.ErrStaleSequence):
				// The session bumped the sequence past ours while it
				// held control. Fast-forward and pick the vehicle up
				// where the journey left it.
				if cur, ok := f.registry.Get(v.ID); ok {
					v.Seq = cur.Seq
					v.Position = cur.Position
				}
			default:
				f.log.Warnf("apply simulated update for %s: %v", v.ID, err)
			}
			continue
		}
		f.publish(ctx, update)
	}
}

func (f *Feed) publish(ctx context.Context, v model.Vehicle) {
	loc := events.VehicleLocation{
		VehicleID: v.ID,
		Lat:       v.Position.Lat,
		Lng:       v.Position.Lng,
		SpeedKph:  v.SpeedKph,
		Status:    v.Status,
		Seq:       v.Seq,
		Timestamp: time.Now().UnixMilli(),
	}
	if f.bus != nil {
		f.bus.Publish(loc)
	}
	if f.pub == nil {
		return
	}
	if err := f.pub.Publish(ctx, events.TopicVehicleLocations, v.ID, loc); err != nil {
		f.log.Warnf("publish simulated location: %v", err)
	}
}

func clampSpeed(kph float64) float64 {
	if kph < 5 {
		return 5
	}
	if kph > 60 {
		return 60
	}
	return kph
}
