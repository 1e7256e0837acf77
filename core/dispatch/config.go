package dispatch

import (
	"fmt"
	"time"
)

// Config defines the timing parameters of the journey simulation. The
// defaults advance a leg in roughly fifty seconds regardless of route
// length, which is a simulation simplification rather than a real-time
// estimate.
type Config struct {
	// TickIntervalMS is the period between progress ticks.
	TickIntervalMS int `json:"tick_interval_ms"`
	// ProgressStep is the leg progress added per tick.
	ProgressStep float64 `json:"progress_step"`
	// PickupDwellMS is the pause at the pickup point before leg two.
	PickupDwellMS int `json:"pickup_dwell_ms"`
	// CompleteDelayMS is the pause after completion before teardown.
	CompleteDelayMS int `json:"complete_delay_ms"`
	// RouteTimeoutMS bounds each external routing call.
	RouteTimeoutMS int `json:"route_timeout_ms"`
}

// SetDefaults applies the 1 Hz / 0.02-per-tick simulation defaults.
func (c *Config) SetDefaults() {
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = 1000
	}
	if c.ProgressStep == 0 {
		c.ProgressStep = 0.02
	}
	if c.PickupDwellMS == 0 {
		c.PickupDwellMS = 3000
	}
	if c.CompleteDelayMS == 0 {
		c.CompleteDelayMS = 2000
	}
	if c.RouteTimeoutMS == 0 {
		c.RouteTimeoutMS = 5000
	}
}

// Validate checks the simulation parameters.
func (c Config) Validate() error {
	if c.TickIntervalMS < 0 || c.PickupDwellMS < 0 || c.CompleteDelayMS < 0 {
		return fmt.Errorf("dispatch: timing values must be non-negative")
	}
	if c.ProgressStep < 0 || c.ProgressStep > 1 {
		return fmt.Errorf("dispatch: progress_step must be within (0,1]")
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c Config) PickupDwell() time.Duration {
	return time.Duration(c.PickupDwellMS) * time.Millisecond
}

func (c Config) CompleteDelay() time.Duration {
	return time.Duration(c.CompleteDelayMS) * time.Millisecond
}

func (c Config) RouteTimeout() time.Duration {
	return time.Duration(c.RouteTimeoutMS) * time.Millisecond
}
