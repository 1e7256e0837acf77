// Package notify defines the milestone notification sink informed at
// pickup arrival and ride completion. Delivery is best-effort; failures
// never propagate into the simulation.
package notify

import (
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/model"
)

// Sink receives journey milestone notifications.
type Sink interface {
	ArrivedAtPickup(ride model.RideRequest)
	RideCompleted(ride model.RideRequest)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) ArrivedAtPickup(model.RideRequest) {}
func (NopSink) RideCompleted(model.RideRequest)   {}

// LogSink writes milestones to the log. It is the default sink when no
// external notifier is configured.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) ArrivedAtPickup(ride model.RideRequest) {
	s.log.Infof("vehicle %s arrived at pickup for ride %s", ride.VehicleID, ride.ID)
}

func (s *LogSink) RideCompleted(ride model.RideRequest) {
	s.log.Infof("ride %s completed by vehicle %s", ride.ID, ride.VehicleID)
}
