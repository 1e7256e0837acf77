package metrics

import (
	"time"

	"github.com/autoride/autoride/core/model"
)

// AssignmentEvent records a completed vehicle selection.
type AssignmentEvent struct {
	RideID     string
	VehicleID  string
	ETASeconds int
	// Latency is the time from ride request to assignment.
	Latency time.Duration
	Time    time.Time
}

// RideEvent records a ride reaching a terminal status.
type RideEvent struct {
	RideID    string
	VehicleID string
	Status    model.RideStatus
	Time      time.Time
}

// VehicleEvent is a position snapshot of one vehicle.
type VehicleEvent struct {
	Vehicle model.Vehicle
	Time    time.Time
}

// Sink records dispatch observability events.
type Sink interface {
	RecordAssignment(ev AssignmentEvent) error
	RecordRide(ev RideEvent) error
	SetActiveRides(n int) error
}

// VehicleRecorder optionally records vehicle position samples.
type VehicleRecorder interface {
	RecordVehicleState(ev VehicleEvent) error
}

// AssignmentP95Recorder optionally records the rolling p95 assignment
// latency computed by the event collector.
type AssignmentP95Recorder interface {
	RecordAssignmentP95(d time.Duration) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentEvent) error { return nil }
func (NopSink) RecordRide(RideEvent) error             { return nil }
func (NopSink) SetActiveRides(int) error               { return nil }
