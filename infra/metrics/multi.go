package metrics

import (
	"time"

	coremetrics "github.com/autoride/autoride/core/metrics"
)

// MultiSink fans ride events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRide forwards the terminal ride event to all sinks.
func (m *MultiSink) RecordRide(ev coremetrics.RideEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRide(ev); err != nil {
			return err
		}
	}
	return nil
}

// SetActiveRides forwards the in-flight gauge to all sinks.
func (m *MultiSink) SetActiveRides(n int) error {
	for _, s := range m.Sinks {
		if err := s.SetActiveRides(n); err != nil {
			return err
		}
	}
	return nil
}

// RecordVehicleState forwards vehicle samples to sinks that support them.
func (m *MultiSink) RecordVehicleState(ev coremetrics.VehicleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.VehicleRecorder); ok {
			if err := rec.RecordVehicleState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAssignmentP95 forwards the rolling percentile to sinks that
// support it.
func (m *MultiSink) RecordAssignmentP95(d time.Duration) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AssignmentP95Recorder); ok {
			if err := rec.RecordAssignmentP95(d); err != nil {
				return err
			}
		}
	}
	return nil
}
