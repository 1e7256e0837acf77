package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoride/autoride/core/events"
	coremetrics "github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/internal/eventbus"
)

func TestEventCollectorRecordsAssignments(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	bus.Publish(coremetrics.AssignmentEvent{RideID: "r1", VehicleID: "TAXI-1", Latency: 30 * time.Millisecond})

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.assignments) == 1 && sink.active == 1
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	assert.Equal(t, 30*time.Millisecond, sink.p95)
	sink.mu.Unlock()
}

func TestEventCollectorTracksActiveRides(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	bus.Publish(coremetrics.AssignmentEvent{RideID: "r1"})
	bus.Publish(coremetrics.RideEvent{RideID: "r1", Status: model.RideCompleted})

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.rides) == 1 && sink.active == 0
	}, time.Second, 5*time.Millisecond)
}

func TestEventCollectorActiveRidesNeverNegative(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	// Terminal event without a preceding assignment, e.g. a ride
	// cancelled before a vehicle was selected.
	bus.Publish(coremetrics.RideEvent{RideID: "r1", Status: model.RideCancelled})

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.rides) == 1
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	assert.Equal(t, 0, sink.active)
	sink.mu.Unlock()
}

func TestEventCollectorIgnoresVehicleSamplesWithoutRecorder(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	// recordingSink has no RecordVehicleState; the sample is dropped.
	bus.Publish(events.VehicleLocation{VehicleID: "TAXI-1"})
	bus.Publish(coremetrics.RideEvent{RideID: "r1", Status: model.RideCompleted})

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.rides) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestEventCollectorNilArgs(t *testing.T) {
	// Must not panic.
	StartEventCollector(context.Background(), nil, &recordingSink{})
	StartEventCollector(context.Background(), eventbus.New(), nil)
}
