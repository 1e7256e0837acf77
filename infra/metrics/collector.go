package metrics

import (
	"context"
	"time"

	"github.com/autoride/autoride/core/events"
	coremetrics "github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics
// for dispatch events. It also maintains the active-ride count and the
// rolling assignment-latency p95. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	window := coremetrics.NewLatencyWindow(0)

	go func() {
		defer bus.Unsubscribe(sub)
		active := 0
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coremetrics.AssignmentEvent:
					_ = sink.RecordAssignment(e)
					active++
					_ = sink.SetActiveRides(active)
					window.Observe(e.Latency)
					if r, ok := sink.(coremetrics.AssignmentP95Recorder); ok {
						_ = r.RecordAssignmentP95(window.P95())
					}
				case coremetrics.RideEvent:
					_ = sink.RecordRide(e)
					if e.Status.Terminal() {
						if active > 0 {
							active--
						}
						_ = sink.SetActiveRides(active)
					}
				case events.VehicleLocation:
					if r, ok := sink.(coremetrics.VehicleRecorder); ok {
						_ = r.RecordVehicleState(coremetrics.VehicleEvent{
							Vehicle: model.Vehicle{
								ID:       e.VehicleID,
								Position: model.GeoPoint{Lat: e.Lat, Lng: e.Lng},
								SpeedKph: e.SpeedKph,
								Status:   e.Status,
								Seq:      e.Seq,
							},
							Time: time.UnixMilli(e.Timestamp),
						})
					}
				}
			}
		}
	}()
}
