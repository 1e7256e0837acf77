package events

import (
	"context"

	"github.com/autoride/autoride/core/model"
)

// Topics the engine publishes to. Delivery is best-effort: publish
// failures are logged and never interrupt the simulation.
const (
	TopicRidesRequested   = "rides.requested"
	TopicRidesAssigned    = "rides.assigned"
	TopicRidesCompleted   = "rides.completed"
	TopicVehicleLocations = "vehicle.locations"
	TopicPricingUpdates   = "pricing.updates"
)

// Publisher sends events to an external topic-based bus.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

// RideRequested is published when a new ride request enters the system.
type RideRequested struct {
	RideID          string         `json:"rideId"`
	UserID          string         `json:"userId"`
	Pickup          model.GeoPoint `json:"pickup"`
	Dropoff         model.GeoPoint `json:"dropoff"`
	SurgeMultiplier float64        `json:"surgeMultiplier"`
	Timestamp       int64          `json:"timestamp"`
}

// RideAssigned is published once a vehicle has been selected.
type RideAssigned struct {
	RideID     string `json:"rideId"`
	VehicleID  string `json:"taxiId"`
	ETASeconds int    `json:"etaSeconds"`
	Timestamp  int64  `json:"timestamp"`
}

// RideCompleted is published when a ride ends, either completed or
// cancelled.
type RideCompleted struct {
	RideID    string           `json:"rideId"`
	VehicleID string           `json:"taxiId,omitempty"`
	Status    model.RideStatus `json:"status"`
	Timestamp int64            `json:"timestamp"`
}

// VehicleLocation is a position sample for one vehicle, produced by the
// external feed or by the journey simulator for the controlled vehicle.
type VehicleLocation struct {
	VehicleID string              `json:"taxiId"`
	Lat       float64             `json:"lat"`
	Lng       float64             `json:"lon"`
	SpeedKph  float64             `json:"speedKph"`
	Status    model.VehicleStatus `json:"status"`
	Seq       uint64              `json:"seq"`
	Timestamp int64               `json:"timestamp"`
}

// PricingUpdate carries a surge multiplier change. The engine consumes
// these and applies the multiplier to new ride requests; it never
// computes surge itself.
type PricingUpdate struct {
	SurgeMultiplier float64 `json:"surgeMultiplier"`
	BaseFare        float64 `json:"baseFare"`
	Reason          string  `json:"reason"`
	Timestamp       int64   `json:"timestamp"`
}
