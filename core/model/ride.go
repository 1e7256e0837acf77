package model

import "time"

// RideStatus is the lifecycle state of a ride request.
type RideStatus string

const (
	RideRequested RideStatus = "REQUESTED"
	RideAssigned  RideStatus = "ASSIGNED"
	RideEnroute   RideStatus = "ENROUTE"
	RideCompleted RideStatus = "COMPLETED"
	RideCancelled RideStatus = "CANCELLED"
)

// Terminal reports whether the status ends the ride lifecycle.
func (s RideStatus) Terminal() bool {
	return s == RideCompleted || s == RideCancelled
}

// RideRequest is a passenger's request for a journey from Pickup to
// Dropoff. It is created on request, mutated through its status
// transitions and cleared once a terminal status is reached.
type RideRequest struct {
	ID      string   `json:"rideId"`
	UserID  string   `json:"userId"`
	Pickup  GeoPoint `json:"pickup"`
	Dropoff GeoPoint `json:"dropoff"`

	Status    RideStatus `json:"status"`
	VehicleID string     `json:"taxiId,omitempty"`

	ETASeconds int `json:"etaSeconds"`
	// SurgeMultiplier is the externally supplied pricing factor applied
	// to the base fare. Always >= 1.0; never computed by the engine.
	SurgeMultiplier float64 `json:"surgeMultiplier"`

	RequestedAt time.Time `json:"requestedAt"`
}
