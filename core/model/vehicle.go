package model

// VehicleStatus describes what a vehicle is currently doing. The feed
// statuses (IDLE, ENROUTE, OFFLINE) come from the external location feed;
// the journey statuses are written exclusively by an active dispatch
// session while it controls the vehicle.
type VehicleStatus string

const (
	StatusIdle    VehicleStatus = "IDLE"
	StatusEnroute VehicleStatus = "ENROUTE"
	StatusOffline VehicleStatus = "OFFLINE"

	StatusEnRouteToPickup      VehicleStatus = "EN_ROUTE_TO_PICKUP"
	StatusArrivedAtPickup      VehicleStatus = "ARRIVED_AT_PICKUP"
	StatusEnRouteToDestination VehicleStatus = "EN_ROUTE_TO_DESTINATION"
	StatusCompleted            VehicleStatus = "COMPLETED"
)

// Dispatchable reports whether a vehicle may be considered for a new ride.
// An en-route vehicle can be redirected; an offline or already controlled
// vehicle cannot.
func (s VehicleStatus) Dispatchable() bool {
	return s == StatusIdle || s == StatusEnroute
}

// Vehicle is one fleet member as tracked by the registry.
type Vehicle struct {
	ID       string        `json:"taxiId"`
	Position GeoPoint      `json:"position"`
	SpeedKph float64       `json:"speedKph"`
	Status   VehicleStatus `json:"status"`
	// Seq is the update sequence number, strictly increasing per vehicle.
	// Out-of-order external updates are discarded.
	Seq uint64 `json:"seq"`
	// Controlled marks the vehicle as owned by the active dispatch
	// session. While set, external feed updates are rejected.
	Controlled bool `json:"controlled"`
}
