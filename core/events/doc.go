// Package events defines the ride-lifecycle and vehicle events emitted on
// the event bus, together with the topics they are published to.
//
// Available event types:
//   - RideRequested: a passenger asked for a ride
//   - RideAssigned: a vehicle was selected for a ride
//   - RideCompleted: a ride reached a terminal status
//   - VehicleLocation: a vehicle position sample
//   - PricingUpdate: a surge multiplier change
package events
