package dispatch

import "errors"

var (
	// ErrNoVehicleAvailable means the candidate set was empty. This is
	// the only simulation error surfaced to callers; they may simply
	// re-request later.
	ErrNoVehicleAvailable = errors.New("dispatch: no vehicles available")
	// ErrSessionActive rejects a new request while a session is running.
	ErrSessionActive = errors.New("dispatch: a dispatch session is already active")
	// ErrNoActiveRide is returned by Cancel when nothing is in flight.
	ErrNoActiveRide = errors.New("dispatch: no active ride")
	// ErrNoPendingRide is returned by Assign without a prior Request.
	ErrNoPendingRide = errors.New("dispatch: no pending ride request")
)
