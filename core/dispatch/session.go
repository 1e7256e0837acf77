package dispatch

import (
	"context"
	"sync"

	"github.com/autoride/autoride/core/model"
)

// Phase is the state of an active journey's simulation loop.
type Phase string

const (
	PhaseSelecting          Phase = "SELECTING"
	PhaseGoingToPickup      Phase = "GOING_TO_PICKUP"
	PhasePickupWait         Phase = "PICKUP_WAIT"
	PhaseGoingToDestination Phase = "GOING_TO_DESTINATION"
	PhaseCompleted          Phase = "COMPLETED"
)

// leg2Result carries the asynchronously acquired pickup-to-dropoff route.
type leg2Result struct {
	route      model.Route
	etaSeconds int
}

// Session is one running journey simulation. It owns exactly one vehicle
// from claim to release and is driven by a single goroutine; accessors
// are safe from any goroutine.
type Session struct {
	ID        string
	RideID    string
	VehicleID string

	leg1   model.Route
	leg2ch chan leg2Result

	mu       sync.RWMutex
	phase    Phase
	progress float64

	cancel context.CancelFunc
	done   chan struct{}
}

// Phase returns the current journey phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Progress returns the fractional progress along the current leg, in
// [0, 1].
func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Done is closed when the session goroutine has exited, whether the
// journey completed or was cancelled.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.progress = 0
	s.mu.Unlock()
}

func (s *Session) setProgress(p float64) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}
