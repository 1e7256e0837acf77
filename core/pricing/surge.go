// Package pricing tracks the externally supplied surge multiplier. The
// engine consumes surge updates and applies them to new ride requests; it
// never computes surge itself.
package pricing

import "sync"

// BaseFare is the flat fare the surge multiplier is applied to.
const BaseFare = 12.50

// Surge is a thread-safe holder for the current surge multiplier.
type Surge struct {
	mu         sync.RWMutex
	multiplier float64
}

// NewSurge creates a Surge at the neutral 1.0 multiplier.
func NewSurge() *Surge {
	return &Surge{multiplier: 1.0}
}

// Set updates the multiplier. Values below 1.0 are clamped to 1.0.
func (s *Surge) Set(m float64) {
	if m < 1.0 {
		m = 1.0
	}
	s.mu.Lock()
	s.multiplier = m
	s.mu.Unlock()
}

// Multiplier returns the current surge multiplier.
func (s *Surge) Multiplier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.multiplier
}

// EstimateFare returns the base fare with the current multiplier applied.
func (s *Surge) EstimateFare() float64 {
	return BaseFare * s.Multiplier()
}
