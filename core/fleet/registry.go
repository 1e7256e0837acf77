// Package fleet holds the live set of known vehicles and arbitrates
// writes between the external location feed and the journey simulator.
package fleet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/model"
)

var (
	// ErrUnknownVehicle is returned for operations on an unregistered id.
	ErrUnknownVehicle = errors.New("fleet: unknown vehicle")
	// ErrVehicleControlled rejects external updates for a vehicle owned
	// by an active dispatch session.
	ErrVehicleControlled = errors.New("fleet: vehicle controlled by dispatch session")
	// ErrStaleSequence rejects out-of-order external updates.
	ErrStaleSequence = errors.New("fleet: stale update sequence")
)

// Registry is the authoritative vehicle store. External feed updates go
// through Apply, which enforces sequence ordering and session
// exclusivity; the journey simulator writes through SetControlled, which
// always wins for the vehicle it owns.
type Registry struct {
	mu       sync.RWMutex
	vehicles map[string]model.Vehicle
	log      logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{vehicles: make(map[string]model.Vehicle), log: log}
}

// Seed registers vehicles wholesale, replacing any existing entries with
// the same id. Used at startup by the location feed.
func (r *Registry) Seed(vehicles []model.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vehicles {
		r.vehicles[v.ID] = v
	}
}

// Apply merges an external location update. Updates are rejected when the
// vehicle is controlled by an active session or when the sequence number
// does not strictly increase.
func (r *Registry) Apply(update model.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.vehicles[update.ID]
	if ok {
		if cur.Controlled {
			return fmt.Errorf("%w: %s", ErrVehicleControlled, update.ID)
		}
		if update.Seq <= cur.Seq {
			return fmt.Errorf("%w: %s seq %d <= %d", ErrStaleSequence, update.ID, update.Seq, cur.Seq)
		}
	}
	update.Controlled = false
	r.vehicles[update.ID] = update
	return nil
}

// Get returns a copy of the vehicle with the given id.
func (r *Registry) Get(id string) (model.Vehicle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	return v, ok
}

// List returns all vehicles ordered by id. The ordering is what makes
// selection tie-breaks deterministic.
func (r *Registry) List() []model.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Candidates returns the vehicles eligible for dispatch, ordered by id.
func (r *Registry) Candidates() []model.Vehicle {
	all := r.List()
	out := all[:0]
	for _, v := range all {
		if !v.Controlled && v.Status.Dispatchable() {
			out = append(out, v)
		}
	}
	return out
}

// Claim atomically takes exclusive control of a vehicle for a dispatch
// session and marks it en route to pickup. It fails if the vehicle is
// unknown or already controlled.
func (r *Registry) Claim(id string) (model.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrUnknownVehicle, id)
	}
	if v.Controlled {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrVehicleControlled, id)
	}
	v.Controlled = true
	v.Status = model.StatusEnRouteToPickup
	r.vehicles[id] = v
	return v, nil
}

// Release atomically returns a controlled vehicle to the open fleet. The
// vehicle keeps its current position and becomes externally updatable
// again.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return
	}
	v.Controlled = false
	v.Status = model.StatusIdle
	r.vehicles[id] = v
}

// SetControlled writes the simulator-driven position and status of the
// controlled vehicle. These writes always win while the session holds
// control; the sequence number is bumped so viewers see a fresh sample.
func (r *Registry) SetControlled(id string, pos model.GeoPoint, status model.VehicleStatus) (model.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrUnknownVehicle, id)
	}
	if !v.Controlled {
		return model.Vehicle{}, fmt.Errorf("fleet: vehicle %s not controlled", id)
	}
	v.Position = pos
	v.Status = status
	v.Seq++
	r.vehicles[id] = v
	return v, nil
}

// Size returns the number of registered vehicles.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vehicles)
}
