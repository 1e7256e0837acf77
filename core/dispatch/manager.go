package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/core/fleet"
	"github.com/autoride/autoride/core/geo"
	"github.com/autoride/autoride/core/logger"
	"github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/core/model"
	"github.com/autoride/autoride/core/notify"
	"github.com/autoride/autoride/core/pricing"
	"github.com/autoride/autoride/core/routing"
	"github.com/autoride/autoride/core/snapshot"
	"github.com/autoride/autoride/internal/eventbus"
)

// activeSessionKey is the snapshot key for the single in-flight session.
const activeSessionKey = "active"

// Deps collects the collaborators the Manager is wired with.
type Deps struct {
	Registry  *fleet.Registry
	Routes    *routing.Provider
	Selector  *Selector
	Publisher events.Publisher
	Bus       eventbus.EventBus
	Notifier  notify.Sink
	Snapshots *snapshot.Keeper
	Surge     *pricing.Surge
	Clock     snapshot.Clock
	Logger    logger.Logger
}

// Manager runs the ride lifecycle: request, vehicle assignment, timed
// journey simulation, teardown. At most one ride is in flight at a time.
type Manager struct {
	cfg       Config
	registry  *fleet.Registry
	routes    *routing.Provider
	selector  *Selector
	pub       events.Publisher
	bus       eventbus.EventBus
	notifier  notify.Sink
	snapshots *snapshot.Keeper
	surge     *pricing.Surge
	clock     snapshot.Clock
	log       logger.Logger

	mu      sync.Mutex
	ride    *model.RideRequest
	session *Session
}

// NewManager creates a Manager. Nil optional collaborators are replaced
// with no-op implementations.
func NewManager(cfg Config, deps Deps) *Manager {
	cfg.SetDefaults()
	if deps.Notifier == nil {
		deps.Notifier = notify.NopSink{}
	}
	if deps.Bus == nil {
		deps.Bus = eventbus.New()
	}
	if deps.Surge == nil {
		deps.Surge = pricing.NewSurge()
	}
	if deps.Clock == nil {
		deps.Clock = snapshot.SystemClock{}
	}
	return &Manager{
		cfg:       cfg,
		registry:  deps.Registry,
		routes:    deps.Routes,
		selector:  deps.Selector,
		pub:       deps.Publisher,
		bus:       deps.Bus,
		notifier:  deps.Notifier,
		snapshots: deps.Snapshots,
		surge:     deps.Surge,
		clock:     deps.Clock,
		log:       deps.Logger,
	}
}

// Request creates a new ride request in REQUESTED state. It fails with
// ErrSessionActive while a ride is already in flight.
func (m *Manager) Request(ctx context.Context, userID string, pickup, dropoff model.GeoPoint) (model.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ride != nil {
		return model.RideRequest{}, ErrSessionActive
	}

	ride := model.RideRequest{
		ID:              uuid.NewString(),
		UserID:          userID,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Status:          model.RideRequested,
		SurgeMultiplier: m.surge.Multiplier(),
		RequestedAt:     m.clock.Now(),
	}
	m.ride = &ride

	m.publish(ctx, events.TopicRidesRequested, ride.ID, events.RideRequested{
		RideID:          ride.ID,
		UserID:          ride.UserID,
		Pickup:          ride.Pickup,
		Dropoff:         ride.Dropoff,
		SurgeMultiplier: ride.SurgeMultiplier,
		Timestamp:       m.clock.Now().UnixMilli(),
	})
	m.log.Infof("ride %s requested by %s (surge %.2fx)", ride.ID, userID, ride.SurgeMultiplier)
	return ride, nil
}

// Assign selects a vehicle for the pending ride and starts the journey
// simulation. The pickup-to-dropoff route is acquired concurrently while
// leg one plays out. It fails with ErrNoPendingRide when no ride is
// waiting and with ErrNoVehicleAvailable when the fleet has no
// dispatchable vehicle.
func (m *Manager) Assign(ctx context.Context) (model.RideRequest, error) {
	m.mu.Lock()
	if m.ride == nil {
		m.mu.Unlock()
		return model.RideRequest{}, ErrNoPendingRide
	}
	if m.session != nil {
		m.mu.Unlock()
		return model.RideRequest{}, ErrSessionActive
	}
	ride := *m.ride
	m.mu.Unlock()

	sel, err := m.selector.Select(ctx, ride.Pickup, m.registry.Candidates())
	if err != nil {
		return model.RideRequest{}, err
	}
	if _, err := m.registry.Claim(sel.Vehicle.ID); err != nil {
		return model.RideRequest{}, fmt.Errorf("claim selected vehicle: %w", err)
	}

	// Leg two is fetched in the background so a slow routing backend
	// never stalls the pickup leg; the session blocks on the channel
	// only once the vehicle reaches the pickup point.
	leg2ch := make(chan leg2Result, 1)
	go func() {
		rctx, cancel := context.WithTimeout(context.Background(), m.cfg.RouteTimeout())
		defer cancel()
		route, eta := m.routes.Route(rctx, ride.Pickup, ride.Dropoff)
		leg2ch <- leg2Result{route: route, etaSeconds: eta}
	}()

	m.mu.Lock()
	if m.ride == nil || m.ride.ID != ride.ID {
		// Cancelled between the unlocked selection and here.
		m.mu.Unlock()
		m.registry.Release(sel.Vehicle.ID)
		return model.RideRequest{}, ErrNoPendingRide
	}
	m.ride.Status = model.RideAssigned
	m.ride.VehicleID = sel.Vehicle.ID
	m.ride.ETASeconds = sel.ETASeconds
	ride = *m.ride

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        uuid.NewString(),
		RideID:    ride.ID,
		VehicleID: sel.Vehicle.ID,
		leg1:      sel.Leg1,
		leg2ch:    leg2ch,
		phase:     PhaseGoingToPickup,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.session = s
	m.mu.Unlock()

	latency := m.clock.Now().Sub(ride.RequestedAt)
	m.bus.Publish(metrics.AssignmentEvent{
		RideID:     ride.ID,
		VehicleID:  ride.VehicleID,
		ETASeconds: ride.ETASeconds,
		Latency:    latency,
		Time:       m.clock.Now(),
	})
	m.publish(ctx, events.TopicRidesAssigned, ride.ID, events.RideAssigned{
		RideID:     ride.ID,
		VehicleID:  ride.VehicleID,
		ETASeconds: ride.ETASeconds,
		Timestamp:  m.clock.Now().UnixMilli(),
	})
	m.saveSnapshot(ctx, s, sel, ride)

	m.log.Infof("ride %s assigned to %s (eta %ds, latency %s)", ride.ID, ride.VehicleID, ride.ETASeconds, latency)
	go m.run(runCtx, s)
	return ride, nil
}

// Dispatch is the request-then-assign convenience used by the CLI and
// the service layer.
func (m *Manager) Dispatch(ctx context.Context, userID string, pickup, dropoff model.GeoPoint) (model.RideRequest, error) {
	if _, err := m.Request(ctx, userID, pickup, dropoff); err != nil {
		return model.RideRequest{}, err
	}
	ride, err := m.Assign(ctx)
	if err != nil {
		// Roll the pending ride back so the next request is not blocked
		// by a ride that never got a vehicle.
		m.mu.Lock()
		if m.ride != nil && m.session == nil {
			m.ride = nil
		}
		m.mu.Unlock()
		return model.RideRequest{}, err
	}
	return ride, nil
}

// Cancel aborts the current ride. A ride still in REQUESTED state is
// simply discarded; an in-flight journey is stopped immediately and the
// vehicle released at its current position.
func (m *Manager) Cancel(ctx context.Context) error {
	m.mu.Lock()
	if m.ride == nil {
		m.mu.Unlock()
		return ErrNoActiveRide
	}
	ride := *m.ride
	s := m.session
	if s == nil {
		m.ride = nil
		m.mu.Unlock()
		ride.Status = model.RideCancelled
		m.finishEvents(ctx, ride)
		m.log.Infof("ride %s cancelled before assignment", ride.ID)
		return nil
	}
	m.mu.Unlock()

	s.cancel()
	<-s.done

	ride, ok := m.detach(s, model.RideCancelled)
	if !ok {
		// The session completed on its own before the cancel landed.
		return ErrNoActiveRide
	}

	m.registry.Release(s.VehicleID)
	m.clearSnapshot(ctx)
	m.finishEvents(ctx, ride)
	m.log.Infof("ride %s cancelled mid-journey, vehicle %s released", ride.ID, s.VehicleID)
	return nil
}

// Restore resumes the journey persisted in the snapshot store, if one
// exists and is fresh. The restored journey restarts the pickup leg from
// zero progress.
func (m *Manager) Restore(ctx context.Context) (model.RideRequest, error) {
	snap, err := m.snapshots.Load(ctx, activeSessionKey)
	if err != nil {
		return model.RideRequest{}, err
	}

	m.mu.Lock()
	if m.ride != nil {
		m.mu.Unlock()
		return model.RideRequest{}, ErrSessionActive
	}

	m.registry.Seed([]model.Vehicle{snap.Vehicle})
	if _, err := m.registry.Claim(snap.Vehicle.ID); err != nil {
		m.mu.Unlock()
		return model.RideRequest{}, fmt.Errorf("reclaim restored vehicle: %w", err)
	}

	ride := snap.Ride
	ride.Status = model.RideAssigned
	m.ride = &ride

	leg2ch := make(chan leg2Result, 1)
	go func() {
		rctx, cancel := context.WithTimeout(context.Background(), m.cfg.RouteTimeout())
		defer cancel()
		route, eta := m.routes.Route(rctx, ride.Pickup, ride.Dropoff)
		leg2ch <- leg2Result{route: route, etaSeconds: eta}
	}()

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        snap.SessionID,
		RideID:    ride.ID,
		VehicleID: snap.Vehicle.ID,
		leg1:      snap.Leg1Route,
		leg2ch:    leg2ch,
		phase:     PhaseGoingToPickup,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.session = s
	m.mu.Unlock()

	m.log.Infof("restored ride %s with vehicle %s", ride.ID, s.VehicleID)
	go m.run(runCtx, s)
	return ride, nil
}

// Ride returns a copy of the in-flight ride, if any.
func (m *Manager) Ride() (model.RideRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ride == nil {
		return model.RideRequest{}, false
	}
	return *m.ride, true
}

// ActiveSession returns the running session, or nil.
func (m *Manager) ActiveSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// run drives the journey state machine: pickup leg, dwell, destination
// leg, completion hold, teardown. Cancellation exits between any two
// steps without tearing down; Cancel owns that path.
func (m *Manager) run(ctx context.Context, s *Session) {
	defer close(s.done)

	if err := m.tickLeg(ctx, s, s.leg1, model.StatusEnRouteToPickup); err != nil {
		if ctx.Err() == nil {
			m.log.Errorf("pickup leg aborted: %v", err)
			m.abort(ctx, s)
		}
		return
	}

	s.setPhase(PhasePickupWait)
	v, err := m.registry.SetControlled(s.VehicleID, lastPoint(s.leg1), model.StatusArrivedAtPickup)
	if err != nil {
		m.log.Errorf("mark arrived at pickup: %v", err)
	} else {
		m.publishLocation(ctx, v)
	}
	if ride, ok := m.Ride(); ok {
		m.notifier.ArrivedAtPickup(ride)
	}
	if err := m.sleep(ctx, m.cfg.PickupDwell()); err != nil {
		return
	}

	var leg2 leg2Result
	select {
	case leg2 = <-s.leg2ch:
	case <-ctx.Done():
		return
	}
	s.setPhase(PhaseGoingToDestination)
	m.setRideStatus(s.RideID, model.RideEnroute)
	if err := m.tickLeg(ctx, s, leg2.route, model.StatusEnRouteToDestination); err != nil {
		if ctx.Err() == nil {
			m.log.Errorf("destination leg aborted: %v", err)
			m.abort(ctx, s)
		}
		return
	}

	s.setPhase(PhaseCompleted)
	v, err = m.registry.SetControlled(s.VehicleID, lastPoint(leg2.route), model.StatusCompleted)
	if err != nil {
		m.log.Errorf("mark completed: %v", err)
	} else {
		m.publishLocation(ctx, v)
	}
	if err := m.sleep(ctx, m.cfg.CompleteDelay()); err != nil {
		return
	}

	m.complete(ctx, s)
}

// tickLeg advances progress along one leg at the configured cadence,
// writing the interpolated position through the registry and publishing
// a location sample per tick.
func (m *Manager) tickLeg(ctx context.Context, s *Session, leg model.Route, status model.VehicleStatus) error {
	if len(leg) == 0 {
		return nil
	}
	ticker := time.NewTicker(m.cfg.TickInterval())
	defer ticker.Stop()

	// Progress is derived from the tick count, not accumulated, so fifty
	// 0.02 steps land exactly on 1 with no float drift.
	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		progress := min(m.cfg.ProgressStep*float64(tick), 1)
		s.setProgress(progress)

		pos := geo.PointAt(leg, progress)
		v, err := m.registry.SetControlled(s.VehicleID, pos, status)
		if err != nil {
			return fmt.Errorf("advance vehicle %s: %w", s.VehicleID, err)
		}
		m.publishLocation(ctx, v)
		if progress >= 1 {
			return nil
		}
	}
}

// complete tears the session down after a finished journey: release the
// vehicle at the dropoff point, clear persisted state and emit the
// terminal events.
func (m *Manager) complete(ctx context.Context, s *Session) {
	ride, ok := m.detach(s, model.RideCompleted)
	if !ok {
		return
	}
	m.registry.Release(s.VehicleID)
	m.clearSnapshot(ctx)
	m.notifier.RideCompleted(ride)
	m.finishEvents(ctx, ride)
	m.log.Infof("ride %s completed, vehicle %s idle at dropoff", ride.ID, s.VehicleID)
}

// abort tears the session down after a failed leg so the manager can
// accept new rides instead of staying wedged on a lost vehicle.
func (m *Manager) abort(ctx context.Context, s *Session) {
	ride, ok := m.detach(s, model.RideCancelled)
	if !ok {
		return
	}
	m.registry.Release(s.VehicleID)
	m.clearSnapshot(ctx)
	m.finishEvents(ctx, ride)
	m.log.Warnf("ride %s aborted, vehicle %s released", ride.ID, s.VehicleID)
}

// detach removes the session and its ride from the manager under the
// lock, stamping the terminal status. It reports false when the session
// was already torn down by another path.
func (m *Manager) detach(s *Session, status model.RideStatus) (model.RideRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != s {
		return model.RideRequest{}, false
	}
	var ride model.RideRequest
	if m.ride != nil {
		m.ride.Status = status
		ride = *m.ride
	}
	m.ride = nil
	m.session = nil
	return ride, true
}

// finishEvents emits the terminal ride event to the external bus and the
// in-process metrics pipeline.
func (m *Manager) finishEvents(ctx context.Context, ride model.RideRequest) {
	m.bus.Publish(metrics.RideEvent{
		RideID:    ride.ID,
		VehicleID: ride.VehicleID,
		Status:    ride.Status,
		Time:      m.clock.Now(),
	})
	m.publish(ctx, events.TopicRidesCompleted, ride.ID, events.RideCompleted{
		RideID:    ride.ID,
		VehicleID: ride.VehicleID,
		Status:    ride.Status,
		Timestamp: m.clock.Now().UnixMilli(),
	})
}

func (m *Manager) publishLocation(ctx context.Context, v model.Vehicle) {
	loc := events.VehicleLocation{
		VehicleID: v.ID,
		Lat:       v.Position.Lat,
		Lng:       v.Position.Lng,
		SpeedKph:  v.SpeedKph,
		Status:    v.Status,
		Seq:       v.Seq,
		Timestamp: m.clock.Now().UnixMilli(),
	}
	m.bus.Publish(loc)
	m.publish(ctx, events.TopicVehicleLocations, v.ID, loc)
}

func (m *Manager) publish(ctx context.Context, topic, key string, payload any) {
	if m.pub == nil {
		return
	}
	if err := m.pub.Publish(ctx, topic, key, payload); err != nil {
		m.log.Warnf("publish %s: %v", topic, err)
	}
}

func (m *Manager) saveSnapshot(ctx context.Context, s *Session, sel *Selection, ride model.RideRequest) {
	if m.snapshots == nil {
		return
	}
	err := m.snapshots.Save(ctx, snapshot.Snapshot{
		SessionID:  activeSessionKey,
		Vehicle:    sel.Vehicle,
		ETASeconds: sel.ETASeconds,
		Leg1Route:  sel.Leg1,
		Ride:       ride,
	})
	if err != nil {
		m.log.Warnf("save session snapshot: %v", err)
	}
}

func (m *Manager) clearSnapshot(ctx context.Context) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.Clear(ctx, activeSessionKey); err != nil {
		m.log.Warnf("clear session snapshot: %v", err)
	}
}

func (m *Manager) setRideStatus(rideID string, status model.RideStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ride != nil && m.ride.ID == rideID {
		m.ride.Status = status
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func lastPoint(r model.Route) model.GeoPoint {
	if len(r) == 0 {
		return model.GeoPoint{}
	}
	return r[len(r)-1]
}
