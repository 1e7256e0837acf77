// Package relay streams engine events to map viewers over WebSocket.
// Every frame is a JSON envelope with a type tag so clients can route
// vehicle samples and ride updates without inspecting the payload.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/core/logger"
	coremetrics "github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/internal/eventbus"
)

// Config configures the WebSocket relay.
type Config struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	Path    string `json:"path"`
}

// SetDefaults applies the default listen address.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8081"
	}
	if c.Path == "" {
		c.Path = "/ws"
	}
}

// Frame is the JSON envelope sent to every connected viewer.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Relay accepts WebSocket viewers and fans bus events out to them.
// Writes to slow clients are bounded; a client that cannot keep up is
// dropped.
type Relay struct {
	cfg      Config
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	srv *http.Server
}

// New creates a Relay.
func New(cfg Config, log logger.Logger) *Relay {
	cfg.SetDefaults()
	return &Relay{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			// Viewers are map frontends on arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start begins serving viewers and relaying bus events until the context
// is canceled.
func (r *Relay) Start(ctx context.Context, bus eventbus.EventBus) {
	mux := http.NewServeMux()
	mux.HandleFunc(r.cfg.Path, r.handleViewer)
	r.srv = &http.Server{
		Addr:              r.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := r.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.log.Errorf("relay server: %v", err)
		}
	}()

	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		defer r.shutdown()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if frame, ok := frameFor(ev); ok {
					r.broadcast(frame)
				}
			}
		}
	}()
	r.log.Infof("relay listening on %s%s", r.cfg.Addr, r.cfg.Path)
}

// ClientCount returns the number of connected viewers.
func (r *Relay) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Relay) handleViewer(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warnf("upgrade viewer connection: %v", err)
		return
	}
	r.mu.Lock()
	r.clients[conn] = struct{}{}
	n := len(r.clients)
	r.mu.Unlock()
	r.log.Debugf("viewer connected (%d total)", n)

	// Viewers are write-only; the read loop only notices disconnects.
	go func() {
		defer r.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (r *Relay) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		r.log.Errorf("marshal relay frame: %v", err)
		return
	}

	r.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(r.clients))
	for c := range r.clients {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			r.drop(c)
		}
	}
}

func (r *Relay) drop(conn *websocket.Conn) {
	r.mu.Lock()
	_, ok := r.clients[conn]
	delete(r.clients, conn)
	r.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (r *Relay) shutdown() {
	r.mu.Lock()
	for c := range r.clients {
		_ = c.Close()
	}
	r.clients = make(map[*websocket.Conn]struct{})
	r.mu.Unlock()

	if r.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.srv.Shutdown(ctx)
	}
}

// frameFor maps bus events to viewer frames. Metrics-only events are
// not relayed.
func frameFor(ev eventbus.Event) (Frame, bool) {
	switch e := ev.(type) {
	case events.VehicleLocation:
		return Frame{Type: "vehicle.location", Payload: e}, true
	case coremetrics.AssignmentEvent:
		return Frame{Type: "ride.assigned", Payload: map[string]any{
			"rideId":     e.RideID,
			"taxiId":     e.VehicleID,
			"etaSeconds": e.ETASeconds,
		}}, true
	case coremetrics.RideEvent:
		return Frame{Type: "ride.update", Payload: map[string]any{
			"rideId": e.RideID,
			"taxiId": e.VehicleID,
			"status": e.Status,
		}}, true
	default:
		return Frame{}, false
	}
}
