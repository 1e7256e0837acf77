package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/autoride/autoride/core/metrics"
	"github.com/autoride/autoride/infra/logger"
)

// PromSink records ride lifecycle events in Prometheus metrics.
type PromSink struct {
	rides      *prometheus.CounterVec
	latency    prometheus.Histogram
	latencyP95 prometheus.Gauge
	active     prometheus.Gauge
	vehicles   prometheus.Counter
}

// NewPromSink registers ride metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rides := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rides_total",
		Help: "Total number of rides by terminal status",
	}, []string{"status"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assignment_latency_seconds",
		Help:    "Time between ride request and vehicle assignment",
		Buckets: prometheus.DefBuckets,
	})
	latencyP95 := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "assignment_latency_p95_seconds",
		Help: "Rolling 95th-percentile assignment latency",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_rides",
		Help: "Number of rides currently in flight",
	})
	vehicles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vehicle_updates_total",
		Help: "Total number of vehicle position samples observed",
	})

	if err := reg.Register(rides); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			rides = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latencyP95); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latencyP95 = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(active); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			active = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(vehicles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			vehicles = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		rides:      rides,
		latency:    latency,
		latencyP95: latencyP95,
		active:     active,
		vehicles:   vehicles,
	}, nil
}

// RecordAssignment observes the request-to-assignment latency.
func (s *PromSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	s.latency.Observe(ev.Latency.Seconds())
	return nil
}

// RecordRide increments the terminal ride counter.
func (s *PromSink) RecordRide(ev coremetrics.RideEvent) error {
	s.rides.WithLabelValues(string(ev.Status)).Inc()
	return nil
}

// SetActiveRides sets the in-flight gauge.
func (s *PromSink) SetActiveRides(n int) error {
	s.active.Set(float64(n))
	return nil
}

// RecordVehicleState counts a vehicle position sample.
func (s *PromSink) RecordVehicleState(coremetrics.VehicleEvent) error {
	s.vehicles.Inc()
	return nil
}

// RecordAssignmentP95 sets the rolling p95 gauge.
func (s *PromSink) RecordAssignmentP95(d time.Duration) error {
	s.latencyP95.Set(d.Seconds())
	return nil
}

// StartPromServer exposes /metrics on the given port until the context
// is canceled.
func StartPromServer(ctx context.Context, port string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("prometheus server: %v", err)
		}
	}()
}
