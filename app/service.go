// Package app wires the engine together from configuration: fleet
// registry, routing, dispatch manager, external bus, relay and metrics.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/autoride/autoride/config"
	"github.com/autoride/autoride/core/dispatch"
	"github.com/autoride/autoride/core/events"
	"github.com/autoride/autoride/core/fleet"
	"github.com/autoride/autoride/core/notify"
	"github.com/autoride/autoride/core/pricing"
	"github.com/autoride/autoride/core/routing"
	coresnap "github.com/autoride/autoride/core/snapshot"
	"github.com/autoride/autoride/infra/bus"
	"github.com/autoride/autoride/infra/logger"
	"github.com/autoride/autoride/infra/metrics"
	"github.com/autoride/autoride/infra/relay"
	infrarouting "github.com/autoride/autoride/infra/routing"
	infrasnapshot "github.com/autoride/autoride/infra/snapshot"
	"github.com/autoride/autoride/internal/eventbus"
	"github.com/autoride/autoride/simulator"
)

// Service orchestrates the dispatch engine and its adapters.
type Service struct {
	Manager  *dispatch.Manager
	Registry *fleet.Registry
	Surge    *pricing.Surge

	cfg       *config.Config
	bus       *eventbus.Bus
	publisher events.Publisher
	relay     *relay.Relay
	feed      *simulator.Feed
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	publisher, err := bus.New(cfg.Bus, logger.New("bus"))
	if err != nil {
		return nil, fmt.Errorf("external bus: %w", err)
	}

	directions, err := infrarouting.NewDirections(cfg.Routing)
	if err != nil {
		return nil, fmt.Errorf("directions client: %w", err)
	}
	routes := routing.NewProvider(directions, cfg.Routing.Timeout(), logger.New("routing"))

	store, err := infrasnapshot.NewStore(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	keeper := coresnap.NewKeeper(store, coresnap.SystemClock{}, cfg.Snapshot.TTL())

	registry := fleet.NewRegistry(logger.New("fleet"))
	surge := pricing.NewSurge()
	internal := eventbus.New()

	manager := dispatch.NewManager(cfg.Dispatch, dispatch.Deps{
		Registry:  registry,
		Routes:    routes,
		Selector:  dispatch.NewSelector(routes, logger.New("selector")),
		Publisher: publisher,
		Bus:       internal,
		Notifier:  notify.NewLogSink(logger.New("notify")),
		Snapshots: keeper,
		Surge:     surge,
		Logger:    logger.New("dispatch"),
	})

	svc := &Service{
		Manager:   manager,
		Registry:  registry,
		Surge:     surge,
		cfg:       cfg,
		bus:       internal,
		publisher: publisher,
		log:       log,
	}
	if cfg.Relay.Enabled {
		svc.relay = relay.New(cfg.Relay, logger.New("relay"))
	}
	if cfg.Simulator.Enabled {
		svc.feed = simulator.NewFeed(cfg.Simulator, registry, publisher, internal, logger.New("simulator"))
	}
	return svc, nil
}

// Run starts the adapters and blocks until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	sink, err := metrics.New(s.cfg.Metrics, s.log)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	metrics.StartEventCollector(ctx, s.bus, sink)
	if s.cfg.Metrics.PrometheusEnabled {
		metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log)
	}
	if s.relay != nil {
		s.relay.Start(ctx, s.bus)
	}
	if s.feed != nil {
		s.feed.Start(ctx)
	}
	if s.cfg.Bus.Backend == "kafka" {
		bus.StartPricingConsumer(ctx, s.cfg.Bus, s.Surge, logger.New("pricing"))
	}

	// Resume a journey interrupted by a restart, if a fresh snapshot
	// exists.
	if _, err := s.Manager.Restore(ctx); err != nil {
		if !errors.Is(err, coresnap.ErrNotFound) && !errors.Is(err, coresnap.ErrStale) {
			s.log.Warnf("restore session: %v", err)
		}
	} else {
		s.log.Infof("resumed interrupted journey")
	}

	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.publisher.Close()
	s.bus.Close()
	return err
}
