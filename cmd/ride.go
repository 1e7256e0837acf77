package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autoride/autoride/app"
	"github.com/autoride/autoride/core/model"
)

var (
	ridePickup  []float64
	rideDropoff []float64
	rideUser    string
)

var rideCmd = &cobra.Command{
	Use:   "ride",
	Short: "Dispatch a single demo ride and follow it to completion",
	RunE:  runRide,
}

func init() {
	rideCmd.Flags().Float64SliceVar(&ridePickup, "pickup", []float64{40.7589, -73.9851}, "pickup lat,lng")
	rideCmd.Flags().Float64SliceVar(&rideDropoff, "dropoff", []float64{40.7614, -73.9776}, "dropoff lat,lng")
	rideCmd.Flags().StringVar(&rideUser, "user", "demo-user", "requesting user id")
	rootCmd.AddCommand(rideCmd)
}

func runRide(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pickup, err := parsePoint(ridePickup)
	if err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	dropoff, err := parsePoint(rideDropoff)
	if err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// A demo ride needs vehicles to pick from.
	cfg.Simulator.Enabled = true

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = svc.Run(runCtx) }()

	ride, err := svc.Manager.Dispatch(ctx, rideUser, pickup, dropoff)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	cmd.Printf("ride %s assigned to %s (eta %ds, %.2fx surge)\n",
		ride.ID, ride.VehicleID, ride.ETASeconds, ride.SurgeMultiplier)

	session := svc.Manager.ActiveSession()
	if session == nil {
		return fmt.Errorf("no active session after dispatch")
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return svc.Manager.Cancel(context.Background())
		case <-session.Done():
			cmd.Printf("ride %s finished\n", ride.ID)
			return nil
		case <-ticker.C:
			if v, ok := svc.Registry.Get(ride.VehicleID); ok {
				cmd.Printf("  %-22s %.0f%%  (%.5f, %.5f)\n",
					session.Phase(), session.Progress()*100, v.Position.Lat, v.Position.Lng)
			}
		}
	}
}

func parsePoint(coords []float64) (model.GeoPoint, error) {
	if len(coords) != 2 {
		return model.GeoPoint{}, fmt.Errorf("expected lat,lng, got %v", coords)
	}
	return model.GeoPoint{Lat: coords[0], Lng: coords[1]}, nil
}
