package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoride/autoride/core/geo"
	"github.com/autoride/autoride/core/routing"
	"github.com/autoride/autoride/infra/logger"
	infrarouting "github.com/autoride/autoride/infra/routing"
)

var (
	routeFrom []float64
	routeTo   []float64
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Resolve a route between two points and print it",
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().Float64SliceVar(&routeFrom, "from", []float64{40.7589, -73.9851}, "origin lat,lng")
	routeCmd.Flags().Float64SliceVar(&routeTo, "to", []float64{40.7614, -73.9776}, "destination lat,lng")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	origin, err := parsePoint(routeFrom)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	destination, err := parsePoint(routeTo)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	directions, err := infrarouting.NewDirections(cfg.Routing)
	if err != nil {
		return err
	}
	provider := routing.NewProvider(directions, cfg.Routing.Timeout(), logger.New("routing"))

	route, eta := provider.Route(context.Background(), origin, destination)
	cmd.Printf("route: %d points, %.2f km, eta %ds\n", len(route), geo.RouteLength(route), eta)
	for _, p := range route {
		cmd.Printf("  %.5f, %.5f\n", p.Lat, p.Lng)
	}
	return nil
}
