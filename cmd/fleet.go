package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoride/autoride/app"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the seeded fleet",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Simulator.Enabled = true

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	for _, v := range svc.Registry.List() {
		fmt.Printf("%-10s %-10s %5.1f km/h  (%.5f, %.5f)\n",
			v.ID, v.Status, v.SpeedKph, v.Position.Lat, v.Position.Lng)
	}
	return nil
}
