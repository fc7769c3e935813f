package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/tirewear"
)

var (
	pwTotalLaps  int
	pwCurrentLap int
	pwStint1     string
	pwStint2     string
	pwWearMult   float64
	pwScenarios  int
)

var pitWindowCmd = &cobra.Command{
	Use:   "pitwindow",
	Short: "Compute the optimal one-stop pit window for a compound pairing",
	RunE: func(cmd *cobra.Command, args []string) error {
		stint1, err := core.ParseCompound(pwStint1)
		if err != nil {
			return err
		}
		stint2, err := core.ParseCompound(pwStint2)
		if err != nil {
			return err
		}

		model := tirewear.NewModel(pwTotalLaps, pwWearMult)
		scenarios, window, err := model.OptimalPitWindow(pwCurrentLap, stint1, stint2)
		if err != nil {
			return err
		}

		if pwScenarios > 0 && len(scenarios) > pwScenarios {
			scenarios = scenarios[:pwScenarios]
		}
		out := struct {
			Window    core.PitWindow         `json:"window"`
			Scenarios []tirewear.PitScenario `json:"scenarios"`
		}{Window: window, Scenarios: scenarios}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	},
}

func init() {
	pitWindowCmd.Flags().IntVar(&pwTotalLaps, "total-laps", 78, "Race length in laps")
	pitWindowCmd.Flags().IntVar(&pwCurrentLap, "current-lap", 1, "Current race lap")
	pitWindowCmd.Flags().StringVar(&pwStint1, "stint1", "MEDIUM", "First stint compound (SOFT, MEDIUM, HARD)")
	pitWindowCmd.Flags().StringVar(&pwStint2, "stint2", "HARD", "Second stint compound (SOFT, MEDIUM, HARD)")
	pitWindowCmd.Flags().Float64Var(&pwWearMult, "wear-multiplier", 1.0, "Driving style wear multiplier (1.0 = neutral)")
	pitWindowCmd.Flags().IntVar(&pwScenarios, "scenarios", 5, "Number of fastest scenarios to print (0 = all)")
}
