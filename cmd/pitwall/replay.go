package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/racelab/pitwall"
	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/logging"
	"github.com/racelab/pitwall/reasoning"
	"github.com/racelab/pitwall/reasoning/anthropic"
	"github.com/racelab/pitwall/reasoning/openai"
	"github.com/racelab/pitwall/storage"
	"github.com/racelab/pitwall/storage/sqlite"
)

var (
	telemetryPath string
	provider      string
	dbPath        string
	driver        string
	totalLaps     int
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a telemetry file through the strategy engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if driver != "" {
			cfg.Driver = driver
		}
		if totalLaps > 0 {
			cfg.TotalLaps = totalLaps
		}
		if cfg.Driver == "" {
			return fmt.Errorf("a focused driver is required (--driver or config)")
		}

		logger := logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.ParseLevel(logLevel),
			Format: logFormat,
			Output: os.Stderr,
		})

		service, err := buildService(provider)
		if err != nil {
			return err
		}

		opts := []func(*pitwall.Options){
			pitwall.WithService(service),
			pitwall.WithLogger(logger),
		}
		if dbPath != "" {
			store, serr := sqlite.Open(dbPath)
			if serr != nil {
				return serr
			}
			defer store.Close()
			opts = append(opts, pitwall.WithSinks(store))
		}

		engine, err := pitwall.New(cfg, opts...)
		if err != nil {
			return err
		}

		src, err := storage.OpenJSONL(telemetryPath)
		if err != nil {
			return err
		}

		report, err := engine.Replay(cmd.Context(), src)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(report)
	},
}

// buildService maps the provider flag to a reasoning service. "off" runs the
// engine on the deterministic fallback alone.
func buildService(provider string) (reasoning.Service, error) {
	switch provider {
	case "anthropic":
		return anthropic.New(), nil
	case "openai":
		return openai.New(), nil
	case "off", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (anthropic, openai, off)", provider)
	}
}

func init() {
	replayCmd.Flags().StringVar(&telemetryPath, "telemetry", "", "Path to JSONL telemetry file")
	replayCmd.Flags().StringVar(&provider, "provider", "off", "Reasoning provider (anthropic, openai, off)")
	replayCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path for persisting results (optional)")
	replayCmd.Flags().StringVar(&driver, "driver", "", "Focused driver (overrides config)")
	replayCmd.Flags().IntVar(&totalLaps, "total-laps", 0, "Race length in laps (overrides config)")
	replayCmd.MarkFlagRequired("telemetry")
}
