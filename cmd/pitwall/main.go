// Command pitwall replays race telemetry through the strategy engine and
// prints per-lap recommendations, or answers one-off pit window queries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/racelab/pitwall"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:     "pitwall",
	Short:   "Event-driven race strategy engine",
	Version: pitwall.Version,
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json, text)")
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(pitWindowCmd)
}
