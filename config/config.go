// Package config exposes every empirical threshold of the strategy engine as a
// named, overridable value. Values load in three layers: compiled defaults,
// an optional YAML file, then PITWALL_-prefixed environment variables.
// The thresholds are empirically chosen, not derived; do not assume they are
// optimal.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config carries all tunable parameters of the engine.
type Config struct {
	// Race metadata.
	RaceID    string `yaml:"race_id" env:"RACE_ID"`
	Driver    string `yaml:"driver" env:"DRIVER"`
	TotalLaps int    `yaml:"total_laps" env:"TOTAL_LAPS"`

	// DefaultTrackTempC substitutes for missing track temperature telemetry.
	DefaultTrackTempC float64 `yaml:"default_track_temp_c" env:"DEFAULT_TRACK_TEMP_C"`

	// Tire monitor thresholds.
	CliffDegradationSeconds float64 `yaml:"cliff_degradation_seconds" env:"CLIFF_DEGRADATION_SECONDS"`
	CliffMinTireAge         int     `yaml:"cliff_min_tire_age" env:"CLIFF_MIN_TIRE_AGE"`
	OldTireAge              int     `yaml:"old_tire_age" env:"OLD_TIRE_AGE"`
	VeryOldTireAge          int     `yaml:"very_old_tire_age" env:"VERY_OLD_TIRE_AGE"`
	OldTireCooldownLaps     int     `yaml:"old_tire_cooldown_laps" env:"OLD_TIRE_COOLDOWN_LAPS"`
	PeriodicTireLaps        int     `yaml:"periodic_tire_laps" env:"PERIODIC_TIRE_LAPS"`
	PitAgeResetDrop         int     `yaml:"pit_age_reset_drop" env:"PIT_AGE_RESET_DROP"`

	// Pace monitor thresholds.
	PaceWindowLaps       int     `yaml:"pace_window_laps" env:"PACE_WINDOW_LAPS"`
	PaceCollapseDelta    float64 `yaml:"pace_collapse_delta" env:"PACE_COLLAPSE_DELTA"`

	// Position monitor thresholds.
	CloseRacingGapSeconds float64 `yaml:"close_racing_gap_seconds" env:"CLOSE_RACING_GAP_SECONDS"`
	ProximityGapSeconds   float64 `yaml:"proximity_gap_seconds" env:"PROXIMITY_GAP_SECONDS"`
	GapClosingDelta       float64 `yaml:"gap_closing_delta" env:"GAP_CLOSING_DELTA"`

	// Competitor monitor thresholds.
	CompetitorPaceDelta    float64 `yaml:"competitor_pace_delta" env:"COMPETITOR_PACE_DELTA"`
	PeriodicCompetitorLaps int     `yaml:"periodic_competitor_laps" env:"PERIODIC_COMPETITOR_LAPS"`

	// Reasoning service.
	ReasoningDisabled bool          `yaml:"reasoning_disabled" env:"REASONING_DISABLED"`
	ReasoningTimeout  time.Duration `yaml:"reasoning_timeout" env:"REASONING_TIMEOUT"`
	MaxAttempts       int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	MaxServiceCalls   int           `yaml:"max_service_calls" env:"MAX_SERVICE_CALLS"`
}

// Default returns the engine's baseline thresholds.
func Default() Config {
	return Config{
		TotalLaps:               78,
		DefaultTrackTempC:       30.0,
		CliffDegradationSeconds: 2.0,
		CliffMinTireAge:         15,
		OldTireAge:              20,
		VeryOldTireAge:          30,
		OldTireCooldownLaps:     3,
		PeriodicTireLaps:        10,
		PitAgeResetDrop:         5,
		PaceWindowLaps:          5,
		PaceCollapseDelta:       1.5,
		CloseRacingGapSeconds:   2.0,
		ProximityGapSeconds:     1.0,
		GapClosingDelta:         1.0,
		CompetitorPaceDelta:     0.5,
		PeriodicCompetitorLaps:  15,
		ReasoningTimeout:        5 * time.Second,
		MaxAttempts:             3,
	}
}

// Load builds a Config from defaults, an optional YAML file and the
// environment, in that order. An empty path skips the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PITWALL_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that would wedge the pipeline.
func (c Config) Validate() error {
	if c.TotalLaps < 1 {
		return fmt.Errorf("total_laps must be >= 1, got %d", c.TotalLaps)
	}
	if c.PaceWindowLaps < 4 {
		return fmt.Errorf("pace_window_laps must be >= 4, got %d", c.PaceWindowLaps)
	}
	if c.PeriodicTireLaps < 1 || c.PeriodicCompetitorLaps < 1 || c.OldTireCooldownLaps < 1 {
		return fmt.Errorf("periodic intervals must be >= 1")
	}
	if c.ReasoningTimeout <= 0 {
		return fmt.Errorf("reasoning_timeout must be positive, got %s", c.ReasoningTimeout)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	return nil
}
