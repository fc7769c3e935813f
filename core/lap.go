package core

import "fmt"

// ErrMalformedTelemetry wraps all lap record validation failures so the
// orchestrator can skip the tick without unpacking the cause.
var ErrMalformedTelemetry = fmt.Errorf("malformed telemetry")

// maxPlausibleTireAge bounds tire age validation; no stint runs this long.
const maxPlausibleTireAge = 200

// LapRecord is one driver's telemetry for one completed lap. Immutable input,
// one per driver per lap. Gap fields are nil when there is no car ahead
// (leader) or behind (last), or when timing data is unavailable.
type LapRecord struct {
	Lap            int      `json:"lap_number"`
	Driver         string   `json:"driver"`
	Compound       Compound `json:"compound"`
	TireAge        int      `json:"tire_age"`
	LapTimeSeconds float64  `json:"lap_time_seconds"`
	SectorSeconds  []float64 `json:"sector_times,omitempty"`
	Position       int      `json:"position"`
	GapAhead       *float64 `json:"gap_ahead_seconds"`
	GapBehind      *float64 `json:"gap_behind_seconds"`
	TrackTempC     float64  `json:"track_temp_c"`
}

// Validate checks the record for the malformed-telemetry conditions that must
// skip a tick rather than crash the loop. All failures wrap
// ErrMalformedTelemetry; compound failures additionally wrap
// ErrInvalidCompound.
func (r LapRecord) Validate() error {
	if r.Lap < 1 {
		return fmt.Errorf("%w: lap number %d", ErrMalformedTelemetry, r.Lap)
	}
	if r.Driver == "" {
		return fmt.Errorf("%w: missing driver", ErrMalformedTelemetry)
	}
	if _, err := ParseCompound(string(r.Compound)); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedTelemetry, err)
	}
	if r.TireAge < 0 || r.TireAge > maxPlausibleTireAge {
		return fmt.Errorf("%w: tire age %d out of range", ErrMalformedTelemetry, r.TireAge)
	}
	if r.LapTimeSeconds <= 0 {
		return fmt.Errorf("%w: lap time %.3f", ErrMalformedTelemetry, r.LapTimeSeconds)
	}
	if r.Position < 1 {
		return fmt.Errorf("%w: position %d", ErrMalformedTelemetry, r.Position)
	}
	return nil
}

// Gap dereferences a gap pointer, returning ok=false for nil.
func Gap(g *float64) (float64, bool) {
	if g == nil {
		return 0, false
	}
	return *g, true
}
