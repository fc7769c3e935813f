package core

// The snapshot types aggregate each monitor agent's current view of the race.
// They feed the reasoning-service request and the deterministic fallback.

// TireSnapshot summarizes tire state for the focused driver.
type TireSnapshot struct {
	Compound           Compound `json:"compound"`
	TireAge            int      `json:"tire_age"`
	DegradationSeconds float64  `json:"degradation_seconds"`
	PredictedCliffAge  int      `json:"predicted_cliff_age"`
	LapsUntilCliff     int      `json:"laps_until_cliff"`
}

// PaceSnapshot summarizes lap-time trends for the focused driver.
type PaceSnapshot struct {
	CurrentLapTime float64 `json:"current_lap_time"`
	AvgLapTime     float64 `json:"avg_lap_time"`
	AvgLast5       float64 `json:"avg_last_5"`
	BestLap        float64 `json:"best_lap"`
	WorstLap       float64 `json:"worst_lap"`
	// Trend is "degrading", "improving" or "stable" over the rolling window.
	Trend string `json:"trend"`
}

// PositionSnapshot summarizes track position for the focused driver.
type PositionSnapshot struct {
	Position  int      `json:"position"`
	GapAhead  *float64 `json:"gap_ahead,omitempty"`
	GapBehind *float64 `json:"gap_behind,omitempty"`
	Trend     string   `json:"trend"`
}

// CompetitorInfo is one nearby car as last observed.
type CompetitorInfo struct {
	Driver   string   `json:"driver"`
	Position int      `json:"position"`
	LapTime  float64  `json:"lap_time"`
	TireAge  int      `json:"tire_age"`
	Compound Compound `json:"compound"`
}

// CompetitorSnapshot summarizes the cars around the focused driver: threats
// are cars behind on fresh tires, opportunities are cars ahead on worn tires.
type CompetitorSnapshot struct {
	Nearby        []CompetitorInfo `json:"nearby"`
	Threats       []CompetitorInfo `json:"threats,omitempty"`
	Opportunities []CompetitorInfo `json:"opportunities,omitempty"`
}

// RaceContext bundles the four agent snapshots handed to the coordinator.
type RaceContext struct {
	Tire       TireSnapshot       `json:"tire"`
	Pace       PaceSnapshot       `json:"pace"`
	Position   PositionSnapshot   `json:"position"`
	Competitor CompetitorSnapshot `json:"competitor"`
}
