package tirewear

import (
	"fmt"
	"sort"

	"github.com/racelab/pitwall/core"
)

// Race-level constants for the stint arithmetic.
const (
	// PitTimeLossSeconds is the total cost of a stop: pit lane travel plus
	// the stationary time.
	PitTimeLossSeconds = 25.0
	// FuelLoadKg is the starting fuel load.
	FuelLoadKg = 110.0
	// SecondsPerKgFuel is the lap-time cost of carrying one kilogram of fuel.
	SecondsPerKgFuel = 0.035
)

// Base lap times per compound on fresh tires with full fuel excluded.
var baseLapTime = map[core.Compound]float64{
	core.CompoundSoft:   97.0,
	core.CompoundMedium: 97.8,
	core.CompoundHard:   98.5,
}

// Model binds the degradation curve to one race: total distance and an
// optional wear multiplier reflecting driving style (1.0 = neutral,
// aggressive > 1, conservative < 1).
type Model struct {
	totalLaps      int
	wearMultiplier float64
}

// NewModel creates a race-bound wear model. A wearMultiplier of 0 means 1.0.
func NewModel(totalLaps int, wearMultiplier float64) *Model {
	if wearMultiplier <= 0 {
		wearMultiplier = 1.0
	}
	return &Model{totalLaps: totalLaps, wearMultiplier: wearMultiplier}
}

// LapTime predicts the lap time for a given race lap, tire age and compound,
// including the fuel-burn correction (the car gets lighter and faster as the
// race progresses).
func (m *Model) LapTime(lap, tireAge int, compound core.Compound) (float64, error) {
	base, ok := baseLapTime[compound]
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidCompound, string(compound))
	}

	deg, err := Degradation(compound, tireAge, ReferenceTempC)
	if err != nil {
		return 0, err
	}

	fuelPerLap := FuelLoadKg / float64(m.totalLaps)
	fuelCorrection := fuelPerLap * SecondsPerKgFuel * float64(lap-1)

	return base + deg*m.wearMultiplier - fuelCorrection, nil
}

// StintTime sums predicted lap times from startLap to endLap inclusive,
// starting on tires of the given age.
func (m *Model) StintTime(startLap, endLap int, compound core.Compound, startAge int) (float64, error) {
	total := 0.0
	age := startAge
	for lap := startLap; lap <= endLap; lap++ {
		lt, err := m.LapTime(lap, age, compound)
		if err != nil {
			return 0, err
		}
		total += lt
		age++
	}
	return total, nil
}

// PitScenario is one candidate pit lap for a one-stop strategy, with its total
// race time and the delta to the best candidate.
type PitScenario struct {
	PitLap        int     `json:"pit_lap"`
	TotalRaceTime float64 `json:"total_race_time"`
	Stint1Time    float64 `json:"stint1_time"`
	Stint2Time    float64 `json:"stint2_time"`
	TimeVsOptimal float64 `json:"time_vs_optimal"`
}

// OptimalPitWindow evaluates every remaining pit lap for a one-stop strategy
// and returns the scenarios sorted fastest first, plus the recommended window
// (two laps either side of the optimum, clamped to the remaining race).
func (m *Model) OptimalPitWindow(currentLap int, stint1, stint2 core.Compound) ([]PitScenario, core.PitWindow, error) {
	if currentLap < 1 || currentLap >= m.totalLaps {
		return nil, core.PitWindow{}, fmt.Errorf("current lap %d outside race of %d laps", currentLap, m.totalLaps)
	}

	var scenarios []PitScenario
	for pitLap := currentLap; pitLap < m.totalLaps; pitLap++ {
		s1, err := m.StintTime(currentLap, pitLap, stint1, 1)
		if err != nil {
			return nil, core.PitWindow{}, err
		}
		s2, err := m.StintTime(pitLap+1, m.totalLaps, stint2, 1)
		if err != nil {
			return nil, core.PitWindow{}, err
		}
		scenarios = append(scenarios, PitScenario{
			PitLap:        pitLap,
			TotalRaceTime: s1 + PitTimeLossSeconds + s2,
			Stint1Time:    s1,
			Stint2Time:    s2,
		})
	}

	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].TotalRaceTime < scenarios[j].TotalRaceTime
	})

	best := scenarios[0]
	for i := range scenarios {
		scenarios[i].TimeVsOptimal = scenarios[i].TotalRaceTime - best.TotalRaceTime
	}

	window := core.PitWindow{Start: best.PitLap - 2, End: best.PitLap + 2}
	if window.Start < currentLap {
		window.Start = currentLap
	}
	if window.End > m.totalLaps-1 {
		window.End = m.totalLaps - 1
	}

	return scenarios, window, nil
}
