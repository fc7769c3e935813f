package monitor

import (
	"fmt"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/tirewear"
)

// tireState is the tire agent's exclusive memory, threaded through each step.
type tireState struct {
	lastCompound core.Compound // empty until first lap seen
	lastTireAge  int
	lastCallLap  int // last lap this agent emitted a call-AI event
}

// TireAgent watches compound changes, degradation and tire age. Pit stops
// always warrant fresh analysis; old tires escalate on a cooldown that
// tightens as the tires age, and a periodic check fires on quiet laps.
type TireAgent struct {
	cfg   config.Config
	state tireState
}

// NewTireAgent constructs a tire monitor with the given thresholds.
func NewTireAgent(cfg config.Config) *TireAgent {
	return &TireAgent{cfg: cfg}
}

// Name implements Agent.
func (a *TireAgent) Name() string { return "tire" }

// Analyze implements Agent.
func (a *TireAgent) Analyze(own core.LapRecord, _ []core.LapRecord) []core.Event {
	next, events := stepTire(a.cfg, a.state, own)
	a.state = next
	return events
}

// stepTire is the pure update function: (state, lap record) -> (state, events).
func stepTire(cfg config.Config, st tireState, own core.LapRecord) (tireState, []core.Event) {
	var events []core.Event
	lap := own.Lap
	sinceCall := lap - st.lastCallLap

	deg := degradation(cfg, own)

	pitByCompound := st.lastCompound != "" && own.Compound != st.lastCompound
	pitByAgeReset := st.lastCompound != "" && own.TireAge < st.lastTireAge-cfg.PitAgeResetDrop

	switch {
	case pitByCompound:
		events = append(events, core.NewEvent(lap, core.EventPitStop, core.UrgencyCritical, true,
			fmt.Sprintf("Pit stop: %s -> %s", st.lastCompound, own.Compound),
			map[string]any{"old_compound": string(st.lastCompound), "new_compound": string(own.Compound)}))

	case pitByAgeReset:
		events = append(events, core.NewEvent(lap, core.EventPitStop, core.UrgencyCritical, true,
			fmt.Sprintf("Pit stop detected: tire age reset to %d", own.TireAge),
			map[string]any{"compound": string(own.Compound), "new_age": own.TireAge}))

	case deg > cfg.CliffDegradationSeconds && own.TireAge > cfg.CliffMinTireAge:
		cliffAge, _ := tirewear.PredictCliffLap(own.Compound, cfg.CliffDegradationSeconds)
		events = append(events, core.NewEvent(lap, core.EventTireCliff, core.UrgencyCritical, true,
			fmt.Sprintf("Tire cliff imminent: +%.1fs degradation at %d laps", deg, own.TireAge),
			map[string]any{"degradation": deg, "age": own.TireAge, "predicted_cliff_age": cliffAge}))

	case own.TireAge > cfg.VeryOldTireAge:
		// No cooldown: very old tires escalate every lap.
		events = append(events, core.NewEvent(lap, core.EventVeryOldTires, core.UrgencyHigh, true,
			fmt.Sprintf("Very old tires: %d laps on %s", own.TireAge, own.Compound),
			map[string]any{"age": own.TireAge, "compound": string(own.Compound), "degradation": deg}))

	case own.TireAge > cfg.OldTireAge && sinceCall >= cfg.OldTireCooldownLaps:
		events = append(events, core.NewEvent(lap, core.EventOldTires, core.UrgencyHigh, true,
			fmt.Sprintf("Old tires: %d laps on %s", own.TireAge, own.Compound),
			map[string]any{"age": own.TireAge, "compound": string(own.Compound), "degradation": deg}))

	case sinceCall >= cfg.PeriodicTireLaps:
		events = append(events, core.NewEvent(lap, core.EventPeriodicTireCheck, core.UrgencyMedium, true,
			"Periodic tire status check",
			map[string]any{"age": own.TireAge, "compound": string(own.Compound)}))
	}

	st.lastCompound = own.Compound
	st.lastTireAge = own.TireAge
	if anyCallAI(events) {
		st.lastCallLap = lap
	}
	return st, events
}

func degradation(cfg config.Config, own core.LapRecord) float64 {
	temp := own.TrackTempC
	if temp == 0 {
		temp = cfg.DefaultTrackTempC
	}
	deg, err := tirewear.Degradation(own.Compound, own.TireAge, temp)
	if err != nil {
		// Compound was validated before the tick; an error here means age < 0
		// slipped through, which validation also rejects.
		return 0
	}
	return deg
}

// Snapshot returns the tire context for the coordinator.
func (a *TireAgent) Snapshot() core.TireSnapshot {
	if a.state.lastCompound == "" {
		return core.TireSnapshot{}
	}

	deg, _ := tirewear.Degradation(a.state.lastCompound, a.state.lastTireAge, a.cfg.DefaultTrackTempC)
	cliffAge, _ := tirewear.PredictCliffLap(a.state.lastCompound, a.cfg.CliffDegradationSeconds)

	return core.TireSnapshot{
		Compound:           a.state.lastCompound,
		TireAge:            a.state.lastTireAge,
		DegradationSeconds: deg,
		PredictedCliffAge:  cliffAge,
		LapsUntilCliff:     cliffAge - a.state.lastTireAge,
	}
}
