package monitor

import (
	"fmt"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
)

// paceState carries the rolling window of recent lap times plus aggregate
// stats for the snapshot.
type paceState struct {
	window []float64 // last cfg.PaceWindowLaps lap times, oldest first
	count  int
	sum    float64
	best   float64
	worst  float64
}

// PaceAgent watches lap-time trends: a sharp pace collapse over the rolling
// window is critical, three consecutively slower laps signal accelerating
// degradation, and quiet laps produce a display-only pace update.
type PaceAgent struct {
	cfg   config.Config
	state paceState
}

// NewPaceAgent constructs a pace monitor with the given thresholds.
func NewPaceAgent(cfg config.Config) *PaceAgent {
	return &PaceAgent{cfg: cfg}
}

// Name implements Agent.
func (a *PaceAgent) Name() string { return "pace" }

// Analyze implements Agent.
func (a *PaceAgent) Analyze(own core.LapRecord, _ []core.LapRecord) []core.Event {
	next, events := stepPace(a.cfg, a.state, own)
	a.state = next
	return events
}

func stepPace(cfg config.Config, st paceState, own core.LapRecord) (paceState, []core.Event) {
	lt := own.LapTimeSeconds
	st.window = append(st.window, lt)
	if len(st.window) > cfg.PaceWindowLaps {
		st.window = st.window[len(st.window)-cfg.PaceWindowLaps:]
	}
	st.count++
	st.sum += lt
	if st.best == 0 || lt < st.best {
		st.best = lt
	}
	if lt > st.worst {
		st.worst = lt
	}

	var events []core.Event

	// Pace collapse: recent pair vs the pair at the start of the window.
	if len(st.window) >= cfg.PaceWindowLaps {
		early := (st.window[0] + st.window[1]) / 2
		recent := (st.window[len(st.window)-1] + st.window[len(st.window)-2]) / 2
		delta := recent - early
		if delta > cfg.PaceCollapseDelta {
			events = append(events, core.NewEvent(own.Lap, core.EventPaceCollapse, core.UrgencyCritical, true,
				fmt.Sprintf("Pace collapse: +%.1fs over %d laps", delta, cfg.PaceWindowLaps),
				map[string]any{"delta": delta, "avg_early": early, "avg_recent": recent}))
		}
	}

	// Accelerating degradation: every one of the last three transitions slower.
	if len(st.window) >= 4 {
		n := len(st.window)
		slower := true
		deltas := make([]float64, 0, 3)
		for i := n - 3; i < n; i++ {
			d := st.window[i] - st.window[i-1]
			deltas = append(deltas, d)
			if d <= 0 {
				slower = false
			}
		}
		if slower {
			events = append(events, core.NewEvent(own.Lap, core.EventDegradationAccelerating, core.UrgencyHigh, true,
				"Pace degrading consistently over last 3 laps",
				map[string]any{"deltas": deltas}))
		}
	}

	// Quiet lap: display-only update, never invokes the coordinator.
	if len(events) == 0 {
		events = append(events, core.NewEvent(own.Lap, core.EventPaceUpdate, core.UrgencyLow, false,
			fmt.Sprintf("Lap time %.2fs", lt),
			map[string]any{"lap_time": lt, "avg_window": avg(st.window)}))
	}

	return st, events
}

func avg(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Snapshot returns the pace context for the coordinator.
func (a *PaceAgent) Snapshot() core.PaceSnapshot {
	st := a.state
	if st.count == 0 {
		return core.PaceSnapshot{Trend: "stable"}
	}

	trend := "stable"
	if len(st.window) >= 2 {
		d := st.window[len(st.window)-1] - st.window[0]
		switch {
		case d > 0:
			trend = "degrading"
		case d < 0:
			trend = "improving"
		}
	}

	return core.PaceSnapshot{
		CurrentLapTime: st.window[len(st.window)-1],
		AvgLapTime:     st.sum / float64(st.count),
		AvgLast5:       avg(st.window),
		BestLap:        st.best,
		WorstLap:       st.worst,
		Trend:          trend,
	}
}
