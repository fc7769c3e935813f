package monitor

import (
	"fmt"
	"sort"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
)

// competitorObs is the last recorded observation of one rival car.
type competitorObs struct {
	lap      int
	position int
	lapTime  float64
	tireAge  int
	compound core.Compound
}

// competitorState tracks rival observations plus the periodic-check cooldown.
type competitorState struct {
	observed    map[string]competitorObs
	ownPosition int
	lastCallLap int
}

// Tire-age boundaries for the threat/opportunity classification in Snapshot.
const (
	freshTireAge = 10
	wornTireAge  = 30
)

// CompetitorAgent watches the cars around the focused driver: rivals within
// two positions, widened to include P3-P5 when running in the podium places
// to catch mid-pack strategic threats. Rival pit stops are critical
// (undercut/overcut exposure); a sustained pace advantage is high.
type CompetitorAgent struct {
	cfg   config.Config
	state competitorState
}

// NewCompetitorAgent constructs a competitor monitor with the given thresholds.
func NewCompetitorAgent(cfg config.Config) *CompetitorAgent {
	return &CompetitorAgent{cfg: cfg, state: competitorState{observed: map[string]competitorObs{}}}
}

// Name implements Agent.
func (a *CompetitorAgent) Name() string { return "competitor" }

// tracked reports whether a rival position is strategically relevant to ours.
func tracked(ownPos, rivalPos int) bool {
	if rivalPos >= ownPos-2 && rivalPos <= ownPos+2 {
		return true
	}
	// Podium runners also watch P3-P5 for mid-pack threats.
	return ownPos <= 3 && rivalPos >= 3 && rivalPos <= 5
}

// Analyze implements Agent.
func (a *CompetitorAgent) Analyze(own core.LapRecord, field []core.LapRecord) []core.Event {
	next, events := stepCompetitor(a.cfg, a.state, own, field)
	a.state = next
	return events
}

func stepCompetitor(cfg config.Config, st competitorState, own core.LapRecord, field []core.LapRecord) (competitorState, []core.Event) {
	var pitEvents, paceEvents []core.Event
	lap := own.Lap
	if st.observed == nil {
		st.observed = map[string]competitorObs{}
	}

	for _, rival := range field {
		if rival.Driver == own.Driver {
			continue
		}

		prev, seen := st.observed[rival.Driver]
		st.observed[rival.Driver] = competitorObs{
			lap:      rival.Lap,
			position: rival.Position,
			lapTime:  rival.LapTimeSeconds,
			tireAge:  rival.TireAge,
			compound: rival.Compound,
		}

		if !tracked(own.Position, rival.Position) {
			continue
		}

		if seen && (rival.TireAge < prev.tireAge-cfg.PitAgeResetDrop || rival.Compound != prev.compound) {
			pitEvents = append(pitEvents, core.NewEvent(lap, core.EventCompetitorPit, core.UrgencyCritical, true,
				fmt.Sprintf("%s (P%d) just pitted, undercut/overcut exposure", rival.Driver, rival.Position),
				map[string]any{"driver": rival.Driver, "position": rival.Position, "new_tire_age": rival.TireAge, "compound": string(rival.Compound)}))
			continue
		}

		paceDelta := own.LapTimeSeconds - rival.LapTimeSeconds
		if paceDelta >= cfg.CompetitorPaceDelta {
			paceEvents = append(paceEvents, core.NewEvent(lap, core.EventCompetitorFaster, core.UrgencyHigh, true,
				fmt.Sprintf("%s (P%d) is %.1fs/lap faster", rival.Driver, rival.Position, paceDelta),
				map[string]any{"driver": rival.Driver, "position": rival.Position, "pace_delta": paceDelta}))
		}
	}

	var events []core.Event
	switch {
	case len(pitEvents) > 0:
		events = pitEvents
	case len(paceEvents) > 0:
		events = paceEvents
	case lap-st.lastCallLap >= cfg.PeriodicCompetitorLaps:
		events = append(events, core.NewEvent(lap, core.EventPeriodicCompetitorCheck, core.UrgencyMedium, true,
			"Periodic competitor analysis", nil))
	}

	st.ownPosition = own.Position
	if anyCallAI(events) {
		st.lastCallLap = lap
	}
	return st, events
}

// Snapshot returns the competitor context for the coordinator: tracked cars
// sorted by position, threats behind on fresh tires, opportunities ahead on
// worn tires.
func (a *CompetitorAgent) Snapshot() core.CompetitorSnapshot {
	st := a.state
	snap := core.CompetitorSnapshot{}
	if st.ownPosition == 0 {
		return snap
	}

	type entry struct {
		driver string
		obs    competitorObs
	}
	var entries []entry
	for d, o := range st.observed {
		if tracked(st.ownPosition, o.position) {
			entries = append(entries, entry{driver: d, obs: o})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].obs.position < entries[j].obs.position })

	for _, e := range entries {
		info := core.CompetitorInfo{
			Driver:   e.driver,
			Position: e.obs.position,
			LapTime:  e.obs.lapTime,
			TireAge:  e.obs.tireAge,
			Compound: e.obs.compound,
		}
		snap.Nearby = append(snap.Nearby, info)
		if e.obs.position > st.ownPosition && e.obs.tireAge < freshTireAge {
			snap.Threats = append(snap.Threats, info)
		}
		if e.obs.position < st.ownPosition && e.obs.tireAge > wornTireAge {
			snap.Opportunities = append(snap.Opportunities, info)
		}
	}
	return snap
}
