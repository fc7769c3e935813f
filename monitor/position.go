package monitor

import (
	"fmt"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
)

// positionState remembers the last known position and a short gap history
// for the closing-rate check.
type positionState struct {
	lastPosition int        // 0 until first lap seen
	gapAhead     []*float64 // last 3 gap-ahead samples, oldest first
	positions    []int      // last 5 positions for the trend
	lastGapA     *float64
	lastGapB     *float64
}

// PositionAgent watches track position and the gaps to the cars around.
// A position change is always critical. A sub-second gap in either direction
// is an overtake-zone threat regardless of position, so it is checked before
// the podium close-racing rule.
type PositionAgent struct {
	cfg   config.Config
	state positionState
}

// NewPositionAgent constructs a position monitor with the given thresholds.
func NewPositionAgent(cfg config.Config) *PositionAgent {
	return &PositionAgent{cfg: cfg}
}

// Name implements Agent.
func (a *PositionAgent) Name() string { return "position" }

// Analyze implements Agent.
func (a *PositionAgent) Analyze(own core.LapRecord, _ []core.LapRecord) []core.Event {
	next, events := stepPosition(a.cfg, a.state, own)
	a.state = next
	return events
}

func stepPosition(cfg config.Config, st positionState, own core.LapRecord) (positionState, []core.Event) {
	var events []core.Event
	lap := own.Lap
	gapA, okA := core.Gap(own.GapAhead)
	gapB, okB := core.Gap(own.GapBehind)

	switch {
	case st.lastPosition != 0 && own.Position != st.lastPosition:
		change := st.lastPosition - own.Position // positive = gained
		events = append(events, core.NewEvent(lap, core.EventPositionChange, core.UrgencyCritical, true,
			fmt.Sprintf("Position change: P%d -> P%d", st.lastPosition, own.Position),
			map[string]any{"old_position": st.lastPosition, "new_position": own.Position, "change": change}))

	case (okA && gapA < cfg.ProximityGapSeconds) || (okB && gapB < cfg.ProximityGapSeconds):
		events = append(events, core.NewEvent(lap, core.EventProximityThreat, core.UrgencyCritical, true,
			fmt.Sprintf("Overtake-zone proximity at P%d", own.Position),
			map[string]any{"position": own.Position, "gap_ahead": own.GapAhead, "gap_behind": own.GapBehind}))

	case own.Position <= 3 && ((okA && gapA < cfg.CloseRacingGapSeconds) || (okB && gapB < cfg.CloseRacingGapSeconds)):
		events = append(events, core.NewEvent(lap, core.EventCloseRacing, core.UrgencyHigh, true,
			fmt.Sprintf("Close racing: P%d with gaps under %.1fs", own.Position, cfg.CloseRacingGapSeconds),
			map[string]any{"position": own.Position, "gap_ahead": own.GapAhead, "gap_behind": own.GapBehind}))
	}

	// Closing on the car ahead: compare with the gap two laps back.
	if okA && len(st.gapAhead) >= 2 {
		if prev, ok := core.Gap(st.gapAhead[0]); ok {
			closed := prev - gapA
			if closed > cfg.GapClosingDelta {
				events = append(events, core.NewEvent(lap, core.EventGapClosing, core.UrgencyHigh, true,
					fmt.Sprintf("Closing on car ahead: gap down %.1fs in two laps", closed),
					map[string]any{"gap_ahead": gapA, "gap_closed": closed}))
			}
		}
	}

	if len(events) == 0 {
		events = append(events, core.NewEvent(lap, core.EventPositionUpdate, core.UrgencyLow, false,
			fmt.Sprintf("Holding P%d", own.Position),
			map[string]any{"position": own.Position, "gap_ahead": own.GapAhead, "gap_behind": own.GapBehind}))
	}

	st.lastPosition = own.Position
	st.lastGapA = own.GapAhead
	st.lastGapB = own.GapBehind
	st.gapAhead = append(st.gapAhead, own.GapAhead)
	if len(st.gapAhead) > 3 {
		st.gapAhead = st.gapAhead[len(st.gapAhead)-3:]
	}
	st.positions = append(st.positions, own.Position)
	if len(st.positions) > 5 {
		st.positions = st.positions[len(st.positions)-5:]
	}
	return st, events
}

// Snapshot returns the position context for the coordinator.
func (a *PositionAgent) Snapshot() core.PositionSnapshot {
	st := a.state
	trend := "stable"
	if len(st.positions) >= 2 {
		first, last := st.positions[0], st.positions[len(st.positions)-1]
		switch {
		case last < first:
			trend = "improving"
		case last > first:
			trend = "declining"
		}
	}
	return core.PositionSnapshot{
		Position:  st.lastPosition,
		GapAhead:  st.lastGapA,
		GapBehind: st.lastGapB,
		Trend:     trend,
	}
}
