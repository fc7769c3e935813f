package strategy

import (
	"fmt"

	"github.com/racelab/pitwall/core"
)

// FallbackConfidence is fixed below any live verdict to signal degraded
// quality to downstream consumers.
const FallbackConfidence = 0.4

// Event families for the consensus rule: tire/pace events argue about the
// stop, track events argue about position on the road.
var pitFamily = map[core.EventType]bool{
	core.EventPitStop:                 true,
	core.EventTireCliff:               true,
	core.EventVeryOldTires:            true,
	core.EventOldTires:                true,
	core.EventPaceCollapse:            true,
	core.EventDegradationAccelerating: true,
	core.EventPeriodicTireCheck:       true,
}

var trackFamily = map[core.EventType]bool{
	core.EventPositionChange:          true,
	core.EventProximityThreat:         true,
	core.EventCloseRacing:             true,
	core.EventGapClosing:              true,
	core.EventCompetitorPit:           true,
	core.EventCompetitorFaster:        true,
	core.EventPeriodicCompetitorCheck: true,
}

// Fallback synthesizes a recommendation purely from the local event list and
// agent snapshots. Two identical event sets on different laps produce the
// same recommendation type and urgency, differing only in the lap stamp.
func Fallback(lap int, events []core.Event, raceCtx core.RaceContext) core.Recommendation {
	rec := core.Recommendation{
		ID:            core.NewRecommendationID(),
		Consensus:     fallbackConsensus(events),
		Type:          fallbackType(events),
		Urgency:       worstUrgency(events),
		Confidence:    FallbackConfidence,
		KeyEvents:     keyEvents(events),
		ProducedAtLap: lap,
		Source:        core.SourceFallback,
	}

	switch rec.Type {
	case core.RecommendPitNow:
		rec.PitWindow = &core.PitWindow{Start: lap, End: lap + 1}
		rec.TargetCompound = nextCompound(raceCtx.Tire.Compound)
		rec.DriverInstruction = "Box this lap, tires are done."
		rec.PitCrewInstruction = "Prepare for an immediate stop."
	case core.RecommendPitSoon:
		rec.PitWindow = pitWindowFromCliff(lap, raceCtx.Tire)
		rec.TargetCompound = nextCompound(raceCtx.Tire.Compound)
		rec.DriverInstruction = "Manage the tires, stop is coming up."
		rec.PitCrewInstruction = "Stand by for a stop within the window."
	case core.RecommendPush:
		rec.DriverInstruction = "Push now, use the pace while it lasts."
		rec.PitCrewInstruction = "No stop planned, monitor rivals."
	case core.RecommendDefend:
		rec.DriverInstruction = "Defend position, cover the car behind."
		rec.PitCrewInstruction = "Hold strategy, watch for the undercut."
	default:
		rec.DriverInstruction = "Stay out, maintain current pace."
		rec.PitCrewInstruction = "No action required."
	}

	rec.Reasoning = fallbackReasoning(events)
	return rec
}

// worstUrgency mirrors the worst event present; a quiet lap is LOW.
func worstUrgency(events []core.Event) core.Urgency {
	worst := core.UrgencyLow
	for _, e := range events {
		if e.Urgency.Rank() < worst.Rank() {
			worst = e.Urgency
		}
	}
	return worst
}

// fallbackType maps the most significant event to an action, scanning in
// fixed precedence order so the result is independent of event ordering.
func fallbackType(events []core.Event) core.RecommendationType {
	has := map[core.EventType]*core.Event{}
	for i := range events {
		if _, ok := has[events[i].Type]; !ok {
			has[events[i].Type] = &events[i]
		}
	}

	switch {
	case has[core.EventTireCliff] != nil, has[core.EventPaceCollapse] != nil:
		return core.RecommendPitNow
	case has[core.EventVeryOldTires] != nil, has[core.EventOldTires] != nil,
		has[core.EventDegradationAccelerating] != nil:
		return core.RecommendPitSoon
	case has[core.EventProximityThreat] != nil, has[core.EventCloseRacing] != nil,
		has[core.EventCompetitorFaster] != nil:
		return core.RecommendDefend
	case has[core.EventPitStop] != nil, has[core.EventCompetitorPit] != nil,
		has[core.EventGapClosing] != nil:
		return core.RecommendPush
	case has[core.EventPositionChange] != nil:
		if e := has[core.EventPositionChange]; e.Payload != nil {
			if change, ok := e.Payload["change"].(int); ok && change < 0 {
				return core.RecommendDefend
			}
		}
		return core.RecommendPush
	default:
		return core.RecommendStayOut
	}
}

// fallbackConsensus classifies the firing signals: quiet or single-signal
// laps are CLEAR, agreement within one family is UNANIMOUS, tire and track
// families pulling at once is CONFLICTED.
func fallbackConsensus(events []core.Event) core.Consensus {
	var pit, track int
	for _, e := range events {
		if !e.CallAI {
			continue
		}
		if pitFamily[e.Type] {
			pit++
		}
		if trackFamily[e.Type] {
			track++
		}
	}
	switch {
	case pit > 0 && track > 0:
		return core.ConsensusConflicted
	case pit >= 2 || track >= 2:
		return core.ConsensusUnanimous
	default:
		return core.ConsensusClear
	}
}

func keyEvents(events []core.Event) []string {
	var keys []string
	for _, e := range events {
		if e.Urgency == core.UrgencyCritical || e.Urgency == core.UrgencyHigh {
			keys = append(keys, e.Message)
		}
	}
	return keys
}

func fallbackReasoning(events []core.Event) string {
	if len(events) == 0 {
		return "No significant events; holding the current plan."
	}
	return fmt.Sprintf("Local synthesis from %d event(s); most urgent: %s.", len(events), events[0].Message)
}

// pitWindowFromCliff derives a window from the predicted cliff, clamped so it
// never opens in the past.
func pitWindowFromCliff(lap int, tire core.TireSnapshot) *core.PitWindow {
	if tire.PredictedCliffAge == 0 {
		return nil
	}
	lapsLeft := tire.LapsUntilCliff
	if lapsLeft < 0 {
		lapsLeft = 0
	}
	w := &core.PitWindow{Start: lap + lapsLeft - 2, End: lap + lapsLeft}
	if w.Start < lap {
		w.Start = lap
	}
	if w.End < w.Start {
		w.End = w.Start
	}
	return w
}

// nextCompound is the deterministic compound choice for a fallback stop.
func nextCompound(current core.Compound) *core.Compound {
	var next core.Compound
	switch current {
	case core.CompoundSoft:
		next = core.CompoundMedium
	case core.CompoundMedium:
		next = core.CompoundHard
	case core.CompoundHard:
		next = core.CompoundMedium
	default:
		return nil
	}
	return &next
}
