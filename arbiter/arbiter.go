// Package arbiter decides, lap by lap, whether the events the monitor agents
// emitted justify the cost of invoking the external reasoning service.
// The decision is deterministic and derived purely from the lap's event set.
package arbiter

import (
	"fmt"
	"sort"

	"github.com/racelab/pitwall/core"
)

// Arbiter applies the priority decision rule to one lap's events.
type Arbiter struct{}

// New constructs an arbiter.
func New() *Arbiter { return &Arbiter{} }

// Decide sorts the events most urgent first and applies the rule:
//
//  1. any CRITICAL event invokes;
//  2. two or more HIGH events invoke;
//  3. a single HIGH event that requests attention invokes (very old tires
//     must escalate every lap even when nothing else fires);
//  4. a MEDIUM event that requests attention invokes (periodic checks only
//     fire on otherwise quiet laps, by agent construction);
//  5. otherwise the cached recommendation remains current.
//
// An event with an unrecognized urgency panics via Urgency.Rank: that is a
// programming defect in the emitting agent, not a runtime condition.
func (a *Arbiter) Decide(events []core.Event) core.ArbitrationDecision {
	sorted := make([]core.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Urgency.Rank() < sorted[j].Urgency.Rank()
	})

	if len(sorted) == 0 {
		return core.ArbitrationDecision{Invoke: false, Reason: "no events"}
	}

	var highCount int
	var highCallAI, mediumCallAI bool
	for _, e := range sorted {
		switch e.Urgency {
		case core.UrgencyCritical:
			return core.ArbitrationDecision{
				Invoke: true,
				Reason: fmt.Sprintf("critical event: %s", e.Type),
				Events: sorted,
			}
		case core.UrgencyHigh:
			highCount++
			if e.CallAI {
				highCallAI = true
			}
		case core.UrgencyMedium:
			if e.CallAI {
				mediumCallAI = true
			}
		case core.UrgencyLow:
			// Display-only.
		default:
			panic(fmt.Sprintf("arbiter: unrecognized urgency %q on event %s", e.Urgency, e.Type))
		}
	}

	switch {
	case highCount >= 2:
		return core.ArbitrationDecision{
			Invoke: true,
			Reason: fmt.Sprintf("%d high urgency events", highCount),
			Events: sorted,
		}
	case highCallAI:
		return core.ArbitrationDecision{
			Invoke: true,
			Reason: "high urgency event requesting analysis",
			Events: sorted,
		}
	case mediumCallAI:
		return core.ArbitrationDecision{
			Invoke: true,
			Reason: "periodic check due",
			Events: sorted,
		}
	default:
		return core.ArbitrationDecision{
			Invoke: false,
			Reason: "no event warrants analysis",
			Events: sorted,
		}
	}
}
