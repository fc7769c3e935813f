package core

import "fmt"

// Urgency is the tier attached to every trigger event. The ordering
// CRITICAL > HIGH > MEDIUM > LOW governs whether an event alone, or only in
// combination, justifies a recommendation refresh.
type Urgency string

const (
	// UrgencyCritical events always justify invoking the reasoning service.
	UrgencyCritical Urgency = "CRITICAL"
	// UrgencyHigh events invoke in combination, or alone when flagged call-AI.
	UrgencyHigh Urgency = "HIGH"
	// UrgencyMedium marks periodic checks that fire only on quiet laps.
	UrgencyMedium Urgency = "MEDIUM"
	// UrgencyLow marks display-only updates that never trigger the coordinator.
	UrgencyLow Urgency = "LOW"
)

// Rank returns the sort rank of the urgency, lowest rank first. An unrecognized
// urgency is a programming defect in the emitting agent, not a runtime
// condition, so Rank panics rather than returning a sentinel.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		panic(fmt.Sprintf("core: unrecognized urgency %q", string(u)))
	}
}
