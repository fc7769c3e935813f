// Package reasoning defines the contract with the external reasoning service:
// the structured request assembled by the coordinator, the verdict shape the
// service must return, error classification for retries and a retry policy
// with an injectable clock. Concrete providers live in the anthropic and
// openai subpackages; MockService serves tests.
package reasoning

import (
	"context"

	"github.com/racelab/pitwall/core"
)

// EventSummary is the wire form of a trigger event inside a request, most
// urgent first.
type EventSummary struct {
	Type    core.EventType `json:"type"`
	Urgency core.Urgency   `json:"urgency"`
	Message string         `json:"message"`
}

// Request is the single structured request the coordinator assembles per
// invocation. Two triggers firing on the same lap merge into one request,
// never two calls.
type Request struct {
	Lap        int                     `json:"lap"`
	TotalLaps  int                     `json:"total_laps"`
	Driver     string                  `json:"driver"`
	Events     []EventSummary          `json:"events"`
	Tire       core.TireSnapshot       `json:"tire"`
	Pace       core.PaceSnapshot       `json:"pace"`
	Position   core.PositionSnapshot   `json:"position"`
	Competitor core.CompetitorSnapshot `json:"competitor"`
}

// Summarize converts sorted arbiter events into their request form.
func Summarize(events []core.Event) []EventSummary {
	out := make([]EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, EventSummary{Type: e.Type, Urgency: e.Urgency, Message: e.Message})
	}
	return out
}

// Verdict is the response shape expected from the reasoning service.
type Verdict struct {
	Consensus          core.Consensus          `json:"consensus"`
	RecommendationType core.RecommendationType `json:"recommendation_type"`
	PitWindow          []int                   `json:"pit_window"`
	TargetCompound     *core.Compound          `json:"target_compound"`
	DriverInstruction  string                  `json:"driver_instruction"`
	PitCrewInstruction string                  `json:"pit_crew_instruction"`
	Reasoning          string                  `json:"reasoning"`
	Urgency            core.Urgency            `json:"urgency"`
	Confidence         float64                 `json:"confidence"`
	KeyEvents          []string                `json:"key_events"`
}

// Info describes a service implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Service is the minimal interface the coordinator drives. Evaluate must
// respect ctx cancellation; the coordinator bounds every call with a timeout
// and abandons the call rather than blocking lap progression.
type Service interface {
	Evaluate(ctx context.Context, req Request) (*Verdict, error)
	Info() Info
}
