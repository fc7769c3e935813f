// Package monitor implements the four per-lap monitoring agents: tire, pace,
// position and competitor. Each agent owns its state exclusively and derives
// zero or more trigger events from the current lap record at zero marginal
// cost; the expensive reasoning happens elsewhere, only when the arbiter
// decides the events justify it.
//
// Agents are single-writer/single-reader: a Pool evaluates the four
// concurrently within one lap but joins before returning, so no agent state
// is ever read and written for the same lap at once.
package monitor

import (
	"sync"

	"github.com/racelab/pitwall/core"
)

// Agent is one per-lap monitor. Analyze consumes the focused driver's lap
// record plus the whole field for the same lap and returns the trigger events
// it detected, mutating only its own state.
type Agent interface {
	Name() string
	Analyze(own core.LapRecord, field []core.LapRecord) []core.Event
}

// Pool evaluates the four monitor agents for one lap. The agents are
// independent of each other within a lap, so the pool fans them out on
// goroutines and joins before returning; event order in the result is fixed
// (tire, pace, position, competitor) regardless of completion order.
type Pool struct {
	tire       *TireAgent
	pace       *PaceAgent
	position   *PositionAgent
	competitor *CompetitorAgent
}

// NewPool assembles a pool over freshly constructed agents.
func NewPool(tire *TireAgent, pace *PaceAgent, position *PositionAgent, competitor *CompetitorAgent) *Pool {
	return &Pool{tire: tire, pace: pace, position: position, competitor: competitor}
}

// Analyze runs all four agents for one lap and returns their combined events.
func (p *Pool) Analyze(own core.LapRecord, field []core.LapRecord) []core.Event {
	agents := []Agent{p.tire, p.pace, p.position, p.competitor}
	results := make([][]core.Event, len(agents))

	var wg sync.WaitGroup
	for i, a := range agents {
		wg.Add(1)
		go func(slot int, agent Agent) {
			defer wg.Done()
			results[slot] = agent.Analyze(own, field)
		}(i, a)
	}
	wg.Wait()

	var events []core.Event
	for _, r := range results {
		events = append(events, r...)
	}
	return events
}

// Context returns the aggregated snapshots of all four agents. Call only
// between ticks; snapshots read agent state.
func (p *Pool) Context() core.RaceContext {
	return core.RaceContext{
		Tire:       p.tire.Snapshot(),
		Pace:       p.pace.Snapshot(),
		Position:   p.position.Snapshot(),
		Competitor: p.competitor.Snapshot(),
	}
}

// anyCallAI reports whether any event requests reasoning-service attention.
func anyCallAI(events []core.Event) bool {
	for _, e := range events {
		if e.CallAI {
			return true
		}
	}
	return false
}
