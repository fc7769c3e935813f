package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
)

func newPool(cfg config.Config) *Pool {
	return NewPool(
		NewTireAgent(cfg),
		NewPaceAgent(cfg),
		NewPositionAgent(cfg),
		NewCompetitorAgent(cfg),
	)
}

func TestPool_FixedEventOrder(t *testing.T) {
	cfg := config.Default()
	pool := newPool(cfg)

	// Quiet lap: pace and position both emit display-only updates, and they
	// must come back in agent order no matter which goroutine finished first.
	for i := 0; i < 20; i++ {
		p := newPool(cfg)
		events := p.Analyze(ownLap(1, 5, 98.0), nil)
		require.Len(t, events, 2)
		assert.Equal(t, core.EventPaceUpdate, events[0].Type)
		assert.Equal(t, core.EventPositionUpdate, events[1].Type)
	}

	events := pool.Analyze(ownLap(1, 5, 98.0), nil)
	assert.Len(t, events, 2)
}

func TestPool_CombinesAgentEvents(t *testing.T) {
	cfg := config.Default()
	pool := newPool(cfg)

	// Old softs past the cliff plus a rival on fresh rubber: tire critical
	// first, then the competitor pace event.
	own := rivalLap(21, "VER", 2, core.CompoundSoft, 20, 99.5)
	events := pool.Analyze(own, []core.LapRecord{
		own,
		rivalLap(21, "LEC", 3, core.CompoundSoft, 2, 97.0),
	})

	types := eventTypes(events)
	assert.Contains(t, types, core.EventTireCliff)
	assert.Contains(t, types, core.EventCompetitorFaster)
	assert.Less(t, indexOf(types, core.EventTireCliff), indexOf(types, core.EventCompetitorFaster))
}

func indexOf(types []core.EventType, want core.EventType) int {
	for i, typ := range types {
		if typ == want {
			return i
		}
	}
	return -1
}

func TestPool_Context(t *testing.T) {
	cfg := config.Default()
	pool := newPool(cfg)

	own := rivalLap(10, "VER", 2, core.CompoundMedium, 9, 98.0)
	pool.Analyze(own, []core.LapRecord{
		own,
		rivalLap(10, "LEC", 3, core.CompoundSoft, 2, 97.5),
	})

	rc := pool.Context()
	assert.Equal(t, core.CompoundMedium, rc.Tire.Compound)
	assert.Equal(t, 9, rc.Tire.TireAge)
	assert.Equal(t, 98.0, rc.Pace.CurrentLapTime)
	assert.Equal(t, 2, rc.Position.Position)
	require.Len(t, rc.Competitor.Nearby, 1)
	assert.Equal(t, "LEC", rc.Competitor.Nearby[0].Driver)
}

func TestAnyCallAI(t *testing.T) {
	assert.False(t, anyCallAI(nil))
	assert.False(t, anyCallAI([]core.Event{
		core.NewEvent(1, core.EventPaceUpdate, core.UrgencyLow, false, "m", nil),
	}))
	assert.True(t, anyCallAI([]core.Event{
		core.NewEvent(1, core.EventPaceUpdate, core.UrgencyLow, false, "m", nil),
		core.NewEvent(1, core.EventOldTires, core.UrgencyHigh, true, "m", nil),
	}))
}
