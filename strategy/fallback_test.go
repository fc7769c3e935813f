package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/pitwall/core"
)

func fbEvent(typ core.EventType, urgency core.Urgency, callAI bool) core.Event {
	return core.NewEvent(20, typ, urgency, callAI, string(typ), nil)
}

func tireCtx() core.RaceContext {
	return core.RaceContext{
		Tire: core.TireSnapshot{
			Compound:          core.CompoundSoft,
			TireAge:           16,
			PredictedCliffAge: 19,
			LapsUntilCliff:    3,
		},
	}
}

func TestFallback_Deterministic(t *testing.T) {
	events := []core.Event{
		fbEvent(core.EventTireCliff, core.UrgencyCritical, true),
		fbEvent(core.EventOldTires, core.UrgencyHigh, true),
	}

	a := Fallback(20, events, tireCtx())
	b := Fallback(20, events, tireCtx())

	// Same inputs, same decision; only the identifiers differ.
	assert.NotEqual(t, a.ID, b.ID)
	a.ID, b.ID = "", ""
	assert.Equal(t, a, b)
}

func TestFallback_TypeMapping(t *testing.T) {
	tests := []struct {
		name   string
		events []core.Event
		want   core.RecommendationType
	}{
		{"tire cliff", []core.Event{fbEvent(core.EventTireCliff, core.UrgencyCritical, true)}, core.RecommendPitNow},
		{"pace collapse", []core.Event{fbEvent(core.EventPaceCollapse, core.UrgencyCritical, true)}, core.RecommendPitNow},
		{"very old tires", []core.Event{fbEvent(core.EventVeryOldTires, core.UrgencyHigh, true)}, core.RecommendPitSoon},
		{"old tires", []core.Event{fbEvent(core.EventOldTires, core.UrgencyHigh, true)}, core.RecommendPitSoon},
		{"degradation accelerating", []core.Event{fbEvent(core.EventDegradationAccelerating, core.UrgencyHigh, true)}, core.RecommendPitSoon},
		{"proximity threat", []core.Event{fbEvent(core.EventProximityThreat, core.UrgencyCritical, true)}, core.RecommendDefend},
		{"close racing", []core.Event{fbEvent(core.EventCloseRacing, core.UrgencyHigh, true)}, core.RecommendDefend},
		{"rival faster", []core.Event{fbEvent(core.EventCompetitorFaster, core.UrgencyHigh, true)}, core.RecommendDefend},
		{"own pit stop", []core.Event{fbEvent(core.EventPitStop, core.UrgencyCritical, true)}, core.RecommendPush},
		{"rival pit", []core.Event{fbEvent(core.EventCompetitorPit, core.UrgencyCritical, true)}, core.RecommendPush},
		{"gap closing", []core.Event{fbEvent(core.EventGapClosing, core.UrgencyHigh, true)}, core.RecommendPush},
		{"periodic only", []core.Event{fbEvent(core.EventPeriodicTireCheck, core.UrgencyMedium, true)}, core.RecommendStayOut},
		{"no events", nil, core.RecommendStayOut},
		{"cliff beats proximity", []core.Event{
			fbEvent(core.EventProximityThreat, core.UrgencyCritical, true),
			fbEvent(core.EventTireCliff, core.UrgencyCritical, true),
		}, core.RecommendPitNow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Fallback(20, tt.events, tireCtx())
			assert.Equal(t, tt.want, rec.Type)
			assert.Equal(t, core.SourceFallback, rec.Source)
			assert.Equal(t, FallbackConfidence, rec.Confidence)
		})
	}
}

func TestFallback_PositionChangeDirection(t *testing.T) {
	gained := core.NewEvent(20, core.EventPositionChange, core.UrgencyCritical, true, "P3 -> P2",
		map[string]any{"change": 1})
	lost := core.NewEvent(20, core.EventPositionChange, core.UrgencyCritical, true, "P2 -> P3",
		map[string]any{"change": -1})

	assert.Equal(t, core.RecommendPush, Fallback(20, []core.Event{gained}, tireCtx()).Type)
	assert.Equal(t, core.RecommendDefend, Fallback(20, []core.Event{lost}, tireCtx()).Type)
}

func TestFallback_UrgencyMirrorsWorstEvent(t *testing.T) {
	rec := Fallback(20, []core.Event{
		fbEvent(core.EventOldTires, core.UrgencyHigh, true),
		fbEvent(core.EventPitStop, core.UrgencyCritical, true),
	}, tireCtx())
	assert.Equal(t, core.UrgencyCritical, rec.Urgency)

	quiet := Fallback(20, nil, tireCtx())
	assert.Equal(t, core.UrgencyLow, quiet.Urgency)
}

func TestFallback_Consensus(t *testing.T) {
	tests := []struct {
		name   string
		events []core.Event
		want   core.Consensus
	}{
		{"quiet lap", nil, core.ConsensusClear},
		{"single signal", []core.Event{fbEvent(core.EventOldTires, core.UrgencyHigh, true)}, core.ConsensusClear},
		{"tire family agrees", []core.Event{
			fbEvent(core.EventTireCliff, core.UrgencyCritical, true),
			fbEvent(core.EventPaceCollapse, core.UrgencyCritical, true),
		}, core.ConsensusUnanimous},
		{"tire and track conflict", []core.Event{
			fbEvent(core.EventTireCliff, core.UrgencyCritical, true),
			fbEvent(core.EventCloseRacing, core.UrgencyHigh, true),
		}, core.ConsensusConflicted},
		{"display events ignored", []core.Event{
			fbEvent(core.EventPaceUpdate, core.UrgencyLow, false),
			fbEvent(core.EventPositionUpdate, core.UrgencyLow, false),
		}, core.ConsensusClear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(20, tt.events, tireCtx()).Consensus)
		})
	}
}

func TestFallback_PitNowWindowAndCompound(t *testing.T) {
	rec := Fallback(20, []core.Event{fbEvent(core.EventTireCliff, core.UrgencyCritical, true)}, tireCtx())

	require.NotNil(t, rec.PitWindow)
	assert.Equal(t, core.PitWindow{Start: 20, End: 21}, *rec.PitWindow)
	require.NotNil(t, rec.TargetCompound)
	assert.Equal(t, core.CompoundMedium, *rec.TargetCompound)
	assert.NotEmpty(t, rec.DriverInstruction)
	assert.NotEmpty(t, rec.PitCrewInstruction)
}

func TestFallback_PitSoonWindowFromCliff(t *testing.T) {
	rec := Fallback(20, []core.Event{fbEvent(core.EventOldTires, core.UrgencyHigh, true)}, tireCtx())

	// Cliff is 3 laps away: window [21, 23] clamped to never open in the past.
	require.NotNil(t, rec.PitWindow)
	assert.Equal(t, core.PitWindow{Start: 21, End: 23}, *rec.PitWindow)
}

func TestFallback_PitSoonWindowClampedToNow(t *testing.T) {
	ctx := tireCtx()
	ctx.Tire.LapsUntilCliff = 0

	rec := Fallback(20, []core.Event{fbEvent(core.EventVeryOldTires, core.UrgencyHigh, true)}, ctx)
	require.NotNil(t, rec.PitWindow)
	assert.Equal(t, core.PitWindow{Start: 20, End: 20}, *rec.PitWindow)
}

func TestFallback_CompoundRotation(t *testing.T) {
	cliff := []core.Event{fbEvent(core.EventTireCliff, core.UrgencyCritical, true)}

	for _, tt := range []struct {
		current core.Compound
		next    core.Compound
	}{
		{core.CompoundSoft, core.CompoundMedium},
		{core.CompoundMedium, core.CompoundHard},
		{core.CompoundHard, core.CompoundMedium},
	} {
		ctx := tireCtx()
		ctx.Tire.Compound = tt.current
		rec := Fallback(20, cliff, ctx)
		require.NotNil(t, rec.TargetCompound, "from %s", tt.current)
		assert.Equal(t, tt.next, *rec.TargetCompound)
	}
}

func TestFallback_KeyEventsOnlySignificant(t *testing.T) {
	rec := Fallback(20, []core.Event{
		fbEvent(core.EventTireCliff, core.UrgencyCritical, true),
		fbEvent(core.EventOldTires, core.UrgencyHigh, true),
		fbEvent(core.EventPaceUpdate, core.UrgencyLow, false),
	}, tireCtx())

	assert.Equal(t, []string{"TIRE_CLIFF", "OLD_TIRES"}, rec.KeyEvents)
}
