package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/race"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "race.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func sampleTick() race.TickResult {
	compound := core.CompoundHard
	return race.TickResult{
		Lap: 24,
		Events: []core.Event{
			core.NewEvent(24, core.EventTireCliff, core.UrgencyCritical, true, "Tire cliff imminent",
				map[string]any{"age": 22}),
			core.NewEvent(24, core.EventOldTires, core.UrgencyHigh, true, "Old tires", nil),
		},
		Recommendation: core.Recommendation{
			ID:                 core.NewRecommendationID(),
			Consensus:          core.ConsensusUnanimous,
			Type:               core.RecommendPitNow,
			Urgency:            core.UrgencyCritical,
			Confidence:         0.9,
			PitWindow:          &core.PitWindow{Start: 24, End: 26},
			TargetCompound:     &compound,
			DriverInstruction:  "Box this lap.",
			PitCrewInstruction: "Hards ready.",
			Reasoning:          "Cliff reached.",
			KeyEvents:          []string{"TIRE_CLIFF"},
			ProducedAtLap:      24,
			Source:             core.SourceLive,
		},
		Duration: 42 * time.Millisecond,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenCreatesSchema(t *testing.T) {
	store := openTestStore(t)

	for _, table := range []string{"recommendations", "events"} {
		var name string
		err := store.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestRecordTickRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	tick := sampleTick()

	require.NoError(t, store.RecordTick(ctx, tick))

	got, err := store.RecommendationForLap(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, tick.Recommendation.ID, got.ID)
	assert.Equal(t, core.RecommendPitNow, got.Type)
	assert.Equal(t, core.ConsensusUnanimous, got.Consensus)
	assert.Equal(t, 0.9, got.Confidence)
	require.NotNil(t, got.PitWindow)
	assert.Equal(t, core.PitWindow{Start: 24, End: 26}, *got.PitWindow)
	require.NotNil(t, got.TargetCompound)
	assert.Equal(t, core.CompoundHard, *got.TargetCompound)
	assert.Equal(t, []string{"TIRE_CLIFF"}, got.KeyEvents)
	assert.Equal(t, core.SourceLive, got.Source)

	n, err := store.EventCount(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordTick_NilOptionalsPersist(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tick := sampleTick()
	tick.Recommendation.PitWindow = nil
	tick.Recommendation.TargetCompound = nil
	tick.Recommendation.KeyEvents = nil
	tick.Events = nil

	require.NoError(t, store.RecordTick(ctx, tick))

	got, err := store.RecommendationForLap(ctx, 24)
	require.NoError(t, err)
	assert.Nil(t, got.PitWindow)
	assert.Nil(t, got.TargetCompound)
	assert.Empty(t, got.KeyEvents)
}

func TestRecommendationForLap_Missing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.RecommendationForLap(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordTick_LatestWinsForLap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleTick()
	require.NoError(t, store.RecordTick(ctx, first))

	second := sampleTick()
	second.Recommendation.Type = core.RecommendStayOut
	require.NoError(t, store.RecordTick(ctx, second))

	got, err := store.RecommendationForLap(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, second.Recommendation.ID, got.ID)
}
