package race

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/logging"
	"github.com/racelab/pitwall/monitor"
	"github.com/racelab/pitwall/reasoning"
	"github.com/racelab/pitwall/strategy"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RaceID = "monaco-2026"
	cfg.Driver = "VER"
	return cfg
}

func testLogger() *logging.StrategyLogger {
	return logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelError, Output: io.Discard})
}

func newTestOrchestrator(cfg config.Config, service reasoning.Service, sinks ...Sink) *Orchestrator {
	pool := monitor.NewPool(
		monitor.NewTireAgent(cfg),
		monitor.NewPaceAgent(cfg),
		monitor.NewPositionAgent(cfg),
		monitor.NewCompetitorAgent(cfg),
	)
	coordinator := strategy.NewCoordinator(cfg, service, core.NewCallBudget(cfg.MaxServiceCalls), testLogger())
	return NewOrchestrator(cfg, pool, coordinator, testLogger(), sinks...)
}

func quietLap(lap int) core.LapRecord {
	return core.LapRecord{
		Lap:            lap,
		Driver:         "VER",
		Compound:       core.CompoundMedium,
		TireAge:        lap,
		LapTimeSeconds: 98.0,
		Position:       5,
		TrackTempC:     30,
	}
}

// captureSink records every tick it receives.
type captureSink struct {
	results []TickResult
	err     error
}

func (s *captureSink) RecordTick(_ context.Context, result TickResult) error {
	s.results = append(s.results, result)
	return s.err
}

func TestOrchestrator_BaselineSeededBeforeFirstTick(t *testing.T) {
	o := newTestOrchestrator(testConfig(), reasoning.NewMockService())

	rec := o.Current()
	require.NotNil(t, rec)
	assert.Equal(t, core.SourceFallback, rec.Source)
	assert.Equal(t, core.RecommendStayOut, rec.Type)
	assert.Zero(t, rec.ProducedAtLap)
}

func TestOrchestrator_QuietLapsServeCache(t *testing.T) {
	mock := reasoning.NewMockService()
	o := newTestOrchestrator(testConfig(), mock)

	var ids []string
	for lap := 1; lap <= 9; lap++ {
		result, err := o.Tick(context.Background(), quietLap(lap), nil)
		require.NoError(t, err)
		assert.False(t, result.Decision.Invoke, "lap %d", lap)
		assert.Equal(t, core.SourceCached, result.Recommendation.Source, "lap %d", lap)
		ids = append(ids, result.Recommendation.ID)
	}

	// Every quiet lap serves the same underlying recommendation.
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	assert.Zero(t, mock.Calls())
	assert.Equal(t, 9, o.Budget().Laps())
	assert.Zero(t, o.Budget().Invocations())
}

func TestOrchestrator_PeriodicCheckInvokes(t *testing.T) {
	mock := reasoning.NewMockService()
	o := newTestOrchestrator(testConfig(), mock)

	for lap := 1; lap <= 9; lap++ {
		_, err := o.Tick(context.Background(), quietLap(lap), nil)
		require.NoError(t, err)
	}

	result, err := o.Tick(context.Background(), quietLap(10), nil)
	require.NoError(t, err)
	assert.True(t, result.Decision.Invoke)
	assert.Equal(t, core.SourceLive, result.Recommendation.Source)
	assert.Equal(t, 10, result.Recommendation.ProducedAtLap)
	assert.Equal(t, 1, mock.Calls())
}

func TestOrchestrator_PitStopInvokesImmediately(t *testing.T) {
	mock := reasoning.NewMockService()
	o := newTestOrchestrator(testConfig(), mock)

	_, err := o.Tick(context.Background(), quietLap(1), nil)
	require.NoError(t, err)

	pitted := quietLap(2)
	pitted.Compound = core.CompoundHard
	pitted.TireAge = 1

	result, err := o.Tick(context.Background(), pitted, nil)
	require.NoError(t, err)
	require.True(t, result.Decision.Invoke)
	assert.Contains(t, result.Decision.Reason, "critical")
	require.NotEmpty(t, result.Events)
	assert.Equal(t, core.EventPitStop, result.Events[0].Type)
}

func TestOrchestrator_MalformedTelemetrySkipsLap(t *testing.T) {
	o := newTestOrchestrator(testConfig(), reasoning.NewMockService())

	bad := quietLap(1)
	bad.LapTimeSeconds = 0

	_, err := o.Tick(context.Background(), bad, nil)
	assert.ErrorIs(t, err, core.ErrMalformedTelemetry)
	assert.Zero(t, o.Budget().Laps())

	// Processing resumes cleanly on the next lap.
	result, err := o.Tick(context.Background(), quietLap(2), nil)
	require.NoError(t, err)
	assert.Equal(t, core.SourceCached, result.Recommendation.Source)
}

func TestOrchestrator_DegradedServiceFallsBack(t *testing.T) {
	mock := reasoning.NewMockService()
	mock.AddError(errors.New("bad credentials"))
	o := newTestOrchestrator(testConfig(), mock)

	_, err := o.Tick(context.Background(), quietLap(1), nil)
	require.NoError(t, err)

	pitted := quietLap(2)
	pitted.Compound = core.CompoundSoft
	pitted.TireAge = 1

	result, err := o.Tick(context.Background(), pitted, nil)
	require.NoError(t, err)
	assert.True(t, result.Decision.Invoke)
	assert.Equal(t, core.SourceFallback, result.Recommendation.Source)
	assert.NotEmpty(t, result.DegradedReason)

	// The degraded recommendation still becomes the cached current one.
	assert.Equal(t, result.Recommendation.ID, o.Current().ID)
}

func TestOrchestrator_SinksReceiveEveryTick(t *testing.T) {
	sink := &captureSink{}
	o := newTestOrchestrator(testConfig(), reasoning.NewMockService(), sink)

	for lap := 1; lap <= 3; lap++ {
		_, err := o.Tick(context.Background(), quietLap(lap), nil)
		require.NoError(t, err)
	}

	require.Len(t, sink.results, 3)
	assert.Equal(t, 1, sink.results[0].Lap)
	assert.Equal(t, 3, sink.results[2].Lap)
}

func TestOrchestrator_SinkFailureDoesNotBlockTicks(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	o := newTestOrchestrator(testConfig(), reasoning.NewMockService(), sink)

	result, err := o.Tick(context.Background(), quietLap(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Lap)
}
