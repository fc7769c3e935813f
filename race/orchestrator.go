// Package race wires the per-lap pipeline: monitor agents fan out over the
// lap record, the arbiter decides whether the reasoning service is worth
// invoking, and the coordinator or the cache supplies the recommendation.
// One telemetry lap in, exactly one current recommendation out.
package race

import (
	"context"
	"fmt"
	"time"

	"github.com/racelab/pitwall/arbiter"
	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/logging"
	"github.com/racelab/pitwall/monitor"
	"github.com/racelab/pitwall/strategy"
)

// TickResult is the outcome of one lap through the pipeline.
type TickResult struct {
	Lap            int                      `json:"lap"`
	Events         []core.Event             `json:"events"`
	Decision       core.ArbitrationDecision `json:"decision"`
	Recommendation core.Recommendation      `json:"recommendation"`
	DegradedReason string                   `json:"degraded_reason,omitempty"`
	Duration       time.Duration            `json:"duration"`
}

// Sink receives completed tick results, typically for persistence. Sinks must
// not block lap progression; a failing sink is logged and skipped.
type Sink interface {
	RecordTick(ctx context.Context, result TickResult) error
}

// Orchestrator runs the lap pipeline. It is not safe for concurrent Tick
// calls; telemetry arrives strictly ordered, one lap at a time.
type Orchestrator struct {
	cfg         config.Config
	pool        *monitor.Pool
	arbiter     *arbiter.Arbiter
	coordinator *strategy.Coordinator
	cache       *strategy.Cache
	logger      *logging.StrategyLogger
	sinks       []Sink
}

// NewOrchestrator assembles the pipeline. The cache is seeded with a
// conservative baseline so the very first quiet laps still serve a
// recommendation instead of nothing.
func NewOrchestrator(cfg config.Config, pool *monitor.Pool, coordinator *strategy.Coordinator, logger *logging.StrategyLogger, sinks ...Sink) *Orchestrator {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	cache := strategy.NewCache()
	cache.Set(strategy.Fallback(0, nil, core.RaceContext{}))

	return &Orchestrator{
		cfg:         cfg,
		pool:        pool,
		arbiter:     arbiter.New(),
		coordinator: coordinator,
		cache:       cache,
		logger:      logger.WithComponent("orchestrator").WithRace(cfg.RaceID, cfg.Driver),
		sinks:       sinks,
	}
}

// Current returns the recommendation that is current right now.
func (o *Orchestrator) Current() *core.Recommendation { return o.cache.Current() }

// Budget exposes the coordinator's call budget for end-of-race reporting.
func (o *Orchestrator) Budget() *core.CallBudget { return o.coordinator.Budget() }

// Tick processes one lap of telemetry. Malformed telemetry is rejected with
// core.ErrMalformedTelemetry and does not advance any agent state; processing
// continues on the next lap.
func (o *Orchestrator) Tick(ctx context.Context, own core.LapRecord, field []core.LapRecord) (TickResult, error) {
	start := time.Now()

	if err := own.Validate(); err != nil {
		o.logger.Warn("skipping malformed telemetry for lap %d: %v", own.Lap, err)
		return TickResult{Lap: own.Lap}, fmt.Errorf("lap %d: %w", own.Lap, err)
	}

	events := o.pool.Analyze(own, field)
	decision := o.arbiter.Decide(events)
	o.coordinator.Budget().LapProcessed()

	result := TickResult{Lap: own.Lap, Events: decision.Events, Decision: decision}

	if decision.Invoke {
		outcome := o.coordinator.Evaluate(ctx, own.Lap, decision.Events, o.pool.Context())
		o.cache.Set(outcome.Recommendation)
		result.Recommendation = outcome.Recommendation
		result.DegradedReason = outcome.DegradedReason
	} else {
		cached, _ := o.cache.Serve()
		result.Recommendation = cached
	}

	result.Duration = time.Since(start)
	o.logger.LogTick(own.Lap, len(events), decision.Invoke, string(result.Recommendation.Source), result.Duration)

	for _, s := range o.sinks {
		if err := s.RecordTick(ctx, result); err != nil {
			o.logger.Warn("sink failed on lap %d: %v", own.Lap, err)
		}
	}
	return result, nil
}
