// Package pitwall provides a high-level façade over the race-strategy engine:
// monitor agents, event arbitration, the reasoning coordinator and the
// recommendation cache. Most applications interact with this package by:
//  1. Creating an Engine via New() with a config and an optional reasoning service
//  2. Feeding telemetry lap by lap via Tick, or replaying a whole race via Replay
//  3. Reading the current recommendation at any time via Current
//
// The façade delegates lap orchestration to race.Orchestrator while keeping
// setup ergonomics concise. Defaults are safe for local replay: with no
// reasoning service configured every invocation degrades to the deterministic
// fallback, so the engine still produces a recommendation per lap.
package pitwall

import (
	"context"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/logging"
	"github.com/racelab/pitwall/monitor"
	"github.com/racelab/pitwall/race"
	"github.com/racelab/pitwall/reasoning"
	"github.com/racelab/pitwall/strategy"
)

// Version is the release version of the engine.
const Version = "0.3.0"

// Options configures the Engine instance.
type Options struct {
	// Service is the external reasoning service. Nil disables live reasoning;
	// every invocation then uses the deterministic fallback.
	Service reasoning.Service

	// Logger for all components (defaults to a JSON stdout logger if nil).
	Logger *logging.StrategyLogger

	// Sinks receive every completed tick result, typically for persistence.
	Sinks []race.Sink
}

// Engine is the high-level façade aggregating the lap pipeline.
type Engine struct {
	cfg          config.Config
	orchestrator *race.Orchestrator
}

// New creates an Engine from a validated config with optional overrides.
func New(cfg config.Config, optFns ...func(o *Options)) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}

	pool := monitor.NewPool(
		monitor.NewTireAgent(cfg),
		monitor.NewPaceAgent(cfg),
		monitor.NewPositionAgent(cfg),
		monitor.NewCompetitorAgent(cfg),
	)
	budget := core.NewCallBudget(cfg.MaxServiceCalls)
	coordinator := strategy.NewCoordinator(cfg, opts.Service, budget, opts.Logger)

	return &Engine{
		cfg:          cfg,
		orchestrator: race.NewOrchestrator(cfg, pool, coordinator, opts.Logger, opts.Sinks...),
	}, nil
}

// WithService sets the reasoning service.
func WithService(s reasoning.Service) func(o *Options) {
	return func(o *Options) { o.Service = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.StrategyLogger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithSinks appends tick sinks.
func WithSinks(sinks ...race.Sink) func(o *Options) {
	return func(o *Options) { o.Sinks = append(o.Sinks, sinks...) }
}

// Tick processes one lap of telemetry for the whole field.
func (e *Engine) Tick(ctx context.Context, own core.LapRecord, field []core.LapRecord) (race.TickResult, error) {
	return e.orchestrator.Tick(ctx, own, field)
}

// Replay drives the engine over a telemetry source until it is exhausted.
func (e *Engine) Replay(ctx context.Context, src race.TelemetrySource) (race.Report, error) {
	return e.orchestrator.Replay(ctx, src)
}

// Current returns the recommendation that is current right now, or nil before
// the first tick.
func (e *Engine) Current() *core.Recommendation {
	return e.orchestrator.Current()
}

// Budget returns the engine's call budget for efficiency reporting.
func (e *Engine) Budget() *core.CallBudget {
	return e.orchestrator.Budget()
}
