// Package strategy turns arbiter-approved event sets into recommendations.
// The Coordinator drives the external reasoning service with retries and a
// per-call timeout; when the service is disabled, over budget or failing it
// degrades to a deterministic local fallback so every invocation still yields
// a recommendation. The Cache keeps the latest recommendation for quiet laps.
package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/racelab/pitwall/config"
	"github.com/racelab/pitwall/core"
	"github.com/racelab/pitwall/logging"
	"github.com/racelab/pitwall/reasoning"
)

// Outcome is the result of one coordinator invocation. DegradedReason is
// empty when the recommendation came from the live service.
type Outcome struct {
	Recommendation core.Recommendation
	DegradedReason string
}

// Coordinator assembles one structured request per invocation, calls the
// reasoning service and converts the verdict into a recommendation.
type Coordinator struct {
	cfg     config.Config
	service reasoning.Service
	retry   reasoning.RetryPolicy
	budget  *core.CallBudget
	logger  *logging.StrategyLogger
}

// NewCoordinator wires a coordinator. A nil service behaves like
// ReasoningDisabled; a nil logger gets a default JSON logger.
func NewCoordinator(cfg config.Config, service reasoning.Service, budget *core.CallBudget, logger *logging.StrategyLogger) *Coordinator {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	if budget == nil {
		budget = core.NewCallBudget(cfg.MaxServiceCalls)
	}
	retry := reasoning.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxAttempts
	return &Coordinator{
		cfg:     cfg,
		service: service,
		retry:   retry,
		budget:  budget,
		logger:  logger.WithComponent("coordinator"),
	}
}

// SetRetryPolicy replaces the retry policy, mainly for tests with a fake clock.
func (c *Coordinator) SetRetryPolicy(p reasoning.RetryPolicy) { c.retry = p }

// Budget exposes the call budget for reporting.
func (c *Coordinator) Budget() *core.CallBudget { return c.budget }

// Evaluate produces one recommendation for an arbiter-approved lap. Events
// must arrive sorted most urgent first; they are merged into a single
// request, never split into multiple service calls.
func (c *Coordinator) Evaluate(ctx context.Context, lap int, events []core.Event, raceCtx core.RaceContext) Outcome {
	c.budget.InvocationMade()

	if c.cfg.ReasoningDisabled || c.service == nil {
		return c.degrade(lap, events, raceCtx, "reasoning service disabled")
	}
	if c.budget.Remaining() == 0 {
		return c.degrade(lap, events, raceCtx, "reasoning service call budget exhausted")
	}

	req := reasoning.Request{
		Lap:        lap,
		TotalLaps:  c.cfg.TotalLaps,
		Driver:     c.cfg.Driver,
		Events:     reasoning.Summarize(events),
		Tire:       raceCtx.Tire,
		Pace:       raceCtx.Pace,
		Position:   raceCtx.Position,
		Competitor: raceCtx.Competitor,
	}

	var verdict *reasoning.Verdict
	start := time.Now()
	attempts, err := c.retry.Do(ctx, func(ctx context.Context) error {
		if berr := c.budget.ServiceCallMade(); berr != nil {
			return berr
		}
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.ReasoningTimeout)
		defer cancel()

		v, cerr := c.service.Evaluate(callCtx, req)
		if cerr != nil {
			return cerr
		}
		verdict = v
		return nil
	})
	c.logger.LogReasoningCall(c.service.Info().Provider, attempts, time.Since(start), err == nil, err)

	if err != nil {
		return c.degrade(lap, events, raceCtx, fmt.Sprintf("reasoning service failed after %d attempt(s): %v", attempts, err))
	}
	return Outcome{Recommendation: fromVerdict(lap, verdict)}
}

func (c *Coordinator) degrade(lap int, events []core.Event, raceCtx core.RaceContext, reason string) Outcome {
	c.logger.LogFallback(lap, reason)
	return Outcome{
		Recommendation: Fallback(lap, events, raceCtx),
		DegradedReason: reason,
	}
}

// fromVerdict converts a validated service verdict into a live recommendation.
func fromVerdict(lap int, v *reasoning.Verdict) core.Recommendation {
	rec := core.Recommendation{
		ID:                 core.NewRecommendationID(),
		Consensus:          v.Consensus,
		Type:               v.RecommendationType,
		Urgency:            v.Urgency,
		Confidence:         v.Confidence,
		TargetCompound:     v.TargetCompound,
		DriverInstruction:  v.DriverInstruction,
		PitCrewInstruction: v.PitCrewInstruction,
		Reasoning:          v.Reasoning,
		KeyEvents:          v.KeyEvents,
		ProducedAtLap:      lap,
		Source:             core.SourceLive,
	}
	if len(v.PitWindow) == 2 {
		rec.PitWindow = &core.PitWindow{Start: v.PitWindow[0], End: v.PitWindow[1]}
	}
	return rec
}
