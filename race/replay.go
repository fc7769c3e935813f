package race

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/racelab/pitwall/core"
)

// TelemetrySource yields one lap of field telemetry at a time, in lap order.
// Next returns io.EOF when the race is over.
type TelemetrySource interface {
	Next(ctx context.Context) ([]core.LapRecord, error)
}

// Report summarizes a completed replay.
type Report struct {
	LapsProcessed int                  `json:"laps_processed"`
	LapsSkipped   int                  `json:"laps_skipped"`
	Invocations   int                  `json:"invocations"`
	ServiceCalls  int                  `json:"service_calls"`
	Efficiency    float64              `json:"efficiency"`
	Final         *core.Recommendation `json:"final,omitempty"`
}

// Replay drives the orchestrator over every lap the source yields. Laps with
// malformed telemetry for the focused driver are counted as skipped and the
// replay continues; only a source failure or context cancellation aborts it.
func (o *Orchestrator) Replay(ctx context.Context, src TelemetrySource) (Report, error) {
	var report Report

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		field, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("telemetry source: %w", err)
		}

		own, ok := focusedLap(field, o.cfg.Driver)
		if !ok {
			report.LapsSkipped++
			o.logger.Warn("no telemetry for focused driver %s, skipping lap", o.cfg.Driver)
			continue
		}

		if _, err := o.Tick(ctx, own, field); err != nil {
			if errors.Is(err, core.ErrMalformedTelemetry) {
				report.LapsSkipped++
				continue
			}
			return report, err
		}
		report.LapsProcessed++
	}

	budget := o.Budget()
	report.Invocations = budget.Invocations()
	report.ServiceCalls = budget.ServiceCalls()
	report.Efficiency = budget.Efficiency()
	report.Final = o.Current()
	return report, nil
}

func focusedLap(field []core.LapRecord, driver string) (core.LapRecord, bool) {
	for _, rec := range field {
		if rec.Driver == driver {
			return rec, true
		}
	}
	return core.LapRecord{}, false
}
