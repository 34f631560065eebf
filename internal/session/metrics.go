package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"go-equation-solver/internal/observability"
)

// Metric instruments, initialized once via InitMetrics().
var (
	transitionCounter metric.Int64Counter
	staleCounter      metric.Int64Counter
	errorCounter      metric.Int64Counter
	activeSessions    metric.Int64UpDownCounter
)

// InitMetrics registers the session domain instruments. Call this once at
// startup, after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("session")

	var err error

	transitionCounter, err = meter.Int64Counter("session.transitions.total",
		metric.WithDescription("Capture session state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return fmt.Errorf("creating transition counter: %w", err)
	}

	staleCounter, err = meter.Int64Counter("session.stale_results.total",
		metric.WithDescription("Recognition results discarded because a newer capture superseded them"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return fmt.Errorf("creating stale result counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("session.errors.total",
		metric.WithDescription("Requests rejected by the session endpoints"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	activeSessions, err = meter.Int64UpDownCounter("session.active",
		metric.WithDescription("Sessions currently held in memory"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating active sessions counter: %w", err)
	}

	return nil
}

func recordTransition(ctx context.Context, id string, from, to State, e Event) {
	transitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
		attribute.String("event", e.String()),
	))

	observability.LoggerWithTrace(ctx).Debug("session transition",
		zap.String("session_id", id),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Stringer("event", e),
	)
}
