package main

import (
	"context"

	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/session"
	"go-equation-solver/internal/solver"
)

// initMetrics initialises the OTLP meter provider when telemetry is enabled,
// then the domain instruments. Without a provider the instruments bind to
// the global no-op meter.
func initMetrics(ctx context.Context, telemetry bool) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if telemetry {
		var err error
		shutdown, err = observability.InitMetrics(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := solver.InitMetrics(); err != nil {
		return nil, err
	}
	if err := session.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
