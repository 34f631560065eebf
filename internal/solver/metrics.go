package solver

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	solveCounter       metric.Int64Counter
	solveHistogram     metric.Float64Histogram
	errorCounter       metric.Int64Counter
	recognitionCounter metric.Int64Counter
	confidenceGauge    metric.Float64Gauge
)

// InitMetrics registers the solver domain instruments. Call this once at
// startup, after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("solver")

	var err error

	solveCounter, err = meter.Int64Counter("solver.solves.total",
		metric.WithDescription("Equations solved, by shape and outcome"),
		metric.WithUnit("{equation}"),
	)
	if err != nil {
		return fmt.Errorf("creating solve counter: %w", err)
	}

	solveHistogram, err = meter.Float64Histogram("solver.solve.duration",
		metric.WithDescription("Duration of classification and solving in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating solve histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("solver.errors.total",
		metric.WithDescription("Requests rejected by the solver endpoints"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	recognitionCounter, err = meter.Int64Counter("solver.recognitions.total",
		metric.WithDescription("Image recognitions, by engine and status"),
		metric.WithUnit("{recognition}"),
	)
	if err != nil {
		return fmt.Errorf("creating recognition counter: %w", err)
	}

	confidenceGauge, err = meter.Float64Gauge("solver.recognition.last_confidence",
		metric.WithDescription("Confidence of the last successful recognition"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating confidence gauge: %w", err)
	}

	return nil
}
