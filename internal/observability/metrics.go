package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics installs a meter provider that pushes to the OTLP/HTTP
// endpoint periodically. Domain packages create their instruments after
// this runs.
func InitMetrics(ctx context.Context) (func(context.Context) error, error) {
	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)

	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// PrometheusHandler serves the default Prometheus registry (Go runtime and
// process collectors) for scraping.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
