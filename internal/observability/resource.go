package observability

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceVersion is stamped on every exported signal. Overridden at build
// time with -ldflags "-X go-equation-solver/internal/observability.ServiceVersion=...".
var ServiceVersion = "dev"

func ServiceName() string {
	name := os.Getenv("OTEL_SERVICE_NAME")
	if name == "" {
		name = "equation-solver"
	}
	return name
}

func newResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName()),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
}
