package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogging tees Logger into the OTel log SDK. Only entries at or above
// exportLevel are exported over OTLP/HTTP; stdout keeps the level set by
// InitLogger. Call it after InitLogger.
func InitLogging(ctx context.Context, exportLevel string) (func(context.Context) error, error) {
	lvl, err := zapcore.ParseLevel(exportLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log export level %q: %w", exportLevel, err)
	}

	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	otelCore := otelzap.NewCore(ServiceName(), otelzap.WithLoggerProvider(provider))
	exportCore, err := zapcore.NewIncreaseLevelCore(otelCore, lvl)
	if err != nil {
		return nil, err
	}
	Logger = zap.New(zapcore.NewTee(Logger.Core(), exportCore))

	return provider.Shutdown, nil
}
