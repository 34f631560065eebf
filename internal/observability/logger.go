package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until
// InitLogger runs, so packages can log from tests without setup.
var Logger = zap.NewNop()

// InitLogger installs a JSON production logger at the given level
// ("debug", "info", "warn", "error").
func InitLogger(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = logger

	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger carrying trace_id and span_id from
// the active span in ctx.
//
// ctx itself is attached as a zap.Any field: the otelzap core picks up any
// field holding a context.Context and emits the OTLP record with it, which
// fills the native TraceID and SpanID of the exported log record. The string
// fields keep stdout JSON greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
