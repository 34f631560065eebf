package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	old := Logger
	t.Cleanup(func() { Logger = old })

	if err := InitLogger("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if err := InitLogger("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Logger.Core().Enabled(zap.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
}

func TestLoggerWithTraceAddsSpanFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	old := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = old })

	LoggerWithTrace(context.Background()).Info("untraced")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	LoggerWithTrace(ctx).Info("traced")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["trace_id"]; ok {
		t.Fatal("did not expect trace_id without a span")
	}
	if got := entries[1].ContextMap()["trace_id"]; got != sc.TraceID().String() {
		t.Fatalf("expected trace_id %q, got %#v", sc.TraceID().String(), got)
	}
}
