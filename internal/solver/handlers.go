package solver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-equation-solver/internal/equation"
	"go-equation-solver/internal/handlers"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/recognition"
)

// tracer is the solver's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("solver")

// MaxBatchSize bounds the number of equations in one batch request.
const MaxBatchSize = 50

// Recognizer extracts an equation string from a captured image. CheckImage
// screens a payload cheaply before any pixels are decoded.
type Recognizer interface {
	CheckImage(raw recognition.RawImage) error
	Recognize(ctx context.Context, raw recognition.RawImage) (recognition.Recognition, error)
}

type Handler struct {
	recognizer Recognizer
}

func NewHandler(recognizer Recognizer) *Handler {
	return &Handler{recognizer: recognizer}
}

// Solve handles POST /equations/solve. Unsupported or unparseable equations
// are not errors: the response is a SolveResult whose outcome says so.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "solver.solve",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req SolveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		recordDecodeError(ctx, span, logger, "solve", err, w)
		return
	}
	if strings.TrimSpace(req.Equation) == "" {
		observability.RecordError(ctx, span, logger, errorCounter, "solve", "equation is required", errors.New("empty equation"), http.StatusBadRequest, w)
		return
	}

	result := solve(ctx, span, req.Equation)

	logger.Info("equation solved",
		zap.String("equation", req.Equation),
		zap.String("shape", result.Shape.String()),
		zap.String("outcome", result.Outcome.String()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, result)
}

// Batch handles POST /equations/batch, solving every equation inside its own
// child span.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "solver.batch",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req BatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		recordDecodeError(ctx, span, logger, "batch", err, w)
		return
	}
	if len(req.Equations) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "batch", "no equations provided", errors.New("equations array is empty"), http.StatusBadRequest, w)
		return
	}
	if len(req.Equations) > MaxBatchSize {
		observability.RecordError(ctx, span, logger, errorCounter, "batch", fmt.Sprintf("at most %d equations per batch", MaxBatchSize), fmt.Errorf("got %d equations", len(req.Equations)), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("batch.size", len(req.Equations)))

	resp := BatchResponse{Results: make([]equation.SolveResult, 0, len(req.Equations))}
	for i, eq := range req.Equations {
		itemCtx, itemSpan := tracer.Start(ctx, fmt.Sprintf("solver.batch.item.%d", i),
			trace.WithAttributes(attribute.Int("batch.item.index", i)),
		)
		result := solve(itemCtx, itemSpan, eq)
		itemSpan.End()

		if result.OK() {
			resp.Solved++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	span.AddEvent("batch.complete", trace.WithAttributes(
		attribute.Int("solved", resp.Solved),
		attribute.Int("failed", resp.Failed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("batch solved",
		zap.Int("size", len(req.Equations)),
		zap.Int("solved", resp.Solved),
		zap.Int("failed", resp.Failed),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Recognize handles POST /equations/recognize. A failed recognition still
// answers 200 with the placeholder equation and an error message.
func (h *Handler) Recognize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "solver.recognize",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	resp, ok := h.recognize(ctx, span, logger, "recognize", r, w)
	if !ok {
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Scan handles POST /equations/scan: recognition followed by solving.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "solver.scan",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	rec, ok := h.recognize(ctx, span, logger, "scan", r, w)
	if !ok {
		return
	}

	result := solve(ctx, span, rec.Equation)

	logger.Info("scan completed",
		zap.String("equation", rec.Equation),
		zap.Bool("fallback", rec.Fallback),
		zap.String("outcome", result.Outcome.String()),
		zap.String("request_id", requestID),
	)

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, ScanResponse{Recognition: rec, Result: result})
}

// recognize decodes an ImageRequest and runs the recognizer. It writes the
// error response itself and reports false when the caller must stop.
func (h *Handler) recognize(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, r *http.Request, w http.ResponseWriter) (RecognizeResponse, bool) {
	var req ImageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		recordDecodeError(ctx, span, logger, opName, err, w)
		return RecognizeResponse{}, false
	}

	raw, err := recognition.ParseRawImage(req.Image)
	if err == nil {
		err = h.recognizer.CheckImage(raw)
	}
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid image payload", err, http.StatusBadRequest, w)
		return RecognizeResponse{}, false
	}

	rec, err := h.recognizer.Recognize(ctx, raw)
	status := "recognized"
	switch {
	case err == nil:
	case errors.Is(err, recognition.ErrRecognitionFailed):
		status = "failed"
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "recognition aborted", err, http.StatusServiceUnavailable, w)
		return RecognizeResponse{}, false
	}

	attrs := metric.WithAttributes(
		attribute.String("engine", rec.Engine),
		attribute.String("status", status),
	)
	recognitionCounter.Add(ctx, 1, attrs)

	resp := RecognizeResponse{Recognition: rec}
	if err != nil {
		resp.Error = err.Error()
	} else {
		confidenceGauge.Record(ctx, rec.Confidence, metric.WithAttributes(attribute.String("engine", rec.Engine)))
	}

	span.SetAttributes(
		attribute.String("recognition.status", status),
		attribute.String("recognition.equation", rec.Equation),
	)
	return resp, true
}

// solve runs the equation pipeline, recording metrics and span attributes
// on span.
func solve(ctx context.Context, span trace.Span, raw string) equation.SolveResult {
	start := time.Now()
	result := equation.SolveInput(raw)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(
		attribute.String("shape", result.Shape.String()),
		attribute.String("outcome", result.Outcome.String()),
	)
	solveCounter.Add(ctx, 1, attrs)
	solveHistogram.Record(ctx, elapsed, attrs)

	span.SetAttributes(
		attribute.String("equation.normalized", result.Normalized),
		attribute.String("equation.shape", result.Shape.String()),
		attribute.String("equation.outcome", result.Outcome.String()),
	)
	span.AddEvent("solve.complete", trace.WithAttributes(
		attribute.String("solution", result.Solution),
		attribute.Float64("duration_ms", elapsed),
	))
	if !result.OK() {
		span.SetAttributes(attribute.String("equation.reason", result.Reason))
	}
	return result
}

func recordDecodeError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	if errors.Is(err, handlers.ErrRequestTooLarge) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "request body too large", err, http.StatusRequestEntityTooLarge, w)
		return
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
}
