package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-equation-solver/internal/handlers"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/recognition"
)

var tracer = otel.Tracer("session")

type Handler struct {
	store   *Store
	maxWait time.Duration
}

// NewHandler serves sessions from store. maxWait caps how long
// GET /sessions/{id}?wait=true blocks.
func NewHandler(store *Store, maxWait time.Duration) *Handler {
	return &Handler{store: store, maxWait: maxWait}
}

// Create handles POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "create")
	defer span.End()

	sess, err := h.store.Create(ctx)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", err.Error(), err, http.StatusServiceUnavailable, w)
		return
	}
	span.SetAttributes(attribute.String("session.id", sess.ID()))

	logger.Info("session created", zap.String("session_id", sess.ID()))

	w.Header().Set("Location", "/sessions/"+sess.ID())
	handlers.WriteJSON(w, http.StatusCreated, sess.Snapshot())
}

// Get handles GET /sessions/{id}. With ?wait=true it blocks until in-flight
// recognition settles, bounded by the configured maximum.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "get")
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "get", w, r)
	if !ok {
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		h.respond(span, w, http.StatusOK, sess.Snapshot())
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.maxWait)
	defer cancel()

	snap, err := sess.Wait(waitCtx)
	if err != nil && ctx.Err() != nil {
		logger.Info("client gave up waiting", zap.String("session_id", sess.ID()))
		return
	}
	// A wait that hit maxWait still answers with the current snapshot.
	h.respond(span, w, http.StatusOK, snap)
}

// Delete handles DELETE /sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(ctx, id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found", err, http.StatusNotFound, w)
		return
	}

	logger.Info("session deleted", zap.String("session_id", id))
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Capture handles POST /sessions/{id}/capture.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "capture")
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "capture", w, r)
	if !ok {
		return
	}

	snap, err := sess.StartCapture(ctx)
	if err != nil {
		h.recordTransitionError(ctx, span, logger, "capture", err, w)
		return
	}
	h.respond(span, w, http.StatusOK, snap)
}

// SubmitImage handles POST /sessions/{id}/image. Recognition runs in the
// background; the response is 202 with the session in Recognizing.
func (h *Handler) SubmitImage(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "image")
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "image", w, r)
	if !ok {
		return
	}

	var req ImageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		recordDecodeError(ctx, span, logger, "image", err, w)
		return
	}
	raw, err := recognition.ParseRawImage(req.Image)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "image", "invalid image payload", err, http.StatusBadRequest, w)
		return
	}

	snap, err := sess.SubmitImage(ctx, raw)
	if errors.Is(err, recognition.ErrInvalidImage) || errors.Is(err, recognition.ErrEmptyImage) {
		observability.RecordError(ctx, span, logger, errorCounter, "image", "invalid image payload", err, http.StatusBadRequest, w)
		return
	}
	if err != nil {
		h.recordTransitionError(ctx, span, logger, "image", err, w)
		return
	}

	logger.Info("image submitted",
		zap.String("session_id", sess.ID()),
		zap.Uint64("generation", snap.Generation),
	)
	h.respond(span, w, http.StatusAccepted, snap)
}

// SubmitEquation handles POST /sessions/{id}/equation.
func (h *Handler) SubmitEquation(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "equation")
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "equation", w, r)
	if !ok {
		return
	}

	var req EquationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		recordDecodeError(ctx, span, logger, "equation", err, w)
		return
	}
	if strings.TrimSpace(req.Equation) == "" {
		observability.RecordError(ctx, span, logger, errorCounter, "equation", "equation is required", errors.New("empty equation"), http.StatusBadRequest, w)
		return
	}

	snap, err := sess.SubmitEquation(ctx, req.Equation)
	if err != nil {
		h.recordTransitionError(ctx, span, logger, "equation", err, w)
		return
	}
	h.respond(span, w, http.StatusOK, snap)
}

// Reset handles POST /sessions/{id}/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "reset")
	defer span.End()

	sess, ok := h.lookup(ctx, span, logger, "reset", w, r)
	if !ok {
		return
	}

	snap, err := sess.Reset(ctx)
	if err != nil {
		h.recordTransitionError(ctx, span, logger, "reset", err, w)
		return
	}
	h.respond(span, w, http.StatusOK, snap)
}

func (h *Handler) start(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "session."+opName,
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

func (h *Handler) lookup(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	sess, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return nil, false
	}
	return sess, true
}

func (h *Handler) respond(span trace.Span, w http.ResponseWriter, status int, snap Snapshot) {
	span.SetAttributes(
		attribute.String("session.state", snap.State.String()),
		attribute.Int64("session.generation", int64(snap.Generation)),
	)
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, status, snap)
}

func (h *Handler) recordTransitionError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrInvalidTransition) {
		status = http.StatusConflict
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, status, w)
}

func recordDecodeError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	if errors.Is(err, handlers.ErrRequestTooLarge) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "request body too large", err, http.StatusRequestEntityTooLarge, w)
		return
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
}
