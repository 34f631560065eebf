// Package recognition turns a captured raster into a normalized equation
// string: decode, preprocess, extract text, normalize.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-equation-solver/internal/equation"
	"go-equation-solver/internal/observability"
)

var tracer = otel.Tracer("recognition")

// ErrRecognitionFailed marks a recognition that produced no usable equation.
// The accompanying Recognition still carries the sentinel equation.
var ErrRecognitionFailed = errors.New("recognition failed")

var errTooShort = errors.New("fewer than two usable characters recognized")

// Recognition is the outcome of one Recognize call.
type Recognition struct {
	Equation   string  `json:"equation"`
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
	Fallback   bool    `json:"fallback"`
	Engine     string  `json:"engine"`
}

type Recognizer struct {
	extractor    TextExtractor
	preprocessor *Preprocessor
	timeout      time.Duration
}

// NewRecognizer composes a preprocessor and an extractor. A positive timeout
// bounds each Recognize call; exceeding it is a recognition failure.
func NewRecognizer(extractor TextExtractor, preprocessor *Preprocessor, timeout time.Duration) *Recognizer {
	return &Recognizer{
		extractor:    extractor,
		preprocessor: preprocessor,
		timeout:      timeout,
	}
}

func (r *Recognizer) Engine() string { return r.extractor.Engine() }

// CheckImage rejects payloads that are not a decodable raster or exceed the
// preprocessor's pixel budget, without decoding the pixels. Errors wrap
// ErrInvalidImage or ErrEmptyImage.
func (r *Recognizer) CheckImage(raw RawImage) error {
	return raw.CheckSize(r.preprocessor.opts.MaxPixels)
}

// Recognize always returns a Recognition whose Equation can be passed to the
// solver. On failure the Equation is equation.Sentinel and the error wraps
// ErrRecognitionFailed. If ctx is cancelled the error is ctx.Err() so callers
// can tell superseded work from a failed capture.
func (r *Recognizer) Recognize(ctx context.Context, raw RawImage) (Recognition, error) {
	parent := ctx
	ctx, span := tracer.Start(ctx, "recognition.recognize",
		trace.WithAttributes(
			attribute.String("recognition.engine", r.Engine()),
			attribute.Int("recognition.image_bytes", len(raw.Data)),
		),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	fail := func(stage string, err error) (Recognition, error) {
		if parent.Err() != nil {
			span.SetStatus(codes.Error, "cancelled")
			return r.fallback(""), parent.Err()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		logger.Warn("recognition failed",
			zap.String("stage", stage),
			zap.String("engine", r.Engine()),
			zap.Error(err),
		)
		return r.fallback(""), fmt.Errorf("%w: %s: %w", ErrRecognitionFailed, stage, err)
	}

	start := time.Now()

	img, err := raw.Decode(r.preprocessor.opts.MaxPixels)
	if err != nil {
		return fail("decode", err)
	}

	processed, err := r.preprocessor.Process(img)
	if err != nil {
		return fail("preprocess", err)
	}
	span.AddEvent("preprocessed", trace.WithAttributes(
		attribute.Int("width", processed.Bounds().Dx()),
		attribute.Int("height", processed.Bounds().Dy()),
	))

	text, err := r.extractor.Extract(ctx, processed)
	if err != nil {
		return fail("extract", err)
	}

	rec := FromText(text)
	rec.Engine = r.Engine()
	span.SetAttributes(
		attribute.String("recognition.equation", rec.Equation),
		attribute.Float64("recognition.confidence", rec.Confidence),
	)

	if rec.Fallback {
		span.SetStatus(codes.Error, "too short")
		logger.Warn("recognized text unusable",
			zap.String("raw_text", text),
			zap.String("engine", r.Engine()),
		)
		return rec, fmt.Errorf("%w: %w", ErrRecognitionFailed, errTooShort)
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("equation recognized",
		zap.String("equation", rec.Equation),
		zap.Float64("confidence", rec.Confidence),
		zap.String("engine", r.Engine()),
		zap.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

func (r *Recognizer) fallback(rawText string) Recognition {
	return Recognition{
		Equation: equation.Sentinel,
		RawText:  rawText,
		Fallback: true,
		Engine:   r.Engine(),
	}
}

// FromText normalizes text produced by an extractor and scores how much of
// it survived. Text that normalizes to the sentinel is marked Fallback.
func FromText(text string) Recognition {
	normalized := equation.Normalize(text)
	if equation.IsSentinel(normalized) {
		return Recognition{Equation: normalized, RawText: text, Fallback: true}
	}

	return Recognition{
		Equation:   normalized,
		RawText:    text,
		Confidence: confidence(stripSpace(text), normalized),
	}
}

// confidence is one minus the edit distance between the extracted text and
// its normalized form, relative to the longer of the two.
func confidence(raw, normalized string) float64 {
	longest := max(utf8.RuneCountInString(raw), utf8.RuneCountInString(normalized))
	if longest == 0 {
		return 0
	}
	d := levenshtein.Distance(raw, normalized)
	return 1 - float64(d)/float64(longest)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
