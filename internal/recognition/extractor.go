package recognition

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"
)

// ErrExtractorUnavailable is returned by extractor constructors whose engine
// is not compiled into the binary.
var ErrExtractorUnavailable = errors.New("text extractor unavailable")

const (
	EngineFake      = "fake"
	EngineTesseract = "tesseract"
)

// TextExtractor converts a preprocessed raster into raw candidate text.
// Implementations must return promptly with ctx.Err() once ctx is done.
type TextExtractor interface {
	Extract(ctx context.Context, img image.Image) (string, error)
	Engine() string
}

// DefaultSamples are the equations returned by the fake extractor when none
// are configured.
var DefaultSamples = []string{
	"2x+5=13",
	"x^2+5x+6=0",
	"3x-7=8",
	"x^2-4=0",
}

// FakeExtractor ignores the image and returns its samples round-robin. It
// stands in for OCR in development and tests.
type FakeExtractor struct {
	samples []string
	delay   time.Duration

	mu   sync.Mutex
	next int
}

func NewFakeExtractor(samples []string, delay time.Duration) *FakeExtractor {
	if len(samples) == 0 {
		samples = DefaultSamples
	}
	return &FakeExtractor{
		samples: append([]string(nil), samples...),
		delay:   delay,
	}
}

func (f *FakeExtractor) Engine() string { return EngineFake }

func (f *FakeExtractor) Extract(ctx context.Context, _ image.Image) (string, error) {
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.samples[f.next]
	f.next = (f.next + 1) % len(f.samples)
	return s, nil
}
