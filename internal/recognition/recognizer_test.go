package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"go-equation-solver/internal/equation"
)

// inkImage draws a dark bar on a light background.
func inkImage(w, h int, background, ink uint8, bar image.Rectangle) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: background, G: background, B: background, A: 255})
	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		for x := bar.Min.X; x < bar.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: ink, G: ink, B: ink, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func TestParseRawImage(t *testing.T) {
	png := encodePNG(t, inkImage(20, 10, 255, 0, image.Rect(2, 2, 8, 8)))
	b64 := base64.StdEncoding.EncodeToString(png)

	t.Run("plain base64", func(t *testing.T) {
		raw, err := ParseRawImage(b64)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(raw.Data, png) {
			t.Fatal("decoded bytes differ from the encoded image")
		}
	})

	t.Run("data url", func(t *testing.T) {
		raw, err := ParseRawImage("data:image/png;base64," + b64)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := raw.Decode(0); err != nil {
			t.Fatalf("decoding image: %v", err)
		}
	})

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"empty", "  ", ErrEmptyImage},
		{"data url without base64", "data:image/png," + b64, ErrInvalidImage},
		{"not base64", "%%%", ErrInvalidImage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRawImage(tc.payload)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRawImageDecodeRejectsGarbage(t *testing.T) {
	_, err := RawImage{Data: []byte("not an image")}.Decode(0)
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessCropsToInk(t *testing.T) {
	img := inkImage(200, 80, 255, 0, image.Rect(50, 30, 150, 50))
	p := NewPreprocessor(DefaultPreprocessOptions())

	out, err := p.Process(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := out.Bounds().Size(), image.Pt(116, 36); got != want {
		t.Fatalf("expected size %v, got %v", want, got)
	}

	for i := 0; i < len(out.Pix); i += 4 {
		if v := out.Pix[i]; v != 0 && v != 255 {
			t.Fatalf("expected a binary image, found luminance %d", v)
		}
	}
	if out.NRGBAAt(0, 0).R != 255 {
		t.Fatal("expected padding to be background")
	}
	if out.NRGBAAt(8, 8).R != 0 {
		t.Fatal("expected ink inside the padding")
	}
}

func TestPreprocessStretchesLowContrast(t *testing.T) {
	// Both levels sit above the threshold; only the stretch separates them.
	img := inkImage(200, 80, 200, 150, image.Rect(50, 30, 150, 50))
	p := NewPreprocessor(DefaultPreprocessOptions())

	out, err := p.Process(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := out.Bounds().Size(), image.Pt(116, 36); got != want {
		t.Fatalf("expected size %v, got %v", want, got)
	}
}

func TestPreprocessFlattensTransparentCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 40))
	for x := 10; x < 50; x++ {
		img.SetNRGBA(x, 20, color.NRGBA{A: 255})
	}

	opts := DefaultPreprocessOptions()
	opts.Padding = 0
	out, err := NewPreprocessor(opts).Process(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := out.Bounds().Size(), image.Pt(40, 1); got != want {
		t.Fatalf("expected size %v, got %v", want, got)
	}
}

func TestPreprocessBlankImage(t *testing.T) {
	img := inkImage(50, 50, 255, 255, image.Rectangle{})
	_, err := NewPreprocessor(DefaultPreprocessOptions()).Process(img)
	if !errors.Is(err, ErrBlankImage) {
		t.Fatalf("expected ErrBlankImage, got %v", err)
	}
}

func TestPreprocessFitsMaxDimension(t *testing.T) {
	img := inkImage(400, 100, 255, 0, image.Rect(10, 10, 390, 90))
	opts := DefaultPreprocessOptions()
	opts.MaxDimension = 50

	out, err := NewPreprocessor(opts).Process(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := out.Bounds(); b.Dx() > 50 || b.Dy() > 50 {
		t.Fatalf("expected output within 50x50, got %v", b.Size())
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if v := out.Pix[i]; v != 0 && v != 255 {
			t.Fatalf("expected a binary image after resizing, found luminance %d", v)
		}
	}
}

// pngClaiming encodes a 1x1 PNG and rewrites its IHDR chunk to declare
// width x height, so only the header describes a large raster.
func pngClaiming(t *testing.T, width, height uint32) RawImage {
	t.Helper()
	data := encodePNG(t, image.NewGray(image.Rect(0, 0, 1, 1)))

	// 8-byte signature, 4-byte length, "IHDR", then width and height.
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return RawImage{Data: data}
}

func TestCheckSizeRejectsOversizedImage(t *testing.T) {
	raw := pngClaiming(t, 12000, 12000)

	err := raw.CheckSize(DefaultPreprocessOptions().MaxPixels)
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if _, err := raw.Decode(DefaultPreprocessOptions().MaxPixels); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected Decode to refuse the image, got %v", err)
	}

	small := RawImage{Data: encodePNG(t, inkImage(20, 10, 255, 0, image.Rect(2, 2, 8, 8)))}
	if err := small.CheckSize(200); err != nil {
		t.Fatalf("20x10 should fit in 200 pixels: %v", err)
	}
	if err := small.CheckSize(199); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("20x10 should exceed 199 pixels, got %v", err)
	}
}

func TestRecognizerRejectsOversizedImageBeforeDecoding(t *testing.T) {
	r := NewRecognizer(NewFakeExtractor(nil, 0), NewPreprocessor(DefaultPreprocessOptions()), time.Second)
	raw := pngClaiming(t, 12000, 12000)

	if err := r.CheckImage(raw); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected CheckImage to return ErrInvalidImage, got %v", err)
	}

	rec, err := r.Recognize(context.Background(), raw)
	if !errors.Is(err, ErrRecognitionFailed) || !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected a recognition failure wrapping ErrInvalidImage, got %v", err)
	}
	if rec.Equation != equation.Sentinel {
		t.Fatalf("expected the sentinel equation, got %q", rec.Equation)
	}
}

func TestPreprocessRejectsImageOverPixelBudget(t *testing.T) {
	opts := DefaultPreprocessOptions()
	opts.MaxPixels = 1000

	_, err := NewPreprocessor(opts).Process(inkImage(200, 80, 255, 0, image.Rect(50, 30, 150, 50)))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessOptionsValidate(t *testing.T) {
	if err := DefaultPreprocessOptions().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := []PreprocessOptions{
		{LowPercentile: 0.5, HighPercentile: 0.5},
		{LowPercentile: -0.1, HighPercentile: 0.9},
		{LowPercentile: 0.1, HighPercentile: 1.1},
		{LowPercentile: 0.1, HighPercentile: 0.9, Padding: -1},
		{LowPercentile: 0.1, HighPercentile: 0.9, MaxDimension: -1, MaxPixels: 1},
		{LowPercentile: 0.1, HighPercentile: 0.9},
	}
	for i, opts := range bad {
		if err := opts.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, opts)
		}
	}
}

func TestStretch(t *testing.T) {
	tests := []struct {
		v      uint8
		lo, hi float64
		want   uint8
	}{
		{150, 150, 200, 0},
		{200, 150, 200, 255},
		{175, 150, 200, 128},
		{10, 150, 200, 0},
		{90, 100, 100, 90},
	}
	for _, tc := range tests {
		if got := stretch(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("stretch(%d, %g, %g) = %d, want %d", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestFakeExtractorRoundRobin(t *testing.T) {
	f := NewFakeExtractor(nil, 0)
	ctx := context.Background()

	for i := 0; i < 2*len(DefaultSamples); i++ {
		got, err := f.Extract(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := DefaultSamples[i%len(DefaultSamples)]; got != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestFakeExtractorHonoursContext(t *testing.T) {
	f := NewFakeExtractor([]string{"x=1"}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Extract(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTesseractWithoutBuildTag(t *testing.T) {
	if _, err := NewTesseractExtractor("eng"); err == nil {
		t.Skip("built with tesseract support")
	} else if !errors.Is(err, ErrExtractorUnavailable) {
		t.Fatalf("expected ErrExtractorUnavailable, got %v", err)
	}
}

type staticExtractor string

func (s staticExtractor) Engine() string { return "static" }

func (s staticExtractor) Extract(context.Context, image.Image) (string, error) {
	return string(s), nil
}

func testImage(t *testing.T) RawImage {
	t.Helper()
	return RawImage{Data: encodePNG(t, inkImage(120, 40, 255, 0, image.Rect(10, 10, 110, 30)))}
}

func TestRecognizerRecognize(t *testing.T) {
	r := NewRecognizer(NewFakeExtractor(nil, 0), NewPreprocessor(DefaultPreprocessOptions()), time.Second)

	rec, err := r.Recognize(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Equation != "2x+5=13" {
		t.Fatalf("expected first sample, got %q", rec.Equation)
	}
	if rec.Confidence != 1 || rec.Fallback || rec.Engine != EngineFake {
		t.Fatalf("unexpected recognition %+v", rec)
	}
}

func TestRecognizerFailures(t *testing.T) {
	pre := NewPreprocessor(DefaultPreprocessOptions())

	tests := []struct {
		name      string
		extractor TextExtractor
		raw       RawImage
		cause     error
	}{
		{"undecodable", staticExtractor("x=1"), RawImage{Data: []byte("nope")}, ErrInvalidImage},
		{"blank", staticExtractor("x=1"), RawImage{Data: encodePNG(t, inkImage(30, 30, 255, 255, image.Rectangle{}))}, ErrBlankImage},
		{"too short", staticExtractor(" ? "), testImage(t), errTooShort},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRecognizer(tc.extractor, pre, time.Second)
			rec, err := r.Recognize(context.Background(), tc.raw)
			if !errors.Is(err, ErrRecognitionFailed) {
				t.Fatalf("expected ErrRecognitionFailed, got %v", err)
			}
			if !errors.Is(err, tc.cause) {
				t.Fatalf("expected cause %v, got %v", tc.cause, err)
			}
			if rec.Equation != equation.Sentinel || !rec.Fallback {
				t.Fatalf("expected sentinel fallback, got %+v", rec)
			}
		})
	}
}

func TestRecognizerTimeoutIsFailure(t *testing.T) {
	r := NewRecognizer(NewFakeExtractor(nil, time.Minute), NewPreprocessor(DefaultPreprocessOptions()), 10*time.Millisecond)

	_, err := r.Recognize(context.Background(), testImage(t))
	if !errors.Is(err, ErrRecognitionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected a failed recognition caused by the deadline, got %v", err)
	}
}

func TestRecognizerCancellation(t *testing.T) {
	r := NewRecognizer(NewFakeExtractor(nil, time.Minute), NewPreprocessor(DefaultPreprocessOptions()), 0)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Recognize(ctx, testImage(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrRecognitionFailed) {
		t.Fatal("cancellation must not be reported as a recognition failure")
	}
}

func TestFromText(t *testing.T) {
	tests := []struct {
		text       string
		equation   string
		confidence float64
		fallback   bool
	}{
		{"2x + 5 = 13", "2x+5=13", 1, false},
		{"2x+5=13 cm", "2x+5=13", 1 - 2.0/9.0, false},
		{"X² − 4 = 0", "x^2-4=0", 1 - 4.0/7.0, false},
		{"", equation.Sentinel, 0, true},
		{"abc", equation.Sentinel, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			rec := FromText(tc.text)
			if rec.Equation != tc.equation || rec.Fallback != tc.fallback {
				t.Fatalf("unexpected recognition %+v", rec)
			}
			if math.Abs(rec.Confidence-tc.confidence) > 1e-9 {
				t.Fatalf("expected confidence %g, got %g", tc.confidence, rec.Confidence)
			}
		})
	}
}
