package recognition

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// ErrBlankImage is returned when no pixel survives binarization as ink.
var ErrBlankImage = errors.New("image contains no ink")

// PreprocessOptions tune the filter chain applied before text extraction.
type PreprocessOptions struct {
	// Threshold is the luminance above which a stretched pixel becomes
	// background.
	Threshold uint8 `yaml:"threshold"`

	// LowPercentile and HighPercentile bound the luminance range that the
	// contrast stretch maps onto 0..255.
	LowPercentile  float64 `yaml:"low_percentile"`
	HighPercentile float64 `yaml:"high_percentile"`

	// Padding is added around the ink bounding box, in pixels.
	Padding int `yaml:"padding"`

	// MaxDimension caps the width and height of the output. Zero disables
	// resizing.
	MaxDimension int `yaml:"max_dimension"`

	// MaxPixels bounds width*height of an input before it is decoded.
	MaxPixels int `yaml:"max_pixels"`
}

func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		Threshold:      140,
		LowPercentile:  0.02,
		HighPercentile: 0.98,
		Padding:        8,
		MaxDimension:   1600,
		MaxPixels:      24_000_000,
	}
}

func (o PreprocessOptions) Validate() error {
	if !(o.LowPercentile >= 0 && o.LowPercentile < o.HighPercentile && o.HighPercentile <= 1) {
		return fmt.Errorf("percentiles must satisfy 0 <= low < high <= 1, got %g and %g", o.LowPercentile, o.HighPercentile)
	}
	if o.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", o.Padding)
	}
	if o.MaxDimension < 0 {
		return fmt.Errorf("max dimension must not be negative, got %d", o.MaxDimension)
	}
	if o.MaxPixels <= 0 {
		return fmt.Errorf("max pixels must be > 0, got %d", o.MaxPixels)
	}
	return nil
}

// Preprocessor turns a photo or drawing into a black-on-white raster cropped
// to its ink.
type Preprocessor struct {
	opts PreprocessOptions
}

func NewPreprocessor(opts PreprocessOptions) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// Process flattens img onto white, converts it to grayscale, stretches
// contrast between the configured luminance percentiles, binarizes at the
// threshold and crops to the ink bounding box plus padding.
func (p *Preprocessor) Process(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrBlankImage
	}
	if m := p.opts.MaxPixels; m > 0 && int64(b.Dx())*int64(b.Dy()) > int64(m) {
		return nil, fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrInvalidImage, b.Dx(), b.Dy(), m)
	}

	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
	gray := imaging.Grayscale(flat)

	lo, hi := p.luminanceRange(gray)
	threshold := p.opts.Threshold
	binary := imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		if stretch(c.R, lo, hi) > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{A: 255}
	})

	roi, ok := inkBounds(binary)
	if !ok {
		return nil, ErrBlankImage
	}
	roi = roi.Inset(-p.opts.Padding).Intersect(binary.Bounds())
	cropped := imaging.Crop(binary, roi)

	if m := p.opts.MaxDimension; m > 0 && (cropped.Bounds().Dx() > m || cropped.Bounds().Dy() > m) {
		cropped = imaging.Fit(cropped, m, m, imaging.NearestNeighbor)
	}
	return cropped, nil
}

// luminanceRange returns the low and high percentile luminance of a
// grayscale image, read from its 256-bin histogram.
func (p *Preprocessor) luminanceRange(gray *image.NRGBA) (float64, float64) {
	levels := make([]float64, 256)
	counts := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i)
	}
	for i := 0; i < len(gray.Pix); i += 4 {
		counts[gray.Pix[i]]++
	}

	lo := stat.Quantile(p.opts.LowPercentile, stat.Empirical, levels, counts)
	hi := stat.Quantile(p.opts.HighPercentile, stat.Empirical, levels, counts)
	return lo, hi
}

// stretch maps v linearly from [lo, hi] onto [0, 255]. A flat histogram
// leaves v unchanged.
func stretch(v uint8, lo, hi float64) uint8 {
	if hi-lo < 1 {
		return v
	}
	s := (float64(v) - lo) * 255 / (hi - lo)
	switch {
	case s <= 0:
		return 0
	case s >= 255:
		return 255
	default:
		return uint8(s + 0.5)
	}
}

func inkBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4] != 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
