//go:build !tesseract

package recognition

import (
	"context"
	"image"
)

// TesseractExtractor is unavailable in builds without the tesseract tag.
type TesseractExtractor struct{}

func NewTesseractExtractor(string) (*TesseractExtractor, error) {
	return nil, ErrExtractorUnavailable
}

func (*TesseractExtractor) Engine() string { return EngineTesseract }

func (*TesseractExtractor) Extract(context.Context, image.Image) (string, error) {
	return "", ErrExtractorUnavailable
}
