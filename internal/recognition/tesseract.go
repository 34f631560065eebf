//go:build tesseract

package recognition

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// tesseractWhitelist restricts OCR output to digits, operators and the
// symbols a handwritten equation may contain.
const tesseractWhitelist = "0123456789+-*/()=xyzabcXYZ√^.<>≤≥∫∑∏!"

// TesseractExtractor runs Tesseract through gosseract. Build with
// -tags tesseract and the Tesseract development headers installed.
type TesseractExtractor struct {
	language string
}

func NewTesseractExtractor(language string) (*TesseractExtractor, error) {
	if language == "" {
		language = "eng"
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractorUnavailable, err)
	}

	return &TesseractExtractor{language: language}, nil
}

func (t *TesseractExtractor) Engine() string { return EngineTesseract }

type ocrResult struct {
	text string
	err  error
}

// Extract encodes img as PNG and runs single-line OCR on it. The gosseract
// call cannot be interrupted, so it runs on its own goroutine and is
// abandoned when ctx is done.
func (t *TesseractExtractor) Extract(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	done := make(chan ocrResult, 1)
	go func() {
		text, err := t.recognize(buf.Bytes())
		done <- ocrResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (t *TesseractExtractor) recognize(png []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetWhitelist(tesseractWhitelist); err != nil {
		return "", fmt.Errorf("set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
