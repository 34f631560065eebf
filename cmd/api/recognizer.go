package main

import (
	"go.uber.org/zap"

	"go-equation-solver/internal/config"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/recognition"
)

// newRecognizer builds the configured engine. A tesseract engine that is not
// compiled in or cannot load its language data falls back to the fake one.
func newRecognizer(cfg config.RecognizerConfig) *recognition.Recognizer {
	preprocessor := recognition.NewPreprocessor(cfg.Preprocess)

	var extractor recognition.TextExtractor
	if cfg.Engine == recognition.EngineTesseract {
		tess, err := recognition.NewTesseractExtractor(cfg.Language)
		if err != nil {
			observability.Logger.Warn("tesseract unavailable, using fake recognizer", zap.Error(err))
		} else {
			extractor = tess
		}
	}
	if extractor == nil {
		extractor = recognition.NewFakeExtractor(cfg.Samples, cfg.FakeDelay)
	}

	return recognition.NewRecognizer(extractor, preprocessor, cfg.Timeout)
}
