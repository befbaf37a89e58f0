package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pincode-backend/config"
	"pincode-backend/internal/ner"
	"pincode-backend/internal/ocr"
	"pincode-backend/internal/ocr/gemini"
	"pincode-backend/internal/translate"
)

// ErrScanningDisabled is returned by FromConfig when no OCR provider is configured.
var ErrScanningDisabled = errors.New("ocr.provider is not set; scanning is disabled")

// NewEngine builds the OCR engine selected by cfg.Provider.
func NewEngine(ctx context.Context, cfg config.OCRConfig) (ocr.Engine, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, ErrScanningDisabled
	case "gemini":
		return gemini.New(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown ocr.provider %q", cfg.Provider)
	}
}

// FromConfig creates every service handle the pipeline needs. The caller owns
// the result and must Close it.
func FromConfig(ctx context.Context, cfg *config.Config, lookup Lookuper) (*Pipeline, error) {
	engine, err := NewEngine(ctx, cfg.OCR)
	if err != nil {
		return nil, err
	}

	translator, err := translate.New(ctx, cfg.Translate)
	if err != nil {
		engine.Close()
		return nil, err
	}

	recognizer, err := ner.New(ctx, cfg.NER)
	if err != nil {
		engine.Close()
		translator.Close()
		return nil, err
	}

	return &Pipeline{
		OCR:        engine,
		Translator: translator,
		Recognizer: recognizer,
		Postal:     lookup,
	}, nil
}

// Close releases the OCR, translation and NER clients.
func (p *Pipeline) Close() error {
	var errs []error
	if p.OCR != nil {
		errs = append(errs, p.OCR.Close())
	}
	if p.Translator != nil {
		errs = append(errs, p.Translator.Close())
	}
	if p.Recognizer != nil {
		errs = append(errs, p.Recognizer.Close())
	}
	return errors.Join(errs...)
}
