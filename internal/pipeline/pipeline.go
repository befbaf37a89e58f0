// Package pipeline turns one photographed address into a pincode validation
// result: OCR, translation, entity recognition, upstream lookup and region
// matching.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pincode-backend/internal/address"
	"pincode-backend/internal/classify"
	"pincode-backend/internal/ner"
	"pincode-backend/internal/ocr"
	"pincode-backend/internal/postal"
	"pincode-backend/internal/translate"
)

const (
	MsgNoText    = "No text detected in the frame."
	MsgNoPincode = "No PIN code detected in the parsed address."
)

// Lookuper is the part of the postal client the pipeline needs.
type Lookuper interface {
	Lookup(ctx context.Context, pincode string) (*postal.Result, error)
}

// Report describes everything learned from one frame.
type Report struct {
	Detections     []ocr.Detection           `json:"detections"`
	RecognizedText string                    `json:"recognized_text"`
	TranslatedText string                    `json:"translated_text"`
	Entities       map[string][]string       `json:"entities"`
	Pincode        string                    `json:"pincode,omitempty"`
	Outcome        classify.Outcome          `json:"outcome,omitempty"`
	Record         classify.PostOfficeRecord `json:"record,omitempty"`
	Match          *classify.RegionMatch     `json:"match,omitempty"`
	Message        string                    `json:"message"`
}

// Pipeline holds the service handles a scan runs through.
type Pipeline struct {
	OCR        ocr.Engine
	Translator translate.Translator
	Recognizer ner.Recognizer
	Postal     Lookuper
}

// Run processes one encoded image. Errors are returned only when a service the
// flow depends on fails (OCR, translation, NER); lookup failures and
// classification outcomes end up in the report message.
func (p *Pipeline) Run(ctx context.Context, image []byte) (*Report, error) {
	if p.OCR == nil || p.Translator == nil || p.Recognizer == nil || p.Postal == nil {
		return nil, errors.New("pipeline is not fully configured")
	}

	detections, err := p.OCR.Recognize(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("error recognizing text: %w", err)
	}
	report := &Report{Detections: detections, Entities: map[string][]string{}}
	if len(detections) == 0 {
		log.Println("No text detected in the frame.")
		report.Message = MsgNoText
		return report, nil
	}

	report.RecognizedText = ocr.Paragraph(detections)
	translated, err := p.Translator.Translate(ctx, report.RecognizedText)
	if err != nil {
		return nil, fmt.Errorf("error translating text: %w", err)
	}
	report.TranslatedText = translated
	log.Printf("Recognized Text (Translated to English): %s", translated)

	entities, err := p.Recognizer.Recognize(ctx, translated)
	if err != nil {
		return nil, fmt.Errorf("error parsing address: %w", err)
	}
	parsed := address.Parse(translated, entities)
	report.Entities = parsed.Components
	log.Printf("Parsed Address Components: %v", parsed.Components)

	if parsed.Pincode == "" {
		log.Println("No PIN code detected in the parsed address.")
		report.Message = MsgNoPincode
		return report, nil
	}
	report.Pincode = parsed.Pincode
	log.Printf("Extracted PIN code: %s", parsed.Pincode)

	result, err := p.Postal.Lookup(ctx, parsed.Pincode)
	if err != nil {
		report.Message = postal.Describe(err)
		return report, nil
	}
	report.Outcome = result.Outcome
	if !result.Outcome.OK() {
		report.Message = result.Message
		return report, nil
	}

	report.Record = result.Record
	match := classify.MatchRegion(result.Record, translated)
	report.Match = &match
	report.Message = match.Message
	log.Printf("Validation Result: %s", match.Message)
	return report, nil
}
