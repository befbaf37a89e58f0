// Package ner tags address text with named entities (locations, people,
// organisations) using a hosted language model.
package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"pincode-backend/config"
	"pincode-backend/internal/address"
	"pincode-backend/internal/util"
)

const systemPrompt = `You are a named-entity recognition model for postal addresses.
Tag every entity in the user's text with one of: LOC (cities, districts, states, localities, roads),
PER (person names), ORG (companies, institutions, buildings), MISC (anything else worth tagging).
Copy each entity word exactly as it appears. Do not tag house numbers or pincodes.
Return STRICT JSON only: {"entities": [{"type": "LOC", "word": "Bangalore"}]}`

// Recognizer finds entities in text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]address.Entity, error)
	Close() error
}

// New builds the recognizer selected by cfg.Provider.
func New(ctx context.Context, cfg config.NERConfig) (Recognizer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		log.Println("NER disabled; address components will be empty.")
		return None{}, nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown ner.provider %q", cfg.Provider)
	}
}

// None finds nothing.
type None struct{}

func (None) Recognize(context.Context, string) ([]address.Entity, error) { return nil, nil }
func (None) Close() error                                                { return nil }

// parseEntities decodes a model reply in the shared entity schema.
func parseEntities(raw string) ([]address.Entity, error) {
	raw = util.StripCodeFences(raw)
	if raw == "" {
		return nil, nil
	}
	var out struct {
		Entities []address.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("ner: bad JSON: %w", err)
	}
	entities := out.Entities[:0]
	for _, e := range out.Entities {
		e.Type = strings.ToUpper(strings.TrimSpace(e.Type))
		e.Word = strings.TrimSpace(e.Word)
		if e.Type != "" && e.Word != "" {
			entities = append(entities, e)
		}
	}
	return entities, nil
}
