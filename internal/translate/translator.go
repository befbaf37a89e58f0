// Package translate provides machine translation of recognised text.
//
// Graceful degradation: when translation is disabled or no API key is
// configured, New returns a Passthrough translator that hands text back as-is.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"pincode-backend/config"
	"pincode-backend/internal/address"
)

// Translator turns text into the configured target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Close() error
}

// New builds the translator described by cfg.
func New(ctx context.Context, cfg config.TranslateConfig) (Translator, error) {
	if !cfg.Enabled {
		log.Println("Translation disabled; recognised text is used as-is.")
		return Passthrough{}, nil
	}
	if cfg.APIKey == "" {
		log.Println("GOOGLE_TRANSLATE_API_KEY not set. Translation disabled.")
		return Passthrough{}, nil
	}

	target, err := language.Parse(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid translate.target %q: %w", cfg.Target, err)
	}

	client, err := gtranslate.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}

	log.Printf("Google translation configured (target %s, mode %s)", target, cfg.Mode)
	return &Google{
		client: client,
		target: target,
		auto:   strings.EqualFold(cfg.Mode, "auto"),
	}, nil
}

// Google translates with the Cloud Translation API, detecting the source language.
type Google struct {
	client *gtranslate.Client
	target language.Tag
	auto   bool
}

// Translate returns text in the target language. In auto mode Latin-only text
// is returned unchanged without an API call.
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if g.auto && !address.NeedsTranslation(text) {
		return text, nil
	}

	resp, err := g.client.Translate(ctx, []string{text}, g.target, &gtranslate.Options{Format: gtranslate.Text})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(resp) == 0 {
		return "", errors.New("translation failed: empty response")
	}
	log.Printf("Translated %d chars from %s", len(text), resp[0].Source)
	return resp[0].Text, nil
}

// Close releases the API client.
func (g *Google) Close() error { return g.client.Close() }

// Passthrough returns its input unchanged.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string) (string, error) { return text, nil }
func (Passthrough) Close() error                                            { return nil }
