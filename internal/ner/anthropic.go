package ner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"pincode-backend/internal/address"
)

// Anthropic tags entities with a Claude model through the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is empty")
	}
	return &Anthropic{
		client: anthropic.NewClient(aoption.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (a *Anthropic) Recognize(ctx context.Context, text string) ([]address.Entity, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic ner: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("ner anthropic tokens_in=%d tokens_out=%d", message.Usage.InputTokens, message.Usage.OutputTokens)
			return parseEntities(block.Text)
		}
	}
	return nil, errors.New("anthropic ner: no text content in response")
}

func (a *Anthropic) Close() error { return nil }
