// Package gemini implements ocr.Engine on top of a Gemini vision model.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"pincode-backend/internal/ocr"
	"pincode-backend/internal/util"
)

const systemPrompt = `You are a text detection engine for photographed postal addresses.
Find every line of printed or handwritten text in the image, in reading order.
Copy the text verbatim in its original script; do not translate or correct it.
For each line return its bounding box as box_2d = [ymin, xmin, ymax, xmax], normalised to 0-1000.
Return STRICT JSON only:
{"detections": [{"text": string, "box_2d": [int, int, int, int]}]}`

// Engine recognises text with a Gemini model. It owns its client; call Close
// when done.
type Engine struct {
	model  string
	client *genai.Client
}

// New creates the engine and its API client.
func New(ctx context.Context, apiKey, model string) (*Engine, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &Engine{model: strings.TrimSpace(model), client: cl}, nil
}

func (e *Engine) Name() string { return "gemini" }

// Close releases the API client.
func (e *Engine) Close() error { return e.client.Close() }

// Recognize sends the frame to the model and maps its normalised boxes back to pixels.
func (e *Engine) Recognize(ctx context.Context, image []byte) ([]ocr.Detection, error) {
	width, height, err := ocr.FrameSize(image)
	if err != nil {
		return nil, err
	}

	m := e.client.GenerativeModel(e.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      util.Float32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	parts := []genai.Part{
		genai.Text("Detect the text in this frame."),
		&genai.Blob{MIMEType: http.DetectContentType(image), Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		return parseDetections(util.FirstText(resp), width, height)
	}
	return nil, fmt.Errorf("gemini ocr: %w", lastErr)
}

type detectResponse struct {
	Detections []struct {
		Text  string `json:"text"`
		Box2D []int  `json:"box_2d"`
	} `json:"detections"`
}

// parseDetections decodes the model's JSON and converts 0-1000 boxes to pixels.
func parseDetections(raw string, width, height int) ([]ocr.Detection, error) {
	raw = util.StripCodeFences(raw)
	if raw == "" {
		return nil, nil
	}

	var out detectResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("gemini ocr: bad JSON: %w", err)
	}

	detections := make([]ocr.Detection, 0, len(out.Detections))
	for _, d := range out.Detections {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		det := ocr.Detection{Text: text}
		if len(d.Box2D) == 4 {
			det.Box = ocr.Box{
				X0: scale(d.Box2D[1], width),
				Y0: scale(d.Box2D[0], height),
				X1: scale(d.Box2D[3], width),
				Y1: scale(d.Box2D[2], height),
			}
		}
		detections = append(detections, det)
	}
	return detections, nil
}

func scale(v, size int) int {
	if v < 0 {
		v = 0
	}
	if v > 1000 {
		v = 1000
	}
	return v * size / 1000
}
