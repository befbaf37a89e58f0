// Package ocr defines the text detection engine boundary and helpers that work
// on its detections.
package ocr

import (
	"context"
	"strings"
)

// Box is a pixel rectangle, top-left inclusive.
type Box struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// Detection is one piece of recognised text and where it sits in the frame.
type Detection struct {
	Text string `json:"text"`
	Box  Box    `json:"box"`
}

// Engine recognises text in an encoded image (JPEG or PNG).
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) ([]Detection, error)
	Close() error
}

// Paragraph joins the detection texts with single spaces, in detection order.
func Paragraph(detections []Detection) string {
	parts := make([]string, 0, len(detections))
	for _, d := range detections {
		if t := strings.TrimSpace(d.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
