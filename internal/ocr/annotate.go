package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
)

const (
	boxLineWidth = 2
	labelOffset  = 4
)

// Annotate draws every detection's box and text onto the frame and returns the
// result encoded as PNG.
func Annotate(frame []byte, detections []Detection) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(boxLineWidth)
	for _, d := range detections {
		if d.Box.Empty() {
			continue
		}
		dc.SetRGB(0, 1, 0)
		dc.DrawRectangle(float64(d.Box.X0), float64(d.Box.Y0),
			float64(d.Box.X1-d.Box.X0), float64(d.Box.Y1-d.Box.Y0))
		dc.Stroke()

		dc.SetRGB255(36, 255, 12)
		dc.DrawString(d.Text, float64(d.Box.X0), float64(d.Box.Y0-labelOffset))
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode annotated frame: %w", err)
	}
	return buf.Bytes(), nil
}

// FrameSize returns the pixel dimensions of an encoded image without decoding it fully.
func FrameSize(frame []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read frame header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
