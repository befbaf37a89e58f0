package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pincode-backend/internal/ocr"
)

func TestParseDetections(t *testing.T) {
	raw := "```json\n" + `{"detections":[
		{"text":"123 MG Road","box_2d":[100,50,200,500]},
		{"text":"  ","box_2d":[0,0,10,10]},
		{"text":"560001","box_2d":[900,-5,1200,400]},
		{"text":"no box"}
	]}` + "\n```"

	got, err := parseDetections(raw, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, []ocr.Detection{
		{Text: "123 MG Road", Box: ocr.Box{X0: 32, Y0: 48, X1: 320, Y1: 96}},
		{Text: "560001", Box: ocr.Box{X0: 0, Y0: 432, X1: 256, Y1: 480}},
		{Text: "no box"},
	}, got)
}

func TestParseDetections_Empty(t *testing.T) {
	got, err := parseDetections("", 10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = parseDetections(`{"detections":[]}`, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseDetections_BadJSON(t *testing.T) {
	_, err := parseDetections("I could not read the image", 10, 10)
	assert.Error(t, err)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)
}
