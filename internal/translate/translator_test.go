package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pincode-backend/config"
)

func TestNew_Degrades(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.TranslateConfig
	}{
		{name: "Disabled", cfg: config.TranslateConfig{Enabled: false, APIKey: "key"}},
		{name: "No API key", cfg: config.TranslateConfig{Enabled: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := New(context.Background(), tc.cfg)
			require.NoError(t, err)
			assert.IsType(t, Passthrough{}, tr)
			assert.NoError(t, tr.Close())
		})
	}
}

func TestNew_InvalidTarget(t *testing.T) {
	_, err := New(context.Background(), config.TranslateConfig{Enabled: true, APIKey: "key", Target: "not a tag!"})
	assert.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	out, err := Passthrough{}.Translate(context.Background(), "சென்னை 600001")
	require.NoError(t, err)
	assert.Equal(t, "சென்னை 600001", out)
}

func TestGoogle_AutoSkipsLatinText(t *testing.T) {
	// No client: any API call would panic, so this proves the short-circuit.
	g := &Google{auto: true}
	out, err := g.Translate(context.Background(), "123 MG Road Bangalore 560001")
	require.NoError(t, err)
	assert.Equal(t, "123 MG Road Bangalore 560001", out)

	out, err = g.Translate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "   ", out)
}
