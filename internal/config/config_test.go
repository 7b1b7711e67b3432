package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so defaults are observable
// regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DESKSCRIBE_TEMPLATE", "DESKSCRIBE_LABEL", "DESKSCRIBE_OUTPUT_DIR",
		"DESKSCRIBE_DIAG_DIR", "DESKSCRIBE_API_URL", "DESKSCRIBE_OCR_LANG",
		"DESKSCRIBE_LOG_LEVEL", "DESKSCRIBE_THRESHOLD", "DESKSCRIBE_MAX_RETRIES",
		"DESKSCRIBE_POST_LIMIT", "DESKSCRIBE_RETRY_DELAY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "assets/notepad_icon.png", cfg.TemplatePath)
	assert.Equal(t, "Notepad", cfg.TargetLabel)
	assert.Equal(t, 0.7, cfg.Threshold)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 10, cfg.PostLimit)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.OutputDir)
	assert.NotEmpty(t, cfg.DiagnosticsDir)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DESKSCRIBE_TEMPLATE", "icons/editor.png")
	t.Setenv("DESKSCRIBE_LABEL", "Editor")
	t.Setenv("DESKSCRIBE_THRESHOLD", "0.85")
	t.Setenv("DESKSCRIBE_MAX_RETRIES", "5")
	t.Setenv("DESKSCRIBE_RETRY_DELAY", "250ms")
	t.Setenv("DESKSCRIBE_POST_LIMIT", "2")
	t.Setenv("DESKSCRIBE_OCR_LANG", "deu")
	t.Setenv("DESKSCRIBE_API_URL", "http://localhost:9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "icons/editor.png", cfg.TemplatePath)
	assert.Equal(t, "Editor", cfg.TargetLabel)
	assert.Equal(t, 0.85, cfg.Threshold)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 2, cfg.PostLimit)
	assert.Equal(t, "deu", cfg.OCRLanguage)
	assert.Equal(t, "http://localhost:9999", cfg.APIBaseURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"threshold not a number", "DESKSCRIBE_THRESHOLD", "high"},
		{"threshold zero", "DESKSCRIBE_THRESHOLD", "0"},
		{"threshold above one", "DESKSCRIBE_THRESHOLD", "1.5"},
		{"retries not an int", "DESKSCRIBE_MAX_RETRIES", "three"},
		{"delay not a duration", "DESKSCRIBE_RETRY_DELAY", "soon"},
		{"limit not an int", "DESKSCRIBE_POST_LIMIT", "lots"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(c.key, c.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
