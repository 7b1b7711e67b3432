// Package config loads application settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the application-level configuration. Detection tunables are
// handed to the orchestrator as an explicit detection.Config built from
// these values; nothing here is module-level mutable state.
type Config struct {
	// TemplatePath points at the reference icon image.
	TemplatePath string

	// TargetLabel is the icon caption the OCR fallback searches for.
	TargetLabel string

	// Threshold is the minimum template-match confidence.
	Threshold float64

	// MaxRetries is the total detection attempt budget.
	MaxRetries int

	// RetryDelay is the pause between detection attempts.
	RetryDelay time.Duration

	// OutputDir receives the saved text files.
	OutputDir string

	// DiagnosticsDir receives annotated detection screenshots; empty
	// disables diagnostics.
	DiagnosticsDir string

	// PostLimit caps how many posts are fetched and processed.
	PostLimit int

	// APIBaseURL overrides the posts API endpoint.
	APIBaseURL string

	// OCRLanguage is the Tesseract language code.
	OCRLanguage string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	defaultOutput := filepath.Join(home, "Desktop", "deskscribe")

	cfg := &Config{
		TemplatePath:   getString("DESKSCRIBE_TEMPLATE", "assets/notepad_icon.png"),
		TargetLabel:    getString("DESKSCRIBE_LABEL", "Notepad"),
		OutputDir:      getString("DESKSCRIBE_OUTPUT_DIR", defaultOutput),
		DiagnosticsDir: getString("DESKSCRIBE_DIAG_DIR", filepath.Join(defaultOutput, "detection_screenshots")),
		APIBaseURL:     getString("DESKSCRIBE_API_URL", ""),
		OCRLanguage:    getString("DESKSCRIBE_OCR_LANG", "eng"),
		LogLevel:       getString("DESKSCRIBE_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Threshold, err = getFloat("DESKSCRIBE_THRESHOLD", 0.7); err != nil {
		return nil, err
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("DESKSCRIBE_THRESHOLD must be in (0, 1], got %v", cfg.Threshold)
	}
	if cfg.MaxRetries, err = getInt("DESKSCRIBE_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.PostLimit, err = getInt("DESKSCRIBE_POST_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getDuration("DESKSCRIBE_RETRY_DELAY", time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid float %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}
