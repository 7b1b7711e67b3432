package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"deskscribe/internal/automation"
	"deskscribe/internal/config"
	"deskscribe/internal/detection"
	"deskscribe/internal/diag"
	"deskscribe/internal/imaging"
	"deskscribe/internal/ocr"
	"deskscribe/internal/posts"
	"deskscribe/internal/screen"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version information and exit")
	dryRun := flag.Bool("dry-run", false, "run detection only, without mouse/keyboard automation")
	flag.Parse()

	if *showVersion {
		fmt.Printf("deskscribe %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	if err := run(cfg, *dryRun); err != nil {
		slog.Error("deskscribe failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, dryRun bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	template, err := imaging.LoadImage(cfg.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to load icon template: %w", err)
	}
	slog.Info("icon template loaded", "path", cfg.TemplatePath,
		"width", template.Bounds().Dx(), "height", template.Bounds().Dy())

	capturer, err := screen.PrimaryDisplay()
	if err != nil {
		return err
	}

	// Capability check once at startup; the detector runs template-only
	// when no OCR engine is present.
	var recognizer detection.Recognizer
	if info := ocr.Probe(); info.Available {
		slog.Info("ocr engine available", "version", info.Version)
		recognizer = ocr.NewTesseract(cfg.OCRLanguage)
	} else {
		slog.Warn("ocr engine unavailable, fallback disabled", "reason", info.Error)
	}

	var sink detection.Sink
	if cfg.DiagnosticsDir != "" {
		sink, err = diag.NewDirSink(cfg.DiagnosticsDir)
		if err != nil {
			// Diagnostics are best-effort; detection proceeds without.
			slog.Warn("diagnostics disabled", "error", err)
			sink = nil
		}
	}

	detCfg := detection.DefaultConfig(cfg.TargetLabel)
	detCfg.Threshold = cfg.Threshold
	detCfg.MaxRetries = cfg.MaxRetries
	detCfg.RetryDelay = cfg.RetryDelay

	detector, err := detection.NewDetector(template, capturer, recognizer, sink, detCfg)
	if err != nil {
		return fmt.Errorf("failed to build detector: %w", err)
	}

	client := posts.NewClient(cfg.APIBaseURL)
	fetched, err := client.FetchPosts(ctx, cfg.PostLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	valid := fetched[:0]
	for _, p := range fetched {
		if p.Validate() {
			valid = append(valid, p)
		}
	}
	if len(valid) < len(fetched) {
		slog.Warn("some posts were invalid", "fetched", len(fetched), "valid", len(valid))
	}
	if len(valid) == 0 {
		return fmt.Errorf("no valid posts to process")
	}
	slog.Info("posts ready", "count", len(valid))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if !dryRun {
		automation.ShowDesktop()
	}

	saved, failed := 0, 0
	for _, post := range valid {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := detector.Detect(ctx)
		if err != nil {
			return err
		}
		if !result.Found {
			slog.Error("icon not found",
				"post", post.ID, "attempts", result.Attempts,
				"best_confidence", result.BestConfidence)
			failed++
			continue
		}
		slog.Info("icon detected", "post", post.ID, "method", result.Method,
			"position", result.Position, "confidence", result.Confidence)

		if dryRun {
			saved++
			continue
		}

		path := automation.DedupPath(
			filepath.Join(cfg.OutputDir, fmt.Sprintf("post_%d.txt", post.ID)),
			func(p string) bool {
				_, statErr := os.Stat(p)
				return statErr == nil
			},
		)

		automation.OpenIconAt(result.Position.X, result.Position.Y)
		automation.TypeText(post.FormatContent())
		automation.SaveAs(path)
		automation.CloseEditor()

		slog.Info("post saved", "post", post.ID, "path", path)
		saved++
	}

	slog.Info("run complete", "saved", saved, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d posts failed", failed, saved+failed)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
