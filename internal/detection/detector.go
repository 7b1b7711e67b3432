package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"deskscribe/internal/imaging"
)

// ErrEmptyLabel is returned when the target label is empty. Without a label
// the OCR fallback has nothing to look for, which is a caller bug.
var ErrEmptyLabel = errors.New("target label is empty")

// ErrUnavailable signals that the text-recognition engine is not usable on
// this system. The orchestrator treats it exactly like "no hits", but it is
// kept distinct so logs can tell a missing engine from a true miss.
var ErrUnavailable = errors.New("text recognition engine unavailable")

// Capturer obtains a fresh screenshot of the primary display. Each detection
// attempt captures anew; screenshots are never reused because the desktop
// may change between retries.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Recognizer runs text recognition over an image and returns the recognized
// fragments with bounding boxes and confidences. Implementations that are
// not usable should return an error wrapping ErrUnavailable.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]TextHit, error)
}

// Sink stores diagnostic annotated screenshots. Saving is best-effort: the
// orchestrator logs and swallows sink failures, they never abort detection.
type Sink interface {
	Save(img image.Image, name string) error
}

// Config carries the orchestrator tunables. It is passed in explicitly so
// tests can vary settings per case without cross-test interference.
type Config struct {
	// Label is the caption text the OCR fallback searches for.
	Label string

	// Scales are the template resize factors to try. Empty uses
	// DefaultScales.
	Scales []float64

	// Threshold is the minimum template-match confidence. A winning
	// confidence below it triggers the OCR fallback. Zero or negative
	// uses the default of 0.7.
	Threshold float64

	// MaxRetries is the total capture attempt budget. Zero or negative
	// uses the default of 3.
	MaxRetries int

	// RetryDelay is the pause between attempts. Zero uses the default of
	// one second.
	RetryDelay time.Duration

	// CaptureTimeout and RecognizeTimeout bound the respective
	// collaborator calls. An overrun is a recoverable error, handled like
	// a detection miss. Zero uses the default of five seconds.
	CaptureTimeout   time.Duration
	RecognizeTimeout time.Duration
}

// Defaults mirroring the tunables of the original detection procedure.
const (
	DefaultThreshold        = 0.7
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = time.Second
	DefaultCollabTimeout    = 5 * time.Second
	diagnosticDefaultExtent = 50
)

// DefaultConfig returns a Config with all tunables at their defaults.
func DefaultConfig(label string) Config {
	return Config{
		Label:            label,
		Scales:           DefaultScales,
		Threshold:        DefaultThreshold,
		MaxRetries:       DefaultMaxRetries,
		RetryDelay:       DefaultRetryDelay,
		CaptureTimeout:   DefaultCollabTimeout,
		RecognizeTimeout: DefaultCollabTimeout,
	}
}

// Detector orchestrates icon detection: capture, template attempt, OCR
// fallback, bounded retry. It holds no mutable state across calls; the
// template is read-only for the detector's lifetime, so concurrent Detect
// calls are safe as long as the collaborators are.
type Detector struct {
	template   image.Image
	capturer   Capturer
	recognizer Recognizer // nil when OCR is unavailable
	sink       Sink       // nil disables diagnostics
	cfg        Config
	log        *slog.Logger
}

// NewDetector validates inputs and builds a Detector.
//
// An empty template or label is an invalid-input error and fails
// immediately; those are caller bugs, not detection misses. recognizer may
// be nil when the startup capability check found no OCR engine, and sink
// may be nil to disable diagnostics.
func NewDetector(template image.Image, capturer Capturer, recognizer Recognizer, sink Sink, cfg Config) (*Detector, error) {
	if template == nil || template.Bounds().Dx() == 0 || template.Bounds().Dy() == 0 {
		return nil, ErrEmptyTemplate
	}
	if cfg.Label == "" {
		return nil, ErrEmptyLabel
	}
	if capturer == nil {
		return nil, errors.New("capturer is required")
	}

	if len(cfg.Scales) == 0 {
		cfg.Scales = DefaultScales
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.CaptureTimeout == 0 {
		cfg.CaptureTimeout = DefaultCollabTimeout
	}
	if cfg.RecognizeTimeout == 0 {
		cfg.RecognizeTimeout = DefaultCollabTimeout
	}

	return &Detector{
		template:   template,
		capturer:   capturer,
		recognizer: recognizer,
		sink:       sink,
		cfg:        cfg,
		log:        slog.With("component", "detector"),
	}, nil
}

// Detect runs the detection state machine to completion: capture a fresh
// screenshot, try template matching, fall back to OCR when the match is
// inconclusive, and retry with a delay until the attempt budget is spent.
//
// Detection misses and recoverable collaborator failures (timeouts, missing
// OCR engine) never surface as errors; they drive the retry loop. The
// returned error is non-nil only for cancellation. A not-found Result still
// carries the best template confidence observed, to aid debugging.
func (d *Detector) Detect(ctx context.Context) (Result, error) {
	var res Result

	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := d.wait(ctx); err != nil {
				return res, err
			}
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts = attempt

		shot, err := d.captureWithTimeout(ctx)
		if err != nil {
			d.log.Warn("screen capture failed", "attempt", attempt, "error", err)
			continue
		}

		cand, err := BestMatch(shot, d.template, d.cfg.Scales)
		if err != nil {
			// Template validated at construction; surface anyway.
			return res, err
		}
		if cand != nil && cand.Confidence > res.BestConfidence {
			res.BestConfidence = cand.Confidence
		}

		if cand != nil && cand.Confidence >= d.cfg.Threshold {
			res.Found = true
			res.Method = MethodTemplate
			res.Position = cand.Center()
			res.Confidence = cand.Confidence
			d.log.Info("icon found via template matching",
				"attempt", attempt, "position", res.Position,
				"scale", cand.Scale, "confidence", cand.Confidence)
			d.saveDiagnostic(shot, attempt, res, cand.Width, cand.Height)
			return res, nil
		}
		if cand != nil {
			d.log.Debug("template match below threshold",
				"attempt", attempt, "confidence", cand.Confidence,
				"threshold", d.cfg.Threshold)
		} else {
			d.log.Debug("template does not fit screenshot at any scale", "attempt", attempt)
		}

		if hit, ok := d.ocrAttempt(ctx, shot, attempt); ok {
			res.Found = true
			res.Method = MethodOCR
			res.Position = IconCenterAbove(hit.Bounds)
			res.Confidence = hit.Score
			d.saveDiagnostic(shot, attempt, res, hit.Bounds.Width(), hit.Bounds.Height())
			return res, nil
		}

		d.saveMissDiagnostic(shot, attempt, cand)
	}

	d.log.Warn("icon not found, retries exhausted",
		"attempts", res.Attempts, "best_confidence", res.BestConfidence)
	return res, nil
}

// ocrAttempt preprocesses the screenshot, runs text recognition, and returns
// the best hit for the target label. All recognizer failures are recoverable
// here; a missing engine is logged distinctly from a recognition error.
func (d *Detector) ocrAttempt(ctx context.Context, shot image.Image, attempt int) (ScoredHit, bool) {
	if d.recognizer == nil {
		return ScoredHit{}, false
	}

	prepared := imaging.PrepareForOCR(shot)
	hits, err := d.recognizeWithTimeout(ctx, prepared)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			d.log.Warn("ocr engine unavailable", "attempt", attempt, "error", err)
		} else {
			d.log.Warn("ocr recognition failed", "attempt", attempt, "error", err)
		}
		return ScoredHit{}, false
	}

	ranked := RankHits(hits, d.cfg.Label)
	if len(ranked) == 0 {
		d.log.Debug("no text hit for label", "attempt", attempt, "label", d.cfg.Label)
		return ScoredHit{}, false
	}

	best := ranked[0]
	d.log.Info("icon found via ocr fallback",
		"attempt", attempt, "text", best.Text,
		"similarity", best.Similarity, "score", best.Score)
	return best, true
}

// wait blocks for the configured retry delay, returning early if the caller
// cancels.
func (d *Detector) wait(ctx context.Context) error {
	timer := time.NewTimer(d.cfg.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// captureWithTimeout bounds the capture collaborator. A blocked capture is
// reported as a recoverable error, not waited on indefinitely.
func (d *Detector) captureWithTimeout(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.CaptureTimeout)
	defer cancel()

	type capture struct {
		img image.Image
		err error
	}
	ch := make(chan capture, 1)
	go func() {
		img, err := d.capturer.Capture(ctx)
		ch <- capture{img, err}
	}()

	select {
	case c := <-ch:
		return c.img, c.err
	case <-ctx.Done():
		return nil, fmt.Errorf("screen capture timed out: %w", ctx.Err())
	}
}

// recognizeWithTimeout bounds the recognizer the same way.
func (d *Detector) recognizeWithTimeout(ctx context.Context, img image.Image) ([]TextHit, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.RecognizeTimeout)
	defer cancel()

	type recognition struct {
		hits []TextHit
		err  error
	}
	ch := make(chan recognition, 1)
	go func() {
		hits, err := d.recognizer.Recognize(ctx, img)
		ch <- recognition{hits, err}
	}()

	select {
	case r := <-ch:
		return r.hits, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("text recognition timed out: %w", ctx.Err())
	}
}

// saveDiagnostic writes an annotated screenshot for a resolved detection.
func (d *Detector) saveDiagnostic(shot image.Image, attempt int, res Result, w, h int) {
	if d.sink == nil {
		return
	}
	annotated := imaging.Annotate(shot, imaging.Annotation{
		Center:     res.Position,
		Width:      w,
		Height:     h,
		Label:      d.cfg.Label,
		Confidence: res.Confidence,
	})
	name := fmt.Sprintf("attempt_%02d_%s", attempt, res.Method)
	if err := d.sink.Save(annotated, name); err != nil {
		d.log.Warn("failed to save diagnostic screenshot", "name", name, "error", err)
	}
}

// saveMissDiagnostic writes an annotated screenshot at the best candidate of
// a failed attempt, when there was one.
func (d *Detector) saveMissDiagnostic(shot image.Image, attempt int, cand *MatchCandidate) {
	if d.sink == nil || cand == nil {
		return
	}
	annotated := imaging.Annotate(shot, imaging.Annotation{
		Center:     cand.Center(),
		Width:      maxDim(cand.Width, diagnosticDefaultExtent),
		Height:     maxDim(cand.Height, diagnosticDefaultExtent),
		Label:      "miss",
		Confidence: cand.Confidence,
	})
	name := fmt.Sprintf("attempt_%02d_miss", attempt)
	if err := d.sink.Save(annotated, name); err != nil {
		d.log.Warn("failed to save diagnostic screenshot", "name", name, "error", err)
	}
}
