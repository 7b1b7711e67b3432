package detection

import (
	"image"
	"sort"
	"strings"
	"unicode"
)

// Weighting of label similarity vs. recognizer confidence when ranking text
// hits, and the ceiling applied to the combined score. The cap keeps an
// OCR-derived confidence below any confident template match, preserving the
// trust ordering between the two methods.
const (
	similarityWeight = 0.7
	ocrConfWeight    = 0.3
	ocrConfCeiling   = 0.9
)

// Minimum estimated icon extent above its caption. Desktop icons are at
// least this tall regardless of the caption font size.
const minIconHeight = 40.0

// ScoredHit is a text hit retained by the label filter, with its similarity
// to the target label and the combined ranking score.
type ScoredHit struct {
	TextHit

	// Similarity of the recognized string to the target label (0.0 to 1.0).
	Similarity float64 `json:"similarity"`

	// Score is the combined ranking value: weighted similarity and
	// recognizer confidence, capped at the OCR ceiling.
	Score float64 `json:"score"`
}

// RankHits filters recognized text fragments to those matching the target
// label and orders them best first.
//
// A hit is retained when the recognized string contains the label as a
// case-insensitive substring. Retained hits are ranked by a combined score
// of label similarity and recognizer confidence, so an exact caption beats
// a near-miss like "Notepad++" even when the latter was recognized with
// higher confidence.
func RankHits(hits []TextHit, label string) []ScoredHit {
	scored := make([]ScoredHit, 0, len(hits))
	for _, h := range hits {
		sim := labelSimilarity(h.Text, label)
		if sim <= 0 {
			continue
		}
		score := similarityWeight*sim + ocrConfWeight*h.Confidence
		if score > ocrConfCeiling {
			score = ocrConfCeiling
		}
		scored = append(scored, ScoredHit{TextHit: h, Similarity: sim, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Confidence > scored[j].Confidence
	})
	return scored
}

// labelSimilarity scores how closely recognized text matches the target
// label. It strongly favors exact matches and heavily deprioritizes strings
// where the label is a prefix of something longer, so "Notepad" is never
// confused with "Notepad2" or "Notepad Classic". A purely symbolic trailer
// like "Notepad." counts as the label appearing as a whole word.
//
//	exact match                      -> 1.0
//	label as a prefix followed by
//	alphanumeric text                -> 0.1
//	label as a whole word            -> 0.5
//	label inside another word        -> 0.2
//	no substring match               -> 0.0
func labelSimilarity(text, label string) float64 {
	t := strings.ToLower(strings.TrimSpace(text))
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" || t == "" {
		return 0
	}

	if t == l {
		return 1.0
	}

	idx := strings.Index(t, l)
	if idx < 0 {
		return 0
	}

	if strings.HasPrefix(t, l) {
		extra := strings.TrimSpace(t[len(l):])
		if extra != "" && containsAlnum(extra) {
			// Likely a different program sharing the prefix.
			return 0.1
		}
	}

	wordStart := idx == 0 || !isAlnum(rune(t[idx-1]))
	wordEnd := idx+len(l) >= len(t) || !isAlnum(rune(t[idx+len(l)]))
	if wordStart && wordEnd {
		return 0.5
	}
	return 0.2
}

// IconCenterAbove estimates the icon center from its caption's bounding
// box: horizontally centered on the text, vertically above it by half the
// estimated icon height (1.5x the caption height, floored at 40px).
//
// This is a declared approximation. The true icon-to-caption offset depends
// on the desktop layout, so positions derived this way carry lower trust
// than template matches.
func IconCenterAbove(b Bounds) image.Point {
	iconHeight := 1.5 * float64(b.Height())
	if iconHeight < minIconHeight {
		iconHeight = minIconHeight
	}
	return image.Pt(b.X1+b.Width()/2, b.Y1-int(iconHeight/2))
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if isAlnum(r) {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
