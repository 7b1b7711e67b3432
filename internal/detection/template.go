package detection

import (
	"errors"
	"image"
	"math"

	"deskscribe/internal/imaging"
)

// ErrEmptyTemplate is returned when the reference template has no pixels.
// Matching against an empty template is undefined and treated as a caller
// bug rather than a detection miss.
var ErrEmptyTemplate = errors.New("template image is empty")

// DefaultScales covers the small/medium/large icon size presets.
var DefaultScales = []float64{0.8, 1.0, 1.2, 1.5}

const (
	// coarseMaxDim bounds the screenshot dimension used in the coarse
	// matching pass. Larger screenshots are box-downsampled first and the
	// match is then refined at full resolution around the coarse peak.
	coarseMaxDim = 480

	// minCoarseTemplate is the smallest template side allowed at the
	// coarse level; below this the correlation peak gets too unstable.
	minCoarseTemplate = 8

	// flatEps is the variance floor under which a window is considered
	// flat. Correlation against a flat region is undefined and scores 0,
	// so blank areas can never produce a confident match.
	flatEps = 1e-9
)

// BestMatch searches a screenshot for the template across a set of scale
// factors and returns the globally best candidate.
//
// The screenshot and the resized template are compared in grayscale using
// zero-mean normalized cross-correlation; each scale contributes the
// position of maximum similarity as one candidate, and the candidate with
// the highest confidence wins. Ties are broken toward the scale closest to
// 1.0, the most likely canonical icon size.
//
// Scales at which the template does not fit inside the screenshot are
// skipped. If no scale fits, the returned candidate is nil: that is a
// legitimate detection miss, not an error. The only error condition is an
// empty template.
func BestMatch(screenshot, template image.Image, scales []float64) (*MatchCandidate, error) {
	if template == nil || template.Bounds().Dx() == 0 || template.Bounds().Dy() == 0 {
		return nil, ErrEmptyTemplate
	}
	if screenshot == nil || screenshot.Bounds().Dx() == 0 || screenshot.Bounds().Dy() == 0 {
		return nil, nil
	}
	if len(scales) == 0 {
		scales = DefaultScales
	}

	screenGray := imaging.ToGray(screenshot)
	screenW := screenshot.Bounds().Dx()
	screenH := screenshot.Bounds().Dy()

	var best *MatchCandidate
	for _, scale := range scales {
		if scale <= 0 {
			continue
		}

		resized := imaging.ResizeTemplate(template, scale)
		tw := resized.Bounds().Dx()
		th := resized.Bounds().Dy()
		if tw > screenW || th > screenH {
			continue
		}

		loc, score := matchGray(screenGray, imaging.ToGray(resized))
		cand := MatchCandidate{
			Location:   loc,
			Scale:      scale,
			Confidence: score,
			Width:      tw,
			Height:     th,
		}
		if preferCandidate(cand, best) {
			c := cand
			best = &c
		}
	}
	return best, nil
}

// preferCandidate ranks candidates by confidence, then by proximity of the
// scale factor to 1.0.
func preferCandidate(c MatchCandidate, best *MatchCandidate) bool {
	if best == nil {
		return true
	}
	if c.Confidence != best.Confidence {
		return c.Confidence > best.Confidence
	}
	return math.Abs(c.Scale-1.0) < math.Abs(best.Scale-1.0)
}

// matchGray finds the position of maximum normalized cross-correlation of
// tpl inside img. Both are [y][x] luminance matrices.
//
// For large screenshots the search runs in two stages: a coarse pass over
// box-downsampled copies locates the approximate peak, and an exhaustive
// pass over a small full-resolution window around it recovers the exact
// position and score.
func matchGray(img, tpl [][]float64) (image.Point, float64) {
	imgH, imgW := len(img), len(img[0])
	tplH, tplW := len(tpl), len(tpl[0])

	factor := 1
	for maxDim(imgW, imgH)/(factor*2) >= coarseMaxDim &&
		tplW/(factor*2) >= minCoarseTemplate &&
		tplH/(factor*2) >= minCoarseTemplate {
		factor *= 2
	}

	if factor == 1 {
		return scanNCC(img, tpl, image.Rect(0, 0, imgW-tplW+1, imgH-tplH+1))
	}

	coarseImg := downsample(img, factor)
	coarseTpl := downsample(tpl, factor)
	coarseLoc, _ := scanNCC(coarseImg, coarseTpl,
		image.Rect(0, 0, len(coarseImg[0])-len(coarseTpl[0])+1, len(coarseImg)-len(coarseTpl)+1))

	// Refine around the coarse peak. The coarse position maps back with up
	// to factor pixels of quantization error, so the window is generous.
	radius := 3 * factor
	cx := coarseLoc.X * factor
	cy := coarseLoc.Y * factor
	region := image.Rect(
		clampInt(cx-radius, 0, imgW-tplW),
		clampInt(cy-radius, 0, imgH-tplH),
		clampInt(cx+radius, 0, imgW-tplW)+1,
		clampInt(cy+radius, 0, imgH-tplH)+1,
	)
	return scanNCC(img, tpl, region)
}

// scanNCC computes the zero-mean normalized cross-correlation score at every
// top-left position inside region and returns the best one. Window sums and
// sums of squares come from summed-area tables, so only the cross term is a
// direct loop.
func scanNCC(img, tpl [][]float64, region image.Rectangle) (image.Point, float64) {
	imgH, imgW := len(img), len(img[0])
	tplH, tplW := len(tpl), len(tpl[0])
	n := float64(tplW * tplH)

	// Template statistics are position-independent.
	var tSum, tSqSum float64
	for y := 0; y < tplH; y++ {
		for x := 0; x < tplW; x++ {
			v := tpl[y][x]
			tSum += v
			tSqSum += v * v
		}
	}
	tVar := tSqSum - tSum*tSum/n
	if tVar < flatEps {
		// A flat template correlates with everything and nothing.
		return image.Point{}, 0
	}
	tNorm := math.Sqrt(tVar)

	sum, sqSum := integralTables(img, imgW, imgH)

	bestScore := 0.0
	bestLoc := image.Point{}
	found := false

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			winSum := rectSum(sum, x, y, tplW, tplH)
			winSqSum := rectSum(sqSum, x, y, tplW, tplH)
			winVar := winSqSum - winSum*winSum/n
			if winVar < flatEps {
				continue
			}

			var cross float64
			for ty := 0; ty < tplH; ty++ {
				row := img[y+ty]
				trow := tpl[ty]
				for tx := 0; tx < tplW; tx++ {
					cross += row[x+tx] * trow[tx]
				}
			}

			score := (cross - winSum*tSum/n) / (math.Sqrt(winVar) * tNorm)
			if !found || score > bestScore {
				bestScore = score
				bestLoc = image.Pt(x, y)
				found = true
			}
		}
	}

	if bestScore < 0 {
		bestScore = 0
	} else if bestScore > 1 {
		bestScore = 1
	}
	return bestLoc, bestScore
}

// integralTables builds summed-area tables for values and squared values.
// Both tables have one extra row and column of zeros so rectangle sums need
// no boundary checks.
func integralTables(img [][]float64, w, h int) (sum, sqSum [][]float64) {
	sum = make([][]float64, h+1)
	sqSum = make([][]float64, h+1)
	sum[0] = make([]float64, w+1)
	sqSum[0] = make([]float64, w+1)
	for y := 1; y <= h; y++ {
		sum[y] = make([]float64, w+1)
		sqSum[y] = make([]float64, w+1)
		var rowSum, rowSqSum float64
		for x := 1; x <= w; x++ {
			v := img[y-1][x-1]
			rowSum += v
			rowSqSum += v * v
			sum[y][x] = sum[y-1][x] + rowSum
			sqSum[y][x] = sqSum[y-1][x] + rowSqSum
		}
	}
	return sum, sqSum
}

// rectSum reads the sum of a w x h window with top-left (x, y) from a
// summed-area table.
func rectSum(table [][]float64, x, y, w, h int) float64 {
	return table[y+h][x+w] - table[y][x+w] - table[y+h][x] + table[y][x]
}

// downsample shrinks a luminance matrix by an integer factor using box
// averaging. Trailing rows and columns that do not fill a full box are
// dropped; the refinement pass covers them at full resolution.
func downsample(img [][]float64, factor int) [][]float64 {
	h := len(img) / factor
	w := len(img[0]) / factor
	out := make([][]float64, h)
	norm := float64(factor * factor)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var s float64
			for dy := 0; dy < factor; dy++ {
				row := img[y*factor+dy]
				for dx := 0; dx < factor; dx++ {
					s += row[x*factor+dx]
				}
			}
			out[y][x] = s / norm
		}
	}
	return out
}

func maxDim(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
