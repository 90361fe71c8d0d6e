package quality

import (
	"math"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/pkg/utils"
)

// Scorer turns FrameMetrics into bounded quality scores
type Scorer struct {
	th Thresholds
}

// NewScorer creates a scorer using the given thresholds
func NewScorer(th Thresholds) *Scorer {
	return &Scorer{th: th}
}

// Score computes all three scores for one frame. Straightness is computed
// first because position depends on it. buf may be nil, in which case
// straightness falls back to a deviation estimate.
func (s *Scorer) Score(m FrameMetrics, buf *frame.PixelBuffer) QualityScores {
	straightness := s.Straightness(m.EdgeRatio, m.FaceCenterX, m.FaceCenterY, m.FrameWidth, m.FrameHeight, buf)
	return QualityScores{
		Lighting:     s.Lighting(m.AvgBrightness, m.BrightnessVariance),
		Straightness: straightness,
		Position: s.Position(m.HasFace, m.FaceSizePercent, m.FaceCenterX, m.FaceCenterY,
			m.FrameWidth, m.FrameHeight, straightness),
	}
}

// Lighting scores exposure from average brightness and its RMS deviation
func (s *Scorer) Lighting(avgBrightness, variance float64) float64 {
	lt := s.th.Lighting
	score := scoreRange(avgBrightness, lt.Brightness) + scoreRange(variance, lt.Variance)
	return utils.Clamp(score, 0, 100)
}

// Straightness scores edge density plus left/right and top/bottom balance
// of skin brightness around the frame center.
func (s *Scorer) Straightness(edgeRatio, centerX, centerY float64, width, height int, buf *frame.PixelBuffer) float64 {
	st := s.th.Straightness
	score := scoreRange(edgeRatio, st.Edge)

	if buf == nil || buf.Validate() != nil {
		hdev := utils.Deviation(centerX, width)
		vdev := utils.Deviation(centerY, height)
		score += scoreBelow(hdev, st.NoBufferHorizontal) + scoreBelow(vdev, st.NoBufferVertical)
		return utils.Clamp(score, 0, 100)
	}

	hsym, vbal, ok := s.symmetry(buf)
	if ok.horizontal {
		score += scoreAbove(hsym, st.HorizontalSymmetry)
	}
	if ok.vertical {
		score += scoreAbove(vbal, st.VerticalBalance)
	}
	return utils.Clamp(score, 0, 100)
}

type symmetryAxes struct {
	horizontal bool
	vertical   bool
}

// symmetry averages skin brightness on each side of the center lines of a
// centered square. An axis with too few samples on either side is
// reported as not ok.
func (s *Scorer) symmetry(buf *frame.PixelBuffer) (float64, float64, symmetryAxes) {
	st := s.th.Straightness
	region := frame.CenteredSquare(buf.Width, buf.Height, s.th.Sampling.SymmetryRegionFraction)
	midX := (region.StartX + region.EndX) / 2
	midY := (region.StartY + region.EndY) / 2
	stride := s.th.Sampling.SymmetryStride

	var left, right, upper, lower float64
	var nLeft, nRight, nUpper, nLower int

	for y := region.StartY; y < region.EndY; y += stride {
		for x := region.StartX; x < region.EndX; x += stride {
			r, g, b := buf.RGB(x, y)
			if !s.th.Skin.Match(r, g, b) {
				continue
			}
			v := float64(r+g+b) / 3

			switch {
			case x < midX-st.HorizontalMargin:
				left += v
				nLeft++
			case x > midX+st.HorizontalMargin:
				right += v
				nRight++
			}

			switch {
			case y < midY-st.VerticalMargin:
				upper += v
				nUpper++
			case y > midY+st.VerticalMargin:
				lower += v
				nLower++
			}
		}
	}

	var ok symmetryAxes
	var hsym, vbal float64
	if nLeft >= st.MinSidePixels && nRight >= st.MinSidePixels {
		hsym = balance(left/float64(nLeft), right/float64(nRight))
		ok.horizontal = true
	}
	if nUpper >= st.MinSidePixels && nLower >= st.MinSidePixels {
		vbal = balance(upper/float64(nUpper), lower/float64(nLower))
		ok.vertical = true
	}
	return hsym, vbal, ok
}

// balance is 1 - min(1, |a-b| / max(a,b)); two zero averages are balanced
func balance(a, b float64) float64 {
	return 1 - math.Min(1, utils.SafeRatio(math.Abs(a-b), math.Max(a, b)))
}

// Position scores face size and centering, scaled by a straightness
// multiplier. Without a face the score is 0.
func (s *Scorer) Position(hasFace bool, faceSize, centerX, centerY float64, width, height int, straightness float64) float64 {
	if !hasFace {
		return 0
	}
	pt := s.th.Position

	base := scoreRange(faceSize, pt.Size) +
		scoreBelow(utils.Deviation(centerX, width), pt.Horizontal) +
		scoreBelow(utils.Deviation(centerY, height), pt.Vertical)

	return utils.Clamp(base*s.multiplier(straightness), 0, 100)
}

func (s *Scorer) multiplier(straightness float64) float64 {
	pt := s.th.Position
	ratio := straightness / 100
	switch {
	case straightness < pt.LowStraightness:
		return math.Max(pt.LowFloor, ratio)
	case straightness < pt.MidStraightness:
		return math.Max(pt.MidFloor, ratio)
	default:
		return math.Max(pt.HighFloor, ratio)
	}
}
