package quality

import (
	"fmt"
	"math"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/pkg/utils"
)

// Extractor scans a pixel buffer and produces raw FrameMetrics
type Extractor struct {
	th Thresholds
}

// NewExtractor creates an extractor using the given thresholds
func NewExtractor(th Thresholds) *Extractor {
	return &Extractor{th: th}
}

// regionStats is the output of the two sampling passes
type regionStats struct {
	sampled    int
	skin       int
	avg        float64
	variance   float64
	edgeRatio  float64
	skinRatio  float64
	edgeCount  int
	sumSqDev   float64
	brightness float64
}

// Extract computes FrameMetrics for one buffer. The buffer is not retained.
func (e *Extractor) Extract(buf *frame.PixelBuffer) (FrameMetrics, error) {
	if err := buf.Validate(); err != nil {
		return FrameMetrics{}, fmt.Errorf("failed to extract metrics: %w", err)
	}

	m := FrameMetrics{
		FrameWidth:      buf.Width,
		FrameHeight:     buf.Height,
		FaceCenterX:     buf.CenterX(),
		FaceCenterY:     buf.CenterY(),
		FallbackCenterX: buf.CenterX(),
		FallbackCenterY: buf.CenterY(),
	}

	region := frame.CenteredSquare(buf.Width, buf.Height, e.th.Sampling.RegionFraction)
	stats := e.sampleRegion(buf, region)

	m.SampledPixelCount = stats.sampled
	m.SkinPixelCount = stats.skin
	m.SkinRatio = stats.skinRatio
	m.AvgBrightness = stats.avg
	m.BrightnessVariance = stats.variance
	m.EdgeRatio = stats.edgeRatio
	m.HasFace = e.detectFace(m)

	if m.HasFace {
		e.locateFace(buf, &m)
	} else if m.SkinPixelCount > 0 {
		m.FallbackCenterX, m.FallbackCenterY = e.FindFallbackCenter(buf)
	}

	return m, nil
}

// sampleRegion runs the brightness/skin pass and the variance/edge pass
// over region at the sampling stride.
func (e *Extractor) sampleRegion(buf *frame.PixelBuffer, region frame.Region) regionStats {
	var s regionStats
	stride := e.th.Sampling.Stride

	// Pass 1: brightness and skin
	for y := region.StartY; y < region.EndY; y += stride {
		for x := region.StartX; x < region.EndX; x += stride {
			r, g, b := buf.RGB(x, y)
			s.brightness += float64(r+g+b) / 3
			s.sampled++
			if e.th.Skin.Match(r, g, b) {
				s.skin++
			}
		}
	}

	if s.sampled == 0 {
		return s
	}
	s.avg = s.brightness / float64(s.sampled)
	s.skinRatio = float64(s.skin) / float64(s.sampled)

	// Pass 2: interior pixels only so all four neighbours exist
	startX := utils.MaxInt(region.StartX, 1)
	startY := utils.MaxInt(region.StartY, 1)
	endX := utils.MinInt(region.EndX, buf.Width-1)
	endY := utils.MinInt(region.EndY, buf.Height-1)
	gradient := e.th.Sampling.EdgeGradient

	for y := startY; y < endY; y += stride {
		for x := startX; x < endX; x += stride {
			dev := buf.Brightness(x, y) - s.avg
			s.sumSqDev += dev * dev

			gx := channelDiff(buf, x-1, y, x+1, y)
			gy := channelDiff(buf, x, y-1, x, y+1)
			if gx > gradient || gy > gradient {
				s.edgeCount++
			}
		}
	}

	s.variance = math.Sqrt(s.sumSqDev / float64(s.sampled))
	s.edgeRatio = float64(s.edgeCount) / float64(s.sampled)
	return s
}

// channelDiff sums the absolute per-channel differences of two pixels
func channelDiff(buf *frame.PixelBuffer, x1, y1, x2, y2 int) int {
	r1, g1, b1 := buf.RGB(x1, y1)
	r2, g2, b2 := buf.RGB(x2, y2)
	return utils.AbsInt(r2-r1) + utils.AbsInt(g2-g1) + utils.AbsInt(b2-b1)
}

// detectFace applies the six-way threshold conjunction
func (e *Extractor) detectFace(m FrameMetrics) bool {
	d := e.th.Detection
	return m.SkinRatio > d.MinSkinRatio &&
		m.BrightnessVariance > d.MinVariance &&
		m.EdgeRatio > d.MinEdgeRatio &&
		m.AvgBrightness > d.MinBrightness &&
		m.AvgBrightness < d.MaxBrightness &&
		m.SkinPixelCount > d.MinSkinPixels &&
		m.SkinRatio < d.MaxSkinRatio
}

// locateFace rescans a wider window for the brightness-weighted skin
// centroid and bounding box. Without enough skin the frame center and a
// zero size are kept.
func (e *Extractor) locateFace(buf *frame.PixelBuffer, m *FrameMetrics) {
	window := frame.CenteredWindow(buf.Width, buf.Height, e.th.Sampling.FaceSearchFraction)
	stride := e.th.Sampling.Stride

	var sumX, sumY, totalWeight float64
	count := 0
	minX, minY := buf.Width, buf.Height
	maxX, maxY := -1, -1

	for y := window.StartY; y < window.EndY; y += stride {
		for x := window.StartX; x < window.EndX; x += stride {
			r, g, b := buf.RGB(x, y)
			if !e.th.Skin.Match(r, g, b) {
				continue
			}
			weight := float64(r+g+b) / 3
			sumX += float64(x) * weight
			sumY += float64(y) * weight
			totalWeight += weight
			count++

			minX = utils.MinInt(minX, x)
			minY = utils.MinInt(minY, y)
			maxX = utils.MaxInt(maxX, x)
			maxY = utils.MaxInt(maxY, y)
		}
	}

	if count <= e.th.Bounds.MinSkinPixels || totalWeight <= 0 {
		m.FaceSizePercent = 0
		return
	}

	m.FaceCenterX = sumX / totalWeight
	m.FaceCenterY = sumY / totalWeight
	m.FaceBounds = frame.Region{StartX: minX, EndX: maxX + 1, StartY: minY, EndY: maxY + 1}

	extent := float64(utils.MaxInt(maxX-minX, maxY-minY))
	shorter := float64(utils.MinInt(buf.Width, buf.Height))
	m.FaceSizePercent = utils.Clamp(100*extent/shorter, e.th.Bounds.MinSizePct, e.th.Bounds.MaxSizePct)
}
