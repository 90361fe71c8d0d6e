package quality

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

func TestExtract_InvalidBuffer(t *testing.T) {
	e := NewExtractor(DefaultThresholds())

	tests := []struct {
		name string
		buf  *frame.PixelBuffer
	}{
		{name: "Nil", buf: nil},
		{name: "Zero size", buf: &frame.PixelBuffer{}},
		{name: "Mismatched data", buf: &frame.PixelBuffer{Width: 10, Height: 10, Pix: make([]byte, 12)}},
		{name: "Overflowing size", buf: &frame.PixelBuffer{Width: math.MaxInt/4 + 1, Height: 4, Pix: make([]byte, 16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := e.Extract(tt.buf)
				require.Error(t, err)
				assert.True(t, errors.Is(err, frame.ErrInvalidBuffer))

				x, y := e.FindFallbackCenter(tt.buf)
				assert.Zero(t, x)
				assert.Zero(t, y)
			})
		})
	}
}

// fillRect paints [x0,x1) x [y0,y1) with a uniform skin tone
func fillRect(buf *frame.PixelBuffer, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			buf.Set(x, y, 170, 130, 100)
		}
	}
}

// permissiveDetection accepts any frame with at least one skin sample, so
// the bounds pass can be exercised on small patches
func permissiveDetection() Thresholds {
	th := DefaultThresholds()
	th.Detection = DetectionThresholds{
		MinSkinRatio:  0,
		MaxSkinRatio:  1.01,
		MinVariance:   -1,
		MinEdgeRatio:  -1,
		MinBrightness: 0,
		MaxBrightness: 256,
		MinSkinPixels: 0,
	}
	return th
}

func TestExtract_FaceSizeClampedToMaximum(t *testing.T) {
	e := NewExtractor(DefaultThresholds())
	buf := faceBuffer()
	// Skin in opposite corners of the search window stretches the bounds
	// past the frame height without touching the sampled region
	fillRect(buf, 66, 50, 76, 60)
	fillRect(buf, 560, 420, 570, 430)

	m, err := e.Extract(buf)
	require.NoError(t, err)
	require.True(t, m.HasFace)

	assert.Equal(t, 80.0, m.FaceSizePercent)
	assert.Equal(t, frame.Region{StartX: 66, EndX: 569, StartY: 50, EndY: 429}, m.FaceBounds)
}

func TestExtract_FaceSizeClampedToMinimum(t *testing.T) {
	e := NewExtractor(permissiveDetection())
	buf := frame.NewPixelBuffer(testWidth, testHeight)
	buf.Fill(10, 10, 10)
	// 11x11 samples at stride 2, one more than the bounds minimum
	fillRect(buf, 310, 230, 332, 252)

	m, err := e.Extract(buf)
	require.NoError(t, err)
	require.True(t, m.HasFace)

	assert.Equal(t, 5.0, m.FaceSizePercent, "a 20px extent is 4.2 percent of 480")
}

func TestExtract_FaceBoundsNeedMoreThanMinimumSkin(t *testing.T) {
	e := NewExtractor(permissiveDetection())
	buf := frame.NewPixelBuffer(testWidth, testHeight)
	buf.Fill(10, 10, 10)
	// exactly 10x10 samples
	fillRect(buf, 310, 230, 330, 250)

	m, err := e.Extract(buf)
	require.NoError(t, err)
	require.True(t, m.HasFace)

	assert.Zero(t, m.FaceSizePercent)
	assert.Equal(t, buf.CenterX(), m.FaceCenterX)
	assert.Equal(t, buf.CenterY(), m.FaceCenterY)
}

func TestExtract_SyntheticFace(t *testing.T) {
	e := NewExtractor(DefaultThresholds())

	m, err := e.Extract(faceBuffer())
	require.NoError(t, err)

	assert.Equal(t, 96*96, m.SampledPixelCount)
	assert.Equal(t, 68*68, m.SkinPixelCount)
	assert.InDelta(t, 0.5, m.SkinRatio, 0.01)
	assert.Greater(t, m.BrightnessVariance, 40.0)
	assert.Greater(t, m.EdgeRatio, 0.08)
	assert.True(t, m.AvgBrightness > 90 && m.AvgBrightness < 190)
	require.True(t, m.HasFace)

	assert.InDelta(t, 100*134.0/480.0, m.FaceSizePercent, 0.01)
	assert.InDelta(t, 320, m.FaceCenterX, 3)
	assert.InDelta(t, 240, m.FaceCenterY, 2)
	assert.Equal(t, frame.Region{StartX: 252, EndX: 387, StartY: 172, EndY: 307}, m.FaceBounds)
}

func TestExtract_NoSkin(t *testing.T) {
	e := NewExtractor(DefaultThresholds())
	buf := frame.NewPixelBuffer(200, 100)
	buf.Fill(10, 10, 10)

	m, err := e.Extract(buf)
	require.NoError(t, err)

	assert.False(t, m.HasFace)
	assert.Zero(t, m.SkinPixelCount)
	assert.Zero(t, m.SkinRatio)
	assert.Zero(t, m.EdgeRatio)
	assert.Zero(t, m.FaceSizePercent)
	assert.Equal(t, 100.0, m.FallbackCenterX)
	assert.Equal(t, 50.0, m.FallbackCenterY)
}

func TestExtract_TinyFrameSamplesNothing(t *testing.T) {
	e := NewExtractor(DefaultThresholds())
	buf := frame.NewPixelBuffer(2, 2)
	buf.Fill(170, 130, 100)

	m, err := e.Extract(buf)
	require.NoError(t, err)
	assert.False(t, m.HasFace)
	assert.Zero(t, m.AvgBrightness)
}

func TestDetectFace_SkinCountBoundary(t *testing.T) {
	e := NewExtractor(DefaultThresholds())
	m := centeredMetrics()

	m.SkinPixelCount = 2000
	assert.False(t, e.detectFace(m), "2000 skin pixels is not enough")

	m.SkinPixelCount = 2001
	assert.True(t, e.detectFace(m))
}

func TestDetectFace_EachThresholdIsRequired(t *testing.T) {
	e := NewExtractor(DefaultThresholds())

	tests := []struct {
		name   string
		mutate func(*FrameMetrics)
	}{
		{name: "Low skin ratio", mutate: func(m *FrameMetrics) { m.SkinRatio = 0.25 }},
		{name: "High skin ratio", mutate: func(m *FrameMetrics) { m.SkinRatio = 0.75 }},
		{name: "Flat brightness", mutate: func(m *FrameMetrics) { m.BrightnessVariance = 40 }},
		{name: "Few edges", mutate: func(m *FrameMetrics) { m.EdgeRatio = 0.08 }},
		{name: "Too dark", mutate: func(m *FrameMetrics) { m.AvgBrightness = 90 }},
		{name: "Too bright", mutate: func(m *FrameMetrics) { m.AvgBrightness = 190 }},
		{name: "Few skin pixels", mutate: func(m *FrameMetrics) { m.SkinPixelCount = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := centeredMetrics()
			require.True(t, e.detectFace(m))
			tt.mutate(&m)
			assert.False(t, e.detectFace(m))
		})
	}
}

func TestFindFallbackCenter(t *testing.T) {
	e := NewExtractor(DefaultThresholds())

	t.Run("Densest cell wins", func(t *testing.T) {
		buf := frame.NewPixelBuffer(300, 300)
		buf.Fill(10, 10, 10)
		for y := 10; y < 60; y++ {
			for x := 10; x < 60; x++ {
				buf.Set(x, y, 200, 150, 120)
			}
		}
		x, y := e.FindFallbackCenter(buf)
		assert.Equal(t, 50.0, x)
		assert.Equal(t, 50.0, y)
	})

	t.Run("Remainder pixels belong to the last cell", func(t *testing.T) {
		th := DefaultThresholds()
		th.Sampling.FallbackStride = 1
		th.Fallback.MinCellCount = 0
		buf := frame.NewPixelBuffer(11, 11)
		buf.Fill(10, 10, 10)
		fillRect(buf, 9, 9, 11, 11)

		x, y := NewExtractor(th).FindFallbackCenter(buf)
		assert.Equal(t, 8.5, x)
		assert.Equal(t, 8.5, y)
	})

	t.Run("Sparse skin keeps frame center", func(t *testing.T) {
		buf := frame.NewPixelBuffer(300, 300)
		buf.Fill(10, 10, 10)
		for i := 0; i < 8; i++ {
			buf.Set(i*4, 0, 200, 150, 120)
		}
		x, y := e.FindFallbackCenter(buf)
		assert.Equal(t, 150.0, x)
		assert.Equal(t, 150.0, y)
	})
}

func TestExtract_FallbackWhenNoFace(t *testing.T) {
	e := NewExtractor(DefaultThresholds())
	buf := frame.NewPixelBuffer(300, 300)
	buf.Fill(10, 10, 10)
	for y := 100; y < 200; y++ {
		for x := 200; x < 260; x++ {
			buf.Set(x, y, 170, 130, 100)
		}
	}

	m, err := e.Extract(buf)
	require.NoError(t, err)
	require.False(t, m.HasFace)
	require.Greater(t, m.SkinPixelCount, 0)

	assert.Equal(t, 250.0, m.FallbackCenterX)
	assert.Equal(t, 150.0, m.FallbackCenterY)

	x, y := m.GuideCenter()
	assert.Equal(t, 250.0, x)
	assert.Equal(t, 150.0, y)
}
