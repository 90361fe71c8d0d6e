package quality

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

func TestLighting(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	tests := []struct {
		name     string
		avg      float64
		variance float64
		want     float64
	}{
		{name: "Both best bands", avg: 130, variance: 40, want: 100},
		{name: "Band edges are inclusive", avg: 80, variance: 60, want: 100},
		{name: "Second bands", avg: 195, variance: 70, want: 65},
		{name: "Third brightness band", avg: 45, variance: 12, want: 30},
		{name: "Open variance band", avg: 130, variance: 500, want: 70},
		{name: "Nothing matches", avg: 10, variance: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Lighting(tt.avg, tt.variance))
		})
	}
}

func TestPosition(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	cx, cy := float64(testWidth)/2, float64(testHeight)/2

	t.Run("Centered large face is perfect", func(t *testing.T) {
		assert.Equal(t, 100.0, s.Position(true, 70, cx, cy, testWidth, testHeight, 100))
	})

	t.Run("No face scores zero", func(t *testing.T) {
		assert.Zero(t, s.Position(false, 70, cx, cy, testWidth, testHeight, 100))
	})

	t.Run("Straightness multiplier floors", func(t *testing.T) {
		assert.InDelta(t, 40.0, s.Position(true, 70, cx, cy, testWidth, testHeight, 10), 1e-9)
		assert.InDelta(t, 60.0, s.Position(true, 70, cx, cy, testWidth, testHeight, 55), 1e-9)
		assert.InDelta(t, 85.0, s.Position(true, 70, cx, cy, testWidth, testHeight, 70), 1e-9)
		assert.InDelta(t, 90.0, s.Position(true, 70, cx, cy, testWidth, testHeight, 90), 1e-9)
	})

	t.Run("Size bands", func(t *testing.T) {
		sizes := map[float64]float64{
			70: 40, 45: 35, 30: 30, 15: 20, 12: 10, 5: 5, 2: 0,
		}
		for size, want := range sizes {
			got := s.Position(true, size, cx, cy, testWidth, testHeight, 100)
			assert.Equal(t, want+60, got, "size %v", size)
		}
	})

	t.Run("Off-center loses centering terms", func(t *testing.T) {
		// 0.12 horizontal -> 15, 0.13 vertical -> 5
		x := cx + 0.12*testWidth
		y := cy + 0.13*testHeight
		assert.InDelta(t, 60.0, s.Position(true, 70, x, y, testWidth, testHeight, 100), 1e-9)
	})
}

func TestStraightness_NoBuffer(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	cx, cy := float64(testWidth)/2, float64(testHeight)/2

	assert.Equal(t, 70.0, s.Straightness(0.1, cx, cy, testWidth, testHeight, nil))
	assert.Equal(t, 20.0, s.Straightness(0.18, cx+0.3*testWidth, cy+0.3*testHeight, testWidth, testHeight, nil))
	assert.Equal(t, 0.0, s.Straightness(0, cx+0.3*testWidth, cy+0.3*testHeight, testWidth, testHeight, nil))
}

func TestStraightness_Symmetry(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	cx, cy := float64(testWidth)/2, float64(testHeight)/2

	t.Run("Uniform skin is fully symmetric", func(t *testing.T) {
		buf := frame.NewPixelBuffer(testWidth, testHeight)
		buf.Fill(170, 130, 100)
		assert.Equal(t, 100.0, s.Straightness(0.1, cx, cy, testWidth, testHeight, buf))
	})

	t.Run("Lopsided lighting loses horizontal symmetry", func(t *testing.T) {
		buf := frame.NewPixelBuffer(testWidth, testHeight)
		buf.Fill(170, 130, 100)
		for y := 0; y < testHeight; y++ {
			for x := 0; x < testWidth/2; x++ {
				buf.Set(x, y, 80, 50, 30)
			}
		}
		// left 53.3 vs right 133.3: symmetry 0.4 scores nothing
		assert.Equal(t, 60.0, s.Straightness(0.1, cx, cy, testWidth, testHeight, buf))
	})

	t.Run("No skin leaves only the edge term", func(t *testing.T) {
		buf := frame.NewPixelBuffer(testWidth, testHeight)
		buf.Fill(250, 250, 250)
		assert.Equal(t, 30.0, s.Straightness(0.1, cx, cy, testWidth, testHeight, buf))
	})
}

func TestScore_AlwaysBounded(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 2000; i++ {
		m := FrameMetrics{
			FrameWidth:         1 + rng.IntN(2000),
			FrameHeight:        1 + rng.IntN(2000),
			AvgBrightness:      rng.Float64()*400 - 50,
			BrightnessVariance: rng.Float64() * 300,
			EdgeRatio:          rng.Float64(),
			HasFace:            rng.IntN(2) == 0,
			FaceSizePercent:    rng.Float64() * 120,
			FaceCenterX:        rng.Float64()*3000 - 500,
			FaceCenterY:        rng.Float64()*3000 - 500,
		}
		got := s.Score(m, nil)
		for name, v := range map[string]float64{
			"position": got.Position, "lighting": got.Lighting, "straightness": got.Straightness,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 100.0, name)
		}
	}
}

func TestScore_StraightnessFeedsPosition(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	m := centeredMetrics()

	got := s.Score(m, nil)

	assert.Equal(t, 70.0, got.Straightness)
	assert.Equal(t, 100.0, got.Lighting)
	assert.InDelta(t, 85.0, got.Position, 1e-9)
}
