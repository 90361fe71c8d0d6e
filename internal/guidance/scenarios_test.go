package guidance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// pipeline runs metrics through scoring, classification and an
// undebounced decision
func pipeline(m quality.FrameMetrics) (quality.FaceQuality, State) {
	th := quality.DefaultThresholds()
	scores := quality.NewScorer(th).Score(m, nil)
	fq := quality.NewClassifier(th.Classifier, quality.FixedCoin(true)).Classify(m, scores)
	return fq, Decide(DefaultConfig(), InputFrom(quality.Analysis{Metrics: m, Scores: scores, Quality: fq}))
}

func scenarioMetrics() quality.FrameMetrics {
	return quality.FrameMetrics{
		FrameWidth:         width,
		FrameHeight:        height,
		SampledPixelCount:  10000,
		SkinPixelCount:     5000,
		SkinRatio:          0.5,
		AvgBrightness:      120,
		BrightnessVariance: 50,
		EdgeRatio:          0.1,
		HasFace:            true,
		FaceSizePercent:    70,
		FaceCenterX:        width / 2,
		FaceCenterY:        height / 2,
		FallbackCenterX:    width / 2,
		FallbackCenterY:    height / 2,
	}
}

func TestScenario_CenteredFaceCaptures(t *testing.T) {
	fq, st := pipeline(scenarioMetrics())

	assert.Equal(t, quality.AreaGood, fq.Area)
	assert.Equal(t, quality.FrontalGood, fq.Frontal)
	assert.Equal(t, quality.AngleGood, fq.FaceAngle)
	assert.Equal(t, quality.LightingGood, fq.Lighting)
	assert.Equal(t, SeveritySuccess, st.Severity)
	assert.True(t, st.CanCapture)
}

func TestScenario_NoSkinIsAnError(t *testing.T) {
	m := scenarioMetrics()
	m.SkinPixelCount = 0
	m.SkinRatio = 0
	m.HasFace = false
	m.FallbackCenterX = 50

	fq, st := pipeline(m)

	msg := DefaultMessages()
	assert.False(t, fq.HasFace)
	assert.Equal(t, SeverityError, st.Severity)
	assert.False(t, st.CanCapture)
	assert.Contains(t, []string{msg.MoveLeft, msg.MoveRight, msg.MoveUp, msg.MoveDown, msg.KeepInside}, st.Message)
}

func TestScenario_SmallFaceMovesCloser(t *testing.T) {
	m := scenarioMetrics()
	m.FaceSizePercent = 8

	fq, st := pipeline(m)

	assert.Equal(t, quality.AreaTooSmall, fq.Area)
	assert.Equal(t, DefaultMessages().MoveCloser, st.Message)
	assert.Equal(t, SeverityWarning, st.Severity)
	assert.False(t, st.CanCapture)
}

func TestScenario_FaceLeftOfCenterMovesRight(t *testing.T) {
	m := scenarioMetrics()
	m.FaceCenterX = width/2 - 0.25*width

	fq, st := pipeline(m)

	assert.NotEqual(t, quality.AreaOutOfBoundary, fq.Area)
	assert.Equal(t, quality.AngleLeftward, fq.FaceAngle)
	assert.Equal(t, DefaultMessages().MoveRight, st.Message)
	assert.Equal(t, SeverityWarning, st.Severity)
	assert.False(t, st.CanCapture)
}
