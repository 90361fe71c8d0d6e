package quality

import (
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

// FrameMetrics holds the raw statistics extracted from one frame
type FrameMetrics struct {
	FrameWidth         int     `json:"frame_width"`
	FrameHeight        int     `json:"frame_height"`
	SampledPixelCount  int     `json:"sampled_pixel_count"`
	SkinPixelCount     int     `json:"skin_pixel_count"`
	SkinRatio          float64 `json:"skin_ratio"`
	AvgBrightness      float64 `json:"avg_brightness"`
	BrightnessVariance float64 `json:"brightness_variance"` // RMS deviation, not squared
	EdgeRatio          float64 `json:"edge_ratio"`
	HasFace            bool    `json:"has_face"`

	FaceSizePercent float64      `json:"face_size_percent"` // [5,80], or 0 when bounds were not found
	FaceCenterX     float64      `json:"face_center_x"`
	FaceCenterY     float64      `json:"face_center_y"`
	FaceBounds      frame.Region `json:"face_bounds"`

	FallbackCenterX float64 `json:"fallback_center_x"`
	FallbackCenterY float64 `json:"fallback_center_y"`
}

// GuideCenter returns the point directional guidance should use: the face
// center when a face was found, otherwise the fallback region center.
func (m FrameMetrics) GuideCenter() (float64, float64) {
	if m.HasFace {
		return m.FaceCenterX, m.FaceCenterY
	}
	return m.FallbackCenterX, m.FallbackCenterY
}

// QualityScores are the three bounded [0,100] scores derived from one
// FrameMetrics
type QualityScores struct {
	Position     float64 `json:"position_quality"`
	Lighting     float64 `json:"lighting_quality"`
	Straightness float64 `json:"straightness_quality"`
}

// Area classifies face size and presence
type Area string

const (
	AreaGood          Area = "good"
	AreaNotGood       Area = "notgood"
	AreaTooSmall      Area = "toosmall"
	AreaOutOfBoundary Area = "outofboundary"
)

// Frontal classifies whether the face is facing the camera
type Frontal string

const (
	FrontalGood    Frontal = "good"
	FrontalNotGood Frontal = "notgood"
)

// Lighting classifies exposure of the sampled region
type Lighting string

const (
	LightingGood    Lighting = "good"
	LightingOK      Lighting = "ok"
	LightingNotGood Lighting = "notgood"
)

// FaceAngle classifies pose and placement of the face
type FaceAngle string

const (
	AngleGood      FaceAngle = "good"
	AngleUpward    FaceAngle = "upward"
	AngleDownward  FaceAngle = "downward"
	AngleLeftward  FaceAngle = "leftward"
	AngleRightward FaceAngle = "rightward"
	AngleLeftTilt  FaceAngle = "lefttilt"
	AngleRightTilt FaceAngle = "righttilt"

	// AngleNotGood is emitted when no face is present. It is not a pose.
	AngleNotGood FaceAngle = "notgood"
)

// NakedEyeGood is the only value NakedEye ever takes; eye detection is not
// implemented.
const NakedEyeGood = "good"

// FaceQuality is the discrete classification of one frame
type FaceQuality struct {
	HasFace   bool      `json:"has_face"`
	Area      Area      `json:"area"`
	Frontal   Frontal   `json:"frontal"`
	Lighting  Lighting  `json:"lighting"`
	FaceAngle FaceAngle `json:"faceangle"`
	NakedEye  string    `json:"nakedeye"`
}

// Analysis bundles everything a Source produces for one frame
type Analysis struct {
	Metrics FrameMetrics  `json:"metrics"`
	Scores  QualityScores `json:"scores"`
	Quality FaceQuality   `json:"quality"`
}
