package guidance

import (
	"time"

	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// Severity drives how urgently the UI renders a message
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// State is the user-facing guidance for one decision
type State struct {
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	CanCapture bool     `json:"can_capture"`
}

// Input is everything a guidance decision looks at. CenterX/Y is the face
// center when a face was found and the fallback center otherwise.
type Input struct {
	Quality     quality.FaceQuality
	FaceSize    float64
	CenterX     float64
	CenterY     float64
	FrameWidth  int
	FrameHeight int
}

// InputFrom builds an Input from one analysis
func InputFrom(a quality.Analysis) Input {
	cx, cy := a.Metrics.GuideCenter()
	return Input{
		Quality:     a.Quality,
		FaceSize:    a.Metrics.FaceSizePercent,
		CenterX:     cx,
		CenterY:     cy,
		FrameWidth:  a.Metrics.FrameWidth,
		FrameHeight: a.Metrics.FrameHeight,
	}
}

// Config holds the guidance tunables
type Config struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce" validate:"gte=0"`

	// Directional thresholds as a fraction of the frame dimension
	NoFaceDeviation        float64 `yaml:"no_face_deviation" json:"no_face_deviation" validate:"gte=0"`
	OutOfBoundaryDeviation float64 `yaml:"out_of_boundary_deviation" json:"out_of_boundary_deviation" validate:"gte=0"`

	// Face sizes above this with a notgood area mean the user is too close
	TooCloseAbove float64 `yaml:"too_close_above" json:"too_close_above"`

	Messages Messages `yaml:"messages" json:"messages"`
}

// DefaultConfig returns the production guidance settings
func DefaultConfig() Config {
	return Config{
		Debounce:               100 * time.Millisecond,
		NoFaceDeviation:        0.1,
		OutOfBoundaryDeviation: 0.05,
		TooCloseAbove:          40,
		Messages:               DefaultMessages(),
	}
}
