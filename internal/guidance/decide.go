// Package guidance turns a classified frame into the instruction shown to
// the user and decides whether capture is allowed.
package guidance

import (
	"math"

	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
	"github.com/CodingBot000/miracle3day-sub001/pkg/utils"
)

// Decide applies the guidance rules in priority order and returns the
// first match. It has no state and is safe for concurrent use.
func Decide(cfg Config, in Input) State {
	q := in.Quality
	msg := cfg.Messages

	switch {
	case !q.HasFace:
		return State{Message: directional(msg, in, cfg.NoFaceDeviation), Severity: SeverityError}

	case q.Area == quality.AreaTooSmall:
		return State{Message: msg.MoveCloser, Severity: SeverityWarning}

	case q.Area == quality.AreaNotGood && in.FaceSize > cfg.TooCloseAbove:
		return State{Message: msg.MoveBack, Severity: SeverityWarning}

	case q.Area == quality.AreaOutOfBoundary:
		return State{Message: directional(msg, in, cfg.OutOfBoundaryDeviation), Severity: SeverityError}

	case q.FaceAngle != quality.AngleGood:
		return State{Message: angleMessage(msg, q.FaceAngle), Severity: SeverityWarning}

	case q.Frontal != quality.FrontalGood:
		return State{Message: msg.FaceCamera, Severity: SeverityWarning}

	case q.Lighting == quality.LightingNotGood:
		return State{Message: msg.ImproveLighting, Severity: SeverityWarning}

	case q.Area == quality.AreaGood:
		// Frontal, angle and lighting were all ruled out above
		return State{Message: msg.Ready, Severity: SeveritySuccess, CanCapture: true}

	default:
		return State{Message: msg.HoldStill, Severity: SeverityInfo, CanCapture: true}
	}
}

// directional points the user back toward the frame center. The
// horizontal axis is checked before the vertical one.
func directional(msg Messages, in Input, threshold float64) string {
	dx := utils.SignedOffset(in.CenterX, in.FrameWidth)
	dy := utils.SignedOffset(in.CenterY, in.FrameHeight)

	switch {
	case math.Abs(dx) > threshold && dx < 0:
		return msg.MoveRight
	case math.Abs(dx) > threshold:
		return msg.MoveLeft
	case math.Abs(dy) > threshold && dy < 0:
		return msg.MoveDown
	case math.Abs(dy) > threshold:
		return msg.MoveUp
	default:
		return msg.KeepInside
	}
}

func angleMessage(msg Messages, a quality.FaceAngle) string {
	switch a {
	case quality.AngleUpward:
		return msg.AngleUpward
	case quality.AngleDownward:
		return msg.AngleDownward
	case quality.AngleLeftward:
		return msg.AngleLeftward
	case quality.AngleRightward:
		return msg.AngleRightward
	case quality.AngleLeftTilt:
		return msg.AngleLeftTilt
	case quality.AngleRightTilt:
		return msg.AngleRightTilt
	default:
		return msg.FaceCamera
	}
}
