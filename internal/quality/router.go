package quality

import (
	"errors"
	"fmt"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

// Mode selects which Source a Router uses
type Mode string

const (
	ModeHeuristic Mode = "heuristic" // Pixel heuristic pipeline only
	ModeExternal  Mode = "external"  // Pushed external results only
	ModeAuto      Mode = "auto"      // Fresh external result, else heuristic
)

// ParseMode validates a mode name. An empty name selects ModeHeuristic.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeHeuristic, nil
	case ModeHeuristic, ModeExternal, ModeAuto:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid quality mode: %s", s)
	}
}

// Router routes analysis requests to the configured Source
type Router struct {
	mode      Mode
	heuristic Source
	external  Source
}

// NewRouter creates a router. Modes that need a source not supplied are
// rejected.
func NewRouter(mode Mode, heuristic, external Source) (*Router, error) {
	switch mode {
	case ModeHeuristic:
		if heuristic == nil {
			return nil, fmt.Errorf("heuristic source not initialized")
		}
	case ModeExternal:
		if external == nil {
			return nil, fmt.Errorf("external source not initialized")
		}
	case ModeAuto:
		if heuristic == nil && external == nil {
			return nil, fmt.Errorf("no source available")
		}
	default:
		return nil, fmt.Errorf("invalid quality mode: %s", mode)
	}

	return &Router{mode: mode, heuristic: heuristic, external: external}, nil
}

// Mode returns the configured mode
func (r *Router) Mode() Mode {
	return r.mode
}

// Analyze produces an Analysis using the selected backend
func (r *Router) Analyze(buf *frame.PixelBuffer) (Analysis, error) {
	switch r.mode {
	case ModeHeuristic:
		return r.heuristic.Analyze(buf)

	case ModeExternal:
		return r.external.Analyze(buf)

	default:
		// Auto: external wins while fresh, heuristic covers the gaps
		if r.external != nil {
			a, err := r.external.Analyze(buf)
			if err == nil {
				return a, nil
			}
			if !errors.Is(err, ErrNoResult) || r.heuristic == nil {
				return Analysis{}, err
			}
		}
		return r.heuristic.Analyze(buf)
	}
}
