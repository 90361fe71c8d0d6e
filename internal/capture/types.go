package capture

import (
	"context"
	"errors"
	"time"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

var (
	// ErrSessionClosed is returned when a session is not running
	ErrSessionClosed = errors.New("capture session closed")

	// ErrSessionStarted is returned by Start on a running session
	ErrSessionStarted = errors.New("capture session already started")

	// ErrTickInFlight is returned when a tick is requested while another
	// is still running
	ErrTickInFlight = errors.New("previous tick still in flight")

	// ErrNoFrame is returned by a FrameProvider with nothing to hand out
	ErrNoFrame = errors.New("no frame available")
)

// FrameProvider supplies one pixel buffer per tick. The session does not
// retain the buffer after the tick finishes.
type FrameProvider interface {
	Frame(ctx context.Context) (*frame.PixelBuffer, error)
}

// Publisher receives every snapshot a session publishes. Publish runs with
// the session's lifecycle lock held; it must not call back into the
// session.
type Publisher interface {
	Publish(Snapshot)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(Snapshot)

// Publish calls f(s)
func (f PublisherFunc) Publish(s Snapshot) { f(s) }

// Snapshot is the state published once per successful tick
type Snapshot struct {
	SessionID string                `json:"session_id"`
	Sequence  uint64                `json:"sequence"`
	At        time.Time             `json:"at"`
	Metrics   quality.FrameMetrics  `json:"metrics"`
	Scores    quality.QualityScores `json:"scores"`
	Quality   quality.FaceQuality   `json:"quality"`
	Guidance  guidance.State        `json:"guidance"`
}

// Stats counts tick outcomes over a session's lifetime
type Stats struct {
	Ticks     uint64 `json:"ticks"`
	Published uint64 `json:"published"`
	Skipped   uint64 `json:"skipped"`
	Failed    uint64 `json:"failed"`
}

// Config holds the sampling loop settings
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval" validate:"gt=0"`
}

// DefaultConfig returns the production cadence
func DefaultConfig() Config {
	return Config{TickInterval: 100 * time.Millisecond}
}
