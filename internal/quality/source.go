package quality

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/pkg/utils"
)

// ErrNoResult is returned by an ExternalSource that has no fresh result
var ErrNoResult = errors.New("no external analysis available")

// Source produces an Analysis for one frame
type Source interface {
	Analyze(buf *frame.PixelBuffer) (Analysis, error)
}

// HeuristicSource runs the pixel heuristic pipeline
type HeuristicSource struct {
	extractor  *Extractor
	scorer     *Scorer
	classifier *Classifier
}

// NewHeuristicSource wires the extractor, scorer and classifier from one
// threshold table
func NewHeuristicSource(th Thresholds, coin Coin) *HeuristicSource {
	return &HeuristicSource{
		extractor:  NewExtractor(th),
		scorer:     NewScorer(th),
		classifier: NewClassifier(th.Classifier, coin),
	}
}

// Analyze extracts, scores and classifies one buffer
func (h *HeuristicSource) Analyze(buf *frame.PixelBuffer) (Analysis, error) {
	metrics, err := h.extractor.Extract(buf)
	if err != nil {
		return Analysis{}, err
	}
	scores := h.scorer.Score(metrics, buf)
	return Analysis{
		Metrics: metrics,
		Scores:  scores,
		Quality: h.classifier.Classify(metrics, scores),
	}, nil
}

// ExternalSource holds results pushed by an out-of-process detector, such
// as a vendor SDK callback. The buffer passed to Analyze is ignored.
type ExternalSource struct {
	mu       sync.RWMutex
	clock    clock.Clock
	maxAge   time.Duration
	latest   Analysis
	pushedAt time.Time
	has      bool
}

// NewExternalSource creates a source whose pushes expire after maxAge.
// A zero maxAge never expires.
func NewExternalSource(c clock.Clock, maxAge time.Duration) *ExternalSource {
	if c == nil {
		c = clock.Real{}
	}
	return &ExternalSource{clock: c, maxAge: maxAge}
}

// Push records the newest external result. Scores are clamped to [0,100]
// and a non-zero face size to the range the bounds pass reports.
func (e *ExternalSource) Push(a Analysis) {
	a.Scores.Position = utils.Clamp(a.Scores.Position, 0, 100)
	a.Scores.Lighting = utils.Clamp(a.Scores.Lighting, 0, 100)
	a.Scores.Straightness = utils.Clamp(a.Scores.Straightness, 0, 100)
	if size := a.Metrics.FaceSizePercent; size > 0 {
		a.Metrics.FaceSizePercent = utils.Clamp(size, minFaceSizePct, maxFaceSizePct)
	} else {
		a.Metrics.FaceSizePercent = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest = a
	e.pushedAt = e.clock.Now()
	e.has = true
}

// Analyze returns the latest push, or ErrNoResult if none is fresh
func (e *ExternalSource) Analyze(_ *frame.PixelBuffer) (Analysis, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.has {
		return Analysis{}, ErrNoResult
	}
	if age := e.clock.Since(e.pushedAt); e.maxAge > 0 && age > e.maxAge {
		return Analysis{}, fmt.Errorf("%w: last result is %s old", ErrNoResult, age)
	}
	return e.latest, nil
}
