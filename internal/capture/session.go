// Package capture drives the frame analysis pipeline at a fixed cadence
// for one capture session.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// Session owns one sampling loop. Each tick pulls a frame, analyzes it,
// runs guidance and publishes a Snapshot. At most one tick runs at a time
// and nothing is published once Stop has begun.
type Session struct {
	id       string
	cfg      Config
	source   quality.Source
	machine  *guidance.Machine
	frames   FrameProvider
	clock    clock.Clock
	store    *SnapshotStore
	outs     []Publisher
	inFlight atomic.Bool
	seq      atomic.Uint64

	ticks     atomic.Uint64
	published atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64

	// mu guards the lifecycle fields and serializes publish against Stop
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes a Session
type Option func(*Session)

// WithClock sets the clock used for the ticker and debounce
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithID overrides the generated session id
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithPublisher adds a publisher that receives every snapshot
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.outs = append(s.outs, p) }
}

// NewSession creates an idle session. Call Start to begin sampling.
func NewSession(cfg Config, source quality.Source, guide guidance.Config, frames FrameProvider, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		source: source,
		frames: frames,
		clock:  clock.Real{},
		store:  NewSnapshotStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = guidance.NewMachine(guide, s.clock)
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Store returns the session's snapshot store
func (s *Session) Store() *SnapshotStore {
	return s.store
}

// Active reports whether the session is running
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stats returns tick counters
func (s *Session) Stats() Stats {
	return Stats{
		Ticks:     s.ticks.Load(),
		Published: s.published.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
	}
}

// Start begins ticking every TickInterval until ctx is done or Stop is
// called
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrSessionStarted
	}
	if s.cfg.TickInterval <= 0 {
		return fmt.Errorf("invalid tick interval: %s", s.cfg.TickInterval)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.active = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.machine.Reset()

	// The ticker is created before the loop runs so a mock clock can be
	// advanced as soon as Start returns
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	go s.loop(ctx, ticker, s.done)

	log.Infof("[capture] session %s started (tick %s)", s.id, s.cfg.TickInterval)
	return nil
}

// Stop halts the loop and waits for it to exit. Safe to call more than
// once.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	st := s.Stats()
	log.Infof("[capture] session %s stopped: %d ticks, %d published, %d skipped, %d failed",
		s.id, st.Ticks, st.Published, st.Skipped, st.Failed)
}

func (s *Session) loop(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
			return
		case <-ticker.C():
			if _, err := s.Tick(ctx); err != nil {
				s.logTickError(err)
			}
		}
	}
}

// Tick runs one sampling pass. It returns ErrTickInFlight if another tick
// is running and ErrSessionClosed if the session stopped, in which case
// nothing is published.
func (s *Session) Tick(ctx context.Context) (Snapshot, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return Snapshot{}, ErrTickInFlight
	}
	defer s.inFlight.Store(false)

	if !s.Active() {
		return Snapshot{}, ErrSessionClosed
	}
	s.ticks.Add(1)

	buf, err := s.frames.Frame(ctx)
	if err != nil {
		s.skipped.Add(1)
		return Snapshot{}, fmt.Errorf("failed to get frame: %w", err)
	}

	analysis, err := s.source.Analyze(buf)
	if err != nil {
		s.failed.Add(1)
		return Snapshot{}, fmt.Errorf("failed to analyze frame: %w", err)
	}

	state := s.machine.Evaluate(guidance.InputFrom(analysis))

	snap := Snapshot{
		SessionID: s.id,
		At:        s.clock.Now(),
		Metrics:   analysis.Metrics,
		Scores:    analysis.Scores,
		Quality:   analysis.Quality,
		Guidance:  state,
	}

	if err := s.publish(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// publish hands snap to the store and every publisher while holding the
// lifecycle lock, so Stop cannot interleave
func (s *Session) publish(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrSessionClosed
	}

	snap.Sequence = s.seq.Add(1)
	s.store.Publish(*snap)
	for _, p := range s.outs {
		p.Publish(*snap)
	}
	s.published.Add(1)

	log.Tracef("[capture] %s #%d: face=%t %s %q", s.id, snap.Sequence,
		snap.Quality.HasFace, snap.Guidance.Severity, snap.Guidance.Message)
	return nil
}

func (s *Session) logTickError(err error) {
	switch {
	case errors.Is(err, ErrNoFrame), errors.Is(err, ErrTickInFlight):
		log.Tracef("[capture] %s tick skipped: %v", s.id, err)
	case errors.Is(err, ErrSessionClosed), errors.Is(err, context.Canceled):
		log.Debugf("[capture] %s tick after close: %v", s.id, err)
	default:
		log.Debugf("[capture] %s tick skipped: %v", s.id, err)
	}
}
