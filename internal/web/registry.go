package web

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/CodingBot000/miracle3day-sub001/internal/capture"
	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/config"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

var (
	// ErrSessionNotFound is returned for unknown session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when MaxSessions are open
	ErrTooManySessions = errors.New("too many sessions")
)

// Entry is one live session with its transport state
type Entry struct {
	Session  *capture.Session
	Frames   *capture.LatestFrame
	External *quality.ExternalSource
	Hub      *Hub
	Limiter  *rate.Limiter
}

// Registry tracks the open sessions of one server
type Registry struct {
	cfg       *config.Config
	clock     clock.Clock
	heuristic *quality.HeuristicSource

	entries map[string]*Entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry. The heuristic source is shared by
// all sessions; each session gets its own external source.
func NewRegistry(cfg *config.Config, c clock.Clock) *Registry {
	if c == nil {
		c = clock.Real{}
	}
	return &Registry{
		cfg:       cfg,
		clock:     c,
		heuristic: quality.NewHeuristicSource(cfg.Quality.Thresholds, quality.NewRandomCoin(cfg.Quality.Seed)),
		entries:   make(map[string]*Entry),
	}
}

// Create opens and starts a new session. The session runs until Delete or
// until ctx is done.
func (r *Registry) Create(ctx context.Context) (*Entry, error) {
	mode, err := quality.ParseMode(r.cfg.Quality.Mode)
	if err != nil {
		return nil, err
	}

	external := quality.NewExternalSource(r.clock, r.cfg.Quality.ExternalMaxAge)
	router, err := quality.NewRouter(mode, r.heuristic, external)
	if err != nil {
		return nil, fmt.Errorf("failed to create source router: %w", err)
	}

	id := uuid.NewString()
	e := &Entry{
		Frames:   capture.NewLatestFrame(),
		External: external,
		Hub:      NewHub(id),
		Limiter:  rate.NewLimiter(rate.Limit(r.cfg.Server.UploadRate), r.cfg.Server.UploadBurst),
	}
	e.Session = capture.NewSession(r.cfg.Capture, router, r.cfg.Guidance, e.Frames,
		capture.WithClock(r.clock), capture.WithID(id), capture.WithPublisher(e.Hub))

	r.mu.Lock()
	if len(r.entries) >= r.cfg.Server.MaxSessions {
		r.mu.Unlock()
		return nil, ErrTooManySessions
	}
	r.entries[e.Session.ID()] = e
	r.mu.Unlock()

	go e.Hub.Run()
	if err := e.Session.Start(ctx); err != nil {
		_ = r.Delete(e.Session.ID())
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return e, nil
}

// Get looks up a session
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Delete stops a session and disconnects its viewers
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.Session.Stop()
	e.Hub.Close()
	return nil
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close stops every session
func (r *Registry) Close() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Delete(id)
	}
}
