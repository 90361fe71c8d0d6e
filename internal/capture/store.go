package capture

import (
	"context"
	"sync"

	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

// SnapshotStore holds the last published snapshot for any number of
// readers
type SnapshotStore struct {
	snap Snapshot
	has  bool
	mu   sync.RWMutex
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Get returns the last snapshot, if any
func (s *SnapshotStore) Get() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.has
}

// Publish stores snap as the latest snapshot
func (s *SnapshotStore) Publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.has = true
}

// LatestFrame is a single-slot FrameProvider. Put replaces any frame not
// yet consumed and Frame hands the slot's frame to exactly one tick.
type LatestFrame struct {
	buf *frame.PixelBuffer
	mu  sync.Mutex
}

// NewLatestFrame creates an empty slot
func NewLatestFrame() *LatestFrame {
	return &LatestFrame{}
}

// Put offers a new frame
func (l *LatestFrame) Put(buf *frame.PixelBuffer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = buf
}

// Frame takes the pending frame, or returns ErrNoFrame
func (l *LatestFrame) Frame(ctx context.Context) (*frame.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf == nil {
		return nil, ErrNoFrame
	}
	buf := l.buf
	l.buf = nil
	return buf, nil
}
