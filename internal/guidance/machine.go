package guidance

import (
	"sync"
	"time"

	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
)

// Machine wraps Decide with a debounce gate: within one debounce window
// of the last recomputation the previous State is returned unchanged.
type Machine struct {
	cfg   Config
	clock clock.Clock

	mu     sync.Mutex
	last   State
	lastAt time.Time
	has    bool
}

// NewMachine creates a guidance state machine. A nil clock uses the real
// clock.
func NewMachine(cfg Config, c clock.Clock) *Machine {
	if c == nil {
		c = clock.Real{}
	}
	return &Machine{cfg: cfg, clock: c}
}

// Evaluate returns the guidance for in, or the cached State if the last
// recomputation is younger than the debounce interval.
func (m *Machine) Evaluate(in Input) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.has && now.Sub(m.lastAt) < m.cfg.Debounce {
		return m.last
	}

	m.last = Decide(m.cfg, in)
	m.lastAt = now
	m.has = true
	return m.last
}

// Last returns the most recently emitted State
func (m *Machine) Last() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.has
}

// Reset forgets the cached State so the next Evaluate recomputes
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = State{}
	m.lastAt = time.Time{}
	m.has = false
}
