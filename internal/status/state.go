package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fieldscope/siteline/internal/bus"
)

// State represents a feed session runtime state.
type State string

const (
	Booting      State = "BOOTING"
	AuthRequired State = "AUTH_REQUIRED"
	Loading      State = "LOADING"
	Ready        State = "READY"
	Error        State = "ERROR"
)

// validTransitions defines allowed state transitions. Loading covers both
// the initial page fetch and a manual refresh; Ready→Loading reopens the
// feed for another site or a refresh.
var validTransitions = map[State][]State{
	Booting:      {AuthRequired, Loading, Error},
	AuthRequired: {Loading, Error},
	Loading:      {Ready, AuthRequired, Error},
	Ready:        {Loading, Error},
	Error:        {Booting, Loading},
}

// Machine tracks and enforces feed session state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindFeedStatusChanged,
			Timestamp: time.Now(),
			Payload: StatusChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
