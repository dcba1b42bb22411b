// Package status tracks code-generation progress for one document through a
// small state machine. Every transition mints a fresh token; a scheduled
// return-to-idle may only act while its captured token is still the latest,
// which keeps stale timers from clobbering newer states.
package status

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/pkg/interfaces"
)

// State enumerates the visible generation states.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
	StateError  State = "error"
	StateStatus State = "status"
)

// Snapshot is one published machine state. Token identifies the transition
// that produced it.
type Snapshot struct {
	State    State
	Filename string
	Message  string
	Detail   string
	Success  bool
	Token    uuid.UUID
}

// Listener receives every published transition.
type Listener func(Snapshot)

// Machine is the per-document status state machine. Timer callbacks fire on
// their own goroutines, so all state is mutex-guarded.
type Machine struct {
	mu       sync.Mutex
	current  Snapshot
	timer    *time.Timer
	listener Listener
	logger   interfaces.Logger
	closed   bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithListener registers the transition callback.
func WithListener(listener Listener) Option {
	return func(m *Machine) { m.listener = listener }
}

// WithLogger injects the machine's logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine returns a machine in the idle state.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		current: Snapshot{State: StateIdle, Token: uuid.New()},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the latest published snapshot.
func (m *Machine) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Idle transitions to idle immediately.
func (m *Machine) Idle() {
	m.transition(Snapshot{State: StateIdle}, 0)
}

// Active marks generation as running for the named document.
func (m *Machine) Active(filename string) {
	m.transition(Snapshot{State: StateActive, Filename: filename}, 0)
}

// Error publishes a failure. A non-zero timeout schedules a token-guarded
// return to idle.
func (m *Machine) Error(message, detail string, timeout time.Duration) {
	m.transition(Snapshot{State: StateError, Message: message, Detail: detail}, timeout)
}

// Status publishes a completion message. A non-zero timeout schedules a
// token-guarded return to idle.
func (m *Machine) Status(message string, success bool, timeout time.Duration) {
	m.transition(Snapshot{State: StateStatus, Message: message, Success: success}, timeout)
}

// Close cancels any pending timer. The machine must not be used afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.stopTimerLocked()
}

func (m *Machine) transition(next Snapshot, timeout time.Duration) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	next.Token = uuid.New()
	m.stopTimerLocked()
	m.current = next

	if timeout > 0 {
		token := next.Token
		m.timer = time.AfterFunc(timeout, func() {
			m.idleIfCurrent(token)
		})
	}
	listener := m.listener
	m.mu.Unlock()

	m.logger.Debug("status.transition", "state", string(next.State), "token", next.Token.String())
	if listener != nil {
		listener(next)
	}
}

// idleIfCurrent performs the deferred return to idle, but only when the
// captured token is still the machine's latest. Anything else means a newer
// transition superseded this timer: a stale no-op.
func (m *Machine) idleIfCurrent(token uuid.UUID) {
	m.mu.Lock()
	if m.closed || m.current.Token != token {
		m.mu.Unlock()
		return
	}
	next := Snapshot{State: StateIdle, Token: uuid.New()}
	m.current = next
	m.timer = nil
	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		listener(next)
	}
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
