package lifecycle

import (
	"context"
	"errors"
	"sync"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/logger"
)

var log = logger.ForComponent("lifecycle")

// ErrStopped is returned by EnsureReady after Shutdown has begun.
var ErrStopped = errors.New("server is stopped")

// State is the manager's position in the startup/shutdown sequence.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Manager guards the provider connection behind a single-flight
// initialization. Concurrent EnsureReady calls during startup share one
// Connect attempt and all observe its outcome; a failed attempt resets to
// uninitialized so the next call retries.
type Manager struct {
	mu       sync.Mutex
	state    State
	provider adapter.Adapter
	waiters  []chan error
}

func NewManager(provider adapter.Adapter) *Manager {
	return &Manager{
		state:    StateUninitialized,
		provider: provider,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// EnsureReady blocks until the provider is connected, the attempt fails,
// or ctx is cancelled. Exactly one caller drives Connect; the rest wait.
func (m *Manager) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateReady:
		m.mu.Unlock()
		return nil
	case StateStopped:
		m.mu.Unlock()
		return ErrStopped
	case StateInitializing:
		ch := make(chan error, 1)
		m.waiters = append(m.waiters, ch)
		m.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.state = StateInitializing
	m.mu.Unlock()

	log.Debug("connecting to data provider")
	err := m.provider.Connect(ctx)

	m.mu.Lock()
	outcome := err
	switch {
	case m.state == StateStopped:
		outcome = ErrStopped
	case err != nil:
		m.state = StateUninitialized
	default:
		m.state = StateReady
	}
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	for _, ch := range waiters {
		ch <- outcome
	}

	if outcome == nil {
		log.Info("data provider ready")
	} else {
		log.Warn("provider connection failed", "error", outcome)
	}
	return outcome
}

// Shutdown transitions to stopped and closes the provider. Safe to call
// more than once.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return nil
	}
	m.state = StateStopped
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	for _, ch := range waiters {
		ch <- ErrStopped
	}

	log.Info("lifecycle stopped")
	return m.provider.Close()
}
