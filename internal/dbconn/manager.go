// Package dbconn owns the lifecycle of the single shared store handle.
//
// A Manager connects in the background with a bounded number of retries and a
// fixed delay between them, initializes the schema once the first handshake
// succeeds, and exposes its connectivity state to request handlers. Failing to
// connect never stops the process: the manager settles in a terminal FAILED
// state and handlers answer with "unavailable" responses.
package dbconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inquirydesk/backend/internal/repository"
)

// Dialer performs a single handshake with the store.
type Dialer func(ctx context.Context) (repository.Store, error)

// Config is the retry policy.
type Config struct {
	// MaxRetries is the number of retries after the first attempt;
	// the manager makes at most MaxRetries+1 attempts.
	MaxRetries int

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMetrics makes the Manager report to m.
func WithMetrics(m *Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithAfter replaces time.After for the retry delay.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(mgr *Manager) { mgr.after = after }
}

// Manager is the Connection Manager. It is safe for concurrent use.
type Manager struct {
	dial    Dialer
	cfg     Config
	l       *slog.Logger
	metrics *Metrics
	after   func(time.Duration) <-chan time.Time

	startOnce sync.Once
	done      chan struct{}

	rw          sync.RWMutex
	state       State
	attempts    int
	terminal    bool
	lastErr     error
	store       repository.Store
	connectedAt time.Time
	suspect     int
	closed      bool
}

// New creates a Manager in the DISCONNECTED state. Call Start to connect.
func New(dial Dialer, cfg Config, l *slog.Logger, opts ...Option) *Manager {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	m := &Manager{
		dial:  dial,
		cfg:   cfg,
		l:     l,
		after: time.After,
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}

	m.metrics.setState(StateDisconnected)
	return m
}

// Start begins connecting in a background goroutine and returns immediately.
// Only the first call has an effect. Cancelling ctx stops pending retries.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

// Done returns a channel that is closed when the connect loop has finished,
// either connected or terminally failed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Status returns the current connectivity state.
func (m *Manager) Status() Status {
	m.rw.RLock()
	defer m.rw.RUnlock()

	s := Status{
		State:         m.state,
		Connected:     m.state == StateConnected,
		Attempts:      m.attempts,
		Terminal:      m.terminal,
		ConnectedAt:   m.connectedAt,
		SuspectErrors: m.suspect,
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

// Acquire returns the shared store handle if the manager is CONNECTED.
func (m *Manager) Acquire() (repository.Store, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	if m.state != StateConnected || m.store == nil {
		return nil, false
	}
	return m.store, true
}

// MarkSuspect records a store error that looks like a dropped connection.
// The manager stays CONNECTED; the error only shows up in Status and metrics.
func (m *Manager) MarkSuspect(err error) {
	m.rw.Lock()
	if m.state != StateConnected {
		m.rw.Unlock()
		return
	}
	m.suspect++
	n := m.suspect
	m.rw.Unlock()

	m.metrics.suspectError()
	m.l.Warn("store error looks like a dropped connection; handle kept", "error", err, "suspect_errors", n)
}

// Close releases the store handle. Acquire returns false afterwards.
func (m *Manager) Close() {
	m.rw.Lock()
	defer m.rw.Unlock()

	m.closed = true
	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
	if m.state == StateConnected {
		m.setStateLocked(StateDisconnected)
	}
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("connection manager panic: %v", p)
			m.l.Error("connection manager stopped", "error", err)
			m.fail(err, true)
		}
	}()

	retriesLeft := m.cfg.MaxRetries
	for {
		attempt := m.beginAttempt()
		m.l.Info("connecting to store", "attempt", attempt, "max_attempts", m.cfg.MaxRetries+1)

		store, err := m.connect(ctx)
		m.metrics.attempt(err == nil)

		if err == nil {
			m.connected(store)
			return
		}

		if ctx.Err() != nil {
			m.fail(errors.Join(ctx.Err(), err), true)
			m.l.Info("store connection abandoned", "attempts", attempt)
			return
		}

		if retriesLeft <= 0 {
			m.fail(err, true)
			m.l.Error("store connection failed after all retries; serving degraded responses",
				"attempts", attempt, "error", err)
			return
		}

		m.fail(err, false)
		m.l.Warn("store connection failed, retrying",
			"attempt", attempt, "retries_left", retriesLeft, "delay", m.cfg.RetryDelay, "error", err)

		select {
		case <-ctx.Done():
			m.fail(ctx.Err(), true)
			return
		case <-m.after(m.cfg.RetryDelay):
		}
		retriesLeft--
	}
}

// connect dials and initializes the schema. A schema failure closes the
// handle and counts as a failed attempt.
func (m *Manager) connect(ctx context.Context) (repository.Store, error) {
	store, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		m.l.Error("schema initialization failed", "error", err)
		return nil, fmt.Errorf("schema initialization: %w", err)
	}

	m.l.Info("schema initialized", "driver", store.Driver())
	return store, nil
}

func (m *Manager) beginAttempt() int {
	m.rw.Lock()
	defer m.rw.Unlock()

	m.attempts++
	m.setStateLocked(StateConnecting)
	return m.attempts
}

func (m *Manager) connected(store repository.Store) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.closed {
		store.Close()
		m.setStateLocked(StateDisconnected)
		return
	}

	m.store = store
	m.lastErr = nil
	m.connectedAt = time.Now()
	m.setStateLocked(StateConnected)
	m.l.Info("connected to store", "driver", store.Driver(), "attempts", m.attempts)
}

func (m *Manager) fail(err error, terminal bool) {
	m.rw.Lock()
	defer m.rw.Unlock()

	m.lastErr = err
	m.terminal = terminal
	m.setStateLocked(StateFailed)
}

func (m *Manager) setStateLocked(s State) {
	m.state = s
	m.metrics.setState(s)
}
