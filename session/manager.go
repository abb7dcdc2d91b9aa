package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/internal/logging"
)

var (
	// ErrSessionNotFound is returned for operations on a session that does
	// not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when creating a session would exceed
	// the manager's limit.
	ErrTooManySessions = errors.New("too many sessions")
	// ErrEmptyID is returned for a blank session ID.
	ErrEmptyID = errors.New("empty session id")
)

// Hooks observe session activity. Any field may be nil. Hooks are called
// while the session is locked and must not call back into the Manager for
// the same session.
type Hooks struct {
	// OnOpen is called when a session is created.
	OnOpen func(ctx context.Context, id string)
	// OnClose is called when a session is deleted.
	OnClose func(ctx context.Context, id string)
	// OnAction is called after each action is applied.
	OnAction func(ctx context.Context, id string, a calculator.Action, s calculator.Snapshot)
	// OnCommit is called after a Commit that evaluated an expression. s.Err
	// is nil if the commit succeeded.
	OnCommit func(ctx context.Context, id string, s calculator.Snapshot)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns calculator sessions and serializes access to each one.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	mu       sync.Mutex                        // guards locks and sessions
	locks    map[string]*lockEntry             // per-session locks
	sessions map[string]*calculator.Calculator // live calculators

	max    int
	hooks  Hooks
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks installs observers for session activity.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithMaxSessions limits the number of live sessions. Zero or less means no
// limit.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		m.max = n
	}
}

// NewManager creates an empty session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*calculator.Calculator),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// withLock executes fn while holding the lock for the session.
func (m *Manager) withLock(ctx context.Context, id string, fn func(context.Context) error) error {
	if id == "" {
		return ErrEmptyID
	}
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// lookup returns the calculator for id, or nil.
func (m *Manager) lookup(id string) *calculator.Calculator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// create adds a calculator for id, respecting the session limit.
func (m *Manager) create(id string) (*calculator.Calculator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}
	c := calculator.New()
	m.sessions[id] = c
	return c, nil
}

// Dispatch applies actions in order to the session's calculator, creating the
// session if it does not exist, and returns the final snapshot.
func (m *Manager) Dispatch(ctx context.Context, id string, acts ...calculator.Action) (calculator.Snapshot, error) {
	var snap calculator.Snapshot
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		c := m.lookup(id)
		if c == nil {
			var err error
			c, err = m.create(id)
			if err != nil {
				m.logger.Warn("session rejected", "session_id", id, "err", err)
				return fmt.Errorf("creating session %q: %w", id, err)
			}
			m.logger.Debug("session opened", "session_id", id)
			if m.hooks.OnOpen != nil {
				m.hooks.OnOpen(ctx, id)
			}
		}
		snap = c.Snapshot()
		for _, a := range acts {
			if a == nil {
				continue
			}
			pending := c.Expression() != ""
			snap = c.Dispatch(a)
			if m.hooks.OnAction != nil {
				m.hooks.OnAction(ctx, id, a, snap)
			}
			if _, ok := a.(calculator.Commit); ok && pending {
				if snap.HasError {
					m.logger.Debug("commit failed", "session_id", id, "expression", snap.Expression, "err", snap.Err)
				} else {
					last := snap.History[len(snap.History)-1]
					m.logger.Debug("commit", "session_id", id, "source", last.Source, "result", last.Result)
				}
				if m.hooks.OnCommit != nil {
					m.hooks.OnCommit(ctx, id, snap)
				}
			}
		}
		return nil
	})
	return snap, err
}

// Snapshot returns the state of an existing session.
func (m *Manager) Snapshot(ctx context.Context, id string) (calculator.Snapshot, error) {
	var snap calculator.Snapshot
	err := m.withLock(ctx, id, func(ctx context.Context) error {
		c := m.lookup(id)
		if c == nil {
			return ErrSessionNotFound
		}
		snap = c.Snapshot()
		return nil
	})
	return snap, err
}

// Delete removes a session and its history.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.withLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		_, ok := m.sessions[id]
		delete(m.sessions, id)
		m.mu.Unlock()
		if !ok {
			return ErrSessionNotFound
		}
		m.logger.Debug("session closed", "session_id", id)
		if m.hooks.OnClose != nil {
			m.hooks.OnClose(ctx, id)
		}
		return nil
	})
}

// List returns the IDs of live sessions in sorted order.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
