// Package session owns the authenticated administrator session.
//
// The Manager is the only writer. Views read through Get, Token and
// IsAuthenticated, and react to changes through Subscribe.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"school-admin/internal/models"
)

var (
	// ErrNotAuthenticated is returned when no usable session exists
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when the token has expired or the backend rejected it
	ErrSessionExpired = errors.New("session expired")
)

// Store persists a session across runs
type Store interface {
	Load() (*models.Session, error)
	Save(session *models.Session) error
	Clear() error
}

// Listener is called after every change with the new session, or nil after a clear
type Listener func(*models.Session)

// Manager guards the session with a mutex and mirrors it in memory
type Manager struct {
	mu        sync.RWMutex
	store     Store
	current   *models.Session
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a manager and loads any persisted session
func NewManager(store Store, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:     store,
		listeners: make(map[int]Listener),
		logger:    logger,
		now:       time.Now,
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetClock replaces the time source used for expiry checks
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Refresh reloads the in-memory copy from the store
func (m *Manager) Refresh() error {
	session, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current session, or nil
func (m *Manager) Get() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Set persists a new session and notifies subscribers
func (m *Manager) Set(session models.Session) error {
	if session.Token == "" {
		return errors.New("session token is empty")
	}
	if err := m.store.Save(&session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = &session
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	m.logger.Debug("Session stored", "email", session.Email, "role", session.Role)
	notify(listeners, m.Get())
	return nil
}

// Clear removes the session. Clearing an absent session is a no-op
// apart from the store call, and subscribers are only notified on change.
func (m *Manager) Clear() error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.mu.Lock()
	changed := m.current != nil
	m.current = nil
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	if changed {
		m.logger.Debug("Session cleared")
		notify(listeners, nil)
	}
	return nil
}

// Subscribe registers fn and returns a function that removes it
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// IsAuthenticated reports whether a session exists and its token has not expired
func (m *Manager) IsAuthenticated() bool {
	_, err := m.Token()
	return err == nil
}

// Token returns the bearer token of a valid session.
// It fails with ErrNotAuthenticated when there is no session or the token
// cannot be decoded, and with ErrSessionExpired when the exp claim is past.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	current, now := m.current, m.now
	m.mu.RUnlock()

	if current == nil || current.Token == "" {
		return "", ErrNotAuthenticated
	}

	expires, err := ExpiresAt(current.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !expires.IsZero() && !now().Before(expires) {
		return "", ErrSessionExpired
	}
	return current.Token, nil
}

// ExpireIfNeeded clears the session when its token has expired.
// It returns true when a session was cleared.
func (m *Manager) ExpireIfNeeded() (bool, error) {
	m.mu.RLock()
	present := m.current != nil
	m.mu.RUnlock()
	if !present {
		return false, nil
	}

	if _, err := m.Token(); err == nil {
		return false, nil
	}
	if err := m.Clear(); err != nil {
		return false, err
	}
	m.logger.Info("Session expired")
	return true, nil
}

func (m *Manager) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, s *models.Session) {
	for _, fn := range listeners {
		fn(s)
	}
}

// ExpiresAt decodes the exp claim of a JWT without verifying its signature.
// A token without exp returns the zero time.
func ExpiresAt(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("malformed token: %w", err)
	}

	raw, ok := claims["exp"]
	if !ok || raw == nil {
		return time.Time{}, nil
	}

	var seconds float64
	switch exp := raw.(type) {
	case json.Number:
		v, err := exp.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed exp claim: %w", err)
		}
		seconds = v
	case float64:
		seconds = exp
	default:
		return time.Time{}, fmt.Errorf("malformed exp claim of type %T", raw)
	}

	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec), nil
}
