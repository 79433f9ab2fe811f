package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/keyring"
)

// Manager ties the backend login to the keyring and the session cache.
type Manager struct {
	Store     keyring.Store
	CachePath string

	now func() time.Time
}

// NewManager creates a session manager.
func NewManager(store keyring.Store, cachePath string) *Manager {
	return &Manager{Store: store, CachePath: cachePath, now: time.Now}
}

// Login authenticates against the backend and stores the issued session
// cookie and username. Nothing is stored when the backend rejects the login.
func (m *Manager) Login(ctx context.Context, backend Authenticator, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	cookie, err := backend.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := m.Store.Set(keyring.KeySession, cookie); err != nil {
		return nil, fmt.Errorf("failed to store session in keyring: %w", err)
	}
	if err := m.Store.Set(keyring.KeyUsername, username); err != nil {
		return nil, fmt.Errorf("failed to store username in keyring: %w", err)
	}

	s := &Session{Username: username, LoggedInAt: m.now().Unix()}
	// The cache only feeds status output; the session works without it.
	_ = SaveSession(m.CachePath, s)
	return s, nil
}

// Cookie returns the stored session cookie or api.ErrNotLoggedIn.
func (m *Manager) Cookie() (string, error) {
	cookie, err := m.Store.Get(keyring.KeySession)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", api.ErrNotLoggedIn
		}
		return "", fmt.Errorf("failed to retrieve session: %w", err)
	}
	return cookie, nil
}

// Status describes the stored session. A missing or corrupt cache file
// falls back to the username kept in the keyring.
func (m *Manager) Status() (*Session, error) {
	if _, err := m.Cookie(); err != nil {
		return nil, err
	}

	s, err := LoadSession(m.CachePath)
	if err != nil {
		username, err := m.Store.Get(keyring.KeyUsername)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("failed to retrieve username: %w", err)
		}
		s = &Session{Username: username}
	}
	if env, ok := m.Store.(envSource); ok {
		s.FromEnv = env.FromEnv(keyring.KeySession)
	}
	return s, nil
}

// envSource is implemented by stores that can take values from the
// environment, such as *keyring.EnvStore.
type envSource interface {
	FromEnv(key string) bool
}

// Logout clears the local session and then ends it on the backend. Local
// state is removed even when the backend call fails.
func (m *Manager) Logout(ctx context.Context, backend Authenticator) error {
	if err := m.Store.Delete(keyring.KeySession); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	_ = DeleteSession(m.CachePath)

	if backend == nil {
		return nil
	}
	if err := backend.Logout(ctx); err != nil {
		return fmt.Errorf("failed to end backend session: %w", err)
	}
	return nil
}
