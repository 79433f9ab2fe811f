package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/keyring"
)

// fakeBackend is a test double for the backend login endpoints.
type fakeBackend struct {
	cookie    string
	loginErr  error
	logoutErr error
	logouts   int
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.cookie, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.logouts++
	return f.logoutErr
}

func newTestManager(t *testing.T, store *keyring.MockStore) *Manager {
	t.Helper()
	m := NewManager(store, filepath.Join(t.TempDir(), "session.json"))
	m.now = func() time.Time { return time.Unix(1700000000, 0) }
	return m
}

func TestManager_Login(t *testing.T) {
	store := keyring.NewMockStore()
	m := newTestManager(t, store)

	s, err := m.Login(context.Background(), &fakeBackend{cookie: "cookie-1"}, "alice", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, &Session{Username: "alice", LoggedInAt: 1700000000}, s)

	cookie, err := store.Get(keyring.KeySession)
	require.NoError(t, err)
	assert.Equal(t, "cookie-1", cookie)

	username, err := store.Get(keyring.KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	cached, err := LoadSession(m.CachePath)
	require.NoError(t, err)
	assert.Equal(t, s, cached)
}

func TestManager_LoginAgainstClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: api.SessionCookie, Value: "from-server"})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}))
	defer server.Close()

	store := keyring.NewMockStore()
	m := newTestManager(t, store)

	_, err := m.Login(context.Background(), api.NewClient(server.URL, ""), "alice", "pw")

	require.NoError(t, err)
	cookie, err := m.Cookie()
	require.NoError(t, err)
	assert.Equal(t, "from-server", cookie)
}

func TestManager_LoginErrors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		backend  *fakeBackend
		store    *keyring.MockStore
		wantErr  string
	}{
		{
			name:     "missing password",
			username: "alice",
			backend:  &fakeBackend{cookie: "c"},
			store:    keyring.NewMockStore(),
			wantErr:  "username and password are required",
		},
		{
			name:     "rejected",
			username: "alice",
			password: "wrong",
			backend:  &fakeBackend{loginErr: api.ErrInvalidLogin},
			store:    keyring.NewMockStore(),
			wantErr:  "invalid username or password",
		},
		{
			name:     "keyring failure",
			username: "alice",
			password: "pw",
			backend:  &fakeBackend{cookie: "c"},
			store:    keyring.NewMockStore().WithSetError(errors.New("locked")),
			wantErr:  "failed to store session in keyring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, tt.store)

			_, err := m.Login(context.Background(), tt.backend, tt.username, tt.password)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			_, statErr := os.Stat(m.CachePath)
			assert.True(t, os.IsNotExist(statErr), "nothing cached on failure")
		})
	}
}

func TestManager_Cookie(t *testing.T) {
	m := newTestManager(t, keyring.NewMockStore())
	_, err := m.Cookie()
	assert.ErrorIs(t, err, api.ErrNotLoggedIn)

	m = newTestManager(t, keyring.NewMockStore().WithGetError(errors.New("dbus down")))
	_, err = m.Cookie()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to retrieve session")
}

func TestManager_Status(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		m := newTestManager(t, keyring.NewMockStore())

		_, err := m.Status()

		assert.ErrorIs(t, err, api.ErrNotLoggedIn)
	})

	t.Run("from cache", func(t *testing.T) {
		m := newTestManager(t, keyring.NewMockStore())
		_, err := m.Login(context.Background(), &fakeBackend{cookie: "c"}, "alice", "pw")
		require.NoError(t, err)

		s, err := m.Status()

		require.NoError(t, err)
		assert.Equal(t, "alice", s.Username)
		assert.Equal(t, int64(1700000000), s.LoggedInAt)
	})

	t.Run("without cache", func(t *testing.T) {
		store := keyring.NewMockStore().
			WithData(keyring.KeySession, "c").
			WithData(keyring.KeyUsername, "carol")
		m := newTestManager(t, store)

		s, err := m.Status()

		require.NoError(t, err)
		assert.Equal(t, &Session{Username: "carol"}, s)
	})

	t.Run("cookie from environment", func(t *testing.T) {
		t.Setenv(keyring.EnvSession, "env-cookie")
		t.Setenv(keyring.EnvUsername, "ci-bot")
		m := newTestManager(t, keyring.NewMockStore())
		m.Store = keyring.NewEnvStore(keyring.NewMockStore())

		s, err := m.Status()

		require.NoError(t, err)
		assert.Equal(t, "ci-bot", s.Username)
		assert.True(t, s.FromEnv)
	})
}

func TestManager_Logout(t *testing.T) {
	store := keyring.NewMockStore()
	m := newTestManager(t, store)
	_, err := m.Login(context.Background(), &fakeBackend{cookie: "c"}, "alice", "pw")
	require.NoError(t, err)

	backend := &fakeBackend{logoutErr: &api.APIError{StatusCode: http.StatusInternalServerError}}
	err = m.Logout(context.Background(), backend)

	require.Error(t, err, "backend failure is reported")
	assert.Equal(t, 1, backend.logouts)
	_, err = m.Cookie()
	assert.ErrorIs(t, err, api.ErrNotLoggedIn, "local session is cleared anyway")
	_, statErr := os.Stat(m.CachePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestManager_LogoutWithoutBackend(t *testing.T) {
	m := newTestManager(t, keyring.NewMockStore())

	assert.NoError(t, m.Logout(context.Background(), nil))
}
