package keyring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoresImplementInterface(t *testing.T) {
	var _ Store = (*SystemStore)(nil)
	var _ Store = (*EnvStore)(nil)
	var _ Store = (*MockStore)(nil)
}

func TestNewSystemStore(t *testing.T) {
	assert.Equal(t, Service, NewSystemStore().service)
}

func TestEnvVar(t *testing.T) {
	name, ok := EnvVar(KeySession)
	assert.True(t, ok)
	assert.Equal(t, EnvSession, name)

	name, ok = EnvVar(KeyUsername)
	assert.True(t, ok)
	assert.Equal(t, EnvUsername, name)

	_, ok = EnvVar("other")
	assert.False(t, ok)
}

// newTestEnvStore returns an EnvStore reading from env instead of the process environment.
func newTestEnvStore(underlying Store, env map[string]string) *EnvStore {
	s := NewEnvStore(underlying)
	s.lookup = func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	return s
}

func TestEnvStore_Get(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		env      map[string]string
		stored   map[string]string
		want     string
		wantErr  error
		wantFrom bool
	}{
		{
			name:     "session from environment",
			key:      KeySession,
			env:      map[string]string{EnvSession: "env-cookie"},
			stored:   map[string]string{KeySession: "stored-cookie"},
			want:     "env-cookie",
			wantFrom: true,
		},
		{
			name:     "username from environment",
			key:      KeyUsername,
			env:      map[string]string{EnvUsername: "ci-bot"},
			want:     "ci-bot",
			wantFrom: true,
		},
		{
			name:   "empty variable falls back",
			key:    KeySession,
			env:    map[string]string{EnvSession: ""},
			stored: map[string]string{KeySession: "stored-cookie"},
			want:   "stored-cookie",
		},
		{
			name:   "no variable falls back",
			key:    KeyUsername,
			stored: map[string]string{KeyUsername: "alice"},
			want:   "alice",
		},
		{
			name:    "missing everywhere",
			key:     KeySession,
			wantErr: ErrNotFound,
		},
		{
			name:   "keys without override ignore the environment",
			key:    "other",
			env:    map[string]string{EnvSession: "env-cookie"},
			stored: map[string]string{"other": "value"},
			want:   "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockStore()
			for k, v := range tt.stored {
				mock.WithData(k, v)
			}
			store := newTestEnvStore(mock, tt.env)

			got, err := store.Get(tt.key)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFrom, store.FromEnv(tt.key))
		})
	}
}

func TestEnvStore_WritesGoToUnderlying(t *testing.T) {
	mock := NewMockStore()
	store := newTestEnvStore(mock, map[string]string{EnvSession: "env-cookie"})

	require.NoError(t, store.Set(KeySession, "stored-cookie"))
	got, err := mock.Get(KeySession)
	require.NoError(t, err)
	assert.Equal(t, "stored-cookie", got)

	require.NoError(t, store.Delete(KeySession))
	_, err = mock.Get(KeySession)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = store.Get(KeySession)
	require.NoError(t, err)
	assert.Equal(t, "env-cookie", got, "environment override outlives delete")
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	_, err := store.Get(KeySession)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(KeySession, "v1"))
	require.NoError(t, store.Set(KeySession, "v2"))
	require.NoError(t, store.Set(KeyUsername, "alice"))
	got, err := store.Get(KeySession)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
	assert.Equal(t, []string{KeySession, KeyUsername}, store.Keys())

	require.NoError(t, store.Delete(KeySession))
	require.NoError(t, store.Delete(KeySession), "deleting a missing key is not an error")
	assert.Equal(t, []string{KeyUsername}, store.Keys())
}

func TestMockStore_Errors(t *testing.T) {
	boom := errors.New("keyring locked")

	_, err := NewMockStore().WithGetError(boom).Get(KeySession)
	assert.ErrorIs(t, err, boom)

	err = NewMockStore().WithSetError(boom).Set(KeySession, "v")
	assert.ErrorIs(t, err, boom)

	err = NewMockStore().WithDeleteError(boom).Delete(KeySession)
	assert.ErrorIs(t, err, boom)
}
