// Package keyring keeps the dashboard session out of the config file. Values
// live in the operating system keyring under a single service name and can
// be supplied through the environment instead, e.g. in CI.
package keyring

import (
	"errors"
	"os"

	gokeyring "github.com/zalando/go-keyring"
)

// Service is the keyring service every fin value is stored under.
// Uses reverse domain notation for proper namespacing.
const Service = "com.finassist.fin"

// Keys of the stored values.
const (
	// KeySession is the dashboard session cookie.
	KeySession = "session_cookie"
	// KeyUsername is the last username passed to login.
	KeyUsername = "username"
)

// Environment variables that take precedence over the keyring.
const (
	EnvSession  = "FIN_SESSION"
	EnvUsername = "FIN_USERNAME"
)

// envOverrides maps keys to the variable that overrides them.
var envOverrides = map[string]string{
	KeySession:  EnvSession,
	KeyUsername: EnvUsername,
}

// EnvVar returns the environment variable that overrides key, if any.
func EnvVar(key string) (string, bool) {
	name, ok := envOverrides[key]
	return name, ok
}

// ErrNotFound is returned when no value is stored for a key.
var ErrNotFound = errors.New("secret not found")

// Store holds the values of the fin service by key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct {
	service string
}

// NewSystemStore creates a store for the fin service.
func NewSystemStore() *SystemStore {
	return &SystemStore{service: Service}
}

// Get retrieves a value from the system keyring.
func (s *SystemStore) Get(key string) (string, error) {
	secret, err := gokeyring.Get(s.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return secret, err
}

// Set stores a value in the system keyring.
func (s *SystemStore) Set(key, value string) error {
	return gokeyring.Set(s.service, key, value)
}

// Delete removes a value. Deleting a missing key is not an error.
func (s *SystemStore) Delete(key string) error {
	err := gokeyring.Delete(s.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

// EnvStore reads overridable keys from the environment before falling back
// to another store. Writes always go to the underlying store.
type EnvStore struct {
	underlying Store
	lookup     func(string) (string, bool)
}

// NewEnvStore creates an EnvStore wrapping the given store.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying, lookup: os.LookupEnv}
}

// Get returns the environment value for key when set, else the stored one.
func (e *EnvStore) Get(key string) (string, error) {
	if v, ok := e.fromEnv(key); ok {
		return v, nil
	}
	return e.underlying.Get(key)
}

// FromEnv reports whether key is currently supplied by the environment.
func (e *EnvStore) FromEnv(key string) bool {
	_, ok := e.fromEnv(key)
	return ok
}

func (e *EnvStore) fromEnv(key string) (string, bool) {
	name, ok := EnvVar(key)
	if !ok {
		return "", false
	}
	v, ok := e.lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Set stores a value in the underlying store.
func (e *EnvStore) Set(key, value string) error {
	return e.underlying.Set(key, value)
}

// Delete removes a value from the underlying store. An environment override
// stays in effect.
func (e *EnvStore) Delete(key string) error {
	return e.underlying.Delete(key)
}
