// Package auth manages the dashboard login session. The session cookie
// lives in the keyring; non-secret details about it are cached on disk so
// commands can report who is logged in.
package auth

import (
	"context"
	"time"
)

// Session describes the current login.
type Session struct {
	Username   string
	LoggedInAt int64
	// FromEnv is set when the cookie comes from the environment rather
	// than the keyring.
	FromEnv bool
}

// Since returns how long ago the login happened.
func (s *Session) Since(now time.Time) time.Duration {
	if s.LoggedInAt == 0 {
		return 0
	}
	return now.Sub(time.Unix(s.LoggedInAt, 0))
}

// Authenticator is the backend side of a login. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}
