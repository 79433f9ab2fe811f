package auth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/finassist/fin/internal/config"
)

// sessionCache is the JSON structure for the cached session file.
type sessionCache struct {
	Username   string `json:"username"`
	LoggedInAt int64  `json:"logged_in_at"`
}

// SaveSession writes session details to the cache file.
// Creates parent directories if needed with 0700 permissions.
// The file is written with 0600 permissions.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.Marshal(sessionCache{
		Username:   s.Username,
		LoggedInAt: s.LoggedInAt,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadSession reads session details from the cache file.
// Returns an error if the file doesn't exist or contains invalid JSON.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cache sessionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}

	return &Session{
		Username:   cache.Username,
		LoggedInAt: cache.LoggedInAt,
	}, nil
}

// DeleteSession removes the session cache file.
// Returns nil if the file doesn't exist.
func DeleteSession(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionCachePath returns the path to the session cache file.
func SessionCachePath() string {
	return filepath.Join(config.StateDir(), "session.json")
}
