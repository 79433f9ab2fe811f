// Package config loads and saves the fin configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultServerURL       = "http://localhost:5000"
	DefaultRequestTimeout  = time.Duration(0) // no timeout
	DefaultRefreshInterval = 30 * time.Second
	DefaultProgressDelay   = 800 * time.Millisecond
	DefaultLogLevel        = "info"
)

// Environment overrides.
const (
	EnvServerURL   = "FIN_SERVER_URL"
	EnvLogLevel    = "FIN_LOG_LEVEL"
	EnvDownloadDir = "FIN_DOWNLOAD_DIR"
)

// Config holds the CLI configuration.
type Config struct {
	ServerURL       string        `yaml:"server_url" validate:"required,url"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gte=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gt=0"`
	ProgressDelay   time.Duration `yaml:"progress_delay" validate:"gte=0"`
	DownloadDir     string        `yaml:"download_dir"`
	LogFile         string        `yaml:"log_file"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       DefaultServerURL,
		RequestTimeout:  DefaultRequestTimeout,
		RefreshInterval: DefaultRefreshInterval,
		ProgressDelay:   DefaultProgressDelay,
		DownloadDir:     DefaultDownloadDir(),
		LogFile:         filepath.Join(StateDir(), "fin.log"),
		LogLevel:        DefaultLogLevel,
	}
}

// ConfigDir returns the configuration directory, honouring XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fin")
}

// ConfigPath returns the path of the configuration file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for logs, honouring XDG_STATE_HOME.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "fin")
}

// DefaultDownloadDir returns ~/Downloads.
func DefaultDownloadDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// Load reads the configuration at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. The file is only
// readable by the current user.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored and variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from FIN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.DownloadDir = v
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve loads the file at path, applies .env and environment overrides and
// validates the result.
func Resolve(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
