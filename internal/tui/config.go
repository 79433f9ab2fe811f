package tui

import (
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/finassist/fin/internal/config"
	"github.com/finassist/fin/internal/performance"
)

// UIConfig holds TUI-specific state that survives restarts, separate from
// the CLI config.
type UIConfig struct {
	Timeframe string `yaml:"timeframe,omitempty"`
	TableView bool   `yaml:"table_view,omitempty"`
}

// ConfigPath returns the path to the TUI config file.
func ConfigPath() string {
	return filepath.Join(config.ConfigDir(), "ui.yaml")
}

// LoadConfig loads the TUI config from disk.
func LoadConfig() (*UIConfig, error) {
	return loadConfigFrom(ConfigPath())
}

func loadConfigFrom(path string) (*UIConfig, error) {
	cfg := &UIConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the TUI config to disk.
func SaveConfig(cfg *UIConfig) error {
	return saveConfigTo(ConfigPath(), cfg)
}

func saveConfigTo(path string, cfg *UIConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Options are the runtime settings of the dashboard.
type Options struct {
	RefreshInterval time.Duration
	ProgressDelay   time.Duration
	DownloadDir     string
	Location        *time.Location
	UI              *UIConfig
	// ConfigPath is where UI changes are persisted. Empty disables saving.
	ConfigPath string
	Logger     *zap.Logger
}

// OptionsFromConfig derives dashboard options from the CLI config.
func OptionsFromConfig(cfg *config.Config, ui *UIConfig) Options {
	if ui == nil {
		ui = &UIConfig{}
	}
	dir := cfg.DownloadDir
	if dir == "" {
		dir = config.DefaultDownloadDir()
	}
	return Options{
		RefreshInterval: cfg.RefreshInterval,
		ProgressDelay:   cfg.ProgressDelay,
		DownloadDir:     dir,
		Location:        time.Local,
		UI:              ui,
		ConfigPath:      ConfigPath(),
	}
}

func (o Options) withDefaults() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = config.DefaultRefreshInterval
	}
	if o.ProgressDelay < 0 {
		o.ProgressDelay = 0
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.UI == nil {
		o.UI = &UIConfig{}
	}
	if o.UI.Timeframe == "" {
		o.UI.Timeframe = performance.DefaultTimeframe
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// UIConfigSavedMsg reports a failed UI config save. Successful saves are silent.
type UIConfigSavedMsg struct {
	Err error
}

// saveUIConfig returns a command persisting a snapshot of ui.
func saveUIConfig(path string, ui UIConfig) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return UIConfigSavedMsg{Err: saveConfigTo(path, &ui)}
	}
}
