package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finassist/fin/internal/config"
)

func TestConfigureCmd_Flags(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	out, err := execute(cmd,
		"--server-url", "https://assistant.example.com",
		"--log-level", "debug",
		"--refresh-interval", "1m",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved successfully!")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://assistant.example.com", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, config.DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestConfigureCmd_FlagsKeepExistingValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := config.DefaultConfig()
	existing.ServerURL = "https://old.example.com"
	existing.DownloadDir = "/srv/downloads"
	require.NoError(t, config.Save(configPath, existing))

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	_, err := execute(cmd, "--log-level", "warn")

	require.NoError(t, err)
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://old.example.com", cfg.ServerURL)
	assert.Equal(t, "/srv/downloads", cfg.DownloadDir)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigureCmd_InvalidValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	_, err := execute(cmd, "--log-level", "loud")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr), "invalid config should not be written")
}

func TestConfigureCmd_Show(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	out, err := execute(cmd, "--show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Configuration")
	assert.Contains(t, out, config.DefaultServerURL)
	assert.Contains(t, out, "Refresh interval:")
	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr), "--show should not write the file")
}

func TestConfigureCmd_ShowJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt(), jsonMode: true})
	out, err := execute(cmd, "--show")

	require.NoError(t, err)
	assert.Contains(t, out, `"ServerURL": "`+config.DefaultServerURL+`"`)
}

func TestConfigureCmd_Interactive(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	prompt := newMockPrompt().WithLines("https://new.example.com", "", "warn", "45s")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: prompt})
	out, err := execute(cmd)

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved successfully!")
	assert.Equal(t, "Server URL ["+config.DefaultServerURL+"]: ", prompt.prompts[0])

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", cfg.ServerURL)
	assert.Equal(t, config.DefaultDownloadDir(), cfg.DownloadDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.RefreshInterval)
}

func TestConfigureCmd_InteractiveInvalidInterval(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	prompt := newMockPrompt().WithLines("", "", "", "soon")

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: prompt})
	_, err := execute(cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid refresh interval "soon"`)
}

func TestConfigureCmd_ReconfigureMenu(t *testing.T) {
	tests := []struct {
		name      string
		selection int
		lines     []string
		wantOut   string
		wantURL   string
	}{
		{
			name:      "edit settings",
			selection: 0,
			lines:     []string{"https://edited.example.com"},
			wantOut:   "Configuration saved successfully!",
			wantURL:   "https://edited.example.com",
		},
		{
			name:      "view configuration",
			selection: 1,
			wantOut:   "Current Configuration",
			wantURL:   "https://old.example.com",
		},
		{
			name:      "reset to defaults",
			selection: 2,
			wantOut:   "Configuration saved successfully!",
			wantURL:   config.DefaultServerURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			existing := config.DefaultConfig()
			existing.ServerURL = "https://old.example.com"
			require.NoError(t, config.Save(configPath, existing))

			prompt := newMockPrompt(tt.selection).WithLines(tt.lines...)
			cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: prompt})
			out, err := execute(cmd)

			require.NoError(t, err)
			assert.Contains(t, out, "CLI is already configured")
			assert.Contains(t, out, tt.wantOut)

			cfg, err := config.Load(configPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.ServerURL)
		})
	}
}

func TestConfigureCmd_ReconfigureMenuNoInput(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Save(configPath, config.DefaultConfig()))

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	_, err := execute(cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read selection")
}

func TestConfigureCmd_CorruptFileFallsBackToDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server_url: [not yaml"), 0o600))

	cmd := newConfigureCmd(&configureOptions{configPath: configPath, prompt: newMockPrompt()})
	_, err := execute(cmd, "--server-url", "https://fixed.example.com")

	require.NoError(t, err)
	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://fixed.example.com", cfg.ServerURL)
}
