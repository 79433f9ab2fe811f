package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/config"
	"github.com/finassist/fin/internal/output"
)

// configureOptions holds dependencies for the configure command.
// This allows for dependency injection in tests.
type configureOptions struct {
	configPath string
	prompt     prompter
	jsonMode   bool
}

// configureFlags are the non-interactive settings.
type configureFlags struct {
	serverURL       string
	downloadDir     string
	logLevel        string
	refreshInterval time.Duration
	show            bool
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts *configureOptions) *cobra.Command {
	var flags configureFlags

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the CLI",
		Long: `Configure the backend address and local settings.

Without flags you are prompted for each setting; press enter to keep the
current value. With flags the given settings are saved directly.

Examples:
  fin configure
  fin configure --server-url https://assistant.example.com
  fin configure --show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.show {
				return runViewConfiguration(cmd, opts)
			}
			if cmd.Flags().NFlag() > 0 {
				return runConfigureFlags(cmd, opts, flags)
			}
			return runConfigure(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&flags.serverURL, "server-url", "", "Backend URL")
	cmd.Flags().StringVar(&flags.downloadDir, "download-dir", "", "Directory for files sent by the assistant")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().DurationVar(&flags.refreshInterval, "refresh-interval", 0, "Portfolio refresh interval in the dashboard")
	cmd.Flags().BoolVar(&flags.show, "show", false, "Show the current configuration")

	// Don't show usage info on validation errors - just show the error
	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Edit settings",
	"View current configuration",
	"Reset to defaults",
}

func runConfigure(cmd *cobra.Command, opts *configureOptions) error {
	if _, err := os.Stat(opts.configPath); err == nil {
		return runReconfigureMenu(cmd, opts)
	}
	return runEditSettings(cmd, opts)
}

// runReconfigureMenu shows the reconfigure menu when a config file exists.
func runReconfigureMenu(cmd *cobra.Command, opts *configureOptions) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "CLI is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(out)

	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0:
		return runEditSettings(cmd, opts)
	case 1:
		return runViewConfiguration(cmd, opts)
	case 2:
		return saveConfig(cmd, opts, config.DefaultConfig())
	default:
		return fmt.Errorf("invalid selection")
	}
}

// runEditSettings prompts for each setting, keeping the current value on an
// empty answer.
func runEditSettings(cmd *cobra.Command, opts *configureOptions) error {
	cfg, err := loadOrDefault(opts.configPath)
	if err != nil {
		return err
	}

	if cfg.ServerURL, err = promptDefault(opts.prompt, "Server URL", cfg.ServerURL); err != nil {
		return fmt.Errorf("failed to read server URL: %w", err)
	}
	if cfg.DownloadDir, err = promptDefault(opts.prompt, "Download directory", cfg.DownloadDir); err != nil {
		return fmt.Errorf("failed to read download directory: %w", err)
	}
	if cfg.LogLevel, err = promptDefault(opts.prompt, "Log level", cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to read log level: %w", err)
	}
	interval, err := promptDefault(opts.prompt, "Refresh interval", cfg.RefreshInterval.String())
	if err != nil {
		return fmt.Errorf("failed to read refresh interval: %w", err)
	}
	if cfg.RefreshInterval, err = time.ParseDuration(interval); err != nil {
		return fmt.Errorf("invalid refresh interval %q", interval)
	}

	return saveConfig(cmd, opts, cfg)
}

func runConfigureFlags(cmd *cobra.Command, opts *configureOptions, flags configureFlags) error {
	cfg, err := loadOrDefault(opts.configPath)
	if err != nil {
		return err
	}

	if flags.serverURL != "" {
		cfg.ServerURL = flags.serverURL
	}
	if flags.downloadDir != "" {
		cfg.DownloadDir = flags.downloadDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.refreshInterval != 0 {
		cfg.RefreshInterval = flags.refreshInterval
	}

	return saveConfig(cmd, opts, cfg)
}

func saveConfig(cmd *cobra.Command, opts *configureOptions, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Success("Configuration saved successfully!")
}

// runViewConfiguration displays the current configuration.
func runViewConfiguration(cmd *cobra.Command, opts *configureOptions) error {
	cfg, err := loadOrDefault(opts.configPath)
	if err != nil {
		return err
	}

	fields := []output.Field{
		{Label: "Server URL", Value: cfg.ServerURL},
		{Label: "Request timeout", Value: cfg.RequestTimeout.String()},
		{Label: "Refresh interval", Value: cfg.RefreshInterval.String()},
		{Label: "Progress delay", Value: cfg.ProgressDelay.String()},
		{Label: "Download directory", Value: cfg.DownloadDir},
		{Label: "Log file", Value: cfg.LogFile},
		{Label: "Log level", Value: cfg.LogLevel},
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Details("Current Configuration", fields, cfg)
}

// loadOrDefault loads the config file. A corrupt file falls back to the
// defaults so it can be overwritten.
func loadOrDefault(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, err
		}
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

func init() {
	opts := &configureOptions{
		prompt: newTerminalPrompter(os.Stdin, os.Stdout),
	}
	configureCmd := newConfigureCmd(opts)
	configureCmd.PreRun = func(cmd *cobra.Command, args []string) {
		opts.configPath = GetConfigPath()
		opts.jsonMode = GetJSONMode()
	}
	rootCmd.AddCommand(configureCmd)
}
