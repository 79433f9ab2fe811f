package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/config"
)

var Version = "dev"

var (
	// jsonOutput controls whether output is formatted as JSON
	jsonOutput bool
	// configFile overrides the default config location
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "fin",
	Short: "Financial assistant dashboard",
	Long: `A terminal dashboard and CLI for the financial assistant.

Chat with the assistant, follow your portfolio and place trades from the
terminal. Run 'fin ui' for the interactive dashboard.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/fin/config.yaml)")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

// GetConfigPath returns the config file in use.
func GetConfigPath() string {
	if configFile != "" {
		return configFile
	}
	return config.ConfigPath()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
