package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// newAnalyzeCmd creates the analyze command with the given options.
func newAnalyzeCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Analyze a symbol",
		Long: `Show the current price, 24h change and volume of a symbol.

Examples:
  fin analyze AAPL
  fin analyze BTCUSD --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *clientOptions, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	ctx, cancel := opts.requestContext()
	defer cancel()

	analysis, err := opts.client().GetAnalysis(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", symbol, err)
	}

	cards := portfolio.AnalysisCards(analysis)
	fields := make([]output.Field, len(cards))
	for i, c := range cards {
		fields[i] = output.Field{Label: c.Label, Value: c.Value}
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Details(analysis.Symbol+" Analysis", fields, analysis)
}

func init() {
	opts := &clientOptions{}
	analyzeCmd := newAnalyzeCmd(opts)
	analyzeCmd.PreRunE = opts.load
	rootCmd.AddCommand(analyzeCmd)
}
