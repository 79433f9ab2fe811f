package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// newMetricsCmd creates the metrics command with the given options.
func newMetricsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the account summary",
		Long: `Show total value, daily change, cash available and buying power.

Examples:
  fin metrics
  fin metrics --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(cmd, opts)
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func runMetrics(cmd *cobra.Command, opts *clientOptions) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	metrics, err := opts.client().GetMetrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}

	fields := metricFields(metrics)
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Details("Account Summary", fields, metrics)
}

// metricFields formats the headline metrics as labelled fields.
func metricFields(m api.Metrics) []output.Field {
	displays := portfolio.DisplayMetrics(m)
	fields := make([]output.Field, len(displays))
	for i, d := range displays {
		fields[i] = output.Field{Label: d.Label, Value: d.Value}
	}
	return fields
}

func init() {
	opts := &clientOptions{}
	metricsCmd := newMetricsCmd(opts)
	metricsCmd.PreRunE = opts.load
	rootCmd.AddCommand(metricsCmd)
}
