package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/output"
)

var chartKinds = []string{api.LegacyMetrics, api.LegacyAllocation, api.LegacyPerformance}

// newChartCmd creates the chart command with the given options.
func newChartCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart KIND",
		Short: "Draw a chart prepared by the backend",
		Long: `Draw one of the charts the backend prepares: ` + strings.Join(chartKinds, ", ") + `.

Examples:
  fin chart allocation
  fin chart performance`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: chartKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, opts, strings.ToLower(args[0]))
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func runChart(cmd *cobra.Command, opts *clientOptions, kind string) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	resp, err := opts.client().GetLegacy(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to fetch %s chart: %w", kind, err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if !resp.IsChart() {
		fields := metricFields(resp.Metrics)
		return formatter.Details("Account Summary", fields, resp.Metrics)
	}

	if opts.jsonMode {
		return formatter.JSON(resp.Config)
	}
	cfg, err := chart.FromServer(resp.Config)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), chart.NewTermRenderer().Render(cfg, chartWidth, historyChartHeight))
	return err
}

func init() {
	opts := &clientOptions{}
	chartCmd := newChartCmd(opts)
	chartCmd.PreRunE = opts.load
	rootCmd.AddCommand(chartCmd)
}
