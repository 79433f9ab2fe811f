package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// chartWidth is the width of charts printed by CLI commands.
const chartWidth = 60

// newPositionsCmd creates the positions command with the given options.
func newPositionsCmd(opts *clientOptions) *cobra.Command {
	var showChart bool

	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List open positions",
		Long: `List open positions with their share of the portfolio.

Positions worth one cent or less are hidden.

Examples:
  fin positions
  fin positions --chart`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositions(cmd, opts, showChart)
		},
	}
	cmd.Flags().BoolVar(&showChart, "chart", false, "Draw the allocation chart")
	cmd.SilenceUsage = true
	return cmd
}

func runPositions(cmd *cobra.Command, opts *clientOptions, showChart bool) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	positions, err := opts.client().GetPositions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch positions: %w", err)
	}

	positions = portfolio.FilterPositions(positions)
	if len(positions) == 0 && !opts.jsonMode {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No positions")
		return nil
	}

	slices := portfolio.PieSlices(positions)
	allocation := make(map[string]string, len(slices))
	for _, s := range slices {
		allocation[s.Symbol] = s.Percent.StringFixed(2) + "%"
	}

	headers := []string{"Symbol", "Qty", "Price", "Avg Entry", "Market Value", "P/L", "P/L %", "Allocation"}
	rows := make([][]string, 0, len(positions))
	for _, r := range portfolio.PositionRows(positions) {
		rows = append(rows, []string{
			r.Symbol, r.Qty, r.CurrentPrice, r.AvgEntry, r.MarketValue, r.PL, r.PLPercent, allocation[r.Symbol],
		})
	}

	if err := output.New(cmd.OutOrStdout(), opts.jsonMode).Table(headers, rows); err != nil {
		return err
	}
	if showChart && !opts.jsonMode {
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), chart.NewTermRenderer().Render(portfolio.AllocationChart(slices), chartWidth, 0))
	}
	return nil
}

func init() {
	opts := &clientOptions{}
	positionsCmd := newPositionsCmd(opts)
	positionsCmd.PreRunE = opts.load
	rootCmd.AddCommand(positionsCmd)
}
