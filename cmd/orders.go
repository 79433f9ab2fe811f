package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// newOrdersCmd creates the orders command with the given options.
func newOrdersCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List recent orders",
		Long: `List recent orders with their fill state.

Examples:
  fin orders
  fin orders --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd, opts)
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func runOrders(cmd *cobra.Command, opts *clientOptions) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	orders, err := opts.client().GetOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	if len(orders) == 0 && !opts.jsonMode {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No orders")
		return nil
	}

	headers := []string{"Order ID", "Symbol", "Type", "Qty", "Fill Price", "Status", "Submitted", "Filled"}
	rows := make([][]string, 0, len(orders))
	for _, r := range portfolio.OrderRows(orders, time.Local) {
		rows = append(rows, []string{r.ID, r.Symbol, r.TypeSide, r.Quantity, r.Price, r.Status, r.Submitted, r.Filled})
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Table(headers, rows)
}

func init() {
	opts := &clientOptions{}
	ordersCmd := newOrdersCmd(opts)
	ordersCmd.PreRunE = opts.load
	rootCmd.AddCommand(ordersCmd)
}
