package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/format"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// tradeParams holds the raw order flags.
type tradeParams struct {
	quantity   string
	orderType  string
	limitPrice string
	stopPrice  string
}

// newTradeCmd creates the trade command with buy and sell subcommands.
func newTradeCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Place buy and sell orders",
		Long: `Place orders through the assistant's brokerage connection.

Order types:
  market      executes at the current market price
  limit       executes at the limit price or better (--limit)
  stop        triggers when the stop price is reached (--stop)
  stop_limit  triggers at the stop price, executes at the limit (--stop and --limit)

Orders are previewed and only sent with --yes.`,
	}
	cmd.AddCommand(newTradeSideCmd(opts, api.SideBuy), newTradeSideCmd(opts, api.SideSell))
	return cmd
}

func newTradeSideCmd(opts *clientOptions, side string) *cobra.Command {
	var params tradeParams
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   side + " SYMBOL",
		Short: fmt.Sprintf("Place a %s order", side),
		Long: fmt.Sprintf(`Place a %[1]s order.

Examples:
  fin trade %[1]s AAPL --qty 10                                # Market order
  fin trade %[1]s AAPL --qty 10 --type limit --limit 175.00    # Limit order
  fin trade %[1]s AAPL --qty 10 --type stop_limit --stop 180 --limit 179 --yes`, side),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrade(cmd, opts, args[0], side, params, skipConfirm)
		},
	}

	cmd.Flags().StringVarP(&params.quantity, "qty", "q", "", "Quantity (required)")
	cmd.Flags().StringVarP(&params.orderType, "type", "t", api.OrderTypeMarket, "Order type: market, limit, stop or stop_limit")
	cmd.Flags().StringVarP(&params.limitPrice, "limit", "l", "", "Limit price for limit and stop_limit orders")
	cmd.Flags().StringVarP(&params.stopPrice, "stop", "s", "", "Stop price for stop and stop_limit orders")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Send the order without confirmation")
	cmd.SilenceUsage = true

	return cmd
}

func runTrade(cmd *cobra.Command, opts *clientOptions, symbol, side string, params tradeParams, skipConfirm bool) error {
	req, err := portfolio.BuildTradeRequest(portfolio.TradeForm{
		Symbol:     symbol,
		Qty:        params.quantity,
		Side:       side,
		Type:       params.orderType,
		LimitPrice: params.limitPrice,
		StopPrice:  params.stopPrice,
	})
	if err != nil {
		return err
	}

	// Show order preview (not in JSON mode)
	if !opts.jsonMode {
		fields := []output.Field{
			{Label: "Action", Value: req.Side},
			{Label: "Symbol", Value: req.Symbol},
			{Label: "Quantity", Value: strconv.FormatFloat(req.Qty, 'f', -1, 64)},
			{Label: "Type", Value: req.Type},
		}
		if req.StopPrice != nil {
			fields = append(fields, output.Field{Label: "Stop", Value: format.Currency(*req.StopPrice)})
		}
		if req.LimitPrice != nil {
			fields = append(fields, output.Field{Label: "Limit", Value: format.Currency(*req.LimitPrice)})
		}
		if err := output.New(cmd.OutOrStdout(), false).Details("Order Preview", fields, nil); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	// Require confirmation unless --yes flag is set
	if !skipConfirm {
		return fmt.Errorf("order requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := opts.requestContext()
	defer cancel()

	resp, err := opts.client().PlaceTrade(ctx, req)
	if err != nil {
		opts.log().Warn("order rejected", zap.String("symbol", req.Symbol), zap.String("side", req.Side), zap.Error(err))
		var appErr *api.AppError
		if errors.As(err, &appErr) {
			return errors.New(portfolio.TradeErrorMessage(appErr))
		}
		return fmt.Errorf("failed to place order: %w", err)
	}
	opts.log().Info("order placed", zap.String("symbol", req.Symbol), zap.String("order_id", resp.OrderID))

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(resp)
	}
	if err := formatter.Success(portfolio.TradeSuccessMessage); err != nil {
		return err
	}
	if resp.OrderID != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Order ID: %s\n", resp.OrderID)
	}
	return nil
}

func init() {
	opts := &clientOptions{}
	tradeCmd := newTradeCmd(opts)
	tradeCmd.PersistentPreRunE = opts.load
	rootCmd.AddCommand(tradeCmd)
}
