package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/chart"
	"github.com/finassist/fin/internal/format"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/performance"
)

// historyChartHeight is the number of rows of the equity chart.
const historyChartHeight = 12

// historyResult is the JSON form of the history command.
type historyResult struct {
	Timeframe   string         `json:"timeframe"`
	TotalReturn *float64       `json:"total_return_pct,omitempty"`
	High        *float64       `json:"high,omitempty"`
	Low         *float64       `json:"low,omitempty"`
	Points      []historyPoint `json:"points"`
}

type historyPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// newHistoryCmd creates the history command with the given options.
func newHistoryCmd(opts *clientOptions) *cobra.Command {
	var timeframe string
	var showChart bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show portfolio performance",
		Long: `Show portfolio equity over a timeframe with total return, high and low.

Timeframes: ` + strings.Join(performance.Timeframes, ", ") + `

Examples:
  fin history
  fin history --timeframe 1M
  fin history --timeframe 1Y --chart`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, strings.ToUpper(timeframe), showChart)
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", performance.DefaultTimeframe, "Timeframe")
	cmd.Flags().BoolVar(&showChart, "chart", false, "Draw a chart instead of the table")
	cmd.SilenceUsage = true

	return cmd
}

func runHistory(cmd *cobra.Command, opts *clientOptions, timeframe string, showChart bool) error {
	if !slices.Contains(performance.Timeframes, timeframe) {
		return fmt.Errorf("invalid timeframe: %s (use %s)", timeframe, strings.Join(performance.Timeframes, ", "))
	}

	ctx, cancel := opts.requestContext()
	defer cancel()

	history, err := opts.client().GetHistory(ctx, timeframe)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	points, err := performance.BuildSeries(history, time.Local)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	stats := performance.ComputeStats(history)

	if opts.jsonMode {
		result := historyResult{Timeframe: timeframe, Points: make([]historyPoint, len(points))}
		for i, p := range points {
			result.Points[i] = historyPoint{Time: p.Time, Equity: p.Equity}
		}
		if stats.HasReturn {
			result.TotalReturn = &stats.TotalReturn
		}
		if stats.HasRange {
			result.High, result.Low = &stats.High, &stats.Low
		}
		return output.New(cmd.OutOrStdout(), true).JSON(result)
	}

	out := cmd.OutOrStdout()
	if len(points) == 0 {
		_, _ = fmt.Fprintf(out, "No performance data for %s\n", timeframe)
		return nil
	}

	fields := []output.Field{{Label: "Timeframe", Value: timeframe}, {Label: "Total Return", Value: "-"}}
	if stats.HasReturn {
		fields[1].Value = format.Percentage(stats.TotalReturn)
	}
	if stats.HasRange {
		fields = append(fields,
			output.Field{Label: "High", Value: format.Currency(stats.High)},
			output.Field{Label: "Low", Value: format.Currency(stats.Low)},
		)
	}
	formatter := output.New(out, false)
	if err := formatter.Details("Performance", fields, nil); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)

	tf := performance.Lookup(timeframe)
	if showChart {
		cfg := performance.ChartConfig(points, tf)
		_, _ = fmt.Fprintln(out, chart.NewTermRenderer().Render(cfg, chartWidth, historyChartHeight))
		return nil
	}

	rows := make([][]string, 0, len(points))
	for _, r := range performance.TableRows(points) {
		change := "-"
		if r.HasChange {
			change = format.Percentage(r.Change)
		}
		rows = append(rows, []string{r.Time.Format(tf.TooltipLayout), format.Currency(r.Equity), change})
	}
	return formatter.Table([]string{"Date", "Value", "Change"}, rows)
}

func init() {
	opts := &clientOptions{}
	historyCmd := newHistoryCmd(opts)
	historyCmd.PreRunE = opts.load
	rootCmd.AddCommand(historyCmd)
}
