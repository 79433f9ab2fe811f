package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// newInfoCmd creates the info command with the given options.
func newInfoCmd(opts *clientOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show what the assistant knows about you",
		Long: `Show the assets you told the assistant about, or every stored fact
with --all.

Examples:
  fin info
  fin info --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show all stored information")
	cmd.SilenceUsage = true
	return cmd
}

func runInfo(cmd *cobra.Command, opts *clientOptions, all bool) error {
	category, title, loadErr := api.InfoCategoryAssets, portfolio.AssetsTitle, portfolio.AssetsLoadError
	if all {
		category, title, loadErr = "", portfolio.AllInfoTitle, portfolio.AllInfoLoadError
	}

	ctx, cancel := opts.requestContext()
	defer cancel()

	items, err := opts.client().GetImportantInfo(ctx, category)
	if err != nil {
		opts.log().Warn("important info failed", zap.String("category", category), zap.Error(err))
		return fmt.Errorf("%s: %w", loadErr, err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(items)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, title)
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, portfolio.NoAssetsMessage)
		return nil
	}

	for _, group := range portfolio.GroupInfo(items) {
		_, _ = fmt.Fprintln(out)
		rows := make([][]string, 0, len(group.Items))
		for _, it := range group.Items {
			rows = append(rows, []string{it.Content, portfolio.FormatTimestamp(it.UpdatedAt, time.Local)})
		}
		if err := formatter.Table([]string{group.Title, "Updated"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	opts := &clientOptions{}
	infoCmd := newInfoCmd(opts)
	infoCmd.PreRunE = opts.load
	rootCmd.AddCommand(infoCmd)
}
