package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/tui"
)

// uiOptions holds dependencies for the ui command.
type uiOptions struct {
	clientOptions
	dashboard   tui.Options
	metricsAddr string
	// run starts the program. Tests replace it to avoid a terminal.
	run func(tea.Model) error
}

// newUICmd creates the ui command with the given options.
func newUICmd(opts *uiOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive dashboard",
		Long: `Launch the interactive dashboard.

The dashboard shows the assistant chat next to your account summary,
performance chart and trading tools.

Keyboard shortcuts:
  tab       Switch focus between chat and dashboard
  F1-F4     Quick action menus
  1-6       Select a tool (dashboard focus)
  p         Show or hide the performance chart
  [ / ]     Previous / next timeframe
  v         Chart or table view
  r         Refresh
  ctrl+c    Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve request metrics on this address, e.g. localhost:9090")
	cmd.SilenceUsage = true

	return cmd
}

func runUI(cmd *cobra.Command, opts *uiOptions) error {
	client := opts.client()

	if opts.metricsAddr != "" {
		_, shutdown, err := serveMetrics(opts.metricsAddr, client, opts.log())
		if err != nil {
			return err
		}
		defer shutdown()
	}

	dashboard := opts.dashboard
	dashboard.Logger = opts.log()
	opts.log().Info("dashboard starting", zap.String("server", opts.baseURL))

	run := opts.run
	if run == nil {
		run = func(m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		}
	}
	if err := run(tui.New(client, dashboard)); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// serveMetrics exposes the request metrics of client on addr until the
// returned function is called. It returns the address actually bound.
func serveMetrics(addr string, client *api.Client, logger *zap.Logger) (string, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	client.WithMetrics(api.NewRequestMetrics(registry))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func init() {
	opts := &uiOptions{}
	uiCmd := newUICmd(opts)
	uiCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		ui, err := tui.LoadConfig()
		if err != nil {
			opts.log().Warn("ignoring unreadable ui config", zap.Error(err))
			ui = nil
		}
		opts.dashboard = tui.OptionsFromConfig(cfg, ui)
		return nil
	}
	rootCmd.AddCommand(uiCmd)
}
