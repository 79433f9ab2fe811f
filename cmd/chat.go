package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/chat"
	"github.com/finassist/fin/internal/output"
	"github.com/finassist/fin/internal/portfolio"
)

// spinnerInterval is how often the waiting spinner advances.
const spinnerInterval = 100 * time.Millisecond

// chatOptions holds dependencies for the chat command.
type chatOptions struct {
	clientOptions
	downloadDir   string
	progressDelay time.Duration
	// spinner receives the waiting indicator. Nil disables it.
	spinner io.Writer
}

// chatFlags are the mode switches of the chat command.
type chatFlags struct {
	clear  bool
	report bool
	noSave bool
}

// newChatCmd creates the chat command with the given options.
func newChatCmd(opts *chatOptions) *cobra.Command {
	var flags chatFlags

	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Talk to the assistant",
		Long: `Send a message to the financial assistant and print its answer.

Without a message the assistant's greeting is shown. Files sent by the
assistant are saved to the download directory.

Sending your Alpaca key id and secret separated by a space stores them as
your broker credentials instead of sending them to the assistant.

Examples:
  fin chat "How is my portfolio doing?"
  fin chat --report
  fin chat --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.clear {
				return runChatClear(cmd, opts)
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			var send func(*api.Client) (*api.ChatResponse, error)
			switch {
			case flags.report || text == chat.PerformanceRequest:
				send = func(c *api.Client) (*api.ChatResponse, error) {
					ctx, cancel := opts.requestContext()
					defer cancel()
					return c.RequestPerformanceReport(ctx)
				}
			case text == "":
				send = func(c *api.Client) (*api.ChatResponse, error) {
					ctx, cancel := opts.requestContext()
					defer cancel()
					return c.InitChat(ctx)
				}
			default:
				if creds, ok := chat.ParseCredentials(text); ok {
					return runStoreCredentials(cmd, opts, creds)
				}
				send = func(c *api.Client) (*api.ChatResponse, error) {
					ctx, cancel := opts.requestContext()
					defer cancel()
					return c.SendChat(ctx, text)
				}
			}
			return runChatRequest(cmd, opts, flags, send)
		},
	}

	cmd.Flags().BoolVar(&flags.clear, "clear", false, "Clear the conversation")
	cmd.Flags().BoolVar(&flags.report, "report", false, "Request a performance report")
	cmd.Flags().BoolVar(&flags.noSave, "no-save", false, "Do not save attachments")
	cmd.MarkFlagsMutuallyExclusive("clear", "report")
	cmd.SilenceUsage = true

	return cmd
}

// runChatRequest sends one request and presents the answer.
func runChatRequest(cmd *cobra.Command, opts *chatOptions, flags chatFlags, send func(*api.Client) (*api.ChatResponse, error)) error {
	stop := startSpinner(opts.spinner, "Thinking...")
	resp, err := send(opts.client())
	stop()
	if err != nil {
		opts.log().Warn("chat request failed", zap.Error(err))
		var appErr *api.AppError
		if errors.As(err, &appErr) {
			return errors.New(chat.ErrorPrefix + appErr.Message)
		}
		return fmt.Errorf("failed to reach the assistant: %w", err)
	}

	if opts.jsonMode {
		if err := output.New(cmd.OutOrStdout(), true).JSON(resp); err != nil {
			return err
		}
	} else {
		presentChat(cmd.OutOrStdout(), resp, opts.progressDelay)
	}

	if resp.HasAttachment && resp.Attachment != nil && !flags.noSave {
		path, err := chat.SaveAttachment(opts.downloadDir, resp.Attachment)
		if err != nil {
			return fmt.Errorf("failed to save attachment: %w", err)
		}
		opts.log().Info("attachment saved", zap.String("path", path))
		if !opts.jsonMode {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		}
	}
	return nil
}

// presentChat prints progress messages paced by delay, then the answer and
// any suggested follow-up command.
func presentChat(w io.Writer, resp *api.ChatResponse, delay time.Duration) {
	q := chat.Plan(resp, delay)
	for {
		step, ok := q.Next()
		if !ok {
			break
		}
		switch step.Kind {
		case chat.StepProgress:
			_, _ = fmt.Fprintf(w, "… %s\n", chat.RenderText(step.Text))
			time.Sleep(step.Delay)
		case chat.StepPending:
			_, _ = fmt.Fprintf(w, "… %s\n", chat.RenderText(step.Text))
			_, _ = fmt.Fprintln(w, "The assistant is still working on this. Ask again in a moment.")
		case chat.StepFinal:
			if step.Text != "" {
				_, _ = fmt.Fprintln(w, chat.RenderText(step.Text))
			}
			if hint := actionHint(step.Action); hint != "" {
				_, _ = fmt.Fprintf(w, "\nTry: %s\n", hint)
			}
		}
	}
}

// actionHint names the command that matches an assistant action.
func actionHint(a *api.Action) string {
	if a == nil {
		return ""
	}
	switch a.Type {
	case api.ActionPlaceOrder:
		var d api.PlaceOrderData
		if err := a.DecodeData(&d); err != nil {
			return ""
		}
		f := portfolio.FormFromAction(d)
		if f.Symbol == "" || (f.Side != api.SideBuy && f.Side != api.SideSell) {
			return "fin trade --help"
		}
		hint := fmt.Sprintf("fin trade %s %s", f.Side, f.Symbol)
		if f.Qty != "" {
			hint += " --qty " + f.Qty
		}
		if f.Type != api.OrderTypeMarket {
			hint += " --type " + f.Type
		}
		if f.StopPrice != "" {
			hint += " --stop " + f.StopPrice
		}
		if f.LimitPrice != "" {
			hint += " --limit " + f.LimitPrice
		}
		return hint
	case api.ActionAnalyzeSymbol:
		var d api.AnalyzeSymbolData
		if err := a.DecodeData(&d); err != nil || d.Symbol == "" {
			return ""
		}
		return "fin analyze " + strings.ToUpper(d.Symbol)
	case api.ActionShowPositions:
		return "fin positions"
	case api.ActionShowOrders:
		return "fin orders"
	case api.ActionShowTrade:
		return "fin trade --help"
	case api.ActionShowAnalysis:
		return "fin analyze SYMBOL"
	}
	return ""
}

func runStoreCredentials(cmd *cobra.Command, opts *chatOptions, creds chat.Credentials) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	opts.log().Info("storing broker credentials")
	resp, err := opts.client().StoreCredentials(ctx, creds.APIKey, creds.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(resp)
	}
	msg := resp.Message
	if msg == "" {
		msg = chat.CredentialsStoredText
	}
	if err := formatter.Success(msg); err != nil {
		return err
	}
	if len(resp.Metrics) == 0 {
		return nil
	}

	fields := metricFields(resp.Metrics)
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	return formatter.Details("Account Summary", fields, resp.Metrics)
}

func runChatClear(cmd *cobra.Command, opts *chatOptions) error {
	ctx, cancel := opts.requestContext()
	defer cancel()

	if err := opts.client().ClearChat(ctx); err != nil {
		return err
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Success("Conversation cleared")
}

// startSpinner shows an indeterminate spinner on w until the returned stop
// function is called.
func startSpinner(w io.Writer, description string) (stop func()) {
	if w == nil {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		_ = bar.Finish()
	}
}

func init() {
	opts := &chatOptions{}
	chatCmd := newChatCmd(opts)
	chatCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		opts.downloadDir = cfg.DownloadDir
		opts.progressDelay = cfg.ProgressDelay
		if !opts.jsonMode && term.IsTerminal(int(os.Stderr.Fd())) {
			opts.spinner = os.Stderr
		}
		return nil
	}
	rootCmd.AddCommand(chatCmd)
}
