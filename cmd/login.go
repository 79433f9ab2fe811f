package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/auth"
	"github.com/finassist/fin/internal/config"
	"github.com/finassist/fin/internal/keyring"
	"github.com/finassist/fin/internal/output"
)

// loginOptions holds dependencies for the login and logout commands.
type loginOptions struct {
	baseURL        string
	timeout        time.Duration
	jsonMode       bool
	manager        *auth.Manager
	passwordReader passwordReader
	prompt         prompter
}

func (o *loginOptions) client(session string) *api.Client {
	return api.NewClient(o.baseURL, session).WithTimeout(o.timeout)
}

// newLoginCmd creates the login command with the given options.
func newLoginCmd(opts *loginOptions) *cobra.Command {
	var username string
	var status bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the financial assistant",
		Long: `Log in with your dashboard username and password.

The session is stored in your system keyring. Set FIN_SESSION to use a
session without the keyring, e.g. in CI.

Examples:
  fin login
  fin login --username alice
  fin login --status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status {
				return runLoginStatus(cmd, opts)
			}
			return runLogin(cmd, opts, username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().BoolVar(&status, "status", false, "Show the current login")
	cmd.SilenceUsage = true

	return cmd
}

func runLogin(cmd *cobra.Command, opts *loginOptions, username string) error {
	// Verify we're running in an interactive terminal
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("login requires an interactive terminal\nRun this command directly in your terminal or set %s", keyring.EnvSession)
	}

	if username == "" {
		last, _ := opts.manager.Store.Get(keyring.KeyUsername)
		prompt := "Username: "
		if last != "" {
			prompt = fmt.Sprintf("Username [%s]: ", last)
		}
		line, err := opts.prompt.ReadLine(prompt)
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = line
		if username == "" {
			username = last
		}
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	password, err := opts.passwordReader.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout()) // Print newline after hidden input

	ctx, cancel := requestContext(opts.timeout)
	defer cancel()

	session, err := opts.manager.Login(ctx, opts.client(""), username, password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidLogin) {
			return err
		}
		return fmt.Errorf("failed to log in: %w", err)
	}

	return output.New(cmd.OutOrStdout(), opts.jsonMode).Success("Logged in as " + session.Username)
}

func runLoginStatus(cmd *cobra.Command, opts *loginOptions) error {
	session, err := opts.manager.Status()
	if err != nil {
		return err
	}

	fields := []output.Field{{Label: "Username", Value: session.Username}}
	if session.LoggedInAt > 0 {
		fields = append(fields, output.Field{
			Label: "Logged in",
			Value: time.Unix(session.LoggedInAt, 0).Local().Format(time.DateTime),
		})
	}
	if session.FromEnv {
		fields = append(fields, output.Field{Label: "Source", Value: keyring.EnvSession})
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Details("Session", fields, session)
}

// newLogoutCmd creates the logout command with the given options.
func newLogoutCmd(opts *loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, opts)
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func runLogout(cmd *cobra.Command, opts *loginOptions) error {
	var backend auth.Authenticator
	if session, err := opts.manager.Cookie(); err == nil {
		backend = opts.client(session)
	} else if !errors.Is(err, api.ErrNotLoggedIn) {
		return err
	}

	ctx, cancel := requestContext(opts.timeout)
	defer cancel()

	if err := opts.manager.Logout(ctx, backend); err != nil {
		return err
	}
	return output.New(cmd.OutOrStdout(), opts.jsonMode).Success("Logged out")
}

func init() {
	opts := &loginOptions{
		manager:        newSessionManager(),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
	}
	loadSettings := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(GetConfigPath())
		if err != nil {
			return err
		}
		opts.baseURL = cfg.ServerURL
		opts.timeout = cfg.RequestTimeout
		opts.jsonMode = GetJSONMode()
		return nil
	}

	loginCmd := newLoginCmd(opts)
	loginCmd.PreRunE = loadSettings
	logoutCmd := newLogoutCmd(opts)
	logoutCmd.PreRunE = loadSettings
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
