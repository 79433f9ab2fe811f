package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/api"
	"github.com/finassist/fin/internal/auth"
	"github.com/finassist/fin/internal/config"
	"github.com/finassist/fin/internal/keyring"
	"github.com/finassist/fin/internal/logger"
)

// clientOptions holds dependencies shared by the commands that talk to the
// backend. Tests fill it directly; production commands load it in PreRunE.
type clientOptions struct {
	baseURL  string
	session  string
	timeout  time.Duration
	jsonMode bool
	logger   *zap.Logger
}

// client creates an API client for the configured backend.
func (o *clientOptions) client() *api.Client {
	return api.NewClient(o.baseURL, o.session).
		WithTimeout(o.timeout).
		WithLogger(o.log())
}

func (o *clientOptions) log() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

// requestContext returns a context bounded by the request timeout, if any.
func (o *clientOptions) requestContext() (context.Context, context.CancelFunc) {
	return requestContext(o.timeout)
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// load fills the options from the config file and the stored session.
func (o *clientOptions) load(cmd *cobra.Command, args []string) error {
	_, err := o.loadConfig()
	return err
}

func (o *clientOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(GetConfigPath())
	if err != nil {
		return nil, err
	}

	session, err := newSessionManager().Cookie()
	if err != nil {
		return nil, err
	}

	o.baseURL = cfg.ServerURL
	o.session = session
	o.timeout = cfg.RequestTimeout
	o.jsonMode = GetJSONMode()
	o.logger = openLogger(cfg)
	return cfg, nil
}

func newSessionManager() *auth.Manager {
	return auth.NewManager(keyring.NewEnvStore(keyring.NewSystemStore()), auth.SessionCachePath())
}

// openLogger opens the log file named in cfg and closes it when the command
// finishes. A log file that cannot be opened disables logging.
func openLogger(cfg *config.Config) *zap.Logger {
	l, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return zap.NewNop()
	}
	cobra.OnFinalize(func() { _ = l.Close() })
	return l.Logger
}
