package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finassist/fin/internal/keyring"
)

// SessionCookie is the name of the cookie that authenticates dashboard requests.
const SessionCookie = "session"

// ErrNotLoggedIn is returned when no session cookie is available.
var ErrNotLoggedIn = errors.New("not logged in. Run: fin login\nOr set FIN_SESSION environment variable")

// Client handles HTTP requests to the financial assistant backend.
type Client struct {
	BaseURL string

	mu      sync.Mutex
	session string

	rest    *resty.Client
	logger  *zap.Logger
	metrics *RequestMetrics
}

// NewClient creates a new API client with the given base URL and session cookie.
func NewClient(baseURL, session string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	logger := zap.NewNop()

	rest := resty.New().
		SetBaseURL(baseURL).
		SetLogger(logger.Sugar()).
		SetCookieJar(nil).
		// Unauthenticated requests are redirected to the login page; surface
		// the redirect instead of following it into an HTML body.
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Client{
		BaseURL: baseURL,
		session: session,
		rest:    rest,
		logger:  logger,
	}
}

// NewClientWithSession creates a client using the session cookie stored in the keyring.
func NewClientWithSession(store keyring.Store, baseURL string) (*Client, error) {
	session, err := store.Get(keyring.KeySession)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}
	return NewClient(baseURL, session), nil
}

// WithTimeout sets the per-request timeout. Zero means no timeout, which is
// the default: assistant answers can take minutes.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d >= 0 {
		c.rest.SetTimeout(d)
	}
	return c
}

// WithLogger routes request logs, including resty's own, to logger.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
		c.rest.SetLogger(logger.Sugar())
	}
	return c
}

// WithMetrics records request counts and latencies.
func (c *Client) WithMetrics(m *RequestMetrics) *Client {
	c.metrics = m
	return c
}

// HTTPClient exposes the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.rest.GetClient()
}

// Session returns the current session cookie value.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(v string) {
	c.mu.Lock()
	c.session = v
	c.mu.Unlock()
}

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*resty.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// GetWithParams performs a GET request to the specified path with query parameters.
func (c *Client) GetWithParams(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post performs a POST request to the specified path with a JSON body.
// A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body any) (*resty.Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// PostForm performs a form-encoded POST request.
func (c *Client) PostForm(ctx context.Context, path string, form map[string]string) (*resty.Response, error) {
	return c.execute(ctx, http.MethodPost, path, func(r *resty.Request) {
		r.SetFormData(form)
	})
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body any) (*resty.Response, error) {
	return c.execute(ctx, method, path, func(r *resty.Request) {
		if len(params) > 0 {
			r.SetQueryParams(params)
		}
		if body != nil {
			r.SetHeader("Content-Type", "application/json")
			r.SetBody(body)
		}
	})
}

// execute sends a single request with the session cookie and a request id.
// Any refreshed session cookie in the response replaces the current one.
func (c *Client) execute(ctx context.Context, method, path string, build func(*resty.Request)) (*resty.Response, error) {
	requestID := uuid.NewString()
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", requestID)
	if session := c.Session(); session != "" {
		req.SetCookie(&http.Cookie{Name: SessionCookie, Value: session})
	}
	build(req)

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.observe(path, "error", elapsed)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.metrics.observe(path, fmt.Sprint(resp.StatusCode()), elapsed)
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", elapsed))

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookie && cookie.Value != "" {
			c.setSession(cookie.Value)
		}
	}
	return resp, nil
}
