package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidLogin is returned when the backend rejects a username/password pair.
var ErrInvalidLogin = errors.New("invalid username or password")

// Login submits the login form and returns the session cookie issued on
// success. The backend answers a successful login with a redirect to its
// dashboard; anything else is a rejection.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	c.setSession("")

	resp, err := c.PostForm(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}

	status := resp.StatusCode()
	if status >= http.StatusInternalServerError {
		return "", &APIError{StatusCode: status}
	}
	if status < 300 || status >= 400 || !strings.HasSuffix(resp.Header().Get("Location"), "/dashboard") {
		return "", ErrInvalidLogin
	}

	session := c.Session()
	if session == "" {
		return "", &MalformedResponseError{Endpoint: "/login", Reason: "no session cookie in response"}
	}
	return session, nil
}

// Logout ends the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Get(ctx, "/logout")
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	// The backend redirects to its landing page either way.
	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode()}
	}
	c.setSession("")
	return nil
}
