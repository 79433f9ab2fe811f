package api

import (
	"context"
	"fmt"
)

// SendChat posts a user message to the assistant.
func (c *Client) SendChat(ctx context.Context, message string) (*ChatResponse, error) {
	resp, err := c.Post(ctx, "/chat", ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return decode[ChatResponse](resp, "/chat")
}

// InitChat asks the assistant for its greeting.
func (c *Client) InitChat(ctx context.Context) (*ChatResponse, error) {
	return c.SendChat(ctx, InitMessage)
}

// ClearChat resets the assistant's conversation history.
func (c *Client) ClearChat(ctx context.Context) error {
	resp, err := c.Post(ctx, "/chat/clear", nil)
	if err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	_, err = decode[StatusResponse](resp, "/chat/clear")
	return err
}

// RequestPerformanceReport asks for the portfolio performance report. The
// answer has the same shape as a chat response.
func (c *Client) RequestPerformanceReport(ctx context.Context) (*ChatResponse, error) {
	resp, err := c.Post(ctx, "/api/portfolio/performance", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to request performance report: %w", err)
	}
	return decode[ChatResponse](resp, "/api/portfolio/performance")
}

// StoreCredentials saves broker credentials on the backend.
func (c *Client) StoreCredentials(ctx context.Context, apiKey, secretKey string) (*CredentialsResponse, error) {
	resp, err := c.Post(ctx, "/api/store_alpaca_credentials", CredentialsRequest{
		APIKey:    apiKey,
		SecretKey: secretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}
	return decode[CredentialsResponse](resp, "/api/store_alpaca_credentials")
}
