package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsUnauthorized reports whether the session was rejected. The backend
// answers unauthenticated requests with a redirect to its login page.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		(e.StatusCode >= 300 && e.StatusCode < 400)
}

// AppError is an {"error": "..."} payload inside a successful response.
type AppError struct {
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// MalformedResponseError reports a response body that does not have the
// shape expected for its endpoint.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CheckResponse returns an *APIError for any non-2xx response, using the
// body's "error" or "message" field as the message when present.
func CheckResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if apiErr.IsUnauthorized() && apiErr.StatusCode != http.StatusUnauthorized {
		apiErr.Message = "session expired, run: fin login"
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err != nil {
		return apiErr
	}
	if errResp.Error != "" {
		apiErr.Message = errResp.Error
	} else if errResp.Message != "" {
		apiErr.Message = errResp.Message
	}
	return apiErr
}
