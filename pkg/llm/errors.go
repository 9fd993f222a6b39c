package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrRateLimited indicates the provider rejected the call with HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrQuotaExhausted indicates the provider rejected the call with HTTP 402:
	// the account is out of credits.
	ErrQuotaExhausted = errors.New("quota exhausted")

	// ErrNoCredential indicates neither a direct provider key nor a gateway
	// key is configured. It is raised before any network call.
	ErrNoCredential = errors.New("no AI provider credential configured")
)

// StatusError is a non-success HTTP response from a provider or from the
// streaming endpoint. It unwraps to ErrRateLimited or ErrQuotaExhausted for
// 429 and 402 so callers can branch with errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
}

// NewStatusError builds a StatusError from a response status and body.
// The message is taken from a {"error": "..."} or {"error": {"message": "..."}}
// body when present, otherwise from the trimmed body text.
func NewStatusError(statusCode int, body []byte) *StatusError {
	return &StatusError{
		StatusCode: statusCode,
		Message:    errorMessage(body),
	}
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExhausted
	default:
		return nil
	}
}

// HTTPStatus maps an error to the status code the HTTP surfaces answer with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrQuotaExhausted):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the text shown to an end user for a failed request.
func UserMessage(err error) string {
	var statusErr *StatusError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	case errors.Is(err, ErrQuotaExhausted):
		return "The AI service is currently unavailable. Please try again later."
	case errors.Is(err, ErrNoCredential):
		return "The AI service is not configured."
	case errors.As(err, &statusErr) && statusErr.Message != "":
		return statusErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}

func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var flat ErrorResponse
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	return text
}
