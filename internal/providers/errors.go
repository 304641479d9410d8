package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrDisabled is returned by the Disabled completer.
var ErrDisabled = errors.New("ai provider disabled")

// TimeoutError reports a provider call that exceeded its time budget.
// Timeouts are transient and safe to retry.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return "provider timeout: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }

// RateLimitError reports a provider rejecting the call for quota reasons.
// Rate limits are transient and safe to retry after backoff.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	return "rate limited"
}

// ProviderError is any other provider failure: authentication, bad
// request, server error. These are not retried.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// IsTimeout checks if an error is a provider timeout.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsRateLimit checks if an error is a rate-limit rejection.
func IsRateLimit(err error) bool {
	var r *RateLimitError
	return errors.As(err, &r)
}

// IsRetryable reports whether an error is transient. Only timeouts and
// rate limits qualify; everything else is permanent for the attempt.
func IsRetryable(err error) bool {
	return IsTimeout(err) || IsRateLimit(err)
}

// classifyTransport maps an http.Client error onto the provider error
// taxonomy. Cancellation passes through untouched so callers can tell a
// cancelled run from a slow provider.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &TimeoutError{Err: err}
	}
	return fmt.Errorf("sending request: %w", err)
}

// classifyStatus maps a non-200 response onto the provider error
// taxonomy.
func classifyStatus(status int, body []byte) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: strings.TrimSpace(string(body))}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &TimeoutError{Err: fmt.Errorf("status %d", status)}
	default:
		return &ProviderError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
}
