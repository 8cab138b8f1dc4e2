package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// snippetLimit caps how much response body travels inside errors.
const snippetLimit = 300

func snippet(body []byte) string {
	if len(body) > snippetLimit {
		return string(body[:snippetLimit])
	}
	return string(body)
}

// StatusError is returned for any non-2xx response. Snippet carries the
// start of the response body so callers can classify upstream failures.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Snippet)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// TimeoutError is returned when a request exceeds the client timeout or
// the context deadline.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("request timed out: %v", e.Err) }

func (e *TimeoutError) Unwrap() error { return e.Err }

// RetryExhaustedError wraps the last error once the retry budget is spent.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Retryable reports whether an error belongs to the transient class:
// timeouts and throttling/server statuses. Everything else fails fast.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var te *TimeoutError
	return errors.As(err, &te)
}
