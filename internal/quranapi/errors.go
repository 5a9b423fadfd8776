package quranapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrRateLimited indicates the API rate limit was exceeded (HTTP 429)
var ErrRateLimited = errors.New("quran API rate limit exceeded")

// ServerError represents a 5xx error from the Quran API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("quran API server error: HTTP %d", e.StatusCode)
}

// FetchError records a fetch failure together with the verse key it was for.
type FetchError struct {
	Key VerseKey
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an error is worth retrying: rate limits,
// server-side 5xx responses, and connection-level failures. Anything else
// (bad request, not found, decode errors) surfaces immediately.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	// Remaining transport-level errors (connect/read) are transient.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// StatusError represents a non-retryable unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
