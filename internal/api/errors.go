package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the backend rejected the caller (401/403).
	ErrUnauthorized = errors.New("backend rejected the request as unauthorized")

	// ErrStatementNotFound indicates the requested statement does not exist.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrDeviceNotRegistered indicates the backend has no public key for
	// this device; envelopes cannot be produced until registration succeeds.
	ErrDeviceNotRegistered = errors.New("device not registered")

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// APIError represents an HTTP error from the statement backend.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrUnauthorized
	case 404:
		return target == ErrStatementNotFound
	case 412:
		return target == ErrDeviceNotRegistered
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
