package snyk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrNoToken = errors.New("snyk: no API token configured")

	// ErrEmptyIterator is returned by First when an iterator yields no items.
	ErrEmptyIterator = errors.New("snyk: iterator is empty")
)

// APIError represents a general Snyk API error.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("snyk: API error %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("snyk: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError indicates the requested resource was not found, either as an
// upstream 404 or as a lookup that matched zero items in a successfully
// fetched collection.
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("snyk: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	if e.ResourceType != "" {
		return fmt.Sprintf("snyk: %s not found", e.ResourceType)
	}
	return fmt.Sprintf("snyk: resource not found: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ValidationError indicates malformed caller input, detected before any
// request is issued, or invalid request data rejected upstream (400).
type ValidationError struct {
	APIError
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("snyk: validation error: %s (fields: %v)", e.Message, e.Fields)
	}
	return fmt.Sprintf("snyk: validation error: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotImplementedError indicates a capability deliberately unsupported by a
// resource variant, such as Filter on a settings-style collection or Get on
// a singleton. It is raised explicitly so callers relying on the capability
// fail loudly instead of getting a silent no-op.
type NotImplementedError struct {
	ResourceType string
	Capability   string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("snyk: %s does not support %s", e.ResourceType, e.Capability)
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("snyk: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "snyk: rate limit exceeded"
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx) after the transport's
// retry budget is exhausted.
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("snyk: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(statusCode int, body []byte, headers http.Header) error {
	base := APIError{
		StatusCode: statusCode,
	}

	// Try to parse structured JSON error response
	if err := json.Unmarshal(body, &base); err != nil || base.Message == "" {
		// Fallback to raw body if not valid JSON or no message field
		if base.Message == "" {
			base.Message = string(body)
		}
	}
	// The HTTP status is authoritative; a body-supplied status field must
	// not override it.
	base.StatusCode = statusCode

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
