// internal/infrastructure/cafeapi/errors.go
package cafeapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable wraps transport failures: the API could not be reached or
// answered with something unreadable
var ErrUnavailable = errors.New("cafe API unavailable")

// Error is a non-2xx answer from the café API
type Error struct {
	Op         string
	StatusCode int
	// Message is the server's own error text when it sent one
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.StatusCode))
}

// ServerMessage extracts the message the server sent for err, if any
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether the API rejected the credential
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
