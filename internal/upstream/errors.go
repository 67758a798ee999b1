package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by StatusError.Is.
var (
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
	ErrNotFound      = errors.New("upstream record not found")
)

// StatusError is returned when a provider answers with a non-200 status.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Is lets errors.Is match ErrQuotaExceeded for 402 and ErrNotFound for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.StatusCode == http.StatusPaymentRequired
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
