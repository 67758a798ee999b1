package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/repository"
)

// Error kinds. Every error a service returns to a handler matches exactly one
// of these through errors.Is, or none for internal failures.
var (
	ErrClient              = errors.New("invalid request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrRateLimited         = errors.New("rate limited")
	ErrNotConfigured       = errors.New("not configured")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Error is a classified failure carrying a message safe to show the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// RateLimitError is returned when a client exceeds an endpoint budget.
type RateLimitError struct {
	Endpoint   string
	Limit      int
	RetryAfter time.Duration
}

// Error returns the error message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Too many %s requests, please try again later", e.Endpoint)
}

// Is matches ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// fromRepoError classifies typed store errors and passes anything else
// through unchanged.
func fromRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return wrapError(ErrNotFound, err.Error(), nil)
	case repository.IsConflict(err):
		return wrapError(ErrConflict, err.Error(), nil)
	default:
		return err
	}
}

// fromValidationError turns a model invariant violation into a ClientError.
func fromValidationError(err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return newError(ErrClient, ve.Error())
	}
	return err
}
