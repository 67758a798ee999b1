package repository

import (
	"errors"

	"gorm.io/gorm"
)

// NotFoundError is an error type for when a resource is not found.
type NotFoundError struct {
	message string
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	return e.message
}

// ConflictError is an error type for writes that collide with an existing
// unique record.
type ConflictError struct {
	message string
}

// Error returns the error message.
func (e ConflictError) Error() string {
	return e.message
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFoundError with message.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError{message: message}
	}
	return err
}

// conflictOr maps unique-constraint violations to a ConflictError with
// message. The connection must be opened with TranslateError enabled.
func conflictOr(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConflictError{message: message}
	}
	return err
}

// NewNotFoundError creates a NotFoundError with message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{message: message}
}

// NewConflictError creates a ConflictError with message.
func NewConflictError(message string) ConflictError {
	return ConflictError{message: message}
}
