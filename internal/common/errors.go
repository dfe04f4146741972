// Package common defines shared constants and sentinel errors used across
// client and server layers of foodlog. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrPrecondition is the root of every failure detected before a local
	// write happens. Such failures have no side effects.
	ErrPrecondition = errors.New("precondition failed")

	ErrNotAuthenticated = fmt.Errorf("%w: not authenticated", ErrPrecondition)
	ErrParentNotFound   = fmt.Errorf("%w: referenced entity not found", ErrPrecondition)
	ErrRecordNotFound   = fmt.Errorf("%w: record not found", ErrPrecondition)
	ErrInvalidInput     = fmt.Errorf("%w: invalid input", ErrPrecondition)
	ErrNotSynced        = fmt.Errorf("%w: record is not synced yet", ErrPrecondition)

	// ErrLocalPersistence wraps failures of the durable local store. It is the
	// only error that aborts a mutation once the local write was attempted.
	ErrLocalPersistence = errors.New("local persistence error")
)

// LocalPersistence wraps err so that errors.Is(err, ErrLocalPersistence) holds.
func LocalPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLocalPersistence, op, err)
}

// ErrForbidden is returned when a user addresses something owned by someone
// else.
var ErrForbidden = errors.New("forbidden")
