// Package shared contains common domain types, errors and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	ErrNotFound   = errors.New("entity not found")
	ErrValidation = errors.New("validation error")

	// ErrExternalService marks failures of the optional sinks.
	ErrExternalService = errors.New("external service error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "profile", "notification"
	Op      string // Operation that failed, e.g., "AddSubject"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Typed command errors
// ═══════════════════════════════════════════════════════════════════════════

// ValidationError reports a rejected command argument.
// State is never modified when a command returns it.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports an index outside a collection or an unknown profile.
type NotFoundError struct {
	Collection string
	Index      int
	Size       int
	Key        string
}

// NewIndexNotFoundError creates a NotFoundError for an out-of-bounds index.
func NewIndexNotFoundError(collection string, index, size int) *NotFoundError {
	return &NotFoundError{Collection: collection, Index: index, Size: size}
}

// NewKeyNotFoundError creates a NotFoundError for a missing keyed entity.
func NewKeyNotFoundError(collection, key string) *NotFoundError {
	return &NotFoundError{Collection: collection, Key: key}
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q not found", e.Collection, e.Key)
	}
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.Collection, e.Index, e.Size)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Notification sink errors
var (
	ErrSnapshotCacheFailed = NewDomainError("profile", "CacheSnapshot", ErrExternalService, "failed to cache profile snapshot")
	ErrArchiveFailed       = NewDomainError("notification", "Archive", ErrExternalService, "failed to archive notification")
	ErrRelayFailed         = NewDomainError("notification", "Relay", ErrExternalService, "failed to relay notification")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsExternalService checks if the error came from a sink.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService)
}
