// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNoEntityFound indicates neither a professor nor usable follow-up
	// context could be determined from the message.
	ErrNoEntityFound = errors.New("no entity found in message")

	// ErrAmbiguousFollowUp indicates a follow-up phrase was detected but no
	// prior conversational context exists to resolve it.
	ErrAmbiguousFollowUp = errors.New("ambiguous follow-up request")

	// ErrNarrativeUnavailable indicates every narrative provider errored.
	// Recovered locally by the deterministic fallback.
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IngestError represents grade-report ingest failures with source context.
type IngestError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *IngestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ingest error (source=%s, status=%d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ingest error (source=%s): %v", e.Source, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// NewIngestError creates a new ingest error.
func NewIngestError(source string, statusCode int, err error) *IngestError {
	return &IngestError{
		Source:     source,
		StatusCode: statusCode,
		Err:        err,
	}
}
