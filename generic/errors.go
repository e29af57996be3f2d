/*
errors.go - Centralized error types for the record engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and the API layer map these to their own surfaces.

ERROR CATEGORIES:
  1. Validation errors - payload fails family required-field/format checks
  2. Not-found errors  - operation targets a nonexistent record
  3. Conflict errors   - optimistic-concurrency version mismatch

USAGE:
  Callers branch with errors.Is / the helper predicates:

    if generic.IsConflict(err) {
        // re-fetch and retry with the fresh version
    }

SEE ALSO:
  - store.go: Produces these errors on the write path
  - api/handlers.go: Maps them to HTTP 400/404/409
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a payload fails family-specific
	// required-field or format checks. Recoverable by correcting input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation targets a nonexistent record.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when Update detects a version mismatch.
	// Callers must re-fetch and retry; the engine never retries itself.
	ErrConflict = errors.New("version conflict")

	// ErrUnknownKind is returned when no registered family matches a Kind.
	ErrUnknownKind = errors.New("unknown record kind")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError details which field failed validation and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies the missing record.
type NotFoundError struct {
	ID RecordID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports the version the caller presented against the
// version currently stored.
type ConflictError struct {
	ID       RecordID
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, stored %d",
		e.ID, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid client input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict returns true if the error might succeed after re-fetch and retry.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
