package model

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed or missing input. It is always
// surfaced to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a named input field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AdmissionDeniedError reports an exhausted quota. RetryAfter is the time
// until the daily window rotates at the next UTC midnight.
type AdmissionDeniedError struct {
	TenantID   string
	RetryAfter time.Duration
}

func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for tenant %s, retry after %s", e.TenantID, e.RetryAfter.Round(time.Second))
}

// AsAdmissionDenied unwraps err to an AdmissionDeniedError if present.
func AsAdmissionDenied(err error) (*AdmissionDeniedError, bool) {
	var ae *AdmissionDeniedError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// EvidenceCollectionError reports a failed evidence fetch for one company.
// In batch mode it is recovered by omitting the company; in single-company
// mode it surfaces as the request failure.
type EvidenceCollectionError struct {
	Company string
	Err     error
}

func (e *EvidenceCollectionError) Error() string {
	return fmt.Sprintf("evidence collection failed for %s: %v", e.Company, e.Err)
}

func (e *EvidenceCollectionError) Unwrap() error { return e.Err }

// CapabilityError reports a failed or timed-out call to the optional
// analysis capability. It is always recovered by the deterministic stage
// fallback and never surfaces past the pipeline.
type CapabilityError struct {
	Stage string
	Err   error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability failed in stage %s: %v", e.Stage, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// BackendError reports an unreachable counter or cache backend. Callers
// recover by failing open (admission) or treating it as a miss (cache);
// it is logged, never surfaced.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
