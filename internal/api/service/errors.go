package service

import "strings"

// ValidationError aggregates every input problem found while validating one
// request. Validation scans the whole input before failing, so the client
// sees the complete list of violations rather than only the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

func newValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}
