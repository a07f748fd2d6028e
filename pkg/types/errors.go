package types

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrProgressNotFound = errors.New("progress not found")

	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError marks a rejected request input. It maps to a 400 at the
// HTTP boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
