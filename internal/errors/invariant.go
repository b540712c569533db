package errors

import (
	"errors"
	"fmt"
)

// InvariantError reports aggregated output that breaks the menu invariants:
// duplicate content-equal dishes or an unsorted category.
type InvariantError struct {
	Category string
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("menu invariant violated in %s: %s", e.Category, e.Reason)
}

// NewInvariantError creates an InvariantError for category.
func NewInvariantError(category, reason string) *InvariantError {
	return &InvariantError{Category: category, Reason: reason}
}

// IsInvariantError reports whether err is an InvariantError (even when wrapped).
func IsInvariantError(err error) bool {
	var invErr *InvariantError
	return errors.As(err, &invErr)
}
