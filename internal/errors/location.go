package errors

import (
	"errors"
	"fmt"
)

// LocationError is a failure scoped to a single location's fetch or extraction.
// It never aborts sibling work; the location is skipped for the run.
type LocationError struct {
	Location string
	Op       string
	Err      error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// NewLocationError wraps err as a failure of op for the given location.
func NewLocationError(location, op string, err error) *LocationError {
	return &LocationError{Location: location, Op: op, Err: err}
}

// IsLocationError reports whether err is a LocationError (even when wrapped).
func IsLocationError(err error) bool {
	var locErr *LocationError
	return errors.As(err, &locErr)
}
