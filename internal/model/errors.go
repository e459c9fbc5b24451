package model

import "fmt"

// ValidationError marks input that was rejected before any mutation.
// Handlers report these to the triggering connection with the message as-is;
// everything else is surfaced as a generic storage failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
