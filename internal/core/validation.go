package core

// validation.go holds the request-level validation error type.
//
// A ValidationError means the request itself is unusable: nothing was read
// from or written to the store. Row-level problems during an import are not
// validation errors; they become skipped outcomes instead.

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a rejected input.
type ValidationError struct {
	Field   string // Parameter or field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidationMessage returns the bare message of a ValidationError, or
// err.Error() for anything else.
func ValidationMessage(err error) string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func newValidationError(field, value, message string) ValidationError {
	return ValidationError{Field: field, Value: value, Message: message}
}

// rowProblem returns why a row cannot be imported, or "" if it can.
func rowProblem(email, studio string) string {
	switch {
	case strings.TrimSpace(email) == "":
		return "required field email is empty"
	case strings.TrimSpace(studio) == "":
		return "required field studio is empty"
	}
	return ""
}
