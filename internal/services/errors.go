package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned for missing, unknown or inactive tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

type FieldError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// ValidationError is a client error that names the offending fields.
type ValidationError struct {
	Message string
	Errors  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Detail)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func NewValidationError(field, detail string) *ValidationError {
	return &ValidationError{
		Message: "Invalid request.",
		Errors:  []FieldError{{Field: field, Detail: detail}},
	}
}
