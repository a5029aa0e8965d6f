package settings

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a user has not stored settings yet.
	ErrNotFound = errors.New("user settings not found")

	// ErrInvalidSettings is the root of every ValidationError.
	ErrInvalidSettings = errors.New("invalid user settings")

	// ErrUnknownTimeZone is returned when a time zone cannot be loaded.
	ErrUnknownTimeZone = errors.New("unknown time zone")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FieldError describes one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid user settings: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSettings
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
