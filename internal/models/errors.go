package models

import "fmt"

// ValidationError reports a query that references unknown columns or
// carries a malformed spec for its declared kind. It is raised during
// compilation, before any row is read.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TypeError reports input that cannot be coerced to the type an
// operation requires, e.g. an unparseable trend date field.
type TypeError struct {
	Field   string
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error on %q: %s", e.Field, e.Message)
}

func NewTypeError(field, format string, args ...any) *TypeError {
	return &TypeError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports invalid analyzer input, such as a dataset
// count outside the supported range.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}
