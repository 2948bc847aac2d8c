package errors

import "fmt"

// SyntaxError reports a malformed pointcut, signature or condition
type SyntaxError struct {
	*BaseError
	Input    string // the text that failed to parse
	Token    string // the offending token
	Position int    // byte offset of the token in Input
}

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string // field that failed validation
	Expected string // what was expected
	Actual   string // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for field '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// RegistrationError reports a failed advice or pointcut registration
type RegistrationError struct {
	*BaseError
	ComponentType string // "advice", "pointcut", "aspect"
	ComponentName string
}
