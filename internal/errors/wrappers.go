package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/toyz/weave/pkg/pointcut"
)

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, source)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("source", source).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(source, message string) *BaseError {
	return Newf(ConfigurationErrorCode, "configuration error in '%s': %s", source, message).
		WithContext("source", source)
}

// WrapScanError wraps a failure to read Go source
func WrapScanError(path string, cause error) *BaseError {
	return Wrap(ScanErrorCode, "failed to scan", cause).
		WithLocation(SourceLocation{File: path}).
		WithContext("path", path)
}

// WrapPointcutError turns a pointcut or signature failure into a SyntaxError.
// origin names where the expression came from, e.g. "pointcut allOrder". Errors
// that carry no *pointcut.ParseError are wrapped as they are.
func WrapPointcutError(origin string, cause error) *SyntaxError {
	var perr *pointcut.ParseError
	if !stderrors.As(cause, &perr) {
		return &SyntaxError{BaseError: Wrap(SyntaxErrorCode, origin, cause)}
	}

	err := &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, origin, cause),
		Input:     perr.Expression,
		Token:     perr.Offending,
		Position:  perr.Offset,
	}
	err.WithContext("expression", perr.Expression).
		WithContext("offset", perr.Offset).
		WithSuggestion(perr.Hint)
	return err
}

// WrapRegisterError wraps an error with a "failed to register" message
func WrapRegisterError(componentType, name string, cause error) *RegistrationError {
	return &RegistrationError{
		BaseError:     Wrap(RegistrationErrorCode, fmt.Sprintf("failed to register %s '%s'", componentType, name), cause),
		ComponentType: componentType,
		ComponentName: name,
	}
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err WeaveError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
