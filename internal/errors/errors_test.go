package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/weave/pkg/pointcut"
)

func TestBaseError(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(FileSystemErrorCode, "failed to write", cause).
		WithLocation(SourceLocation{File: "weave.yaml", Line: 3}).
		WithContext("path", "weave.yaml").
		WithSuggestion("free some space").
		WithSuggestion("")

	assert.Equal(t, "weave.yaml:3: failed to write: disk full", err.Error())
	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.Equal(t, "FileSystemError", err.ErrorCode().String())
	assert.Equal(t, []string{"free some space"}, err.Suggestions())
	assert.Equal(t, "weave.yaml", err.Context()["path"])
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, New(UnknownErrorCode, "x").Context())
}

func TestSourceLocation(t *testing.T) {
	tests := []struct {
		loc  SourceLocation
		want string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "a.go"}, "a.go"},
		{SourceLocation{File: "a.go", Line: 4}, "a.go:4"},
		{SourceLocation{File: "a.go", Line: 4, Column: 2}, "a.go:4:2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
}

func TestWrapPointcutError(t *testing.T) {
	_, cause := pointcut.Compile("execution(* *.(..))")
	require.Error(t, cause)

	err := WrapPointcutError("pointcut broken", cause)
	assert.Equal(t, SyntaxErrorCode, err.ErrorCode())
	assert.Equal(t, "execution(* *.(..))", err.Input)
	assert.NotEmpty(t, err.Token)
	assert.Contains(t, err.Error(), "pointcut broken: invalid pointcut")

	var perr *pointcut.ParseError
	assert.ErrorAs(t, err, &perr)

	plain := WrapPointcutError("pointcut other", stderrors.New("boom"))
	assert.Empty(t, plain.Input)
	assert.Equal(t, "pointcut other: boom", plain.Error())
}

func TestMultipleErrors(t *testing.T) {
	var multiple *MultipleErrors
	assert.NoError(t, multiple.ErrorOrNil())

	cause := stderrors.New("duplicate")
	AddToMultiple(&multiple, WrapRegisterError("advice", "log", cause))
	assert.Equal(t, "failed to register advice 'log': duplicate", multiple.Error())

	AddToMultiple(&multiple, NewValidationError("order", "an integer", "\"high\""))
	AddToMultiple(&multiple, ConfigurationError("weave.yaml", "no aspects"))

	err := multiple.ErrorOrNil()
	require.Error(t, err)
	assert.Equal(t, 3, multiple.Count())
	assert.True(t, multiple.HasCode(ValidationErrorCode))
	assert.False(t, multiple.HasCode(ScanErrorCode))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "multiple errors (3 total)")
	assert.Contains(t, err.Error(), "2. validation failed for field 'order'")

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "log", regErr.ComponentName)
}
