package weave

import "errors"

var (
	// ErrNoSuchMethod is returned by Invoke for a method the target does not have
	ErrNoSuchMethod = errors.New("no such method")

	// ErrBadArguments is returned by Invoke when the arguments do not fit the
	// method's parameters
	ErrBadArguments = errors.New("bad arguments")

	// ErrResultType is returned by Call when the result has an unexpected type
	ErrResultType = errors.New("unexpected result type")
)
