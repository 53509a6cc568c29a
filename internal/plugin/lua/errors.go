package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotAFunction is returned when the named global is missing or
	// not callable.
	ErrNotAFunction = errors.New("not a lua function")
)
