package logdata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is wrapped by every error caused by a bad value passed to a mutating call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is wrapped by every error caused by calling an operation at the wrong time.
	ErrInvalidState = errors.New("invalid state")
)

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidState returns an error wrapping ErrInvalidState.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
