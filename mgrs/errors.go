package mgrs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidZone    = errors.New("invalid grid zone")
	ErrInvalidLetters = errors.New("invalid grid letters")
	ErrOddPrecision   = errors.New("easting and northing have different precision")
	ErrOutOfRange     = errors.New("value out of range")
	ErrNoConvergence  = errors.New("polar stereographic inverse did not converge")
)

// ParseError reports why an MGRS string was rejected. It unwraps to one of
// the package sentinels.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mgrs %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(input string, sentinel error, format string, args ...any) error {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...), Err: sentinel}
}
