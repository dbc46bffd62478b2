package core

import "errors"

var (
	// ErrReferenceOriginNotSet is returned by flat-earth and tangent-plane
	// conversions before SetReferenceOrigin has been called.
	ErrReferenceOriginNotSet = errors.New("reference origin not set")
	// ErrDegenerateOrigin is returned by flat-earth conversions when the
	// reference origin lies within poleTolerance of a pole.
	ErrDegenerateOrigin = errors.New("reference origin is degenerate near a pole")
	// ErrSystemMismatch means a specialised conversion received a coordinate
	// in a system it does not accept.
	ErrSystemMismatch = errors.New("input coordinate system mismatch")
	// ErrUnsupportedConversion means no route exists between two systems.
	ErrUnsupportedConversion = errors.New("unsupported coordinate conversion")
	// ErrAliasedCoordinate means the input and output of ConvertInto are the
	// same value.
	ErrAliasedCoordinate = errors.New("input and output coordinates alias")
)
