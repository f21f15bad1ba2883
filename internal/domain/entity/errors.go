package entity

import "errors"

// Domain errors. Callers match them with errors.Is; the wrapped message names the
// offending input.
var (
	// ErrMalformedAmount is returned when a decimal string cannot be parsed at the
	// requested scale.
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrDivisionByZero is returned by scalar division with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidTokenConfiguration is returned when a token's kind disagrees with its
	// contract address or items.
	ErrInvalidTokenConfiguration = errors.New("invalid token configuration")
	// ErrInvalidNetworkConfig is returned for a structurally invalid network config.
	ErrInvalidNetworkConfig = errors.New("invalid network config")
)
