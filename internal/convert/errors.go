package convert

import "errors"

var (
	// ErrToolNotFound indicates an external converter binary is not on PATH.
	ErrToolNotFound = errors.New("converter binary not found")
	// ErrToolFailed indicates an external converter exited unsuccessfully.
	ErrToolFailed = errors.New("converter execution failed")
	// ErrTimeout indicates a conversion exceeded conversion.timeout.
	ErrTimeout = errors.New("conversion timed out")
	// ErrNoConverter indicates no converter is registered for a pair.
	ErrNoConverter = errors.New("no converter for format pair")
)
