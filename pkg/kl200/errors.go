package kl200

import (
	"errors"
	"fmt"
)

var (
	// ErrShortRead indicates fewer than FrameSize bytes were received.
	ErrShortRead = errors.New("short read")
	// ErrMalformed indicates the frame does not match the expected layout,
	// e.g. the command id echoed is not the one requested.
	ErrMalformed = errors.New("malformed frame")
	// ErrChecksumMismatch indicates the checksum byte doesn't match.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrParameterOutOfRange indicates a command argument is rejected
	// before anything is sent.
	ErrParameterOutOfRange = errors.New("parameter out of range")
)

// ChecksumError carries both checksums of a rejected frame.
type ChecksumError struct {
	Expected byte
	Actual   byte
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expect %02x, got %02x", e.Expected, e.Actual)
}

// Unwrap supports errors.Is(err, ErrChecksumMismatch).
func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// RangeError wraps ErrParameterOutOfRange for a specific command.
type RangeError struct {
	Command CommandID
	Value   int64
	Min     uint32
	Max     uint32
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: parameter %d out of range [%d, %d]", e.Command, e.Value, e.Min, e.Max)
}

// Unwrap supports errors.Is(err, ErrParameterOutOfRange).
func (e *RangeError) Unwrap() error {
	return ErrParameterOutOfRange
}
