package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLength = errors.New("protocol: invalid length")
	ErrUnknownByte   = errors.New("protocol: unknown discriminant byte")
	ErrTruncated     = errors.New("protocol: truncated data")
)

// LengthError reports a variable-length input whose size does not match the
// fixed size of the format it was decoded as.
type LengthError struct {
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("protocol: invalid length: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength
}

// UnknownByteError reports a discriminant outside a format's variant set.
type UnknownByteError struct {
	Value byte
}

func (e *UnknownByteError) Error() string {
	return fmt.Sprintf("protocol: unknown discriminant byte: 0x%02x", e.Value)
}

func (e *UnknownByteError) Is(target error) bool {
	return target == ErrUnknownByte
}

// CheckLen validates b against the expected fixed size before any byte is read.
func CheckLen(b []byte, expected int) error {
	if len(b) != expected {
		return &LengthError{Expected: expected, Actual: len(b)}
	}
	return nil
}

// UnknownByte builds the discriminant error for value.
func UnknownByte(value byte) error {
	return &UnknownByteError{Value: value}
}
