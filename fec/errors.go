package fec

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDescription is returned for unparsable alist text or puncturing specs.
	ErrMalformedDescription = errors.New("malformed description")
	// ErrUnknownImplementation is returned for an unrecognized decoder variant name.
	ErrUnknownImplementation = errors.New("unknown decoder implementation")
	// ErrSingularMatrix is returned when the parity-check rows are not independent.
	ErrSingularMatrix = errors.New("parity-check matrix is singular")
	// ErrLengthMismatch is returned when a buffer length disagrees with the code dimensions.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrDecodeFailure is returned when the iteration budget is exhausted without a codeword.
	ErrDecodeFailure = errors.New("decode failure")
)

// DescriptionError reports a malformed construct in an alist or puncturing description.
// Line is 1-based; 0 means the error is not tied to a line.
type DescriptionError struct {
	Line int
	Msg  string
}

func (e *DescriptionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrMalformedDescription, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedDescription, e.Msg)
}

func (e *DescriptionError) Is(target error) bool { return target == ErrMalformedDescription }

func descErrorf(line int, format string, args ...any) error {
	return &DescriptionError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func lengthErrorf(what string, got, want int) error {
	return fmt.Errorf("%s: got %d, want %d: %w", what, got, want, ErrLengthMismatch)
}
