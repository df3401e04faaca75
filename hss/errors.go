package hss

import "errors"

// Sentinel errors for the hss package. Callers match with errors.Is; inner
// frames may wrap with fmt.Errorf("...: %w", ErrX) for context, but never
// swap the sentinel for a custom type.

var (
	// ErrDimensionMismatch indicates input shapes that contradict the
	// cluster trees, each other, or the square-solve requirement.
	ErrDimensionMismatch = errors.New("hss: dimension mismatch")

	// ErrInvalidArgument flags a malformed configuration or range: a
	// negative tolerance, leafsize <= 0, or an empty index range.
	ErrInvalidArgument = errors.New("hss: invalid argument")

	// ErrNotImplemented marks the known sharp edge of the ULV divide path
	// where one child's block is fully eliminated while its sibling's is
	// not; the solve surfaces it rather than guessing at semantics.
	ErrNotImplemented = errors.New("hss: not implemented")

	// ErrNumericalFailure is returned when the dense solve at the root of
	// the factorization tree reports a singular matrix.
	ErrNumericalFailure = errors.New("hss: numerical failure")
)
