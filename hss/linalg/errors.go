package linalg

import "errors"

// Sentinel errors for the linalg package. Algorithms return these directly
// or wrap them with fmt.Errorf("%s: %w", ...); callers match with errors.Is.

var (
	// ErrInvalidDimensions is returned by NewDense when requested matrix
	// dimensions are not positive, and by NewDenseFromRowMajor when a
	// dimension is negative or the data length is not rows*cols.
	ErrInvalidDimensions = errors.New("linalg: dimensions must be > 0")

	// ErrIndexOutOfBounds indicates a row or column index outside the valid
	// range for At/Set.
	ErrIndexOutOfBounds = errors.New("linalg: index out of bounds")

	// ErrDimensionMismatch indicates incompatible operand shapes, e.g. Gemm
	// where A.Cols() != B.Rows().
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrNaNInf signals a NaN or infinite entry where finite values are
	// required.
	ErrNaNInf = errors.New("linalg: NaN or Inf encountered")

	// ErrInvalidArgument flags a malformed caller input that is not a shape
	// problem: a negative tolerance, or an operand containing NaN/Inf.
	ErrInvalidArgument = errors.New("linalg: invalid argument")

	// ErrSingular is returned when an exactly zero pivot is encountered
	// during LU decomposition or triangular solve; small nonzero pivots are
	// divided by as they are.
	//
	// Pivoting is intentionally omitted from gesv/trsm: HSS diagonal blocks
	// at the root are expected to already be well-conditioned by the solve
	// the caller constructed, and a non-pivoting scheme keeps results
	// deterministic and easy to reason about. A singular pivot is treated
	// as a genuine numerical failure rather than something to paper over.
	ErrSingular = errors.New("linalg: singular matrix")
)
