package linalg

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// denseErrorf wraps an error with the offending method and coordinates.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix of float64 values: a flat backing slice of
// length r*c, indexed as data[i*c+j].
type Dense struct {
	r, c int
	data []float64
}

// NewDense allocates an r×c zero matrix. r and c must be > 0; use Zeros for
// the (legal) zero-sized case that arises at leaves with no off-diagonal.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// Zeros allocates an r×c matrix, allowing rows or cols to be 0 (the empty
// generator case in §4.5.1's edge cases).
func Zeros(rows, cols int) *Dense {
	if rows < 0 || cols < 0 {
		rows, cols = 0, 0
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Dense {
	d := Zeros(n, n)
	for i := 0; i < n; i++ {
		d.data[i*n+i] = 1
	}
	return d
}

// NewDenseFromRowMajor wraps a flat row-major slice of length rows*cols. The
// slice is copied; the caller's backing array is never aliased.
func NewDenseFromRowMajor(rows, cols int, data []float64) (*Dense, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, ErrInvalidDimensions
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Dense{r: rows, c: cols, data: buf}, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrIndexOutOfBounds)
	}
	return row*m.c + col, nil
}

// At retrieves the element at (row, col). Returns ErrIndexOutOfBounds on an
// invalid index rather than panicking.
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns v at (row, col). Returns ErrIndexOutOfBounds on an invalid
// index rather than panicking.
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// Clone returns a deep, independent copy.
func (m *Dense) Clone() *Dense {
	buf := make([]float64, len(m.data))
	copy(buf, m.data)
	return &Dense{r: m.r, c: m.c, data: buf}
}

// Sub extracts an independent copy of the r0:r0+h, c0:c0+w block. Operates
// directly on the flat backing slices; indices are trusted to be in range.
func (m *Dense) Sub(r0, c0, h, w int) *Dense {
	out := Zeros(h, w)
	for i := 0; i < h; i++ {
		srcOff := (r0+i)*m.c + c0
		dstOff := i * w
		copy(out.data[dstOff:dstOff+w], m.data[srcOff:srcOff+w])
	}
	return out
}

// SetSub writes src into this matrix starting at (r0, c0).
func (m *Dense) SetSub(r0, c0 int, src *Dense) {
	for i := 0; i < src.r; i++ {
		srcOff := i * src.c
		dstOff := (r0+i)*m.c + c0
		copy(m.data[dstOff:dstOff+src.c], src.data[srcOff:srcOff+src.c])
	}
}

// Rows range [r0, r0+h) as an independent copy with all original columns.
func (m *Dense) RowRange(r0, h int) *Dense { return m.Sub(r0, 0, h, m.c) }

// Cols range [c0, c0+w) as an independent copy with all original rows.
func (m *Dense) ColRange(c0, w int) *Dense { return m.Sub(0, c0, m.r, w) }

// Transpose returns a new matrix with rows and columns swapped.
func (m *Dense) Transpose() *Dense {
	out := Zeros(m.c, m.r)
	for i := 0; i < m.r; i++ {
		for j := 0; j < m.c; j++ {
			out.data[j*out.c+i] = m.data[i*m.c+j]
		}
	}
	return out
}

// Scale multiplies every entry by alpha, in place.
func (m *Dense) Scale(alpha float64) {
	floats.Scale(alpha, m.data)
}

// Add returns m + other; shapes must match.
func (m *Dense) Add(other *Dense) (*Dense, error) {
	if m.r != other.r || m.c != other.c {
		return nil, ErrDimensionMismatch
	}
	out := m.Clone()
	floats.Add(out.data, other.data)
	return out, nil
}

// Sub2 returns m - other; shapes must match. Named Sub2 to avoid colliding
// with the Sub submatrix-extraction method above.
func (m *Dense) Sub2(other *Dense) (*Dense, error) {
	if m.r != other.r || m.c != other.c {
		return nil, ErrDimensionMismatch
	}
	out := m.Clone()
	floats.Sub(out.data, other.data)
	return out, nil
}

// HasNaNInf reports whether any entry is NaN or infinite.
func (m *Dense) HasNaNInf() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// FrobeniusNorm returns the Frobenius norm of the matrix.
func (m *Dense) FrobeniusNorm() float64 {
	return floats.Norm(m.data, 2)
}

// VStack stacks a on top of b; they must have the same number of columns.
func VStack(a, b *Dense) (*Dense, error) {
	if a.c != b.c {
		return nil, ErrDimensionMismatch
	}
	out := Zeros(a.r+b.r, a.c)
	out.SetSub(0, 0, a)
	out.SetSub(a.r, 0, b)
	return out, nil
}

// HStack places a to the left of b; they must have the same number of rows.
func HStack(a, b *Dense) (*Dense, error) {
	if a.r != b.r {
		return nil, ErrDimensionMismatch
	}
	out := Zeros(a.r, a.c+b.c)
	out.SetSub(0, 0, a)
	out.SetSub(0, a.c, b)
	return out, nil
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteString("[")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.c+j])
		}
		b.WriteString("]\n")
	}
	return b.String()
}
