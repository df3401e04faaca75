package linalg

// flipBoth returns a copy of A with both row and column order reversed:
// out[i][j] == A[p-1-i][q-1-j].
func flipBoth(A *Dense) *Dense {
	p, q := A.Rows(), A.Cols()
	out := Zeros(p, q)
	for i := 0; i < p; i++ {
		for j := 0; j < q; j++ {
			val, _ := A.At(p-1-i, q-1-j)
			_ = out.Set(i, j, val)
		}
	}
	return out
}

// Geqlf computes a QL factorization of an m×n matrix A: A = Q·L with Q
// (m×m) orthogonal and L (m×n) lower trapezoidal (L[i][j] == 0 whenever
// i < j+(m-n)).
//
// QL and QR differ only in which corner of the triangular factor is
// populated, so Geqlf reduces to plain QR on the axis-reversal of A: flip
// both the row and column order, run houseQR, and flip the two results
// back. Reversing both axes of an orthogonal matrix leaves it orthogonal,
// and flipping both axes of an upper-trapezoidal R turns it into a
// lower-trapezoidal L (verified entrywise: R[i][j]==0 for i>j implies the
// flipped entry at (m-1-i, n-1-j) is zero whenever (m-1-i) < (n-1-j)+(m-n)).
func Geqlf(A *Dense) (Q, L *Dense, err error) {
	B := flipBoth(A)
	Q1, R1, err := houseQR(B)
	if err != nil {
		return nil, nil, err
	}
	return flipBoth(Q1), flipBoth(R1), nil
}

// Gelqf computes an LQ factorization of a p×q matrix A: A = L·Q with L
// (p×q) lower trapezoidal and Q (q×q) orthogonal.
//
// LQ is the transpose-dual of QR: Aᵗ = Qᵗ·Rᵗ is literally a QR
// factorization of Aᵗ, so L = Rᵗ and Q = Qᵗᵗ recovers the LQ factors of A.
func Gelqf(A *Dense) (L, Q *Dense, err error) {
	Qt, Rt, err := houseQR(A.Transpose())
	if err != nil {
		return nil, nil, err
	}
	return Rt.Transpose(), Qt.Transpose(), nil
}

// side/trans flags shared by Ormql, Ormlq and Trsm.
type Side int

const (
	Left Side = iota
	Right
)

// Ormql applies the orthogonal factor Q produced by Geqlf to C, on the
// given side, optionally transposed.
func Ormql(side Side, trans bool, Q, C *Dense) (*Dense, error) {
	return applyOrthogonal(side, trans, Q, C)
}

// Ormlq applies the orthogonal factor Q produced by Gelqf to C, on the
// given side, optionally transposed.
func Ormlq(side Side, trans bool, Q, C *Dense) (*Dense, error) {
	return applyOrthogonal(side, trans, Q, C)
}

// applyOrthogonal implements Ormql/Ormlq: since Q is kept explicit (not a
// compressed Householder representation), "applying" Q is just a matrix
// product with the correct operand order and optional transpose.
func applyOrthogonal(side Side, trans bool, Q, C *Dense) (*Dense, error) {
	op := Q
	if trans {
		op = Q.Transpose()
	}
	if side == Left {
		return Gemm(false, false, op, C)
	}
	return Gemm(false, false, C, op)
}
