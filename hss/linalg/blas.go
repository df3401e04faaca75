package linalg

import "gonum.org/v1/gonum/floats"

// Gemm computes C = op(A)·op(B), where op is Transpose when the
// corresponding flag is set.
func Gemm(transA, transB bool, A, B *Dense) (*Dense, error) {
	if transA {
		A = A.Transpose()
	}
	if transB {
		B = B.Transpose()
	}
	if A.Cols() != B.Rows() {
		return nil, ErrDimensionMismatch
	}

	m, k, n := A.Rows(), A.Cols(), B.Cols()
	C := Zeros(m, n)
	for i := 0; i < m; i++ {
		ci := C.data[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aip := A.data[i*k+p]
			if aip == 0 {
				continue
			}
			floats.AddScaled(ci, aip, B.data[p*n:(p+1)*n])
		}
	}
	return C, nil
}

// Trsm solves a triangular system in place of a general one:
//   - side == Left:  op(T)·X = alpha·B, X has the shape of B.
//   - side == Right: X·op(T) = alpha·B, X has the shape of B.
//
// T must be square. unitDiag treats T's diagonal as implicitly 1 (skipping
// the division); otherwise a zero diagonal entry is ErrSingular.
func Trsm(side Side, upper, trans, unitDiag bool, alpha float64, T, B *Dense) (*Dense, error) {
	if T.Rows() != T.Cols() {
		return nil, ErrDimensionMismatch
	}
	op := T
	if trans {
		op = T.Transpose()
		upper = !upper
	}
	n := op.Rows()

	if side == Left {
		if n != B.Rows() {
			return nil, ErrDimensionMismatch
		}
		X := B.Clone()
		X.Scale(alpha)
		if upper {
			return trsmLeftUpper(op, X, unitDiag)
		}
		return trsmLeftLower(op, X, unitDiag)
	}

	// side == Right: solve X·op(T) = alpha·B by solving op(T)ᵗ·Xᵗ = alpha·Bᵗ
	// on the left and transposing back.
	if n != B.Cols() {
		return nil, ErrDimensionMismatch
	}
	Bt := B.Transpose()
	Bt.Scale(alpha)
	var (
		Xt  *Dense
		err error
	)
	if upper {
		Xt, err = trsmLeftLower(op.Transpose(), Bt, unitDiag)
	} else {
		Xt, err = trsmLeftUpper(op.Transpose(), Bt, unitDiag)
	}
	if err != nil {
		return nil, err
	}
	return Xt.Transpose(), nil
}

// trsmLeftLower solves T·X = B in place (X overwrites B) for lower
// triangular T via forward substitution, one column of B/X at a time.
func trsmLeftLower(T, X *Dense, unitDiag bool) (*Dense, error) {
	n := T.Rows()
	cols := X.Cols()
	for col := 0; col < cols; col++ {
		for i := 0; i < n; i++ {
			var sum float64
			for k := 0; k < i; k++ {
				tik, _ := T.At(i, k)
				xk, _ := X.At(k, col)
				sum += tik * xk
			}
			bi, _ := X.At(i, col)
			rhs := bi - sum
			if unitDiag {
				_ = X.Set(i, col, rhs)
				continue
			}
			pivot, _ := T.At(i, i)
			if pivot == 0 {
				return nil, ErrSingular
			}
			_ = X.Set(i, col, rhs/pivot)
		}
	}
	return X, nil
}

// trsmLeftUpper solves T·X = B in place for upper triangular T via back
// substitution.
func trsmLeftUpper(T, X *Dense, unitDiag bool) (*Dense, error) {
	n := T.Rows()
	cols := X.Cols()
	for col := 0; col < cols; col++ {
		for i := n - 1; i >= 0; i-- {
			var sum float64
			for k := i + 1; k < n; k++ {
				tik, _ := T.At(i, k)
				xk, _ := X.At(k, col)
				sum += tik * xk
			}
			bi, _ := X.At(i, col)
			rhs := bi - sum
			if unitDiag {
				_ = X.Set(i, col, rhs)
				continue
			}
			pivot, _ := T.At(i, i)
			if pivot == 0 {
				return nil, ErrSingular
			}
			_ = X.Set(i, col, rhs/pivot)
		}
	}
	return X, nil
}

// Gesv solves A·X = B for a square A via Doolittle LU decomposition (no
// pivoting) followed by forward and backward substitution, one column of
// B at a time.
//
// Pivoting is intentionally omitted, matching the deliberate tradeoff
// ErrSingular documents: a zero pivot is surfaced as a genuine numerical
// failure rather than patched over by row interchange, keeping the solve
// deterministic. Callers needing a pivoted solve should precondition A
// (the ULV reduction's root block is expected to already be well
// conditioned by construction).
func Gesv(A, B *Dense) (*Dense, error) {
	n := A.Rows()
	if n != A.Cols() {
		return nil, ErrDimensionMismatch
	}
	if n != B.Rows() {
		return nil, ErrDimensionMismatch
	}

	L, U, err := doolittleLU(A)
	if err != nil {
		return nil, err
	}

	// L·Y = B, then U·X = Y.
	Y, err := trsmLeftLower(L, B.Clone(), true)
	if err != nil {
		return nil, err
	}
	X, err := trsmLeftUpper(U, Y, false)
	if err != nil {
		return nil, err
	}
	return X, nil
}

// doolittleLU factors square A into unit-lower-triangular L and
// upper-triangular U with A = L·U, no pivoting.
func doolittleLU(A *Dense) (L, U *Dense, err error) {
	n := A.Rows()
	L = Identity(n)
	U = Zeros(n, n)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			for k := 0; k < i; k++ {
				lik, _ := L.At(i, k)
				ukj, _ := U.At(k, j)
				sum += lik * ukj
			}
			aij, _ := A.At(i, j)
			_ = U.Set(i, j, aij-sum)
		}
		pivot, _ := U.At(i, i)
		if pivot == 0 {
			return nil, nil, ErrSingular
		}
		for j := i + 1; j < n; j++ {
			var sum float64
			for k := 0; k < i; k++ {
				ljk, _ := L.At(j, k)
				uki, _ := U.At(k, i)
				sum += ljk * uki
			}
			aji, _ := A.At(j, i)
			_ = L.Set(j, i, (aji-sum)/pivot)
		}
	}
	return L, U, nil
}
