package linalg

import "math"

// RRQR computes a rank-revealing QR factorization of A with column
// pivoting: A[:,p] ≈ Q[:,1:k]·R[1:k,:], truncated at the smallest rank k
// whose residual satisfies the tolerance.
//
// When reltol is false, truncation stops once the largest remaining pivot
// column norm drops to tol or below (absolute tolerance). When reltol is
// true, the threshold is tol times the largest pivot norm seen at the
// first step (relative tolerance). k is the number of Householder steps
// actually taken; it is 0 for an all-zero A.
func RRQR(A *Dense, tol float64, reltol bool) (Q, R *Dense, perm []int, k int, err error) {
	if tol < 0 {
		return nil, nil, nil, 0, ErrInvalidArgument
	}
	if A.HasNaNInf() {
		return nil, nil, nil, 0, ErrInvalidArgument
	}

	m, n := A.Rows(), A.Cols()
	perm = make([]int, n)
	for j := range perm {
		perm[j] = j
	}
	if m == 0 || n == 0 {
		return Zeros(m, 0), Zeros(0, n), perm, 0, nil
	}

	work := A.Clone()
	Qacc := Identity(m)

	steps := m
	if n < steps {
		steps = n
	}

	var threshold, sigma1 float64
	v := make([]float64, m)

	for k = 0; k < steps; k++ {
		bestJ, bestNorm := pivotColumn(work, k)
		if k == 0 {
			sigma1 = bestNorm
			if reltol {
				threshold = tol * sigma1
			} else {
				threshold = tol
			}
		}
		if bestNorm <= threshold {
			break
		}

		if bestJ != k {
			swapColumns(work, k, bestJ)
			perm[k], perm[bestJ] = perm[bestJ], perm[k]
		}

		// Householder elimination of column k, rows [k,m).
		var norm float64
		for i := k; i < m; i++ {
			val, _ := work.At(i, k)
			norm += val * val
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		pivot, _ := work.At(k, k)
		alpha := -math.Copysign(norm, pivot)
		for i := range v {
			v[i] = 0
		}
		for i := k; i < m; i++ {
			val, _ := work.At(i, k)
			v[i] = val
		}
		v[k] -= alpha

		var beta float64
		for i := k; i < m; i++ {
			beta += v[i] * v[i]
		}
		if beta == 0 {
			continue
		}
		tau := 2.0 / beta

		for j := k; j < n; j++ {
			var sum float64
			for i := k; i < m; i++ {
				val, _ := work.At(i, j)
				sum += v[i] * val
			}
			for i := k; i < m; i++ {
				val, _ := work.At(i, j)
				_ = work.Set(i, j, val-tau*v[i]*sum)
			}
		}
		for j := 0; j < m; j++ {
			var sum float64
			for i := k; i < m; i++ {
				val, _ := Qacc.At(i, j)
				sum += v[i] * val
			}
			for i := k; i < m; i++ {
				val, _ := Qacc.At(i, j)
				_ = Qacc.Set(i, j, val-tau*v[i]*sum)
			}
		}
	}

	Qfull := Qacc.Transpose()
	Q = Qfull.ColRange(0, k)
	R = work.RowRange(0, k)
	return Q, R, perm, k, nil
}

// pivotColumn returns the index (>= from) of the column with the largest
// 2-norm restricted to rows [from, m), and that norm.
func pivotColumn(work *Dense, from int) (bestJ int, bestNorm float64) {
	m, n := work.Rows(), work.Cols()
	bestJ = from
	for j := from; j < n; j++ {
		var norm float64
		for i := from; i < m; i++ {
			val, _ := work.At(i, j)
			norm += val * val
		}
		norm = math.Sqrt(norm)
		if norm > bestNorm {
			bestNorm = norm
			bestJ = j
		}
	}
	return bestJ, bestNorm
}

// swapColumns exchanges columns a and b of m in place.
func swapColumns(m *Dense, a, b int) {
	if a == b {
		return
	}
	for i := 0; i < m.Rows(); i++ {
		va, _ := m.At(i, a)
		vb, _ := m.At(i, b)
		_ = m.Set(i, a, vb)
		_ = m.Set(i, b, va)
	}
}
