package linalg

import "math"

// houseQR computes an unpivoted Householder QR factorization of an p×q
// matrix A of any shape: A = Q·R with Q (p×p) orthogonal and R (p×q) upper
// trapezoidal (R[i][j] == 0 whenever i > j).
//
// It is the building block GEQLF and GELQF reduce to via axis-reversal and
// transposition respectively (see ql.go); RRQR reimplements the same
// reflector math with column pivoting interleaved, since pivot selection
// can't be bolted onto this unpivoted pass after the fact.
func houseQR(A *Dense) (Q, R *Dense, err error) {
	p, q := A.Rows(), A.Cols()
	R = A.Clone()
	Q = Identity(p)

	steps := p
	if q < steps {
		steps = q
	}

	v := make([]float64, p)
	for k := 0; k < steps; k++ {
		// Stage 1: norm of the active column segment R[k:p, k].
		var norm float64
		for i := k; i < p; i++ {
			val, _ := R.At(i, k)
			norm += val * val
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}

		// Stage 2: build the Householder vector v for this column.
		pivot, _ := R.At(k, k)
		alpha := -math.Copysign(norm, pivot)
		for i := range v {
			v[i] = 0
		}
		for i := k; i < p; i++ {
			val, _ := R.At(i, k)
			v[i] = val
		}
		v[k] -= alpha

		var beta float64
		for i := k; i < p; i++ {
			beta += v[i] * v[i]
		}
		if beta == 0 {
			continue
		}
		tau := 2.0 / beta

		// Stage 3: apply the reflector to R's trailing columns.
		for j := k; j < q; j++ {
			var sum float64
			for i := k; i < p; i++ {
				val, _ := R.At(i, j)
				sum += v[i] * val
			}
			for i := k; i < p; i++ {
				val, _ := R.At(i, j)
				_ = R.Set(i, j, val-tau*v[i]*sum)
			}
		}

		// Stage 4: accumulate the same reflector into Q.
		for j := 0; j < p; j++ {
			var sum float64
			for i := k; i < p; i++ {
				val, _ := Q.At(i, j)
				sum += v[i] * val
			}
			for i := k; i < p; i++ {
				val, _ := Q.At(i, j)
				_ = Q.Set(i, j, val-tau*v[i]*sum)
			}
		}
	}

	// Q currently holds Qᵗ's accumulation (each reflector applied on the
	// left to the running product) — transpose once to return Q itself.
	Q = Q.Transpose()
	return Q, R, nil
}
