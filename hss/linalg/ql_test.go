package linalg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeqlfProducesLowerTrapezoidalL(t *testing.T) {
	A, err := NewDenseFromRowMajor(5, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		1, 0, 1,
		2, 1, 0,
	})
	require.NoError(t, err)

	Q, L, err := Geqlf(A)
	require.NoError(t, err)
	requireOrthonormalColumns(t, Q)
	reconstructAndCompare(t, A, Q, L)

	m, n := L.Rows(), L.Cols()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if i < j+(m-n) {
				v, _ := L.At(i, j)
				require.InDelta(t, 0, v, 1e-9, "L[%d][%d] should be zero", i, j)
			}
		}
	}
}

func TestGelqfProducesLowerTrapezoidalL(t *testing.T) {
	A, err := NewDenseFromRowMajor(2, 5, []float64{
		1, 2, 3, 4, 5,
		5, 4, 3, 2, 1,
	})
	require.NoError(t, err)

	L, Q, err := Gelqf(A)
	require.NoError(t, err)
	requireOrthonormalColumns(t, Q)
	recon, err := Gemm(false, false, L, Q)
	require.NoError(t, err)
	for i := 0; i < A.Rows(); i++ {
		for j := 0; j < A.Cols(); j++ {
			want, _ := A.At(i, j)
			got, _ := recon.At(i, j)
			require.InDelta(t, want, got, 1e-9)
		}
	}

	for i := 0; i < L.Rows(); i++ {
		for j := i + 1; j < L.Cols(); j++ {
			v, _ := L.At(i, j)
			require.InDelta(t, 0, v, 1e-9)
		}
	}
}

func TestOrmqlMatchesExplicitMultiply(t *testing.T) {
	A, _ := NewDenseFromRowMajor(4, 2, []float64{1, 0, 0, 1, 1, 1, 2, 3})
	Q, _, err := Geqlf(A)
	require.NoError(t, err)

	C := Identity(4)
	got, err := Ormql(Left, true, Q, C)
	require.NoError(t, err)

	want := Q.Transpose()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a, _ := got.At(i, j)
			b, _ := want.At(i, j)
			require.InDelta(t, b, a, 1e-9)
		}
	}
}
