package linalg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reconstructAndCompare(t *testing.T, A, Q, R *Dense) {
	t.Helper()
	recon, err := Gemm(false, false, Q, R)
	require.NoError(t, err)
	require.Equal(t, A.Rows(), recon.Rows())
	require.Equal(t, A.Cols(), recon.Cols())
	for i := 0; i < A.Rows(); i++ {
		for j := 0; j < A.Cols(); j++ {
			want, _ := A.At(i, j)
			got, _ := recon.At(i, j)
			require.InDelta(t, want, got, 1e-9)
		}
	}
}

func requireOrthonormalColumns(t *testing.T, Q *Dense) {
	t.Helper()
	QtQ, err := Gemm(true, false, Q, Q)
	require.NoError(t, err)
	for i := 0; i < QtQ.Rows(); i++ {
		for j := 0; j < QtQ.Cols(); j++ {
			v, _ := QtQ.At(i, j)
			want := 0.0
			if i == j {
				want = 1.0
			}
			require.InDelta(t, want, v, 1e-9)
		}
	}
}

func TestHouseQRReconstructsTallMatrix(t *testing.T) {
	A, err := NewDenseFromRowMajor(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	require.NoError(t, err)

	Q, R, err := houseQR(A)
	require.NoError(t, err)
	requireOrthonormalColumns(t, Q)
	reconstructAndCompare(t, A, Q, R)

	for i := 1; i < R.Rows(); i++ {
		for j := 0; j < i && j < R.Cols(); j++ {
			v, _ := R.At(i, j)
			require.InDelta(t, 0, v, 1e-9, "R must be upper trapezoidal")
		}
	}
}

func TestHouseQRReconstructsWideMatrix(t *testing.T) {
	A, err := NewDenseFromRowMajor(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	require.NoError(t, err)

	Q, R, err := houseQR(A)
	require.NoError(t, err)
	requireOrthonormalColumns(t, Q)
	reconstructAndCompare(t, A, Q, R)
}
