package hss

import (
	"testing"

	"github.com/katalvlaran/hss/hss/linalg"
	"github.com/stretchr/testify/require"
)

func TestMatVecRejectsWrongVectorHeight(t *testing.T) {
	A := randMatrix(t, 16, 16, 10)
	node := compressDense(t, A, Config{Tol: 1e-9, Reltol: true, Leafsize: 4})

	x := randMatrix(t, 12, 1, 11)
	_, err := MatVec(node, x, DefaultConfig())
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

// Mat-vec through the compressed representation must agree with the dense
// product up to the compression tolerance.
func TestMatVecMatchesDenseProduct(t *testing.T) {
	A := cauchyMatrix(t, 192, 1000)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 24}
	node := compressDense(t, A, cfg)

	x := randMatrix(t, 192, 3, 12)
	got, err := MatVec(node, x, cfg)
	require.NoError(t, err)

	want, err := linalg.Gemm(false, false, A, x)
	require.NoError(t, err)
	require.Less(t, relErr(t, got, want), 1e-6)
}

func TestMatVecIdentityIsIdentity(t *testing.T) {
	A := linalg.Identity(128)
	cfg := Config{Tol: 1e-12, Reltol: false, Leafsize: 32}
	node := compressDense(t, A, cfg)

	x := randMatrix(t, 128, 2, 13)
	got, err := MatVec(node, x, cfg)
	require.NoError(t, err)
	require.Less(t, relErr(t, got, x), 1e-12)
}

// A leaf-only tree multiplies through its dense block directly.
func TestMatVecRootLeaf(t *testing.T) {
	A := randMatrix(t, 8, 8, 14)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 16}
	node := compressDense(t, A, cfg)

	x := randMatrix(t, 8, 1, 15)
	got, err := MatVec(node, x, cfg)
	require.NoError(t, err)

	want, err := linalg.Gemm(false, false, A, x)
	require.NoError(t, err)
	require.Less(t, relErr(t, got, want), 1e-12)
}

// A rectangular HSS matrix multiplies a correspondingly rectangular input.
func TestMatVecRectangular(t *testing.T) {
	A := randMatrix(t, 16, 12, 16)
	rowTree, err := BisectionCluster(0, 15, 4)
	require.NoError(t, err)
	colTree, err := BisectionCluster(0, 11, 3)
	require.NoError(t, err)

	cfg := Config{Tol: 1e-10, Reltol: true, Leafsize: 4}
	node, err := Compress(A, rowTree, colTree, cfg)
	require.NoError(t, err)

	x := randMatrix(t, 12, 2, 17)
	got, err := MatVec(node, x, cfg)
	require.NoError(t, err)
	require.Equal(t, 16, got.Rows())

	want, err := linalg.Gemm(false, false, A, x)
	require.NoError(t, err)
	require.Less(t, relErr(t, got, want), 1e-8)
}
