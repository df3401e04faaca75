package hss

import (
	"testing"

	"github.com/katalvlaran/hss/hss/linalg"
	"github.com/stretchr/testify/require"
)

func TestCompressRejectsMismatchedTrees(t *testing.T) {
	A := randMatrix(t, 16, 16, 1)
	rowTree, err := BisectionCluster(0, 15, 4)
	require.NoError(t, err)
	shortTree, err := BisectionCluster(0, 11, 4)
	require.NoError(t, err)

	_, err = Compress(A, shortTree, rowTree, DefaultConfig())
	require.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Compress(A, rowTree, shortTree, DefaultConfig())
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCompressRejectsInvalidConfig(t *testing.T) {
	A := randMatrix(t, 8, 8, 2)
	tree, err := BisectionCluster(0, 7, 4)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Tol = -1
	_, err = Compress(A, tree, tree, cfg)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// A full-rank random matrix is the pathological case: compression must not
// fail, and the reconstruction must still be faithful because the generator
// ranks are simply allowed to grow to min(m,n).
func TestCompressFullRankRoundTrip(t *testing.T) {
	A := randMatrix(t, 48, 48, 3)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 12}

	full, err := compressDense(t, A, cfg).Full()
	require.NoError(t, err)
	require.Less(t, relErr(t, full, A), 1e-7)
}

// Block upper-triangular round trip: A = [U V; 0 U] with random 32×32
// blocks and leafsize 32, so the tree has exactly one branch level.
func TestCompressBlockTriangularRoundTrip(t *testing.T) {
	U := randMatrix(t, 32, 32, 4)
	V := randMatrix(t, 32, 32, 5)

	A := linalg.Zeros(64, 64)
	A.SetSub(0, 0, U)
	A.SetSub(0, 32, V)
	A.SetSub(32, 32, U)

	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 32}
	full, err := compressDense(t, A, cfg).Full()
	require.NoError(t, err)
	require.Less(t, relErr(t, full, A), 1e-6)
}

// Cauchy-kernel fidelity: the canonical HSS-friendly matrix must reconstruct
// from its compressed form to a relative error below 1e-6.
func TestCompressCauchyFidelity(t *testing.T) {
	A := cauchyMatrix(t, 192, 1000)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 24}

	full, err := compressDense(t, A, cfg).Full()
	require.NoError(t, err)
	require.Less(t, relErr(t, full, A), 1e-6)
}

// Rank-one off-diagonal: A[i,j] = u_i·v_j off the diagonal and 1 on it.
// Every off-diagonal block of every split is exactly rank one, so every
// coupling block must come out 1×1.
func TestCompressRankOneOffDiagonalRanks(t *testing.T) {
	const n = 64
	u := randMatrix(t, n, 1, 6)
	v := randMatrix(t, n, 1, 7)

	A := linalg.Zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				require.NoError(t, A.Set(i, j, 1))
				continue
			}
			ui, _ := u.At(i, 0)
			vj, _ := v.At(j, 0)
			require.NoError(t, A.Set(i, j, ui*vj))
		}
	}

	cfg := Config{Tol: 1e-12, Reltol: false, Leafsize: 16}
	node := compressDense(t, A, cfg)

	for _, rk := range node.OffDiagonalRanks() {
		require.Equal(t, [2]int{1, 1}, rk)
	}

	full, err := node.Full()
	require.NoError(t, err)
	require.Less(t, relErr(t, full, A), 1e-10)
}

// Pure diagonal input: all off-diagonal blocks are zero, so every coupling
// block must have zero rank.
func TestCompressDiagonalRanksAreZero(t *testing.T) {
	const n = 64
	A := linalg.Zeros(n, n)
	for i := 0; i < n; i++ {
		require.NoError(t, A.Set(i, i, float64(i+1)))
	}

	cfg := Config{Tol: 1e-12, Reltol: false, Leafsize: 8}
	node := compressDense(t, A, cfg)

	for _, rk := range node.OffDiagonalRanks() {
		require.Equal(t, [2]int{0, 0}, rk)
	}
}

// Repeated compression of the same input with the same configuration must
// produce bit-identical trees. Comparing the materialized forms entry by
// entry with exact equality is sufficient: any nondeterminism in pivoting
// or scheduling would perturb low-order bits.
func TestCompressIsDeterministic(t *testing.T) {
	A := cauchyMatrix(t, 96, 500)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 12}

	full1, err := compressDense(t, A, cfg).Full()
	require.NoError(t, err)
	full2, err := compressDense(t, A, cfg).Full()
	require.NoError(t, err)

	for i := 0; i < full1.Rows(); i++ {
		for j := 0; j < full1.Cols(); j++ {
			v1, _ := full1.At(i, j)
			v2, _ := full2.At(i, j)
			require.Equal(t, v1, v2, "entry (%d,%d) differs between runs", i, j)
		}
	}
}

// A leaf-only tree (leafsize covering the whole matrix) stores the input as
// its single dense block.
func TestCompressRootLeaf(t *testing.T) {
	A := randMatrix(t, 8, 8, 8)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 16}

	node := compressDense(t, A, cfg)
	require.True(t, node.IsLeaf)
	require.True(t, node.Root)

	full, err := node.Full()
	require.NoError(t, err)
	require.Equal(t, float64(0), relErr(t, full, A))
}
