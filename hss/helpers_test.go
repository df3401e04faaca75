package hss

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/hss/hss/linalg"
	"github.com/stretchr/testify/require"
)

// randMatrix returns an r×c matrix filled from a deterministic source, so
// repeated test runs see identical inputs.
func randMatrix(t testing.TB, r, c int, seed int64) *linalg.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m := linalg.Zeros(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.NoError(t, m.Set(i, j, rng.Float64()*2-1))
		}
	}

	return m
}

// cauchyMatrix builds the classic HSS test kernel: points x on a uniform
// grid over [-1,1], entries 1/(x_i−x_j) off the diagonal and diagVal on it.
// The large diagonal keeps the matrix comfortably non-singular.
func cauchyMatrix(t testing.TB, n int, diagVal float64) *linalg.Dense {
	t.Helper()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = -1 + 2*float64(i)/float64(n-1)
	}

	m := linalg.Zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := diagVal
			if i != j {
				v = 1 / (xs[i] - xs[j])
			}
			require.NoError(t, m.Set(i, j, v))
		}
	}

	return m
}

// relErr returns ‖got−want‖_F / ‖want‖_F.
func relErr(t testing.TB, got, want *linalg.Dense) float64 {
	t.Helper()
	diff, err := got.Sub2(want)
	require.NoError(t, err)

	denom := want.FrobeniusNorm()
	if denom == 0 {
		return diff.FrobeniusNorm()
	}

	return diff.FrobeniusNorm() / denom
}

// compressDense is shorthand for the full BisectionCluster + Compress chain
// on a square matrix with matching row and column trees.
func compressDense(t testing.TB, A *linalg.Dense, cfg Config) *Node {
	t.Helper()
	rowTree, err := BisectionCluster(0, A.Rows()-1, cfg.Leafsize)
	require.NoError(t, err)
	colTree, err := BisectionCluster(0, A.Cols()-1, cfg.Leafsize)
	require.NoError(t, err)

	node, err := Compress(A, rowTree, colTree, cfg)
	require.NoError(t, err)

	return node
}
