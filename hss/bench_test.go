package hss

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/hss/hss/linalg"
)

// benchSizes are the kernel sizes to benchmark.
var benchSizes = []int{128, 256, 512}

// sinks to defeat dead-code elimination
var (
	sinkNode *Node
	sinkM    *linalg.Dense
)

func benchConfig() Config {
	return Config{Tol: 1e-9, Reltol: true, Leafsize: 32}
}

func BenchmarkCompress(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			A := cauchyMatrix(b, n, float64(10*n))
			cfg := benchConfig()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				node := compressDense(b, A, cfg)
				sinkNode = node
			}
		})
	}
}

func BenchmarkMatVec(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			A := cauchyMatrix(b, n, float64(10*n))
			cfg := benchConfig()
			node := compressDense(b, A, cfg)
			x := randMatrix(b, n, 3, 101)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				y, err := MatVec(node, x, cfg)
				if err != nil {
					b.Fatal(err)
				}
				sinkM = y
			}
		})
	}
}

func BenchmarkSolve(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			A := cauchyMatrix(b, n, float64(10*n))
			cfg := benchConfig()
			node := compressDense(b, A, cfg)
			rhs := randMatrix(b, n, 5, 202)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				x, err := Solve(node, rhs, cfg)
				if err != nil {
					b.Fatal(err)
				}
				sinkM = x
			}
		})
	}
}

// BenchmarkFullGrid exercises the 2001-point uniform-grid kernel, the
// heavyweight end of the grid sweep above: diagonal 10000, leafsize 64,
// relative tolerance 1e-9. The matrix is compressed once, then mat-vec
// (3 columns) and solve (5 right-hand sides) are measured at full scale.
func BenchmarkFullGrid(b *testing.B) {
	const n = 2001
	A := cauchyMatrix(b, n, 10000)
	cfg := Config{Tol: 1e-9, Reltol: true, Leafsize: 64}
	node := compressDense(b, A, cfg)
	x := randMatrix(b, n, 3, 303)
	rhs := randMatrix(b, n, 5, 404)

	b.Run("matvec", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			y, err := MatVec(node, x, cfg)
			if err != nil {
				b.Fatal(err)
			}
			sinkM = y
		}
	})
	b.Run("solve", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			xs, err := Solve(node, rhs, cfg)
			if err != nil {
				b.Fatal(err)
			}
			sinkM = xs
		}
	})
}
