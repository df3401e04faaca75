package hss

import (
	"github.com/katalvlaran/hss/hss/internal/task"
	"github.com/katalvlaran/hss/hss/linalg"
)

// Compress produces an HSS tree from a dense matrix A and a pair of cluster
// trees sized to its rows and columns, using top-down direct construction:
// recurse on the two children of each node, form the off-diagonal hi-blocks
// between them, compress the stacked row/column blocks with RRQR to obtain
// this node's own generator, and project the children's generators into it
// via least squares to obtain the translation operators.
func Compress(A *linalg.Dense, rowTree, colTree *ClusterNode, cfg Config) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rowTree.Len() != A.Rows() || colTree.Len() != A.Cols() {
		return nil, ErrDimensionMismatch
	}

	ctx := task.NewContext(cfg.Workers)
	noRows := linalg.Zeros(rowTree.Len(), 0)
	noCols := linalg.Zeros(colTree.Len(), 0)

	node, err := compressNode(A, rowTree, colTree, noRows, noCols, cfg, ctx, true)
	if err != nil {
		return nil, err
	}

	return node, nil
}

// compressNode builds the subtree covering rowNode × colNode. hiRows and
// hiCols are the extra basis directions this node's row/column generator
// must also span, inherited from everything outside the node's own range;
// the caller has already restricted them to this node's rows/columns. root
// is true only for the top-level call, which needs no R/W of its own since
// it has no ancestor to translate into.
func compressNode(A *linalg.Dense, rowNode, colNode *ClusterNode, hiRows, hiCols *linalg.Dense, cfg Config, ctx task.Context, root bool) (*Node, error) {
	if rowNode.IsLeaf() != colNode.IsLeaf() {
		return nil, ErrDimensionMismatch
	}

	if rowNode.IsLeaf() {
		D := A.Sub(rowNode.Lo, colNode.Lo, rowNode.Len(), colNode.Len())
		U, err := compressGenerator(hiRows, cfg)
		if err != nil {
			return nil, err
		}
		V, err := compressGenerator(hiCols, cfg)
		if err != nil {
			return nil, err
		}

		return &Node{IsLeaf: true, Root: root, D: D, U: U, V: V}, nil
	}

	r1, r2 := rowNode.Child1, rowNode.Child2
	c1, c2 := colNode.Child1, colNode.Child2

	A12 := A.Sub(r1.Lo, c2.Lo, r1.Len(), c2.Len())
	A21 := A.Sub(r2.Lo, c1.Lo, r2.Len(), c1.Len())

	hiRows1, err := linalg.HStack(A12, hiRows.RowRange(0, r1.Len()))
	if err != nil {
		return nil, err
	}
	hiRows2, err := linalg.HStack(A21, hiRows.RowRange(r1.Len(), r2.Len()))
	if err != nil {
		return nil, err
	}
	hiCols1, err := linalg.HStack(A21.Transpose(), hiCols.RowRange(0, c1.Len()))
	if err != nil {
		return nil, err
	}
	hiCols2, err := linalg.HStack(A12.Transpose(), hiCols.RowRange(c1.Len(), c2.Len()))
	if err != nil {
		return nil, err
	}

	childCtx := ctx.Child()
	left, right, err := task.RunBoth(ctx,
		func() (interface{}, error) {
			return compressNode(A, r1, c1, hiRows1, hiCols1, cfg, childCtx, false)
		},
		func() (interface{}, error) {
			return compressNode(A, r2, c2, hiRows2, hiCols2, cfg, childCtx, false)
		},
	)
	if err != nil {
		return nil, err
	}
	child1Node, child2Node := left.(*Node), right.(*Node)

	u1, err := generatorU(child1Node)
	if err != nil {
		return nil, err
	}
	v1, err := generatorV(child1Node)
	if err != nil {
		return nil, err
	}
	u2, err := generatorU(child2Node)
	if err != nil {
		return nil, err
	}
	v2, err := generatorV(child2Node)
	if err != nil {
		return nil, err
	}

	B12, err := offDiagonalCoupling(u1, A12, v2)
	if err != nil {
		return nil, err
	}
	B21, err := offDiagonalCoupling(u2, A21, v1)
	if err != nil {
		return nil, err
	}

	node := &Node{
		IsLeaf: false,
		Root:   root,
		Child1: child1Node,
		Child2: child2Node,
		Sz1:    [2]int{r1.Len(), c1.Len()},
		Sz2:    [2]int{r2.Len(), c2.Len()},
		B12:    B12,
		B21:    B21,
	}

	if root {
		return node, nil
	}

	U, err := compressGenerator(hiRows, cfg)
	if err != nil {
		return nil, err
	}
	V, err := compressGenerator(hiCols, cfg)
	if err != nil {
		return nil, err
	}

	node.R1, err = projectGenerator(u1, U.RowRange(0, r1.Len()))
	if err != nil {
		return nil, err
	}
	node.R2, err = projectGenerator(u2, U.RowRange(r1.Len(), r2.Len()))
	if err != nil {
		return nil, err
	}
	node.W1, err = projectGenerator(v1, V.RowRange(0, c1.Len()))
	if err != nil {
		return nil, err
	}
	node.W2, err = projectGenerator(v2, V.RowRange(c1.Len(), c2.Len()))
	if err != nil {
		return nil, err
	}

	return node, nil
}

// compressGenerator runs RRQR on block and returns the resulting orthonormal
// basis, truncated to the rank the tolerance allows. The column permutation
// and R factor are discarded: only the column space spanned by block
// matters to a generator, not the particular basis RRQR happened to pivot
// into first.
func compressGenerator(block *linalg.Dense, cfg Config) (*linalg.Dense, error) {
	Q, _, _, _, err := linalg.RRQR(block, cfg.Tol, cfg.Reltol)
	if err != nil {
		return nil, err
	}

	return Q, nil
}

// offDiagonalCoupling computes B = Uᵗ·block·V, the small coupling block
// mediating an off-diagonal product once it is re-expressed in the
// generators' orthonormal bases.
func offDiagonalCoupling(U, block, V *linalg.Dense) (*linalg.Dense, error) {
	ut, err := linalg.Gemm(true, false, U, block)
	if err != nil {
		return nil, err
	}

	return linalg.Gemm(false, false, ut, V)
}

// projectGenerator returns R such that child·R best approximates target in
// the least-squares sense. child has orthonormal columns (it came out of an
// RRQR), so its pseudo-inverse is simply its transpose, and the projection
// reduces to a single matrix product.
func projectGenerator(child, target *linalg.Dense) (*linalg.Dense, error) {
	return linalg.Gemm(true, false, child, target)
}
