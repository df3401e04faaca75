package hss

import (
	"errors"

	"github.com/katalvlaran/hss/hss/internal/task"
	"github.com/katalvlaran/hss/hss/linalg"
)

// factNode mirrors the HSS tree during Solve. Each node keeps the
// orthogonal factor of the LQ step taken at the corresponding reduction,
// together with the global column indices that rotation acted on, so the
// top-down sweep can undo the rotations in root-to-leaf order. It is a
// separate owned structure; the HSS input is never written to.
type factNode struct {
	qv             *linalg.Dense
	oind           []int
	child1, child2 *factNode
}

// reduction is what one bottom-up step hands to its parent: the block that
// has not yet been triangularized (D with its generators U, V and
// right-hand side b), the accumulated Vᵗ·(solved part) in u, the global
// column indices the subtree still owns, the rank nk just triangularized,
// and the factorization-tree node recording the orthogonal transforms.
type reduction struct {
	b, u    *linalg.Dense
	D, U, V *linalg.Dense
	cols    []int
	nk      int
	fact    *factNode
}

// Solve computes x with hss·x ≈ b through an implicit ULV factorization: a
// bottom-up sweep triangularizes whatever each level's generators allow and
// solves it locally, a dense solve finishes the root remainder, and a
// top-down sweep rotates the locally-solved coordinates back into the
// original basis. The factorization is not retained across calls; b may
// carry any number of right-hand-side columns.
func Solve(n *Node, b *linalg.Dense, cfg Config) (*linalg.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if n.Rows() != n.Cols() {
		return nil, ErrDimensionMismatch
	}
	if b.Rows() != n.Rows() {
		return nil, ErrDimensionMismatch
	}

	if n.IsLeaf {
		x, err := linalg.Gesv(n.D, b)
		if err != nil {
			return nil, mapSolveErr(err)
		}

		return x, nil
	}

	ctx := task.NewContext(cfg.Workers)
	x := linalg.Zeros(n.Cols(), b.Cols())

	red, err := ulvReduce(n, b, 0, 0, x, ctx)
	if err != nil {
		return nil, err
	}

	if err := unrotate(red.fact, x, ctx); err != nil {
		return nil, err
	}

	return x, nil
}

// mapSolveErr translates a singular pivot reported by the dense kernel into
// the package-level numerical-failure kind, leaving other errors untouched.
func mapSolveErr(err error) error {
	if errors.Is(err, linalg.ErrSingular) {
		return ErrNumericalFailure
	}

	return err
}

// ulvReduce is the bottom-up sweep. rowLo and colLo locate this subtree's
// ranges inside the global matrix; b is the full right-hand side and x the
// global solution buffer. Sibling subtrees write disjoint rows of x, so the
// fork-join recursion needs no locking.
func ulvReduce(n *Node, b *linalg.Dense, rowLo, colLo int, x *linalg.Dense, ctx task.Context) (*reduction, error) {
	if n.IsLeaf {
		cols := indexRange(colLo, n.D.Cols())
		bLoc := b.RowRange(rowLo, n.D.Rows())

		return reduceBlock(n.D, n.U, n.V, bLoc, cols, x)
	}

	childCtx := ctx.Child()
	left, right, err := task.RunBoth(ctx,
		func() (interface{}, error) {
			return ulvReduce(n.Child1, b, rowLo, colLo, x, childCtx)
		},
		func() (interface{}, error) {
			return ulvReduce(n.Child2, b, rowLo+n.Sz1[0], colLo+n.Sz1[1], x, childCtx)
		},
	)
	if err != nil {
		return nil, err
	}

	return mergeChildren(n, left.(*reduction), right.(*reduction), x)
}

// mergeChildren assembles the two children's remainders into one dense
// block, corrects the right-hand side for the coupling contributions of the
// parts the children already solved, and either finishes with a dense solve
// (at the root) or runs the same QL/LQ reduction one level up.
func mergeChildren(n *Node, r1, r2 *reduction, x *linalg.Dense) (*reduction, error) {
	gone1 := r1.D.Rows() == 0 && len(r1.cols) == 0
	gone2 := r2.D.Rows() == 0 && len(r2.cols) == 0
	if gone1 != gone2 {
		// One child fully eliminated while its sibling still owns a
		// remainder is a known sharp edge of the divide path.
		return nil, ErrNotImplemented
	}

	off12, err := offDiagonalBlock(r1.U, n.B12, r2.V)
	if err != nil {
		return nil, err
	}
	off21, err := offDiagonalBlock(r2.U, n.B21, r1.V)
	if err != nil {
		return nil, err
	}

	top, err := linalg.HStack(r1.D, off12)
	if err != nil {
		return nil, err
	}
	bottom, err := linalg.HStack(off21, r2.D)
	if err != nil {
		return nil, err
	}
	D, err := linalg.VStack(top, bottom)
	if err != nil {
		return nil, err
	}

	b1, err := couplingCorrect(r1.b, r1.U, n.B12, r2.u)
	if err != nil {
		return nil, err
	}
	b2, err := couplingCorrect(r2.b, r2.U, n.B21, r1.u)
	if err != nil {
		return nil, err
	}
	bM, err := linalg.VStack(b1, b2)
	if err != nil {
		return nil, err
	}

	cols := make([]int, 0, len(r1.cols)+len(r2.cols))
	cols = append(append(cols, r1.cols...), r2.cols...)

	if n.Root {
		if D.Rows() != len(cols) {
			return nil, ErrDimensionMismatch
		}
		xLoc, err := linalg.Gesv(D, bM)
		if err != nil {
			return nil, mapSolveErr(err)
		}
		scatterRows(x, cols, xLoc)

		return &reduction{fact: &factNode{child1: r1.fact, child2: r2.fact}}, nil
	}

	u1, err := linalg.Gemm(false, false, r1.U, n.R1)
	if err != nil {
		return nil, err
	}
	u2, err := linalg.Gemm(false, false, r2.U, n.R2)
	if err != nil {
		return nil, err
	}
	U, err := linalg.VStack(u1, u2)
	if err != nil {
		return nil, err
	}

	v1, err := linalg.Gemm(false, false, r1.V, n.W1)
	if err != nil {
		return nil, err
	}
	v2, err := linalg.Gemm(false, false, r2.V, n.W2)
	if err != nil {
		return nil, err
	}
	V, err := linalg.VStack(v1, v2)
	if err != nil {
		return nil, err
	}

	// The children's accumulated u vectors translate into this node's
	// column basis through W before the new reduction adds its own part.
	w1u1, err := linalg.Gemm(true, false, n.W1, r1.u)
	if err != nil {
		return nil, err
	}
	w2u2, err := linalg.Gemm(true, false, n.W2, r2.u)
	if err != nil {
		return nil, err
	}
	uPre, err := w1u1.Add(w2u2)
	if err != nil {
		return nil, err
	}

	red, err := reduceBlock(D, U, V, bM, cols, x)
	if err != nil {
		return nil, err
	}
	red.fact.child1, red.fact.child2 = r1.fact, r2.fact
	red.u, err = red.u.Add(uPre)
	if err != nil {
		return nil, err
	}

	return red, nil
}

// couplingCorrect returns b − U·B·uSib, removing from a child's remaining
// right-hand side the contribution of the sibling's already-solved part.
func couplingCorrect(b, U, B, uSib *linalg.Dense) (*linalg.Dense, error) {
	ub, err := linalg.Gemm(false, false, U, B)
	if err != nil {
		return nil, err
	}
	contrib, err := linalg.Gemm(false, false, ub, uSib)
	if err != nil {
		return nil, err
	}

	return b.Sub2(contrib)
}

// reduceBlock performs one QL/LQ reduction step on a block with dense part
// D (m×nc), generators U (m×k), V (nc×rv), and right-hand side b:
//
//  1. QL-factor U and apply Qᵗ from the left to D and b; U becomes its
//     lower-triangular tail with m−k leading zero rows.
//  2. LQ-factor the top m−k rows of the transformed D. The leading
//     nk×nk triangle, nk = min(m−k, nc), is solvable right now.
//  3. Rotate the bottom k rows of D and all of V into the LQ basis.
//  4. Triangular-solve the nk leading coordinates, substitute them into
//     the remaining rows of b, and store them at cols[:nk] of the global
//     buffer x. They are still in the rotated basis; the factorization
//     tree records the rotation for the top-down sweep to undo.
//
// The untriangularized remainder (bottom rows, trailing columns) is
// returned for the parent to merge. A block with k ≥ m or no columns
// cannot be reduced and passes through unchanged.
func reduceBlock(D, U, V, b *linalg.Dense, cols []int, x *linalg.Dense) (*reduction, error) {
	m, nc := D.Rows(), D.Cols()
	k := U.Cols()
	nk := m - k
	if nc < nk {
		nk = nc
	}

	if k >= m || nk <= 0 {
		return &reduction{
			b:    b,
			u:    linalg.Zeros(V.Cols(), b.Cols()),
			D:    D,
			U:    U,
			V:    V,
			cols: cols,
			fact: &factNode{},
		}, nil
	}

	Ql, Lu, err := linalg.Geqlf(U)
	if err != nil {
		return nil, err
	}
	Dt, err := linalg.Ormql(linalg.Left, true, Ql, D)
	if err != nil {
		return nil, err
	}
	bt, err := linalg.Ormql(linalg.Left, true, Ql, b)
	if err != nil {
		return nil, err
	}

	Lt, Qv, err := linalg.Gelqf(Dt.RowRange(0, m-k))
	if err != nil {
		return nil, err
	}
	L2, err := linalg.Ormlq(linalg.Right, true, Qv, Dt.RowRange(m-k, k))
	if err != nil {
		return nil, err
	}
	Vt, err := linalg.Ormlq(linalg.Left, false, Qv, V)
	if err != nil {
		return nil, err
	}
	Dr, err := linalg.VStack(Lt, L2)
	if err != nil {
		return nil, err
	}

	z, err := linalg.Trsm(linalg.Left, false, false, false, 1, Dr.Sub(0, 0, nk, nk), bt.RowRange(0, nk))
	if err != nil {
		return nil, mapSolveErr(err)
	}

	carried, err := linalg.Gemm(false, false, Dr.Sub(nk, 0, m-nk, nk), z)
	if err != nil {
		return nil, err
	}
	bRem, err := bt.RowRange(nk, m-nk).Sub2(carried)
	if err != nil {
		return nil, err
	}

	scatterRows(x, cols[:nk], z)

	u, err := linalg.Gemm(true, false, Vt.RowRange(0, nk), z)
	if err != nil {
		return nil, err
	}

	return &reduction{
		b:    bRem,
		u:    u,
		D:    Dr.Sub(nk, nk, m-nk, nc-nk),
		U:    Lu.RowRange(nk, m-nk),
		V:    Vt.RowRange(nk, nc-nk),
		cols: cols[nk:],
		nk:   nk,
		fact: &factNode{qv: Qv, oind: cols},
	}, nil
}

// unrotate is the top-down sweep: a pre-order walk of the factorization
// tree applying each stored Qᵗ to the slice of the global solution its
// reduction rotated. Parents go first; their transform restores the basis
// the child's own rotation was expressed in. Sibling index sets are
// disjoint, so the children run as a fork-join pair.
func unrotate(f *factNode, x *linalg.Dense, ctx task.Context) error {
	if f == nil {
		return nil
	}

	if f.qv != nil {
		xi, err := linalg.Ormlq(linalg.Left, true, f.qv, gatherRows(x, f.oind))
		if err != nil {
			return err
		}
		scatterRows(x, f.oind, xi)
	}

	if f.child1 == nil && f.child2 == nil {
		return nil
	}

	childCtx := ctx.Child()
	_, _, err := task.RunBoth(ctx,
		func() (interface{}, error) { return nil, unrotate(f.child1, x, childCtx) },
		func() (interface{}, error) { return nil, unrotate(f.child2, x, childCtx) },
	)

	return err
}

// indexRange returns the contiguous index list lo, lo+1, ..., lo+n-1.
func indexRange(lo, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = lo + i
	}

	return out
}

// scatterRows writes vals row i into row rows[i] of x.
func scatterRows(x *linalg.Dense, rows []int, vals *linalg.Dense) {
	for i, r := range rows {
		for j := 0; j < vals.Cols(); j++ {
			v, _ := vals.At(i, j)
			_ = x.Set(r, j, v)
		}
	}
}

// gatherRows extracts rows of x listed in rows, in order.
func gatherRows(x *linalg.Dense, rows []int) *linalg.Dense {
	out := linalg.Zeros(len(rows), x.Cols())
	for i, r := range rows {
		for j := 0; j < x.Cols(); j++ {
			v, _ := x.At(r, j)
			_ = out.Set(i, j, v)
		}
	}

	return out
}
