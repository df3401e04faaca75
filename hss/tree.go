package hss

import "github.com/katalvlaran/hss/hss/linalg"

// Node is a node of an HSS tree: a tagged union of leaf and branch, carrying
// shared size/root metadata regardless of which variant it is.
//
// Leaf fields (D, U, V) are populated only when IsLeaf is true; branch
// fields (Child1, Child2, Sz1, Sz2, B12, B21, R1, R2, W1, W2) only when it
// is false. The root node's R1, R2, W1, W2 are always nil: it has no
// ancestor to translate a generator into.
type Node struct {
	IsLeaf bool
	Root   bool

	// Leaf fields.
	D, U, V *linalg.Dense

	// Branch fields.
	Child1, Child2 *Node
	Sz1, Sz2       [2]int
	B12, B21       *linalg.Dense
	R1, R2         *linalg.Dense
	W1, W2         *linalg.Dense
}

// Rows returns the row-dimension of the submatrix this node covers.
func (n *Node) Rows() int {
	if n.IsLeaf {
		return n.D.Rows()
	}

	return n.Sz1[0] + n.Sz2[0]
}

// Cols returns the column-dimension of the submatrix this node covers.
func (n *Node) Cols() int {
	if n.IsLeaf {
		return n.D.Cols()
	}

	return n.Sz1[1] + n.Sz2[1]
}

// generatorU returns this node's own left generator: stored directly at a
// leaf, or assembled on demand at a branch via U = [U1·R1; U2·R2]. Non-root
// branch generators are never materialized except through this call, per
// the implicit-generator design.
func generatorU(n *Node) (*linalg.Dense, error) {
	if n.IsLeaf {
		return n.U, nil
	}

	u1, err := generatorU(n.Child1)
	if err != nil {
		return nil, err
	}
	u2, err := generatorU(n.Child2)
	if err != nil {
		return nil, err
	}

	a1, err := linalg.Gemm(false, false, u1, n.R1)
	if err != nil {
		return nil, err
	}
	a2, err := linalg.Gemm(false, false, u2, n.R2)
	if err != nil {
		return nil, err
	}

	return linalg.VStack(a1, a2)
}

// generatorV is the column-space analogue of generatorU, using W1, W2.
func generatorV(n *Node) (*linalg.Dense, error) {
	if n.IsLeaf {
		return n.V, nil
	}

	v1, err := generatorV(n.Child1)
	if err != nil {
		return nil, err
	}
	v2, err := generatorV(n.Child2)
	if err != nil {
		return nil, err
	}

	a1, err := linalg.Gemm(false, false, v1, n.W1)
	if err != nil {
		return nil, err
	}
	a2, err := linalg.Gemm(false, false, v2, n.W2)
	if err != nil {
		return nil, err
	}

	return linalg.VStack(a1, a2)
}

// Full materializes the dense matrix this HSS tree represents, by recursive
// expansion of D and U·B·Vᵀ off-diagonal blocks.
func (n *Node) Full() (*linalg.Dense, error) {
	if n.IsLeaf {
		return n.D.Clone(), nil
	}

	f1, err := n.Child1.Full()
	if err != nil {
		return nil, err
	}
	f2, err := n.Child2.Full()
	if err != nil {
		return nil, err
	}

	u1, err := generatorU(n.Child1)
	if err != nil {
		return nil, err
	}
	v1, err := generatorV(n.Child1)
	if err != nil {
		return nil, err
	}
	u2, err := generatorU(n.Child2)
	if err != nil {
		return nil, err
	}
	v2, err := generatorV(n.Child2)
	if err != nil {
		return nil, err
	}

	off12, err := offDiagonalBlock(u1, n.B12, v2)
	if err != nil {
		return nil, err
	}
	off21, err := offDiagonalBlock(u2, n.B21, v1)
	if err != nil {
		return nil, err
	}

	top, err := linalg.HStack(f1, off12)
	if err != nil {
		return nil, err
	}
	bottom, err := linalg.HStack(off21, f2)
	if err != nil {
		return nil, err
	}

	return linalg.VStack(top, bottom)
}

// offDiagonalBlock computes U·B·Vᵀ, the reconstructed off-diagonal block
// between two sibling clusters.
func offDiagonalBlock(U, B, V *linalg.Dense) (*linalg.Dense, error) {
	ub, err := linalg.Gemm(false, false, U, B)
	if err != nil {
		return nil, err
	}

	return linalg.Gemm(false, true, ub, V)
}

// OffDiagonalRanks walks the tree and reports the (ru, rv) rank pair — the
// shape of B12 — at every branch, in pre-order.
func (n *Node) OffDiagonalRanks() [][2]int {
	if n.IsLeaf {
		return nil
	}

	out := [][2]int{{n.B12.Rows(), n.B12.Cols()}}
	out = append(out, n.Child1.OffDiagonalRanks()...)
	out = append(out, n.Child2.OffDiagonalRanks()...)

	return out
}
