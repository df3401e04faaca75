package hss

import (
	"github.com/katalvlaran/hss/hss/internal/task"
	"github.com/katalvlaran/hss/hss/linalg"
)

// gvNode mirrors the HSS tree during the upward pass of MatVec, caching
// each node's own gV = Vᵗ·x so the downward pass can consume a sibling's
// value without recomputing it.
type gvNode struct {
	gV             *linalg.Dense
	child1, child2 *gvNode
}

// MatVec computes y = hss·x via the two-pass traversal of §4.4: an upward
// contraction of V against x, then a downward expansion through U that
// threads coupling contributions between siblings.
func MatVec(n *Node, x *linalg.Dense, cfg Config) (*linalg.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if x.Rows() != n.Cols() {
		return nil, ErrDimensionMismatch
	}

	ctx := task.NewContext(cfg.Workers)
	gv, err := buildGV(n, x, 0, ctx)
	if err != nil {
		return nil, err
	}

	y := linalg.Zeros(n.Rows(), x.Cols())
	if err := downward(n, x, gv, nil, 0, 0, y, ctx); err != nil {
		return nil, err
	}

	return y, nil
}

// buildGV is the upward pass: at a leaf, gV = Vᵗ·x restricted to this
// node's column range. At a branch, this node's own gV — needed by its
// parent, since V = [V1·W1; V2·W2] — is W1ᵗ·gV1 + W2ᵗ·gV2. The root's own
// gV is left nil since no ancestor consumes it.
func buildGV(n *Node, x *linalg.Dense, colOffset int, ctx task.Context) (*gvNode, error) {
	if n.IsLeaf {
		xLeaf := x.RowRange(colOffset, n.Cols())
		gV, err := linalg.Gemm(true, false, n.V, xLeaf)
		if err != nil {
			return nil, err
		}

		return &gvNode{gV: gV}, nil
	}

	childCtx := ctx.Child()
	left, right, err := task.RunBoth(ctx,
		func() (interface{}, error) { return buildGV(n.Child1, x, colOffset, childCtx) },
		func() (interface{}, error) { return buildGV(n.Child2, x, colOffset+n.Sz1[1], childCtx) },
	)
	if err != nil {
		return nil, err
	}
	g1, g2 := left.(*gvNode), right.(*gvNode)

	out := &gvNode{child1: g1, child2: g2}
	if n.Root {
		return out, nil
	}

	w1g1, err := linalg.Gemm(true, false, n.W1, g1.gV)
	if err != nil {
		return nil, err
	}
	w2g2, err := linalg.Gemm(true, false, n.W2, g2.gV)
	if err != nil {
		return nil, err
	}
	out.gV, err = w1g1.Add(w2g2)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// downward is the expansion pass: fUIn is the incoming contribution from
// the parent (nil at the root, since it has none). At a branch, fUIn is
// distributed to the children through R1/R2 and summed with the coupling
// contribution from the sibling's gV; at a leaf, y = D·x + U·fUIn.
func downward(n *Node, x *linalg.Dense, gv *gvNode, fUIn *linalg.Dense, colOffset, rowOffset int, y *linalg.Dense, ctx task.Context) error {
	if n.IsLeaf {
		xLeaf := x.RowRange(colOffset, n.Cols())
		yLeaf, err := linalg.Gemm(false, false, n.D, xLeaf)
		if err != nil {
			return err
		}
		if fUIn != nil {
			contrib, err := linalg.Gemm(false, false, n.U, fUIn)
			if err != nil {
				return err
			}
			yLeaf, err = yLeaf.Add(contrib)
			if err != nil {
				return err
			}
		}
		y.SetSub(rowOffset, 0, yLeaf)

		return nil
	}

	c12gv2, err := linalg.Gemm(false, false, n.B12, gv.child2.gV)
	if err != nil {
		return err
	}
	c21gv1, err := linalg.Gemm(false, false, n.B21, gv.child1.gV)
	if err != nil {
		return err
	}

	fU1, fU2 := c12gv2, c21gv1
	if !n.Root {
		r1fu, err := linalg.Gemm(false, false, n.R1, fUIn)
		if err != nil {
			return err
		}
		fU1, err = r1fu.Add(c12gv2)
		if err != nil {
			return err
		}

		r2fu, err := linalg.Gemm(false, false, n.R2, fUIn)
		if err != nil {
			return err
		}
		fU2, err = r2fu.Add(c21gv1)
		if err != nil {
			return err
		}
	}

	childCtx := ctx.Child()
	_, _, err = task.RunBoth(ctx,
		func() (interface{}, error) {
			return nil, downward(n.Child1, x, gv.child1, fU1, colOffset, rowOffset, y, childCtx)
		},
		func() (interface{}, error) {
			return nil, downward(n.Child2, x, gv.child2, fU2, colOffset+n.Sz1[1], rowOffset+n.Sz1[0], y, childCtx)
		},
	)

	return err
}
