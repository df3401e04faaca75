// Package task implements a small fork-join recursion harness used by the
// hss package to parallelize work across the two children of an HSS tree
// node. It bounds fan-out by depth rather than by node count, since the
// tree's branching factor is fixed at two: past MaxSplitDepth, children run
// synchronously in the caller's goroutine instead of spawning new ones.
package task

import (
	"errors"
	"math"

	"golang.org/x/sync/errgroup"
)

// ErrNilFunc is returned by Spawn when given a nil work function.
var ErrNilFunc = errors.New("task: work function must not be nil")

// Context carries the recursion depth and the depth at which fan-out stops.
// It is propagated down an HSS tree traversal via Child, not shared between
// sibling subtrees.
type Context struct {
	MaxSplitDepth int
	Depth         int
}

// NewContext derives a Context whose MaxSplitDepth keeps the number of
// concurrently live goroutines within a small constant factor of workers.
// A binary recursion tree of depth d spawns at most 2^d goroutines, so
// MaxSplitDepth = ceil(log2(workers)) + 1 gives the tree one extra level of
// slack over the worker count.
func NewContext(workers int) Context {
	if workers < 1 {
		workers = 1
	}
	depth := int(math.Ceil(math.Log2(float64(workers)))) + 1
	if depth < 1 {
		depth = 1
	}

	return Context{MaxSplitDepth: depth, Depth: 0}
}

// Child returns the Context to pass to one level of recursion deeper.
func (c Context) Child() Context {
	return Context{MaxSplitDepth: c.MaxSplitDepth, Depth: c.Depth + 1}
}

// parallel reports whether this Context's depth still permits spawning a new
// goroutine rather than deferring the work to the caller.
func (c Context) parallel() bool {
	return c.Depth < c.MaxSplitDepth
}

// Handle represents a unit of work that was either spawned onto a goroutine
// or deferred for synchronous execution in Fetch.
type Handle interface {
	fetch() (interface{}, error)
}

// deferredHandle runs its work synchronously the first time Fetch is called.
type deferredHandle struct {
	f func() (interface{}, error)
}

func (d *deferredHandle) fetch() (interface{}, error) {
	return d.f()
}

// parallelHandle wraps a goroutine started via an errgroup.Group.
type parallelHandle struct {
	group  *errgroup.Group
	result interface{}
	err    error
}

func (p *parallelHandle) fetch() (interface{}, error) {
	groupErr := p.group.Wait()
	if groupErr != nil {
		return nil, groupErr
	}

	return p.result, p.err
}

// Spawn starts f, running it on a new goroutine while ctx still has fan-out
// budget, and deferring it to run inline on Fetch otherwise. The returned
// Handle must be passed to Fetch exactly once.
func Spawn(ctx Context, f func() (interface{}, error)) (Handle, error) {
	if f == nil {
		return nil, ErrNilFunc
	}

	if !ctx.parallel() {
		return &deferredHandle{f: f}, nil
	}

	ph := &parallelHandle{group: &errgroup.Group{}}
	ph.group.Go(func() error {
		res, err := f()
		ph.result = res
		ph.err = err

		return err
	})

	return ph, nil
}

// Fetch blocks until h's work has completed and returns its result.
func Fetch(h Handle) (interface{}, error) {
	if h == nil {
		return nil, nil
	}

	return h.fetch()
}

// Wait blocks until h's work has completed, discarding its result.
func Wait(h Handle) error {
	_, err := Fetch(h)

	return err
}

// runBoth is a convenience used by callers that always need both children's
// results together; it spawns the first, runs the second in the calling
// goroutine, then fetches the first. Kept as a free function rather than a
// Context method since it owns no state of its own.
func runBoth(ctx Context, left, right func() (interface{}, error)) (interface{}, interface{}, error) {
	lh, err := Spawn(ctx, left)
	if err != nil {
		return nil, nil, err
	}

	rRes, rErr := right()
	if rErr != nil {
		_, _ = Fetch(lh)
		return nil, nil, rErr
	}

	lRes, lErr := Fetch(lh)
	if lErr != nil {
		return nil, nil, lErr
	}

	return lRes, rRes, nil
}

// RunBoth spawns left under ctx.Child() and runs right inline, returning
// both results once each has finished. It is the primary entry point used
// by the hss package to fan out across the two children of a tree node.
func RunBoth(ctx Context, left, right func() (interface{}, error)) (interface{}, interface{}, error) {
	return runBoth(ctx.Child(), left, right)
}
