// Package rewrite implements the generic module-to-module rewrite pass
// shape every entry in the lowering pipeline is built from: a source arena
// and module are walked node by node, each node is handed to a caller
// process function, and the results are memoized by source node identity so
// a node referenced from multiple places is rewritten exactly once and
// shared afterwards, the same way ssa.rename's replacement map guarantees a
// lifted Alloc is renamed consistently at every use.
package rewrite

import (
	"github.com/TheJackiMonster/shady/ir"
)

// ProcessFunc rewrites one source node into its destination-arena
// replacement. Implementations call back into RewriteNode/RewriteNodes for
// any operand they want rewritten recursively, and the ir package's
// New*/Declare* constructors on r.DstModule.Arena to build the replacement.
//
// A ProcessFunc that has no special handling for n's kind should return
// passes.DefaultRewrite(r, n) so unhandled kinds still get a structural copy.
type ProcessFunc func(r *Rewriter, n *ir.Node) *ir.Node

// Rewriter carries one rewrite pass's state: the source/destination arenas
// and modules, the process callback, and the per-node memo table. A Process
// function that needs a temporary nested scope (e.g. passes.LiftEverything
// rewriting a lifted block's body) creates a NewChildRewriter instead of
// mutating the parent's memo directly.
type Rewriter struct {
	SrcModule *ir.Module
	DstModule *ir.Module
	Process   ProcessFunc

	parent *Rewriter
	memo   map[*ir.Node]*ir.Node
}

// New creates the top-level Rewriter for one pass over srcModule, producing
// dstModule.
func New(srcModule, dstModule *ir.Module, process ProcessFunc) *Rewriter {
	return &Rewriter{
		SrcModule: srcModule,
		DstModule: dstModule,
		Process:   process,
		memo:      make(map[*ir.Node]*ir.Node),
	}
}

// NewChildRewriter derives a Rewriter that shares r's modules and process
// function but starts with an empty memo layered over r's: a lookup that
// misses in the child falls back to the parent, but everything the child
// rewrites is private to it. passes.LiftEverything uses this to give each
// lifted basic block its own memo, mapping the outside values the block
// uses to its fresh parameters.
func NewChildRewriter(r *Rewriter) *Rewriter {
	return &Rewriter{
		SrcModule: r.SrcModule,
		DstModule: r.DstModule,
		Process:   r.Process,
		parent:    r,
		memo:      make(map[*ir.Node]*ir.Node),
	}
}

// lookup walks the memo chain from child to root.
func (r *Rewriter) lookup(n *ir.Node) (*ir.Node, bool) {
	for cur := r; cur != nil; cur = cur.parent {
		if got, ok := cur.memo[n]; ok {
			return got, true
		}
	}
	return nil, false
}

// RewriteNode returns the destination-arena replacement for n, computing and
// memoizing it via r.Process on first request. Calling RewriteNode twice
// for the same n (by identity) returns the same *ir.Node both times, which
// is what keeps diamond-shaped references (two paths reaching the same
// operand) from being rewritten into two divergent copies.
func RewriteNode(r *Rewriter, n *ir.Node) *ir.Node {
	if n == nil {
		return nil
	}
	if got, ok := r.lookup(n); ok {
		return got
	}
	out := r.Process(r, n)
	r.memo[n] = out
	return out
}

// RewriteNodes rewrites a slice of operands in order.
func RewriteNodes(r *Rewriter, ns []*ir.Node) []*ir.Node {
	if ns == nil {
		return nil
	}
	out := make([]*ir.Node, len(ns))
	for i, n := range ns {
		out[i] = RewriteNode(r, n)
	}
	return out
}

// Memoize records that src rewrites to dst without running r.Process,
// letting a two-phase declaration rewrite (see RewriteModule) register a
// Function/BasicBlock/Constant/NominalType header before its body is walked,
// so a recursive reference encountered while rewriting the body resolves to
// the already-declared header instead of recursing into Process again.
func Memoize(r *Rewriter, src, dst *ir.Node) {
	r.memo[src] = dst
}
