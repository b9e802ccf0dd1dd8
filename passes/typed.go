package passes

import (
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// retype fills n's Type by calling ir.TypeOf, the same cache-on-first-use
// step passes.Infer performs for every instruction/terminator it builds.
// Every pass that runs after Infer rebuilds its nodes in a fresh arena via
// DefaultRewrite's New*/Declare* calls, none of which set Type on their own
// (only literals, Params, and declaration headers do), so without this the
// cached type a later pass (or the emitter) reads would silently go nil
// the first time any pass touches a node. A TypeOf failure here is left for
// a later stage to surface rather than panicking mid-rewrite.
func retype(a *arena.Arena, n *ir.Node) *ir.Node {
	if n == nil || n.Type != nil {
		return n
	}
	// Type nodes are their own (meta) classification; ir.TypeOf is not
	// defined on them. Everything else (values, instructions, terminators,
	// declarations) either already carries a Type from construction, in
	// which case the guard above short-circuits, or genuinely needs one
	// derived here: FnAddr/RefDecl/Tuple/StringLiteral/Fill in particular
	// are never typed at construction time, so a rebuilt Call whose Callee
	// is one of those would otherwise read a nil Type two lines later.
	if ir.IsType(ir.KindOf(n)) {
		return n
	}
	if t, err := ir.TypeOf(a, n); err == nil {
		n.Type = t
	}
	return n
}

// DefaultRewriteTyped is DefaultRewrite with retype applied to the result.
// Every pass scheduled after passes.Infer in the pipeline should use this as
// its process function's default-case fallback instead of the bare
// DefaultRewrite.
func DefaultRewriteTyped(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	return retype(r.DstModule.Arena, DefaultRewrite(r, n))
}
