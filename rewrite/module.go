package rewrite

import "github.com/TheJackiMonster/shady/ir"

// RewriteModule drives one pass across every top-level declaration of
// r.SrcModule, in source order, appending each result to r.DstModule.
//
// Order is preserved because declaration order is part of a module's
// observable identity (stable codegen, stable diagnostics); nothing here
// reorders decls the way a naive map-keyed rewrite could.
//
// A Process implementing a nominal declaration (Function, BasicBlock,
// Constant, GlobalVariable, NominalType) must call Memoize(r, n, header)
// with the freshly declared header *before* rewriting that declaration's
// body/value/init, so a reference encountered while walking the body
// (directly recursive, or arriving via a mutually recursive sibling
// rewritten earlier in this same loop) resolves to the header rather than
// re-entering Process and recursing forever.
func RewriteModule(r *Rewriter) {
	for _, decl := range r.SrcModule.Decls {
		out := RewriteNode(r, decl)
		if out != nil {
			r.DstModule.AddDecl(out)
		}
	}
}

// RecreateNodeIdentity forces n to be re-rewritten even if it was already
// memoized, returning the new replacement and overwriting the memo entry.
// This gives a caller a second, independently rewritten copy of a source
// node that was already rewritten once.
func RecreateNodeIdentity(r *Rewriter, n *ir.Node) *ir.Node {
	delete(r.memo, n)
	return RewriteNode(r, n)
}

// RecreateParams rebuilds a parameter list as fresh Param nodes carrying
// rewritten declared types, memoizing each old Param to its replacement so
// the body can be walked afterward and resolve references to them. This is
// the common first step of rewriting a Function/BasicBlock header.
// newParam is typically a closure over the destination arena, e.g.
// func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dstArena, t, name) }.
func RecreateParams(r *Rewriter, params []*ir.Node, newParam func(declaredType *ir.Node, name string) *ir.Node) []*ir.Node {
	out := make([]*ir.Node, len(params))
	for i, p := range params {
		old := p.Payload.(ir.ParamPayload)
		fresh := newParam(RewriteNode(r, old.DeclaredType), old.Name)
		Memoize(r, p, fresh)
		out[i] = fresh
	}
	return out
}
