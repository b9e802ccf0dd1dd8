package passes

import (
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// binder carries one Bind pass's lexical scope stack, the way go/types'
// checker carries topScope for identifier lookups: a chain of maps, the
// front one searched first, pushed on entering a BindIdentifiers body and
// popped on leaving it.
type binder struct {
	ctx    *Context
	scopes []map[string]*ir.Node
}

func (b *binder) push() { b.scopes = append(b.scopes, make(map[string]*ir.Node)) }
func (b *binder) pop()  { b.scopes = b.scopes[:len(b.scopes)-1] }

func (b *binder) declare(name string, n *ir.Node) {
	b.scopes[len(b.scopes)-1][name] = n
}

func (b *binder) lookup(name string) (*ir.Node, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if n, ok := b.scopes[i][name]; ok {
			return n, true
		}
	}
	return nil, false
}

// Bind resolves every Unbound identifier produced by a
// front end is resolved against the enclosing lexical scope first, then
// against module-level declarations, and rewritten to whatever node it
// resolves to (a RefDecl-wrapped declaration, or a local Param/value node).
func Bind(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	b := &binder{ctx: ctx}
	b.push()
	defer b.pop()

	for _, decl := range src.Decls {
		b.declare(ir.DeclName(decl), decl)
	}

	r := rewrite.New(src, dst, b.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func (b *binder) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	switch ir.KindOf(n) {
	case ir.KindUnbound:
		name := n.Payload.(ir.UnboundPayload).Name
		if target, ok := b.lookup(name); ok {
			return rewrite.RewriteNode(r, target)
		}
		b.ctx.Errors.Addf(diag.KindPass, "bind", name, "unresolved identifier %q", name)
		return n
	case ir.KindBindIdentifiers:
		// Bind only resolves names against the new scope; it does not
		// drop the node, since a bound value may be a side-effecting
		// instruction (Store, Call, ...) whose program-order position
		// must survive even when its result is never named again.
		p := n.Payload.(ir.BindIdentifiersPayload)
		value := rewrite.RewriteNode(r, p.Value)
		b.push()
		for _, name := range p.Names {
			b.declare(name, value)
		}
		dst := r.DstModule.Arena
		body := rewrite.RewriteNode(r, p.Body)
		b.pop()
		return ir.NewBindIdentifiers(dst, p.Names, value, body)
	default:
		return DefaultRewrite(r, n)
	}
}
