package passes

import (
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerDecay is pipeline step 11: ptr(array_of(T, ?)) decays to ptr(T)
// wherever it appears as a type — parameters, globals, and the pointer
// operand/result types of every pointer-producing op — for targets whose
// native pointer representation carries no bounds, only an address (this
// is what makes decay distinct from lower_lea's emulated-arithmetic
// rewrite: an unsized array's pointee simply stops existing as a distinct
// shape once decayed, rather than being addressed through arithmetic).
//
// Open question resolved here (see DESIGN.md): decaying a record whose
// trailing member is itself an unsized array, then navigating to that
// member with PtrCompositeElement, is rejected with a verifier-style
// error rather than silently decaying the outer record's pointer too —
// the member's own element type is no longer recoverable from the
// decayed ptr(T) once the array dimension is gone.
func LowerDecay(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	d := &decayLowerer{ctx: ctx}
	r := rewrite.New(src, dst, d.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type decayLowerer struct{ ctx *Context }

func (d *decayLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena

	switch p := n.Payload.(type) {
	case ir.PtrTypePayload:
		if at, ok := p.Pointee.Payload.(ir.ArrTypePayload); ok && at.Size == nil {
			elem := rewrite.RewriteNode(r, at.Elem)
			return ir.NewPtrType(dst, elem, p.AddressSpace, p.IsReference)
		}
		return DefaultRewrite(r, n)

	case ir.PtrCompositeElement:
		if d.navigatesTrailingUnsizedField(p) {
			d.ctx.Errors.Addf(diag.KindPass, "lower_decay", ir.Print(n),
				"decay_unsized_arrays: cannot navigate to a record's trailing unsized-array field once its pointer has decayed")
			return DefaultRewriteTyped(r, n)
		}
		return DefaultRewriteTyped(r, n)

	default:
		return DefaultRewriteTyped(r, n)
	}
}

func (d *decayLowerer) navigatesTrailingUnsizedField(p ir.PtrCompositeElement) bool {
	ptSrc, ok := ir.Inner(p.Ptr.Type).Payload.(ir.PtrTypePayload)
	if !ok {
		return false
	}
	rt, ok := ptSrc.Pointee.Payload.(ir.RecordTypePayload)
	if !ok || len(rt.Members) == 0 {
		return false
	}
	last := rt.Members[len(rt.Members)-1]
	at, ok := last.Payload.(ir.ArrTypePayload)
	if !ok || at.Size != nil {
		return false
	}
	i, ok := constIntLiteral(p.Index)
	return ok && int(i) == len(rt.Members)-1
}
