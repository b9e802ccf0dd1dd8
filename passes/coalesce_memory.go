package passes

import (
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// CoalesceMemory is pipeline extension 16: it recognizes the narrow but
// common pattern of two adjacent let-bound Load/Store pairs copying
// consecutive scalar elements from one base pointer to another and fuses
// them into a single CopyBytes, the kind of wider-transaction rewrite that
// pays off under the SPIR-V/Vulkan memory model (a target unlikely to
// benefit, e.g. one with no block-copy intrinsic at all, simply omits this
// pass). It is intentionally conservative: only exactly two statements,
// same base pointer, constant offsets one element apart on both the
// source and destination side, and identical element type. Anything wider
// or less regular is left for a future pass to generalize rather than
// guessed at speculatively here.
func CoalesceMemory(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	c := &memoryCoalescer{ctx: ctx}
	r := rewrite.New(src, dst, c.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type memoryCoalescer struct{ ctx *Context }

func (c *memoryCoalescer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	p, ok := n.Payload.(ir.BindIdentifiersPayload)
	if !ok {
		return DefaultRewriteTyped(r, n)
	}
	if fused, ok := c.tryFuse(r, p); ok {
		return fused
	}
	return DefaultRewriteTyped(r, n)
}

type storeOfLoad struct{ dstPtr, srcPtr *ir.Node }

func asStoreOfLoad(v *ir.Node) (storeOfLoad, bool) {
	sp, ok := v.Payload.(ir.StorePayload)
	if !ok {
		return storeOfLoad{}, false
	}
	lp, ok := sp.Value.Payload.(ir.LoadPayload)
	if !ok {
		return storeOfLoad{}, false
	}
	return storeOfLoad{dstPtr: sp.Ptr, srcPtr: lp.Ptr}, true
}

// decomposeOffset reports ptr's base pointer, constant element offset and
// pointee element type if ptr is a PtrArrayElementOffset by a constant.
func decomposeOffset(ptr *ir.Node) (base *ir.Node, offset uint64, elem *ir.Node, ok bool) {
	pp, ok := ptr.Payload.(ir.PtrArrayElementOffsetPayload)
	if !ok {
		return nil, 0, nil, false
	}
	lit, ok := pp.Offset.Payload.(ir.IntLiteralPayload)
	if !ok {
		return nil, 0, nil, false
	}
	pt, ok := ir.Inner(pp.Ptr.Type).Payload.(ir.PtrTypePayload)
	if !ok {
		return nil, 0, nil, false
	}
	return pp.Ptr, lit.Value, pt.Pointee, true
}

func sameStructuralType(a, b *ir.Node) bool {
	return ir.KindOf(a) == ir.KindOf(b) && a.Payload.StructuralKey() == b.Payload.StructuralKey()
}

func (c *memoryCoalescer) tryFuse(r *rewrite.Rewriter, p ir.BindIdentifiersPayload) (*ir.Node, bool) {
	inner, ok := p.Body.Payload.(ir.BindIdentifiersPayload)
	if !ok {
		return nil, false
	}
	s0, ok := asStoreOfLoad(p.Value)
	if !ok {
		return nil, false
	}
	s1, ok := asStoreOfLoad(inner.Value)
	if !ok {
		return nil, false
	}

	dstBase0, dstOff0, elem0, ok := decomposeOffset(s0.dstPtr)
	if !ok {
		return nil, false
	}
	dstBase1, dstOff1, elem1, ok := decomposeOffset(s1.dstPtr)
	if !ok || dstBase0 != dstBase1 || !sameStructuralType(elem0, elem1) || dstOff1 != dstOff0+1 {
		return nil, false
	}
	srcBase0, srcOff0, _, ok := decomposeOffset(s0.srcPtr)
	if !ok {
		return nil, false
	}
	srcBase1, srcOff1, _, ok := decomposeOffset(s1.srcPtr)
	if !ok || srcBase0 != srcBase1 || srcOff1 != srcOff0+1 {
		return nil, false
	}

	elemSize, err := byteSizeOf(elem0)
	if err != nil {
		return nil, false
	}

	dst := r.DstModule.Arena
	dstPtr := rewrite.RewriteNode(r, s0.dstPtr)
	srcPtr := rewrite.RewriteNode(r, s0.srcPtr)
	count := ir.NewIntLiteral(dst, 32, false, 2*elemSize)
	copyBytes := typed(dst, ir.NewCopyBytes(dst, dstPtr, srcPtr, count))
	rest := rewrite.RewriteNode(r, inner.Body)
	return ir.NewBindIdentifiers(dst, nil, copyBytes, rest), true
}
