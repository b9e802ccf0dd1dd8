package passes

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// leaPointerWidth is the bit width lower_lea and lower_stack use for any
// integer they synthesize to carry an address. ir.bitWidth hardcodes 64 for
// every PtrType regardless of arena.Config.PointerWidth (see its comment in
// typing.go), so a Reinterpret between a pointer and an integer only
// type-checks against a 64-bit integer; Config.PointerWidth instead governs
// what emit/cfamily and emit/spirv choose as the *native* address width when
// they print this arithmetic, not what ir.TypeOf accepts here.
const leaPointerWidth = 64

// LowerLEA is pipeline step 10: it rewrites PtrArrayElementOffset and
// PtrCompositeElement into explicit reinterpret-to-integer, add, and
// reinterpret-back-to-pointer arithmetic for any address space the target
// marks Emulated (or the Generic space, which every target must emulate by
// definition, since it is never itself a storage class). Every other
// address space keeps the structural op, since the target's own
// instruction set already expresses it.
func LowerLEA(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &leaLowerer{ctx: ctx}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type leaLowerer struct{ ctx *Context }

func (l *leaLowerer) emulated(as ir.AddressSpace) bool {
	if as == arena.Generic {
		return true
	}
	info, ok := l.ctx.Config.AddressSpaces[as]
	return ok && info.Emulated
}

func (l *leaLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena

	switch p := n.Payload.(type) {
	case ir.PtrArrayElementOffsetPayload:
		ptSrc, ok := ir.Inner(p.Ptr.Type).Payload.(ir.PtrTypePayload)
		if !ok || !l.emulated(ptSrc.AddressSpace) {
			return DefaultRewriteTyped(r, n)
		}
		stride := ptSrc.Pointee
		if at, ok := stride.Payload.(ir.ArrTypePayload); ok {
			stride = at.Elem
		} else if pk, ok := stride.Payload.(ir.PackTypePayload); ok {
			stride = pk.Elem
		}
		elemSize, err := byteSizeOf(stride)
		if err != nil {
			l.ctx.Errors.Add(diag.KindPass, "lower_lea", ir.Print(n), err)
			return DefaultRewriteTyped(r, n)
		}
		ptr := rewrite.RewriteNode(r, p.Ptr)
		offset := rewrite.RewriteNode(r, p.Offset)
		byteOffset := mulByConst(dst, offset, elemSize)
		resultPointee := rewrite.RewriteNode(r, ptSrc.Pointee)
		return applyByteOffset(dst, ptr, ptSrc.AddressSpace, byteOffset, resultPointee)

	case ir.PtrCompositeElement:
		ptSrc, ok := ir.Inner(p.Ptr.Type).Payload.(ir.PtrTypePayload)
		if !ok || !l.emulated(ptSrc.AddressSpace) {
			return DefaultRewriteTyped(r, n)
		}
		elemTypeSrc, byteOffset, err := memberOffset(r, ptSrc.Pointee, p.Index)
		if err != nil {
			l.ctx.Errors.Add(diag.KindPass, "lower_lea", ir.Print(n), err)
			return DefaultRewriteTyped(r, n)
		}
		ptr := rewrite.RewriteNode(r, p.Ptr)
		resultPointee := rewrite.RewriteNode(r, elemTypeSrc)
		return applyByteOffset(dst, ptr, ptSrc.AddressSpace, byteOffset, resultPointee)

	default:
		return DefaultRewriteTyped(r, n)
	}
}

// memberOffset computes, in source-arena terms, the element type navigated
// to and a destination-arena byte-offset expression for indexing pointeeSrc
// by indexSrc, the same navigation navigateComposite performs for typing
// but producing an arithmetic expression rather than a type.
func memberOffset(r *rewrite.Rewriter, pointeeSrc, indexSrc *ir.Node) (*ir.Node, *ir.Node, error) {
	dst := r.DstModule.Arena
	switch p := pointeeSrc.Payload.(type) {
	case ir.RecordTypePayload:
		i, ok := constIntLiteral(indexSrc)
		if !ok || int(i) >= len(p.Members) {
			return nil, nil, fmt.Errorf("lower_lea: record field index must be a constant in range")
		}
		var off uint64
		for j := 0; j < int(i); j++ {
			sz, err := byteSizeOf(p.Members[j])
			if err != nil {
				return nil, nil, err
			}
			off += sz
		}
		return p.Members[i], ir.NewIntLiteral(dst, leaPointerWidth, false, off), nil

	case ir.PackTypePayload:
		sz, err := byteSizeOf(p.Elem)
		if err != nil {
			return nil, nil, err
		}
		idx := rewrite.RewriteNode(r, indexSrc)
		return p.Elem, mulByConst(dst, idx, sz), nil

	case ir.ArrTypePayload:
		sz, err := byteSizeOf(p.Elem)
		if err != nil {
			return nil, nil, err
		}
		idx := rewrite.RewriteNode(r, indexSrc)
		return p.Elem, mulByConst(dst, idx, sz), nil

	default:
		return nil, nil, fmt.Errorf("lower_lea: %v is not a navigable composite pointee", ir.KindOf(pointeeSrc))
	}
}

// byteSizeOf computes a source-arena type's size with simple sequential
// packing (no alignment padding) — good enough for every dialect this
// module emits to, all of which let a struct's own padding rules supply
// whatever alignment their ABI needs once the emitter prints the member
// list; this pass only needs byte offsets relative to the pointer, not the
// target's final in-memory layout.
func byteSizeOf(t *ir.Node) (uint64, error) {
	switch p := t.Payload.(type) {
	case ir.BoolPayload:
		return 1, nil
	case ir.IntPayload:
		return uint64(p.Width) / 8, nil
	case ir.FloatPayload:
		return uint64(p.Width) / 8, nil
	case ir.PtrTypePayload:
		return leaPointerWidth / 8, nil
	case ir.PackTypePayload:
		es, err := byteSizeOf(p.Elem)
		if err != nil {
			return 0, err
		}
		return es * uint64(p.Width), nil
	case ir.ArrTypePayload:
		if p.Size == nil {
			return 0, fmt.Errorf("lower_lea: size_of an unsized array")
		}
		n, ok := constIntLiteral(p.Size)
		if !ok {
			return 0, fmt.Errorf("lower_lea: array size must be a constant")
		}
		es, err := byteSizeOf(p.Elem)
		if err != nil {
			return 0, err
		}
		return es * n, nil
	case ir.RecordTypePayload:
		var total uint64
		for _, m := range p.Members {
			sz, err := byteSizeOf(m)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	default:
		return 0, fmt.Errorf("lower_lea: size_of unsupported type %v", ir.KindOf(t))
	}
}

// constIntLiteral reports the value of n if it is a constant IntLiteral.
func constIntLiteral(n *ir.Node) (uint64, bool) {
	p, ok := n.Payload.(ir.IntLiteralPayload)
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// mulByConst builds idx*c as a leaPointerWidth-wide unsigned multiply,
// converting idx up to that width first if it arrived narrower (array and
// record indices are typically int32).
func mulByConst(dst *arena.Arena, idx *ir.Node, c uint64) *ir.Node {
	wideType := ir.IntType(dst, leaPointerWidth, false)
	wide := typed(dst, ir.NewPrimOp(dst, ir.OpConvert, []*ir.Node{wideType}, []*ir.Node{idx}))
	lit := ir.NewIntLiteral(dst, leaPointerWidth, false, c)
	return typed(dst, ir.NewPrimOp(dst, ir.OpMul, nil, []*ir.Node{wide, lit}))
}

// applyByteOffset builds reinterpret(ptr, uintN) + byteOffset,
// reinterpret(_, ptr(resultPointee, as)), the standard GEP-to-arithmetic
// expansion used whenever as is emulated.
func applyByteOffset(dst *arena.Arena, ptr *ir.Node, as ir.AddressSpace, byteOffset, resultPointee *ir.Node) *ir.Node {
	intType := ir.IntType(dst, leaPointerWidth, false)
	raw := typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{intType}, []*ir.Node{ptr}))
	advanced := typed(dst, ir.NewPrimOp(dst, ir.OpAdd, nil, []*ir.Node{raw, byteOffset}))
	resultType := ir.NewPtrType(dst, resultPointee, as, false)
	return typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{resultType}, []*ir.Node{advanced}))
}
