package passes

import (
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerStack is pipeline extension 12: it rewrites StackAlloc, PushStack and
// PopStack into explicit pointer arithmetic against GetStackPointer/
// SetStackPointer, for targets without a native per-invocation alloca. Those
// two ops are left as the intrinsic the emitter maps onto whatever the
// target actually uses to track a stack top (a thread-local variable for
// emit/cfamily, a scratch-memory offset built-in for emit/spirv); this pass
// only needs to express allocation and (de)allocation in terms of them.
//
// per_thread_stack_size/per_subgroup_stack_size (CompilerConfig) bound how
// large the backing buffer GetStackPointer's target ultimately is; this
// pass does not itself need either value; it only ever moves the pointer
// relative to its current position.
//
// Known gap: the PtrArrayElementOffset nodes built here target the Private
// address space directly and are not revisited by lower_lea, which the
// pipeline runs earlier. The pipeline adds this pass only when
// EmulatePhysicalMemory is set, and that setting marks Private (a physical
// space) Emulated, so these nodes always reach the emitter un-lowered;
// emit/cfamily and emit/spirv both print a raw PtrArrayElementOffset.
func LowerStack(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &stackLowerer{ctx: ctx}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type stackLowerer struct{ ctx *Context }

func (l *stackLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena

	switch p := n.Payload.(type) {
	case ir.StackAllocPayload:
		t := rewrite.RewriteNode(r, p.Type)
		sz, err := byteSizeOf(t)
		if err != nil {
			l.ctx.Errors.Add(diag.KindPass, "lower_stack", ir.Print(n), err)
			return DefaultRewriteTyped(r, n)
		}
		cur := typed(dst, ir.NewGetStackPointer(dst))
		bumped := typed(dst, ir.NewPtrArrayElementOffset(dst, cur, ir.NewIntLiteral(dst, leaPointerWidth, false, sz)))
		bump := typed(dst, ir.NewSetStackPointer(dst, bumped))
		resultType := ir.NewPtrType(dst, t, arena.Private, false)
		result := typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{resultType}, []*ir.Node{cur}))
		return ir.NewBindIdentifiers(dst, nil, bump, result)

	case ir.PushStackPayload:
		value := rewrite.RewriteNode(r, p.Value)
		valueType := ir.Inner(value.Type)
		sz, err := byteSizeOf(valueType)
		if err != nil {
			l.ctx.Errors.Add(diag.KindPass, "lower_stack", ir.Print(n), err)
			return DefaultRewriteTyped(r, n)
		}
		cur := typed(dst, ir.NewGetStackPointer(dst))
		castPtr := typed(dst, ir.NewPrimOp(dst, ir.OpReinterpret, []*ir.Node{ir.NewPtrType(dst, valueType, arena.Private, false)}, []*ir.Node{cur}))
		store := typed(dst, ir.NewStore(dst, castPtr, value))
		bumped := typed(dst, ir.NewPtrArrayElementOffset(dst, cur, ir.NewIntLiteral(dst, leaPointerWidth, false, sz)))
		bump := typed(dst, ir.NewSetStackPointer(dst, bumped))
		return ir.NewBindIdentifiers(dst, nil, store, bump)

	case ir.PopStackPayload:
		t := rewrite.RewriteNode(r, p.Type)
		sz, err := byteSizeOf(t)
		if err != nil {
			l.ctx.Errors.Add(diag.KindPass, "lower_stack", ir.Print(n), err)
			return DefaultRewriteTyped(r, n)
		}
		cur := typed(dst, ir.NewGetStackPointer(dst))
		neg := ir.NewIntLiteral(dst, leaPointerWidth, true, uint64(-int64(sz)))
		retreated := typed(dst, ir.NewPtrArrayElementOffset(dst, cur, neg))
		return typed(dst, ir.NewSetStackPointer(dst, retreated))

	default:
		return DefaultRewriteTyped(r, n)
	}
}
