package passes

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerSubgroup is pipeline step 9: on a target whose subgroup_broadcast_first
// primitive only covers scalars (every dialect in emit/cfamily except a
// handful of ISPC/CUDA intrinsics), a broadcast of a composite value is
// synthesized as a per-type helper function that extracts each field,
// recursively broadcasts it, and recomposes the result — the same
// decompose-and-recurse shape hhramberg-go-vslc's code generator uses to
// synthesize a helper per aggregate type it encounters, rather than
// special-casing every shape inline at each call site.
//
// Helper synthesis is memoized per structural type, so every broadcast of
// the same composite shape within one LowerSubgroup call reuses one helper.
// The memo (a mutex-guarded map plus a singleflight group) belongs to that
// call's subgroupLowerer; separate calls, concurrent test cases included,
// never share helpers.
func LowerSubgroup(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &subgroupLowerer{ctx: ctx, dst: dst, helpers: make(map[string]*ir.Node)}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type subgroupLowerer struct {
	ctx     *Context
	dst     *ir.Module
	group   singleflight.Group
	mu      sync.Mutex
	helpers map[string]*ir.Node // structural element-type key -> synthesized helper Function
	serial  int
}

func (l *subgroupLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	p, ok := n.Payload.(ir.PrimOpPayload)
	if !ok || p.Op != ir.OpSubgroupBroadcastFirst {
		return DefaultRewriteTyped(r, n)
	}
	dst := r.DstModule.Arena
	operand := rewrite.RewriteNode(r, p.Operands[0])
	elemType := ir.Inner(operand.Type)
	if !needsSubgroupEmulation(elemType) {
		return DefaultRewriteTyped(r, n)
	}
	helper := l.ensureHelper(elemType)
	callee := typed(dst, ir.NewFnAddr(dst, helper))
	return typed(dst, ir.NewCall(dst, callee, []*ir.Node{operand}))
}

// needsSubgroupEmulation reports whether t is a shape subgroup_broadcast_first
// has no native encoding for: every target's ISA broadcasts a scalar lane
// directly, but a record/pack/array must be decomposed.
func needsSubgroupEmulation(t *ir.Node) bool {
	switch t.Payload.(type) {
	case ir.RecordTypePayload, ir.PackTypePayload, ir.ArrTypePayload:
		return true
	default:
		return false
	}
}

func (l *subgroupLowerer) ensureHelper(t *ir.Node) *ir.Node {
	key := fmt.Sprintf("%d|%s", t.Kind, t.Payload.StructuralKey())

	l.mu.Lock()
	if h, ok := l.helpers[key]; ok {
		l.mu.Unlock()
		return h
	}
	l.mu.Unlock()

	v, _, _ := l.group.Do(key, func() (interface{}, error) {
		l.mu.Lock()
		if h, ok := l.helpers[key]; ok {
			l.mu.Unlock()
			return h, nil
		}
		l.serial++
		name := fmt.Sprintf("__subgroup_broadcast_first_%d", l.serial)
		l.mu.Unlock()

		dst := l.dst.Arena
		paramType := ir.VaryingType(dst, t)
		param := ir.NewParam(dst, paramType, "v")
		header := ir.DeclareFunctionHeader(dst, []ir.Annotation{{Name: ir.AnnoGenerated}}, name, []*ir.Node{param}, []*ir.Node{t})
		result := broadcastExpr(dst, param, t)
		ir.PopulateFunctionBody(header, typed(dst, ir.NewReturn(dst, []*ir.Node{result})))
		l.dst.AddDecl(header)

		l.mu.Lock()
		l.helpers[key] = header
		l.mu.Unlock()
		return header, nil
	})
	return v.(*ir.Node)
}

// broadcastExpr recursively decomposes a composite value and applies the
// scalar broadcast primitive to every leaf field, recomposing the result in
// the same shape.
func broadcastExpr(dst *arena.Arena, v *ir.Node, t *ir.Node) *ir.Node {
	switch p := t.Payload.(type) {
	case ir.RecordTypePayload:
		fields := make([]*ir.Node, len(p.Members))
		for i, m := range p.Members {
			idx := ir.NewIntLiteral(dst, 32, false, uint64(i))
			extracted := typed(dst, ir.NewPrimOp(dst, ir.OpExtract, nil, []*ir.Node{v, idx}))
			fields[i] = broadcastExpr(dst, extracted, m)
		}
		return typed(dst, ir.NewComposite(dst, t, fields))

	case ir.PackTypePayload:
		fields := make([]*ir.Node, p.Width)
		for i := 0; i < p.Width; i++ {
			idx := ir.NewIntLiteral(dst, 32, false, uint64(i))
			extracted := typed(dst, ir.NewPrimOp(dst, ir.OpExtract, nil, []*ir.Node{v, idx}))
			fields[i] = broadcastExpr(dst, extracted, p.Elem)
		}
		return typed(dst, ir.NewComposite(dst, t, fields))

	case ir.ArrTypePayload:
		n, ok := constIntLiteral(p.Size)
		if !ok {
			// Unsized arrays cannot be decomposed into a fixed helper body;
			// the plain broadcast primitive is applied to the whole value.
			return typed(dst, ir.NewPrimOp(dst, ir.OpSubgroupBroadcastFirst, nil, []*ir.Node{v}))
		}
		fields := make([]*ir.Node, n)
		for i := uint64(0); i < n; i++ {
			idx := ir.NewIntLiteral(dst, 32, false, i)
			extracted := typed(dst, ir.NewPrimOp(dst, ir.OpExtract, nil, []*ir.Node{v, idx}))
			fields[i] = broadcastExpr(dst, extracted, p.Elem)
		}
		return typed(dst, ir.NewComposite(dst, t, fields))

	default:
		return typed(dst, ir.NewPrimOp(dst, ir.OpSubgroupBroadcastFirst, nil, []*ir.Node{v}))
	}
}
