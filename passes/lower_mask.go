package passes

import (
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerMask is pipeline extension 13: it rewrites every Mask type node to
// the arena's configured subgroup-mask representation, a uint32 below a
// 32-wide subgroup and a uint64 above it. Mask-typed values only ever arise
// from subgroup_ballot and are only ever consumed by bitwise PrimOps and
// comparisons against it, all of which are already generic over their
// operand type, so substituting the type node is the entire rewrite: every
// producer and consumer picks up the new representation through the normal
// structural rewrite of its type operands.
func LowerMask(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	width := maskWidth(ctx)
	r := rewrite.New(src, dst, func(rr *rewrite.Rewriter, n *ir.Node) *ir.Node {
		if _, ok := n.Payload.(ir.MaskPayload); ok {
			return ir.IntType(rr.DstModule.Arena, width, false)
		}
		return DefaultRewriteTyped(rr, n)
	})
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func maskWidth(ctx *Context) int {
	if ctx.Config.SubgroupSize > 32 {
		return 64
	}
	return 32
}
