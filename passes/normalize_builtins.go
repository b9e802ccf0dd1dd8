package passes

import (
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// builtinOps maps a PrimOpIntrinsic annotation's name to the PrimOpCode a
// Call against the annotated Function should become, letting a front end
// emit ordinary Call nodes against stub declarations for operators it
// cannot express as syntax (e.g. "shady_subgroup_elect") without the rest of
// the pipeline having to know about stub functions at all past this pass.
var builtinOps = map[string]ir.PrimOpCode{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul, "div": ir.OpDiv, "mod": ir.OpMod,
	"min": ir.OpMin, "max": ir.OpMax, "abs": ir.OpAbs, "sign": ir.OpSign,
	"floor": ir.OpFloor, "ceil": ir.OpCeil, "round": ir.OpRound, "fract": ir.OpFract,
	"sqrt": ir.OpSqrt, "rsqrt": ir.OpRsqrt, "exp": ir.OpExp, "log": ir.OpLog,
	"sin": ir.OpSin, "cos": ir.OpCos, "tan": ir.OpTan, "pow": ir.OpPow, "fma": ir.OpFma,
	"subgroup_broadcast_first": ir.OpSubgroupBroadcastFirst,
	"subgroup_ballot":          ir.OpSubgroupBallot,
	"subgroup_elect":           ir.OpSubgroupElect,
}

// NormalizeBuiltins replaces a Call whose callee is a
// Function annotated PrimOpIntrinsic is replaced by the corresponding
// PrimOp, so every later pass only ever has to pattern-match on PrimOpCode
// and never again needs to recognize a magic function name.
func NormalizeBuiltins(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	r := rewrite.New(src, dst, normalizeBuiltinsProcess)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func normalizeBuiltinsProcess(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	if ir.KindOf(n) != ir.KindCall {
		return DefaultRewrite(r, n)
	}
	p := n.Payload.(ir.CallPayload)
	fn, name, ok := calleeFunction(p.Callee)
	if !ok {
		return DefaultRewrite(r, n)
	}
	anno, ok := ir.FindAnnotation(fn.Annotations, ir.AnnoPrimOpIntrinsic)
	if !ok {
		return DefaultRewrite(r, n)
	}
	opName := name
	if anno.PayloadKind == ir.AnnotationValue && anno.Value != nil {
		if s, ok := anno.Value.Payload.(ir.StringLiteralPayload); ok {
			opName = s.Value
		}
	}
	op, ok := builtinOps[opName]
	if !ok {
		return DefaultRewrite(r, n)
	}
	dst := r.DstModule.Arena
	return ir.NewPrimOp(dst, op, nil, rewrite.RewriteNodes(r, p.Args))
}

func calleeFunction(callee *ir.Node) (*ir.FunctionPayload, string, bool) {
	switch p := callee.Payload.(type) {
	case ir.FnAddrPayload:
		if fn, ok := p.Fn.Payload.(*ir.FunctionPayload); ok {
			return fn, fn.Name, true
		}
	case ir.RefDeclPayload:
		if fn, ok := p.Decl.Payload.(*ir.FunctionPayload); ok {
			return fn, fn.Name, true
		}
	}
	return nil, "", false
}
