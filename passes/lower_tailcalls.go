package passes

import (
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerTailCalls is pipeline extension 15: it rewrites TailCall into an
// ordinary Call immediately followed by a Return, for targets without tail
// -call support (every emit/cfamily dialect; SPIR-V has no tail-call
// instruction either). Included in the pipeline unconditionally turns every
// TailCall into this expansion; a target that does support tail calls
// simply omits this pass, the same on/off-by-inclusion convention every
// other pipeline-extension pass in this package follows.
func LowerTailCalls(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	r := rewrite.New(src, dst, func(rr *rewrite.Rewriter, n *ir.Node) *ir.Node {
		p, ok := n.Payload.(ir.TailCallPayload)
		if !ok {
			return DefaultRewriteTyped(rr, n)
		}
		dst := rr.DstModule.Arena
		callee := rewrite.RewriteNode(rr, p.Callee)
		args := rewrite.RewriteNodes(rr, p.Args)
		call := typed(dst, ir.NewCall(dst, callee, args))
		return retype(dst, ir.NewReturn(dst, returnArgsOf(dst, callee, call)))
	})
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

// returnArgsOf builds the Return arg list for a just-built Call: a single
// arg if callee returns zero or one value (the common case, and always the
// case once lower_callc has already packed a multi-return callee into one
// RecordType), otherwise one Extract per declared return, matching whatever
// arity callee's own FnType still advertises.
func returnArgsOf(dst *arena.Arena, callee, call *ir.Node) []*ir.Node {
	pt, ok := ir.Inner(callee.Type).Payload.(ir.PtrTypePayload)
	if !ok {
		return []*ir.Node{call}
	}
	ft, ok := pt.Pointee.Payload.(ir.FnTypePayload)
	if !ok || len(ft.Returns) <= 1 {
		return []*ir.Node{call}
	}
	args := make([]*ir.Node, len(ft.Returns))
	for i := range ft.Returns {
		idx := ir.NewIntLiteral(dst, 32, false, uint64(i))
		args[i] = typed(dst, ir.NewPrimOp(dst, ir.OpExtract, nil, []*ir.Node{call, idx}))
	}
	return args
}
