package passes

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LowerCallc is pipeline extension 14 ("callc -> split" in spec.md §4.5's
// closing paragraph): a Call already yields a single RecordType-typed value
// for a multi-return callee (ir.TypeOf's typeCall builds that record), and
// Extract already reads each field back out, so the only backend-visible
// shape that needs to change is the callee's own signature: a function
// declared with more than one ReturnTypes entry is rewritten to declare a
// single RecordType{Special: RecordMultipleReturn} return instead, and every
// Return inside its body packs its Args into that record. Call sites and
// their Extracts are untouched by construction.
func LowerCallc(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &callcLowerer{ctx: ctx}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type callcLowerer struct {
	ctx *Context
	// packed tracks, per nesting level of Function currently being rewritten,
	// the single packed RecordType its Return terminators must target; nil
	// for a function whose return arity did not change.
	packed []*ir.Node
}

func (l *callcLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	switch p := n.Payload.(type) {
	case *ir.FunctionPayload:
		return l.rewriteFunction(r, n, p)
	case ir.ReturnPayload:
		return l.rewriteReturn(r, p)
	default:
		return DefaultRewriteTyped(r, n)
	}
}

func (l *callcLowerer) rewriteReturn(r *rewrite.Rewriter, p ir.ReturnPayload) *ir.Node {
	dst := r.DstModule.Arena
	if len(l.packed) == 0 || l.packed[len(l.packed)-1] == nil {
		return retype(dst, ir.NewReturn(dst, rewrite.RewriteNodes(r, p.Args)))
	}
	rt := l.packed[len(l.packed)-1]
	args := rewrite.RewriteNodes(r, p.Args)
	packed := typed(dst, ir.NewComposite(dst, rt, args))
	return retype(dst, ir.NewReturn(dst, []*ir.Node{packed}))
}

func (l *callcLowerer) rewriteFunction(r *rewrite.Rewriter, n *ir.Node, p *ir.FunctionPayload) *ir.Node {
	dst := r.DstModule.Arena
	params := rewrite.RecreateParams(r, p.Params, func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dst, t, name) })
	returns := rewrite.RewriteNodes(r, p.ReturnTypes)

	var rt *ir.Node
	headerReturns := returns
	if len(returns) > 1 {
		names := make([]string, len(returns))
		for i := range names {
			names[i] = fmt.Sprintf("ret%d", i)
		}
		rt = ir.NewRecordType(dst, returns, names, ir.RecordMultipleReturn)
		headerReturns = []*ir.Node{rt}
	}

	header := ir.DeclareFunctionHeader(dst, p.Annotations, p.Name, params, headerReturns)
	rewrite.Memoize(r, n, header)

	l.packed = append(l.packed, rt)
	if p.Body != nil {
		ir.PopulateFunctionBody(header, rewrite.RewriteNode(r, p.Body))
	}
	l.packed = l.packed[:len(l.packed)-1]
	return header
}
