package passes

import (
	"github.com/TheJackiMonster/shady/internal/diag"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// cfLowerer threads the enclosing structured construct's merge targets
// through the rewrite, the way binder threads lexical scope: a
// MergeSelection/MergeContinue/MergeBreak/Join has no target of its own, it
// always resolves against whichever If/Match/Loop/Control most tightly
// encloses it, so the lowering needs a stack rather than a single field.
type cfLowerer struct {
	ctx  *Context
	sel  []ir.AbstractionRef // top: enclosing If/Match's Tail
	body []ir.AbstractionRef // top: enclosing Loop's Body (continue target)
	loop []ir.AbstractionRef // top: enclosing Loop's Tail (break target)
	join map[*ir.Node]ir.AbstractionRef
}

// LowerCF rewrites every structured construct (If,
// Match, Loop, Control) and its matching merge terminator
// (MergeSelection/MergeContinue/MergeBreak, Join) is rewritten into a plain
// Branch/Switch/Jump CFG, the unstructured form every subsequent pass (and
// passes.Restructurize, which rebuilds structure only where a target
// dialect needs it) operates on.
func LowerCF(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	l := &cfLowerer{ctx: ctx, join: make(map[*ir.Node]ir.AbstractionRef)}
	r := rewrite.New(src, dst, l.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

func (l *cfLowerer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	rw := func(x *ir.Node) *ir.Node { return rewrite.RewriteNode(r, x) }
	rws := func(xs []*ir.Node) []*ir.Node { return rewrite.RewriteNodes(r, xs) }

	switch p := n.Payload.(type) {
	case ir.IfPayload:
		tail := rw(p.Tail)
		l.sel = append(l.sel, tail)
		trueNew := rw(p.True)
		var falseJumpTarget ir.AbstractionRef
		if p.False != nil {
			falseJumpTarget = rw(p.False)
		} else {
			falseJumpTarget = tail
		}
		l.sel = l.sel[:len(l.sel)-1]
		cond := rw(p.Cond)
		trueJump := retype(dst, ir.NewJump(dst, trueNew, nil, nil))
		falseJump := retype(dst, ir.NewJump(dst, falseJumpTarget, nil, nil))
		return retype(dst, ir.NewBranch(dst, cond, trueJump, falseJump))

	case ir.MatchPayload:
		tail := rw(p.Tail)
		l.sel = append(l.sel, tail)
		caseJumps := make([]*ir.Node, len(p.Cases))
		for i, c := range p.Cases {
			caseJumps[i] = retype(dst, ir.NewJump(dst, rw(c), nil, nil))
		}
		var defJump *ir.Node
		if p.Default != nil {
			defJump = retype(dst, ir.NewJump(dst, rw(p.Default), nil, nil))
		} else {
			defJump = retype(dst, ir.NewJump(dst, tail, nil, nil))
		}
		l.sel = l.sel[:len(l.sel)-1]
		return retype(dst, ir.NewSwitch(dst, rw(p.Inspect), rws(p.Literals), caseJumps, defJump))

	case ir.MergeSelectionPayload:
		if len(l.sel) == 0 {
			l.ctx.Errors.Addf(diag.KindPass, "lower_cf", "", "merge_selection outside any If/Match")
			return retype(dst, ir.NewUnreachable(dst))
		}
		return retype(dst, ir.NewJump(dst, l.sel[len(l.sel)-1], rws(p.Args), nil))

	case ir.LoopPayload:
		initialArgs := rws(p.InitialArgs)
		tail := rw(p.Tail)
		bodyOld := p.Body
		bp := bodyOld.Payload.(*ir.BasicBlockPayload)
		params := rewrite.RecreateParams(r, bp.Params, func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dst, t, name) })
		bodyHeader := ir.DeclareBasicBlockHeader(dst, params, bp.Name)
		rewrite.Memoize(r, bodyOld, bodyHeader)

		l.body = append(l.body, bodyHeader)
		l.loop = append(l.loop, tail)
		if bp.Body != nil {
			ir.PopulateBasicBlockBody(bodyHeader, rw(bp.Body))
		}
		l.body = l.body[:len(l.body)-1]
		l.loop = l.loop[:len(l.loop)-1]

		return retype(dst, ir.NewJump(dst, bodyHeader, initialArgs, nil))

	case ir.MergeContinuePayload:
		if len(l.body) == 0 {
			l.ctx.Errors.Addf(diag.KindPass, "lower_cf", "", "merge_continue outside any Loop")
			return retype(dst, ir.NewUnreachable(dst))
		}
		return retype(dst, ir.NewJump(dst, l.body[len(l.body)-1], rws(p.Args), nil))

	case ir.MergeBreakPayload:
		if len(l.loop) == 0 {
			l.ctx.Errors.Addf(diag.KindPass, "lower_cf", "", "merge_break outside any Loop")
			return retype(dst, ir.NewUnreachable(dst))
		}
		return retype(dst, ir.NewJump(dst, l.loop[len(l.loop)-1], rws(p.Args), nil))

	case ir.ControlPayload:
		tail := rw(p.Tail)
		insideOld := p.Inside
		ip := insideOld.Payload.(*ir.BasicBlockPayload)
		if len(ip.Params) != 1 {
			l.ctx.Errors.Addf(diag.KindPass, "lower_cf", ip.Name, "control body must take exactly one join-point parameter")
			return retype(dst, ir.NewUnreachable(dst))
		}
		oldParam := ip.Params[0]
		oldParamPayload := oldParam.Payload.(ir.ParamPayload)
		newParam := ir.NewParam(dst, rw(oldParamPayload.DeclaredType), oldParamPayload.Name)
		rewrite.Memoize(r, oldParam, newParam)
		insideHeader := ir.DeclareBasicBlockHeader(dst, []*ir.Node{newParam}, ip.Name)
		rewrite.Memoize(r, insideOld, insideHeader)

		l.join[newParam] = tail
		if ip.Body != nil {
			ir.PopulateBasicBlockBody(insideHeader, rw(ip.Body))
		}
		delete(l.join, newParam)

		return retype(dst, ir.NewJump(dst, insideHeader, nil, nil))

	case ir.JoinPayload:
		jp := rw(p.JoinPoint)
		target, ok := l.join[jp]
		if !ok {
			l.ctx.Errors.Addf(diag.KindPass, "lower_cf", "", "join targets a point outside its enclosing Control")
			return retype(dst, ir.NewUnreachable(dst))
		}
		return retype(dst, ir.NewJump(dst, target, rws(p.Args), nil))

	default:
		return DefaultRewriteTyped(r, n)
	}
}
