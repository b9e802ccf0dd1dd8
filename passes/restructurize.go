package passes

import (
	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// restructurizer rebuilds structured Loop/If constructs from the plain
// Jump/Branch CFG passes.LowerCF produced, for back ends (GLSL, and any
// dialect without a native unstructured branch) that can only target
// structured control flow. Loop recovery is grounded on the natural-loop
// analysis in package analysis (a back edge u->h exists whenever h
// dominates u); a loop with more than one distinct exit target is left
// unstructured rather than guessed at. If recovery only recognizes the
// shapes passes.LowerCF itself produces: a Branch whose arms either target
// the same tail directly, or each forward unconditionally to a common tail.
// Anything this pass does not recognize — an irreducible loop, a diamond
// with real work on one arm before reconverging — is left as plain
// Jump/Branch/Switch, which every downstream pass and both emitters already
// accept, so an unrecovered region is a missed simplification, never a
// correctness problem.
type restructurizer struct {
	ctx      *Context
	loopExit map[ir.AbstractionRef]ir.AbstractionRef
	active   map[ir.AbstractionRef]bool
	// stacks of (header, exit) for the Loop currently being rebuilt, so a
	// nested Loop's continue/break resolve against its own header/exit
	// rather than an enclosing one's.
	continueTo []ir.AbstractionRef
	breakTo    []ir.AbstractionRef
}

// Restructurize is the step following LowerCF in the lowering pipeline.
func Restructurize(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	rs := &restructurizer{
		ctx:      ctx,
		loopExit: make(map[ir.AbstractionRef]ir.AbstractionRef),
		active:   make(map[ir.AbstractionRef]bool),
	}
	rs.analyze(src)
	r := rewrite.New(src, dst, rs.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

// analyze finds every natural loop with exactly one distinct exit target
// across every function in src, before any rewriting starts: the recovery
// decision for a back edge has to see the whole loop body at once, which a
// single bottom-up rewrite.ProcessFunc call can't do on its own.
func (rs *restructurizer) analyze(src *ir.Module) {
	for _, decl := range src.Decls {
		fp, ok := decl.Payload.(*ir.FunctionPayload)
		if !ok || fp.Body == nil {
			continue
		}
		cfg := analysis.BuildCFG(decl, analysis.Config{})
		domTree := analysis.BuildDomTree(cfg)
		loopTree := analysis.BuildLoopTree(cfg, domTree)
		for header, loop := range loopTree.ByHeader {
			exits := make(map[ir.AbstractionRef]bool)
			for body := range loop.Body {
				for _, e := range cfg.Succs[body] {
					if !loop.Body[e.To] {
						exits[e.To] = true
					}
				}
			}
			if len(exits) != 1 {
				continue
			}
			for exit := range exits {
				rs.loopExit[header] = exit
			}
		}
	}
}

func (rs *restructurizer) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	rw := func(x *ir.Node) *ir.Node { return rewrite.RewriteNode(r, x) }
	rws := func(xs []*ir.Node) []*ir.Node { return rewrite.RewriteNodes(r, xs) }

	switch p := n.Payload.(type) {
	case ir.JumpPayload:
		if len(rs.continueTo) > 0 && p.Target == rs.continueTo[len(rs.continueTo)-1] {
			return ir.NewMergeContinue(dst, rws(p.Args))
		}
		if len(rs.breakTo) > 0 && p.Target == rs.breakTo[len(rs.breakTo)-1] {
			return ir.NewMergeBreak(dst, rws(p.Args))
		}
		if exit, ok := rs.loopExit[p.Target]; ok && !rs.active[p.Target] {
			return rs.buildLoop(r, p.Target, exit, rws(p.Args))
		}
		return DefaultRewriteTyped(r, n)

	case ir.BranchPayload:
		cond := rw(p.Cond)
		tj := p.TrueJump.Payload.(ir.JumpPayload)
		fj := p.FalseJump.Payload.(ir.JumpPayload)

		if tj.Target == fj.Target {
			tail := rw(tj.Target)
			trueBB := synthMergeBlock(dst, rws(tj.Args))
			falseBB := synthMergeBlock(dst, rws(fj.Args))
			return retype(dst, ir.NewIf(dst, yieldTypesFromTail(tail), cond, trueBB, falseBB, tail))
		}
		if tTarget, tArgs, ok1 := forwardingTarget(tj.Target); ok1 {
			if fTarget, fArgs, ok2 := forwardingTarget(fj.Target); ok2 && tTarget == fTarget {
				tail := rw(tTarget)
				trueBB := synthMergeBlock(dst, rws(tArgs))
				falseBB := synthMergeBlock(dst, rws(fArgs))
				return retype(dst, ir.NewIf(dst, yieldTypesFromTail(tail), cond, trueBB, falseBB, tail))
			}
		}
		return DefaultRewriteTyped(r, n)

	default:
		return DefaultRewriteTyped(r, n)
	}
}

// buildLoop wraps header's body back into a Loop node: back edges to header
// become MergeContinue, edges to exit become MergeBreak. header is Memoized
// before its body is walked, the same way passes.LowerCF's own Loop case
// registers the new body header before recursing, so a back edge reached
// mid-walk resolves through rs.continueTo rather than re-entering buildLoop.
func (rs *restructurizer) buildLoop(r *rewrite.Rewriter, header, exit ir.AbstractionRef, initialArgs []*ir.Node) *ir.Node {
	dst := r.DstModule.Arena
	hp := header.Payload.(*ir.BasicBlockPayload)
	newParams := rewrite.RecreateParams(r, hp.Params, func(t *ir.Node, name string) *ir.Node {
		return ir.NewParam(dst, t, name)
	})
	bodyHeader := ir.DeclareBasicBlockHeader(dst, newParams, hp.Name)
	rewrite.Memoize(r, header, bodyHeader)

	tail := rewrite.RewriteNode(r, exit)

	rs.active[header] = true
	rs.continueTo = append(rs.continueTo, header)
	rs.breakTo = append(rs.breakTo, exit)
	if hp.Body != nil {
		ir.PopulateBasicBlockBody(bodyHeader, rewrite.RewriteNode(r, hp.Body))
	}
	rs.continueTo = rs.continueTo[:len(rs.continueTo)-1]
	rs.breakTo = rs.breakTo[:len(rs.breakTo)-1]
	delete(rs.active, header)

	return retype(dst, ir.NewLoop(dst, yieldTypesFromTail(tail), newParams, bodyHeader, initialArgs, tail))
}

// forwardingTarget reports whether block's entire body is a single
// unconditional Jump, the shape LowerCF gives an If arm that had no
// instructions of its own beyond selecting the yielded values.
func forwardingTarget(block ir.AbstractionRef) (ir.AbstractionRef, []*ir.Node, bool) {
	bp, ok := block.Payload.(*ir.BasicBlockPayload)
	if !ok || bp.Body == nil {
		return nil, nil, false
	}
	jp, ok := bp.Body.Payload.(ir.JumpPayload)
	if !ok {
		return nil, nil, false
	}
	return jp.Target, jp.Args, true
}

// synthMergeBlock builds a parameter-less BasicBlock whose entire body is a
// MergeSelection, standing in for an If arm that LowerCF had reduced away.
func synthMergeBlock(a *arena.Arena, args []*ir.Node) *ir.Node {
	bb := ir.DeclareBasicBlockHeader(a, nil, "")
	ir.PopulateBasicBlockBody(bb, retype(a, ir.NewMergeSelection(a, args)))
	return bb
}

func yieldTypesFromTail(tail *ir.Node) []*ir.Node {
	bp, ok := tail.Payload.(*ir.BasicBlockPayload)
	if !ok {
		return nil
	}
	out := make([]*ir.Node, len(bp.Params))
	for i, p := range bp.Params {
		out[i] = p.Payload.(ir.ParamPayload).DeclaredType
	}
	return out
}
