package passes

import (
	"sort"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
	"github.com/TheJackiMonster/shady/rewrite"
)

// LiftEverything is the generalization of ssa/lift.go's dominance-frontier
// φ-insertion loop: instead of inserting a φ-node for an Alloc at every
// block in its dominance frontier, it adds a parameter to every Abstraction
// whose body references a Param it does not itself declare, and rewrites
// every Jump reaching that Abstraction to pass the live value along. Run
// after Restructurize so both unstructured residue and recovered If/Loop
// bodies are covered by the same analysis. A single backward-reachability
// sweep per free Param (computed once, in analyze) already accounts for the
// full transitive frontier, so there is no outer iterate-to-fixpoint loop
// the way a naive worklist would need.
func LiftEverything(ctx *Context, src *ir.Module) (*ir.Module, error) {
	a := ctx.NewArena()
	dst := ir.NewModule(a)
	lf := &lifter{ctx: ctx, need: make(map[ir.AbstractionRef][]*ir.Node)}
	lf.analyze(src)
	r := rewrite.New(src, dst, lf.process)
	rewrite.RewriteModule(r)
	return dst, ctx.Errors.AsError()
}

type lifter struct {
	ctx *Context
	// need[bb] lists, in ascending source-node-id order (the determinism
	// rule of spec.md §5), the externally-owned Params bb's body
	// references that bb must now receive as extra trailing parameters.
	need map[ir.AbstractionRef][]*ir.Node
}

// analyze computes lf.need for every function in src before any rewriting
// starts, the same two-phase shape passes.Restructurize uses: the decision
// for one Abstraction depends on the whole function's CFG, which a single
// bottom-up rewrite.ProcessFunc call cannot see.
func (lf *lifter) analyze(src *ir.Module) {
	for _, decl := range src.Decls {
		fp, ok := decl.Payload.(*ir.FunctionPayload)
		if !ok || fp.Body == nil {
			continue
		}
		g := analysis.BuildCFG(decl, analysis.Config{FollowStructured: true})

		owner := make(map[*ir.Node]ir.AbstractionRef)
		for _, n := range g.Nodes {
			for _, p := range paramsOf(n) {
				owner[p] = n
			}
		}

		needSet := make(map[ir.AbstractionRef]map[*ir.Node]bool)
		for _, n := range g.Nodes {
			uses := make(map[*ir.Node]bool)
			visited := make(map[*ir.Node]bool)
			collectParamUses(bodyOfAbstraction(n), visited, uses)
			for p := range uses {
				o, ok := owner[p]
				if !ok || o == n {
					continue
				}
				for need := range backwardClosure(g, o, n) {
					if needSet[need] == nil {
						needSet[need] = make(map[*ir.Node]bool)
					}
					needSet[need][p] = true
				}
			}
		}

		for n, set := range needSet {
			ps := make([]*ir.Node, 0, len(set))
			for p := range set {
				ps = append(ps, p)
			}
			sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
			lf.need[n] = ps
		}
	}
}

// backwardClosure is analysis.FreeFrontier's backward-reachability walk with
// one addition FreeFrontier's join-point case doesn't need: a stop condition
// at owner. Without it the walk would keep marking nodes upstream of where
// the Param is even defined, since owner dominates every use and so always
// lies on the path back to entry. It returns every Abstraction between owner
// and use, use included, that needs the value threaded through as a
// parameter.
func backwardClosure(g *analysis.CFG, owner, use ir.AbstractionRef) map[ir.AbstractionRef]bool {
	out := make(map[ir.AbstractionRef]bool)
	var mark func(n ir.AbstractionRef)
	mark = func(n ir.AbstractionRef) {
		if n == owner || out[n] {
			return
		}
		out[n] = true
		for _, e := range g.Preds[n] {
			mark(e.From)
		}
	}
	mark(use)
	return out
}

func bodyOfAbstraction(n ir.AbstractionRef) *ir.Node {
	switch p := n.Payload.(type) {
	case *ir.FunctionPayload:
		return p.Body
	case *ir.BasicBlockPayload:
		return p.Body
	default:
		return nil
	}
}

func paramsOf(n ir.AbstractionRef) []*ir.Node {
	switch p := n.Payload.(type) {
	case *ir.FunctionPayload:
		return p.Params
	case *ir.BasicBlockPayload:
		return p.Params
	default:
		return nil
	}
}

// collectParamUses walks every Node reachable from n within n's own
// abstraction (stopping at any nested declaration — a BasicBlock or
// Function reached through a structured construct's body or a Jump
// target belongs to a different Abstraction and is analyzed on its own
// turn) and records every Param it finds, owned or not; the caller filters
// out the ones this Abstraction itself owns.
func collectParamUses(n *ir.Node, visited map[*ir.Node]bool, acc map[*ir.Node]bool) {
	if n == nil || visited[n] {
		return
	}
	visited[n] = true
	if ir.KindOf(n) == ir.KindParam {
		acc[n] = true
		return
	}
	if ir.IsDeclaration(ir.KindOf(n)) {
		return
	}
	for _, child := range operandsOf(n) {
		collectParamUses(child, visited, acc)
	}
}

// operandsOf returns every direct *ir.Node child of n's payload, types
// included (an ArrType's dynamic Size may itself reference a Param). It
// mirrors DefaultRewrite's payload switch but collects rather than rebuilds.
func operandsOf(n *ir.Node) []*ir.Node {
	switch p := n.Payload.(type) {
	case ir.PtrTypePayload:
		return []*ir.Node{p.Pointee}
	case ir.ArrTypePayload:
		return []*ir.Node{p.Elem, p.Size}
	case ir.PackTypePayload:
		return []*ir.Node{p.Elem}
	case ir.RecordTypePayload:
		return p.Members
	case ir.FnTypePayload:
		return append(append([]*ir.Node{}, p.Params...), p.Returns...)
	case ir.BBTypePayload:
		return p.Params
	case ir.JoinPointTypePayload:
		return p.Yields
	case ir.QualifiedTypePayload:
		return []*ir.Node{p.Inner}
	case ir.NullPtrPayload:
		return []*ir.Node{p.PtrType}
	case ir.CompositePayload:
		return append([]*ir.Node{p.Type}, p.Contents...)
	case ir.FillPayload:
		return []*ir.Node{p.Type, p.Value}
	case ir.UndefPayload:
		return []*ir.Node{p.Type}
	case ir.FnAddrPayload:
		return nil // the target Function is a separate declaration
	case ir.RefDeclPayload:
		return nil
	case ir.TuplePayload:
		return p.Elems
	case ir.PrimOpPayload:
		return append(append([]*ir.Node{}, p.TypeArgs...), p.Operands...)
	case ir.CallPayload:
		return append([]*ir.Node{p.Callee}, p.Args...)
	case ir.StackAllocPayload:
		return []*ir.Node{p.Type}
	case ir.LocalAllocPayload:
		return []*ir.Node{p.Type}
	case ir.LoadPayload:
		return []*ir.Node{p.Ptr}
	case ir.StorePayload:
		return []*ir.Node{p.Ptr, p.Value}
	case ir.PtrArrayElementOffsetPayload:
		return []*ir.Node{p.Ptr, p.Offset}
	case ir.PtrCompositeElement:
		return []*ir.Node{p.Ptr, p.Index}
	case ir.CopyBytesPayload:
		return []*ir.Node{p.Dst, p.Src, p.Count}
	case ir.FillBytesPayload:
		return []*ir.Node{p.Dst, p.Value, p.Count}
	case ir.DebugPrintfPayload:
		return append([]*ir.Node{p.Format}, p.Args...)
	case ir.PushStackPayload:
		return []*ir.Node{p.Value}
	case ir.PopStackPayload:
		return []*ir.Node{p.Type}
	case ir.SetStackPointerPayload:
		return []*ir.Node{p.Value}
	case ir.IfPayload:
		return append(append([]*ir.Node{}, p.YieldTypes...), p.Cond)
	case ir.MatchPayload:
		return append(append([]*ir.Node{}, p.YieldTypes...), append([]*ir.Node{p.Inspect}, p.Literals...)...)
	case ir.LoopPayload:
		return append(append([]*ir.Node{}, p.YieldTypes...), p.InitialArgs...)
	case ir.ControlPayload:
		return append([]*ir.Node{}, p.YieldTypes...)
	case ir.BindIdentifiersPayload:
		return []*ir.Node{p.Value, p.Body}
	case ir.JumpPayload:
		return append(append([]*ir.Node{}, p.Args...), p.Mem)
	case ir.BranchPayload:
		return []*ir.Node{p.Cond, p.TrueJump, p.FalseJump}
	case ir.SwitchPayload:
		return append(append([]*ir.Node{p.Value}, p.CaseJumps...), p.DefaultJump)
	case ir.JoinPayload:
		return append([]*ir.Node{p.JoinPoint}, p.Args...)
	case ir.TailCallPayload:
		return append([]*ir.Node{p.Callee}, p.Args...)
	case ir.ReturnPayload:
		return p.Args
	case ir.MergeSelectionPayload:
		return p.Args
	case ir.MergeContinuePayload:
		return p.Args
	case ir.MergeBreakPayload:
		return p.Args
	default:
		return nil
	}
}

func (lf *lifter) process(r *rewrite.Rewriter, n *ir.Node) *ir.Node {
	switch p := n.Payload.(type) {
	case *ir.BasicBlockPayload:
		return lf.rewriteBasicBlockLifted(r, n, p)
	case ir.JumpPayload:
		dst := r.DstModule.Arena
		target := rewrite.RewriteNode(r, p.Target)
		args := rewrite.RewriteNodes(r, p.Args)
		for _, extra := range lf.need[p.Target] {
			args = append(args, rewrite.RewriteNode(r, extra))
		}
		return retype(dst, ir.NewJump(dst, target, args, rewrite.RewriteNode(r, p.Mem)))
	default:
		return DefaultRewriteTyped(r, n)
	}
}

// rewriteBasicBlockLifted declares bb with its original parameters plus one
// fresh trailing parameter per entry in lf.need[src], each memoized (in a
// child rewriter scoped to this block) so every reference inside the body
// to the externally-owned Param resolves to the freshly threaded-in
// parameter instead — and so a further Jump out of this block automatically
// forwards the already-threaded value when rewrite.RewriteNode looks it up
// again.
func (lf *lifter) rewriteBasicBlockLifted(r *rewrite.Rewriter, src *ir.Node, p *ir.BasicBlockPayload) *ir.Node {
	dst := r.DstModule.Arena
	child := rewrite.NewChildRewriter(r)
	params := rewrite.RecreateParams(child, p.Params, func(t *ir.Node, name string) *ir.Node { return ir.NewParam(dst, t, name) })

	extra := lf.need[src]
	for _, ext := range extra {
		extType := rewrite.RewriteNode(r, ir.TypeNode(ext))
		fresh := ir.NewParam(dst, extType, ir.Name(ext)+"_lifted")
		rewrite.Memoize(child, ext, fresh)
		params = append(params, fresh)
	}

	header := ir.DeclareBasicBlockHeader(dst, params, p.Name)
	rewrite.Memoize(r, src, header)
	if p.Body != nil {
		ir.PopulateBasicBlockBody(header, rewrite.RewriteNode(child, p.Body))
	}
	return header
}
