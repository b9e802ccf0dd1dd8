// Package analysis implements the control-flow and data-flow analyses the
// lowering pipeline depends on: the CFG builder, reverse postorder,
// dominance and dominance-frontier (Cooper/Harvey/Kennedy and Cytron et al.,
// the same two algorithms ssa/lift.go cites and implements for Go's SSA
// Alloc-lifting pass, here generalized from a single function's basic-block
// graph to Shady's per-Abstraction structured/unstructured mixed CFG), a
// loop tree, a block scheduler, the free-frontier analysis, and a
// whole-module call graph.
package analysis

import "github.com/TheJackiMonster/shady/ir"

// EdgeKind classifies a CFG edge, distinguishing a plain
// unstructured Jump from the implicit control edges a structured construct
// (If/Match/Loop/Control) introduces between its header and its bodies.
type EdgeKind int

const (
	EdgeJump EdgeKind = iota
	EdgeStructuredEnterBody
	EdgeStructuredLeaveBody
	EdgeStructuredLoopContinue
	EdgeStructuredTail
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeJump:
		return "jump"
	case EdgeStructuredEnterBody:
		return "enter_body"
	case EdgeStructuredLeaveBody:
		return "leave_body"
	case EdgeStructuredLoopContinue:
		return "loop_continue"
	case EdgeStructuredTail:
		return "tail"
	default:
		return "edge"
	}
}

// Edge is one directed CFG edge between two Abstractions (Function or
// BasicBlock bodies).
type Edge struct {
	From, To ir.AbstractionRef
	Kind     EdgeKind
}

// CFG is the control-flow graph of one Function: one node per Abstraction
// reachable from the function's entry body, with predecessor/successor
// adjacency built eagerly so dominance/domfrontier don't need to recompute
// it.
type CFG struct {
	Entry ir.AbstractionRef
	Nodes []ir.AbstractionRef
	Succs map[ir.AbstractionRef][]Edge
	Preds map[ir.AbstractionRef][]Edge

	index map[ir.AbstractionRef]int // Nodes[index[n]] == n
}

// Config gates which structured edges BuildCFG follows; passes.Restructurize
// runs before the CFG still contains Jump-only edges (Config{} zero value),
// while passes.LiftEverything wants the structured edges walked too so
// φ-insertion sees into If/Match/Loop bodies.
type Config struct {
	FollowStructured bool
}

// BuildCFG walks every terminator and structured-construct body reachable
// from entry and returns the resulting graph.
func BuildCFG(entry ir.AbstractionRef, cfg Config) *CFG {
	g := &CFG{
		Entry: entry,
		Succs: make(map[ir.AbstractionRef][]Edge),
		Preds: make(map[ir.AbstractionRef][]Edge),
		index: make(map[ir.AbstractionRef]int),
	}
	var visit func(n ir.AbstractionRef)
	visit = func(n ir.AbstractionRef) {
		if n == nil {
			return
		}
		if _, ok := g.index[n]; ok {
			return
		}
		g.index[n] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)

		for _, e := range outEdges(n, cfg) {
			e.From = n
			g.Succs[n] = append(g.Succs[n], e)
			g.Preds[e.To] = append(g.Preds[e.To], e)
			visit(e.To)
		}
	}
	visit(entry)
	return g
}

func outEdges(n ir.AbstractionRef, cfg Config) []Edge {
	body := bodyOf(n)
	if body == nil {
		return nil
	}
	return terminatorEdges(body, cfg)
}

// bodyOf returns the instruction/terminator chain root of a Function or
// BasicBlock, or nil if it has none yet (an external/header-only decl).
func bodyOf(n ir.AbstractionRef) *ir.Node {
	switch p := n.Payload.(type) {
	case *ir.FunctionPayload:
		return p.Body
	case *ir.BasicBlockPayload:
		return p.Body
	default:
		return nil
	}
}

// terminatorEdges inspects the terminal node of body's instruction chain.
// Shady bodies are a single expression tree rather than a flat instruction
// list, so "the terminator" is body itself when body already is a
// terminator/structured-construct kind, which is the shape passes.Bind
// normalizes every Abstraction body into.
func terminatorEdges(body *ir.Node, cfg Config) []Edge {
	switch p := body.Payload.(type) {
	case ir.JumpPayload:
		return []Edge{{To: p.Target, Kind: EdgeJump}}
	case ir.BranchPayload:
		tEdges := terminatorEdges(p.TrueJump, cfg)
		fEdges := terminatorEdges(p.FalseJump, cfg)
		return append(tEdges, fEdges...)
	case ir.SwitchPayload:
		var out []Edge
		for _, j := range p.CaseJumps {
			out = append(out, terminatorEdges(j, cfg)...)
		}
		out = append(out, terminatorEdges(p.DefaultJump, cfg)...)
		return out
	case ir.IfPayload:
		if !cfg.FollowStructured {
			return nil
		}
		out := []Edge{{To: p.True, Kind: EdgeStructuredEnterBody}}
		if p.False != nil {
			out = append(out, Edge{To: p.False, Kind: EdgeStructuredEnterBody})
		}
		out = append(out, Edge{To: p.Tail, Kind: EdgeStructuredTail})
		return out
	case ir.MatchPayload:
		if !cfg.FollowStructured {
			return nil
		}
		var out []Edge
		for _, c := range p.Cases {
			out = append(out, Edge{To: c, Kind: EdgeStructuredEnterBody})
		}
		if p.Default != nil {
			out = append(out, Edge{To: p.Default, Kind: EdgeStructuredEnterBody})
		}
		out = append(out, Edge{To: p.Tail, Kind: EdgeStructuredTail})
		return out
	case ir.LoopPayload:
		if !cfg.FollowStructured {
			return nil
		}
		return []Edge{
			{To: p.Body, Kind: EdgeStructuredEnterBody},
			{To: p.Body, Kind: EdgeStructuredLoopContinue},
			{To: p.Tail, Kind: EdgeStructuredTail},
		}
	case ir.ControlPayload:
		if !cfg.FollowStructured {
			return nil
		}
		return []Edge{
			{To: p.Inside, Kind: EdgeStructuredEnterBody},
			{To: p.Tail, Kind: EdgeStructuredTail},
		}
	default:
		// Join, TailCall, Return, Merge*, Unreachable: no successors in
		// this function's own CFG.
		return nil
	}
}

// Index returns n's position in g.Nodes, or -1 if n is unreachable from the
// entry this CFG was built from.
func (g *CFG) Index(n ir.AbstractionRef) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	return -1
}
