package analysis

import "github.com/TheJackiMonster/shady/ir"

// FreeFrontier computes, for a Control construct's Inside Abstraction, the
// set of Abstractions that must thread an extra join-point parameter because
// a MergeSelection/MergeContinue/MergeBreak (or, post-lowering, a plain Join)
// targeting that construct's join point is reachable from them — the
// generalization of ssa/lift.go's liftAlloc def/use block-set walk: there,
// the question is "which blocks need a φ for this Alloc"; here it is "which
// Abstractions need the join point threaded as a parameter".
//
// g is the CFG built from the Control's Inside Abstraction; targets is the
// set of Abstractions (reachable in g) that terminate in a Join naming this
// construct's join point.
func FreeFrontier(g *CFG, targets map[ir.AbstractionRef]bool) map[ir.AbstractionRef]bool {
	needs := make(map[ir.AbstractionRef]bool, len(targets))
	var mark func(n ir.AbstractionRef)
	mark = func(n ir.AbstractionRef) {
		if needs[n] {
			return
		}
		needs[n] = true
		for _, e := range g.Preds[n] {
			mark(e.From)
		}
	}
	for t := range targets {
		// The target itself consumes the join point directly; its
		// predecessors are what need it threaded through.
		for _, e := range g.Preds[t] {
			mark(e.From)
		}
	}
	return needs
}
