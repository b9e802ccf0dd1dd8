package analysis

import "github.com/TheJackiMonster/shady/ir"

// DomFrontier maps each node to its dominance frontier (Cytron et al. 1991),
// generalized from ssa/lift.go's domFrontier/buildDomFrontier from a single
// function's basic blocks to any CFG node.
type DomFrontier map[ir.AbstractionRef][]ir.AbstractionRef

// BuildDomFrontier computes the dominance frontier of every node in g using
// t, following the standard two-case algorithm: for every node n with at
// least two predecessors, walk up from each predecessor toward n's
// immediate dominator, adding n to the frontier of every node visited
// (exclusive of the idom itself).
func BuildDomFrontier(g *CFG, t *DomTree) DomFrontier {
	df := make(DomFrontier)
	for _, n := range g.Nodes {
		preds := g.Preds[n]
		if len(preds) < 2 {
			continue
		}
		idom := t.Idom(n)
		for _, e := range preds {
			runner := e.From
			for runner != idom && runner != nil {
				df[runner] = append(df[runner], n)
				runner = t.Idom(runner)
			}
		}
	}
	return df
}

// At returns n's dominance frontier set, deduplicated.
func (df DomFrontier) At(n ir.AbstractionRef) []ir.AbstractionRef {
	seen := make(map[ir.AbstractionRef]bool)
	var out []ir.AbstractionRef
	for _, m := range df[n] {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
