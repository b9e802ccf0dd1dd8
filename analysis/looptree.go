package analysis

import "github.com/TheJackiMonster/shady/ir"

// Loop is one natural loop: a header dominating a back edge's source, plus
// the set of nodes in its body (header included). Shady's structured Loop
// construct already names its own header/body explicitly, so this analysis
// exists primarily for the unstructured residue passes.LowerCF produces
// before passes.Restructurize runs, and for sanity-checking that a
// restructured function's back edges line up with its Loop nodes.
type Loop struct {
	Header ir.AbstractionRef
	Body   map[ir.AbstractionRef]bool
}

// LoopTree is the forest of natural loops in one CFG, keyed by header.
type LoopTree struct {
	ByHeader map[ir.AbstractionRef]*Loop
}

// BuildLoopTree finds every natural loop in g using t: a back edge u->h
// exists whenever h dominates u, and the loop body is every node that can
// reach u without passing through h.
func BuildLoopTree(g *CFG, t *DomTree) *LoopTree {
	lt := &LoopTree{ByHeader: make(map[ir.AbstractionRef]*Loop)}
	for _, n := range g.Nodes {
		for _, e := range g.Succs[n] {
			h := e.To
			if !t.Dominates(h, n) {
				continue
			}
			loop, ok := lt.ByHeader[h]
			if !ok {
				loop = &Loop{Header: h, Body: map[ir.AbstractionRef]bool{h: true}}
				lt.ByHeader[h] = loop
			}
			growLoopBody(g, loop, n)
		}
	}
	return lt
}

// growLoopBody walks predecessors backward from the back edge's source,
// adding every node reached before hitting a node already in the body
// (the header included, which stops the walk).
func growLoopBody(g *CFG, loop *Loop, from ir.AbstractionRef) {
	if loop.Body[from] {
		return
	}
	stack := []ir.AbstractionRef{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if loop.Body[n] {
			continue
		}
		loop.Body[n] = true
		for _, e := range g.Preds[n] {
			if !loop.Body[e.From] {
				stack = append(stack, e.From)
			}
		}
	}
}

// IsLoopHeader reports whether n heads a natural loop in lt.
func (lt *LoopTree) IsLoopHeader(n ir.AbstractionRef) bool {
	_, ok := lt.ByHeader[n]
	return ok
}
