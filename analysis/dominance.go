package analysis

import "github.com/TheJackiMonster/shady/ir"

// DomTree is the dominator tree of one CFG, computed with the iterative
// Cooper/Harvey/Kennedy algorithm ("A Simple, Fast Dominance Algorithm",
// Software Practice & Experience 2001) — the same algorithm ssa/lift.go
// cites and uses to build domNode.Idom before computing the dominance
// frontier for Alloc lifting.
type DomTree struct {
	g      *CFG
	idomIx []int // idomIx[i] is the RPO index of rpo[i]'s immediate dominator; the entry (index 0) holds 0
	rpo    []ir.AbstractionRef
	rpoIx  map[ir.AbstractionRef]int
}

// BuildDomTree computes g's dominator tree.
func BuildDomTree(g *CFG) *DomTree {
	rpo := ReversePostorder(g)
	rpoIx := make(map[ir.AbstractionRef]int, len(rpo))
	for i, n := range rpo {
		rpoIx[n] = i
	}

	idom := make([]int, len(rpo))
	for i := range idom {
		idom[i] = -1
	}
	idom[0] = 0 // entry dominates itself

	changed := true
	for changed {
		changed = false
		for i := 1; i < len(rpo); i++ {
			n := rpo[i]
			newIdom := -1
			for _, e := range g.Preds[n] {
				pi, ok := rpoIx[e.From]
				if !ok || idom[pi] == -1 && pi != 0 {
					continue
				}
				if newIdom == -1 {
					newIdom = pi
					continue
				}
				newIdom = intersect(idom, newIdom, pi)
			}
			if newIdom != -1 && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}

	return &DomTree{g: g, idomIx: idom, rpo: rpo, rpoIx: rpoIx}
}

func intersect(idom []int, a, b int) int {
	for a != b {
		for a > b {
			a = idom[a]
		}
		for b > a {
			b = idom[b]
		}
	}
	return a
}

// Idom returns n's immediate dominator, or nil if n is the entry or
// unreachable.
func (t *DomTree) Idom(n ir.AbstractionRef) ir.AbstractionRef {
	i, ok := t.rpoIx[n]
	if !ok || i == 0 {
		return nil
	}
	ii := t.idomIx[i]
	if ii < 0 {
		return nil
	}
	return t.rpo[ii]
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (t *DomTree) Dominates(a, b ir.AbstractionRef) bool {
	ai, aok := t.rpoIx[a]
	bi, bok := t.rpoIx[b]
	if !aok || !bok {
		return false
	}
	for bi != ai {
		if bi == 0 {
			return false
		}
		bi = t.idomIx[bi]
		if bi < 0 {
			return false
		}
	}
	return true
}

// Children returns n's immediate children in the dominator tree.
func (t *DomTree) Children(n ir.AbstractionRef) []ir.AbstractionRef {
	ni, ok := t.rpoIx[n]
	if !ok {
		return nil
	}
	var out []ir.AbstractionRef
	for i, idomI := range t.idomIx {
		if i != ni && idomI == ni {
			out = append(out, t.rpo[i])
		}
	}
	return out
}

// Nodes returns every node this tree knows about, in reverse-postorder.
func (t *DomTree) Nodes() []ir.AbstractionRef { return t.rpo }
