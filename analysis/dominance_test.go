package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestDomTreeEntryHasNoIdom(t *testing.T) {
	a := newArena()
	A, _, _, _ := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)
	assert.Nil(t, dom.Idom(A))
}

func TestDomTreeDiamondMergePointIsDominatedOnlyByEntry(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)

	assert.Same(t, A, dom.Idom(B))
	assert.Same(t, A, dom.Idom(C))
	assert.Same(t, A, dom.Idom(D), "D has two predecessors, so only the entry strictly dominates it")

	assert.True(t, dom.Dominates(A, D))
	assert.False(t, dom.Dominates(B, D))
	assert.False(t, dom.Dominates(C, D))
	assert.True(t, dom.Dominates(A, A), "dominance is reflexive")
}

func TestDomTreeChildrenOfEntry(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)

	children := dom.Children(A)
	assert.ElementsMatch(t, []ir.AbstractionRef{B, C, D}, children)
}

func TestDomTreeUnreachableNodeDominatesNothing(t *testing.T) {
	a := newArena()
	A, _, _, _ := buildDiamond(a)
	orphan := ir.DeclareBasicBlockHeader(a, nil, "orphan")
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)
	assert.False(t, dom.Dominates(A, orphan))
	assert.False(t, dom.Dominates(orphan, A))
}
