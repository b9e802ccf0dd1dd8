package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheJackiMonster/shady/analysis"
	"github.com/TheJackiMonster/shady/ir"
)

func TestDomFrontierOfDiamondBranchesIsMergePoint(t *testing.T) {
	a := newArena()
	A, B, C, D := buildDiamond(a)
	g := analysis.BuildCFG(A, analysis.Config{})
	dom := analysis.BuildDomTree(g)
	df := analysis.BuildDomFrontier(g, dom)

	assert.Equal(t, []ir.AbstractionRef{D}, df.At(B))
	assert.Equal(t, []ir.AbstractionRef{D}, df.At(C))
	assert.Empty(t, df.At(A), "the entry strictly dominates everything, so it has no frontier")
	assert.Empty(t, df.At(D))
}

func TestDomFrontierAtDeduplicatesRawEntries(t *testing.T) {
	a := newArena()
	_, B, _, D := buildDiamond(a)
	df := analysis.DomFrontier{B: {D, D, D}}
	assert.Equal(t, []ir.AbstractionRef{D}, df.At(B))
}
